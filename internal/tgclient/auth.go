package tgclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram/auth"
	mtp "github.com/gotd/td/tg"

	"github.com/nkarpov/telesync/internal/tg"
)

// Login runs the interactive code flow for one credential ref and leaves
// the authorized session in the profile's session directory. Already
// authorized sessions return immediately.
func (f *Factory) Login(ctx context.Context, credentialRef, phone string, in io.Reader, out io.Writer) (string, error) {
	opened, err := f.Open(ctx, credentialRef)
	if err != nil {
		return "", err
	}
	client := opened.(*Client).client

	var username string
	err = client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(
			&terminalAuth{phone: phone, in: bufio.NewReader(in), out: out},
			auth.SendCodeOptions{},
		)
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authorize %s: %w", credentialRef, mapErr(err))
		}
		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("get self: %w", mapErr(err))
		}
		name, ok := self.GetUsername()
		if !ok || name == "" {
			// Engines resolve dialogs by public username; an account
			// without one cannot participate in a sync.
			return fmt.Errorf("account %s has no public username: %w", credentialRef, tg.ErrNotFound)
		}
		username = name
		return nil
	})
	if err != nil {
		return "", err
	}
	return username, nil
}

// terminalAuth answers the auth flow's prompts from an interactive
// terminal.
type terminalAuth struct {
	phone string
	in    *bufio.Reader
	out   io.Writer
}

func (a *terminalAuth) Phone(context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	return a.prompt("Phone number (international format): ")
}

func (a *terminalAuth) Code(context.Context, *mtp.AuthSentCode) (string, error) {
	return a.prompt("Login code: ")
}

func (a *terminalAuth) Password(context.Context) (string, error) {
	return a.prompt("Two-step verification password: ")
}

func (a *terminalAuth) AcceptTermsOfService(context.Context, mtp.HelpTermsOfService) error {
	return nil
}

func (a *terminalAuth) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up is not supported, register the account first")
}

func (a *terminalAuth) prompt(label string) (string, error) {
	if _, err := fmt.Fprint(a.out, label); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
