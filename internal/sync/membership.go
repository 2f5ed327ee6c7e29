package sync

import (
	"context"
	"fmt"

	"github.com/nkarpov/telesync/internal/tg"
	"go.uber.org/zap"
)

// Membership joins the recipient into every public channel or supergroup
// the sender is a member of, replicating archived-folder placement and
// dialog pin state. Channel joins are throttled far harder by the platform
// than ordinary requests, hence the separate join pacer.
type Membership struct {
	sender    tg.Client
	recipient tg.Client
	joinPace  *Pacer
	mutPace   *Pacer
	job       *Job
	logger    *zap.Logger
}

// NewMembership creates the membership engine for one run.
func NewMembership(sender, recipient tg.Client, joinPace, mutPace *Pacer, job *Job, logger *zap.Logger) *Membership {
	return &Membership{
		sender:    sender,
		recipient: recipient,
		joinPace:  joinPace,
		mutPace:   mutPace,
		job:       job,
		logger:    logger,
	}
}

// Run executes the membership job. Re-joining an already-joined channel is
// a no-op on the recipient side, so re-running over an unchanged dialog
// list succeeds.
func (m *Membership) Run(ctx context.Context) error {
	if err := connectBoth(ctx, m.sender, m.recipient); err != nil {
		return err
	}

	dialogs, err := m.sender.Dialogs(ctx)
	if err != nil {
		return fmt.Errorf("fetch sender dialogs: %w", err)
	}

	var channels []tg.Dialog
	for _, d := range dialogs {
		if d.Public() {
			channels = append(channels, d)
		}
	}
	m.job.SetTotal(len(channels))

	for i, ch := range channels {
		if err := m.joinPace.Wait(ctx); err != nil {
			return err
		}
		if err := m.recipient.JoinChannel(ctx, ch.Username); err != nil {
			return fmt.Errorf("join %s: %w", ch.Username, err)
		}

		if ch.Archived {
			if err := m.mutPace.Wait(ctx); err != nil {
				return err
			}
			if err := m.recipient.ArchiveDialog(ctx, ch.Username); err != nil {
				return fmt.Errorf("archive %s: %w", ch.Username, err)
			}
		}
		if ch.Pinned {
			if err := m.mutPace.Wait(ctx); err != nil {
				return err
			}
			if err := m.recipient.PinDialog(ctx, ch.Username); err != nil {
				return fmt.Errorf("pin dialog %s: %w", ch.Username, err)
			}
		}
		m.job.Step(i + 1)
	}

	m.logger.Info("memberships copied", zap.Int("channels", len(channels)))
	return nil
}
