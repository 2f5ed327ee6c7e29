// Package tgclient binds the sync engines' client contract to Telegram's
// MTProto API via gotd. Each Client wraps one account session stored under
// the profile's session directory; everything above this package is
// platform-agnostic.
package tgclient

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	mtp "github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/nkarpov/telesync/internal/profile"
	"github.com/nkarpov/telesync/internal/tg"
)

// Factory opens MTProto clients for credential refs stored in the profile
// store. One factory per profile; sessions live side by side under the
// profile's session directory.
type Factory struct {
	apiID   int
	apiHash string
	profile string
	logger  *zap.Logger
}

// NewFactory creates a client factory for one profile.
func NewFactory(apiID int, apiHash, profileName string, logger *zap.Logger) *Factory {
	return &Factory{apiID: apiID, apiHash: apiHash, profile: profileName, logger: logger}
}

// Open builds a client bound to the ref's session file. The client is not
// connected yet; engines connect lazily and Connect is idempotent.
func (f *Factory) Open(_ context.Context, credentialRef string) (tg.Client, error) {
	if f.apiID == 0 || f.apiHash == "" {
		return nil, fmt.Errorf("api_id and api_hash must be configured")
	}
	logger := f.logger.Named("mtproto").With(zap.String("account", credentialRef))
	inner := telegram.NewClient(f.apiID, f.apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{
			Path: profile.SessionPath(f.profile, credentialRef),
		},
		Logger: logger,
	})
	return &Client{ref: credentialRef, client: inner, logger: logger}, nil
}

// Client is one authenticated account session over gotd.
type Client struct {
	ref    string
	client *telegram.Client
	logger *zap.Logger

	mu   sync.Mutex
	api  *mtp.Client
	stop bg.StopFunc
}

// Connect brings the session online in the background and verifies it is
// authorized. Calling Connect on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}

	stop, err := bg.Connect(c.client, bg.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.ref, mapErr(err))
	}
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		_ = stop()
		return fmt.Errorf("auth status %s: %w", c.ref, mapErr(err))
	}
	if !status.Authorized {
		_ = stop()
		return fmt.Errorf("session %s is not authorized: %w", c.ref, tg.ErrPermission)
	}

	c.api = c.client.API()
	c.stop = stop
	c.logger.Info("session connected")
	return nil
}

// Connected reports whether the session is currently online.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Close disconnects the session. Closing an idle client is a no-op.
func (c *Client) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}
	err := c.stop()
	c.stop = nil
	c.api = nil
	return err
}

func (c *Client) raw() *mtp.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.api
}

// inputPeer converts a resolved peer back to its request form.
func inputPeer(p tg.Peer) mtp.InputPeerClass {
	switch p.Kind {
	case tg.PeerUser:
		return &mtp.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	case tg.PeerChat:
		return &mtp.InputPeerChat{ChatID: p.ID}
	default:
		return &mtp.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	}
}

// ResolvePeer resolves a public username to a peer with its access hash.
func (c *Client) ResolvePeer(ctx context.Context, username string) (tg.Peer, error) {
	res, err := c.raw().ContactsResolveUsername(ctx, username)
	if err != nil {
		return tg.Peer{}, fmt.Errorf("resolve %q: %w", username, mapErr(err))
	}

	switch p := res.Peer.(type) {
	case *mtp.PeerUser:
		for _, uc := range res.Users {
			if u, ok := uc.(*mtp.User); ok && u.ID == p.UserID {
				hash, _ := u.GetAccessHash()
				return tg.Peer{Kind: tg.PeerUser, ID: u.ID, AccessHash: hash}, nil
			}
		}
	case *mtp.PeerChannel:
		for _, cc := range res.Chats {
			if ch, ok := cc.(*mtp.Channel); ok && ch.ID == p.ChannelID {
				hash, _ := ch.GetAccessHash()
				return tg.Peer{Kind: tg.PeerChannel, ID: ch.ID, AccessHash: hash}, nil
			}
		}
	case *mtp.PeerChat:
		return tg.Peer{Kind: tg.PeerChat, ID: p.ChatID}, nil
	}
	return tg.Peer{}, fmt.Errorf("resolve %q: %w", username, tg.ErrNotFound)
}

func randomID() int64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func randomIDs(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = randomID()
	}
	return ids
}
