// Package tg defines the chat platform contract the sync engines run over.
// The MTProto binding lives in internal/tgclient; tests run the engines
// against in-memory fakes.
package tg

import "context"

// Client is one authenticated account session. Recent returns newest-first
// (platform order); History returns the complete dialog oldest-first.
// Connect is idempotent.
type Client interface {
	Connect(ctx context.Context) error
	Connected() bool
	Close(ctx context.Context) error

	ResolvePeer(ctx context.Context, username string) (Peer, error)
	History(ctx context.Context, peer Peer) ([]Message, error)
	Recent(ctx context.Context, peer Peer, limit int) ([]Message, error)
	Forward(ctx context.Context, from, to Peer, ids []int, silent bool) ([]Message, error)
	SendText(ctx context.Context, to Peer, text string, replyTo int) (Message, error)
	SendMedia(ctx context.Context, to Peer, media []MediaRef, caption string, replyTo int) ([]Message, error)
	Pin(ctx context.Context, peer Peer, id int) error
	Delete(ctx context.Context, peer Peer, ids []int) error

	Me(ctx context.Context) (UserProfile, error)
	UpdateProfile(ctx context.Context, p UserProfile) error
	Avatars(ctx context.Context) ([]Avatar, error)
	DownloadAvatar(ctx context.Context, a Avatar) ([]byte, error)
	UploadAvatar(ctx context.Context, name string, blob []byte, video bool) error

	Dialogs(ctx context.Context) ([]Dialog, error)
	JoinChannel(ctx context.Context, username string) error
	ArchiveDialog(ctx context.Context, username string) error
	PinDialog(ctx context.Context, username string) error

	PrivacyRules(ctx context.Context, key PrivacyKey) ([]PrivacyRule, error)
	SetPrivacyRules(ctx context.Context, key PrivacyKey, rules []PrivacyRule) error
	GlobalPrivacy(ctx context.Context) (GlobalPrivacy, error)
	SetGlobalPrivacy(ctx context.Context, gp GlobalPrivacy) error
}

// Factory opens a Client for a stored credential reference.
type Factory interface {
	Open(ctx context.Context, credentialRef string) (Client, error)
}
