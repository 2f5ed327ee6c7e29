package tg

import "time"

// PeerKind distinguishes the three entity classes the platform exposes.
type PeerKind int

const (
	PeerUser PeerKind = iota
	PeerChat
	PeerChannel
)

// Peer is a resolved entity reference. AccessHash is platform-opaque and
// only meaningful to the client that resolved it.
type Peer struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

// MediaKind classifies attached media well enough to re-send it.
type MediaKind int

const (
	MediaPhoto MediaKind = iota
	MediaDocument
)

// MediaRef points at an already-uploaded media object so it can be attached
// to a new message without re-uploading.
type MediaRef struct {
	Kind          MediaKind
	ID            int64
	AccessHash    int64
	FileReference []byte
}

// Message is one message of a dialog history. GroupedID is zero for
// non-album messages; ReplyTo is zero when the message replies to nothing.
// Service messages carry no copyable content and are skipped by sync.
type Message struct {
	ID        int
	Text      string
	GroupedID int64
	Pinned    bool
	ReplyTo   int
	Media     *MediaRef
	Service   bool
}

// HasMedia reports whether the message carries re-sendable media.
func (m Message) HasMedia() bool { return m.Media != nil }

// DialogKind distinguishes dialog entity classes when filtering memberships.
type DialogKind int

const (
	DialogUser DialogKind = iota
	DialogBasicChat
	DialogChannel
)

// Dialog is one entry of the account's dialog list.
type Dialog struct {
	Kind     DialogKind
	Username string
	Title    string
	Archived bool
	Pinned   bool
}

// Public reports whether the dialog is a joinable public channel or
// supergroup: channel-kind with a username. User dialogs and basic chats
// are never joinable by username.
func (d Dialog) Public() bool {
	return d.Kind == DialogChannel && d.Username != ""
}

// UserProfile holds the copyable profile fields. Clients must coerce
// platform nulls to empty strings before returning it, so an unset field
// always overwrites as empty rather than being skipped.
type UserProfile struct {
	FirstName string
	LastName  string
	Bio       string
}

// Avatar is one profile photo or video avatar. FileReference and SizeType
// are platform-opaque download hints filled by the client that listed the
// avatar; SizeType names the largest stored size.
type Avatar struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	Date          time.Time
	Video         bool
	SizeType      string
}

// GlobalPrivacy mirrors the account-level privacy toggles copied in one
// request after the per-category rules.
type GlobalPrivacy struct {
	ArchiveAndMuteNewChats bool
	KeepArchivedUnmuted    bool
	KeepArchivedFolders    bool
	HideReadMarks          bool
	NewChatsRequirePremium bool
}
