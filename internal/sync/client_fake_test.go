package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkarpov/telesync/internal/tg"
)

// fakeWorld holds the message state shared by both fake clients, keyed by
// peer ID. Chat 1 is the sender's saved messages, chat 2 the staging
// dialog, chat 3 the recipient's saved messages.
type fakeWorld struct {
	mu     sync.Mutex
	chats  map[int64][]tg.Message
	nextID int

	forwards []forwardRecord
	pins     []pinRecord
	deletes  []deleteRecord
}

type forwardRecord struct {
	Client string
	FromID int64
	ToID   int64
	IDs    []int
	Silent bool
}

type pinRecord struct {
	PeerID int64
	MsgID  int
}

type deleteRecord struct {
	PeerID int64
	IDs    []int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		chats:  make(map[int64][]tg.Message),
		nextID: 1000,
	}
}

func (w *fakeWorld) add(chat int64, m tg.Message) tg.Message {
	m.ID = w.nextID
	w.nextID++
	w.chats[chat] = append(w.chats[chat], m)
	return m
}

func (w *fakeWorld) find(chat int64, id int) (tg.Message, bool) {
	for _, m := range w.chats[chat] {
		if m.ID == id {
			return m, true
		}
	}
	return tg.Message{}, false
}

// fakeClient implements tg.Client against the shared world plus local
// profile/dialog/privacy state. Zero-value maps are lazily tolerated; set
// errOn["Op"] to make one operation fail.
type fakeClient struct {
	name  string
	world *fakeWorld
	peers map[string]tg.Peer

	// Engines of one run connect concurrently; connection state is the
	// only fake state they share before the per-engine workloads diverge.
	connMu    sync.Mutex
	connected bool
	connects  int

	profile tg.UserProfile
	updated []tg.UserProfile
	avatars []tg.Avatar
	blobs   map[int64][]byte
	uploads []uploadRecord

	dialogs    []tg.Dialog
	member     map[string]bool
	joins      []string
	archives   []string
	dialogPins []string

	privacy       map[tg.PrivacyKey][]tg.PrivacyRule
	applied       map[tg.PrivacyKey][]tg.PrivacyRule
	global        tg.GlobalPrivacy
	appliedGlobal *tg.GlobalPrivacy

	errOn map[string]error
}

type uploadRecord struct {
	Name  string
	Size  int
	Video bool
}

func newFakeClient(name string, world *fakeWorld) *fakeClient {
	return &fakeClient{
		name:    name,
		world:   world,
		peers:   make(map[string]tg.Peer),
		blobs:   make(map[int64][]byte),
		member:  make(map[string]bool),
		privacy: make(map[tg.PrivacyKey][]tg.PrivacyRule),
		applied: make(map[tg.PrivacyKey][]tg.PrivacyRule),
		errOn:   make(map[string]error),
	}
}

func (c *fakeClient) fail(op string) error { return c.errOn[op] }

func (c *fakeClient) Connect(_ context.Context) error {
	if err := c.fail("Connect"); err != nil {
		return err
	}
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.connects++
	c.connected = true
	return nil
}

func (c *fakeClient) Connected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connected
}

func (c *fakeClient) Close(_ context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.connected = false
	return nil
}

func (c *fakeClient) connectCount() int {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connects
}

func (c *fakeClient) ResolvePeer(_ context.Context, username string) (tg.Peer, error) {
	if err := c.fail("ResolvePeer"); err != nil {
		return tg.Peer{}, err
	}
	p, ok := c.peers[username]
	if !ok {
		return tg.Peer{}, fmt.Errorf("resolve %q: %w", username, tg.ErrNotFound)
	}
	return p, nil
}

func (c *fakeClient) History(_ context.Context, peer tg.Peer) ([]tg.Message, error) {
	if err := c.fail("History"); err != nil {
		return nil, err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	out := make([]tg.Message, len(c.world.chats[peer.ID]))
	copy(out, c.world.chats[peer.ID])
	return out, nil
}

func (c *fakeClient) Recent(_ context.Context, peer tg.Peer, limit int) ([]tg.Message, error) {
	if err := c.fail("Recent"); err != nil {
		return nil, err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	chat := c.world.chats[peer.ID]
	if limit > len(chat) {
		limit = len(chat)
	}
	out := make([]tg.Message, 0, limit)
	for i := len(chat) - 1; i >= len(chat)-limit; i-- {
		out = append(out, chat[i])
	}
	return out, nil
}

func (c *fakeClient) Forward(_ context.Context, from, to tg.Peer, ids []int, silent bool) ([]tg.Message, error) {
	if err := c.fail("Forward"); err != nil {
		return nil, err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.world.forwards = append(c.world.forwards, forwardRecord{
		Client: c.name, FromID: from.ID, ToID: to.ID, IDs: append([]int(nil), ids...), Silent: silent,
	})
	var created []tg.Message
	for _, id := range ids {
		src, ok := c.world.find(from.ID, id)
		if !ok {
			return nil, fmt.Errorf("forward source %d: %w", id, tg.ErrNotFound)
		}
		// Forwarding drops pin state and reply linkage.
		src.Pinned = false
		src.ReplyTo = 0
		created = append(created, c.world.add(to.ID, src))
	}
	return created, nil
}

func (c *fakeClient) SendText(_ context.Context, to tg.Peer, text string, replyTo int) (tg.Message, error) {
	if err := c.fail("SendText"); err != nil {
		return tg.Message{}, err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	return c.world.add(to.ID, tg.Message{Text: text, ReplyTo: replyTo}), nil
}

func (c *fakeClient) SendMedia(_ context.Context, to tg.Peer, media []tg.MediaRef, caption string, replyTo int) ([]tg.Message, error) {
	if err := c.fail("SendMedia"); err != nil {
		return nil, err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	var created []tg.Message
	for i := range media {
		ref := media[i]
		m := tg.Message{Media: &ref}
		if i == 0 {
			m.Text = caption
			m.ReplyTo = replyTo
		}
		created = append(created, c.world.add(to.ID, m))
	}
	return created, nil
}

func (c *fakeClient) Pin(_ context.Context, peer tg.Peer, id int) error {
	if err := c.fail("Pin"); err != nil {
		return err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.world.pins = append(c.world.pins, pinRecord{PeerID: peer.ID, MsgID: id})
	chat := c.world.chats[peer.ID]
	for i := range chat {
		if chat[i].ID == id {
			chat[i].Pinned = true
		}
	}
	return nil
}

func (c *fakeClient) Delete(_ context.Context, peer tg.Peer, ids []int) error {
	if err := c.fail("Delete"); err != nil {
		return err
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.world.deletes = append(c.world.deletes, deleteRecord{PeerID: peer.ID, IDs: append([]int(nil), ids...)})
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []tg.Message
	for _, m := range c.world.chats[peer.ID] {
		if !drop[m.ID] {
			kept = append(kept, m)
		}
	}
	c.world.chats[peer.ID] = kept
	return nil
}

func (c *fakeClient) Me(_ context.Context) (tg.UserProfile, error) {
	if err := c.fail("Me"); err != nil {
		return tg.UserProfile{}, err
	}
	return c.profile, nil
}

func (c *fakeClient) UpdateProfile(_ context.Context, p tg.UserProfile) error {
	if err := c.fail("UpdateProfile"); err != nil {
		return err
	}
	c.updated = append(c.updated, p)
	return nil
}

func (c *fakeClient) Avatars(_ context.Context) ([]tg.Avatar, error) {
	if err := c.fail("Avatars"); err != nil {
		return nil, err
	}
	return append([]tg.Avatar(nil), c.avatars...), nil
}

func (c *fakeClient) DownloadAvatar(_ context.Context, a tg.Avatar) ([]byte, error) {
	if err := c.fail("DownloadAvatar"); err != nil {
		return nil, err
	}
	blob, ok := c.blobs[a.ID]
	if !ok {
		return nil, fmt.Errorf("avatar %d: %w", a.ID, tg.ErrNotFound)
	}
	return blob, nil
}

func (c *fakeClient) UploadAvatar(_ context.Context, name string, blob []byte, video bool) error {
	if err := c.fail("UploadAvatar"); err != nil {
		return err
	}
	c.uploads = append(c.uploads, uploadRecord{Name: name, Size: len(blob), Video: video})
	return nil
}

func (c *fakeClient) Dialogs(_ context.Context) ([]tg.Dialog, error) {
	if err := c.fail("Dialogs"); err != nil {
		return nil, err
	}
	return append([]tg.Dialog(nil), c.dialogs...), nil
}

func (c *fakeClient) JoinChannel(_ context.Context, username string) error {
	if err := c.fail("JoinChannel"); err != nil {
		return err
	}
	// Redundant joins are a platform no-op.
	if !c.member[username] {
		c.member[username] = true
	}
	c.joins = append(c.joins, username)
	return nil
}

func (c *fakeClient) ArchiveDialog(_ context.Context, username string) error {
	if err := c.fail("ArchiveDialog"); err != nil {
		return err
	}
	c.archives = append(c.archives, username)
	return nil
}

func (c *fakeClient) PinDialog(_ context.Context, username string) error {
	if err := c.fail("PinDialog"); err != nil {
		return err
	}
	c.dialogPins = append(c.dialogPins, username)
	return nil
}

func (c *fakeClient) PrivacyRules(_ context.Context, key tg.PrivacyKey) ([]tg.PrivacyRule, error) {
	if err := c.fail("PrivacyRules"); err != nil {
		return nil, err
	}
	return append([]tg.PrivacyRule(nil), c.privacy[key]...), nil
}

func (c *fakeClient) SetPrivacyRules(_ context.Context, key tg.PrivacyKey, rules []tg.PrivacyRule) error {
	if err := c.fail("SetPrivacyRules"); err != nil {
		return err
	}
	c.applied[key] = append([]tg.PrivacyRule(nil), rules...)
	return nil
}

func (c *fakeClient) GlobalPrivacy(_ context.Context) (tg.GlobalPrivacy, error) {
	if err := c.fail("GlobalPrivacy"); err != nil {
		return tg.GlobalPrivacy{}, err
	}
	return c.global, nil
}

func (c *fakeClient) SetGlobalPrivacy(_ context.Context, gp tg.GlobalPrivacy) error {
	if err := c.fail("SetGlobalPrivacy"); err != nil {
		return err
	}
	c.appliedGlobal = &gp
	return nil
}

// pair builds a linked sender/recipient fake pair over one world with the
// standard peer layout: chat 1 sender saved, chat 2 staging, chat 3
// recipient saved.
func pair(world *fakeWorld) (*fakeClient, *fakeClient) {
	sender := newFakeClient("sender", world)
	recipient := newFakeClient("recipient", world)

	sender.peers["alice"] = tg.Peer{Kind: tg.PeerUser, ID: 1}
	sender.peers["bob"] = tg.Peer{Kind: tg.PeerUser, ID: 2}
	recipient.peers["alice"] = tg.Peer{Kind: tg.PeerUser, ID: 2}
	recipient.peers["bob"] = tg.Peer{Kind: tg.PeerUser, ID: 3}
	return sender, recipient
}
