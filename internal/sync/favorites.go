package sync

import (
	"context"
	"fmt"
	"slices"

	"github.com/nkarpov/telesync/internal/tg"
	"go.uber.org/zap"
)

// Favorites replays the sender's saved-messages history onto the
// recipient's saved messages, preserving album grouping, reply linkage and
// pin state.
//
// The platform's forward API drops cross-account reply links, so every
// group takes two hops: a silent forward from the sender's saved messages
// into the sender-recipient dialog (the staging chat), then a re-fetch on
// the recipient side and a final send into the recipient's saved messages
// with the reply target remapped. Staged copies are deleted afterwards.
type Favorites struct {
	sender        tg.Client
	recipient     tg.Client
	senderName    string
	recipientName string
	pace          *Pacer
	job           *Job
	logger        *zap.Logger

	// remap grows monotonically over one run: source message id to the id
	// of its copy in the recipient's saved messages. Not persisted; a crash
	// mid-run loses reply resolution for already-sent messages.
	remap map[int]int
}

// NewFavorites creates the favorites engine for one run.
func NewFavorites(sender, recipient tg.Client, senderName, recipientName string, pace *Pacer, job *Job, logger *zap.Logger) *Favorites {
	return &Favorites{
		sender:        sender,
		recipient:     recipient,
		senderName:    senderName,
		recipientName: recipientName,
		pace:          pace,
		job:           job,
		logger:        logger,
		remap:         make(map[int]int),
	}
}

// messageGroup buffers one maximal run of album messages, or a singleton.
// The pinned flag is OR-ed over members; the first reply reference
// encountered wins.
type messageGroup struct {
	albumID int64
	ids     []int
	pinned  bool
	replyTo int
}

func (g *messageGroup) open() bool { return len(g.ids) > 0 }

func (g *messageGroup) add(m tg.Message) {
	g.albumID = m.GroupedID
	g.ids = append(g.ids, m.ID)
	if m.Pinned {
		g.pinned = true
	}
	if g.replyTo == 0 && m.ReplyTo != 0 {
		g.replyTo = m.ReplyTo
	}
}

func (g *messageGroup) reset() {
	*g = messageGroup{}
}

// Run executes the favorites job. The first error aborts remaining work;
// nothing already forwarded is rolled back.
func (f *Favorites) Run(ctx context.Context) error {
	if err := connectBoth(ctx, f.sender, f.recipient); err != nil {
		return err
	}

	// Four views of two dialogs: each side resolving its own username
	// yields its saved messages; resolving the other side's username
	// yields the shared staging dialog.
	srcPeer, err := f.sender.ResolvePeer(ctx, f.senderName)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	fwdPeer, err := f.sender.ResolvePeer(ctx, f.recipientName)
	if err != nil {
		return fmt.Errorf("resolve staging (sender side): %w", err)
	}
	stagePeer, err := f.recipient.ResolvePeer(ctx, f.senderName)
	if err != nil {
		return fmt.Errorf("resolve staging (recipient side): %w", err)
	}
	dstPeer, err := f.recipient.ResolvePeer(ctx, f.recipientName)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	history, err := f.sender.History(ctx, srcPeer)
	if err != nil {
		return fmt.Errorf("fetch source history: %w", err)
	}
	f.job.SetTotal(len(history))

	var group messageGroup
	for i, m := range history {
		f.job.Step(i + 1)
		if m.Service {
			continue
		}

		if m.GroupedID != 0 {
			if group.open() && group.albumID != m.GroupedID {
				if err := f.flush(ctx, &group, srcPeer, fwdPeer, stagePeer, dstPeer); err != nil {
					return err
				}
				group.reset()
			}
			group.add(m)
			continue
		}

		if group.open() {
			if err := f.flush(ctx, &group, srcPeer, fwdPeer, stagePeer, dstPeer); err != nil {
				return err
			}
			group.reset()
		}

		single := messageGroup{}
		single.add(m)
		if err := f.flush(ctx, &single, srcPeer, fwdPeer, stagePeer, dstPeer); err != nil {
			return err
		}
	}

	if group.open() {
		if err := f.flush(ctx, &group, srcPeer, fwdPeer, stagePeer, dstPeer); err != nil {
			return err
		}
	}
	return nil
}

// flush pushes one buffered group through the staging dialog into the
// recipient's saved messages.
func (f *Favorites) flush(ctx context.Context, g *messageGroup, srcPeer, fwdPeer, stagePeer, dstPeer tg.Peer) error {
	if err := f.pace.Wait(ctx); err != nil {
		return err
	}
	if _, err := f.sender.Forward(ctx, srcPeer, fwdPeer, g.ids, true); err != nil {
		return fmt.Errorf("forward group to staging: %w", err)
	}

	// Re-fetch from the recipient side to learn the staged copies' ids and
	// media references. Recent returns newest-first.
	staged, err := f.recipient.Recent(ctx, stagePeer, len(g.ids))
	if err != nil {
		return fmt.Errorf("fetch staged group: %w", err)
	}
	if len(staged) == 0 {
		return fmt.Errorf("staged group vanished: %w", tg.ErrNotFound)
	}

	var created []tg.Message
	if g.replyTo != 0 {
		// Reply target of a parent outside the synced history stays
		// unmapped; the send then carries no reply header.
		dest := f.remap[g.replyTo]
		created, err = f.resendAsReply(ctx, staged, dstPeer, dest)
	} else {
		// Staged order is newest-first; forward oldest-first to keep the
		// destination history in source order.
		ids := messageIDs(staged)
		slices.Reverse(ids)
		created, err = f.recipient.Forward(ctx, stagePeer, dstPeer, ids, false)
	}
	if err != nil {
		return err
	}
	if len(created) == 0 {
		return fmt.Errorf("destination write returned no messages: %w", tg.ErrNotFound)
	}

	// Every member of the group maps to the destination copy so that a
	// later reply to any album member resolves.
	for _, id := range g.ids {
		f.remap[id] = created[0].ID
	}

	if g.pinned {
		if err := f.pace.Wait(ctx); err != nil {
			return err
		}
		if err := f.recipient.Pin(ctx, dstPeer, newestID(created)); err != nil {
			return fmt.Errorf("pin destination message: %w", err)
		}
	}

	// Drop the staged copies; they were only a vehicle for media refs and
	// destination-side ids.
	if err := f.pace.Wait(ctx); err != nil {
		return err
	}
	if err := f.recipient.Delete(ctx, stagePeer, messageIDs(staged)); err != nil {
		return fmt.Errorf("delete staged copies: %w", err)
	}

	f.logger.Info("group flushed",
		zap.Int("size", len(g.ids)),
		zap.Bool("pinned", g.pinned),
		zap.Int("reply_to", g.replyTo),
	)
	return nil
}

// resendAsReply re-sends staged content into the destination with the
// resolved reply target. Media groups go out as one album with the caption
// of the last fetched message; plain text replies re-send the first fetched
// message's text. A zero dest sends without a reply header.
func (f *Favorites) resendAsReply(ctx context.Context, staged []tg.Message, dstPeer tg.Peer, dest int) ([]tg.Message, error) {
	if err := f.pace.Wait(ctx); err != nil {
		return nil, err
	}
	if staged[0].HasMedia() {
		media := make([]tg.MediaRef, 0, len(staged))
		// Staged order is newest-first; the album is re-sent oldest-first.
		for i := len(staged) - 1; i >= 0; i-- {
			if staged[i].Media != nil {
				media = append(media, *staged[i].Media)
			}
		}
		caption := staged[len(staged)-1].Text
		created, err := f.recipient.SendMedia(ctx, dstPeer, media, caption, dest)
		if err != nil {
			return nil, fmt.Errorf("send media reply: %w", err)
		}
		return created, nil
	}

	created, err := f.recipient.SendText(ctx, dstPeer, staged[0].Text, dest)
	if err != nil {
		return nil, fmt.Errorf("send text reply: %w", err)
	}
	return []tg.Message{created}, nil
}

func messageIDs(msgs []tg.Message) []int {
	ids := make([]int, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func newestID(msgs []tg.Message) int {
	newest := msgs[0].ID
	for _, m := range msgs[1:] {
		if m.ID > newest {
			newest = m.ID
		}
	}
	return newest
}

// connectBoth connects both sides, skipping sides already connected.
func connectBoth(ctx context.Context, sender, recipient tg.Client) error {
	if !sender.Connected() {
		if err := sender.Connect(ctx); err != nil {
			return fmt.Errorf("connect sender: %w", err)
		}
	}
	if !recipient.Connected() {
		if err := recipient.Connect(ctx); err != nil {
			return fmt.Errorf("connect recipient: %w", err)
		}
	}
	return nil
}
