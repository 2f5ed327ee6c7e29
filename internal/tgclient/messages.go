package tgclient

import (
	"context"
	"fmt"
	"slices"

	mtp "github.com/gotd/td/tg"

	"github.com/nkarpov/telesync/internal/tg"
)

const historyPageSize = 100

// History fetches the complete dialog history, oldest first. The platform
// pages newest-first; pages are accumulated and reversed at the end.
func (c *Client) History(ctx context.Context, peer tg.Peer) ([]tg.Message, error) {
	var out []tg.Message
	offsetID := 0
	for {
		res, err := c.raw().MessagesGetHistory(ctx, &mtp.MessagesGetHistoryRequest{
			Peer:     inputPeer(peer),
			OffsetID: offsetID,
			Limit:    historyPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("get history: %w", mapErr(err))
		}
		batch, page, err := historyMessages(res)
		if err != nil {
			return nil, err
		}
		if page.count == 0 {
			break
		}
		out = append(out, batch...)
		// Termination and the next offset follow the raw page: converted
		// entries can be fewer when the page contains holes.
		offsetID = page.minID
		if page.count < historyPageSize {
			break
		}
	}
	slices.Reverse(out)
	return out, nil
}

// Recent fetches the newest messages of a dialog, newest first.
func (c *Client) Recent(ctx context.Context, peer tg.Peer, limit int) ([]tg.Message, error) {
	res, err := c.raw().MessagesGetHistory(ctx, &mtp.MessagesGetHistoryRequest{
		Peer:  inputPeer(peer),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get recent: %w", mapErr(err))
	}
	batch, _, err := historyMessages(res)
	return batch, err
}

// Forward copies messages between dialogs, preserving media and album
// grouping. Returned messages are the created copies, oldest first.
func (c *Client) Forward(ctx context.Context, from, to tg.Peer, ids []int, silent bool) ([]tg.Message, error) {
	upd, err := c.raw().MessagesForwardMessages(ctx, &mtp.MessagesForwardMessagesRequest{
		Silent:   silent,
		FromPeer: inputPeer(from),
		ToPeer:   inputPeer(to),
		ID:       ids,
		RandomID: randomIDs(len(ids)),
	})
	if err != nil {
		return nil, fmt.Errorf("forward: %w", mapErr(err))
	}
	return createdMessages(upd), nil
}

// SendText sends a plain text message, optionally as a reply. A zero
// replyTo sends without a reply header.
func (c *Client) SendText(ctx context.Context, to tg.Peer, text string, replyTo int) (tg.Message, error) {
	req := &mtp.MessagesSendMessageRequest{
		Peer:     inputPeer(to),
		Message:  text,
		RandomID: randomID(),
	}
	if replyTo != 0 {
		req.SetReplyTo(&mtp.InputReplyToMessage{ReplyToMsgID: replyTo})
	}
	upd, err := c.raw().MessagesSendMessage(ctx, req)
	if err != nil {
		return tg.Message{}, fmt.Errorf("send text: %w", mapErr(err))
	}

	// Plain sends come back as a short update without the full message.
	if short, ok := upd.(*mtp.UpdateShortSentMessage); ok {
		return tg.Message{ID: short.ID, Text: text, ReplyTo: replyTo}, nil
	}
	created := createdMessages(upd)
	if len(created) == 0 {
		return tg.Message{}, fmt.Errorf("send text returned no message: %w", tg.ErrNotFound)
	}
	return created[0], nil
}

// SendMedia re-sends already-uploaded media, as a single message or an
// album, optionally as a reply. The caption lands on the first element.
func (c *Client) SendMedia(ctx context.Context, to tg.Peer, media []tg.MediaRef, caption string, replyTo int) ([]tg.Message, error) {
	if len(media) == 0 {
		return nil, fmt.Errorf("send media: empty media list")
	}

	if len(media) == 1 {
		req := &mtp.MessagesSendMediaRequest{
			Peer:     inputPeer(to),
			Media:    inputMedia(media[0]),
			Message:  caption,
			RandomID: randomID(),
		}
		if replyTo != 0 {
			req.SetReplyTo(&mtp.InputReplyToMessage{ReplyToMsgID: replyTo})
		}
		upd, err := c.raw().MessagesSendMedia(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("send media: %w", mapErr(err))
		}
		return createdMessages(upd), nil
	}

	items := make([]mtp.InputSingleMedia, len(media))
	for i, m := range media {
		items[i] = mtp.InputSingleMedia{
			Media:    inputMedia(m),
			RandomID: randomID(),
		}
	}
	items[0].Message = caption

	req := &mtp.MessagesSendMultiMediaRequest{
		Peer:       inputPeer(to),
		MultiMedia: items,
	}
	if replyTo != 0 {
		req.SetReplyTo(&mtp.InputReplyToMessage{ReplyToMsgID: replyTo})
	}
	upd, err := c.raw().MessagesSendMultiMedia(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("send album: %w", mapErr(err))
	}
	return createdMessages(upd), nil
}

// Pin pins a message in a dialog without the notification broadcast.
func (c *Client) Pin(ctx context.Context, peer tg.Peer, id int) error {
	_, err := c.raw().MessagesUpdatePinnedMessage(ctx, &mtp.MessagesUpdatePinnedMessageRequest{
		Silent: true,
		Peer:   inputPeer(peer),
		ID:     id,
	})
	if err != nil {
		return fmt.Errorf("pin message: %w", mapErr(err))
	}
	return nil
}

// Delete removes messages for both sides of the dialog.
func (c *Client) Delete(ctx context.Context, peer tg.Peer, ids []int) error {
	switch peer.Kind {
	case tg.PeerChannel:
		_, err := c.raw().ChannelsDeleteMessages(ctx, &mtp.ChannelsDeleteMessagesRequest{
			Channel: &mtp.InputChannel{ChannelID: peer.ID, AccessHash: peer.AccessHash},
			ID:      ids,
		})
		if err != nil {
			return fmt.Errorf("delete channel messages: %w", mapErr(err))
		}
	default:
		_, err := c.raw().MessagesDeleteMessages(ctx, &mtp.MessagesDeleteMessagesRequest{
			Revoke: true,
			ID:     ids,
		})
		if err != nil {
			return fmt.Errorf("delete messages: %w", mapErr(err))
		}
	}
	return nil
}

func inputMedia(m tg.MediaRef) mtp.InputMediaClass {
	switch m.Kind {
	case tg.MediaPhoto:
		return &mtp.InputMediaPhoto{ID: &mtp.InputPhoto{
			ID:            m.ID,
			AccessHash:    m.AccessHash,
			FileReference: m.FileReference,
		}}
	default:
		return &mtp.InputMediaDocument{ID: &mtp.InputDocument{
			ID:            m.ID,
			AccessHash:    m.AccessHash,
			FileReference: m.FileReference,
		}}
	}
}

// historyPage describes the raw shape of one history response page.
type historyPage struct {
	count int
	minID int
}

func historyMessages(res mtp.MessagesMessagesClass) ([]tg.Message, historyPage, error) {
	modified, ok := res.AsModified()
	if !ok {
		return nil, historyPage{}, fmt.Errorf("unexpected history response %T", res)
	}
	raw := modified.GetMessages()
	page := historyPage{count: len(raw)}
	var out []tg.Message
	for i, mc := range raw {
		if id := mc.GetID(); i == 0 || id < page.minID {
			page.minID = id
		}
		if m, ok := convertMessage(mc); ok {
			out = append(out, m)
		}
	}
	return out, page, nil
}

// createdMessages extracts the messages materialized by a write request
// from its update box, oldest first.
func createdMessages(u mtp.UpdatesClass) []tg.Message {
	var updates []mtp.UpdateClass
	switch box := u.(type) {
	case *mtp.Updates:
		updates = box.Updates
	case *mtp.UpdatesCombined:
		updates = box.Updates
	default:
		return nil
	}

	var out []tg.Message
	for _, uc := range updates {
		var mc mtp.MessageClass
		switch upd := uc.(type) {
		case *mtp.UpdateNewMessage:
			mc = upd.Message
		case *mtp.UpdateNewChannelMessage:
			mc = upd.Message
		default:
			continue
		}
		if m, ok := convertMessage(mc); ok {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b tg.Message) int { return a.ID - b.ID })
	return out
}

func convertMessage(mc mtp.MessageClass) (tg.Message, bool) {
	switch m := mc.(type) {
	case *mtp.Message:
		out := tg.Message{
			ID:     m.ID,
			Text:   m.Message,
			Pinned: m.Pinned,
		}
		if gid, ok := m.GetGroupedID(); ok {
			out.GroupedID = gid
		}
		if hc, ok := m.GetReplyTo(); ok {
			if h, ok := hc.(*mtp.MessageReplyHeader); ok {
				if id, ok := h.GetReplyToMsgID(); ok {
					out.ReplyTo = id
				}
			}
		}
		if media, ok := m.GetMedia(); ok {
			out.Media = convertMedia(media)
		}
		return out, true
	case *mtp.MessageService:
		return tg.Message{ID: m.ID, Service: true}, true
	default:
		return tg.Message{}, false
	}
}

func convertMedia(mc mtp.MessageMediaClass) *tg.MediaRef {
	switch media := mc.(type) {
	case *mtp.MessageMediaPhoto:
		pc, ok := media.GetPhoto()
		if !ok {
			return nil
		}
		photo, ok := pc.AsNotEmpty()
		if !ok {
			return nil
		}
		return &tg.MediaRef{
			Kind:          tg.MediaPhoto,
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
		}
	case *mtp.MessageMediaDocument:
		dc, ok := media.GetDocument()
		if !ok {
			return nil
		}
		doc, ok := dc.AsNotEmpty()
		if !ok {
			return nil
		}
		return &tg.MediaRef{
			Kind:          tg.MediaDocument,
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}
	}
	return nil
}
