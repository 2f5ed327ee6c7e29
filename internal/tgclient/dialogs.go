package tgclient

import (
	"context"
	"fmt"

	mtp "github.com/gotd/td/tg"

	"github.com/nkarpov/telesync/internal/tg"
)

const (
	dialogPageSize  = 100
	archiveFolderID = 1
)

// Dialogs lists the account's complete dialog list, archived entries
// included.
func (c *Client) Dialogs(ctx context.Context) ([]tg.Dialog, error) {
	var out []tg.Dialog
	offset := dialogOffset{peer: &mtp.InputPeerEmpty{}}
	for {
		res, err := c.raw().MessagesGetDialogs(ctx, &mtp.MessagesGetDialogsRequest{
			OffsetDate: offset.date,
			OffsetID:   offset.id,
			OffsetPeer: offset.peer,
			Limit:      dialogPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("get dialogs: %w", mapErr(err))
		}
		batch, next, err := convertDialogs(res)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if next == nil || len(batch) < dialogPageSize {
			break
		}
		offset = *next
	}
	return out, nil
}

// JoinChannel joins a public channel or supergroup by username.
func (c *Client) JoinChannel(ctx context.Context, username string) error {
	peer, err := c.ResolvePeer(ctx, username)
	if err != nil {
		return err
	}
	if peer.Kind != tg.PeerChannel {
		return fmt.Errorf("join %q: not a channel: %w", username, tg.ErrNotFound)
	}
	_, err = c.raw().ChannelsJoinChannel(ctx, &mtp.InputChannel{
		ChannelID:  peer.ID,
		AccessHash: peer.AccessHash,
	})
	if err != nil {
		return fmt.Errorf("join %q: %w", username, mapErr(err))
	}
	return nil
}

// ArchiveDialog moves a dialog into the archive folder.
func (c *Client) ArchiveDialog(ctx context.Context, username string) error {
	peer, err := c.ResolvePeer(ctx, username)
	if err != nil {
		return err
	}
	_, err = c.raw().FoldersEditPeerFolders(ctx, []mtp.InputFolderPeer{{
		Peer:     inputPeer(peer),
		FolderID: archiveFolderID,
	}})
	if err != nil {
		return fmt.Errorf("archive %q: %w", username, mapErr(err))
	}
	return nil
}

// PinDialog pins a dialog to the top of its folder.
func (c *Client) PinDialog(ctx context.Context, username string) error {
	peer, err := c.ResolvePeer(ctx, username)
	if err != nil {
		return err
	}
	_, err = c.raw().MessagesToggleDialogPin(ctx, &mtp.MessagesToggleDialogPinRequest{
		Pinned: true,
		Peer:   &mtp.InputDialogPeer{Peer: inputPeer(peer)},
	})
	if err != nil {
		return fmt.Errorf("pin dialog %q: %w", username, mapErr(err))
	}
	return nil
}

// dialogOffset is the pagination cursor of messages.getDialogs: the date
// and id of the previous page's last top message plus its peer.
type dialogOffset struct {
	date int
	id   int
	peer mtp.InputPeerClass
}

func convertDialogs(res mtp.MessagesDialogsClass) ([]tg.Dialog, *dialogOffset, error) {
	var (
		dialogs  []mtp.DialogClass
		messages []mtp.MessageClass
		chats    []mtp.ChatClass
		users    []mtp.UserClass
		partial  bool
	)
	switch r := res.(type) {
	case *mtp.MessagesDialogs:
		dialogs, messages, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
	case *mtp.MessagesDialogsSlice:
		dialogs, messages, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
		partial = true
	default:
		return nil, nil, fmt.Errorf("unexpected dialogs response %T", res)
	}

	userIndex := make(map[int64]*mtp.User, len(users))
	for _, uc := range users {
		if u, ok := uc.(*mtp.User); ok {
			userIndex[u.ID] = u
		}
	}
	chatIndex := make(map[int64]mtp.ChatClass, len(chats))
	for _, cc := range chats {
		switch ch := cc.(type) {
		case *mtp.Chat:
			chatIndex[ch.ID] = ch
		case *mtp.Channel:
			chatIndex[ch.ID] = ch
		}
	}

	var out []tg.Dialog
	var last *mtp.Dialog
	for _, dc := range dialogs {
		d, ok := dc.(*mtp.Dialog)
		if !ok {
			// Folder meta entries carry no membership.
			continue
		}
		last = d

		entry := tg.Dialog{Pinned: d.Pinned}
		if fid, ok := d.GetFolderID(); ok && fid == archiveFolderID {
			entry.Archived = true
		}

		switch p := d.Peer.(type) {
		case *mtp.PeerUser:
			entry.Kind = tg.DialogUser
			if u, ok := userIndex[p.UserID]; ok {
				entry.Username, _ = u.GetUsername()
				entry.Title = u.FirstName
			}
		case *mtp.PeerChat:
			entry.Kind = tg.DialogBasicChat
			if ch, ok := chatIndex[p.ChatID].(*mtp.Chat); ok {
				entry.Title = ch.Title
			}
		case *mtp.PeerChannel:
			entry.Kind = tg.DialogChannel
			if ch, ok := chatIndex[p.ChannelID].(*mtp.Channel); ok {
				entry.Username, _ = ch.GetUsername()
				entry.Title = ch.Title
			}
		}
		out = append(out, entry)
	}

	if !partial || last == nil {
		return out, nil, nil
	}
	next := &dialogOffset{peer: dialogInputPeer(last.Peer, userIndex, chatIndex)}
	for _, mc := range messages {
		if m, ok := mc.(*mtp.Message); ok && m.ID == last.TopMessage {
			next.date = m.Date
			next.id = m.ID
			break
		}
	}
	return out, next, nil
}

func dialogInputPeer(p mtp.PeerClass, users map[int64]*mtp.User, chats map[int64]mtp.ChatClass) mtp.InputPeerClass {
	switch peer := p.(type) {
	case *mtp.PeerUser:
		if u, ok := users[peer.UserID]; ok {
			hash, _ := u.GetAccessHash()
			return &mtp.InputPeerUser{UserID: u.ID, AccessHash: hash}
		}
	case *mtp.PeerChat:
		return &mtp.InputPeerChat{ChatID: peer.ChatID}
	case *mtp.PeerChannel:
		if ch, ok := chats[peer.ChannelID].(*mtp.Channel); ok {
			hash, _ := ch.GetAccessHash()
			return &mtp.InputPeerChannel{ChannelID: ch.ID, AccessHash: hash}
		}
	}
	return &mtp.InputPeerEmpty{}
}
