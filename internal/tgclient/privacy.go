package tgclient

import (
	"context"
	"fmt"

	mtp "github.com/gotd/td/tg"

	"github.com/nkarpov/telesync/internal/tg"
)

// PrivacyRules reads the rule list of one privacy category in the
// response shape, target lists included.
func (c *Client) PrivacyRules(ctx context.Context, key tg.PrivacyKey) ([]tg.PrivacyRule, error) {
	res, err := c.raw().AccountGetPrivacy(ctx, inputPrivacyKey(key))
	if err != nil {
		return nil, fmt.Errorf("get privacy %s: %w", key, mapErr(err))
	}
	out := make([]tg.PrivacyRule, 0, len(res.Rules))
	for _, rc := range res.Rules {
		if r, ok := convertPrivacyRule(rc); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// SetPrivacyRules writes a translated rule list onto one category.
func (c *Client) SetPrivacyRules(ctx context.Context, key tg.PrivacyKey, rules []tg.PrivacyRule) error {
	input := make([]mtp.InputPrivacyRuleClass, 0, len(rules))
	for _, r := range rules {
		ir, err := inputPrivacyRule(r)
		if err != nil {
			return fmt.Errorf("set privacy %s: %w", key, err)
		}
		input = append(input, ir)
	}
	_, err := c.raw().AccountSetPrivacy(ctx, &mtp.AccountSetPrivacyRequest{
		Key:   inputPrivacyKey(key),
		Rules: input,
	})
	if err != nil {
		return fmt.Errorf("set privacy %s: %w", key, mapErr(err))
	}
	return nil
}

// GlobalPrivacy reads the account-level privacy toggles.
func (c *Client) GlobalPrivacy(ctx context.Context) (tg.GlobalPrivacy, error) {
	gp, err := c.raw().AccountGetGlobalPrivacySettings(ctx)
	if err != nil {
		return tg.GlobalPrivacy{}, fmt.Errorf("get global privacy: %w", mapErr(err))
	}
	return tg.GlobalPrivacy{
		ArchiveAndMuteNewChats: gp.ArchiveAndMuteNewNoncontactPeers,
		KeepArchivedUnmuted:    gp.KeepArchivedUnmuted,
		KeepArchivedFolders:    gp.KeepArchivedFolders,
		HideReadMarks:          gp.HideReadMarks,
		NewChatsRequirePremium: gp.NewNoncontactPeersRequirePremium,
	}, nil
}

// SetGlobalPrivacy writes the account-level privacy toggles.
func (c *Client) SetGlobalPrivacy(ctx context.Context, gp tg.GlobalPrivacy) error {
	_, err := c.raw().AccountSetGlobalPrivacySettings(ctx, mtp.GlobalPrivacySettings{
		ArchiveAndMuteNewNoncontactPeers: gp.ArchiveAndMuteNewChats,
		KeepArchivedUnmuted:              gp.KeepArchivedUnmuted,
		KeepArchivedFolders:              gp.KeepArchivedFolders,
		HideReadMarks:                    gp.HideReadMarks,
		NewNoncontactPeersRequirePremium: gp.NewChatsRequirePremium,
	})
	if err != nil {
		return fmt.Errorf("set global privacy: %w", mapErr(err))
	}
	return nil
}

func inputPrivacyKey(k tg.PrivacyKey) mtp.InputPrivacyKeyClass {
	switch k {
	case tg.KeyPhoneNumber:
		return &mtp.InputPrivacyKeyPhoneNumber{}
	case tg.KeyAddedByPhone:
		return &mtp.InputPrivacyKeyAddedByPhone{}
	case tg.KeyStatusTimestamp:
		return &mtp.InputPrivacyKeyStatusTimestamp{}
	case tg.KeyProfilePhoto:
		return &mtp.InputPrivacyKeyProfilePhoto{}
	case tg.KeyAbout:
		return &mtp.InputPrivacyKeyAbout{}
	case tg.KeyBirthday:
		return &mtp.InputPrivacyKeyBirthday{}
	case tg.KeyForwards:
		return &mtp.InputPrivacyKeyForwards{}
	case tg.KeyPhoneCall:
		return &mtp.InputPrivacyKeyPhoneCall{}
	case tg.KeyPhoneP2P:
		return &mtp.InputPrivacyKeyPhoneP2P{}
	case tg.KeyChatInvite:
		return &mtp.InputPrivacyKeyChatInvite{}
	default:
		return &mtp.InputPrivacyKeyVoiceMessages{}
	}
}

func convertPrivacyRule(rc mtp.PrivacyRuleClass) (tg.PrivacyRule, bool) {
	switch r := rc.(type) {
	case *mtp.PrivacyValueAllowAll:
		return tg.PrivacyRule{Kind: tg.RuleAllowAll}, true
	case *mtp.PrivacyValueAllowPremium:
		return tg.PrivacyRule{Kind: tg.RuleAllowPremium}, true
	case *mtp.PrivacyValueAllowContacts:
		return tg.PrivacyRule{Kind: tg.RuleAllowContacts}, true
	case *mtp.PrivacyValueAllowCloseFriends:
		return tg.PrivacyRule{Kind: tg.RuleAllowCloseFriends}, true
	case *mtp.PrivacyValueAllowUsers:
		return tg.PrivacyRule{Kind: tg.RuleAllowUsers, Users: r.Users}, true
	case *mtp.PrivacyValueAllowChatParticipants:
		return tg.PrivacyRule{Kind: tg.RuleAllowChatParticipants, Chats: r.Chats}, true
	case *mtp.PrivacyValueDisallowAll:
		return tg.PrivacyRule{Kind: tg.RuleDisallowAll}, true
	case *mtp.PrivacyValueDisallowContacts:
		return tg.PrivacyRule{Kind: tg.RuleDisallowContacts}, true
	case *mtp.PrivacyValueDisallowUsers:
		return tg.PrivacyRule{Kind: tg.RuleDisallowUsers, Users: r.Users}, true
	case *mtp.PrivacyValueDisallowChatParticipants:
		return tg.PrivacyRule{Kind: tg.RuleDisallowChatParticipants, Chats: r.Chats}, true
	}
	return tg.PrivacyRule{}, false
}

func inputPrivacyRule(r tg.PrivacyRule) (mtp.InputPrivacyRuleClass, error) {
	switch r.Kind {
	case tg.RuleAllowAll:
		return &mtp.InputPrivacyValueAllowAll{}, nil
	case tg.RuleAllowPremium:
		return &mtp.InputPrivacyValueAllowPremium{}, nil
	case tg.RuleAllowContacts:
		return &mtp.InputPrivacyValueAllowContacts{}, nil
	case tg.RuleAllowCloseFriends:
		return &mtp.InputPrivacyValueAllowCloseFriends{}, nil
	case tg.RuleAllowUsers:
		return &mtp.InputPrivacyValueAllowUsers{Users: []mtp.InputUserClass{}}, nil
	case tg.RuleAllowChatParticipants:
		return &mtp.InputPrivacyValueAllowChatParticipants{Chats: []int64{}}, nil
	case tg.RuleDisallowAll:
		return &mtp.InputPrivacyValueDisallowAll{}, nil
	case tg.RuleDisallowContacts:
		return &mtp.InputPrivacyValueDisallowContacts{}, nil
	case tg.RuleDisallowUsers:
		return &mtp.InputPrivacyValueDisallowUsers{Users: []mtp.InputUserClass{}}, nil
	case tg.RuleDisallowChatParticipants:
		return &mtp.InputPrivacyValueDisallowChatParticipants{Chats: []int64{}}, nil
	}
	return nil, fmt.Errorf("unknown privacy rule kind %d", r.Kind)
}
