package tg

// PrivacyKey identifies one settable privacy category.
type PrivacyKey int

const (
	KeyPhoneNumber PrivacyKey = iota
	KeyAddedByPhone
	KeyStatusTimestamp
	KeyProfilePhoto
	KeyAbout
	KeyBirthday
	KeyForwards
	KeyPhoneCall
	KeyPhoneP2P
	KeyChatInvite
	KeyVoiceMessages
)

// PrivacyKeys returns all categories in the order they are synchronized.
func PrivacyKeys() []PrivacyKey {
	return []PrivacyKey{
		KeyPhoneNumber,
		KeyAddedByPhone,
		KeyStatusTimestamp,
		KeyProfilePhoto,
		KeyAbout,
		KeyBirthday,
		KeyForwards,
		KeyPhoneCall,
		KeyPhoneP2P,
		KeyChatInvite,
		KeyVoiceMessages,
	}
}

func (k PrivacyKey) String() string {
	switch k {
	case KeyPhoneNumber:
		return "phone_number"
	case KeyAddedByPhone:
		return "added_by_phone"
	case KeyStatusTimestamp:
		return "status_timestamp"
	case KeyProfilePhoto:
		return "profile_photo"
	case KeyAbout:
		return "about"
	case KeyBirthday:
		return "birthday"
	case KeyForwards:
		return "forwards"
	case KeyPhoneCall:
		return "phone_call"
	case KeyPhoneP2P:
		return "phone_p2p"
	case KeyChatInvite:
		return "chat_invite"
	case KeyVoiceMessages:
		return "voice_messages"
	default:
		return "unknown"
	}
}

// RuleKind is the closed set of privacy rule variants.
type RuleKind int

const (
	RuleAllowAll RuleKind = iota
	RuleAllowPremium
	RuleAllowContacts
	RuleAllowCloseFriends
	RuleAllowUsers
	RuleAllowChatParticipants
	RuleDisallowAll
	RuleDisallowContacts
	RuleDisallowUsers
	RuleDisallowChatParticipants
)

// PrivacyRule is one allow/disallow entry of a category's rule list.
// Users and Chats are only populated on rules read from the platform;
// TranslateRules drops them (target lists are not migrated).
type PrivacyRule struct {
	Kind  RuleKind
	Users []int64
	Chats []int64
}

// TranslateRules converts a response-shaped rule list into the request
// shape applied to the recipient. Every variant maps 1:1 with its target
// list emptied, except DisallowAll: it is dropped whenever an
// AllowContacts rule appears anywhere in the category's list, regardless
// of response order, because the platform rejects the conflicting pair.
func TranslateRules(rules []PrivacyRule) []PrivacyRule {
	allowContacts := containsKind(rules, RuleAllowContacts)
	out := make([]PrivacyRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Kind == RuleDisallowAll && allowContacts {
			continue
		}
		out = append(out, PrivacyRule{Kind: rule.Kind})
	}
	return out
}

func containsKind(rules []PrivacyRule, kind RuleKind) bool {
	for _, r := range rules {
		if r.Kind == kind {
			return true
		}
	}
	return false
}
