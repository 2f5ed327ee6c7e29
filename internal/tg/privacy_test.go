package tg

import "testing"

func kinds(rules []PrivacyRule) []RuleKind {
	out := make([]RuleKind, len(rules))
	for i, r := range rules {
		out[i] = r.Kind
	}
	return out
}

func TestTranslateRulesOneToOne(t *testing.T) {
	in := []PrivacyRule{
		{Kind: RuleAllowPremium},
		{Kind: RuleAllowCloseFriends},
		{Kind: RuleDisallowContacts},
	}
	out := TranslateRules(in)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i, k := range kinds(out) {
		if k != in[i].Kind {
			t.Errorf("out[%d] = %v, want %v", i, k, in[i].Kind)
		}
	}
}

func TestTranslateRulesDropsTargetLists(t *testing.T) {
	in := []PrivacyRule{
		{Kind: RuleAllowUsers, Users: []int64{1, 2}},
		{Kind: RuleDisallowChatParticipants, Chats: []int64{9}},
	}
	out := TranslateRules(in)
	for i, r := range out {
		if len(r.Users) != 0 || len(r.Chats) != 0 {
			t.Errorf("out[%d] carries target lists: %+v", i, r)
		}
	}
}

func TestTranslateRulesPrecedenceGuard(t *testing.T) {
	// AllowContacts before DisallowAll: the disallow-all entry is dropped.
	out := TranslateRules([]PrivacyRule{
		{Kind: RuleAllowContacts},
		{Kind: RuleDisallowAll},
	})
	for _, k := range kinds(out) {
		if k == RuleDisallowAll {
			t.Error("DisallowAll retained despite AllowContacts")
		}
	}
	if !containsKind(out, RuleAllowContacts) {
		t.Error("AllowContacts missing")
	}
}

func TestTranslateRulesDisallowAllAlone(t *testing.T) {
	out := TranslateRules([]PrivacyRule{{Kind: RuleDisallowAll}})
	if len(out) != 1 || out[0].Kind != RuleDisallowAll {
		t.Errorf("got %v, want lone DisallowAll", kinds(out))
	}
}

func TestTranslateRulesAllowAllAlone(t *testing.T) {
	out := TranslateRules([]PrivacyRule{{Kind: RuleAllowAll}})
	if len(out) != 1 || out[0].Kind != RuleAllowAll {
		t.Errorf("got %v, want lone AllowAll", kinds(out))
	}
}

func TestTranslateRulesDisallowAllBeforeAllowContacts(t *testing.T) {
	// The guard is order-independent: a leading disallow-all is dropped
	// just like a trailing one when allow-contacts is in the list.
	out := TranslateRules([]PrivacyRule{
		{Kind: RuleDisallowAll},
		{Kind: RuleAllowContacts},
	})
	if containsKind(out, RuleDisallowAll) {
		t.Errorf("got %v, DisallowAll should be dropped", kinds(out))
	}
	if !containsKind(out, RuleAllowContacts) {
		t.Error("AllowContacts missing")
	}
	if len(out) != 1 {
		t.Errorf("len = %d, want 1", len(out))
	}
}

func TestPrivacyKeysOrderAndCount(t *testing.T) {
	keys := PrivacyKeys()
	if len(keys) != 11 {
		t.Fatalf("len = %d, want 11", len(keys))
	}
	if keys[0] != KeyPhoneNumber || keys[10] != KeyVoiceMessages {
		t.Errorf("unexpected order: %v ... %v", keys[0], keys[10])
	}
	seen := map[string]bool{}
	for _, k := range keys {
		s := k.String()
		if s == "unknown" || seen[s] {
			t.Errorf("bad or duplicate key name %q", s)
		}
		seen[s] = true
	}
}
