package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/nkarpov/telesync/internal/tg"
	"go.uber.org/zap"
)

func membershipFixture() (*fakeClient, *fakeClient) {
	sender, recipient := pair(newFakeWorld())
	sender.dialogs = []tg.Dialog{
		{Kind: tg.DialogUser, Username: "carol"},
		{Kind: tg.DialogBasicChat, Title: "old group"},
		{Kind: tg.DialogChannel, Title: "private channel"}, // no username
		{Kind: tg.DialogChannel, Username: "gonews", Archived: true, Pinned: true},
		{Kind: tg.DialogChannel, Username: "gophers"},
	}
	return sender, recipient
}

func TestMembershipJoinsPublicChannelsOnly(t *testing.T) {
	sender, recipient := membershipFixture()

	job := NewJob("j", KindMembership, nil)
	eng := NewMembership(sender, recipient, NewPacer(0), NewPacer(0), job, zap.NewNop())
	if err := eng.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"gonews", "gophers"}
	if len(recipient.joins) != len(want) {
		t.Fatalf("joins = %v, want %v", recipient.joins, want)
	}
	for i, u := range want {
		if recipient.joins[i] != u {
			t.Errorf("joins[%d] = %q, want %q", i, recipient.joins[i], u)
		}
	}

	if len(recipient.archives) != 1 || recipient.archives[0] != "gonews" {
		t.Errorf("archives = %v, want [gonews]", recipient.archives)
	}
	if len(recipient.dialogPins) != 1 || recipient.dialogPins[0] != "gonews" {
		t.Errorf("dialog pins = %v, want [gonews]", recipient.dialogPins)
	}
	if snap := job.Snapshot(); snap.Current != 2 || snap.Total != 2 {
		t.Errorf("progress = %d/%d, want 2/2", snap.Current, snap.Total)
	}
}

func TestMembershipSecondRunIsNoOp(t *testing.T) {
	sender, recipient := membershipFixture()

	run := func() error {
		eng := NewMembership(sender, recipient, NewPacer(0), NewPacer(0),
			NewJob("j", KindMembership, nil), zap.NewNop())
		return eng.Run(context.Background())
	}
	if err := run(); err != nil {
		t.Fatal(err)
	}
	// An unchanged dialog list joined again must not fail on membership.
	if err := run(); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
}

func TestMembershipJoinFailureAborts(t *testing.T) {
	sender, recipient := membershipFixture()
	recipient.errOn["JoinChannel"] = tg.ErrRateLimited

	eng := NewMembership(sender, recipient, NewPacer(0), NewPacer(0),
		NewJob("j", KindMembership, nil), zap.NewNop())
	err := eng.Run(context.Background())
	if !errors.Is(err, tg.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if len(recipient.archives) != 0 {
		t.Errorf("archives = %v, want none after failed join", recipient.archives)
	}
}
