package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkarpov/telesync/internal/bus"
)

func TestJobLifecycle(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("job.", 16)
	defer unsub()

	j := NewJob("id1", KindFavorites, b)
	if j.Snapshot().Status != StatusPending {
		t.Fatal("new job not pending")
	}

	if err := j.Transition(StatusRunning, nil); err != nil {
		t.Fatal(err)
	}
	j.SetTotal(10)
	j.Step(4)
	if err := j.Transition(StatusFailed, errors.New("boom")); err != nil {
		t.Fatal(err)
	}

	snap := j.Snapshot()
	if snap.Status != StatusFailed || snap.Reason != "boom" {
		t.Errorf("snapshot = %+v", snap)
	}

	var kinds []string
	timeout := time.After(time.Second)
	for len(kinds) < 4 {
		select {
		case evt := <-ch:
			kinds = append(kinds, evt.Kind)
		case <-timeout:
			t.Fatalf("only %d events received: %v", len(kinds), kinds)
		}
	}
	want := []string{bus.KindJobStatus, bus.KindJobProgress, bus.KindJobProgress, bus.KindJobStatus}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestJobInvalidTransitions(t *testing.T) {
	j := NewJob("id", KindPrivacy, nil)

	if err := j.Transition(StatusSucceeded, nil); err == nil {
		t.Error("pending -> succeeded should be rejected")
	}
	if err := j.Transition(StatusRunning, nil); err != nil {
		t.Fatal(err)
	}
	if err := j.Transition(StatusSucceeded, nil); err != nil {
		t.Fatal(err)
	}
	// Terminal states are final.
	if err := j.Transition(StatusRunning, nil); err == nil {
		t.Error("succeeded -> running should be rejected")
	}
}

func TestJobSucceededFillsProgress(t *testing.T) {
	j := NewJob("id", KindMembership, nil)
	_ = j.Transition(StatusRunning, nil)
	j.SetTotal(7)
	j.Step(3)
	_ = j.Transition(StatusSucceeded, nil)
	if snap := j.Snapshot(); snap.Current != 7 {
		t.Errorf("current = %d, want total on success", snap.Current)
	}
}

func TestPacerZeroIntervalDoesNotBlock(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero pacer blocked for %v", elapsed)
	}
}

func TestPacerSpacesRequests(t *testing.T) {
	p := NewPacer(30 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	// First wait is immediate, the next two are spaced.
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Errorf("3 waits took %v, want >= ~60ms", elapsed)
	}
}

func TestPacerHonorsContextCancel(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("Wait after cancel should fail")
	}
}
