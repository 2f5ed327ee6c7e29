package ctl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nkarpov/telesync/internal/profile"
	"github.com/nkarpov/telesync/internal/store"
)

func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestAccountsAddListSetPrimary(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCLI(t, "accounts", "add", "acc1", "--username", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "linked acc1 as sender") {
		t.Errorf("add output = %q", out)
	}

	out, err = executeCLI(t, "accounts", "add", "acc2", "--username", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "linked acc2 as recipient") {
		t.Errorf("add output = %q", out)
	}

	if _, err := executeCLI(t, "accounts", "set-primary", "acc2"); err != nil {
		t.Fatal(err)
	}
	out, err = executeCLI(t, "accounts", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "acc2") && !strings.Contains(line, "sender") {
			t.Errorf("acc2 should be sender after set-primary: %q", line)
		}
		if strings.Contains(line, "acc1") && !strings.Contains(line, "recipient") {
			t.Errorf("acc1 should be recipient after set-primary: %q", line)
		}
	}
}

func TestAccountsRemoveUnknown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := executeCLI(t, "accounts", "remove", "ghost"); err == nil {
		t.Error("removing an unlinked account should fail")
	}
}

func TestOptionsSetMergesSavedFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCLI(t, "options", "get")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no options saved yet") {
		t.Errorf("get output = %q", out)
	}

	if _, err := executeCLI(t, "options", "set", "--favorites", "--privacy"); err != nil {
		t.Fatal(err)
	}
	// Flipping one flag keeps the other saved values.
	if _, err := executeCLI(t, "options", "set", "--privacy=false", "--channels"); err != nil {
		t.Fatal(err)
	}

	db, err := store.Open(profile.DBPath("default"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	opts, err := db.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts == nil {
		t.Fatal("options not saved")
	}
	if !opts.Favorites || opts.Privacy || !opts.Channels {
		t.Errorf("options = %+v, want favorites+channels only", opts)
	}
}

func TestRunsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCLI(t, "runs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no runs recorded yet") {
		t.Errorf("runs output = %q", out)
	}
}

func TestDoctorReportsMissingPieces(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCLI(t, "doctor")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"api credentials: MISSING",
		"sender linked: false",
		"options: not saved yet",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidProfileRejected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := executeCLI(t, "--profile", "../escape", "accounts", "list"); err == nil {
		t.Error("path-escaping profile name should be rejected")
	}
}
