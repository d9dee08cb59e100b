//go:build !windows

package bridge

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecWatcherStreamsLines(t *testing.T) {
	requireSh(t)

	w := &ExecWatcher{Argv: []string{"sh", "-c", `printf 'one\ntwo\n'`}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	var got []string
	for payload := range ch {
		got = append(got, string(payload))
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("payloads = %q, want [one two]", got)
	}
}

func TestExecWatcherChannelClosesOnExit(t *testing.T) {
	requireSh(t)

	w := &ExecWatcher{Argv: []string{"sh", "-c", "exit 0"}}
	ch, err := w.Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected payload from exiting watcher")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after watcher exit")
	}
}

func TestExecWatcherSpawnFailure(t *testing.T) {
	w := &ExecWatcher{Argv: []string{"/nonexistent/clipd-watch-helper"}}
	if _, err := w.Watch(context.Background()); err == nil {
		t.Fatal("Watch of a nonexistent binary succeeded")
	}
}

func TestExecPusherDeliversStdin(t *testing.T) {
	requireSh(t)

	out := filepath.Join(t.TempDir(), "pushed")
	p := &ExecPusher{Argv: []string{"sh", "-c", "cat > " + out}}
	if err := p.Push(context.Background(), []byte("payload\x00bytes")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "payload\x00bytes" {
		t.Fatalf("pushed bytes = %q", got)
	}
}

func TestExecPusherReportsFailure(t *testing.T) {
	requireSh(t)

	p := &ExecPusher{Argv: []string{"sh", "-c", "exit 3"}}
	if err := p.Push(context.Background(), []byte("x")); err == nil {
		t.Fatal("Push of a failing command succeeded")
	}
}
