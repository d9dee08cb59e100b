//go:build !windows

package ipc

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestSocketPathPrecedence(t *testing.T) {
	t.Setenv("CLIPD_SOCKET", "/run/user/1000/other.sock")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := SocketPath(); got != "/run/user/1000/other.sock" {
		t.Fatalf("CLIPD_SOCKET override ignored: %q", got)
	}

	t.Setenv("CLIPD_SOCKET", "")
	if got := SocketPath(); got != "/run/user/1000/clipd.sock" {
		t.Fatalf("XDG_RUNTIME_DIR path wrong: %q", got)
	}
}

func TestListenCreatesOwnerOnlySocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipd.sock")
	t.Setenv("CLIPD_SOCKET", path)

	ln, err := Listen()
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer ln.Close()

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("socket mode = %o, want 0600", perm)
	}

	if !IsRunning() {
		t.Fatal("IsRunning() = false with a live listener")
	}
}

func TestListenRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipd.sock")
	t.Setenv("CLIPD_SOCKET", path)

	// A dead daemon leaves its socket file behind.
	ln, err := Listen()
	if err != nil {
		t.Fatalf("first Listen failed: %v", err)
	}
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = ln.Close()

	ln2, err := Listen()
	if err != nil {
		t.Fatalf("Listen over stale socket failed: %v", err)
	}
	_ = ln2.Close()
}

func TestIsRunningWithoutDaemon(t *testing.T) {
	t.Setenv("CLIPD_SOCKET", filepath.Join(t.TempDir(), "absent.sock"))
	if IsRunning() {
		t.Fatal("IsRunning() = true with no listener")
	}
}
