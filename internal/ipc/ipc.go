// Package ipc provides the local Unix-socket channel between the clipd
// daemon and the copy/paste CLI tools.
//
// The socket lives in the per-user runtime directory and is created with
// owner-only permissions: any process that can connect is already running
// as the owning user, so the socket itself is the access-control boundary
// and no per-request auth is needed.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the path for the daemon socket.
//
//   - $CLIPD_SOCKET if set
//   - $XDG_RUNTIME_DIR/clipd.sock
//   - $TMPDIR/clipd.sock as a fallback
func SocketPath() string {
	if s := os.Getenv("CLIPD_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipd.sock")
	}
	return filepath.Join(os.TempDir(), "clipd.sock")
}

// Listen binds the daemon socket, removing any stale socket file left by
// a previous (crashed) run. The socket is created owner-only.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	ln, err := listenOwnerOnly(path)
	if err != nil {
		return nil, err
	}
	// The umask already restricted the socket at creation; chmod keeps
	// an overridden $CLIPD_SOCKET path honest too.
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return ln, nil
}

// Dial connects to a running daemon.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}

// IsRunning reports whether a daemon appears to be listening on the
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}
