//go:build !windows

package ipc

import (
	"net"

	"golang.org/x/sys/unix"
)

// listenOwnerOnly binds a Unix socket with umask 0177 so the socket file
// is born mode 0600 — there is no window where another user could connect
// before a chmod.
func listenOwnerOnly(path string) (net.Listener, error) {
	old := unix.Umask(0o177)
	defer unix.Umask(old)
	return net.Listen("unix", path)
}
