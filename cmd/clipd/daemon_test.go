package main

import (
	"strings"
	"testing"
)

func TestDefaultWatchCmdSpawnsPerChange(t *testing.T) {
	cmd := defaultWatchCmd()
	if !strings.HasPrefix(cmd, "wl-paste --watch ") {
		t.Fatalf("default watch command = %q, want a wl-paste --watch invocation", cmd)
	}
	// Each change must reach the daemon whole, over the socket. A
	// line-streaming pipeline (wl-paste --watch cat) splits a payload
	// with embedded newlines and only the last line would survive.
	if !strings.HasSuffix(cmd, " copy --source wayland") {
		t.Fatalf("default watch command = %q, want it to end in \"copy --source wayland\"", cmd)
	}
}
