// Package bridge keeps the compositor clipboard and the daemon's secure
// buffer convergent.
//
// Two duties run for the daemon's whole lifetime when a compositor session
// is present:
//
//   - inbound: a long-lived watcher streams compositor clipboard changes;
//     each one is written into the secure buffer
//   - outbound: after every locally originated copy, the new payload is
//     pushed to the compositor clipboard
//
// Both directions are best-effort. A watcher that keeps dying degrades the
// daemon to local-only clipboard; a failed push is logged and forgotten.
// Neither is ever surfaced to a requesting client.
package bridge

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/clipd/internal/buffer"
)

// restartDelay is the pause before respawning a dead watcher, to avoid a
// tight loop when the compositor is gone for good.
var restartDelay = 2 * time.Second

const pushTimeout = 5 * time.Second

// Watcher streams compositor clipboard changes. The returned channel is
// closed when the watcher stops for any reason; Run restarts it.
type Watcher interface {
	Watch(ctx context.Context) (<-chan []byte, error)
}

// Pusher sets the compositor clipboard to payload.
type Pusher interface {
	Push(ctx context.Context, payload []byte) error
}

// Bridge wires a Watcher and a Pusher to the secure buffer.
type Bridge struct {
	buf     *buffer.Buffer
	watcher Watcher
	pusher  Pusher

	mu      sync.Mutex
	lastSum [sha256.Size]byte
	seen    bool
}

// New returns a Bridge over buf. It does nothing until Run is called.
func New(buf *buffer.Buffer, watcher Watcher, pusher Pusher) *Bridge {
	return &Bridge{buf: buf, watcher: watcher, pusher: pusher}
}

// Run spawns the watcher and feeds its payloads into the buffer,
// restarting it whenever it exits. Blocks until ctx is cancelled;
// call in its own goroutine.
func (b *Bridge) Run(ctx context.Context) {
	for {
		ch, err := b.watcher.Watch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("compositor watcher failed to start, will retry",
				"err", err, "delay", restartDelay)
			if !sleep(ctx, restartDelay) {
				return
			}
			continue
		}

		slog.Info("compositor watcher running")
		for payload := range ch {
			if !b.note(payload) {
				continue // echo of a payload we pushed ourselves
			}
			if err := b.buf.Write(payload); err != nil {
				slog.Error("storing compositor change failed", "err", err)
			} else {
				slog.Debug("compositor change stored", "size_bytes", len(payload))
			}
		}

		if ctx.Err() != nil {
			return
		}
		slog.Warn("compositor watcher exited, restarting", "delay", restartDelay)
		if !sleep(ctx, restartDelay) {
			return
		}
	}
}

// Push forwards a locally copied payload to the compositor clipboard.
// Failures are logged, never returned — the local clipboard contract was
// already satisfied when the buffer accepted the write.
func (b *Bridge) Push(payload []byte) {
	if !b.note(payload) {
		return // compositor already has this payload
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := b.pusher.Push(ctx, payload); err != nil {
		slog.Warn("compositor push failed", "err", err)
	} else {
		slog.Debug("pushed to compositor", "size_bytes", len(payload))
	}
}

// note records payload as the most recent one to transit the bridge and
// reports whether it differs from the previous one. Hashes rather than
// keeps the payload: clipboard contents can be large, and holding a
// plaintext copy here would undercut the encrypted buffer.
func (b *Bridge) note(payload []byte) bool {
	sum := sha256.Sum256(payload)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen && sum == b.lastSum {
		return false
	}
	b.lastSum = sum
	b.seen = true
	return true
}

// sleep waits for d or until ctx is cancelled, reporting whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
