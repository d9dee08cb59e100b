package bridge

import (
	"context"
	"fmt"
	"os/exec"

	"golang.design/x/clipboard"
)

// PollBackend is the fallback when the wl-clipboard tools are not
// installed: golang.design/x/clipboard polls the system clipboard for
// text changes. Text only — the exec backend carries arbitrary bytes.
type PollBackend struct{}

// NewPollBackend initialises the clipboard library, failing if no display
// environment is available.
func NewPollBackend() (*PollBackend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	return &PollBackend{}, nil
}

// Watch implements Watcher. The library closes the channel when ctx is
// cancelled.
func (p *PollBackend) Watch(ctx context.Context) (<-chan []byte, error) {
	return clipboard.Watch(ctx, clipboard.FmtText), nil
}

// Push implements Pusher.
func (p *PollBackend) Push(_ context.Context, payload []byte) error {
	clipboard.Write(clipboard.FmtText, payload)
	return nil
}

// Detect picks the compositor backend: the exec backend when the watch and
// push commands are both on PATH, otherwise the polling fallback. Returns
// an error when neither works; the caller then runs local-only.
func Detect(watchArgv, pushArgv []string) (Watcher, Pusher, error) {
	if len(watchArgv) > 0 && len(pushArgv) > 0 {
		_, werr := exec.LookPath(watchArgv[0])
		_, perr := exec.LookPath(pushArgv[0])
		if werr == nil && perr == nil {
			return &ExecWatcher{Argv: watchArgv}, &ExecPusher{Argv: pushArgv}, nil
		}
	}
	pb, err := NewPollBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("no compositor clipboard backend: %w", err)
	}
	return pb, pb, nil
}
