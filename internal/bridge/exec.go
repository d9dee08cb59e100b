package bridge

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.klb.dev/clipd/internal/wire"
)

// ExecWatcher runs a long-lived external command that reports compositor
// clipboard changes. Two delivery styles work:
//
//   - the default "wl-paste --watch clipd copy --source wayland" delivers
//     each change to the daemon itself over the socket; stdout stays
//     silent and ExecWatcher only supervises the process lifetime
//   - a command that instead streams payloads on stdout, one per line,
//     has each line fed into the buffer directly; line framing cannot
//     carry a payload with embedded newlines, so it suits single-line
//     sources only
//
// Either way the returned channel closes when the process exits, which is
// the bridge's cue to restart it. The exact command is an external
// contract and stays configurable (--watch-cmd).
type ExecWatcher struct {
	Argv []string
}

// Watch spawns the command and returns a channel of payloads. The channel
// is closed when the command exits or ctx is cancelled.
func (w *ExecWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if len(w.Argv) == 0 {
		return nil, fmt.Errorf("empty watch command")
	}
	cmd := exec.CommandContext(ctx, w.Argv[0], w.Argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", w.Argv[0], err)
	}

	ch := make(chan []byte)
	go func() {
		defer close(ch)
		defer func() { _ = cmd.Wait() }()

		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 64*1024), wire.MaxFrameSize)
		for sc.Scan() {
			payload := make([]byte, len(sc.Bytes()))
			copy(payload, sc.Bytes())
			select {
			case ch <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// ExecPusher pushes a payload to the compositor clipboard by running a
// short-lived external command with the payload on stdin. Default: wl-copy.
type ExecPusher struct {
	Argv []string
}

// Push runs the command once with payload on its stdin.
func (p *ExecPusher) Push(ctx context.Context, payload []byte) error {
	if len(p.Argv) == 0 {
		return fmt.Errorf("empty push command")
	}
	cmd := exec.CommandContext(ctx, p.Argv[0], p.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", p.Argv[0], err)
	}
	return nil
}
