package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/bridge"
	"go.klb.dev/clipd/internal/buffer"
	"go.klb.dev/clipd/internal/ipc"
	"go.klb.dev/clipd/internal/keycell"
	"go.klb.dev/clipd/internal/server"
)

// credentialName is the key file name under $CREDENTIALS_DIRECTORY when
// running as a systemd service with LoadCredentialEncrypted.
const credentialName = "clipd-key"

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the clipboard daemon",
		Long: `Starts the clipd daemon: binds the per-user Unix socket, serves one
Copy or Paste request per connection, and — inside a Wayland session —
keeps the compositor clipboard in sync via wl-paste/wl-copy.

The 256-bit key is read from $CREDENTIALS_DIRECTORY/clipd-key (systemd
LoadCredentialEncrypted) or, for development, from --key-file /
$CLIPD_KEY_FILE. Without a key the daemon refuses to start.

Config file search order:
  /etc/clipd/clipd.toml
  $HOME/.config/clipd/clipd.toml
  path supplied via --config`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.String("key-file", "", "path to the 32-byte key file (development fallback)")
	f.String("socket", "", "socket path override (default: $XDG_RUNTIME_DIR/clipd.sock)")
	f.Bool("no-sync", false, "disable compositor clipboard sync even inside a Wayland session")
	f.String("watch-cmd", defaultWatchCmd(), "long-lived command reporting compositor clipboard changes")
	f.String("push-cmd", "wl-copy", "command receiving a payload on stdin to set the compositor clipboard")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	if s := v.GetString("socket"); s != "" {
		os.Setenv("CLIPD_SOCKET", s)
	}

	raw, keyOrigin, err := loadKey(v.GetString("key-file"))
	if err != nil {
		return fmt.Errorf("key material: %w", err)
	}
	cell, err := keycell.New(raw)
	keycell.Zero(raw)
	if err != nil {
		return fmt.Errorf("key material: %w", err)
	}
	defer cell.Close()

	buf := buffer.New(cell)

	wayland := os.Getenv("WAYLAND_DISPLAY") != "" && !v.GetBool("no-sync")

	slog.Info("clipd starting",
		"version", Version,
		"socket", ipc.SocketPath(),
		"key_origin", keyOrigin,
		"wayland", wayland,
	)

	var br *bridge.Bridge
	if wayland {
		watcher, pusher, err := bridge.Detect(
			strings.Fields(v.GetString("watch-cmd")),
			strings.Fields(v.GetString("push-cmd")),
		)
		if err != nil {
			slog.Warn("compositor sync unavailable, running local-only", "err", err)
		} else {
			br = bridge.New(buf, watcher, pusher)
		}
	}

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("bind %s: %w", ipc.SocketPath(), err)
	}
	defer os.Remove(ipc.SocketPath())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if br != nil {
		go br.Run(ctx)
	}

	slog.Info("listening", "socket", ipc.SocketPath())
	return server.New(ln, buf, br).Serve(ctx)
}

// defaultWatchCmd builds the default watcher invocation: wl-paste spawns
// "clipd copy --source wayland" with the full new payload on the spawned
// command's stdin after every compositor clipboard change, so the payload
// reaches the daemon over the socket in one piece — embedded newlines and
// arbitrary bytes survive. Line-streaming watch commands still work (see
// bridge.ExecWatcher), but cannot carry multi-line payloads losslessly.
func defaultWatchCmd() string {
	return "wl-paste --watch " + selfExe() + " copy --source wayland"
}

// selfExe resolves the running clipd binary, falling back to PATH lookup
// by the watcher's shell-less exec.
func selfExe() string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}
	return "clipd"
}

// loadKey reads the raw key bytes, preferring the systemd credentials
// directory, then the explicit key file, then $CLIPD_KEY_FILE. Returns the
// bytes and a label for the log line.
func loadKey(keyFile string) ([]byte, string, error) {
	if dir := os.Getenv("CREDENTIALS_DIRECTORY"); dir != "" {
		path := filepath.Join(dir, credentialName)
		if raw, err := os.ReadFile(path); err == nil {
			return raw, "credentials", nil
		} else if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
	}

	if keyFile == "" {
		keyFile = os.Getenv("CLIPD_KEY_FILE")
	}
	if keyFile != "" {
		raw, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", keyFile, err)
		}
		return raw, "file", nil
	}

	return nil, "", fmt.Errorf(
		"no key found: run under systemd with LoadCredentialEncrypted=%s:…, or set --key-file / $CLIPD_KEY_FILE (see \"clipd keygen\")",
		credentialName,
	)
}
