package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/ipc"
	"go.klb.dev/clipd/internal/protocol"
	"go.klb.dev/clipd/internal/wire"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy stdin to the clipd clipboard (like pbcopy)",
		Long: `Reads stdin and sends it to the clipd daemon as one Copy request.

--source wayland is how the compositor watcher reports changes (the
daemon runs "wl-paste --watch clipd copy --source wayland"): it stores
the payload without pushing it back to the compositor, which would
otherwise loop.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runCopy(v) },
	}

	cmd.Flags().String("source", "user", "where this copy originated: user|wayland")
	addConfigFlag(cmd)

	return cmd
}

func runCopy(v *viper.Viper) error {
	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	var source protocol.Source
	switch s := v.GetString("source"); s {
	case "", "user":
		source = protocol.SourceUser
	case "wayland":
		source = protocol.SourceWayland
	default:
		return fmt.Errorf("unknown source %q (want user or wayland)", s)
	}

	resp, err := roundTrip(&protocol.Request{
		Op:      protocol.OpCopy,
		Payload: payload,
		Source:  source,
	})
	if err != nil {
		return err
	}

	switch resp.Status {
	case protocol.StatusOK:
		return nil
	case protocol.StatusError:
		return fmt.Errorf("clipd: %s", resp.Error)
	default:
		return fmt.Errorf("clipd: unexpected response to copy: %s", resp.Status)
	}
}

// roundTrip performs one request/response exchange with the daemon.
func roundTrip(req *protocol.Request) (*protocol.Response, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("connect to clipd at %s — is the daemon running? (%w)", ipc.SocketPath(), err)
	}
	wc := wire.New(conn)
	defer wc.Close()

	if err := wc.WriteRequest(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	resp, err := wc.ReadResponse()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}
