package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/protocol"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "paste",
		Short:   "Print the clipd clipboard to stdout (like pbpaste)",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runPaste() },
	}

	addConfigFlag(cmd)

	return cmd
}

func runPaste() error {
	resp, err := roundTrip(&protocol.Request{Op: protocol.OpPaste})
	if err != nil {
		return err
	}

	switch resp.Status {
	case protocol.StatusPayload:
		_, err := os.Stdout.Write(resp.Data)
		return err
	case protocol.StatusError:
		return fmt.Errorf("clipd: %s", resp.Error)
	default:
		return fmt.Errorf("clipd: unexpected response to paste: %s", resp.Status)
	}
}
