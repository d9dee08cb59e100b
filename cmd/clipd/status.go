package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.klb.dev/clipd/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a clipd daemon is reachable",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := ipc.SocketPath()
			if !ipc.IsRunning() {
				return fmt.Errorf("no daemon listening on %s", path)
			}
			fmt.Printf("clipd daemon running on %s\n", path)
			return nil
		},
	}
}
