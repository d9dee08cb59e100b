package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipd/internal/keycell"
)

func newKeygenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen <path>",
		Short: "Generate a 32-byte key file for development use",
		Long: `Writes 32 random bytes to <path> with mode 0600, for use with
"clipd daemon --key-file". Production deployments should instead seal the
key with systemd-creds and load it via LoadCredentialEncrypted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			key := make([]byte, keycell.KeySize)
			if _, err := rand.Read(key); err != nil {
				return fmt.Errorf("key generation: %w", err)
			}
			defer keycell.Zero(key)

			if err := os.WriteFile(path, key, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("wrote %d-byte key to %s\n", keycell.KeySize, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
