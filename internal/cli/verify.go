package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jordanekay/PersistDB/schema"
	"github.com/jordanekay/PersistDB/store"
)

// NewVerifyCommand creates the verify command: check a store file
// against a declared YAML schema the way a read-only open would.
func NewVerifyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <store-file> <schema.yaml>",
		Short: "Verify a store file against a declared schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open schema: %w", err)
			}
			defer f.Close()

			models, err := schema.LoadYAML(f)
			if err != nil {
				return err
			}

			s, err := store.Open(args[0], store.ModeReadOnly, models, store.WithoutChangeSignal())
			if err != nil {
				if store.IsIncompatibleSchema(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "incompatible: %v\n", err)
					// Structural divergence is the command's finding, not
					// a CLI failure.
					return nil
				}
				return err
			}
			defer s.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "compatible: %d models verified\n", len(models))
			return nil
		},
	}
}
