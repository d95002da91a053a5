package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jordanekay/PersistDB/internal/sqlite"
)

// NewTablesCommand creates the tables command: print the on-disk schema
// of a store file.
func NewTablesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <store-file>",
		Short: "Print the on-disk table definitions of a store file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlite.Open(args[0], true)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			defs, err := db.IntrospectSchema(context.Background())
			if err != nil {
				return err
			}
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tables")
				return nil
			}

			for _, def := range defs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", def.Name)
				for _, col := range def.Columns {
					var flags string
					if col.PrimaryKey {
						flags += " primary-key"
					}
					if col.Nullable {
						flags += " nullable"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s%s\n", col.Name, col.Type, flags)
				}
			}
			return nil
		},
	}
}
