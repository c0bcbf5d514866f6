package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRowsCommand(root *RootCommand) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print rows from the metrics table",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, schema, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load rows: %w", err)
			}
			if last > 0 && len(rows) > last {
				rows = rows[len(rows)-last:]
			}

			return PrintRows(root.out, schema, rows, root.format())
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 0, "Only print the last N rows (0 prints all)")

	return cmd
}
