package cli

import (
	"fmt"

	"speedlog/internal/services"

	"github.com/spf13/cobra"
)

func NewPlotCommand(root *RootCommand) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render every metric as a time-series chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = root.Config().Plot.Output
			}

			st, schema, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load rows: %w", err)
			}

			if err := services.NewChartRenderer(schema).RenderFile(rows, out); err != nil {
				return fmt.Errorf("plot: %w", err)
			}
			fmt.Fprintf(root.out, "Wrote %d rows to %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "PNG output path (overrides config)")

	return cmd
}
