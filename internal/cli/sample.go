package cli

import (
	"fmt"

	"speedlog/internal/models"
	"speedlog/internal/services"

	"github.com/spf13/cobra"
)

func NewSampleCommand(root *RootCommand) *cobra.Command {
	var (
		reportFile string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Take one sample and append it to the metrics table",
		Long: `Run the speed test, read network counters and host resources, and
append one timestamped row to the metrics table. Nothing is written when
any measurement fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.Config()

			var source services.ReportSource
			if reportFile != "" {
				source = services.FileReport{Path: reportFile}
			} else {
				speedtest := services.NewSpeedtestCommand(cfg.Sample.Speedtest, cfg.Sample.Args...)
				speedtest.Timeout = cfg.Sample.CommandTimeoutD
				speedtest.ReportFile = cfg.Sample.ReportFile
				source = speedtest
			}

			st, schema, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			assembler := services.NewRowAssembler(source, schema, st)
			assembler.CPUWindow = cfg.Sample.CPUWindowD

			var row models.MetricRow
			if dryRun {
				row, err = assembler.SampleRow(cmd.Context())
			} else {
				row, err = assembler.AppendRow(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("sample: %w", err)
			}

			return PrintRows(root.out, schema, []models.MetricRow{row}, root.format())
		},
	}

	cmd.Flags().StringVar(&reportFile, "report", "", "Parse a saved speed-test report instead of running the command")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the sampled row without writing it")

	return cmd
}
