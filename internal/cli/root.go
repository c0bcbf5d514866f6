package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"speedlog/internal/config"
	"speedlog/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cliVersion = "dev"

type RootCommand struct {
	cmd       *cobra.Command
	cfg       *config.Config
	out       io.Writer
	formatStr string
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "speedlog",
		Short: "speedlog - network and host metrics logger",
		Long: `speedlog samples connection speed, network interface counters and
host resources, appends them as one row to a metrics table, and renders
the collected history as time-series charts.

Run "speedlog sample" from a scheduler such as cron; runs must not overlap.`,
		Version:           cliVersion,
		SilenceUsage:      true,
		PersistentPreRunE: root.persistentPreRunE,
	}

	pflags := cmd.PersistentFlags()
	pflags.String("config", "", "Config file path (TOML)")
	pflags.String("table", "", "Metrics table path (overrides config)")
	pflags.String("backend", "", "Table backend: csv or sqlite (overrides config)")
	pflags.StringVarP(&root.formatStr, "output", "o", string(OutputTable), "Output format (table, json, yaml)")

	viper.BindPFlag("config", pflags.Lookup("config"))
	viper.BindPFlag("table", pflags.Lookup("table"))
	viper.BindPFlag("backend", pflags.Lookup("backend"))

	root.cmd = cmd
	root.addSubCommands()

	return root
}

func (r *RootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("table") {
		cfg.Table.Path = viper.GetString("table")
	}
	if flags.Changed("backend") {
		cfg.Table.Backend = viper.GetString("backend")
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	r.cfg = cfg
	return nil
}

func (r *RootCommand) addSubCommands() {
	r.cmd.AddCommand(NewSampleCommand(r))
	r.cmd.AddCommand(NewPlotCommand(r))
	r.cmd.AddCommand(NewRowsCommand(r))
	r.cmd.AddCommand(NewServeCommand(r))
	r.cmd.AddCommand(NewTokenCommand(r))
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Config() *config.Config {
	return r.cfg
}

func (r *RootCommand) SetOutputWriter(w io.Writer) {
	r.out = w
	r.cmd.SetOut(w)
}

func (r *RootCommand) format() OutputFormat {
	return OutputFormat(r.formatStr)
}

// openStore opens the configured table with the default schema
func (r *RootCommand) openStore() (store.Store, store.Schema, error) {
	schema := store.DefaultSchema()
	st, err := store.Open(r.cfg.Table.Backend, r.cfg.Table.Path, schema)
	if err != nil {
		return nil, schema, fmt.Errorf("open table: %w", err)
	}
	return st, schema, nil
}

func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func Execute() {
	root := NewRootCommand()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
