package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"handoff/internal/adapters/exporter"
	"handoff/internal/bridgeclient"
	"handoff/internal/domain"
	hlog "handoff/internal/log"
	"handoff/internal/pkg/config"
	"handoff/internal/pkg/term"
	"handoff/internal/ports"
)

type prompter interface {
	Secret(prompt string) (string, error)
}

// app is the state shared by all commands.
type app struct {
	configPath string
	bridgeURL  string

	cfg    *config.ClientConfig
	client *bridgeclient.Client
	logger *slog.Logger
	prompt prompter
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadClientConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.bridgeURL != "" {
		cfg.BridgeURL = a.bridgeURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	a.cfg = cfg
	a.logger = hlog.NewMaskedLogger(hlog.NewHandler(cmd.ErrOrStderr(), cfg.Logging.Format, cfg.Logging.Level))
	a.client = bridgeclient.New(cfg.BridgeURL, cfg.Timeout)
	if a.prompt == nil {
		a.prompt = term.NewTerminal()
	}
	return nil
}

func (a *app) table(w io.Writer) ports.Exporter {
	return exporter.NewTableExporter(w, exporter.ColumnWidths(a.cfg.Columns))
}

// started reports a new operation and, with --wait, polls it to completion.
func (a *app) started(cmd *cobra.Command, id string, w waitFlags) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "operation %s started\n", id)
	if !w.wait {
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), w.timeout)
	defer cancel()
	record, err := a.client.Wait(ctx, id, w.interval)
	if err != nil {
		return fmt.Errorf("wait for operation %s: %w", id, err)
	}
	a.logger.Debug("operation finished", "operation_id", id, "status", record.Status)
	return a.table(out).Export([]domain.OperationRecord{record})
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&app{})
}

func newRootCommandWith(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "handoffctl",
		Short:        "Drive share and oauth handoffs through the bridge",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "handoffctl.yaml", "Path to the client config file")
	cmd.PersistentFlags().StringVar(&a.bridgeURL, "bridge", "", "Bridge URL, overrides the config file")

	cmd.AddCommand(
		newShareCommand(a),
		newOauthCommand(a),
		newCallbackCommand(a),
		newStatusCommand(a),
		newLinksCommand(a),
		newOpsCommand(a),
		newTokenCommand(a),
	)
	return cmd
}

// waitFlags adds --wait handling to commands that start an operation.
type waitFlags struct {
	wait     bool
	timeout  time.Duration
	interval time.Duration
}

type flagSet interface {
	BoolVar(p *bool, name string, value bool, usage string)
	DurationVar(p *time.Duration, name string, value time.Duration, usage string)
}

func (w *waitFlags) register(fs flagSet) {
	fs.BoolVar(&w.wait, "wait", false, "Poll until the operation completes")
	fs.DurationVar(&w.timeout, "wait-timeout", 2*time.Minute, "Give up waiting after this long")
	fs.DurationVar(&w.interval, "wait-interval", time.Second, "Polling interval")
}
