package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"handoff/internal/adapters/exporter"
	"handoff/internal/ports"
)

func newOpsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Operation history",
	}

	var format, output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export live operations as a text table or an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			records, err := a.client.Operations(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, cerr := os.Create(output)
				if cerr != nil {
					return fmt.Errorf("create %s: %w", output, cerr)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			var exp ports.Exporter
			switch format {
			case "text":
				exp = a.table(w)
			case "xlsx":
				if output == "" {
					return fmt.Errorf("xlsx export requires --output")
				}
				exp = exporter.NewXLSXExporter(w)
			default:
				return fmt.Errorf("unknown format %q (text, xlsx)", format)
			}
			if err := exp.Export(records); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			a.logger.Info("operations exported", "count", len(records), "format", format, "output", output)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "text", "Output format (text, xlsx)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file, stdout when empty")

	cmd.AddCommand(exportCmd)
	return cmd
}
