package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"handoff/internal/domain"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [OPERATION_ID]",
		Short: "Show one operation or all live operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []domain.OperationRecord
			if len(args) == 1 {
				record, err := a.client.Operation(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("status: %w", err)
				}
				records = append(records, record)
			} else {
				var err error
				if records, err = a.client.Operations(cmd.Context()); err != nil {
					return fmt.Errorf("status: %w", err)
				}
			}
			return a.table(cmd.OutOrStdout()).Export(records)
		},
	}
}
