package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"handoff/internal/adapters/tokenstore"
	"handoff/internal/pkg/term"
	"handoff/internal/platform/wechat"
)

func newTokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored WeChat sign token",
	}

	var dbPath, appID string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store a sign token in the bridge token database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.prompt.Secret("Sign token: ")
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("read token: %w", term.ErrEmpty)
			}

			store, err := tokenstore.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Set(wechat.TokenKey(appID), token); err != nil {
				return err
			}
			a.logger.Info("sign token stored", "app_id", appID)
			fmt.Fprintln(cmd.OutOrStdout(), "sign token stored")
			return nil
		},
	}
	setCmd.Flags().StringVar(&dbPath, "db", "", "Path to the bridge token database")
	setCmd.Flags().StringVar(&appID, "app-id", "", "WeChat app id")
	_ = setCmd.MarkFlagRequired("db")
	_ = setCmd.MarkFlagRequired("app-id")

	cmd.AddCommand(setCmd)
	return cmd
}
