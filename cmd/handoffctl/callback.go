package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCallbackCommand(a *app) *cobra.Command {
	var activity bool
	cmd := &cobra.Command{
		Use:   "callback URL",
		Short: "Deliver a return URL the device received",
		Example: `  handoffctl callback 'wx1234://oauth?code=abc'
  handoffctl callback https://host.example/app/wx1234/refreshToken?wechat_auth_token=t --activity`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Callback(cmd.Context(), args[0], activity); err != nil {
				return fmt.Errorf("callback: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "callback delivered")
			return nil
		},
	}
	cmd.Flags().BoolVar(&activity, "activity", false, "Deliver as a continue-activity event instead of a URL open")
	return cmd
}
