package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"handoff/internal/domain"
)

func newOauthCommand(a *app) *cobra.Command {
	var (
		platform string
		wait     waitFlags
	)
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Request an oauth grant from a peer app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.client.Oauth(cmd.Context(), domain.Platform(platform))
			if err != nil {
				return fmt.Errorf("oauth: %w", err)
			}
			return a.started(cmd, id, wait)
		},
	}
	cmd.Flags().StringVar(&platform, "platform", string(domain.PlatformWechat), "Peer platform (wechat, weibo)")
	wait.register(cmd.Flags())
	return cmd
}
