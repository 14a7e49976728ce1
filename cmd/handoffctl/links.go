package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLinksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "links",
		Short: "Take the launch links the bridge wants opened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			links, err := a.client.Links(cmd.Context())
			if err != nil {
				return fmt.Errorf("links: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(links) == 0 {
				fmt.Fprintln(out, "No links.")
				return nil
			}
			for _, l := range links {
				mode := "any"
				if l.UniversalLinkOnly {
					mode = "universal-link-only"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", l.DispatchedAt.Format("15:04:05"), mode, l.URL)
			}
			return nil
		},
	}
}
