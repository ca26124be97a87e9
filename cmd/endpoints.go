package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/bnema/farmhand/internal/adapters/game/blum"
	"github.com/bnema/farmhand/internal/adapters/payload"
	"github.com/spf13/cobra"
)

func newEndpointsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Inspect payload endpoints",
	}

	cmd.AddCommand(newEndpointsListCmd(app))

	return cmd
}

func newEndpointsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch the endpoint directory and print the live endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := blum.NewHTTPClient(app.cfg.HTTP.Timeout, app.cfg.HTTP.Proxy)
			if err != nil {
				return fmt.Errorf("build http client: %w", err)
			}
			directory := &payload.Directory{URL: app.cfg.Endpoints.DirectoryURL, HTTPClient: client}

			var ids []string
			fetch := func(ctx context.Context) error {
				fetched, err := directory.Endpoints(ctx)
				if err != nil {
					return err
				}
				ids = fetched
				return nil
			}
			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching endpoint directory...", fetch); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				_, _ = fmt.Fprintln(out, id)
			}
			for _, id := range app.cfg.Endpoints.Seed {
				if !slices.Contains(ids, id) {
					_, _ = fmt.Fprintf(out, "%s (seed)\n", id)
				}
			}
			if len(ids) == 0 && len(app.cfg.Endpoints.Seed) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no live endpoints")
			}

			return nil
		},
	}
}
