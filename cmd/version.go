package cmd

import (
	"fmt"

	"github.com/bnema/farmhand/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return skipWire(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return err
		},
	})
}
