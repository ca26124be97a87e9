package cmd

import (
	"github.com/spf13/cobra"
)

const skipWireAnnotation = "farmhand/skip-wire"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string
	state := &app{}

	rootCmd := &cobra.Command{
		Use:           "fh",
		Short:         "Farmhand (fh): run the Blum farming loop for many accounts",
		Long:          "fh keeps a set of Blum accounts farming unattended: it logs every enabled account in, spends its play passes, claims and restarts the farming window and sleeps until the next one. Run without a command it starts farming.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipWireAnnotation] == "true" {
				return nil
			}

			wired, err := wireApp(cmd, configPath)
			if err != nil {
				return err
			}
			*state = *wired
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.farmhand/config.toml)")

	farm := newFarmCmd(state)
	rootCmd.Flags().AddFlagSet(farm.Flags())
	rootCmd.RunE = farm.RunE

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(&configPath),
		newAccountCmd(state),
		newEndpointsCmd(state),
		newStatusCmd(state),
		farm,
	)

	return rootCmd
}

func skipWire(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[skipWireAnnotation] = "true"
	return cmd
}
