package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/stylekit/internal/app"
)

func newRootCmd() *cobra.Command {
	opts := &app.Options{}

	cmd := &cobra.Command{
		Use:   "stylekit",
		Short: "Browse the Style Kits template library from the terminal",
		Long: `stylekit browses the template library of a WordPress site running the
Style Kits plugin. Without a subcommand it opens the interactive browser.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), *opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/stylekit/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/stylekit/prefs.toml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newListCmd(opts),
		newFavoriteCmd(opts),
		newLogsCmd(opts),
	)
	return cmd
}
