package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/stylekit/internal/app"
	"github.com/five82/stylekit/internal/config"
	"github.com/five82/stylekit/internal/logtail"
)

func newLogsCmd(opts *app.Options) *cobra.Command {
	var (
		lines int
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of the stylekit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tail, err := logtail.Read(cfg.LogFile, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tail) == 0 {
				fmt.Fprintf(out, "no log entries in %s\n", cfg.LogFile)
				return nil
			}
			for _, line := range tail {
				if !raw {
					line = logtail.Format(line)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines (0 for all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print JSON entries unformatted")
	return cmd
}
