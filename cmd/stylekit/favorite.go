package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/stylekit/internal/app"
	"github.com/five82/stylekit/internal/library"
)

func newFavoriteCmd(opts *app.Options) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "favorite <template-id>",
		Short: "Star or unstar a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := library.TemplateID(strings.TrimSpace(args[0]))
			if id == "" {
				return fmt.Errorf("template id required")
			}

			env, err := app.Setup(*opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Controller.MarkFavorite(cmd.Context(), id, !remove); err != nil {
				return err
			}
			if remove {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s from favorites\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "★ added %s to favorites\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "unstar instead of star")
	return cmd
}
