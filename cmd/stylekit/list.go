package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/stylekit/internal/app"
	"github.com/five82/stylekit/internal/browser"
	"github.com/five82/stylekit/internal/library"
)

type listFlags struct {
	templateType string
	sort         string
	search       string
	favorites    bool
	refresh      bool
	json         bool
}

func newListCmd(opts *app.Options) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the template library",
		Long: `Print the template library.

--type and --sort each start from the full catalog, so only one of them may
be given. --search then narrows that result and --favorites keeps only
starred templates.`,
		Example: `  stylekit list --sort popular --search hero
  stylekit list --type section --favorites --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.Setup(*opts)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			ctrl := env.Controller
			if flags.refresh {
				err = ctrl.Refresh(ctx)
			} else {
				err = ctrl.Load(ctx)
			}
			if err != nil {
				return err
			}

			if err := applyListFlags(ctrl, flags); err != nil {
				return err
			}

			snap := ctrl.Snapshot()
			if flags.json {
				return writeJSON(cmd.OutOrStdout(), snap.View)
			}
			return writeTable(cmd.OutOrStdout(), snap, env.Favorites)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.templateType, "type", "", "only templates of this type")
	f.StringVar(&flags.sort, "sort", "", "order by latest or popular")
	f.StringVar(&flags.search, "search", "", "match titles and tags (case-insensitive)")
	f.BoolVar(&flags.favorites, "favorites", false, "only favorites")
	f.BoolVar(&flags.refresh, "refresh", false, "bypass the site's cached library")
	f.BoolVar(&flags.json, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("type", "sort")
	return cmd
}

// applyListFlags runs the controller transforms in the order the browser
// applies them interactively.
func applyListFlags(ctrl *browser.Controller, flags listFlags) error {
	if t := strings.TrimSpace(flags.templateType); t != "" {
		ctrl.FilterByType(t)
	}
	if s := strings.TrimSpace(flags.sort); s != "" {
		if err := ctrl.SortBy(browser.SortKey(strings.ToLower(s))); err != nil {
			return err
		}
	}
	if q := strings.TrimSpace(flags.search); q != "" {
		ctrl.Search(q)
	}
	if flags.favorites {
		ctrl.ToggleFavorites()
	}
	return nil
}

func writeJSON(w io.Writer, templates []library.Template) error {
	if templates == nil {
		templates = []library.Template{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(templates)
}

func writeTable(w io.Writer, snap browser.Snapshot, favorites browser.Favorites) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPOP\tFAV\tTITLE")
	for _, tpl := range snap.View {
		pop := "-"
		if tpl.PopularityIndex.Valid {
			pop = fmt.Sprintf("%d", tpl.PopularityIndex.Value)
		}
		fav := ""
		if favorites.Has(tpl.ID) {
			fav = "★"
		}
		title := tpl.Title
		if tpl.IsPro {
			title += " [pro]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tpl.ID, tpl.Type, pop, fav, title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total := len(snap.Catalog)
	if snap.HasCount {
		total = snap.Count
	}
	_, err := fmt.Fprintf(w, "\n%d of %d templates\n", len(snap.View), total)
	return err
}
