package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stylekit/internal/browser"
)

// renderHeader renders the status bar with the library state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("stylekit", styles.Logo)}
	if host := siteHost(m.siteURL); host != "" && !compact {
		parts = append(parts, bg.Render(host, styles.MutedText))
	}

	switch {
	case m.snap.Refreshing:
		parts = append(parts, bg.Render("Refreshing library...", styles.WarningText.Bold(true)))
	case m.snap.Loading && !m.snap.Loaded:
		parts = append(parts, bg.Render("Loading library...", styles.WarningText.Bold(true)))
	case !m.snap.Loaded && m.snap.LastError != nil:
		parts = append(parts, bg.Render("LIBRARY "+classifyError(m.snap.LastError), styles.DangerText))
		if m.logFile != "" && !compact {
			parts = append(parts,
				bg.Render("logs", styles.FaintText)+bg.Space()+
					bg.Render(truncateMiddle(m.logFile, 40), styles.MutedText))
		}
	default:
		parts = append(parts, m.countSegment(styles, bg))
	}

	if m.snap.Loaded {
		if m.snap.ShowingFavorites {
			parts = append(parts, bg.Render("★ Favorites", styles.FavoriteText.Bold(true)))
		}
		if synced := relativeTime(m.snap.LastSynced, m.now()); synced != "" {
			parts = append(parts, bg.Render(synced, styles.MutedText))
		}
		if m.snap.LastError != nil {
			maxErr := ternaryInt(compact, 30, 60)
			parts = append(parts,
				bg.Render(classifyError(m.snap.LastError), styles.DangerText)+bg.Space()+
					bg.Render(truncate(m.snap.LastError.Error(), maxErr), styles.DangerText))
		}
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// countSegment renders "Templates: shown/total" using the server count when
// one was reported.
func (m Model) countSegment(styles Styles, bg BgStyle) string {
	total := len(m.snap.Catalog)
	if m.snap.HasCount {
		total = m.snap.Count
	}
	return bg.Render("Templates:", styles.MutedText) + bg.Space() +
		bg.Render(fmt.Sprintf("%d/%d", len(m.snap.View), total), styles.Text)
}

// renderCommandBar renders the key hints, or the search prompt while typing.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	bar := styles.Header.Width(m.width)

	if m.searching {
		return bar.Render(m.searchInput.View())
	}

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"f", titleCase(m.filterValue())},
		{"s", titleCase(string(m.sortKey))},
		{"v", ternary(m.snap.ShowingFavorites, "All", "Favorites")},
		{"m", "Star"},
		{"/", "Search"},
		{"r", "Refresh"},
		{"esc", "Reset"},
		{"?", "More"},
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+3)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	if m.searchQuery != "" {
		segments = append(segments, bg.Render("/"+truncate(m.searchQuery, 18), styles.AccentText))
	}
	if m.notice != "" {
		style := styles.InfoText
		if m.noticeIsErr {
			style = styles.WarningText
		}
		segments = append(segments, bg.Render(truncate(m.notice, 48), style))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return bar.Render(strings.Join(segments, bg.Spaces(2)))
}

func siteHost(siteURL string) string {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host + strings.TrimSuffix(u.Path, "/")
}

// sortLabel names the ordering shown in the list title.
func sortLabel(key browser.SortKey) string {
	if key == browser.SortPopular {
		return "popular"
	}
	return "latest"
}

func ternaryInt(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
