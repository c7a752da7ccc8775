package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stylekit/internal/browser"
	"github.com/five82/stylekit/internal/library"
)

// renderTemplates renders the split layout: template list and detail pane.
func (m Model) renderTemplates() string {
	styles := m.theme.Styles()
	contentHeight := max(m.height-chromeHeight, 3)

	if len(m.snap.View) == 0 {
		msg := "No templates"
		switch {
		case m.snap.Loading || m.snap.Refreshing:
			msg = "Fetching templates..."
		case m.snap.ShowingFavorites:
			msg = "No favorites in this view. Press m on a template to star it."
		case !m.snap.Loaded && m.snap.LastError != nil:
			msg = "Library unavailable. Press r to try again."
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(msg))
	}

	listWidth, detailWidth := paneWidths(m.width)

	listFocused := m.focusedPane == PaneList
	listBg := ternary(listFocused, m.theme.FocusBg, m.theme.SurfaceAlt)
	listContent := m.renderTemplateList(listWidth-2, contentHeight-2, listBg)
	listPane := m.renderTitledBox(m.listTitle(), listContent, listWidth, contentHeight, listFocused)

	detailPane := m.renderTitledBox("Details", m.detail.View(), detailWidth, contentHeight, m.focusedPane == PaneDetail)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) listTitle() string {
	title := "Templates"
	if m.snap.ShowingFavorites {
		title = "Favorites"
	}
	parts := []string{title, sortLabel(m.sortKey)}
	if f := m.filterValue(); f != browser.AllTypes {
		parts = append(parts, f)
	}
	return strings.Join(parts, " · ")
}

// renderTemplateList renders the visible window of rows around the selection.
func (m Model) renderTemplateList(width, height int, bgColor string) string {
	items := m.snap.View
	if len(items) == 0 || height <= 0 {
		return ""
	}

	start := 0
	if m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := min(start+height, len(items))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := ternary(selected, m.theme.SelectionBg, bgColor)
		content := m.formatTemplateRow(items[i], width, rowBg, selected)
		lines = append(lines, NewBgStyle(rowBg).FillLine(content, width))
	}
	return strings.Join(lines, "\n")
}

// formatTemplateRow formats a row as "★ Title · type  pop PRO".
// Selected rows use SelectionText throughout for contrast.
func (m Model) formatTemplateRow(tpl library.Template, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	star := ternary(m.favorites.Has(tpl.ID), "★", " ")
	meta := tpl.Type
	if tpl.PopularityIndex.Valid {
		meta += fmt.Sprintf("  %d", tpl.PopularityIndex.Value)
	}
	if tpl.IsPro {
		meta += "  PRO"
	}

	separatorLen := 3 // " · "
	titleWidth := max(width-lipgloss.Width(meta)-separatorLen-3, 8)

	var starStyle, titleStyle, sepStyle, metaStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		starStyle, titleStyle, sepStyle, metaStyle = selText, selText, selText, selText
	} else {
		styles := m.theme.Styles()
		starStyle = styles.FavoriteText
		titleStyle = styles.Text
		sepStyle = styles.FaintText
		metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForType(tpl.Type)))
	}

	return bg.Render(star, starStyle) + bg.Space() +
		bg.Render(truncate(tpl.Title, titleWidth), titleStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(meta, metaStyle)
}

// colorForType picks a stable palette color from the type's position in the
// catalog's type list.
func (m Model) colorForType(t string) string {
	for i, f := range m.snap.Filters {
		if f == t {
			return m.theme.TypeColor(i)
		}
	}
	return m.theme.Muted
}

func (m Model) listHeight() int {
	return max(m.height-chromeHeight-2, 1)
}

func (m *Model) resizeDetail() {
	_, detailWidth := paneWidths(m.width)
	m.detail.Width = max(detailWidth-4, 10)
	m.detail.Height = max(m.height-chromeHeight-2, 1)
}

// updateDetail refreshes the detail pane for the selected template.
func (m *Model) updateDetail() {
	tpl := m.selectedTemplate()
	if tpl == nil {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(m.renderDetailContent(*tpl, m.detail.Width))
	m.detail.GotoTop()
}

func (m Model) renderDetailContent(tpl library.Template, width int) string {
	styles := m.theme.Styles()
	label := styles.MutedText.Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(truncate(tpl.Title, max(width, 10))))
	if tpl.IsPro {
		b.WriteString(" ")
		b.WriteString(styles.Badge.Render("PRO"))
	}
	b.WriteString("\n\n")

	row := func(name, value string, style lipgloss.Style) {
		if value == "" {
			return
		}
		b.WriteString(label.Render(name))
		b.WriteString(style.Render(truncate(value, max(width-12, 8))))
		b.WriteString("\n")
	}

	row("ID", tpl.ID.String(), styles.Text)
	row("Type", titleCase(tpl.Type), lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForType(tpl.Type))))
	if len(tpl.Tags) > 0 {
		row("Tags", strings.Join(tpl.Tags, ", "), styles.Text)
	}
	popularity := "unranked"
	if tpl.PopularityIndex.Valid {
		popularity = fmt.Sprintf("%d", tpl.PopularityIndex.Value)
	}
	row("Popularity", popularity, styles.Text)
	if ts := tpl.Timestamp.Time(); !ts.IsZero() {
		row("Updated", ts.Local().Format("2006-01-02 15:04"), styles.Text)
	}
	if m.favorites.Has(tpl.ID) {
		row("Favorite", "★ yes", styles.FavoriteText)
	} else {
		row("Favorite", "no", styles.MutedText)
	}
	row("Preview", tpl.URL, styles.AccentText)
	row("Thumbnail", tpl.Thumbnail, styles.FaintText)

	return strings.TrimRight(b.String(), "\n")
}
