package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/stylekit/internal/browser"
	"github.com/five82/stylekit/internal/library"
	"github.com/five82/stylekit/internal/prefs"
)

// FavoriteChecker reports whether a template is starred.
type FavoriteChecker interface {
	Has(id library.TemplateID) bool
}

// PrefsUpdater persists preference changes made from the UI.
type PrefsUpdater interface {
	Update(fn func(p *prefs.Prefs)) error
}

// Pane identifies the focused pane.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *browser.Controller
	Favorites  FavoriteChecker
	Prefs      PrefsUpdater
	Logger     *zap.Logger
	ThemeName  string
	Sort       browser.SortKey
	SiteURL    string
	LogFile    string
	Tick       time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	ctrl      *browser.Controller
	favorites FavoriteChecker
	prefs     PrefsUpdater
	logger    *zap.Logger
	siteURL   string
	logFile   string
	tick      time.Duration
	now       func() time.Time

	// UI state
	theme       Theme
	keys        keyMap
	width       int
	height      int
	ready       bool
	focusedPane Pane
	showHelp    bool

	// Library state
	snap        browser.Snapshot
	selectedRow int
	filterIdx   int // 0 = all types, i = snap.Filters[i-1]
	sortKey     browser.SortKey
	searchQuery string
	fetching    bool // a Load or Refresh is outstanding

	// Search prompt
	searching   bool
	searchInput textinput.Model

	detail viewport.Model

	// Transient one-line message for the command bar.
	notice      string
	noticeIsErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	favorites := opts.Favorites
	if favorites == nil {
		favorites = noFavorites{}
	}
	sortKey := opts.Sort
	if sortKey != browser.SortPopular {
		sortKey = browser.SortLatest
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search titles and tags"
	input.CharLimit = 80

	return Model{
		ctx:         ctx,
		ctrl:        opts.Controller,
		favorites:   favorites,
		prefs:       opts.Prefs,
		logger:      logger,
		siteURL:     opts.SiteURL,
		logFile:     opts.LogFile,
		tick:        tick,
		now:         time.Now,
		theme:       GetTheme(opts.ThemeName),
		keys:        DefaultKeyMap(),
		sortKey:     sortKey,
		fetching:    opts.Controller != nil,
		searchInput: input,
		detail:      viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	return tea.Batch(loadCmd(m.ctx, m.ctrl), tickCmd(m.tick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeDetail()
		m.updateDetail()
		return m, nil

	case tickMsg:
		m.sync()
		if m.snap.Loading || m.snap.Refreshing {
			return m, tickCmd(m.tick)
		}
		return m, nil

	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg)

	case favoriteMarkedMsg:
		return m.handleFavoriteMarked(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderTemplates())
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		m.updateDetail()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focusedPane == PaneList {
			m.focusedPane = PaneDetail
		} else {
			m.focusedPane = PaneList
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.resetView()
		return m, nil
	}

	if m.ctrl == nil {
		return m, nil
	}

	// Views rebuilt now would come from the catalog being replaced.
	if m.busy() && key.Matches(msg, m.keys.Search, m.keys.CycleFilter, m.keys.CycleSort,
		m.keys.ToggleFavorites, m.keys.Refresh) {
		m.setNotice("Library is updating", false)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilter()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		next := browser.SortPopular
		if m.sortKey == browser.SortPopular {
			next = browser.SortLatest
		}
		m.applySort(next)
		m.savePrefs(func(p *prefs.Prefs) { p.Sort = string(m.sortKey) })
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorites):
		m.ctrl.ToggleFavorites()
		m.clearNotice()
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.MarkFavorite):
		tpl := m.selectedTemplate()
		if tpl == nil {
			return m, nil
		}
		favorite := !m.favorites.Has(tpl.ID)
		return m, markFavoriteCmd(m.ctx, m.ctrl, tpl.ID, favorite)

	case key.Matches(msg, m.keys.Refresh):
		m.fetching = true
		m.filterIdx = 0
		m.searchQuery = ""
		m.clearNotice()
		return m, tea.Batch(refreshCmd(m.ctx, m.ctrl), tickCmd(m.tick))
	}

	if m.focusedPane == PaneDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m.handleListKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.searchInput.Blur()
		m.applySearch(m.searchInput.Value())
		return m, nil

	case key.Matches(msg, m.keys.Escape), msg.Type == tea.KeyCtrlC:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snap.View)
	if count == 0 {
		return m, nil
	}
	half := max(m.listHeight()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+half, count-1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-half, 0)
	default:
		return m, nil
	}
	m.updateDetail()
	return m, nil
}

func (m Model) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	m.fetching = false
	if msg.err != nil {
		m.setNotice(fmt.Sprintf("%s failed: %s", msg.op, classifyError(msg.err)), true)
		m.sync()
		return m, nil
	}
	// A fresh catalog arrives in latest order; re-apply the chosen ordering.
	if m.sortKey == browser.SortPopular {
		if err := m.ctrl.SortBy(m.sortKey); err != nil {
			m.logger.Warn("apply sort failed", zap.Error(err))
		}
	}
	m.filterIdx = 0
	m.searchQuery = ""
	if msg.op == opRefresh {
		m.setNotice("Library refreshed", false)
	}
	m.sync()
	return m, nil
}

func (m Model) handleFavoriteMarked(msg favoriteMarkedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("mark favorite failed", zap.String("template_id", msg.id.String()), zap.Error(msg.err))
		m.setNotice("Favorite not saved: "+classifyError(msg.err), true)
		return m, nil
	}
	m.setNotice(ternary(msg.favorite, "Added to favorites", "Removed from favorites"), false)
	m.updateDetail()
	return m, nil
}

// cycleFilter steps through "all" and each catalog type.
func (m *Model) cycleFilter() {
	m.filterIdx = (m.filterIdx + 1) % (len(m.snap.Filters) + 1)
	m.ctrl.FilterByType(m.filterValue())
	m.searchQuery = ""
	m.clearNotice()
	m.sync()
}

func (m *Model) applySort(keyName browser.SortKey) {
	if err := m.ctrl.SortBy(keyName); err != nil {
		m.setNotice(err.Error(), true)
		return
	}
	m.sortKey = keyName
	m.filterIdx = 0
	m.searchQuery = ""
	m.clearNotice()
	m.sync()
}

func (m *Model) applySearch(query string) {
	query = strings.TrimSpace(query)
	matched := m.ctrl.Search(query)
	m.searchQuery = query
	m.clearNotice()
	m.sync()
	if query != "" && !matched {
		m.searchQuery = ""
		m.filterIdx = 0
		m.setNotice(fmt.Sprintf("No templates match %q", query), false)
	}
}

// resetView runs the controller reset the library dialog triggers on close.
func (m *Model) resetView() {
	if m.ctrl != nil {
		m.ctrl.Reset()
	}
	m.filterIdx = 0
	m.searchQuery = ""
	m.focusedPane = PaneList
	m.clearNotice()
	m.sync()
}

func (m Model) busy() bool {
	return m.fetching || m.snap.Loading || m.snap.Refreshing
}

func (m Model) filterValue() string {
	if m.filterIdx <= 0 || m.filterIdx > len(m.snap.Filters) {
		return browser.AllTypes
	}
	return m.snap.Filters[m.filterIdx-1]
}

func (m *Model) savePrefs(fn func(p *prefs.Prefs)) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Update(fn); err != nil {
		m.logger.Warn("save preferences failed", zap.Error(err))
		m.setNotice("Preferences not saved", true)
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeIsErr = isErr
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeIsErr = false
}

// sync re-reads the controller state and keeps the selection on the same
// template when it is still visible.
func (m *Model) sync() {
	if m.ctrl == nil {
		return
	}
	var selectedID library.TemplateID
	if tpl := m.selectedTemplate(); tpl != nil {
		selectedID = tpl.ID
	}

	m.snap = m.ctrl.Snapshot()
	if m.filterIdx > len(m.snap.Filters) {
		m.filterIdx = 0
	}

	count := len(m.snap.View)
	switch {
	case count == 0:
		m.selectedRow = 0
	case selectedID != "":
		found := false
		for i, tpl := range m.snap.View {
			if tpl.ID == selectedID {
				m.selectedRow = i
				found = true
				break
			}
		}
		if !found && m.selectedRow >= count {
			m.selectedRow = count - 1
		}
	case m.selectedRow >= count:
		m.selectedRow = count - 1
	}
	m.updateDetail()
}

func (m Model) selectedTemplate() *library.Template {
	if m.selectedRow < 0 || m.selectedRow >= len(m.snap.View) {
		return nil
	}
	tpl := m.snap.View[m.selectedRow]
	return &tpl
}

// classifyError returns a short label for the header and notices.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *library.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP %d", statusErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "decode response"):
		return "BAD RESPONSE"
	default:
		return "ERROR"
	}
}

type noFavorites struct{}

func (noFavorites) Has(library.TemplateID) bool { return false }

// Messages

type catalogOp string

const (
	opLoad    catalogOp = "Load"
	opRefresh catalogOp = "Refresh"
)

type tickMsg time.Time

type catalogLoadedMsg struct {
	op  catalogOp
	err error
}

type favoriteMarkedMsg struct {
	id       library.TemplateID
	favorite bool
	err      error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadCmd(ctx context.Context, ctrl *browser.Controller) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{op: opLoad, err: ctrl.Load(ctx)}
	}
}

func refreshCmd(ctx context.Context, ctrl *browser.Controller) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{op: opRefresh, err: ctrl.Refresh(ctx)}
	}
}

func markFavoriteCmd(ctx context.Context, ctrl *browser.Controller, id library.TemplateID, favorite bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, MarkFavoriteTimeout)
		defer cancel()
		return favoriteMarkedMsg{id: id, favorite: favorite, err: ctrl.MarkFavorite(ctx, id, favorite)}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
