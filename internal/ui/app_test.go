package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stylekit/internal/browser"
	"github.com/five82/stylekit/internal/library"
	"github.com/five82/stylekit/internal/prefs"
	"github.com/five82/stylekit/internal/state"
)

type fakeFetcher struct {
	mu    sync.Mutex
	resp  *library.CatalogResponse
	err   error
	force []bool
}

func (f *fakeFetcher) FetchTemplates(_ context.Context, opts library.FetchOptions) (*library.CatalogResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.force = append(f.force, opts.ForceUpdate)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type prefsRecorder struct {
	p     prefs.Prefs
	calls int
}

func (r *prefsRecorder) Update(fn func(p *prefs.Prefs)) error {
	fn(&r.p)
	r.calls++
	return nil
}

func popularity(v int) library.PopularityIndex {
	return library.PopularityIndex{Value: v, Valid: true}
}

func sampleCatalog() *library.CatalogResponse {
	return &library.CatalogResponse{
		Templates: []library.Template{
			{ID: "1", Title: "Hero Split", Type: "hero", Tags: []string{"landing"}, PopularityIndex: popularity(5)},
			{ID: "2", Title: "Hero Video", Type: "hero", PopularityIndex: popularity(9)},
			{ID: "3", Title: "Pricing Table", Type: "section", Tags: []string{"pricing"}, PopularityIndex: popularity(7)},
			{ID: "4", Title: "About Page", Type: "page"},
		},
		Count:     4,
		Timestamp: 1700000000,
	}
}

type harness struct {
	fetcher   *fakeFetcher
	ctrl      *browser.Controller
	favorites *state.Favorites
	prefs     *prefsRecorder
}

func newLoadedModel(t *testing.T) (Model, *harness) {
	t.Helper()
	h := &harness{
		fetcher:   &fakeFetcher{resp: sampleCatalog()},
		favorites: state.NewFavorites(nil, nil),
		prefs:     &prefsRecorder{p: prefs.Defaults()},
	}
	h.ctrl = browser.New(h.fetcher, h.favorites, browser.WithFavoriteMarker(h.favorites))

	m := New(Options{Controller: h.ctrl, Favorites: h.favorites, Prefs: h.prefs, ThemeName: "Nightfox"})
	msg := loadCmd(context.Background(), h.ctrl)()
	m = update(t, m, msg)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, h
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func viewIDs(m Model) string {
	ids := make([]string, 0, len(m.snap.View))
	for _, tpl := range m.snap.View {
		ids = append(ids, tpl.ID.String())
	}
	return strings.Join(ids, ",")
}

func TestModel_InitialLoadShowsCatalog(t *testing.T) {
	m, h := newLoadedModel(t)

	if got := viewIDs(m); got != "1,2,3,4" {
		t.Fatalf("view = %s, want 1,2,3,4", got)
	}
	if len(h.fetcher.force) != 1 || h.fetcher.force[0] {
		t.Fatalf("fetch calls = %v, want one unforced load", h.fetcher.force)
	}
	out := m.View()
	for _, want := range []string{"stylekit", "Templates: 4/4", "Hero Split", "Pricing Table"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view output missing %q", want)
		}
	}
}

func TestModel_PreferredPopularSortAppliedAfterLoad(t *testing.T) {
	favs := state.NewFavorites(nil, nil)
	ctrl := browser.New(&fakeFetcher{resp: sampleCatalog()}, favs)
	m := New(Options{Controller: ctrl, Favorites: favs, Sort: browser.SortPopular})

	m = update(t, m, loadCmd(context.Background(), ctrl)())
	if got := viewIDs(m); got != "2,3,1,4" {
		t.Fatalf("view = %s, want popular order 2,3,1,4", got)
	}
}

func TestModel_CycleFilterAlwaysStartsFromCatalog(t *testing.T) {
	m, _ := newLoadedModel(t)

	steps := []struct {
		filter string
		ids    string
	}{
		{"hero", "1,2"},
		{"section", "3"},
		{"page", "4"},
		{"all", "1,2,3,4"},
	}
	for _, step := range steps {
		m = press(t, m, "f")
		if got := m.filterValue(); got != step.filter {
			t.Fatalf("filter = %q, want %q", got, step.filter)
		}
		if got := viewIDs(m); got != step.ids {
			t.Fatalf("filter %s view = %s, want %s", step.filter, got, step.ids)
		}
	}
}

func TestModel_CycleSortPersistsPreference(t *testing.T) {
	m, h := newLoadedModel(t)

	m = press(t, m, "f", "s")
	if m.sortKey != browser.SortPopular {
		t.Fatalf("sortKey = %q, want popular", m.sortKey)
	}
	if got := viewIDs(m); got != "2,3,1,4" {
		t.Fatalf("popular view = %s, want 2,3,1,4", got)
	}
	if m.filterValue() != browser.AllTypes {
		t.Fatalf("filter = %q, want all after sort", m.filterValue())
	}
	if h.prefs.p.Sort != "popular" {
		t.Fatalf("saved sort = %q, want popular", h.prefs.p.Sort)
	}

	m = press(t, m, "s")
	if got := viewIDs(m); got != "1,2,3,4" {
		t.Fatalf("latest view = %s, want 1,2,3,4", got)
	}
	if h.prefs.p.Sort != "latest" {
		t.Fatalf("saved sort = %q, want latest", h.prefs.p.Sort)
	}
}

func TestModel_SearchPromptNarrowsView(t *testing.T) {
	m, _ := newLoadedModel(t)

	m = press(t, m, "/")
	if !m.searching {
		t.Fatalf("search prompt not opened")
	}
	m = press(t, m, "PRICING", "enter")
	if m.searching {
		t.Fatalf("search prompt still open after enter")
	}
	if got := viewIDs(m); got != "3" {
		t.Fatalf("view = %s, want 3", got)
	}
	if m.searchQuery != "PRICING" {
		t.Fatalf("searchQuery = %q, want PRICING", m.searchQuery)
	}
}

func TestModel_SearchKeysDoNotTriggerCommands(t *testing.T) {
	m, _ := newLoadedModel(t)

	m = press(t, m, "/", "f", "e", "s")
	if !m.searching {
		t.Fatalf("typing in search prompt left it")
	}
	if m.filterValue() != browser.AllTypes || m.sortKey != browser.SortLatest {
		t.Fatalf("search keystrokes changed filter/sort: %q %q", m.filterValue(), m.sortKey)
	}
	if got := m.searchInput.Value(); got != "fes" {
		t.Fatalf("search input = %q, want fes", got)
	}
}

func TestModel_SearchWithoutMatchesFallsBackToCatalog(t *testing.T) {
	m, _ := newLoadedModel(t)

	m = press(t, m, "f", "/", "zzz", "enter")
	if got := viewIDs(m); got != "1,2,3,4" {
		t.Fatalf("view = %s, want full catalog", got)
	}
	if m.filterValue() != browser.AllTypes || m.searchQuery != "" {
		t.Fatalf("labels not cleared: filter %q query %q", m.filterValue(), m.searchQuery)
	}
	if !strings.Contains(m.notice, "No templates match") {
		t.Fatalf("notice = %q, want no-match notice", m.notice)
	}
}

func TestModel_EscapeCancelsSearchThenResetsView(t *testing.T) {
	m, _ := newLoadedModel(t)

	m = press(t, m, "f", "/", "vid", "esc")
	if m.searching {
		t.Fatalf("esc did not close search prompt")
	}
	if got := viewIDs(m); got != "1,2" {
		t.Fatalf("cancelled search changed view to %s", got)
	}

	m = press(t, m, "esc")
	if got := viewIDs(m); got != "1,2,3,4" {
		t.Fatalf("reset view = %s, want 1,2,3,4", got)
	}
	if m.filterIdx != 0 {
		t.Fatalf("filterIdx = %d, want 0 after reset", m.filterIdx)
	}
}

func TestModel_MarkFavoriteAndToggleFavoritesMode(t *testing.T) {
	m, h := newLoadedModel(t)

	m = press(t, m, "j")
	next, cmd := m.Update(keyMsg("m"))
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("mark favorite returned no command")
	}
	m = update(t, m, cmd())
	if !h.favorites.Has("2") {
		t.Fatalf("template 2 not marked")
	}
	if m.notice != "Added to favorites" {
		t.Fatalf("notice = %q, want Added to favorites", m.notice)
	}

	m = press(t, m, "v")
	if !m.snap.ShowingFavorites || viewIDs(m) != "2" {
		t.Fatalf("favorites mode = %v view %s, want true and 2", m.snap.ShowingFavorites, viewIDs(m))
	}
	if !strings.Contains(m.View(), "Favorites") {
		t.Fatalf("favorites marker missing from output")
	}

	m = press(t, m, "v")
	if m.snap.ShowingFavorites || viewIDs(m) != "1,2,3,4" {
		t.Fatalf("leaving favorites = %v view %s, want catalog", m.snap.ShowingFavorites, viewIDs(m))
	}

	// Pressing m again on a starred template removes it.
	_, cmd = m.Update(keyMsg("m"))
	if cmd == nil {
		t.Fatalf("unmark returned no command")
	}
	msg, ok := cmd().(favoriteMarkedMsg)
	if !ok || msg.favorite {
		t.Fatalf("unmark msg = %#v, want favorite=false", msg)
	}
	if h.favorites.Has("2") {
		t.Fatalf("template 2 still marked")
	}
}

func TestModel_SelectionFollowsTemplateAcrossSort(t *testing.T) {
	m, _ := newLoadedModel(t)

	m = press(t, m, "j", "j")
	if tpl := m.selectedTemplate(); tpl == nil || tpl.ID != "3" {
		t.Fatalf("selected = %v, want 3", tpl)
	}
	m = press(t, m, "s")
	if tpl := m.selectedTemplate(); tpl == nil || tpl.ID != "3" {
		t.Fatalf("selected after sort = %v, want 3", tpl)
	}
	if m.selectedRow != 1 {
		t.Fatalf("selectedRow = %d, want 1", m.selectedRow)
	}

	m = press(t, m, "G")
	if m.selectedRow != 3 {
		t.Fatalf("G selectedRow = %d, want 3", m.selectedRow)
	}
	m = press(t, m, "g")
	if m.selectedRow != 0 {
		t.Fatalf("g selectedRow = %d, want 0", m.selectedRow)
	}
}

func TestModel_RefreshForcesUpdate(t *testing.T) {
	m, h := newLoadedModel(t)

	m = press(t, m, "f")
	msg := refreshCmd(context.Background(), h.ctrl)()
	m = update(t, m, msg)

	if got := h.fetcher.force; len(got) != 2 || !got[1] {
		t.Fatalf("fetch calls = %v, want second call forced", got)
	}
	if got := viewIDs(m); got != "1,2,3,4" {
		t.Fatalf("view after refresh = %s, want catalog", got)
	}
	if m.filterIdx != 0 || m.notice != "Library refreshed" {
		t.Fatalf("filterIdx %d notice %q, want 0 and refreshed", m.filterIdx, m.notice)
	}
}

func TestModel_RefreshIgnoredWhileFetchOutstanding(t *testing.T) {
	m, h := newLoadedModel(t)

	next, cmd := m.Update(keyMsg("r"))
	if cmd == nil {
		t.Fatal("first r returned nil cmd, want refresh")
	}
	m = next.(Model)
	next, cmd = m.Update(keyMsg("r"))
	if cmd != nil {
		t.Fatal("second r returned a cmd while the refresh is outstanding")
	}
	m = next.(Model)

	// Filter and sort hold off until the new catalog lands.
	m = press(t, m, "f", "s")
	if m.filterIdx != 0 || m.sortKey != browser.SortLatest {
		t.Fatalf("filterIdx %d sort %q changed during fetch", m.filterIdx, m.sortKey)
	}
	if m.notice != "Library is updating" {
		t.Fatalf("notice = %q, want updating notice", m.notice)
	}

	m = update(t, m, refreshCmd(context.Background(), h.ctrl)())
	if len(h.fetcher.force) != 2 {
		t.Fatalf("fetch calls = %v, want load plus one refresh", h.fetcher.force)
	}
	if _, cmd := m.Update(keyMsg("r")); cmd == nil {
		t.Fatal("r after refresh completed returned nil cmd")
	}
}

func TestModel_RefreshIgnoredDuringInitialLoad(t *testing.T) {
	favs := state.NewFavorites(nil, nil)
	ctrl := browser.New(&fakeFetcher{resp: sampleCatalog()}, favs)
	m := New(Options{Controller: ctrl, Favorites: favs})

	if _, cmd := m.Update(keyMsg("r")); cmd != nil {
		t.Fatal("r during the initial load returned a cmd")
	}

	m.fetching = false
	m.snap.Loading = true
	if _, cmd := m.Update(keyMsg("r")); cmd != nil {
		t.Fatal("r while the snapshot reports loading returned a cmd")
	}
}

func TestModel_LoadFailureShowsClassifiedError(t *testing.T) {
	favs := state.NewFavorites(nil, nil)
	ctrl := browser.New(&fakeFetcher{err: &library.StatusError{Path: "/templates/", Code: 503}}, favs)
	m := New(Options{Controller: ctrl, Favorites: favs, LogFile: "/tmp/stylekit.log"})

	m = update(t, m, loadCmd(context.Background(), ctrl)())
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})

	if !m.noticeIsErr || !strings.Contains(m.notice, "HTTP 503") {
		t.Fatalf("notice = %q err=%v, want HTTP 503 error", m.notice, m.noticeIsErr)
	}
	out := m.View()
	if !strings.Contains(out, "LIBRARY HTTP 503") {
		t.Fatalf("header missing classified error: %q", out)
	}
	if !strings.Contains(out, "Library unavailable") {
		t.Fatalf("empty state missing retry hint")
	}
}

func TestModel_ThemeCyclePersists(t *testing.T) {
	m, h := newLoadedModel(t)

	m = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if h.prefs.p.Theme != "Kanagawa" || h.prefs.calls != 1 {
		t.Fatalf("saved theme = %q after %d calls, want Kanagawa once", h.prefs.p.Theme, h.prefs.calls)
	}
}

func TestModel_HelpOverlayClosesOnAnyKey(t *testing.T) {
	m, _ := newLoadedModel(t)

	m = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = press(t, m, "f")
	if m.showHelp {
		t.Fatalf("help overlay still shown")
	}
	if m.filterValue() != browser.AllTypes {
		t.Fatalf("key closing help also changed filter")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := newLoadedModel(t)
	for _, k := range []string{"e", "ctrl+c"} {
		_, cmd := m.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s did not quit", k)
		}
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&browser.FetchError{Op: "load", Err: &library.StatusError{Code: 401}}, "HTTP 401"},
		{context.DeadlineExceeded, "TIMEOUT"},
		{errors.New("dial tcp 127.0.0.1:80: connect: connection refused"), "OFFLINE"},
		{errors.New("dial tcp: lookup nowhere: no such host"), "HOST NOT FOUND"},
		{errors.New("decode response: unexpected EOF"), "BAD RESPONSE"},
		{errors.New("boom"), "ERROR"},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Fatalf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
