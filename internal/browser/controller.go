package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stylekit/internal/library"
)

// Fetcher loads the catalog from the remote library.
type Fetcher interface {
	FetchTemplates(ctx context.Context, opts library.FetchOptions) (*library.CatalogResponse, error)
}

// Favorites reports whether a template is a favorite.
type Favorites interface {
	Has(id library.TemplateID) bool
}

// FavoriteMarker is the external store MarkFavorite delegates to.
type FavoriteMarker interface {
	Mark(ctx context.Context, id library.TemplateID, favorite bool) error
}

// SortKey selects a catalog ordering.
type SortKey string

const (
	SortLatest  SortKey = "latest"
	SortPopular SortKey = "popular"
)

// AllTypes is the filter value that shows every template type.
const AllTypes = "all"

var (
	// ErrNetwork marks failures to reach or read the remote catalog.
	ErrNetwork = errors.New("catalog unavailable")
	// ErrUnknownSort is returned for sort keys other than latest and popular.
	ErrUnknownSort = errors.New("unknown sort key")
	// ErrNoFavoriteStore is returned by MarkFavorite when no marker was injected.
	ErrNoFavoriteStore = errors.New("no favorites store configured")
)

// FetchError describes a failed load or refresh. It matches both ErrNetwork
// and the underlying cause with errors.Is.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s catalog: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	Catalog []library.Template
	View    []library.Template
	Filters []string

	Count     int
	HasCount  bool
	Timestamp time.Time

	Loaded           bool
	Loading          bool
	Refreshing       bool
	ShowingFavorites bool

	LastError  error
	LastSynced time.Time
}

// Controller owns the catalog, the derived view and the favorites-mode flag.
//
// Every operation runs to completion under the controller lock, so readers
// never observe a half-applied transform. Load and Refresh release the lock
// while the fetch is in flight; overlapping calls are not de-duplicated and
// the last response to arrive wins.
type Controller struct {
	mu sync.RWMutex

	fetcher   Fetcher
	favorites Favorites
	marker    FavoriteMarker
	logger    *zap.Logger
	now       func() time.Time

	catalog []library.Template
	view    []library.Template
	filters []string

	count     int
	hasCount  bool
	timestamp time.Time

	loaded           bool
	loading          bool
	refreshing       bool
	showingFavorites bool

	lastErr    error
	lastSynced time.Time
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFavoriteMarker sets the store MarkFavorite delegates to.
func WithFavoriteMarker(marker FavoriteMarker) Option {
	return func(c *Controller) {
		c.marker = marker
	}
}

// WithClock overrides the time source used for LastSynced.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a controller. favorites may be nil, meaning nothing is a favorite.
func New(fetcher Fetcher, favorites Favorites, opts ...Option) *Controller {
	if favorites == nil {
		favorites = noFavorites{}
	}
	c := &Controller{
		fetcher:   fetcher,
		favorites: favorites,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the catalog. On failure the previous state is kept and the
// error is recorded and returned.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	resp, err := c.fetch(ctx, false)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.lastErr = &FetchError{Op: "load", Err: err}
		c.logger.Warn("catalog load failed", zap.Error(err))
		return c.lastErr
	}
	c.replaceCatalog(resp)
	c.logger.Info("catalog loaded",
		zap.Int("templates", len(c.catalog)),
		zap.Int("count", c.count),
	)
	return nil
}

// Refresh clears the view and re-fetches with the server cache bypassed.
// A failed refresh restores the view from the unchanged catalog.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	prevCount, prevHasCount := c.count, c.hasCount
	c.view = nil
	c.count = 0
	c.hasCount = false
	c.refreshing = true
	c.mu.Unlock()

	resp, err := c.fetch(ctx, true)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if err != nil {
		c.view = cloneTemplates(c.catalog)
		c.count, c.hasCount = prevCount, prevHasCount
		c.showingFavorites = false
		c.lastErr = &FetchError{Op: "refresh", Err: err}
		c.logger.Warn("catalog refresh failed", zap.Error(err))
		return c.lastErr
	}
	c.replaceCatalog(resp)
	c.logger.Info("catalog refreshed",
		zap.Int("templates", len(c.catalog)),
		zap.Int("count", c.count),
	)
	return nil
}

func (c *Controller) fetch(ctx context.Context, force bool) (*library.CatalogResponse, error) {
	if c.fetcher == nil {
		return nil, errors.New("no catalog source configured")
	}
	resp, err := c.fetcher.FetchTemplates(ctx, library.FetchOptions{ForceUpdate: force})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("empty catalog response")
	}
	return resp, nil
}

// replaceCatalog swaps in a fetched catalog. Caller holds the lock.
func (c *Controller) replaceCatalog(resp *library.CatalogResponse) {
	c.catalog = cloneTemplates(resp.Templates)
	c.view = cloneTemplates(c.catalog)
	c.filters = distinctTypes(c.catalog)
	c.count = resp.Count
	c.hasCount = true
	c.timestamp = resp.Timestamp.Time()
	c.loaded = true
	c.showingFavorites = false
	c.lastErr = nil
	c.lastSynced = c.now()
}

// FilterByType shows the catalog templates of type t, or all of them for
// AllTypes. Filters always start from the catalog, never the current view.
func (c *Controller) FilterByType(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t == AllTypes {
		c.view = cloneTemplates(c.catalog)
		return
	}
	filtered := make([]library.Template, 0, len(c.catalog))
	for _, tpl := range c.catalog {
		if tpl.Type == t {
			filtered = append(filtered, tpl)
		}
	}
	c.view = filtered
}

// SortBy resets the view to the catalog, leaves favorites-mode and orders it.
// Popular is a stable descending sort on popularity; templates without an
// index sort after all ranked ones. Latest keeps catalog order.
func (c *Controller) SortBy(key SortKey) error {
	switch key {
	case SortLatest, SortPopular:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSort, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.showingFavorites = false
	c.view = cloneTemplates(c.catalog)
	if key == SortPopular {
		sortByPopularity(c.view)
	}
	return nil
}

// Search narrows the current view to templates whose title or a tag contains
// query, ignoring case. An empty query or no matches shows the full catalog;
// the result reports whether any template matched.
func (c *Controller) Search(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	needle := strings.ToLower(query)
	if needle == "" {
		c.view = cloneTemplates(c.catalog)
		return false
	}
	var matches []library.Template
	for _, tpl := range c.view {
		if matchesQuery(tpl, needle) {
			matches = append(matches, tpl)
		}
	}
	if len(matches) == 0 {
		c.view = cloneTemplates(c.catalog)
		return false
	}
	c.view = matches
	return true
}

// ToggleFavorites flips favorites-mode. Entering keeps only favorites from
// the current view; leaving shows the catalog.
func (c *Controller) ToggleFavorites() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.showingFavorites {
		c.showingFavorites = false
		c.view = cloneTemplates(c.catalog)
		return
	}
	favorites := make([]library.Template, 0, len(c.view))
	for _, tpl := range c.view {
		if c.favorites.Has(tpl.ID) {
			favorites = append(favorites, tpl)
		}
	}
	c.showingFavorites = true
	c.view = favorites
}

// MarkFavorite forwards to the favorites store. Controller state is untouched.
func (c *Controller) MarkFavorite(ctx context.Context, id library.TemplateID, favorite bool) error {
	if c.marker == nil {
		return ErrNoFavoriteStore
	}
	if err := c.marker.Mark(ctx, id, favorite); err != nil {
		return fmt.Errorf("mark favorite %s: %w", id, err)
	}
	c.logger.Info("favorite updated", zap.String("template_id", id.String()), zap.Bool("favorite", favorite))
	return nil
}

// Reset returns to the unfiltered catalog and leaves favorites-mode. The
// owning shell calls it when the library view is dismissed.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.showingFavorites = false
	c.view = cloneTemplates(c.catalog)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Catalog:          cloneTemplates(c.catalog),
		View:             cloneTemplates(c.view),
		Filters:          append([]string(nil), c.filters...),
		Count:            c.count,
		HasCount:         c.hasCount,
		Timestamp:        c.timestamp,
		Loaded:           c.loaded,
		Loading:          c.loading,
		Refreshing:       c.refreshing,
		ShowingFavorites: c.showingFavorites,
		LastError:        c.lastErr,
		LastSynced:       c.lastSynced,
	}
}

// View returns a copy of the templates currently displayed.
func (c *Controller) View() []library.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTemplates(c.view)
}

func sortByPopularity(items []library.Template) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PopularityIndex, items[j].PopularityIndex
		if !a.Valid {
			return false
		}
		if !b.Valid {
			return true
		}
		return a.Value > b.Value
	})
}

func matchesQuery(tpl library.Template, needle string) bool {
	if strings.Contains(strings.ToLower(tpl.Title), needle) {
		return true
	}
	for _, tag := range tpl.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func distinctTypes(items []library.Template) []string {
	seen := make(map[string]struct{}, len(items))
	var types []string
	for _, tpl := range items {
		if _, ok := seen[tpl.Type]; ok {
			continue
		}
		seen[tpl.Type] = struct{}{}
		types = append(types, tpl.Type)
	}
	return types
}

func cloneTemplates(items []library.Template) []library.Template {
	if items == nil {
		return nil
	}
	dup := make([]library.Template, len(items))
	copy(dup, items)
	return dup
}

type noFavorites struct{}

func (noFavorites) Has(library.TemplateID) bool { return false }
