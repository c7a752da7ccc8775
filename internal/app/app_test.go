package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/five82/stylekit/internal/library"
	"github.com/five82/stylekit/internal/prefs"
)

func writeConfig(t *testing.T, dir, siteURL string, withCredentials bool) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "site_url = %q\n", siteURL)
	fmt.Fprintf(&b, "log_file = %q\n", filepath.Join(dir, "logs", "stylekit.log"))
	if withCredentials {
		b.WriteString("username = \"admin\"\napp_password = \"abcd efgh\"\n")
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newLibraryServer(t *testing.T, marks *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/agwp/v1/templates/":
			_, _ = w.Write([]byte(`{"templates":[
				{"id":1,"title":"Hero","type":"hero","popularityIndex":3},
				{"id":2,"title":"Pricing","type":"section","popularityIndex":8}
			],"count":2,"timestamp":1700000000}`))
		case "/wp-json/agwp/v1/mark_favorite/":
			marks.Add(1)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSetup_WiresControllerAndPersistsFavorites(t *testing.T) {
	dir := t.TempDir()
	var marks atomic.Int32
	server := newLibraryServer(t, &marks)
	prefsPath := filepath.Join(dir, "prefs.toml")

	env, err := Setup(Options{
		ConfigPath: writeConfig(t, dir, server.URL, true),
		PrefsPath:  prefsPath,
	})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer env.Close()

	ctx := context.Background()
	if err := env.Controller.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := len(env.Controller.View()); got != 2 {
		t.Fatalf("view has %d templates, want 2", got)
	}

	if err := env.Controller.MarkFavorite(ctx, "2", true); err != nil {
		t.Fatalf("MarkFavorite returned error: %v", err)
	}
	if marks.Load() != 1 {
		t.Fatalf("mark_favorite calls = %d, want 1", marks.Load())
	}

	saved, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if len(saved.Favorites) != 1 || saved.Favorites[0] != "2" {
		t.Fatalf("saved favorites = %v, want [2]", saved.Favorites)
	}

	env.Controller.ToggleFavorites()
	view := env.Controller.View()
	if len(view) != 1 || view[0].ID != library.TemplateID("2") {
		t.Fatalf("favorites view = %v, want template 2", view)
	}
}

func TestSetup_WithoutCredentialsKeepsFavoritesLocal(t *testing.T) {
	dir := t.TempDir()
	var marks atomic.Int32
	server := newLibraryServer(t, &marks)
	prefsPath := filepath.Join(dir, "prefs.toml")

	env, err := Setup(Options{
		ConfigPath: writeConfig(t, dir, server.URL, false),
		PrefsPath:  prefsPath,
	})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer env.Close()

	if err := env.Controller.MarkFavorite(context.Background(), "1", true); err != nil {
		t.Fatalf("MarkFavorite returned error: %v", err)
	}
	if marks.Load() != 0 {
		t.Fatalf("mark_favorite calls = %d, want 0 without credentials", marks.Load())
	}
	if !env.Favorites.Has("1") {
		t.Fatalf("favorite 1 not recorded locally")
	}
}

func TestSetup_SeedsFavoritesFromPrefs(t *testing.T) {
	dir := t.TempDir()
	var marks atomic.Int32
	server := newLibraryServer(t, &marks)
	prefsPath := filepath.Join(dir, "prefs.toml")
	if err := prefs.Save(prefsPath, prefs.Prefs{Theme: "Slate", Favorites: []string{"1"}}); err != nil {
		t.Fatalf("prefs.Save returned error: %v", err)
	}

	env, err := Setup(Options{ConfigPath: writeConfig(t, dir, server.URL, false), PrefsPath: prefsPath})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer env.Close()

	if !env.Favorites.Has("1") {
		t.Fatalf("favorites not seeded from prefs")
	}
	if got := env.Prefs.Get().Theme; got != "Slate" {
		t.Fatalf("theme = %q, want Slate", got)
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("site_url = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Setup(Options{ConfigPath: path, PrefsPath: filepath.Join(dir, "prefs.toml")}); err == nil {
		t.Fatalf("Setup returned nil error for invalid config")
	}
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stylekit.log")
	logger, err := NewLogger(path, "warn", false)
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "hidden") || !strings.Contains(text, `"msg":"visible"`) {
		t.Fatalf("log contents = %q, want only the warn entry as JSON", text)
	}
}

func TestNewLogger_VerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stylekit.log")
	logger, err := NewLogger(path, "error", true)
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.Debug("trace me")
	_ = logger.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "trace me") {
		t.Fatalf("debug entry missing with verbose: %q", data)
	}
}

func TestPrefsStore_UpdateKeepsOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	store := NewPrefsStore(path, prefs.Prefs{Theme: "Kanagawa", Sort: "popular"})

	if err := store.Update(func(p *prefs.Prefs) { p.Favorites = []string{"9"} }); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := store.Update(func(p *prefs.Prefs) { p.Theme = "Slate" }); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	saved, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.Theme != "Slate" || saved.Sort != "popular" || len(saved.Favorites) != 1 {
		t.Fatalf("saved = %+v, want Slate/popular with one favorite", saved)
	}
}
