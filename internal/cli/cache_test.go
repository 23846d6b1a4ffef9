package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/kitchendesigner/pkg/cache"
)

// writeConfig writes a settings file pointing the file cache at dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	data := fmt.Sprintf("[cache]\nbackend = \"file\"\ndir = %q\n", dir)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	out := captureOutput(t)

	if err := runRoot(t, "cache", "path", "--config", writeConfig(t, dir)); err != nil {
		t.Fatalf("cache path failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}

func TestCachePathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	out := captureOutput(t)

	if err := runRoot(t, "cache", "path"); err != nil {
		t.Fatalf("cache path failed: %v", err)
	}
	want := filepath.Join(cacheHome, appName)
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"solution:a", "solution:b"} {
		if err := store.Set(ctx, key, []byte("{}"), 0); err != nil {
			t.Fatal(err)
		}
	}

	out := captureOutput(t)
	if err := runRoot(t, "cache", "clear", "--config", writeConfig(t, dir)); err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	if !strings.Contains(out.String(), "Cleared 2 cached solutions") {
		t.Errorf("output = %q, want the cleared count", out.String())
	}
	if _, ok, _ := store.Get(ctx, "solution:a"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestCacheClearMissingConfig(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear", "--config", filepath.Join(t.TempDir(), "missing.toml")})
	root.SetOut(&buf)
	root.SetErr(&buf)

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("an explicit --config that does not exist should fail")
	}
}
