package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SECTIONS_FILE", "")
	t.Setenv("DOCS_SECTIONS", "getting-started,creating-mods")
	t.Setenv("BASE_URL", "https://example.test")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSectionsCommand(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"getting-started/installation.mdx": "---\ntitle: Installation\norder: 1\n---\n",
		"getting-started/community.mdx":    "---\ntitle: Community\n---\n",
	})

	out, err := run(t, "sections", "--content-dir", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst := strings.Index(out, "installation")
	comm := strings.Index(out, "community")
	if inst < 0 || comm < 0 || inst > comm {
		t.Errorf("expected installation before community, got:\n%s", out)
	}
	if !strings.Contains(out, "creating-mods") {
		t.Errorf("expected empty section to be listed, got:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	good := writeContent(t, map[string]string{
		"getting-started/installation.mdx": "---\ntitle: Installation\n---\n",
		"creating-mods/first.mdx":          "---\ntitle: First\n---\n",
	})
	out, err := run(t, "check", "--content-dir", good)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok (0 warnings)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	bad := writeContent(t, map[string]string{
		"getting-started/installation.mdx": "no front matter\n",
	})
	out, err = run(t, "check", "--content-dir", bad)
	if err == nil {
		t.Fatalf("expected check to fail, got:\n%s", out)
	}
	if !strings.Contains(out, "error: getting-started/installation.mdx") {
		t.Errorf("expected file error in output, got:\n%s", out)
	}
}

func TestSitemapCommand(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"getting-started/installation.mdx": "---\ntitle: Installation\n---\n",
	})

	out, err := run(t, "sitemap", "--content-dir", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<loc>https://example.test/docs/getting-started/installation</loc>") {
		t.Errorf("unexpected sitemap:\n%s", out)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("PORT", "1234")
	t.Setenv("CONTENT_DIR", "env-dir")

	cfg, err := loadConfig(&options{port: "9999", contentDir: "flag-dir"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" || cfg.ContentDir != "flag-dir" {
		t.Errorf("expected flag overrides, got port=%q dir=%q", cfg.Port, cfg.ContentDir)
	}

	cfg, err = loadConfig(&options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "1234" || cfg.ContentDir != "env-dir" {
		t.Errorf("expected env values, got port=%q dir=%q", cfg.Port, cfg.ContentDir)
	}
}
