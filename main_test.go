package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	outDir     string
	recordPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		outDir:     filepath.Join(base, "out"),
		recordPath: filepath.Join(base, "record.json"),
	}
	cfg := strings.Join([]string{
		"[brand]",
		`watermark_url = ""`,
		"[proxy]",
		`assets_dir = "` + filepath.ToSlash(filepath.Join(base, "public")) + `"`,
		"[prefs]",
		`backend = "sqlite"`,
		`path = "` + filepath.ToSlash(filepath.Join(base, "prefs.db")) + `"`,
		"[export]",
		`output_dir = "` + filepath.ToSlash(env.outDir) + `"`,
		"pixel_ratio = 1",
		"[logging]",
		`level = "error"`,
		"",
	}, "\n")
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	record := `{
  "id": "r-1",
  "post_type": "recipe",
  "title": "Elmalı Yulaf Lapası",
  "excerpt": "Kahvaltı için pratik bir tarif",
  "ingredients": ["Yulaf", "Elma", "Tarçın"]
}`
	if err := os.WriteFile(env.recordPath, []byte(record), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatalf("expected init to refuse overwriting %s", target)
	}

	out, err = runCLI(t, "config", "validate", "--config", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "kidsgourmet")
}

func TestLayoutsAndThemesNeedNoConfig(t *testing.T) {
	out, err := runCLI(t, "layouts", "--config", filepath.Join(t.TempDir(), "missing", "x.toml"))
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}
	requireContains(t, out, "Klasik")
	requireContains(t, out, "default")

	out, err = runCLI(t, "themes")
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	requireContains(t, out, "ramazan")
}

func TestRenderWritesImageAndPersistsFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	debugPath := filepath.Join(env.outDir, "debug.json")

	out, err := runCLI(t, "render", "-c", env.configPath,
		"--in", env.recordPath,
		"--format", "post",
		"--layout", "classic",
		"--set", `watermark.position = bottom-left`,
		"--debug", debugPath,
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "Wrote layout debug")

	entries, err := os.ReadDir(env.outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	var image string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "KG-recipe-post-") && strings.HasSuffix(e.Name(), ".png") {
			image = e.Name()
		}
	}
	if image == "" {
		t.Fatalf("no rendered image in %v", entries)
	}
	data, err := os.ReadFile(filepath.Join(env.outDir, image))
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("image is not a PNG")
	}
	debug, err := os.ReadFile(debugPath)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	if !strings.Contains(string(debug), `"layout": "classic"`) {
		t.Fatalf("debug json missing layout: %s", debug)
	}

	out, err = runCLI(t, "prefs", "show", "-c", env.configPath)
	if err != nil {
		t.Fatalf("prefs show: %v", err)
	}
	requireContains(t, out, `"format": "post"`)
	requireContains(t, out, `"position": "bottom-left"`)
}

func TestRenderWarnsOnUnknownLayout(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, "render", "-c", env.configPath, "--in", env.recordPath, "--layout", "bogus", "--preview-width", "360")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, `Unknown layout "bogus", using modern`)
	requireContains(t, out, "Preview 360x640")
}

func TestRenderRejectsBadScript(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, "render", "-c", env.configPath, "--set", "watermark.position = middle"); err == nil {
		t.Fatalf("expected invalid watermark position to fail")
	}
}

func TestBatchWritesArchive(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, "batch", "-c", env.configPath, "--in", env.recordPath, "--template", "recipe-minimal-post")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "KG-recipe-batch.zip")

	zr, err := zip.OpenReader(filepath.Join(env.outDir, "KG-recipe-batch.zip"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "KG-recipe-story.png" || names[1] != "KG-recipe-post.png" {
		t.Fatalf("unexpected archive entries %v", names)
	}
}

func TestCaptionIsReproducible(t *testing.T) {
	args := []string{"caption", "--seed", "42", "--kind", "recipe", "--title", "Muzlu Pankek", "--hashtags", "6"}
	first, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	second, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if first != second {
		t.Fatalf("same seed produced different captions:\n%s\n%s", first, second)
	}
	requireContains(t, first, "Muzlu Pankek")
	if got := strings.Count(first, "#"); got < 6 {
		t.Fatalf("expected at least 6 hashtags, got %d", got)
	}
}

func TestFavoriteTemplates(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, "prefs", "favorite", "blog-quote-story", "-c", env.configPath)
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}
	requireContains(t, out, "added to favorites")

	out, err = runCLI(t, "templates", "--favorites", "-c", env.configPath)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	requireContains(t, out, "blog-quote-story")
	if strings.Contains(out, "recipe-modern-story") {
		t.Fatalf("non-favorite listed:\n%s", out)
	}

	if _, err := runCLI(t, "prefs", "favorite", "nope", "-c", env.configPath); err == nil {
		t.Fatalf("expected unknown template to fail")
	}
}

func TestPrefsSetOnlyAcceptsPersistedFields(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, "prefs", "set", `title = "x"`, "-c", env.configPath); err == nil {
		t.Fatalf("expected content-only edit to be rejected")
	}
	out, err := runCLI(t, "prefs", "set", "format = post; watermark.opacity = 0.5", "-c", env.configPath)
	if err != nil {
		t.Fatalf("prefs set: %v", err)
	}
	requireContains(t, out, "format=post")
	requireContains(t, out, "opacity=0.50")
}
