package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/sitesmith/internal/history"
)

// run parses args and executes the selected command, returning its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("sitesmith"),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
		kong.Vars{"version": "test"},
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	g := &Global{Logger: slog.Default(), Ctx: ctx, Out: &out, Err: &errOut}
	runErr := kctx.Run(g, &cli)
	return out.String(), runErr
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestInit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sitesmith.yaml")

	out, err := run(t, "-c", cfgPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")
	assert.FileExists(t, cfgPath)

	_, err = run(t, "-c", cfgPath, "init")
	require.Error(t, err)

	_, err = run(t, "-c", cfgPath, "init", "--force")
	require.NoError(t, err)
}

func TestRecipesListsBuiltins(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := run(t, "-c", cfgPath, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "check - ")
	assert.Contains(t, out, "check-tip - ")
	assert.Contains(t, out, "govulncheck ./...")
	assert.Contains(t, out, "gotip fmt ./...")
}

func TestCheckDryRun(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := run(t, "-c", cfgPath, "check", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Recipe check (7 steps)")
	assert.Contains(t, out, "go mod tidy -diff")
}

func TestCheckUnknownRecipe(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := run(t, "-c", cfgPath, "check", "nope", "--dry-run")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestCheckPropagatesExitCodeAndRecordsHistory(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	cfgPath := filepath.Join(dir, "sitesmith.yaml")
	writeFile(t, cfgPath, `
history:
  path: `+dbPath+`
recipes:
  ci:
    steps:
      - name: ok
        command: sh
        args: ["-c", "echo first"]
      - name: boom
        command: sh
        args: ["-c", "exit 3"]
      - name: never
        command: sh
        args: ["-c", "echo never"]
`)

	out, err := run(t, "-c", cfgPath, "check", "ci")
	require.Error(t, err)
	assert.Equal(t, 3, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	var coder ferrors.ExitCoder
	require.True(t, errors.As(err, &coder))
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "never")
	assert.Contains(t, out, "failed_step=boom")

	store, err := history.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)
	assert.Equal(t, "ci", runs[0].Recipe)
	assert.Equal(t, "boom", runs[0].FailedStep)

	out, err = run(t, "-c", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].RunID)
	assert.Contains(t, out, "failed")

	out, err = run(t, "-c", cfgPath, "history", runs[0].RunID)
	require.NoError(t, err)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "skipped")
}

func TestCheckEmptyRecipeSucceeds(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	cfgPath := filepath.Join(dir, "sitesmith.yaml")
	writeFile(t, cfgPath, "history:\n  path: "+dbPath+"\nrecipes:\n  noop:\n    steps: []\n")

	out, err := run(t, "-c", cfgPath, "check", "noop")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome=success")
	assert.Contains(t, out, "exit=0")
	assert.Contains(t, out, "steps=0")
}

func TestHistory(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	cfgPath := filepath.Join(dir, "sitesmith.yaml")
	writeFile(t, cfgPath, `
history:
  path: `+dbPath+`
recipes:
  lint:
    steps:
      - name: vet
        command: sh
        args: ["-c", "true"]
      - name: fmt
        command: sh
        args: ["-c", "true"]
`)

	out, err := run(t, "-c", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, err = run(t, "-c", cfgPath, "check", "lint")
	require.NoError(t, err)

	store, err := history.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)
	runID := runs[0].RunID

	out, err = run(t, "-c", cfgPath, "history", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "success")

	out, err = run(t, "-c", cfgPath, "history", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+runID)
	assert.Contains(t, out, "recipe=lint")
	assert.Contains(t, out, "trigger=manual")
	assert.Contains(t, out, "exit=0")
	assert.Regexp(t, `1\s+vet\s+success\s+0`, out)
	assert.Regexp(t, `2\s+fmt\s+success\s+0`, out)

	_, err = run(t, "-c", cfgPath, "history", "no-such-run")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestWatchBuildsAndStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	output := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(content, "templates", "index.html"), "<main>{{ content }}</main>")
	writeFile(t, filepath.Join(content, "pages", "index.md"), "+++\ntitle = \"Home\"\n+++\nWelcome")
	cfgPath := filepath.Join(dir, "missing.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := runContext(t, ctx, "-c", cfgPath, "watch",
			"--content", content, "--output", output, "--listen", "127.0.0.1:0")
		done <- err
	}()

	index := filepath.Join(output, "index.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(index)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	// Rewritten on every poll until seen, since the watch may start after the first write.
	require.Eventually(t, func() bool {
		html, err := os.ReadFile(index)
		if err == nil && bytes.Contains(html, []byte("Rebuilt")) {
			return true
		}
		_ = os.WriteFile(filepath.Join(content, "pages", "index.md"), []byte("+++\ntitle = \"Home\"\n+++\nRebuilt"), 0o600)
		return false
	}, 15*time.Second, time.Second)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestCheckNoHistory(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	cfgPath := filepath.Join(dir, "sitesmith.yaml")
	writeFile(t, cfgPath, `
history:
  path: `+dbPath+`
recipes:
  ci:
    steps:
      - command: sh
        args: ["-c", "true"]
`)

	out, err := run(t, "-c", cfgPath, "check", "ci", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome=success")
	assert.NoFileExists(t, dbPath)
}

func TestBuildGeneratesSite(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	output := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(content, "templates", "index.html"), "<nav>{{ nav }}</nav><main>{{ content }}</main>")
	writeFile(t, filepath.Join(content, "pages", "index.md"), "+++\ntitle = \"Home\"\n+++\nWelcome")
	cfgPath := filepath.Join(dir, "missing.yaml")

	out, err := run(t, "-c", cfgPath, "build", "--content", content, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "pages=1")
	assert.Contains(t, out, "Elapsed time:")

	html, err := os.ReadFile(filepath.Join(output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<p>Welcome</p>")
}

func TestScheduleRequiresTiming(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := run(t, "-c", cfgPath, "schedule")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv("SITESMITH_LOG_LEVEL", "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv("SITESMITH_LOG_LEVEL", "warn")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(true))
}
