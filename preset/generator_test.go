package preset

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAnalyzer installs a shell script posing as the analyzer.
func writeAnalyzer(t *testing.T, dir, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script analyzer needs a POSIX shell")
	}

	path := filepath.Join(dir, AnalyzerName())
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))

	return path
}

const writeLastArg = `for last; do :; done
printf '{"Gain0": 0.75, "Args": %s}' "$#" > "$last"
`

func newTestGenerator(t *testing.T, body string) (*Generator, string, *test.Hook) {
	t.Helper()

	dir := t.TempDir()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	audio := filepath.Join(dir, "drums.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o644))

	return &Generator{
		Executable: writeAnalyzer(t, dir, body),
		OutputDir:  filepath.Join(dir, "presets"),
		Timeout:    10 * time.Second,
		Logger:     logger,
	}, audio, hook
}

func TestGenerateWithName(t *testing.T) {
	g, audio, hook := newTestGenerator(t, writeLastArg)

	path, err := g.Generate(context.Background(), audio, "Punchy")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.OutputDir, "Punchy_preset.json"), path)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.75, p.Values["Gain0"])
	assert.Equal(t, 3.0, p.Values["Args"])
	assert.NotEmpty(t, hook.AllEntries())
}

func TestGenerateWithoutName(t *testing.T) {
	g, audio, _ := newTestGenerator(t, writeLastArg)

	path, err := g.Generate(context.Background(), audio, "")
	require.NoError(t, err)
	assert.Equal(t, "drums_preset.json", filepath.Base(path))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.Values["Args"])
}

func TestGenerateFailures(t *testing.T) {
	t.Run("exit code", func(t *testing.T) {
		g, audio, _ := newTestGenerator(t, "echo broken >&2\nexit 3\n")
		_, err := g.Generate(context.Background(), audio, "x")
		require.ErrorIs(t, err, ErrGeneratorFailed)
		assert.True(t, IsGeneratorError(err))
	})

	t.Run("no output", func(t *testing.T) {
		g, audio, _ := newTestGenerator(t, "exit 0\n")
		_, err := g.Generate(context.Background(), audio, "x")
		require.ErrorIs(t, err, ErrPresetNotCreated)
	})

	t.Run("stale output", func(t *testing.T) {
		g, audio, _ := newTestGenerator(t, "exit 0\n")
		out := g.OutputPath(audio, "x")
		require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
		require.NoError(t, os.WriteFile(out, []byte(`{"Gain0": 0.1}`), 0o644))

		_, err := g.Generate(context.Background(), audio, "x")
		require.ErrorIs(t, err, ErrPresetNotCreated)
		assert.NoFileExists(t, out)
	})

	t.Run("stale output next to analyzer", func(t *testing.T) {
		g, audio, _ := newTestGenerator(t, "exit 0\n")
		old := filepath.Join(filepath.Dir(g.Executable), "x_preset.json")
		require.NoError(t, os.WriteFile(old, []byte(`{"Gain0": 0.1}`), 0o644))
		hourAgo := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(old, hourAgo, hourAgo))

		_, err := g.Generate(context.Background(), audio, "x")
		require.ErrorIs(t, err, ErrPresetNotCreated)
	})

	t.Run("timeout", func(t *testing.T) {
		g, audio, _ := newTestGenerator(t, "exec sleep 5\n")
		g.Timeout = 100 * time.Millisecond

		start := time.Now()
		_, err := g.Generate(context.Background(), audio, "x")
		require.ErrorIs(t, err, ErrGeneratorFailed)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("missing analyzer", func(t *testing.T) {
		g, audio, _ := newTestGenerator(t, writeLastArg)
		g.Executable = filepath.Join(t.TempDir(), "nope")
		_, err := g.Generate(context.Background(), audio, "x")
		require.ErrorIs(t, err, ErrAnalyzerNotFound)
		assert.False(t, IsGeneratorError(err))
	})

	t.Run("missing audio", func(t *testing.T) {
		g, _, _ := newTestGenerator(t, writeLastArg)
		_, err := g.Generate(context.Background(), "/does/not/exist.wav", "x")
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLocateAnalyzer(t *testing.T) {
	empty := t.TempDir()
	dir := t.TempDir()
	want := writeAnalyzer(t, dir, "exit 0\n")

	got, err := LocateAnalyzer(empty, dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = LocateAnalyzer(empty)
	require.ErrorIs(t, err, ErrAnalyzerNotFound)
}
