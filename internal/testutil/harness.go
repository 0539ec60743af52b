// Package testutil holds the shared harness for tests that drive the whole
// application: temporary declaration trees, a thread-safe log buffer and
// helpers for compiling inline HCL.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/app"
	"github.com/vk/typestate/internal/config"
	hclload "github.com/vk/typestate/internal/hcl"
	yamlload "github.com/vk/typestate/internal/yaml"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an application run.
type HarnessResult struct {
	Dir       string
	Output    string
	LogOutput string
	Err       error
}

// WriteFiles writes files, keyed by slash-separated relative path, under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// NewLoader returns the loader the CLI uses: HCL first, then YAML.
func NewLoader() config.Loader {
	return config.NewMultiLoader(hclload.NewLoader(), yamlload.NewLoader())
}

// RunApp writes files into a fresh temporary directory and runs the app with
// cfg. Relative paths in cfg.Paths and cfg.OutDir are resolved against that
// directory; an empty cfg.Paths means the whole directory.
func RunApp(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, cfg)
}

// RunAppWithContext is RunApp with a caller-provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, files)

	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{dir}
	}
	for i, p := range cfg.Paths {
		if !filepath.IsAbs(p) {
			cfg.Paths[i] = filepath.Join(dir, p)
		}
	}
	if cfg.OutDir != "" && !filepath.IsAbs(cfg.OutDir) {
		cfg.OutDir = filepath.Join(dir, cfg.OutDir)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	runErr := app.NewApp(out, logs, appConfig, NewLoader()).Run(ctx)

	if os.Getenv("TYPESTATE_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}

	return &HarnessResult{
		Dir:       dir,
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
	}
}

// ReadFile reads a file relative to the harness directory.
func (r *HarnessResult) ReadFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}
