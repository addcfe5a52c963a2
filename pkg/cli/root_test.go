package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/graalkit/pkg/extract/extracttest"
	"github.com/platinummonkey/graalkit/pkg/platform"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	// Test basic properties
	assert.Equal(t, "graalkit", root.Name)
	assert.NotNil(t, root.Subcommands)
	assert.NotNil(t, root.Flags)

	// Test that all expected subcommands are registered
	expectedCommands := []string{
		"download",
		"extract",
		"native-image",
		"plan",
		"version",
	}

	for _, cmdName := range expectedCommands {
		assert.Contains(t, root.Subcommands, cmdName, "Expected subcommand %s to be registered", cmdName)
	}
	assert.Equal(t, len(expectedCommands), len(root.Subcommands))
}

func TestCommandUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)

	require.NoError(t, root.ExecuteArgs(context.Background(), nil))

	output := stderr.String()
	assert.Contains(t, output, "Usage: graalkit <command> [args]")
	assert.Contains(t, output, "Commands:")
	assert.Less(t, strings.Index(output, "download"), strings.Index(output, "version"), "commands are sorted")
}

func TestCommandExecute_UnknownCommand(t *testing.T) {
	root := newRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
	err := root.ExecuteArgs(context.Background(), []string{"publish"})
	assert.EqualError(t, err, "unknown command: publish")
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	root := newRootCommand(&stdout, &bytes.Buffer{})

	require.NoError(t, root.ExecuteArgs(context.Background(), []string{"version"}))
	assert.Equal(t, "graalkit dev\n", stdout.String())
}

// hostServer serves a toolkit archive for any path and counts requests
func hostServer(t *testing.T, version string) (*httptest.Server, *int32) {
	t.Helper()
	key, err := platform.Host()
	if err != nil {
		t.Skipf("host platform unsupported: %v", err)
	}
	if key.IsMacOS() {
		t.Skip("fake toolkit uses the linux layout")
	}

	archive, err := extracttest.ToolkitArchive(version, extracttest.FakeNativeImage)
	require.NoError(t, err)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write(archive)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	cacheDir := t.TempDir()
	t.Setenv("GRAALKIT_CONFIG", "")
	t.Setenv("GRAALKIT_CACHE_DIR", cacheDir)
	t.Setenv("GRAALKIT_LOG_LEVEL", "error")
	t.Setenv("GRAALKIT_MAIN_CLASS", "")
	t.Setenv("GRAALKIT_CLASSPATH", "")
	return cacheDir
}

func TestDownloadAndPlanCommands(t *testing.T) {
	ctx := context.Background()
	cacheDir := isolateEnv(t)
	server, calls := hostServer(t, "1.0.0-rc6")
	baseURL := server.URL + "/"

	var stdout bytes.Buffer
	root := newRootCommand(&stdout, &bytes.Buffer{})

	require.NoError(t, root.ExecuteArgs(ctx, []string{"plan", "--base-url", baseURL}))
	assert.Contains(t, stdout.String(), "downloadGraalTooling")
	assert.Regexp(t, `downloadGraalTooling\s+run`, stdout.String())
	assert.NotContains(t, stdout.String(), "nativeImage")
	assert.Zero(t, atomic.LoadInt32(calls), "plan must not fetch")

	stdout.Reset()
	require.NoError(t, root.ExecuteArgs(ctx, []string{"download", "--base-url", baseURL}))
	archive := strings.TrimSpace(stdout.String())
	assert.True(t, strings.HasPrefix(archive, filepath.Join(cacheDir, "1.0.0-rc6")))
	assert.FileExists(t, archive)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))

	stdout.Reset()
	require.NoError(t, root.ExecuteArgs(ctx, []string{"extract", "--base-url", baseURL}))
	assert.DirExists(t, strings.TrimSpace(stdout.String()))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls), "cached archive is reused")

	stdout.Reset()
	require.NoError(t, root.ExecuteArgs(ctx, []string{"plan", "--base-url", baseURL}))
	assert.Regexp(t, `downloadGraalTooling\s+skip`, stdout.String())
	assert.Regexp(t, `extractGraalTooling\s+skip`, stdout.String())
}

func TestNativeImageCommand(t *testing.T) {
	ctx := context.Background()
	isolateEnv(t)
	server, calls := hostServer(t, "1.0.0-rc6")

	project := t.TempDir()
	jar := filepath.Join(project, "app.jar")
	require.NoError(t, os.WriteFile(jar, []byte("jar"), 0644))
	outDir := filepath.Join(project, "build", "graal")

	var stdout bytes.Buffer
	root := newRootCommand(&stdout, &bytes.Buffer{})

	err := root.ExecuteArgs(ctx, []string{"native-image", "--base-url", server.URL + "/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main class is required")
	assert.Zero(t, atomic.LoadInt32(calls))

	require.NoError(t, root.ExecuteArgs(ctx, []string{
		"native-image",
		"--base-url", server.URL + "/",
		"--main-class", "com.example.Main",
		"--classpath", jar,
		"--output-dir", outDir,
		"--project-dir", project,
	}))
	assert.Contains(t, stdout.String(), filepath.Join(outDir, filepath.Base(project)))
	assert.FileExists(t, filepath.Join(outDir, filepath.Base(project)))
}

func TestNativeImageCommand_StageFailure(t *testing.T) {
	ctx := context.Background()
	isolateEnv(t)
	hostServer(t, "1.0.0-rc6")

	failing := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(failing.Close)

	project := t.TempDir()
	root := newRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
	err := root.ExecuteArgs(ctx, []string{
		"native-image",
		"--base-url", failing.URL + "/",
		"--main-class", "Main",
		"--classpath", filepath.Join(project, "app.jar"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage downloadGraalTooling failed")
}

func TestWatchClasspath(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "app.jar")
	require.NoError(t, os.WriteFile(jar, []byte("v1"), 0644))
	classes := filepath.Join(dir, "classes")
	require.NoError(t, os.Mkdir(classes, 0755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilds := make(chan struct{}, 10)
	done := make(chan error, 1)
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	go func() {
		done <- watchClasspath(ctx, []string{jar, classes}, 50*time.Millisecond, log, func(context.Context) error {
			rebuilds <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// Unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	select {
	case <-rebuilds:
		t.Fatal("rebuild triggered by unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(jar, []byte("v2"), 0644))
	select {
	case <-rebuilds:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after jar change")
	}

	require.NoError(t, os.WriteFile(filepath.Join(classes, "Main.class"), []byte("x"), 0644))
	select {
	case <-rebuilds:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after class directory change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
