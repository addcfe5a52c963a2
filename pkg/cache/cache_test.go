package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_VersionDir(t *testing.T) {
	t.Run("created on demand", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "cache")
		entry := New(root, nil).Entry("1.0.0-rc6")

		assert.NoDirExists(t, entry.Dir())
		dir, err := entry.VersionDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "1.0.0-rc6"), dir)
		assert.DirExists(t, dir)

		// Second call reuses the existing directory
		again, err := entry.VersionDir()
		require.NoError(t, err)
		assert.Equal(t, dir, again)
	})

	t.Run("root is a file", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "cache")
		require.NoError(t, os.WriteFile(root, []byte("x"), 0644))

		_, err := New(root, nil).Entry("1.0.0-rc6").VersionDir()
		require.ErrorIs(t, err, ErrCacheDirectoryUnavailable)
		assert.Contains(t, err.Error(), root)
	})
}

func TestEntry_Exists(t *testing.T) {
	entry := New(t.TempDir(), nil).Entry("v1")
	assert.False(t, entry.Exists("archive.tar.gz"))

	dir, err := entry.VersionDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive.tar.gz"), nil, 0644))
	assert.True(t, entry.Exists("archive.tar.gz"))
	assert.Equal(t, filepath.Join(dir, "archive.tar.gz"), entry.Path("archive.tar.gz"))
}

func TestEntry_Materialize(t *testing.T) {
	ctx := context.Background()

	t.Run("runs once when missing", func(t *testing.T) {
		entry := New(t.TempDir(), nil).Entry("v1")
		var calls int32

		produce := func(ctx context.Context, dst string) error {
			atomic.AddInt32(&calls, 1)
			return os.WriteFile(dst, []byte("data"), 0644)
		}

		path, err := entry.Materialize(ctx, "file", produce)
		require.NoError(t, err)
		assert.FileExists(t, path)

		_, err = entry.Materialize(ctx, "file", produce)
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("concurrent callers share one run", func(t *testing.T) {
		entry := New(t.TempDir(), nil).Entry("v1")
		var calls int32

		produce := func(ctx context.Context, dst string) error {
			atomic.AddInt32(&calls, 1)
			time.Sleep(20 * time.Millisecond)
			return os.WriteFile(dst, []byte("data"), 0644)
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := entry.Materialize(ctx, "file", produce)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("error propagates and leaves nothing", func(t *testing.T) {
		entry := New(t.TempDir(), nil).Entry("v1")
		boom := errors.New("boom")

		_, err := entry.Materialize(ctx, "file", func(ctx context.Context, dst string) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.False(t, entry.Exists("file"))
	})
}

func TestEntry_Lock(t *testing.T) {
	entry := New(t.TempDir(), nil).Entry("v1")

	unlock, err := entry.Lock(context.Background(), "file")
	require.NoError(t, err)

	t.Run("contended lock honors context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		_, err := entry.Lock(ctx, "file")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("other names are independent", func(t *testing.T) {
		other, err := entry.Lock(context.Background(), "other")
		require.NoError(t, err)
		require.NoError(t, other())
	})

	require.NoError(t, unlock())

	again, err := entry.Lock(context.Background(), "file")
	require.NoError(t, err)
	require.NoError(t, again())
}

func TestDefaultRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	root, err := DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".graalkit"), root)
	dir, err := New(root, nil).Entry("1.0.0-rc6").VersionDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".graalkit", "1.0.0-rc6"), dir)
}
