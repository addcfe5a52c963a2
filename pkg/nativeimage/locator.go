package nativeimage

import (
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/graalkit/pkg/platform"
)

const (
	defaultLocatorSize = 16
	defaultLocatorTTL  = 10 * time.Minute
)

// Locator finds the compiler inside extracted toolkits and remembers verified paths
type Locator struct {
	platform platform.Key
	paths    *lru.LRU[string, string]
}

// NewLocator creates a locator for toolkits built for p. A zero ttl uses the default.
func NewLocator(p platform.Key, ttl time.Duration) *Locator {
	if ttl <= 0 {
		ttl = defaultLocatorTTL
	}
	return &Locator{
		platform: p,
		paths:    lru.NewLRU[string, string](defaultLocatorSize, nil, ttl),
	}
}

// Locate returns the compiler executable inside toolkitDir
func (l *Locator) Locate(toolkitDir string) (string, error) {
	if path, ok := l.paths.Get(toolkitDir); ok {
		// The toolkit may have been removed by a manual cache cleanup
		if isExecutable(path) {
			return path, nil
		}
		l.paths.Remove(toolkitDir)
	}

	path := ExecutablePath(toolkitDir, l.platform)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCompilerNotFound, path, err)
	}
	if !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
		return "", fmt.Errorf("%w: %s is not an executable file", ErrCompilerNotFound, path)
	}

	l.paths.Add(toolkitDir, path)
	return path, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}
