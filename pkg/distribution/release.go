package distribution

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/graalkit/pkg/platform"
)

const (
	// DefaultBaseURL is where GraalVM CE releases are published
	DefaultBaseURL = "https://github.com/oracle/graal/releases/download/"

	// DefaultVersion is the GraalVM CE release used when none is configured
	DefaultVersion = "1.0.0-rc6"

	productName = "graalvm-ce"
)

// Release identifies one downloadable GraalVM CE archive
type Release struct {
	BaseURL  string
	Version  string
	Platform platform.Key
}

// Validate checks that every field needed to render names is set
func (r Release) Validate() error {
	if r.BaseURL == "" {
		return errors.New("download base URL is required")
	}
	if r.Version == "" {
		return errors.New("toolkit version is required")
	}
	if r.Platform.OS == "" || r.Platform.Arch == "" {
		return errors.New("platform is required")
	}
	return nil
}

// ArchiveURL returns <base>/vm-<version>/graalvm-ce-<version>-<os>-<arch>.tar.gz
func (r Release) ArchiveURL() string {
	return fmt.Sprintf("%s/vm-%s/%s-%s-%s-%s.tar.gz",
		strings.TrimRight(r.BaseURL, "/"),
		r.Version,
		productName,
		r.Version,
		r.Platform.OS,
		r.Platform.Arch,
	)
}

// ArchiveFileName returns the name the archive is cached under
func (r Release) ArchiveFileName() string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", productName, r.Version, r.Platform.Arch)
}

// ToolkitDirName returns the top-level directory packed in the archive
func (r Release) ToolkitDirName() string {
	return productName + "-" + r.Version
}

// String returns a short human-readable identifier
func (r Release) String() string {
	return fmt.Sprintf("%s %s (%s)", productName, r.Version, r.Platform)
}
