package platform

import (
	"fmt"
	"runtime"
)

// Operating system tags used in GraalVM CE release names
const (
	OSMacOS = "macos"
	OSLinux = "linux"
)

// Architecture tags used in GraalVM CE release names
const (
	ArchAMD64 = "amd64"
)

// Key identifies the host a toolkit is downloaded for
type Key struct {
	OS   string
	Arch string
}

// String returns the key as "<os>-<arch>"
func (k Key) String() string {
	return k.OS + "-" + k.Arch
}

// IsMacOS reports whether the key targets macOS
func (k Key) IsMacOS() bool {
	return k.OS == OSMacOS
}

// ResolveOperatingSystem maps a GOOS value to its release tag
func ResolveOperatingSystem(goos string) (string, error) {
	switch goos {
	case "darwin":
		return OSMacOS, nil
	case "linux":
		return OSLinux, nil
	default:
		return "", fmt.Errorf("%w: no GraalVM support for operating system %s", ErrUnsupportedPlatform, goos)
	}
}

// ResolveArchitecture maps a GOARCH value to its release tag
func ResolveArchitecture(goarch string) (string, error) {
	switch goarch {
	case "amd64":
		return ArchAMD64, nil
	default:
		return "", fmt.Errorf("%w: no GraalVM support for architecture %s", ErrUnsupportedPlatform, goarch)
	}
}

// Resolve maps a GOOS/GOARCH pair to a Key
func Resolve(goos, goarch string) (Key, error) {
	os, err := ResolveOperatingSystem(goos)
	if err != nil {
		return Key{}, err
	}
	arch, err := ResolveArchitecture(goarch)
	if err != nil {
		return Key{}, err
	}
	return Key{OS: os, Arch: arch}, nil
}

// Host resolves the Key of the running process
func Host() (Key, error) {
	return Resolve(runtime.GOOS, runtime.GOARCH)
}
