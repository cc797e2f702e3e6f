package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlatform is returned when a host or platform name does not map
// to one of the supported platform families.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Platform identifies the operating system family the scanner is installed on.
// The zero value is not a valid platform.
type Platform int

// Supported platform families
const (
	PlatformLinux Platform = iota + 1
	PlatformMacOS
	PlatformWindows
)

// Platforms lists every supported platform in a stable order
func Platforms() []Platform {
	return []Platform{PlatformLinux, PlatformMacOS, PlatformWindows}
}

// String returns the canonical lower-case platform name
func (p Platform) String() string {
	switch p {
	case PlatformLinux:
		return "linux"
	case PlatformMacOS:
		return "macos"
	case PlatformWindows:
		return "windows"
	default:
		return fmt.Sprintf("platform(%d)", int(p))
	}
}

// Valid reports whether p is one of the supported platforms
func (p Platform) Valid() bool {
	switch p {
	case PlatformLinux, PlatformMacOS, PlatformWindows:
		return true
	default:
		return false
	}
}

// Separator returns the path separator used for filesystem paths on the platform
func (p Platform) Separator() string {
	if p == PlatformWindows {
		return `\`
	}
	return "/"
}

// DetectPlatform maps a Go GOOS value to a platform family
func DetectPlatform(goos string) (Platform, error) {
	switch goos {
	case "linux":
		return PlatformLinux, nil
	case "darwin":
		return PlatformMacOS, nil
	case "windows":
		return PlatformWindows, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// ParsePlatform parses a user supplied platform name (e.g. from --platform)
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linux", "ubuntu":
		return PlatformLinux, nil
	case "macos", "darwin", "macosx", "osx":
		return PlatformMacOS, nil
	case "windows", "win":
		return PlatformWindows, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
	}
}
