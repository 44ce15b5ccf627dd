package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Triple identifies a target platform as "<arch>-<os>", e.g. "x86_64-linux".
type Triple struct {
	Arch string
	OS   string
}

// String returns the canonical "<arch>-<os>" form.
func (t Triple) String() string {
	return t.Arch + "-" + t.OS
}

var knownArch = map[string]bool{
	"x86_64":  true,
	"aarch64": true,
	"i686":    true,
	"armv7l":  true,
}

var knownOS = map[string]bool{
	"linux":  true,
	"darwin": true,
}

// Parse parses a platform triple string like "x86_64-linux".
func Parse(s string) (Triple, error) {
	arch, osName, ok := strings.Cut(s, "-")
	if !ok || arch == "" || osName == "" {
		return Triple{}, fmt.Errorf("invalid platform %q: expected <arch>-<os>", s)
	}
	if !knownArch[arch] {
		return Triple{}, fmt.Errorf("invalid platform %q: unknown architecture %q", s, arch)
	}
	if !knownOS[osName] {
		return Triple{}, fmt.Errorf("invalid platform %q: unknown OS %q", s, osName)
	}
	return Triple{Arch: arch, OS: osName}, nil
}

// goarchToArch maps Go architecture names to triple architecture names.
var goarchToArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "i686",
	"arm":   "armv7l",
}

// Current returns the triple for the running host.
func Current() (Triple, error) {
	arch, ok := goarchToArch[runtime.GOARCH]
	if !ok {
		return Triple{}, fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}
	if !knownOS[runtime.GOOS] {
		return Triple{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return Triple{Arch: arch, OS: runtime.GOOS}, nil
}
