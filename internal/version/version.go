// Package version provides build version information for qmcchain.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Set by -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the version information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return i.Version
}

// Full returns the version with commit, build date and toolchain.
func (i Info) Full() string {
	return fmt.Sprintf("%s (%s) built %s with %s for %s", i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// Semver parses Version. Development builds report ok=false.
func (i Info) Semver() (*semver.Version, bool) {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Prerelease returns the prerelease tag of a release build, if any.
func (i Info) Prerelease() (string, bool) {
	v, ok := i.Semver()
	if !ok || v.Prerelease() == "" {
		return "", false
	}
	return v.Prerelease(), true
}
