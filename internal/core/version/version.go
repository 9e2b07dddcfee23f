// Package version reports what build is running
package version

import "runtime/debug"

// BuildInfo identifies a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// set with -ldflags "-X potluck/internal/core/version.version=v1.2.0" and friends
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// readBuild is swapped in tests
var readBuild = debug.ReadBuildInfo

// Info is the linker stamped version, falling back to the vcs settings go
// build embeds when the binary was not stamped
func Info() BuildInfo {
	bi := BuildInfo{Service: "potluck", Version: version, Commit: commit, Date: date}
	info, ok := readBuild()
	if !ok {
		return bi
	}
	bi.Go = info.GoVersion
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && bi.Commit == "":
			bi.Commit = s.Value
		case s.Key == "vcs.time" && bi.Date == "":
			bi.Date = s.Value
		}
	}
	return bi
}
