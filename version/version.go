package version

import (
	"runtime/debug"
	"strings"
)

const modulePath = "github.com/kbukum/anyhttp"

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
)

// Info describes the running library build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
}

// GetVersionInfo returns the ldflags values, falling back to the module
// version recorded in the binary's build info.
func GetVersionInfo() *Info {
	info := &Info{Version: Version, GitCommit: GitCommit}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "dev" {
			for _, dep := range bi.Deps {
				if dep.Path == modulePath && dep.Version != "" && dep.Version != "(devel)" {
					info.Version = strings.TrimPrefix(dep.Version, "v")
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	info.IsRelease = info.Version != "dev" && !strings.Contains(info.Version, "dirty")
	return info
}

// UserAgent returns the default User-Agent header value, e.g. "anyhttp/1.2.0".
func UserAgent() string {
	return "anyhttp/" + GetVersionInfo().Version
}
