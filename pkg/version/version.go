package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version can be overridden at build time with -ldflags "-X ...version.Version=v1.2.3"
var Version = "dev"

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildTime string `json:"buildTime"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns version information, filled from the embedded build info when available
func Get() Info {
	info, _ := debug.ReadBuildInfo()
	return FromBuildInfo(info)
}

// FromBuildInfo extracts module version and VCS stamps from bi, which may be nil
func FromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		Revision:  "unknown",
		BuildTime: "unknown",
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi == nil {
		return info
	}
	if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.BuildTime = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String returns a human-readable version string
func (i Info) String() string {
	rev := i.Revision
	if i.Modified {
		rev += " (modified)"
	}
	return fmt.Sprintf("dartfix version %s\nRevision: %s\nBuild time: %s\nGo version: %s\nPlatform: %s",
		i.Version, rev, i.BuildTime, i.GoVersion, i.Platform)
}
