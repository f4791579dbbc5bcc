// Package version хранит сведения о сборке paysheet.
package version

import (
	"fmt"
	"runtime/debug"
)

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/paysheet/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build - сведения о сборке, которые отдаются в /healthz и на индексной странице.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current возвращает сведения о сборке. Если commit не передан через ldflags,
// берётся vcs.revision из debug.ReadBuildInfo.
func Current() Build {
	b := Build{Version: version, Commit: commit, Date: date}
	if b.Commit != "unknown" {
		return b
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) > 12 {
				b.Commit = setting.Value[:12]
			} else if setting.Value != "" {
				b.Commit = setting.Value
			}
		case "vcs.time":
			if b.Date == "unknown" && setting.Value != "" {
				b.Date = setting.Value
			}
		}
	}
	return b
}

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) {
	b := Current()
	return b.Version, b.Commit, b.Date
}

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

func String() string {
	b := Current()
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}
