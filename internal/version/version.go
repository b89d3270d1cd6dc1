// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X chatbar/internal/version.Version=v0.2.0 -X chatbar/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import "fmt"

var (
	Version = "dev"
	Commit  = ""
	// Date is the build timestamp in RFC3339.
	Date = ""
)

// String is the one-line form: "dev", "v0.2.0+abc123" or "v0.2.0+abc123 (2024-05-01T10:00:00Z)".
func String() string {
	s := Version
	if Commit != "" {
		s += "+" + Commit
	}
	if Date != "" {
		s += " (" + Date + ")"
	}
	return s
}

// Template is the multi-line text printed by the version command.
func Template(name string) string {
	if Commit == "" {
		return fmt.Sprintf("%s %s\n", name, Version)
	}
	built := Date
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s %s\n  commit: %s\n  built:  %s\n", name, Version, Commit, built)
}
