package buildinfo

import (
	"runtime/debug"

	"framekit/internal/logx"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

var readBuildInfo = debug.ReadBuildInfo

// Short returns a compact build identifier for UI/logging. Without ldflags it
// falls back to the module version recorded by `go install`.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}

// String returns "version (commit, date)".
func String() string {
	return Short() + " (" + Commit + ", " + Date + ")"
}

// Fields returns the build identity as log fields.
func Fields() []logx.Field {
	return []logx.Field{
		logx.String("version", Short()),
		logx.String("commit", Commit),
		logx.String("built", Date),
	}
}
