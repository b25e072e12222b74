// Package settings provides build metadata, per-invocation options, and
// context helpers shared by the tblx CLI and its packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tblx"

// DefaultStoreURI is where column preferences live when nothing else is
// configured.
const DefaultStoreURI = "file://~/.config/tblx/prefs"

// DefaultPageSize is the interactive page size. Zero disables paging.
const DefaultPageSize = 25

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the resolved options for a single execution. Flags win over the
// config file, which wins over the defaults set by NewCliParams.
type Run struct {
	MinLogLevel int8
	StoreURI    string
	StorageKey  string
	PageSize    int
	LogFile     string
	Interactive bool
	NoColor     bool
}

// NewCliParams returns the defaults used by the command line entry point.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		StoreURI:    DefaultStoreURI,
		PageSize:    DefaultPageSize,
	}
}

// Persistent reports whether preferences should be written anywhere.
func (r *Run) Persistent() bool {
	return r != nil && r.StorageKey != "" && r.StoreURI != ""
}
