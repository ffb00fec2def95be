// Package buildinfo carries the version stamped into the wfrender binary.
//
// Set at link time:
//
//	go build -ldflags "-X github.com/wfstudio/wfrender/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/wfstudio/wfrender/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/wfstudio/wfrender/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/wfrender
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String returns the multi-line form printed by "wfrender version".
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// ServerHeader is the value the preview server sends in its Server header.
func ServerHeader() string {
	return "wfrender/" + Version
}
