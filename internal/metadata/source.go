package metadata

import "context"

// Ref names another package record by its (name, version) identity.
type Ref struct {
	Name    string
	Version string
}

// Record is one package as reported by the host build tool: its identity,
// where it lives on disk (may be empty for modules outside the module cache),
// whether it belongs to the local workspace, and the identities of its direct
// dependencies.
type Record struct {
	Name              string
	Version           string
	Dir               string
	IsWorkspaceMember bool
	DependsOn         []Ref
}

// Source abstracts the build tool's package-metadata facility. Snapshot
// returns a self-consistent flat listing taken at a single point in time; the
// core never parses manifests itself.
type Source interface {
	Snapshot(ctx context.Context) ([]Record, error)
}

// Static is a Source backed by a fixed record slice. It exists for tests and
// for replaying a previously captured listing.
type Static struct {
	Records []Record
}

// Snapshot returns the fixed records. The context is ignored; a static
// snapshot cannot block.
func (s *Static) Snapshot(context.Context) ([]Record, error) {
	return s.Records, nil
}
