// Package metadata supplies the package listing the dependency graph is
// built from.
//
// The Source interface is the boundary to the host build tool: Snapshot
// returns a flat, self-consistent collection of Records (identity, directory,
// workspace membership, direct dependency identities) taken at one point in
// time. GoToolchain is the production implementation backed by the Go
// toolchain; Static backs the same interface with a fixed slice for tests.
package metadata
