package metadata

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"depsorder/pkg/logging"

	"github.com/briandowns/spinner"
	"golang.org/x/sync/errgroup"
)

// devVersion is the normalized version string for workspace modules, whose
// version the toolchain reports as empty.
const devVersion = "(devel)"

// GoToolchain is the production Source. It shells out to the Go toolchain for
// the module build list (go list -m -json all) and the requirement edges
// (go mod graph) and joins the two into a self-consistent record set.
//
// The toolchain is treated as an opaque collaborator: depsorder never reads
// go.mod or go.sum itself.
type GoToolchain struct {
	// Dir is the directory the toolchain is invoked in. Empty means the
	// current working directory.
	Dir string
	// GoBin overrides the go binary. Empty means "go" from PATH.
	GoBin string
	// Quiet suppresses the progress spinner. Used by tests and watch mode.
	Quiet bool
}

// goModule mirrors the subset of `go list -m -json` output we consume.
type goModule struct {
	Path     string
	Version  string
	Main     bool
	Dir      string
	Replace  *goModule
	Indirect bool
}

// Snapshot queries the toolchain and returns the package records. The two
// toolchain invocations are independent and run concurrently; everything
// downstream of this call is strictly sequential.
func (t *GoToolchain) Snapshot(ctx context.Context) ([]Record, error) {
	if !t.Quiet {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Resolving module graph..."
		s.Start()
		defer s.Stop()
	}

	var listOut, graphOut []byte
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		listOut, err = t.run(egCtx, "list", "-m", "-json", "all")
		return err
	})
	eg.Go(func() error {
		var err error
		graphOut, err = t.run(egCtx, "mod", "graph")
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	modules, err := parseModuleList(bytes.NewReader(listOut))
	if err != nil {
		return nil, fmt.Errorf("parsing go list output: %w", err)
	}
	edges, err := parseModGraph(bytes.NewReader(graphOut))
	if err != nil {
		return nil, fmt.Errorf("parsing go mod graph output: %w", err)
	}

	records := join(modules, edges)
	logging.Debug("Metadata", "snapshot: %d modules, %d requirement edges", len(records), len(edges))
	return records, nil
}

// run executes a single go subcommand and returns its stdout. Stderr is
// folded into the error so toolchain diagnostics reach the user.
func (t *GoToolchain) run(ctx context.Context, args ...string) ([]byte, error) {
	bin := t.GoBin
	if bin == "" {
		bin = "go"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = t.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("go %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("go %s: %w", strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// parseModuleList decodes the concatenated JSON objects emitted by
// `go list -m -json all`.
func parseModuleList(r io.Reader) ([]goModule, error) {
	var modules []goModule
	dec := json.NewDecoder(r)
	for {
		var m goModule
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// graphEdge is one "dependent dependency" line of `go mod graph`, with each
// vertex already split into path and version. Main-module vertices carry no
// @version suffix; their version is left empty here and normalized in join.
type graphEdge struct {
	fromPath, fromVersion string
	toPath, toVersion     string
}

func splitVertex(v string) (path, version string) {
	if i := strings.LastIndex(v, "@"); i >= 0 {
		return v[:i], v[i+1:]
	}
	return v, ""
}

func parseModGraph(r io.Reader) ([]graphEdge, error) {
	var edges []graphEdge
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed graph line %q", line)
		}
		var e graphEdge
		e.fromPath, e.fromVersion = splitVertex(fields[0])
		e.toPath, e.toVersion = splitVertex(fields[1])
		edges = append(edges, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

// join combines the build list and the requirement edges into Records.
//
// `go mod graph` reports requirements as written in go.mod files, which may
// name versions older than the ones minimal version selection actually
// picked, and may include modules pruned from the build entirely. To keep the
// snapshot self-consistent, edge targets are remapped by path to the selected
// version, and edges whose source is not a selected module (or whose target
// path is absent from the build list) are dropped. The graph builder then
// enforces the dangling-reference contract on the result.
func join(modules []goModule, edges []graphEdge) []Record {
	selected := make(map[string]string, len(modules)) // path -> selected version
	records := make([]Record, 0, len(modules))
	index := make(map[string]int, len(modules)) // path -> records index

	for _, m := range modules {
		version := m.Version
		if version == "" {
			version = devVersion
		}
		dir := m.Dir
		if m.Replace != nil && m.Replace.Dir != "" {
			dir = m.Replace.Dir
		}
		if _, dup := selected[m.Path]; dup {
			continue
		}
		selected[m.Path] = version
		index[m.Path] = len(records)
		records = append(records, Record{
			Name:              m.Path,
			Version:           version,
			Dir:               dir,
			IsWorkspaceMember: m.Main,
		})
	}

	seen := make(map[string]map[Ref]struct{}, len(records))
	for _, e := range edges {
		fromVersion := e.fromVersion
		if fromVersion == "" {
			fromVersion = devVersion
		}
		if selected[e.fromPath] != fromVersion {
			continue // edge from a non-selected module version
		}
		toVersion, ok := selected[e.toPath]
		if !ok {
			continue // target pruned from the build list
		}
		if e.toPath == e.fromPath {
			continue
		}
		ref := Ref{Name: e.toPath, Version: toVersion}
		if seen[e.fromPath] == nil {
			seen[e.fromPath] = make(map[Ref]struct{})
		}
		if _, dup := seen[e.fromPath][ref]; dup {
			continue
		}
		seen[e.fromPath][ref] = struct{}{}
		i := index[e.fromPath]
		records[i].DependsOn = append(records[i].DependsOn, ref)
	}

	return records
}
