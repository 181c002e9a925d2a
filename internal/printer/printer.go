package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"depsorder/internal/dependency"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Format represents the supported output formats for the dependency listing.
type Format string

const (
	// FormatPlain prints one "name version" line per node.
	FormatPlain Format = "plain"
	// FormatTable prints a rich table with name, version, workspace
	// membership and source path columns.
	FormatTable Format = "table"
	// FormatJSON prints the listing as a JSON array.
	FormatJSON Format = "json"
	// FormatYAML prints the listing as a YAML sequence.
	FormatYAML Format = "yaml"
)

// ValidFormats contains all valid output format values.
var ValidFormats = []Format{FormatPlain, FormatTable, FormatJSON, FormatYAML}

// ValidateFormat validates that the given format string is supported.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatPlain, FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: plain, table, json, yaml)", format)
	}
}

// listedNode is the serialization shape shared by the json, yaml and
// template renderings.
type listedNode struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Workspace bool   `json:"workspace" yaml:"workspace"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

func toListed(ordering []*dependency.Node) []listedNode {
	out := make([]listedNode, 0, len(ordering))
	for _, n := range ordering {
		out = append(out, listedNode{
			Name:      n.Name,
			Version:   n.Version,
			Workspace: n.IsWorkspaceMember,
			Path:      n.SourcePath,
		})
	}
	return out
}

// Render writes the ordering to w in the requested format. The order of the
// input is preserved exactly; rendering never re-sorts.
func Render(w io.Writer, ordering []*dependency.Node, format Format) error {
	switch format {
	case FormatPlain, "":
		return renderPlain(w, ordering)
	case FormatTable:
		return renderTable(w, ordering)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toListed(ordering))
	case FormatYAML:
		data, err := yaml.Marshal(toListed(ordering))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return ValidateFormat(string(format))
	}
}

func renderPlain(w io.Writer, ordering []*dependency.Node) error {
	for _, n := range ordering {
		var err error
		if n.Version == "" {
			_, err = fmt.Fprintln(w, n.Name)
		} else {
			_, err = fmt.Fprintf(w, "%s %s\n", n.Name, n.Version)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, ordering []*dependency.Node) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "NAME", "VERSION", "WORKSPACE", "PATH"})
	for i, n := range ordering {
		workspace := ""
		if n.IsWorkspaceMember {
			workspace = "yes"
		}
		t.AppendRow(table.Row{i + 1, n.Name, n.Version, workspace, n.SourcePath})
	}
	t.Render()
	return nil
}

// RenderTemplate writes one line per node, rendered through a Go
// text/template with the sprig function map available. The template sees
// .Name, .Version, .Workspace and .Path.
func RenderTemplate(w io.Writer, ordering []*dependency.Node, text string) error {
	tmpl, err := template.New("format").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("invalid --format template: %w", err)
	}
	for _, n := range toListed(ordering) {
		if err := tmpl.Execute(w, n); err != nil {
			return fmt.Errorf("rendering --format template for %s: %w", n.Name, err)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
