package runner

import (
	"testing"

	"depsorder/internal/dependency"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	node := &dependency.Node{
		Identity:   dependency.Identity{Name: "core", Version: "1.2.0"},
		SourcePath: "/src/core",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "name and version placeholders",
			template: "echo {} v{version}",
			want:     "echo core v1.2.0",
		},
		{
			name:     "path placeholder",
			template: "make -C {path} install",
			want:     "make -C /src/core install",
		},
		{
			name:     "every occurrence is replaced",
			template: "{} {} {version} {version}",
			want:     "core core 1.2.0 1.2.0",
		},
		{
			name:     "no placeholders",
			template: "true",
			want:     "true",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.template, node))
		})
	}
}
