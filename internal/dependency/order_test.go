package dependency

import (
	"testing"

	"depsorder/internal/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, records []metadata.Record) *Graph {
	t.Helper()
	g, err := Build(records)
	require.NoError(t, err)
	return g
}

func names(ordering []*Node) []string {
	out := make([]string, len(ordering))
	for i, n := range ordering {
		out[i] = n.Name
	}
	return out
}

// position returns the index of the identity in the ordering, or -1.
func position(ordering []*Node, id Identity) int {
	for i, n := range ordering {
		if n.Identity == id {
			return i
		}
	}
	return -1
}

func TestOrderLeafFirst(t *testing.T) {
	g := mustBuild(t, []metadata.Record{
		rec("app", "0.1.0", true, ref("lib", "1.0.0")),
		rec("lib", "1.0.0", true),
	})

	ordering, err := Order(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "app"}, names(ordering))
}

func TestOrderValidityAndTotality(t *testing.T) {
	records := []metadata.Record{
		rec("app", "0.1.0", true, ref("lib", "1.0.0"), ref("util", "0.3.0")),
		rec("lib", "1.0.0", true, ref("ext", "2.0.0")),
		rec("util", "0.3.0", true, ref("ext", "2.0.0")),
		rec("ext", "2.0.0", false),
	}
	g := mustBuild(t, records)

	ordering, err := Order(g)
	require.NoError(t, err)

	// Totality: every node exactly once.
	require.Len(t, ordering, g.Len())
	seen := map[Identity]bool{}
	for _, n := range ordering {
		assert.False(t, seen[n.Identity], "node %s emitted twice", n.Identity)
		seen[n.Identity] = true
	}

	// Validity: every dependency strictly precedes its dependent.
	for _, n := range ordering {
		for _, dep := range n.DependsOn {
			assert.Less(t, position(ordering, dep), position(ordering, n.Identity),
				"%s must precede %s", dep, n.Identity)
		}
	}
}

func TestOrderDeterministicTieBreak(t *testing.T) {
	// All four nodes are leaves and become available simultaneously; the
	// emitted order must be lexicographic by name, then version.
	records := []metadata.Record{
		rec("zeta", "1.0.0", false),
		rec("alpha", "2.0.0", false),
		rec("alpha", "1.0.0", false),
		rec("beta", "1.0.0", false),
	}
	g := mustBuild(t, records)

	want, err := Order(g)
	require.NoError(t, err)
	assert.Equal(t, []Identity{
		{Name: "alpha", Version: "1.0.0"},
		{Name: "alpha", Version: "2.0.0"},
		{Name: "beta", Version: "1.0.0"},
		{Name: "zeta", Version: "1.0.0"},
	}, identitiesOf(want))

	// Determinism: repeated runs over the same graph yield the identical
	// sequence.
	for i := 0; i < 20; i++ {
		got, err := Order(g)
		require.NoError(t, err)
		assert.Equal(t, identitiesOf(want), identitiesOf(got))
	}
}

func identitiesOf(ordering []*Node) []Identity {
	out := make([]Identity, len(ordering))
	for i, n := range ordering {
		out[i] = n.Identity
	}
	return out
}

func TestOrderCycleRejected(t *testing.T) {
	g := mustBuild(t, []metadata.Record{
		rec("a", "1.0.0", false, ref("b", "1.0.0")),
		rec("b", "1.0.0", false, ref("a", "1.0.0")),
	})

	ordering, err := Order(g)
	assert.Nil(t, ordering, "a cyclic graph must never yield a partial ordering")

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.ElementsMatch(t, []Identity{
		{Name: "a", Version: "1.0.0"},
		{Name: "b", Version: "1.0.0"},
	}, cycle.Nodes)
	assert.Contains(t, err.Error(), "a@1.0.0")
}

func TestOrderCycleWithDownstreamNodes(t *testing.T) {
	// ok is a leaf and emittable; the b<->c cycle and its dependent a are
	// stuck.
	g := mustBuild(t, []metadata.Record{
		rec("a", "1.0.0", false, ref("b", "1.0.0")),
		rec("b", "1.0.0", false, ref("c", "1.0.0")),
		rec("c", "1.0.0", false, ref("b", "1.0.0")),
		rec("ok", "1.0.0", false),
	})

	ordering, err := Order(g)
	assert.Nil(t, ordering)

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.ElementsMatch(t, []Identity{
		{Name: "a", Version: "1.0.0"},
		{Name: "b", Version: "1.0.0"},
		{Name: "c", Version: "1.0.0"},
	}, cycle.Nodes)
}

func TestWorkspaceFilter(t *testing.T) {
	g := mustBuild(t, []metadata.Record{
		rec("app", "0.1.0", true, ref("lib", "1.0.0")),
		rec("lib", "1.0.0", true, ref("ext", "2.0.0")),
		rec("ext", "2.0.0", false),
	})

	ordering, err := Order(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"ext", "lib", "app"}, names(ordering))

	// Filter off: identical sequence.
	assert.Equal(t, ordering, Workspace(ordering, false))

	// Filter on: ext excluded, lib before app preserved.
	members := Workspace(ordering, true)
	assert.Equal(t, []string{"lib", "app"}, names(members))
}

func TestWorkspaceFilterPreservesRelativeOrder(t *testing.T) {
	g := mustBuild(t, []metadata.Record{
		rec("a", "1", true, ref("b", "1"), ref("c", "1")),
		rec("b", "1", false, ref("d", "1")),
		rec("c", "1", true, ref("d", "1")),
		rec("d", "1", true),
	})

	full, err := Order(g)
	require.NoError(t, err)
	filtered := Workspace(full, true)

	// The filtered sequence must be a subsequence of the full ordering.
	i := 0
	for _, n := range full {
		if i < len(filtered) && filtered[i] == n {
			i++
		}
	}
	assert.Equal(t, len(filtered), i, "filtered output is not a subsequence of the full ordering")
	for _, n := range filtered {
		assert.True(t, n.IsWorkspaceMember)
	}
}

func TestOrderEmptyGraph(t *testing.T) {
	g := mustBuild(t, nil)
	ordering, err := Order(g)
	require.NoError(t, err)
	assert.Empty(t, ordering)
}
