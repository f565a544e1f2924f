package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

type fakeHandle struct {
	id      string
	variant entities.Variant
}

func (h *fakeHandle) ID() string                { return h.id }
func (h *fakeHandle) Label() string             { return h.variant.Label() }
func (h *fakeHandle) Relations() []string       { return nil }
func (h *fakeHandle) Variant() entities.Variant { return h.variant }

func registryWith(t *testing.T, labels ...string) *entities.Registry {
	t.Helper()
	r := entities.NewRegistry()
	for _, l := range labels {
		require.NoError(t, r.Register(l, &fakeHandle{id: "id-" + l}))
	}
	return r
}

func Test_DependencyResolver_Resolve_Success(t *testing.T) {
	resolver := NewDependencyResolver()
	r := registryWith(t, "scf", "p2q", "optJ2")

	deps, err := resolver.Resolve("loc", "vmcJ2", r, []entities.Dependency{
		entities.DependsOn("p2q", entities.RelationOrbitals),
		entities.DependsOn("optJ2", entities.RelationJastrow),
	})
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "id-p2q", deps[0].Handle.ID())
	assert.Equal(t, entities.RelationOrbitals, deps[0].Relation)
	assert.Equal(t, "id-optJ2", deps[1].Handle.ID())
	assert.Equal(t, entities.RelationJastrow, deps[1].Relation)
}

func Test_DependencyResolver_Resolve_ReportsAllMissingWithHints(t *testing.T) {
	resolver := NewDependencyResolver()
	r := registryWith(t, "scf")

	_, err := resolver.Resolve("qmcpack_chain", "dmcJ3_tm", r, []entities.Dependency{
		entities.DependsOn("p2q", entities.RelationOrbitals),
		entities.DependsOn("optJ3", entities.RelationJastrow),
		entities.DependsOn("optJ2", entities.RelationJastrow),
		entities.DependsOn("xy", entities.RelationJastrow),
	})

	var unresolved *entities.UnresolvedDependencyError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "dmcJ3_tm", unresolved.Stage)
	assert.Equal(t, "qmcpack_chain", unresolved.Location)
	assert.Equal(t, []string{"optJ2", "optJ3", "p2q", "xy"}, unresolved.Missing)
	assert.Equal(t, []string{"opt_inputs", "p2q_inputs"}, unresolved.Hints, "hints are a sorted set, short names give none")
}

func Test_DependencyResolver_Resolve_Monotonic(t *testing.T) {
	resolver := NewDependencyResolver()
	r := entities.NewRegistry()
	deps := []entities.Dependency{entities.DependsOn("p2q", entities.RelationOrbitals)}

	_, err := resolver.Resolve("loc", "optJ2", r, deps)
	require.Error(t, err)

	require.NoError(t, r.Register("p2q", &fakeHandle{id: "p"}))
	for _, later := range []string{"optJ2", "vmcJ0", "dmcJ0"} {
		require.NoError(t, r.Register(later, &fakeHandle{id: later}))
		_, err = resolver.Resolve("loc", "optJ2", r, deps)
		require.NoError(t, err, "a registered producer stays resolvable")
	}
}

func Test_DependencyResolver_Order_NoDependencies(t *testing.T) {
	resolver := NewDependencyResolver()
	levels, err := resolver.Order([]StageDeclaration{
		{Label: "scf"},
		{Label: "optJ2"},
		{Label: "vmcJ0"},
	})
	require.NoError(t, err)
	require.Len(t, levels, 1, "all stages should be in level 0")
	assert.Equal(t, 0, levels[0].Level)
	assert.Len(t, levels[0].Stages, 3)
}

func Test_DependencyResolver_Order_Chain(t *testing.T) {
	resolver := NewDependencyResolver()
	levels, err := resolver.Order([]StageDeclaration{
		{Label: "vmcJ2", DependsOn: []string{"p2q", "optJ2"}},
		{Label: "scf"},
		{Label: "optJ2", DependsOn: []string{"p2q"}},
		{Label: "p2q", DependsOn: []string{"scf"}},
	})
	require.NoError(t, err)
	require.Len(t, levels, 4)

	assert.Equal(t, "scf", levels[0].Stages[0].Label)
	assert.Equal(t, "p2q", levels[1].Stages[0].Label)
	assert.Equal(t, "optJ2", levels[2].Stages[0].Label)
	assert.Equal(t, "vmcJ2", levels[3].Stages[0].Label)
}

func Test_DependencyResolver_Order_CircularDependency(t *testing.T) {
	resolver := NewDependencyResolver()
	_, err := resolver.Order([]StageDeclaration{
		{Label: "optJ2", DependsOn: []string{"optJ3"}},
		{Label: "optJ3", DependsOn: []string{"optJ2"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func Test_DependencyResolver_Order_NonExistentDependency(t *testing.T) {
	resolver := NewDependencyResolver()
	_, err := resolver.Order([]StageDeclaration{
		{Label: "vmcJ2", DependsOn: []string{"optJ2"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-existent stage optJ2")
}

func Test_DependencyResolver_Upstream_Transitive(t *testing.T) {
	resolver := NewDependencyResolver()
	up, err := resolver.Upstream([]StageDeclaration{
		{Label: "scf"},
		{Label: "p2q", DependsOn: []string{"scf"}},
		{Label: "optJ2", DependsOn: []string{"p2q"}},
		{Label: "optJ3", DependsOn: []string{"p2q", "optJ2"}},
		{Label: "dmcJ3", DependsOn: []string{"p2q", "optJ3"}},
	})
	require.NoError(t, err)

	assert.Empty(t, up["scf"])
	assert.Equal(t, []string{"scf"}, up["p2q"])
	assert.Equal(t, []string{"optJ2", "optJ3", "p2q", "scf"}, up["dmcJ3"])
}
