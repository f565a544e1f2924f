package services

import (
	"fmt"
	"sort"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// DependencyResolver handles stage dependency graph operations
type DependencyResolver struct{}

// NewDependencyResolver creates a new dependency resolver service
func NewDependencyResolver() *DependencyResolver {
	return &DependencyResolver{}
}

// Resolve binds each declared dependency of stage to a registered producer.
// Every missing producer is collected before failing, and the error carries
// the input keywords that would likely have requested them.
func (r *DependencyResolver) Resolve(
	location string,
	stage string,
	registry *entities.Registry,
	deps []entities.Dependency,
) ([]entities.ResolvedDependency, error) {
	resolved := make([]entities.ResolvedDependency, 0, len(deps))
	var missing []string

	for _, dep := range deps {
		h, ok := registry.Get(dep.Producer)
		if !ok {
			missing = append(missing, dep.Producer)
			continue
		}
		resolved = append(resolved, entities.ResolvedDependency{Handle: h, Relation: dep.Relation})
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, entities.NewUnresolvedDependencyError(location, stage, missing, keywordHints(missing))
	}
	return resolved, nil
}

// keywordHints returns the sorted set of "<first three>_inputs" hints.
func keywordHints(missing []string) []string {
	seen := make(map[string]bool)
	hints := []string{}
	for _, m := range missing {
		h := InputsHint(m)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hints = append(hints, h)
	}
	sort.Strings(hints)
	return hints
}

// StageDeclaration names a stage and the producers it consumes.
type StageDeclaration struct {
	Label     string
	DependsOn []string
}

// StageLevel represents stages at a specific dependency level
type StageLevel struct {
	Level  int
	Stages []StageDeclaration
}

// Order groups declarations into dependency levels using Kahn's algorithm.
// Level 0 holds stages with no producers; each later level only consumes
// stages of earlier levels. Within a level, declaration order is kept.
//
// Algorithm:
// 1. Build reverse dependency map and in-degree map
// 2. Find all stages with no unmet dependencies (in-degree 0)
// 3. Process stages level by level, decrementing in-degrees
// 4. Detect cycles (remaining stages with in-degree > 0)
func (r *DependencyResolver) Order(decls []StageDeclaration) ([]StageLevel, error) {
	byLabel := make(map[string]StageDeclaration)
	inDegree := make(map[string]int)
	dependents := make(map[string][]string)

	for _, d := range decls {
		byLabel[d.Label] = d
		inDegree[d.Label] = len(d.DependsOn)
		for _, dep := range d.DependsOn {
			dependents[dep] = append(dependents[dep], d.Label)
		}
	}

	for _, d := range decls {
		for _, dep := range d.DependsOn {
			if _, exists := byLabel[dep]; !exists {
				return nil, fmt.Errorf("stage %s depends on non-existent stage %s", d.Label, dep)
			}
		}
	}

	var levels []StageLevel
	processed := make(map[string]bool)
	level := 0

	for len(processed) < len(decls) {
		var current []StageDeclaration
		for _, d := range decls {
			if !processed[d.Label] && inDegree[d.Label] == 0 {
				current = append(current, d)
			}
		}

		// No progress made → cycle detected
		if len(current) == 0 {
			remaining := []string{}
			for _, d := range decls {
				if !processed[d.Label] {
					remaining = append(remaining, d.Label)
				}
			}
			return nil, fmt.Errorf("circular dependency detected among stages: %v", remaining)
		}

		levels = append(levels, StageLevel{Level: level, Stages: current})

		for _, d := range current {
			processed[d.Label] = true
			for _, dependent := range dependents[d.Label] {
				inDegree[dependent]--
			}
		}
		level++
	}

	return levels, nil
}

// Upstream calculates the transitive producers of each declared stage.
// Returns map of label → sorted list of all producers (direct + transitive).
func (r *DependencyResolver) Upstream(decls []StageDeclaration) (map[string][]string, error) {
	levels, err := r.Order(decls)
	if err != nil {
		return nil, err
	}

	closure := make(map[string]map[string]bool, len(decls))
	for _, lvl := range levels {
		for _, d := range lvl.Stages {
			set := make(map[string]bool)
			for _, dep := range d.DependsOn {
				set[dep] = true
				for trans := range closure[dep] {
					set[trans] = true
				}
			}
			closure[d.Label] = set
		}
	}

	out := make(map[string][]string, len(closure))
	for label, set := range closure {
		list := make([]string, 0, len(set))
		for dep := range set {
			list = append(list, dep)
		}
		sort.Strings(list)
		out[label] = list
	}
	return out, nil
}
