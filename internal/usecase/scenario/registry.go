package scenario

import (
	"fmt"
	"sort"
)

type Registry struct {
	groups []Group
	byID   map[string]Scenario
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Scenario),
	}
}

// NewSuiteRegistry returns a registry holding every built-in group.
func NewSuiteRegistry() *Registry {
	r := NewRegistry()
	for _, g := range Suite() {
		if err := r.Register(g); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds g. Scenarios inherit the group name; IDs must be unique.
func (r *Registry) Register(g Group) error {
	scenarios := make([]Scenario, 0, len(g.Scenarios))
	for _, s := range g.Scenarios {
		s.Group = g.Name
		if s.Run == nil {
			return fmt.Errorf("scenario %s has no body", s.ID())
		}
		if _, ok := r.byID[s.ID()]; ok {
			return fmt.Errorf("scenario %s registered twice", s.ID())
		}
		scenarios = append(scenarios, s)
	}

	for _, s := range scenarios {
		r.byID[s.ID()] = s
	}
	g.Scenarios = scenarios
	r.groups = append(r.groups, g)
	return nil
}

func (r *Registry) Get(id string) (Scenario, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Groups returns groups in registration order.
func (r *Registry) Groups() []Group {
	return append([]Group(nil), r.groups...)
}

// IDs returns every scenario ID, sorted.
func (r *Registry) IDs() []string {
	result := make([]string, 0, len(r.byID))
	for id := range r.byID {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Select keeps the scenarios f matches and drops groups left empty.
func (r *Registry) Select(f *Filter) []Group {
	var result []Group
	for _, g := range r.groups {
		var picked []Scenario
		for _, s := range g.Scenarios {
			if f.Match(s) {
				picked = append(picked, s)
			}
		}
		if len(picked) == 0 {
			continue
		}
		g.Scenarios = picked
		result = append(result, g)
	}
	return result
}
