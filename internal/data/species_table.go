package data

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/udisondev/taming/internal/model"
)

// ErrDuplicateSpecies is returned when a species id is registered twice.
var ErrDuplicateSpecies = errors.New("duplicate species")

// SpeciesTable is the registry of species rules, keyed by species id.
// Written once while loading, then read concurrently.
type SpeciesTable struct {
	mu    sync.RWMutex
	rules map[string]*model.SpeciesRule
}

// NewSpeciesTable creates an empty table.
func NewSpeciesTable() *SpeciesTable {
	return &SpeciesTable{
		rules: make(map[string]*model.SpeciesRule, 16),
	}
}

// Register adds rule. A second rule with the same id is rejected and the
// first one stays in place.
func (t *SpeciesTable) Register(rule *model.SpeciesRule) error {
	if rule == nil {
		return errors.New("register species: nil rule")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rules[rule.ID()]; ok {
		return fmt.Errorf("register species %q: %w", rule.ID(), ErrDuplicateSpecies)
	}
	t.rules[rule.ID()] = rule
	return nil
}

// Get returns the rule for id.
func (t *SpeciesTable) Get(id string) (*model.SpeciesRule, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rules[id]
	return r, ok
}

// Contains reports whether id is registered.
func (t *SpeciesTable) Contains(id string) bool {
	_, ok := t.Get(id)
	return ok
}

// All returns every rule sorted by id.
func (t *SpeciesTable) All() []*model.SpeciesRule {
	t.mu.RLock()
	result := make([]*model.SpeciesRule, 0, len(t.rules))
	for _, r := range t.rules {
		result = append(result, r)
	}
	t.mu.RUnlock()

	slices.SortFunc(result, func(a, b *model.SpeciesRule) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return result
}

// Count returns the number of registered species.
func (t *SpeciesTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

// Clear removes every rule (reload, tests).
func (t *SpeciesTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = make(map[string]*model.SpeciesRule, 16)
}
