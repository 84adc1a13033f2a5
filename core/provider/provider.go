// Package provider contains the pluggable cost strategies.
// Each provider prices one cost category for a single element.
package provider

import (
	"fmt"
	"sync"

	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

// Built-in provider names, as listed in enabled_providers
const (
	ProviderMaterial         = "material"
	ProviderConnection       = "connection"
	ProviderLabor            = "labor"
	ProviderSurfaceTreatment = "surface_treatment"
)

// Provider prices elements for one cost category
type Provider interface {
	// Name is matched against the enabled_providers list
	Name() string

	// CanCalculate is a cheap, side-effect-free applicability check
	CanCalculate(el types.Element) bool

	// Calculate emits zero or more priced items for the element
	Calculate(el types.Element, rs *rules.RuleSet) ([]types.CostItem, error)
}

// Registry is an ordered set of providers
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	names     map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register appends a provider. Names must be unique.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[p.Name()]; exists {
		return fmt.Errorf("provider already registered: %s", p.Name())
	}

	r.names[p.Name()] = struct{}{}
	r.providers = append(r.providers, p)
	return nil
}

// MustRegister is like Register but panics on duplicates
func (r *Registry) MustRegister(providers ...Provider) {
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

// Providers returns every provider in registration order
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Names returns the registered provider names in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Name())
	}
	return out
}

// Active returns the registered providers whose names are enabled,
// in registration order
func (r *Registry) Active(enabled []string) []Provider {
	set := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		set[name] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if _, ok := set[p.Name()]; ok {
			out = append(out, p)
		}
	}
	return out
}

// DefaultRegistry registers every built-in provider
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(
		NewMaterialProvider(),
		NewConnectionProvider(),
		NewLaborProvider(),
		NewSurfaceTreatmentProvider(),
	)
	return r
}
