package recipe

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// Registry resolves recipe names to recipes.
type Registry struct {
	recipes map[string]Recipe
}

// NewRegistry merges the built-in recipes with configured ones. A configured
// recipe replaces a built-in recipe of the same name.
func NewRegistry(configured map[string]config.RecipeConfig) (*Registry, error) {
	reg := &Registry{recipes: Builtin()}
	for name, rc := range configured {
		r := FromConfig(name, rc)
		if err := r.Validate(); err != nil {
			return nil, err
		}
		reg.recipes[name] = r
	}
	return reg, nil
}

// Lookup returns the named recipe.
func (r *Registry) Lookup(name string) (Recipe, error) {
	rec, ok := r.recipes[name]
	if !ok {
		return Recipe{}, ferrors.NewError(ferrors.CategoryNotFound, fmt.Sprintf("unknown recipe %q", name)).
			WithContext("recipe", name).
			WithContext("available", r.Names()).
			UserAction().
			Build()
	}
	return rec, nil
}

// Names lists recipe names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.recipes))
	for n := range r.recipes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every recipe ordered by name.
func (r *Registry) All() []Recipe {
	out := make([]Recipe, 0, len(r.recipes))
	for _, n := range r.Names() {
		out = append(out, r.recipes[n])
	}
	return out
}
