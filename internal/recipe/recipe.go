package recipe

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// Step is one external tool invocation.
type Step struct {
	Name    string
	Command string
	Args    []string
	Dir     string
	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
}

// DisplayName returns Name, falling back to Command.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Command
}

// CommandLine renders the invocation the way a shell user would type it.
func (s Step) CommandLine() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Command)
	for _, a := range s.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(a string) string {
	if a == "" {
		return `""`
	}
	if strings.ContainsAny(a, " \t\"'{}$") {
		return fmt.Sprintf("%q", a)
	}
	return a
}

// Recipe is a named, ordered sequence of steps.
type Recipe struct {
	Name        string
	Description string
	Steps       []Step
}

// Validate checks structural constraints: a name, a command per step and
// unique step names.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ferrors.ValidationError("recipe name must not be empty").Build()
	}
	seen := make(map[string]struct{}, len(r.Steps))
	for i, s := range r.Steps {
		if strings.TrimSpace(s.Command) == "" {
			return ferrors.ValidationError(fmt.Sprintf("recipe %s: step %d has no command", r.Name, i+1)).
				WithContext("recipe", r.Name).
				WithContext("index", i).
				Build()
		}
		name := s.DisplayName()
		if _, dup := seen[name]; dup {
			return ferrors.ValidationError(fmt.Sprintf("recipe %s: duplicate step name %q", r.Name, name)).
				WithContext("recipe", r.Name).
				WithContext("step", name).
				Build()
		}
		seen[name] = struct{}{}
	}
	return nil
}

// FromConfig converts a configured recipe into a Recipe.
func FromConfig(name string, rc config.RecipeConfig) Recipe {
	r := Recipe{Name: name, Description: rc.Description, Steps: make([]Step, 0, len(rc.Steps))}
	for _, sc := range rc.Steps {
		step := Step{
			Name:    sc.Name,
			Command: sc.Command,
			Args:    append([]string(nil), sc.Args...),
			Dir:     sc.Dir,
		}
		if len(sc.Env) > 0 {
			keys := make([]string, 0, len(sc.Env))
			for k := range sc.Env {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				step.Env = append(step.Env, k+"="+sc.Env[k])
			}
		}
		if step.Name == "" {
			step.Name = step.Command
		}
		r.Steps = append(r.Steps, step)
	}
	return r
}
