package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ExecutionEnvironment is the closed set of environment variables passed to a script process.
// It is immutable once created.
type ExecutionEnvironment struct {
	vars map[string]string
}

// NewExecutionEnvironment returns a new environment with a copy of the received variables.
func NewExecutionEnvironment(vars map[string]string) (ExecutionEnvironment, error) {
	for k := range vars {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			return ExecutionEnvironment{}, fmt.Errorf("invalid environment variable name %q: %w", k, ErrNotValid)
		}
	}
	for k, v := range vars {
		if strings.ContainsRune(v, 0) {
			return ExecutionEnvironment{}, fmt.Errorf("invalid value for environment variable %q: %w", k, ErrNotValid)
		}
	}

	return ExecutionEnvironment{vars: maps.Clone(vars)}, nil
}

// Get returns the value of a variable and if it is present.
func (e ExecutionEnvironment) Get(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Len returns the number of variables.
func (e ExecutionEnvironment) Len() int { return len(e.vars) }

// Keys returns the sorted variable names.
func (e ExecutionEnvironment) Keys() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// Map returns a copy of the variables.
func (e ExecutionEnvironment) Map() map[string]string {
	if e.vars == nil {
		return map[string]string{}
	}

	return maps.Clone(e.vars)
}

// Environ returns the variables in "KEY=VALUE" form, sorted by key, ready to be used as a process environment.
func (e ExecutionEnvironment) Environ() []string {
	env := make([]string, 0, len(e.vars))
	for _, k := range e.Keys() {
		env = append(env, k+"="+e.vars[k])
	}

	return env
}
