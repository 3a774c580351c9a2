package env

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/slok/scriptd/internal/model"
)

// LookupFunc resolves a variable from the environment the scriptd process runs with.
type LookupFunc func(key string) (string, bool)

// HostLookup reads the scriptd process environment.
var HostLookup LookupFunc = os.LookupEnv

// Overrides are the parsed `--env` command line values.
type Overrides struct {
	Vars map[string]string
	// FromHost are the keys whose values were copied from the scriptd process.
	FromHost []string
}

// ParseOverrides parses `KEY=VALUE` and `KEY` values. A bare `KEY` copies the variable
// from lookup, it's the only way a host variable reaches a script and a missing one is an
// error. When a key is repeated the last value wins.
func ParseOverrides(specs []string, lookup LookupFunc) (Overrides, error) {
	o := Overrides{Vars: make(map[string]string, len(specs))}
	fromHost := map[string]bool{}

	for _, spec := range specs {
		key, value, explicit := strings.Cut(spec, "=")
		if !IsValidKey(key) {
			return Overrides{}, fmt.Errorf("%q is not a KEY=VALUE or KEY value: %w", spec, model.ErrNotValid)
		}

		if !explicit {
			v, ok := lookup(key)
			if !ok {
				return Overrides{}, fmt.Errorf("%q is not set in the scriptd environment: %w", key, model.ErrNotValid)
			}
			value = v
		}

		o.Vars[key] = value
		fromHost[key] = !explicit
	}

	for k, host := range fromHost {
		if host {
			o.FromHost = append(o.FromHost, k)
		}
	}
	slices.Sort(o.FromHost)

	return o, nil
}

// MergeMaps layers ms left to right into a new map, later maps win.
func MergeMaps(ms ...map[string]string) map[string]string {
	merged := map[string]string{}
	for _, m := range ms {
		maps.Copy(merged, m)
	}
	return merged
}

// IsValidKey reports if k is a portable variable name: `[A-Za-z_][A-Za-z0-9_]*`.
func IsValidKey(k string) bool {
	if k == "" {
		return false
	}

	for i, c := range k {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}
