// Package environment builds the closed environment that scripts run with.
//
// The environment is never inherited from the service process. It is authored from
// built-in defaults, an optional YAML file and explicit overrides, and it is kept as
// an immutable snapshot that can only be replaced as a whole.
package environment

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/slok/scriptd/internal/model"
	utilsenv "github.com/slok/scriptd/internal/utils/env"
)

const (
	// DefaultHome is the default HOME of script processes.
	DefaultHome = "/root"
	// DefaultUser is the default USER of script processes.
	DefaultUser = "root"
	// DefaultTerm is a color capable terminal so scripts keep colored output.
	DefaultTerm = "xterm-256color"
	// DefaultLocale is used for LANG and LC_ALL.
	DefaultLocale = "C.UTF-8"
	// DefaultCredentialsDirName is the credentials directory name, relative to HOME.
	DefaultCredentialsDirName = ".credentials"

	// CredentialsDirVar is the variable that points scripts to the credentials directory.
	CredentialsDirVar = "CREDENTIALS_DIR"
)

// DefaultPath are the standard system directories used as PATH.
var DefaultPath = []string{"/usr/local/sbin", "/usr/local/bin", "/usr/sbin", "/usr/bin", "/sbin", "/bin"}

// Spec describes an execution environment. Empty fields mean "not set" so specs can be layered.
type Spec struct {
	Home           string
	User           string
	Term           string
	Locale         string
	Path           []string
	CredentialsDir string
	// Vars are extra variables, they have precedence over the named fields.
	Vars map[string]string
}

// DefaultSpec returns the built-in environment spec.
func DefaultSpec() Spec {
	return Spec{
		Home:   DefaultHome,
		User:   DefaultUser,
		Term:   DefaultTerm,
		Locale: DefaultLocale,
		Path:   append([]string{}, DefaultPath...),
	}
}

// Merge returns a new spec with the set fields of override on top of s.
func (s Spec) Merge(override Spec) Spec {
	merged := s
	if override.Home != "" {
		merged.Home = override.Home
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Term != "" {
		merged.Term = override.Term
	}
	if override.Locale != "" {
		merged.Locale = override.Locale
	}
	if len(override.Path) > 0 {
		merged.Path = append([]string{}, override.Path...)
	}
	if override.CredentialsDir != "" {
		merged.CredentialsDir = override.CredentialsDir
	}
	merged.Vars = utilsenv.MergeMaps(s.Vars, override.Vars)

	return merged
}

func (s Spec) credentialsDir() string {
	if s.CredentialsDir != "" {
		return s.CredentialsDir
	}
	return filepath.Join(s.Home, DefaultCredentialsDirName)
}

func (s Spec) validate() error {
	if s.Home == "" || !filepath.IsAbs(s.Home) {
		return fmt.Errorf("home must be an absolute path: %q", s.Home)
	}
	if s.User == "" {
		return fmt.Errorf("user is required")
	}
	if len(s.Path) == 0 {
		return fmt.Errorf("path is required")
	}
	for _, p := range s.Path {
		if !filepath.IsAbs(p) || strings.Contains(p, ":") {
			return fmt.Errorf("path entries must be absolute directories: %q", p)
		}
	}
	if !filepath.IsAbs(s.credentialsDir()) {
		return fmt.Errorf("credentials dir must be an absolute path: %q", s.credentialsDir())
	}
	for k := range s.Vars {
		if !utilsenv.IsValidKey(k) {
			return fmt.Errorf("invalid environment variable key %q", k)
		}
	}

	return nil
}

// Build validates the environment settings and returns the execution environment they describe.
func Build(s Spec) (model.ExecutionEnvironment, error) {
	if err := s.validate(); err != nil {
		return model.ExecutionEnvironment{}, fmt.Errorf("invalid environment: %w: %w", err, model.ErrNotValid)
	}

	vars := map[string]string{
		"HOME":            s.Home,
		"USER":            s.User,
		"TERM":            s.Term,
		"PATH":            strings.Join(s.Path, ":"),
		"LANG":            s.Locale,
		"LC_ALL":          s.Locale,
		CredentialsDirVar: s.credentialsDir(),
	}
	if s.Term == "" {
		delete(vars, "TERM")
	}
	if s.Locale == "" {
		delete(vars, "LANG")
		delete(vars, "LC_ALL")
	}

	return model.NewExecutionEnvironment(utilsenv.MergeMaps(vars, s.Vars))
}
