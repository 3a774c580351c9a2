package environment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSpec represents the YAML structure of an environment file:
//
//	home: /home/runner
//	user: runner
//	path: [/usr/bin, /bin]
//	credentialsDir: /home/runner/.credentials
//	vars:
//	  KUBECONFIG: /home/runner/.credentials/kubeconfig
type fileSpec struct {
	Home           string            `yaml:"home"`
	User           string            `yaml:"user"`
	Term           string            `yaml:"term"`
	Locale         string            `yaml:"locale"`
	Path           []string          `yaml:"path"`
	CredentialsDir string            `yaml:"credentialsDir"`
	Vars           map[string]string `yaml:"vars"`
}

func (f fileSpec) toSpec() Spec {
	return Spec{
		Home:           f.Home,
		User:           f.User,
		Term:           f.Term,
		Locale:         f.Locale,
		Path:           f.Path,
		CredentialsDir: f.CredentialsDir,
		Vars:           f.Vars,
	}
}

// ParseSpec parses an environment YAML document. Unknown fields are rejected.
func ParseSpec(data []byte) (Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f fileSpec
	if err := dec.Decode(&f); err != nil {
		// Empty documents are valid, they don't override anything.
		if errors.Is(err, io.EOF) {
			return Spec{}, nil
		}
		return Spec{}, fmt.Errorf("parsing YAML: %w", err)
	}

	return f.toSpec(), nil
}

// LoadSpecFile loads an environment spec from a YAML file.
func LoadSpecFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("reading environment file: %w", err)
	}

	spec, err := ParseSpec(data)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid environment file %s: %w", path, err)
	}

	return spec, nil
}
