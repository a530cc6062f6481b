// Package fixture loads YAML suites of source programs with expected
// results and runs each case through the evaluator.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is one manifest: a named list of cases. A case supplies its program
// inline or points at a file relative to the manifest.
type Suite struct {
	Name  string `yaml:"suite"`
	Cases []Case `yaml:"cases"`

	dir string
}

// Case pairs a program with its expectations. Exactly one of File and Source
// must be set, and an error expectation excludes result and env.
type Case struct {
	Name   string           `yaml:"name"`
	File   string           `yaml:"file"`
	Source string           `yaml:"source"`
	Result *int32           `yaml:"result"`
	Env    map[string]int32 `yaml:"env"`
	Error  string           `yaml:"error"`
}

// ValidationError aggregates every problem found in a manifest.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "suite: invalid manifest"
	}
	var b strings.Builder
	b.WriteString("suite validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load parses and validates a suite manifest. Unknown YAML fields are
// rejected so typos in expectations cannot silently pass.
func Load(path string) (*Suite, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("suite: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var suite Suite
	if err := decoder.Decode(&suite); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("suite: %s is empty", path)
		}
		return nil, fmt.Errorf("suite: parse %s: %w", path, err)
	}

	suite.dir = filepath.Dir(path)
	if err := suite.validate(); err != nil {
		return nil, err
	}
	return &suite, nil
}

func (s *Suite) validate() error {
	var errs ValidationError
	if s.Name == "" {
		errs.Issues = append(errs.Issues, "suite name must be provided")
	}
	if len(s.Cases) == 0 {
		errs.Issues = append(errs.Issues, "at least one case is required")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		label := c.Name
		if label == "" {
			label = fmt.Sprintf("cases[%d]", i)
			errs.Issues = append(errs.Issues, label+" has no name")
		} else if seen[c.Name] {
			errs.Issues = append(errs.Issues, fmt.Sprintf("case name %q appears twice", c.Name))
		}
		seen[c.Name] = true

		if (c.File != "") == (c.Source != "") {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: exactly one of file or source is required", label))
		}
		if c.Error != "" && (c.Result != nil || len(c.Env) > 0) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: an error case cannot also expect result or env", label))
		}
		if c.Error == "" && c.Result == nil && len(c.Env) == 0 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: expected result, env, or error", label))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
