// ABOUTME: Loads JSON5 wire-format conformance suites from the testdata directory
// ABOUTME: Suites carry 64-bit values as decimal strings so no precision is lost in transit
package test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aeolun/json5"
)

// TestSuite is one conformance file: a named set of wire-format vectors.
type TestSuite struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TestCases   []TestCase `json:"test_cases"`
}

// TestCase pins one operation to its exact wire bytes. Value is carried as a
// string for every operation so 64-bit integers survive the JSON number
// type. DecodeError marks vectors that must fail to decode; they have no
// encode direction.
type TestCase struct {
	Description string `json:"description"`
	Op          string `json:"op"`
	Value       string `json:"value,omitempty"`
	Bytes       []int  `json:"bytes"`
	DecodeError bool   `json:"decode_error,omitempty"`
}

// WireBytes converts the JSON integer array to the expected wire bytes.
func (c TestCase) WireBytes() ([]byte, error) {
	out := make([]byte, len(c.Bytes))
	for i, n := range c.Bytes {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("case %q: byte %d = %d outside [0,255]", c.Description, i, n)
		}
		out[i] = byte(n)
	}
	return out, nil
}

// LoadTestSuite loads a single suite from a JSON5 file.
func LoadTestSuite(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite %s: %w", path, err)
	}

	var suite TestSuite
	if err := json5.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse suite %s: %w", path, err)
	}
	if suite.Name == "" {
		suite.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &suite, nil
}

// LoadAllTestSuites loads every suite under dir, sorted by file name so runs
// are deterministic.
func LoadAllTestSuites(dir string) ([]*TestSuite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list suite dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".json5" || ext == ".json" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	suites := make([]*TestSuite, 0, len(paths))
	for _, p := range paths {
		suite, err := LoadTestSuite(p)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}
