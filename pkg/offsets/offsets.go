// Package offsets models the per-tool X/Y/Z compensation table. The table is
// resolved by the host before expansion; the engine only looks values up.
package offsets

import (
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Offset is the compensation applied to a tool when probing its length.
type Offset struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Provider resolves a tool number to its offset. Absent tools yield the
// zero Offset.
type Provider interface {
	Lookup(tool int) Offset
}

// Table is a map-backed Provider.
type Table map[int]Offset

// Lookup implements Provider.
func (t Table) Lookup(tool int) Offset {
	return t[tool]
}

// Tools returns the tool numbers present in the table in ascending order.
func (t Table) Tools() []int {
	tools := make([]int, 0, len(t))
	for n := range t {
		tools = append(tools, n)
	}
	sort.Ints(tools)
	return tools
}

// Lookup is a nil-safe helper for callers holding an optional Provider.
func Lookup(p Provider, tool int) Offset {
	if p == nil {
		return Offset{}
	}
	return p.Lookup(tool)
}

// document is the file form: tool numbers as keys.
//
//	tools:
//	  "1": {x: 0.1, y: 0, z: -0.25}
type document struct {
	Tools map[string]Offset `yaml:"tools"`
}

// LoadFile reads a YAML or JSON tool offset table.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open offset table")
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a tool offset table from a reader.
func Load(r io.Reader) (Table, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, nil
		}
		return nil, errors.Wrap(err, "structural decode")
	}

	t := make(Table, len(doc.Tools))
	keys := make(map[int]string, len(doc.Tools))
	for key, off := range doc.Tools {
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 {
			return nil, errors.WithHintf(
				errors.Newf("invalid tool number %q", key),
				"offset table keys must be non-negative integers, e.g. \"3\"")
		}
		if prev, dup := keys[n]; dup {
			a, b := prev, key
			if b < a {
				a, b = b, a
			}
			return nil, errors.WithHintf(
				errors.Newf("tool %d is listed twice (%q and %q)", n, a, b),
				"keep a single entry per tool")
		}
		keys[n] = key
		t[n] = off
	}
	return t, nil
}
