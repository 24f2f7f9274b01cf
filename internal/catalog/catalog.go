// Package catalog holds the static pest knowledge table and the demo
// dataset shown when a real analysis is not possible.
package catalog

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog maps pest names to their records. Unknown names resolve to a
// default record.
type Catalog struct {
	byKey    map[string]Record
	order    []string
	fallback Record
	demo     DemoDataset
}

// New returns the built-in catalog.
func New() *Catalog {
	c := &Catalog{
		byKey:    make(map[string]Record, len(builtinRecords)),
		fallback: cloneRecord(defaultRecord),
	}
	for _, r := range builtinRecords {
		c.put(r)
	}
	c.demo = defaultDemo(c)
	return c
}

type fileFormat struct {
	Default *Record      `yaml:"default"`
	Pests   []Record     `yaml:"pests"`
	Demo    []demoRecord `yaml:"demo"`
}

type demoRecord struct {
	Pest       string `yaml:"pest"`
	Confidence int    `yaml:"confidence"`
}

// Load returns the built-in catalog extended by the YAML file at path.
// Records in the file replace built-in records with the same name.
// An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	c := New()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if file.Default != nil {
		c.fallback = mergeRecord(c.fallback, *file.Default)
	}
	for i, r := range file.Pests {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("catalog pest #%d has no name", i)
		}
		if r.Severity != "" && !r.Severity.Valid() {
			return nil, fmt.Errorf("catalog pest %q has unknown severity %q", r.Name, r.Severity)
		}
		if existing, ok := c.byKey[key(r.Name)]; ok {
			if r.ID != "" && existing.ID != "" && r.ID != existing.ID {
				return nil, fmt.Errorf("catalog pest %q cannot change id %q to %q", r.Name, existing.ID, r.ID)
			}
			r = mergeRecord(existing, r)
		} else {
			if r.ID != "" {
				if taken, ok := c.ByID(r.ID); ok {
					return nil, fmt.Errorf("catalog pest %q reuses id %q of %q", r.Name, r.ID, taken.Name)
				}
			}
			r = mergeRecord(c.withName(r.Name), r)
		}
		c.put(r)
	}

	if len(file.Demo) > 0 {
		results := make([]DemoResult, 0, len(file.Demo))
		for _, d := range file.Demo {
			if d.Confidence < 0 || d.Confidence > 100 {
				return nil, fmt.Errorf("demo entry %q has confidence %d outside 0-100", d.Pest, d.Confidence)
			}
			results = append(results, DemoResult{Record: c.Lookup(d.Pest), Confidence: d.Confidence})
		}
		c.demo = DemoDataset{results: results}
	} else {
		c.demo = defaultDemo(c)
	}

	return c, nil
}

// Lookup returns the record for name, or the default record carrying name
// when the pest is unknown.
func (c *Catalog) Lookup(name string) Record {
	if r, ok := c.byKey[key(name)]; ok {
		return cloneRecord(r)
	}
	return c.withName(name)
}

// Known reports whether name has its own record.
func (c *Catalog) Known(name string) bool {
	_, ok := c.byKey[key(name)]
	return ok
}

// ByID returns the record with the given identifier.
func (c *Catalog) ByID(id PestID) (Record, bool) {
	for _, k := range c.order {
		if r := c.byKey[k]; r.ID == id {
			return cloneRecord(r), true
		}
	}
	return Record{}, false
}

// Records lists every known pest in catalog order.
func (c *Catalog) Records() []Record {
	out := make([]Record, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, cloneRecord(c.byKey[k]))
	}
	return out
}

// DefaultRemedies are the generic remedies suggested for unknown pests.
func (c *Catalog) DefaultRemedies() []string {
	return slices.Clone(c.fallback.Remedies)
}

// Demo returns the demonstration dataset.
func (c *Catalog) Demo() DemoDataset {
	return c.demo
}

func (c *Catalog) put(r Record) {
	k := key(r.Name)
	if _, ok := c.byKey[k]; !ok {
		c.order = append(c.order, k)
	}
	c.byKey[k] = cloneRecord(r)
}

func (c *Catalog) withName(name string) Record {
	r := cloneRecord(c.fallback)
	r.Name = name
	return r
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneRecord(r Record) Record {
	r.Remedies = slices.Clone(r.Remedies)
	return r
}

// mergeRecord overlays the non-empty fields of override onto base.
func mergeRecord(base, override Record) Record {
	out := cloneRecord(base)
	if override.ID != "" {
		out.ID = override.ID
	}
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Scientific != "" {
		out.Scientific = override.Scientific
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if len(override.Remedies) > 0 {
		out.Remedies = slices.Clone(override.Remedies)
	}
	if override.Severity != "" {
		out.Severity = override.Severity
	}
	return out
}
