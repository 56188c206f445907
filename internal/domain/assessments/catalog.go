package assessments

import (
	"fmt"
	"sort"
)

// Definition describes one questionnaire in the catalog
type Definition struct {
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Questions   int    `yaml:"questions" json:"questions"`
}

// Catalog is the table of known assessment types. It is read-only once built.
type Catalog struct {
	defs map[string]Definition
}

// NewCatalog indexes definitions by their key-sanitized name.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		name := SanitizeKey(d.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %q: empty name after sanitizing", d.Name)
		}
		if _, dup := c.defs[name]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate name", name)
		}
		if d.Questions < 0 {
			return nil, fmt.Errorf("catalog entry %q: negative question count", name)
		}
		d.Name = name
		if d.Title == "" {
			d.Title = name
		}
		c.defs[name] = d
	}
	return c, nil
}

// Lookup returns the definition for an assessment type.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	d, ok := c.defs[name]
	return d, ok
}

// Definitions returns every entry sorted by name.
func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}
