// Package templates holds the catalog of content formats an interview can target.
package templates

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// WordRange is the target article length.
type WordRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Template is one content format.
type Template struct {
	ID                 string    `yaml:"id" json:"id"`
	Name               string    `yaml:"name" json:"name"`
	Description        string    `yaml:"description" json:"description"`
	Words              WordRange `yaml:"words" json:"words"`
	EstimatedQuestions string    `yaml:"estimatedQuestions" json:"estimatedQuestions"`
	Voice              string    `yaml:"voice" json:"voice"`
}

// Catalog is an ordered, immutable set of templates.
type Catalog struct {
	list []Template
	byID map[string]Template
}

// Parse decodes a catalog document. Ids must be unique and non-empty.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]Template, len(doc.Templates))}
	for _, t := range doc.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.byID[t.ID] = t
		c.list = append(c.list, t)
	}
	if len(c.list) == 0 {
		return nil, fmt.Errorf("template catalog is empty")
	}
	return c, nil
}

// Lookup returns the template with id.
func (c *Catalog) Lookup(id string) (Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.list))
	copy(out, c.list)
	return out
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is invalid,
// which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Lookup resolves id against the embedded catalog.
func Lookup(id string) (Template, bool) { return Default().Lookup(id) }

// List returns the embedded catalog's templates.
func List() []Template { return Default().List() }
