package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

type catalogFile struct {
	Assessments []assessments.Definition `yaml:"assessments"`
}

// LoadCatalog reads the assessment table (name -> title, question count).
func LoadCatalog(path string) (*assessments.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*assessments.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return assessments.NewCatalog(f.Assessments)
}

// CatalogHolder hands out the current catalog and lets a watcher swap it.
type CatalogHolder struct {
	p atomic.Pointer[assessments.Catalog]
}

func NewCatalogHolder(c *assessments.Catalog) *CatalogHolder {
	h := &CatalogHolder{}
	h.p.Store(c)
	return h
}

func (h *CatalogHolder) Catalog() *assessments.Catalog { return h.p.Load() }

func (h *CatalogHolder) Store(c *assessments.Catalog) { h.p.Store(c) }
