// Package billing holds the tax-rate and invoice-numbering configuration
// used when deriving invoice fields. Rates ship as embedded YAML so a
// deploy carries exactly the rates it was built with.
package billing

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// RegionRate is one region's tax configuration.
type RegionRate struct {
	Region string `yaml:"region"`
	Label  string `yaml:"label"` // display form, e.g. "21%"
	// Basis points: 2100 = 21%. Integer math keeps cent amounts exact.
	BasisPoints int64 `yaml:"basis_points"`
}

// Numbering configures derived invoice numbers.
type Numbering struct {
	Prefix string `yaml:"prefix"` // e.g. "INV"
	Pad    int    `yaml:"pad"`    // zero-padding width of the sequence
}

type ratesFile struct {
	Default   string       `yaml:"default"`
	Regions   []RegionRate `yaml:"regions"`
	Numbering Numbering    `yaml:"numbering"`
}

// Registry resolves tax rates by region and exposes numbering config.
type Registry struct {
	defaultRegion string
	regions       map[string]RegionRate
	numbering     Numbering
	mu            sync.RWMutex
}

// NewRegistry loads the embedded rates file.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/rates.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read rates.yaml: %w", err)
	}

	var file ratesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rates.yaml: %w", err)
	}

	r := &Registry{
		defaultRegion: file.Default,
		regions:       make(map[string]RegionRate, len(file.Regions)),
		numbering:     file.Numbering,
	}
	for _, region := range file.Regions {
		r.regions[region.Region] = region
	}

	if _, ok := r.regions[r.defaultRegion]; !ok {
		return nil, fmt.Errorf("default region %q has no rate entry", r.defaultRegion)
	}

	return r, nil
}

// RateFor returns the tax rate for a region, falling back to the default
// region for unknown values.
func (r *Registry) RateFor(region string) RegionRate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rate, ok := r.regions[region]; ok {
		return rate
	}
	return r.regions[r.defaultRegion]
}

// Numbering returns the invoice numbering configuration.
func (r *Registry) Numbering() Numbering {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.numbering
}
