package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devconsole/modelbridge/core/vendors"
)

// catalogFile is the YAML document shape accepted by LoadFile. The lookup
// contract is identical to the built-in catalog; only the source differs.
type catalogFile struct {
	Models            []modelEntry   `yaml:"models"`
	Mappings          []mappingEntry `yaml:"mappings"`
	InferenceProfiles []string       `yaml:"inference_profiles"`
}

type modelEntry struct {
	Name                   string  `yaml:"name"`
	Vendor                 string  `yaml:"vendor"`
	InputCostPerMillion    float64 `yaml:"input_cost_per_million"`
	OutputCostPerMillion   float64 `yaml:"output_cost_per_million"`
	ContextWindow          int     `yaml:"context_window"`
	MaxOutputTokens        int     `yaml:"max_output_tokens"`
	SupportsVision         bool    `yaml:"supports_vision"`
	SupportsMessageBatches bool    `yaml:"supports_message_batches"`
	TrainingCutoff         string  `yaml:"training_cutoff"` // YYYY-MM-DD
	Description            string  `yaml:"description"`
	ComparativeLatency     string  `yaml:"comparative_latency"`
	VendorModelID          string  `yaml:"vendor_model_id"`
}

type mappingEntry struct {
	Name      string            `yaml:"name"`
	VendorIDs map[string]string `yaml:"vendor_ids"`
}

// LoadFile builds a catalog from a YAML file. Collision and validation rules
// are the same as NewCatalog: duplicate (name, vendor) pairs, unknown vendor
// names, and negative costs all fail loudly instead of dropping entries.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	models := make([]AIModel, 0, len(file.Models))
	for _, entry := range file.Models {
		vendor, err := vendors.Parse(entry.Vendor)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry.Name, err)
		}

		costs, err := NewModelCosts(entry.InputCostPerMillion, entry.OutputCostPerMillion)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry.Name, err)
		}

		var cutoff time.Time
		if entry.TrainingCutoff != "" {
			cutoff, err = time.Parse("2006-01-02", entry.TrainingCutoff)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q: bad training_cutoff: %w", entry.Name, err)
			}
		}

		models = append(models, AIModel{
			Name:                   entry.Name,
			Vendor:                 vendor,
			Costs:                  costs,
			ContextWindow:          entry.ContextWindow,
			MaxOutputTokens:        entry.MaxOutputTokens,
			SupportsVision:         entry.SupportsVision,
			SupportsMessageBatches: entry.SupportsMessageBatches,
			TrainingCutoff:         cutoff,
			Description:            entry.Description,
			ComparativeLatency:     entry.ComparativeLatency,
			VendorModelID:          entry.VendorModelID,
		})
	}

	mappings := make([]Mapping, 0, len(file.Mappings))
	for _, entry := range file.Mappings {
		ids := make(map[vendors.Vendor]string, len(entry.VendorIDs))
		for vendorName, id := range entry.VendorIDs {
			vendor, err := vendors.Parse(vendorName)
			if err != nil {
				return nil, fmt.Errorf("mapping %q: %w", entry.Name, err)
			}
			ids[vendor] = id
		}
		mappings = append(mappings, Mapping{CanonicalName: entry.Name, VendorIDs: ids})
	}

	return NewCatalog(models, mappings, file.InferenceProfiles)
}
