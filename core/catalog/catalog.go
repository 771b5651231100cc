// Package catalog is the model registry: the sole source of truth for
// canonical-name ↔ vendor-identifier resolution and per-model capability and
// cost metadata.
//
// A Catalog is fully populated at construction and never mutated afterward,
// so concurrent reads need no synchronization. Lookups are case-sensitive
// exact-string matches; family-style capability heuristics live in the
// adapters that need them, not here.
package catalog

import (
	"time"

	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
)

// AIModel is an immutable catalog entry describing one model as offered by
// one vendor.
type AIModel struct {
	Name                   string
	Vendor                 vendors.Vendor
	Costs                  ModelCosts
	ContextWindow          int
	MaxOutputTokens        int
	SupportsVision         bool
	SupportsMessageBatches bool
	TrainingCutoff         time.Time
	Description            string
	ComparativeLatency     string
	VendorModelID          string // optional wire-level id when it differs from Name
}

// Mapping binds one canonical name to the per-vendor wire identifiers.
type Mapping struct {
	CanonicalName string
	VendorIDs     map[vendors.Vendor]string
}

// Catalog is the immutable registry. Build one with NewCatalog or use the
// package-level Default.
type Catalog struct {
	models          map[string]map[vendors.Vendor]AIModel
	preferred       map[string]vendors.Vendor
	mappings        map[string]Mapping
	profileRequired map[string]struct{}
}

// NewCatalog builds a catalog from model entries, name mappings, and the
// fixed set of models that must be addressed through a cross-region inference
// profile. Two entries colliding on the same (name, vendor) pair fail loudly
// rather than silently overwriting each other.
//
// When a name has entries for several vendors, the direct-API (anthropic)
// variant is the deterministic default returned by Model; for names without
// an anthropic entry the lexically smallest vendor wins.
func NewCatalog(models []AIModel, mappings []Mapping, profileModels []string) (*Catalog, error) {
	c := &Catalog{
		models:          make(map[string]map[vendors.Vendor]AIModel, len(models)),
		preferred:       make(map[string]vendors.Vendor),
		mappings:        make(map[string]Mapping, len(mappings)),
		profileRequired: make(map[string]struct{}, len(profileModels)),
	}

	for _, model := range models {
		if model.Name == "" {
			return nil, errs.Validationf("catalog entry with empty name")
		}
		if model.Vendor == vendors.Unknown {
			return nil, errs.Validationf("catalog entry %q has no vendor", model.Name)
		}
		if err := model.Costs.Validate(); err != nil {
			return nil, err
		}

		variants, ok := c.models[model.Name]
		if !ok {
			variants = make(map[vendors.Vendor]AIModel, 1)
			c.models[model.Name] = variants
		}
		if _, exists := variants[model.Vendor]; exists {
			return nil, errs.Validationf("duplicate catalog entry for model %q vendor %q", model.Name, model.Vendor)
		}
		variants[model.Vendor] = model

		// Keep the preferred vendor deterministic as entries accumulate.
		current, ok := c.preferred[model.Name]
		if !ok || model.Vendor == vendors.Anthropic || (current != vendors.Anthropic && model.Vendor < current) {
			c.preferred[model.Name] = model.Vendor
		}
	}

	for _, mapping := range mappings {
		if mapping.CanonicalName == "" {
			return nil, errs.Validationf("mapping with empty canonical name")
		}
		if _, exists := c.mappings[mapping.CanonicalName]; exists {
			return nil, errs.Validationf("duplicate mapping for model %q", mapping.CanonicalName)
		}
		c.mappings[mapping.CanonicalName] = mapping
	}

	for _, name := range profileModels {
		c.profileRequired[name] = struct{}{}
	}

	return c, nil
}

// Model returns the catalog entry for name, picking the deterministic default
// vendor when several variants exist. Fails with ErrNotFound when the name is
// absent.
func (c *Catalog) Model(name string) (AIModel, error) {
	variants, ok := c.models[name]
	if !ok {
		return AIModel{}, errs.NotFoundf("model %q not found", name)
	}
	return variants[c.preferred[name]], nil
}

// ModelForVendor returns the entry for the given (name, vendor) pair, failing
// with ErrNotFound when that vendor has no entry for the name.
func (c *Catalog) ModelForVendor(name string, vendor vendors.Vendor) (AIModel, error) {
	variants, ok := c.models[name]
	if !ok {
		return AIModel{}, errs.NotFoundf("model %q not found", name)
	}
	model, ok := variants[vendor]
	if !ok {
		return AIModel{}, errs.NotFoundf("model %q has no entry for vendor %q", name, vendor)
	}
	return model, nil
}

// Names lists every canonical name in the catalog, in no particular order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	return names
}

// VendorModelID resolves a canonical name to the wire-level identifier the
// given vendor expects.
//
// An explicit mapping always wins: when one exists for name, the vendor's id
// is returned, or ErrNotSupported when the mapping has no entry for that
// vendor. Without a mapping, a catalog variant carrying an explicit wire id
// supplies it; failing that, name is treated as already vendor-specific only
// when its registered default vendor matches. Otherwise ErrNotFound.
func (c *Catalog) VendorModelID(name string, vendor vendors.Vendor) (string, error) {
	if mapping, ok := c.mappings[name]; ok {
		if id, ok := mapping.VendorIDs[vendor]; ok {
			return id, nil
		}
		return "", errs.NotSupportedf("model %q not supported for vendor %q", name, vendor)
	}

	if variants, ok := c.models[name]; ok {
		if model, ok := variants[vendor]; ok && model.VendorModelID != "" {
			return model.VendorModelID, nil
		}
		if c.preferred[name] == vendor {
			return name, nil
		}
	}

	return "", errs.NotFoundf("no mapping found for model %q and vendor %q", name, vendor)
}

// ResolveModelID is the idempotent front door for model-identity resolution.
// An id that already is some mapping's vendor-specific identifier for vendor
// passes through unchanged; anything else goes through VendorModelID.
func (c *Catalog) ResolveModelID(id string, vendor vendors.Vendor) (string, error) {
	for _, mapping := range c.mappings {
		if mapping.VendorIDs[vendor] == id {
			return id, nil
		}
	}
	for _, variants := range c.models {
		if model, ok := variants[vendor]; ok && model.VendorModelID == id {
			return id, nil
		}
	}
	return c.VendorModelID(id, vendor)
}

// ResolveNameAndVendor is the reverse lookup from any identifier to its
// canonical name.
//
// Canonical names resolve with vendor Unknown, since one name may map to
// several vendors. Vendor-specific identifiers resolve through the mappings
// first, then through catalog entries carrying an explicit VendorModelID.
func (c *Catalog) ResolveNameAndVendor(id string) (string, vendors.Vendor, error) {
	if _, ok := c.models[id]; ok {
		return id, vendors.Unknown, nil
	}
	if _, ok := c.mappings[id]; ok {
		return id, vendors.Unknown, nil
	}

	for name, mapping := range c.mappings {
		for vendor, vendorID := range mapping.VendorIDs {
			if vendorID == id {
				return name, vendor, nil
			}
		}
	}

	for name, variants := range c.models {
		for vendor, model := range variants {
			if model.VendorModelID == id {
				return name, vendor, nil
			}
		}
	}

	return "", vendors.Unknown, errs.NotFoundf("no model matches identifier %q", id)
}

// defaultCatalog is built once at package initialization; construction
// failures here are programming errors in the static tables below.
var defaultCatalog = mustCatalog()

// Default returns the built-in static catalog. It is shared and read-only.
func Default() *Catalog { return defaultCatalog }

func mustCatalog() *Catalog {
	c, err := NewCatalog(builtinModels(), builtinMappings(), builtinProfileModels())
	if err != nil {
		panic(err)
	}
	return c
}

func builtinModels() []AIModel {
	return []AIModel{
		{
			Name:                   "claude-3-7-sonnet-20250219",
			Vendor:                 vendors.Anthropic,
			Costs:                  mustCosts(4.0, 20.0),
			ContextWindow:          200000,
			MaxOutputTokens:        8192,
			SupportsVision:         true,
			SupportsMessageBatches: true,
			TrainingCutoff:         time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC),
			Description:            "Most expressive model with extended reasoning",
			ComparativeLatency:     "Fast",
		},
		{
			Name:                   "claude-3-5-sonnet-20241022",
			Vendor:                 vendors.Anthropic,
			Costs:                  mustCosts(3.0, 15.0),
			ContextWindow:          200000,
			MaxOutputTokens:        8192,
			SupportsVision:         true,
			SupportsMessageBatches: true,
			TrainingCutoff:         time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Description:            "Most intelligent model",
			ComparativeLatency:     "Fast",
		},
		{
			Name:                   "claude-3-5-haiku-20241022",
			Vendor:                 vendors.Anthropic,
			Costs:                  mustCosts(1.0, 5.0),
			ContextWindow:          200000,
			MaxOutputTokens:        8192,
			SupportsVision:         false,
			SupportsMessageBatches: true,
			TrainingCutoff:         time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Description:            "Fastest current-generation model",
			ComparativeLatency:     "Fastest",
		},
		{
			Name:                   "claude-3-5-haiku-20241022",
			Vendor:                 vendors.AWS,
			Costs:                  mustCosts(1.0, 5.0),
			ContextWindow:          200000,
			MaxOutputTokens:        8192,
			SupportsVision:         false,
			SupportsMessageBatches: true,
			TrainingCutoff:         time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Description:            "Fastest current-generation model",
			ComparativeLatency:     "Fastest",
			VendorModelID:          "anthropic.claude-3-5-haiku-20241022-v1:0",
		},
		{
			Name:                   "claude-3-haiku-20240307",
			Vendor:                 vendors.Anthropic,
			Costs:                  mustCosts(0.25, 1.25),
			ContextWindow:          200000,
			MaxOutputTokens:        8192,
			SupportsVision:         true,
			SupportsMessageBatches: true,
			TrainingCutoff:         time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC),
			Description:            "Fastest and most compact model for near-instant responsiveness",
			ComparativeLatency:     "Fastest",
		},
	}
}

func builtinMappings() []Mapping {
	return []Mapping{
		{
			CanonicalName: "claude-3-7-sonnet-20250219",
			VendorIDs: map[vendors.Vendor]string{
				vendors.Anthropic: "claude-3-7-sonnet-20250219",
				vendors.AWS:       "anthropic.claude-3-7-sonnet-20250219-v1:0",
			},
		},
		{
			CanonicalName: "claude-3-5-sonnet-20241022",
			VendorIDs: map[vendors.Vendor]string{
				vendors.Anthropic: "claude-3-5-sonnet-20241022",
				vendors.AWS:       "anthropic.claude-3-5-sonnet-20240620-v1:0",
			},
		},
		{
			CanonicalName: "claude-3-haiku-20240307",
			VendorIDs: map[vendors.Vendor]string{
				vendors.Anthropic: "claude-3-haiku-20240307",
				vendors.AWS:       "anthropic.claude-3-haiku-20240307-v1:0",
			},
		},
	}
}

// builtinProfileModels lists the models the gateway only serves through a
// cross-region inference profile, not through a direct per-region model id.
func builtinProfileModels() []string {
	return []string{"claude-3-7-sonnet-20250219"}
}
