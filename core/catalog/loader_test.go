package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
)

const sampleCatalogYAML = `
models:
  - name: claude-3-haiku-20240307
    vendor: anthropic
    input_cost_per_million: 0.25
    output_cost_per_million: 1.25
    context_window: 200000
    max_output_tokens: 8192
    supports_vision: true
    supports_message_batches: true
    training_cutoff: 2023-08-01
    description: Fastest and most compact model
    comparative_latency: Fastest
mappings:
  - name: claude-3-haiku-20240307
    vendor_ids:
      anthropic: claude-3-haiku-20240307
      aws: anthropic.claude-3-haiku-20240307-v1:0
inference_profiles:
  - claude-3-haiku-20240307
`

func writeCatalogFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing catalog file: %v", err)
	}
	return path
}

// TestLoadFile verifies a file-backed catalog preserves the same lookup
// contract as the built-in one.
func TestLoadFile(t *testing.T) {
	c, err := LoadFile(writeCatalogFile(t, sampleCatalogYAML))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	model, err := c.Model("claude-3-haiku-20240307")
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if model.Costs.OutputPerMillionTokens != 1.25 {
		t.Errorf("output cost: got %g, want 1.25", model.Costs.OutputPerMillionTokens)
	}
	if model.TrainingCutoff.Year() != 2023 {
		t.Errorf("training cutoff year: got %d, want 2023", model.TrainingCutoff.Year())
	}

	id, err := c.ResolveModelID("claude-3-haiku-20240307", vendors.AWS)
	if err != nil {
		t.Fatalf("ResolveModelID: %v", err)
	}
	if id != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("resolved id: got %q", id)
	}

	if !c.RequiresInferenceProfile("claude-3-haiku-20240307") {
		t.Error("inference_profiles entry was not honored")
	}
}

// TestLoadFileRejectsBadEntries covers the loud-failure paths: unknown vendor
// names, negative costs, and duplicate (name, vendor) pairs.
func TestLoadFileRejectsBadEntries(t *testing.T) {
	t.Run("unknown vendor", func(t *testing.T) {
		_, err := LoadFile(writeCatalogFile(t, `
models:
  - name: m
    vendor: azure
    input_cost_per_million: 1
    output_cost_per_million: 1
`))
		if !errors.Is(err, errs.ErrNotSupported) {
			t.Fatalf("expected ErrNotSupported, got %v", err)
		}
	})

	t.Run("negative cost", func(t *testing.T) {
		_, err := LoadFile(writeCatalogFile(t, `
models:
  - name: m
    vendor: anthropic
    input_cost_per_million: -1
    output_cost_per_million: 1
`))
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("duplicate entry", func(t *testing.T) {
		_, err := LoadFile(writeCatalogFile(t, `
models:
  - name: m
    vendor: anthropic
    input_cost_per_million: 1
    output_cost_per_million: 1
  - name: m
    vendor: anthropic
    input_cost_per_million: 2
    output_cost_per_million: 2
`))
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
