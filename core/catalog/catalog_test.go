package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
)

// TestModelLookup covers the basic name lookup paths: known names resolve,
// unknown names fail with ErrNotFound naming the offending id, and the
// deterministic default vendor is the anthropic variant.
func TestModelLookup(t *testing.T) {
	c := Default()

	t.Run("known model", func(t *testing.T) {
		model, err := c.Model("claude-3-haiku-20240307")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if model.Vendor != vendors.Anthropic {
			t.Errorf("vendor: got %q, want %q", model.Vendor, vendors.Anthropic)
		}
		if model.Costs.InputPerMillionTokens != 0.25 {
			t.Errorf("input cost: got %g, want 0.25", model.Costs.InputPerMillionTokens)
		}
	})

	t.Run("unknown model names the id", func(t *testing.T) {
		_, err := c.Model("invalid-model")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "invalid-model") {
			t.Errorf("error should name the offending id: %v", err)
		}
	})

	t.Run("multi-vendor name defaults to anthropic", func(t *testing.T) {
		model, err := c.Model("claude-3-5-haiku-20241022")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if model.Vendor != vendors.Anthropic {
			t.Errorf("default vendor: got %q, want %q", model.Vendor, vendors.Anthropic)
		}
	})

	t.Run("explicit vendor variant", func(t *testing.T) {
		model, err := c.ModelForVendor("claude-3-5-haiku-20241022", vendors.AWS)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if model.VendorModelID != "anthropic.claude-3-5-haiku-20241022-v1:0" {
			t.Errorf("vendor model id: got %q", model.VendorModelID)
		}
	})

	t.Run("missing vendor variant", func(t *testing.T) {
		_, err := c.ModelForVendor("claude-3-haiku-20240307", vendors.AWS)
		if !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestVendorModelID checks the mapping-first resolution order, the fallback
// to a vendor variant's explicit wire id, and the two failure modes: a
// mapping without the requested vendor is ErrNotSupported, no mapping and no
// matching variant is ErrNotFound.
func TestVendorModelID(t *testing.T) {
	c := Default()

	t.Run("mapped id for gateway", func(t *testing.T) {
		id, err := c.VendorModelID("claude-3-haiku-20240307", vendors.AWS)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "anthropic.claude-3-haiku-20240307-v1:0" {
			t.Errorf("id: got %q", id)
		}
	})

	t.Run("mapping without vendor entry", func(t *testing.T) {
		_, err := c.VendorModelID("claude-3-haiku-20240307", vendors.OpenAI)
		if !errors.Is(err, errs.ErrNotSupported) {
			t.Fatalf("expected ErrNotSupported, got %v", err)
		}
	})

	t.Run("no mapping, default vendor matches", func(t *testing.T) {
		// claude-3-5-haiku has no mapping; its default vendor is anthropic,
		// so the name passes through as already vendor-specific.
		id, err := c.VendorModelID("claude-3-5-haiku-20241022", vendors.Anthropic)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "claude-3-5-haiku-20241022" {
			t.Errorf("id: got %q", id)
		}
	})

	t.Run("no mapping, vendor variant carries explicit id", func(t *testing.T) {
		id, err := c.VendorModelID("claude-3-5-haiku-20241022", vendors.AWS)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "anthropic.claude-3-5-haiku-20241022-v1:0" {
			t.Errorf("id: got %q", id)
		}
	})

	t.Run("no mapping, no variant for vendor", func(t *testing.T) {
		_, err := c.VendorModelID("claude-3-5-haiku-20241022", vendors.OpenAI)
		if !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestResolveModelID verifies the idempotent front door: canonical names
// resolve to vendor ids, and already-resolved vendor ids pass through.
func TestResolveModelID(t *testing.T) {
	c := Default()
	const gatewayID = "anthropic.claude-3-haiku-20240307-v1:0"

	id, err := c.ResolveModelID("claude-3-haiku-20240307", vendors.AWS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != gatewayID {
		t.Errorf("resolved id: got %q, want %q", id, gatewayID)
	}

	again, err := c.ResolveModelID(gatewayID, vendors.AWS)
	if err != nil {
		t.Fatalf("unexpected error on passthrough: %v", err)
	}
	if again != gatewayID {
		t.Errorf("passthrough changed the id: got %q", again)
	}
}

// TestResolveNameAndVendor covers the three reverse-lookup phases.
func TestResolveNameAndVendor(t *testing.T) {
	c := Default()

	t.Run("canonical name leaves vendor unknown", func(t *testing.T) {
		name, vendor, err := c.ResolveNameAndVendor("claude-3-5-haiku-20241022")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "claude-3-5-haiku-20241022" || vendor != vendors.Unknown {
			t.Errorf("got (%q, %q)", name, vendor)
		}
	})

	t.Run("mapped vendor id resolves with definite vendor", func(t *testing.T) {
		name, vendor, err := c.ResolveNameAndVendor("anthropic.claude-3-haiku-20240307-v1:0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "claude-3-haiku-20240307" || vendor != vendors.AWS {
			t.Errorf("got (%q, %q)", name, vendor)
		}
	})

	t.Run("catalog vendor_model_id resolves with definite vendor", func(t *testing.T) {
		name, vendor, err := c.ResolveNameAndVendor("anthropic.claude-3-5-haiku-20241022-v1:0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "claude-3-5-haiku-20241022" || vendor != vendors.AWS {
			t.Errorf("got (%q, %q)", name, vendor)
		}
	})

	t.Run("unknown id fails", func(t *testing.T) {
		_, _, err := c.ResolveNameAndVendor("nonexistent-model")
		if !errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestDuplicateEntriesFailConstruction ensures a (name, vendor) collision is a
// construction-time failure, never a silent overwrite.
func TestDuplicateEntriesFailConstruction(t *testing.T) {
	model := AIModel{Name: "m", Vendor: vendors.Anthropic, Costs: mustCosts(1, 2)}
	_, err := NewCatalog([]AIModel{model, model}, nil, nil)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	// The same name under different vendors is fine.
	other := model
	other.Vendor = vendors.AWS
	if _, err := NewCatalog([]AIModel{model, other}, nil, nil); err != nil {
		t.Fatalf("distinct vendors should not collide: %v", err)
	}
}

// TestCalculateCost checks the documented quantization behaviour and the
// negative-input validations.
func TestCalculateCost(t *testing.T) {
	costs, err := NewModelCosts(0.25, 1.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := costs.CalculateCost(1000, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.00150 {
		t.Errorf("cost(1000, 1000): got %.5f, want 0.00150", got)
	}

	got, err = costs.CalculateCost(1_000_000, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.50000 {
		t.Errorf("cost(1M, 1M): got %.5f, want 1.50000", got)
	}

	if _, err := costs.CalculateCost(-1, 0); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("negative input tokens: expected ErrValidation, got %v", err)
	}
	if _, err := costs.CalculateCost(0, -1); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("negative output tokens: expected ErrValidation, got %v", err)
	}

	if _, err := NewModelCosts(-0.1, 1); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("negative input cost: expected ErrValidation, got %v", err)
	}
	if _, err := NewModelCosts(1, -0.1); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("negative output cost: expected ErrValidation, got %v", err)
	}
}

// TestInferenceProfileARN checks the fixed ARN layout and the InvalidArgument
// behaviour for models outside the profile set.
func TestInferenceProfileARN(t *testing.T) {
	c := Default()

	t.Run("profile-required model", func(t *testing.T) {
		arn, err := c.InferenceProfileARN("claude-3-7-sonnet-20250219", "eu-central-1", "123456789")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "arn:aws:bedrock:eu-central-1:123456789:inference-profile/eu.anthropic.claude-3-7-sonnet-20250219-v1:0"
		if arn != want {
			t.Errorf("arn:\n got %q\nwant %q", arn, want)
		}
	})

	t.Run("not flagged fails", func(t *testing.T) {
		_, err := c.InferenceProfileARN("claude-3-haiku-20240307", "eu-central-1", "123456789")
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("requires flag predicate", func(t *testing.T) {
		if !c.RequiresInferenceProfile("claude-3-7-sonnet-20250219") {
			t.Error("claude-3-7-sonnet-20250219 should require a profile")
		}
		if c.RequiresInferenceProfile("claude-3-haiku-20240307") {
			t.Error("claude-3-haiku-20240307 should not require a profile")
		}
	})
}
