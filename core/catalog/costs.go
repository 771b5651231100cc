package catalog

import (
	"math"

	"github.com/devconsole/modelbridge/core/errs"
)

// costPrecision quantizes calculated costs to five decimal places, enough to
// represent per-request costs for the cheapest catalog models without noise
// from binary floating point.
const costPrecision = 1e5

// ModelCosts is the USD pricing for a model, expressed per million tokens.
// Construct with NewModelCosts so negative prices are rejected up front.
type ModelCosts struct {
	InputPerMillionTokens  float64 `json:"input_cost_per_million_tokens" yaml:"input_cost_per_million"`
	OutputPerMillionTokens float64 `json:"output_cost_per_million_tokens" yaml:"output_cost_per_million"`
}

// NewModelCosts validates and builds a ModelCosts value.
func NewModelCosts(inputPerMillion, outputPerMillion float64) (ModelCosts, error) {
	costs := ModelCosts{
		InputPerMillionTokens:  inputPerMillion,
		OutputPerMillionTokens: outputPerMillion,
	}
	return costs, costs.Validate()
}

// Validate rejects negative prices.
func (c ModelCosts) Validate() error {
	if c.InputPerMillionTokens < 0 {
		return errs.Validationf("input cost cannot be negative")
	}
	if c.OutputPerMillionTokens < 0 {
		return errs.Validationf("output cost cannot be negative")
	}
	return nil
}

// CalculateCost returns the USD cost for the given token counts, quantized to
// five decimal places. Negative token counts fail with ErrValidation.
func (c ModelCosts) CalculateCost(inputTokens, outputTokens int) (float64, error) {
	if inputTokens < 0 || outputTokens < 0 {
		return 0, errs.Validationf("token counts cannot be negative")
	}
	total := float64(inputTokens)*c.InputPerMillionTokens/1_000_000 +
		float64(outputTokens)*c.OutputPerMillionTokens/1_000_000
	return math.Round(total*costPrecision) / costPrecision, nil
}

// mustCosts is used by the built-in catalog, whose prices are compile-time
// constants and therefore cannot be negative.
func mustCosts(inputPerMillion, outputPerMillion float64) ModelCosts {
	costs, err := NewModelCosts(inputPerMillion, outputPerMillion)
	if err != nil {
		panic(err)
	}
	return costs
}
