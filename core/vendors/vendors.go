// Package vendors defines the closed set of supported backend providers.
package vendors

import "github.com/devconsole/modelbridge/core/errs"

// Vendor identifies a backend provider. The set is immutable and process-wide.
type Vendor string

const (
	// Unknown is the zero value, used by reverse lookups when a canonical
	// name maps to more than one vendor.
	Unknown Vendor = ""

	// Anthropic is the direct-to-provider HTTPS Messages API.
	Anthropic Vendor = "anthropic"

	// AWS is the managed inference gateway (Bedrock Converse API).
	AWS Vendor = "aws"

	// OpenAI is reserved. No adapter or client implementation exists; the
	// factories fail with ErrNotSupported for it.
	OpenAI Vendor = "openai"
)

// All lists the supported vendors in a stable order.
func All() []Vendor { return []Vendor{Anthropic, AWS, OpenAI} }

// Parse converts a vendor name into a Vendor, failing with ErrNotSupported
// for names outside the closed set. Matching is case-sensitive and exact,
// like every other identity lookup in this system.
func Parse(name string) (Vendor, error) {
	switch Vendor(name) {
	case Anthropic, AWS, OpenAI:
		return Vendor(name), nil
	}
	return Unknown, errs.NotSupportedf("unknown vendor %q", name)
}

// String returns the wire name of the vendor.
func (v Vendor) String() string { return string(v) }
