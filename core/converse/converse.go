// Package converse defines the vendor-neutral conversation data model: content
// blocks, messages, inference configuration, and the request/response pair
// that every vendor adapter translates to and from its own wire format.
//
// Validation is eager. Request.Validate and InferenceConfig.Validate are
// called by the client façade before any network attempt, so malformed input
// never reaches a provider.
package converse

import (
	"encoding/json"

	"github.com/devconsole/modelbridge/core/errs"
)

const (
	// DefaultMaxTokens is substituted when a request carries no inference
	// configuration or no max_tokens value. Providers that require the field
	// on the wire (the direct API does) receive this value.
	DefaultMaxTokens = 500

	// MaxTokensLimit is the upper bound accepted for max_tokens.
	MaxTokensLimit = 8192

	// DefaultThinkingBudget is the extended-reasoning token budget used when
	// thinking is enabled without an explicit budget.
	DefaultThinkingBudget = 16000
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a conversation. Content must be non-empty for any
// message sent in a request.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// InferenceConfig carries the optional inference knobs. Nil pointer fields
// mean "use the provider default"; adapters only put explicitly set fields on
// the wire.
type InferenceConfig struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	MaxTokens     *int     `json:"max_tokens,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
}

// Validate checks every set field against its documented bounds:
// temperature and top_p in [0,1], max_tokens in (0, MaxTokensLimit].
func (c *InferenceConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 1) {
		return errs.Validationf("temperature must be between 0 and 1, got %g", *c.Temperature)
	}
	if c.TopP != nil && (*c.TopP < 0 || *c.TopP > 1) {
		return errs.Validationf("top_p must be between 0 and 1, got %g", *c.TopP)
	}
	if c.MaxTokens != nil {
		if *c.MaxTokens <= 0 {
			return errs.Validationf("max_tokens must be positive, got %d", *c.MaxTokens)
		}
		if *c.MaxTokens > MaxTokensLimit {
			return errs.Validationf("max_tokens cannot exceed %d, got %d", MaxTokensLimit, *c.MaxTokens)
		}
	}
	return nil
}

// MaxTokensOrDefault returns the configured max_tokens, or DefaultMaxTokens
// when the configuration or the field is absent.
func (c *InferenceConfig) MaxTokensOrDefault() int {
	if c == nil || c.MaxTokens == nil {
		return DefaultMaxTokens
	}
	return *c.MaxTokens
}

// Request is a vendor-neutral conversation request. ModelID may be either a
// canonical model name or an already vendor-specific identifier; the catalog
// resolves it either way.
type Request struct {
	ModelID         string           `json:"model_id"`
	Messages        []Message        `json:"messages"`
	System          string           `json:"system,omitempty"`
	Inference       *InferenceConfig `json:"inference_config,omitempty"`
	ThinkingEnabled bool             `json:"thinking_enabled,omitempty"`
	ThinkingBudget  int              `json:"thinking_budget,omitempty"`
}

// Validate rejects requests with an empty model id, no messages, any message
// with empty content, or an out-of-range inference configuration.
func (r *Request) Validate() error {
	if r.ModelID == "" {
		return errs.Validationf("model id is required")
	}
	if len(r.Messages) == 0 {
		return errs.Validationf("at least one message is required")
	}
	for i, msg := range r.Messages {
		if len(msg.Content) == 0 {
			return errs.Validationf("message %d has empty content", i)
		}
	}
	return r.Inference.Validate()
}

// ThinkingBudgetOrDefault returns the configured extended-reasoning budget,
// or DefaultThinkingBudget when unset.
func (r *Request) ThinkingBudgetOrDefault() int {
	if r.ThinkingBudget > 0 {
		return r.ThinkingBudget
	}
	return DefaultThinkingBudget
}

// EstimateTokens gives a rough token count for the request: one token per six
// characters, minimum one per message. Good enough for pre-flight cost
// ballparks; never used for billing.
func (r *Request) EstimateTokens() int {
	countTokens := func(text string) int {
		n := len(text) / 6
		if n < 1 {
			return 1
		}
		return n
	}

	total := 0
	for _, msg := range r.Messages {
		joined := ""
		for _, block := range msg.Content {
			if block.Kind() == BlockText {
				if joined != "" {
					joined += " "
				}
				joined += block.Text()
			}
		}
		total += countTokens(joined)
	}
	if r.System != "" {
		total += countTokens(r.System)
	}
	return total
}

// ThinkingTrace is an extended-reasoning trace returned by a model.
type ThinkingTrace struct {
	Text string `json:"text"`
}

// Response is a vendor-neutral conversation response. Usage and Metrics are
// surfaced verbatim from the provider when present.
type Response struct {
	Messages   []Message      `json:"messages"`
	StopReason string         `json:"stop_reason,omitempty"`
	Usage      map[string]int `json:"usage,omitempty"`
	Metrics    map[string]any `json:"metrics,omitempty"`
	Thinking   *ThinkingTrace `json:"thinking,omitempty"`
}

// FirstText returns the text content of the first message, joining multiple
// text blocks with newlines. Returns "" for an empty response. This is the
// value the CLI caller contract prints to standard output.
func (r *Response) FirstText() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	out := ""
	for _, block := range r.Messages[0].Content {
		if block.Kind() != BlockText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += block.Text()
	}
	return out
}

// compile-time check that content blocks round-trip through encoding/json.
var (
	_ json.Marshaler   = ContentBlock{}
	_ json.Unmarshaler = &ContentBlock{}
)
