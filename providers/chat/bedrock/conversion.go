package bedrock

import (
	"strings"

	"github.com/devconsole/modelbridge/core/catalog"
	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
)

// Adapter translates between the neutral conversation model and the managed
// gateway's Converse API wire format.
type Adapter struct {
	catalog *catalog.Catalog
}

// NewAdapter returns an Adapter backed by the built-in catalog.
func NewAdapter() *Adapter {
	return &Adapter{catalog: catalog.Default()}
}

// WithCatalog replaces the model catalog and returns the adapter so calls can
// be chained.
func (a *Adapter) WithCatalog(c *catalog.Catalog) *Adapter {
	a.catalog = c
	return a
}

// Vendor reports the vendor this adapter speaks for.
func (a *Adapter) Vendor() vendors.Vendor { return vendors.AWS }

// AdaptRequest converts a neutral request into a Converse API request body.
// The returned value is a *wireRequest behind the shared any-typed contract.
func (a *Adapter) AdaptRequest(request *converse.Request) (any, error) {
	return a.buildRequest(request)
}

func (a *Adapter) buildRequest(request *converse.Request) (*wireRequest, error) {
	if request == nil {
		return nil, errs.Validationf("request is nil")
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	model, err := a.catalog.ResolveModelID(request.ModelID, vendors.AWS)
	if err != nil {
		return nil, err
	}

	wire := &wireRequest{
		ModelID:  model,
		Messages: buildMessages(request.Messages),
	}

	if request.System != "" {
		wire.System = []wireSystemBlock{{Text: request.System}}
	}

	// The inferenceConfig block is only attached when at least one knob is
	// explicitly set; the gateway applies its own defaults otherwise.
	if cfg := request.Inference; cfg != nil {
		inference := &wireInferenceConfig{
			Temperature:   cfg.Temperature,
			TopP:          cfg.TopP,
			MaxTokens:     cfg.MaxTokens,
			StopSequences: cfg.StopSequences,
		}
		if inference.Temperature != nil || inference.TopP != nil ||
			inference.MaxTokens != nil || len(inference.StopSequences) > 0 {
			wire.InferenceConfig = inference
		}
	}

	// Extended reasoning rides in additionalModelRequestFields and is only
	// honored by the claude-3-7 family, so it is gated on the model id rather
	// than sent blindly.
	if request.ThinkingEnabled && strings.Contains(request.ModelID, "claude-3-7") {
		wire.AdditionalModelRequestFields = map[string]any{
			"reasoning_config": wireReasoningConfig{
				Type:         "enabled",
				BudgetTokens: request.ThinkingBudgetOrDefault(),
			},
		}
	}

	return wire, nil
}

// AdaptResponse converts a decoded Converse API response back into the
// neutral response. It accepts the *wireResponse produced by the transport
// layer; any other value is a programming error.
func (a *Adapter) AdaptResponse(wire any) (*converse.Response, error) {
	response, ok := wire.(*wireResponse)
	if !ok {
		return nil, errs.Validationf("expected a bedrock wire response, got %T", wire)
	}
	return responseToNeutral(response), nil
}

// buildMessages keeps only text blocks; the Converse request path has no
// neutral representation for the other block kinds yet.
func buildMessages(messages []converse.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, message := range messages {
		var content []wireTextBlock
		for _, block := range message.Content {
			if block.Kind() == converse.BlockText {
				content = append(content, wireTextBlock{Text: block.Text()})
			}
		}
		out = append(out, wireMessage{
			Role:    string(message.Role),
			Content: content,
		})
	}
	return out
}

// responseToNeutral maps the gateway response onto the neutral shape. Text
// blocks become assistant message content; reasoning blocks feed both the
// top-level trace and a thinking content block.
func responseToNeutral(response *wireResponse) *converse.Response {
	var blocks []converse.ContentBlock
	var thinking string
	for _, block := range response.Output.Message.Content {
		switch {
		case block.Text != "":
			blocks = append(blocks, converse.TextBlock(block.Text))
		case block.ReasoningContent != nil && block.ReasoningContent.ReasoningText != nil:
			if thinking != "" {
				thinking += "\n"
			}
			thinking += block.ReasoningContent.ReasoningText.Text
		}
	}

	role := converse.Role(response.Output.Message.Role)
	if role == "" {
		role = converse.RoleAssistant
	}

	neutral := &converse.Response{
		StopReason: response.StopReason,
		Usage:      response.Usage,
		Metrics:    response.Metrics,
	}
	if len(blocks) > 0 {
		neutral.Messages = []converse.Message{{Role: role, Content: blocks}}
	}
	if thinking != "" {
		neutral.Thinking = &converse.ThinkingTrace{Text: thinking}
	}
	return neutral
}
