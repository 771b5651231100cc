package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/devconsole/modelbridge/core/catalog"
	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
)

// Adapter translates between the neutral conversation model and the Messages
// API wire format. Model identifiers are resolved through the catalog, so a
// canonical name and a raw vendor id are both accepted.
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
func (a *Adapter) Vendor() vendors.Vendor { return vendors.Anthropic }

// AdaptRequest converts a neutral request into a Messages API request body.
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

	model, err := a.catalog.ResolveModelID(request.ModelID, vendors.Anthropic)
	if err != nil {
		return nil, err
	}

	messages, err := buildMessages(request.Messages)
	if err != nil {
		return nil, err
	}

	wire := &wireRequest{
		Model:     model,
		Messages:  messages,
		System:    request.System,
		MaxTokens: request.Inference.MaxTokensOrDefault(),
	}

	if cfg := request.Inference; cfg != nil {
		wire.Temperature = cfg.Temperature
		wire.TopP = cfg.TopP
		wire.StopSequences = cfg.StopSequences
	}

	// The direct API accepts the thinking block on any model; gating by model
	// family is the managed gateway's concern, not this adapter's.
	if request.ThinkingEnabled {
		wire.Thinking = &wireThinking{
			Type:         "enabled",
			BudgetTokens: request.ThinkingBudgetOrDefault(),
		}
	}

	return wire, nil
}

// AdaptResponse converts a decoded Messages API response back into the
// neutral response. It accepts the *wireResponse produced by the transport
// layer; any other value is a programming error.
func (a *Adapter) AdaptResponse(wire any) (*converse.Response, error) {
	response, ok := wire.(*wireResponse)
	if !ok {
		return nil, errs.Validationf("expected an anthropic wire response, got %T", wire)
	}
	return responseToNeutral(response), nil
}

// buildMessages converts neutral messages to wire messages. A message whose
// content is a single text block collapses to the compact bare-string form;
// anything else becomes an explicit content-block array.
func buildMessages(messages []converse.Message) ([]wireMessage, error) {
	out := make([]wireMessage, 0, len(messages))
	for i, message := range messages {
		content, err := buildContent(message.Content)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, wireMessage{
			Role:    string(message.Role),
			Content: content,
		})
	}
	return out, nil
}

func buildContent(blocks []converse.ContentBlock) (json.RawMessage, error) {
	if len(blocks) == 1 && blocks[0].Kind() == converse.BlockText {
		return json.Marshal(blocks[0].Text())
	}

	wireBlocks := make([]wireContentBlock, 0, len(blocks))
	for _, block := range blocks {
		converted, err := buildContentBlock(block)
		if err != nil {
			return nil, err
		}
		wireBlocks = append(wireBlocks, converted)
	}
	return json.Marshal(wireBlocks)
}

func buildContentBlock(block converse.ContentBlock) (wireContentBlock, error) {
	switch block.Kind() {
	case converse.BlockText:
		return wireContentBlock{Type: "text", Text: block.Text()}, nil

	case converse.BlockImage:
		image := block.Image()
		return wireContentBlock{
			Type: "image",
			Source: &wireSource{
				Type:      "base64",
				MediaType: image.MediaType,
				Data:      image.Data,
			},
		}, nil

	case converse.BlockDocument:
		// Document payloads are vendor-shaped already; lift the source fields
		// out of the opaque map.
		source := &wireSource{Type: "base64"}
		if payload := block.Document(); payload != nil {
			if mediaType, ok := payload["media_type"].(string); ok {
				source.MediaType = mediaType
			}
			if data, ok := payload["data"].(string); ok {
				source.Data = data
			}
		}
		return wireContentBlock{Type: "document", Source: source}, nil

	case converse.BlockThinking:
		return wireContentBlock{Type: "thinking", Thinking: block.Thinking().Text}, nil
	}

	return wireContentBlock{}, errs.Validationf("content block has no populated variant")
}

// responseToNeutral maps a wire response onto the neutral shape: text blocks
// become one assistant message, thinking blocks feed the reasoning trace, and
// usage counters are surfaced verbatim.
func responseToNeutral(response *wireResponse) *converse.Response {
	var blocks []converse.ContentBlock
	var thinking string
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			blocks = append(blocks, converse.TextBlock(block.Text))
		case "thinking":
			if thinking != "" {
				thinking += "\n"
			}
			thinking += block.Thinking
		}
	}

	neutral := &converse.Response{
		StopReason: response.StopReason,
		Usage: map[string]int{
			"input_tokens":  response.Usage.InputTokens,
			"output_tokens": response.Usage.OutputTokens,
		},
	}
	if len(blocks) > 0 {
		neutral.Messages = []converse.Message{{Role: converse.RoleAssistant, Content: blocks}}
	}
	if thinking != "" {
		neutral.Thinking = &converse.ThinkingTrace{Text: thinking}
	}
	return neutral
}
