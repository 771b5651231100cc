package anthropic

import "encoding/json"

/*
	MESSAGES API - REQUEST TYPES
*/

// wireRequest is the request body for the Messages API.
type wireRequest struct {
	Model         string        `json:"model"`
	Messages      []wireMessage `json:"messages"`
	System        string        `json:"system,omitempty"`
	MaxTokens     int           `json:"max_tokens"` // Required on every request
	Temperature   *float64      `json:"temperature,omitempty"`
	TopP          *float64      `json:"top_p,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
	Stream        bool          `json:"stream,omitempty"`
	Thinking      *wireThinking `json:"thinking,omitempty"`
}

// wireThinking enables extended thinking with a fixed token budget.
type wireThinking struct {
	Type         string `json:"type"` // "enabled"
	BudgetTokens int    `json:"budget_tokens"`
}

// wireMessage is a single conversation turn. Content is either a bare JSON
// string (single text block, the compact form the API also accepts) or an
// array of content blocks.
type wireMessage struct {
	Role    string          `json:"role"` // "user" or "assistant"
	Content json.RawMessage `json:"content"`
}

// wireContentBlock is a discriminated union via the Type field:
//   - "text": Text
//   - "image", "document": Source
//   - "thinking": Thinking
type wireContentBlock struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	Source   *wireSource `json:"source,omitempty"`
	Thinking string      `json:"thinking,omitempty"`
}

// wireSource is an inline base64 media payload for image and document blocks.
type wireSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
}

/*
	MESSAGES API - RESPONSE TYPES
*/

// wireResponse is the response body of the Messages API.
type wireResponse struct {
	ID           string              `json:"id"`
	Type         string              `json:"type"` // "message"
	Role         string              `json:"role"` // "assistant"
	Content      []wireResponseBlock `json:"content"`
	Model        string              `json:"model"`
	StopReason   string              `json:"stop_reason"`
	StopSequence string              `json:"stop_sequence,omitempty"`
	Usage        wireUsage           `json:"usage"`
}

// wireResponseBlock is a response content block. Unknown Type values are
// skipped during conversion for forward-compatibility.
type wireResponseBlock struct {
	Type     string `json:"type"` // "text", "thinking"
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

// wireUsage reports token consumption for a single request.
type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

/*
	MESSAGES API - STREAM EVENT TYPES
*/

// wireStreamEvent is the envelope for one SSE payload. The Type field selects
// which of the optional members is populated.
type wireStreamEvent struct {
	Type    string           `json:"type"`
	Message *wireStreamStart `json:"message,omitempty"` // message_start
	Delta   *wireStreamDelta `json:"delta,omitempty"`   // content_block_delta, message_delta
	Usage   *wireUsage       `json:"usage,omitempty"`   // message_delta
	Error   *wireStreamError `json:"error,omitempty"`   // error
	Index   int              `json:"index,omitempty"`
}

// wireStreamStart is the message snapshot carried by message_start.
type wireStreamStart struct {
	Role  string    `json:"role"`
	Usage wireUsage `json:"usage"`
}

// wireStreamDelta carries incremental content or the final stop reason.
type wireStreamDelta struct {
	Type       string `json:"type"` // "text_delta", "thinking_delta"
	Text       string `json:"text,omitempty"`
	Thinking   string `json:"thinking,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

// wireStreamError is a server-side failure reported mid-stream.
type wireStreamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
