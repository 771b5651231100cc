package bedrock

/*
	CONVERSE API - REQUEST TYPES
*/

// wireRequest is the request body for the managed gateway's Converse API.
// The model identifier travels in the URL path, not in the body.
type wireRequest struct {
	Messages                     []wireMessage        `json:"messages"`
	System                       []wireSystemBlock    `json:"system,omitempty"`
	InferenceConfig              *wireInferenceConfig `json:"inferenceConfig,omitempty"`
	AdditionalModelRequestFields map[string]any       `json:"additionalModelRequestFields,omitempty"`

	// ModelID is the resolved wire-level identifier used to build the request
	// URL. It never serializes into the body.
	ModelID string `json:"-"`
}

// wireMessage is one conversation turn. The gateway only accepts user and
// assistant roles here; the system prompt has its own top-level field.
type wireMessage struct {
	Role    string          `json:"role"`
	Content []wireTextBlock `json:"content"`
}

// wireTextBlock is a text content block in a request.
type wireTextBlock struct {
	Text string `json:"text"`
}

// wireSystemBlock is one entry of the top-level system field.
type wireSystemBlock struct {
	Text string `json:"text"`
}

// wireInferenceConfig is the camelCase inference block. Only explicitly set
// fields go on the wire.
type wireInferenceConfig struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	MaxTokens     *int     `json:"maxTokens,omitempty"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

// wireReasoningConfig enables extended reasoning through the
// additionalModelRequestFields escape hatch. Field names here are snake_case;
// the gateway passes them to the model untranslated.
type wireReasoningConfig struct {
	Type         string `json:"type"` // "enabled"
	BudgetTokens int    `json:"budget_tokens"`
}

/*
	CONVERSE API - RESPONSE TYPES
*/

// wireResponse is the response body of the Converse API.
type wireResponse struct {
	Output     wireOutput     `json:"output"`
	StopReason string         `json:"stopReason"`
	Usage      map[string]int `json:"usage,omitempty"`
	Metrics    map[string]any `json:"metrics,omitempty"`
}

type wireOutput struct {
	Message wireResponseMessage `json:"message"`
}

type wireResponseMessage struct {
	Role    string              `json:"role"`
	Content []wireResponseBlock `json:"content"`
}

// wireResponseBlock is a response content block: plain text or a reasoning
// trace. Blocks carrying neither are skipped during conversion.
type wireResponseBlock struct {
	Text             string                `json:"text,omitempty"`
	ReasoningContent *wireReasoningContent `json:"reasoningContent,omitempty"`
}

type wireReasoningContent struct {
	ReasoningText *wireReasoningText `json:"reasoningText,omitempty"`
}

type wireReasoningText struct {
	Text string `json:"text"`
}

/*
	CONVERSE STREAM - EVENT PAYLOAD TYPES

	The streaming endpoint frames events in the binary eventstream encoding;
	each frame's payload is one of the JSON shapes below, selected by the
	frame's event type.
*/

// wireMessageStart is the payload of a messageStart event.
type wireMessageStart struct {
	Role string `json:"role"`
}

// wireContentBlockDelta is the payload of a contentBlockDelta event.
type wireContentBlockDelta struct {
	Delta             wireDelta `json:"delta"`
	ContentBlockIndex int       `json:"contentBlockIndex,omitempty"`
}

type wireDelta struct {
	Text string `json:"text,omitempty"`
}

// wireMessageComplete is the payload of a messageComplete event, which
// carries the assembled message including any reasoning blocks.
type wireMessageComplete struct {
	Message *wireResponseMessage `json:"message,omitempty"`
}

// wireMessageStop is the payload of a messageStop event.
type wireMessageStop struct {
	StopReason string `json:"stopReason"`
}

// wireMetadata is the payload of a metadata event, delivered after
// messageStop with the usage and latency counters.
type wireMetadata struct {
	Usage   map[string]int `json:"usage,omitempty"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// wireException is the payload of any exception frame
// (internalServerException, modelStreamErrorException, validationException,
// throttlingException, serviceUnavailableException).
type wireException struct {
	Message string `json:"message"`
}
