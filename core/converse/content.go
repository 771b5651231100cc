package converse

import (
	"encoding/json"

	"github.com/devconsole/modelbridge/core/errs"
)

// BlockKind discriminates the content block variants.
type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockImage    BlockKind = "image"
	BlockDocument BlockKind = "document"
	BlockThinking BlockKind = "thinking"
)

// ImageSource is an inline base64 image payload.
type ImageSource struct {
	MediaType string `json:"media_type"` // image/jpeg, image/png, image/gif, image/webp
	Data      string `json:"data"`       // base64-encoded bytes
}

// ContentBlock is one unit of message payload. It is a tagged union: exactly
// one variant is populated per instance, which the constructors guarantee
// structurally. The zero value is invalid and fails Validate.
type ContentBlock struct {
	kind     BlockKind
	text     string
	image    *ImageSource
	document map[string]any
	thinking *ThinkingTrace
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{kind: BlockText, text: text}
}

// ImageBlock builds an image content block from a media type and base64 data.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{kind: BlockImage, image: &ImageSource{MediaType: mediaType, Data: data}}
}

// DocumentBlock builds a document content block carrying an opaque structured
// payload. The payload shape is vendor-specific and passed through untouched.
func DocumentBlock(payload map[string]any) ContentBlock {
	return ContentBlock{kind: BlockDocument, document: payload}
}

// ThinkingBlock builds an extended-reasoning content block.
func ThinkingBlock(text string) ContentBlock {
	return ContentBlock{kind: BlockThinking, thinking: &ThinkingTrace{Text: text}}
}

// Kind returns the populated variant.
func (b ContentBlock) Kind() BlockKind { return b.kind }

// Text returns the text payload; "" unless Kind is BlockText.
func (b ContentBlock) Text() string { return b.text }

// Image returns the image payload; nil unless Kind is BlockImage.
func (b ContentBlock) Image() *ImageSource { return b.image }

// Document returns the document payload; nil unless Kind is BlockDocument.
func (b ContentBlock) Document() map[string]any { return b.document }

// Thinking returns the reasoning trace; nil unless Kind is BlockThinking.
func (b ContentBlock) Thinking() *ThinkingTrace { return b.thinking }

// Validate reports whether the block carries a populated variant.
func (b ContentBlock) Validate() error {
	switch b.kind {
	case BlockText, BlockImage, BlockDocument, BlockThinking:
		return nil
	}
	return errs.Validationf("content block has no populated variant")
}

// contentBlockJSON is the wire shape of a content block. Only the populated
// variant's field is present; absent variants are omitted, not null-padded.
type contentBlockJSON struct {
	Text     *string        `json:"text,omitempty"`
	Image    *ImageSource   `json:"image,omitempty"`
	Document map[string]any `json:"document,omitempty"`
	Thinking *ThinkingTrace `json:"thinking,omitempty"`
}

// MarshalJSON emits only the populated variant.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	out := contentBlockJSON{}
	switch b.kind {
	case BlockText:
		out.Text = &b.text
	case BlockImage:
		out.Image = b.image
	case BlockDocument:
		out.Document = b.document
	case BlockThinking:
		out.Thinking = b.thinking
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the populated variant. When several fields are
// present (which no supported vendor emits), the first in declaration order
// wins so the "at most one variant" invariant survives decoding.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var in contentBlockJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.Text != nil:
		*b = TextBlock(*in.Text)
	case in.Image != nil:
		*b = ContentBlock{kind: BlockImage, image: in.Image}
	case in.Document != nil:
		*b = DocumentBlock(in.Document)
	case in.Thinking != nil:
		*b = ContentBlock{kind: BlockThinking, thinking: in.Thinking}
	default:
		*b = ContentBlock{}
	}
	return nil
}
