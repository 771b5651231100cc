// Package anthropic implements the direct-API vendor binding: the request and
// response adapter for the Messages API plus a [Client] that speaks it over
// HTTPS with SSE streaming.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/devconsole/modelbridge/core/catalog"
	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
	"github.com/devconsole/modelbridge/internal/utils"
	"github.com/devconsole/modelbridge/providers/chat"
)

const (
	// defaultBaseURL is the canonical base URL for the Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// apiVersion is the required anthropic-version header value. It
	// version-locks the response format independently of the URL.
	apiVersion = "2023-06-01"
)

// Client implements [chat.ModelClient] against the direct Messages API.
// Use [New] to construct a ready-to-use instance.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	adapter *Adapter
}

// New returns a [Client] initialized from environment variables. It reads
// ANTHROPIC_API_KEY for authentication and ANTHROPIC_API_BASE_URL for the
// endpoint base (defaulting to https://api.anthropic.com/v1 when unset).
// Use [Client.WithAPIKey] and [Client.WithBaseURL] to override these values
// after construction.
func New() *Client {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  os.Getenv("ANTHROPIC_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
		adapter: NewAdapter(),
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns
// the client so calls can be chained. It overrides ANTHROPIC_API_KEY.
func (c *Client) WithAPIKey(apiKey string) *Client {
	c.apiKey = apiKey
	return c
}

// WithBaseURL overrides the API base URL and returns the client so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the client so calls can be chained. Useful for injecting custom
// timeouts, transport layers, or test doubles.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.client = httpClient
	return c
}

// WithCatalog replaces the model catalog used for identifier resolution and
// returns the client so calls can be chained.
func (c *Client) WithCatalog(cat *catalog.Catalog) *Client {
	c.adapter.WithCatalog(cat)
	return c
}

// Vendor reports which vendor this client dispatches to.
func (c *Client) Vendor() vendors.Vendor { return vendors.Anthropic }

// buildHeaders constructs the headers required on every request. x-api-key
// carries the credential (the API does not use Bearer tokens) and
// anthropic-version pins the wire format.
func (c *Client) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: c.apiKey},
		{Key: "anthropic-version", Value: apiVersion},
	}
}

// Converse implements [chat.ModelClient] by sending a synchronous request to
// the Messages API and returning the full response in the neutral format. Any
// failure comes back as a single [errs.ClientError] carrying the cause.
func (c *Client) Converse(ctx context.Context, request *converse.Request) (*converse.Response, error) {
	response, err := c.converse(ctx, request)
	return response, errs.Client("anthropic", "converse", err)
}

func (c *Client) converse(ctx context.Context, request *converse.Request) (*converse.Response, error) {
	wire, err := c.prepare(request)
	if err != nil {
		return nil, err
	}

	// Pass empty apiKey so DoPostSync does not inject a Bearer token; the
	// credential travels in x-api-key instead.
	httpResponse, decoded, err := utils.DoPostSync[wireResponse](
		ctx,
		c.client,
		c.baseURL+messagesEndpoint,
		"",
		wire,
		c.buildHeaders()...,
	)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, fmt.Errorf("empty response from messages API: %s", httpResponse.Status)
	}

	return c.adapter.AdaptResponse(decoded)
}

// ConverseAsync implements [chat.ModelClient] by running Converse on its own
// goroutine. The returned channel delivers exactly one result and is closed.
func (c *Client) ConverseAsync(ctx context.Context, request *converse.Request) <-chan chat.Result {
	results := make(chan chat.Result, 1)
	go func() {
		defer close(results)
		response, err := c.converse(ctx, request)
		results <- chat.Result{
			Response: response,
			Err:      errs.Client("anthropic", "converse_async", err),
		}
	}()
	return results
}

// ConverseStream implements [chat.ModelClient] by sending a streaming request
// (stream=true) and returning a [chat.TextStream] fed by the SSE events as
// they arrive.
//
// Pre-stream errors (validation, missing API key, non-2xx response, network
// failure) are returned immediately. Mid-stream errors are yielded through the
// stream's iterator. The SSE lifecycle is:
//
//	message_start → content_block_start → content_block_delta(s) →
//	content_block_stop → message_delta → message_stop
func (c *Client) ConverseStream(ctx context.Context, request *converse.Request) (*chat.TextStream, error) {
	wire, err := c.prepare(request)
	if err != nil {
		return nil, errs.Client("anthropic", "converse_stream", err)
	}
	wire.Stream = true

	// Body is left open for SSE reading; the iterator below owns closing it.
	httpResponse, err := utils.DoPostStream(ctx, c.client, c.baseURL+messagesEndpoint, "", wire, c.buildHeaders()...)
	if err != nil {
		return nil, errs.Client("anthropic", "converse_stream", err)
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	// Reassembly state shared between the iterator and the Final closure.
	assembly := &wireResponse{Role: "assistant"}
	var thinkingText string

	iterator := func(yield func(string, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			if ctx.Err() != nil {
				yield("", errs.Client("anthropic", "converse_stream", ctx.Err()))
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr != nil {
				// io.EOF before message_stop still ends the stream; the
				// aggregate holds whatever arrived.
				if !errors.Is(sseErr, io.EOF) {
					yield("", errs.Client("anthropic", "converse_stream", fmt.Errorf("SSE read error: %w", sseErr)))
				}
				return
			}

			event, parseErr := unmarshalStreamEvent(payload)
			if parseErr != nil {
				yield("", errs.Client("anthropic", "converse_stream", parseErr))
				return
			}

			switch event.Type {
			case "message_start":
				// Carries the input-token snapshot; output tokens arrive later.
				if event.Message != nil {
					assembly.Usage.InputTokens = event.Message.Usage.InputTokens
				}

			case "content_block_delta":
				if event.Delta == nil {
					continue
				}
				switch event.Delta.Type {
				case "text_delta":
					if event.Delta.Text == "" {
						continue
					}
					appendText(assembly, event.Delta.Text)
					if !yield(event.Delta.Text, nil) {
						return
					}
				case "thinking_delta":
					thinkingText += event.Delta.Thinking
				}

			case "message_delta":
				// Final output token count and stop reason.
				if event.Usage != nil {
					assembly.Usage.OutputTokens = event.Usage.OutputTokens
				}
				if event.Delta != nil && event.Delta.StopReason != "" {
					assembly.StopReason = event.Delta.StopReason
				}

			case "message_stop":
				return

			case "error":
				message := "unknown stream error"
				if event.Error != nil {
					message = event.Error.Message
				}
				yield("", errs.Client("anthropic", "converse_stream", fmt.Errorf("stream error: %s", message)))
				return

			default:
				// content_block_start, content_block_stop, ping, and unknown
				// future events carry nothing this reassembly needs.
			}
		}
	}

	return chat.NewTextStream(iterator, func() *converse.Response {
		// Work on a copy so repeated Final calls stay idempotent.
		final := *assembly
		if thinkingText != "" {
			final.Content = append(final.Content[:len(final.Content):len(final.Content)],
				wireResponseBlock{Type: "thinking", Thinking: thinkingText})
		}
		return responseToNeutral(&final)
	}), nil
}

// prepare validates the request, checks credentials, and adapts to the wire
// shape. Shared by the three operation paths.
func (c *Client) prepare(request *converse.Request) (*wireRequest, error) {
	if c.apiKey == "" {
		return nil, errs.Validationf("ANTHROPIC_API_KEY is not set")
	}
	return c.adapter.buildRequest(request)
}

// appendText folds a text fragment into the single text block of the
// reassembled response, creating it on the first fragment.
func appendText(response *wireResponse, fragment string) {
	for i := range response.Content {
		if response.Content[i].Type == "text" {
			response.Content[i].Text += fragment
			return
		}
	}
	response.Content = append(response.Content, wireResponseBlock{Type: "text", Text: fragment})
}
