// Package bedrock implements the managed-gateway vendor binding: the Converse
// API adapter, a bearer-token HTTP transport, and a [Client] that reassembles
// binary eventstream frames into the neutral streaming contract.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/devconsole/modelbridge/core/catalog"
	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
	"github.com/devconsole/modelbridge/internal/utils"
	"github.com/devconsole/modelbridge/providers/chat"
)

const defaultRegion = "us-east-1"

// Client implements [chat.ModelClient] against the managed gateway. Use [New]
// to construct a ready-to-use instance.
//
// Cross-region models are routed through inference profiles: when the catalog
// flags the requested model, the resolved identifier is replaced with the
// profile ARN computed from the client's region and account id. A missing
// account id only fails requests that actually need a profile.
type Client struct {
	runtime   Runtime
	adapter   *Adapter
	catalog   *catalog.Catalog
	region    string
	accountID string
}

// New returns a [Client] initialized from environment variables: AWS_REGION
// (falling back to AWS_DEFAULT_REGION, then us-east-1) for the regional
// endpoint and AWS_ACCOUNT_ID for inference-profile ARNs.
func New() *Client {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = defaultRegion
	}

	return &Client{
		runtime:   newHTTPRuntime(region),
		adapter:   NewAdapter(),
		catalog:   catalog.Default(),
		region:    region,
		accountID: os.Getenv("AWS_ACCOUNT_ID"),
	}
}

// WithRuntime replaces the transport and returns the client so calls can be
// chained. Useful for injecting a signing transport or a test double.
func (c *Client) WithRuntime(runtime Runtime) *Client {
	c.runtime = runtime
	return c
}

// WithRegion overrides the region used for the endpoint and for profile ARNs
// and returns the client so calls can be chained. It rebuilds the default
// transport; an injected runtime should be set afterwards.
func (c *Client) WithRegion(region string) *Client {
	c.region = region
	c.runtime = newHTTPRuntime(region)
	return c
}

// WithAccountID overrides the account id used for inference-profile ARNs and
// returns the client so calls can be chained.
func (c *Client) WithAccountID(accountID string) *Client {
	c.accountID = accountID
	return c
}

// WithCatalog replaces the model catalog used for identifier resolution and
// returns the client so calls can be chained.
func (c *Client) WithCatalog(cat *catalog.Catalog) *Client {
	c.catalog = cat
	c.adapter.WithCatalog(cat)
	return c
}

// Vendor reports which vendor this client dispatches to.
func (c *Client) Vendor() vendors.Vendor { return vendors.AWS }

// Converse implements [chat.ModelClient] by sending a synchronous request to
// the Converse API and returning the full response in the neutral format. Any
// failure comes back as a single [errs.ClientError] carrying the cause.
func (c *Client) Converse(ctx context.Context, request *converse.Request) (*converse.Response, error) {
	response, err := c.converse(ctx, request)
	return response, errs.Client("aws", "converse", err)
}

func (c *Client) converse(ctx context.Context, request *converse.Request) (*converse.Response, error) {
	wire, err := c.prepare(request)
	if err != nil {
		return nil, err
	}

	decoded, err := c.runtime.Converse(ctx, wire)
	if err != nil {
		return nil, err
	}

	return c.adapter.AdaptResponse(decoded)
}

// ConverseAsync implements [chat.ModelClient]. The managed gateway has no
// asynchronous converse operation; the capability gap is reported explicitly
// instead of being simulated.
func (c *Client) ConverseAsync(ctx context.Context, request *converse.Request) <-chan chat.Result {
	results := make(chan chat.Result, 1)
	results <- chat.Result{
		Err: errs.Client("aws", "converse_async",
			fmt.Errorf("%w: asynchronous converse on the managed gateway", errs.ErrNotImplemented)),
	}
	close(results)
	return results
}

// ConverseStream implements [chat.ModelClient] by opening the eventstream
// endpoint and reassembling its frames into text fragments.
//
// Frame handling: messageStart gates on the assistant role, contentBlockDelta
// frames yield text, messageComplete captures any reasoning trace, messageStop
// and metadata fill in the aggregate, and exception frames
// (internalServerException, modelStreamErrorException, validationException,
// throttlingException, serviceUnavailableException) surface through the
// iterator as a [errs.ClientError].
func (c *Client) ConverseStream(ctx context.Context, request *converse.Request) (*chat.TextStream, error) {
	wire, err := c.prepare(request)
	if err != nil {
		return nil, errs.Client("aws", "converse_stream", err)
	}

	body, err := c.runtime.ConverseStream(ctx, wire)
	if err != nil {
		return nil, errs.Client("aws", "converse_stream", err)
	}

	scanner := utils.NewEventStreamScanner(body)

	// Reassembly state shared between the iterator and the Final closure.
	var fullText string
	var thinkingText string
	var stopReason string
	usage := map[string]int(nil)
	metrics := map[string]any(nil)

	iterator := func(yield func(string, error) bool) {
		defer utils.CloseWithLog(body)

		currentRole := ""
		for {
			if ctx.Err() != nil {
				yield("", errs.Client("aws", "converse_stream", ctx.Err()))
				return
			}

			frame, frameErr := scanner.Next()
			if frameErr != nil {
				if !errors.Is(frameErr, io.EOF) {
					yield("", errs.Client("aws", "converse_stream", frameErr))
				}
				return
			}

			if frame.Exception {
				var exception wireException
				_ = json.Unmarshal(frame.Payload, &exception)
				yield("", errs.Client("aws", "converse_stream",
					fmt.Errorf("gateway stream error %s: %s", frame.EventType, exception.Message)))
				return
			}

			switch frame.EventType {
			case "messageStart":
				var start wireMessageStart
				if err := json.Unmarshal(frame.Payload, &start); err == nil {
					currentRole = start.Role
				}

			case "contentBlockDelta":
				// Only assistant content reaches the caller.
				if currentRole != string(converse.RoleAssistant) {
					continue
				}
				var delta wireContentBlockDelta
				if err := json.Unmarshal(frame.Payload, &delta); err != nil {
					yield("", errs.Client("aws", "converse_stream",
						fmt.Errorf("failed to parse contentBlockDelta payload: %w", err)))
					return
				}
				if delta.Delta.Text == "" {
					continue
				}
				fullText += delta.Delta.Text
				if !yield(delta.Delta.Text, nil) {
					return
				}

			case "messageComplete":
				var complete wireMessageComplete
				if err := json.Unmarshal(frame.Payload, &complete); err != nil || complete.Message == nil {
					continue
				}
				for _, block := range complete.Message.Content {
					if block.ReasoningContent != nil && block.ReasoningContent.ReasoningText != nil {
						if thinkingText != "" {
							thinkingText += "\n"
						}
						thinkingText += block.ReasoningContent.ReasoningText.Text
					}
				}

			case "messageStop":
				var stop wireMessageStop
				if err := json.Unmarshal(frame.Payload, &stop); err == nil {
					stopReason = stop.StopReason
				}

			case "metadata":
				var meta wireMetadata
				if err := json.Unmarshal(frame.Payload, &meta); err == nil {
					usage = meta.Usage
					metrics = meta.Metrics
				}

			default:
				// contentBlockStart, contentBlockStop, and unknown future
				// events carry nothing this reassembly needs.
			}
		}
	}

	return chat.NewTextStream(iterator, func() *converse.Response {
		assembly := &wireResponse{
			Output: wireOutput{
				Message: wireResponseMessage{Role: string(converse.RoleAssistant)},
			},
			StopReason: stopReason,
			Usage:      usage,
			Metrics:    metrics,
		}
		if fullText != "" {
			assembly.Output.Message.Content = append(assembly.Output.Message.Content,
				wireResponseBlock{Text: fullText})
		}
		if thinkingText != "" {
			assembly.Output.Message.Content = append(assembly.Output.Message.Content,
				wireResponseBlock{ReasoningContent: &wireReasoningContent{
					ReasoningText: &wireReasoningText{Text: thinkingText},
				}})
		}
		return responseToNeutral(assembly)
	}), nil
}

// prepare validates and adapts the request, then swaps the resolved model id
// for an inference-profile ARN when the catalog requires one.
func (c *Client) prepare(request *converse.Request) (*wireRequest, error) {
	wire, err := c.adapter.buildRequest(request)
	if err != nil {
		return nil, err
	}

	canonical, _, err := c.catalog.ResolveNameAndVendor(request.ModelID)
	if err != nil {
		// Unmapped ids cannot require a profile; ship them as-is.
		return wire, nil
	}

	if c.catalog.RequiresInferenceProfile(canonical) {
		arn, err := c.catalog.InferenceProfileARN(canonical, c.region, c.accountID)
		if err != nil {
			return nil, fmt.Errorf("model %q requires an inference profile: %w", canonical, err)
		}
		wire.ModelID = arn
	}

	return wire, nil
}
