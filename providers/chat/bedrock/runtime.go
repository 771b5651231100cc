package bedrock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/internal/utils"
)

// Runtime is the transport behind the managed gateway. The default
// implementation speaks HTTPS with bearer-token auth; tests and callers with
// their own signing stack can inject a replacement via
// [Client.WithRuntime].
type Runtime interface {
	// Converse posts the request body to the model's converse endpoint and
	// returns the decoded response.
	Converse(ctx context.Context, request *wireRequest) (*wireResponse, error)

	// ConverseStream posts to the converse-stream endpoint and returns the
	// raw eventstream body. The caller owns closing it.
	ConverseStream(ctx context.Context, request *wireRequest) (io.ReadCloser, error)
}

const (
	// bearerTokenEnv holds the gateway API key used by the default runtime.
	bearerTokenEnv = "AWS_BEARER_TOKEN_BEDROCK"

	// endpointFormat is the per-region runtime endpoint.
	endpointFormat = "https://bedrock-runtime.%s.amazonaws.com"
)

// httpRuntime is the default [Runtime]: plain HTTPS against the regional
// runtime endpoint, authenticated with the bearer token from
// AWS_BEARER_TOKEN_BEDROCK.
type httpRuntime struct {
	baseURL string
	token   string
	client  *http.Client
}

// newHTTPRuntime builds the default runtime for region. The token is read
// lazily per request so late environment setup still works.
func newHTTPRuntime(region string) *httpRuntime {
	return &httpRuntime{
		baseURL: fmt.Sprintf(endpointFormat, region),
		client:  &http.Client{},
	}
}

func (r *httpRuntime) bearerToken() (string, error) {
	if r.token != "" {
		return r.token, nil
	}
	token := os.Getenv(bearerTokenEnv)
	if token == "" {
		return "", errs.Validationf("%s is not set", bearerTokenEnv)
	}
	return token, nil
}

// modelURL builds the per-model endpoint URL. Model identifiers can be full
// inference-profile ARNs, so the id is path-escaped.
func (r *httpRuntime) modelURL(modelID, operation string) string {
	return fmt.Sprintf("%s/model/%s/%s", r.baseURL, url.PathEscape(modelID), operation)
}

func (r *httpRuntime) Converse(ctx context.Context, request *wireRequest) (*wireResponse, error) {
	token, err := r.bearerToken()
	if err != nil {
		return nil, err
	}

	httpResponse, decoded, err := utils.DoPostSync[wireResponse](
		ctx,
		r.client,
		r.modelURL(request.ModelID, "converse"),
		token,
		request,
	)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, fmt.Errorf("empty response from converse endpoint: %s", httpResponse.Status)
	}
	return decoded, nil
}

func (r *httpRuntime) ConverseStream(ctx context.Context, request *wireRequest) (io.ReadCloser, error) {
	token, err := r.bearerToken()
	if err != nil {
		return nil, err
	}

	httpResponse, err := utils.DoPostStream(
		ctx,
		r.client,
		r.modelURL(request.ModelID, "converse-stream"),
		token,
		request,
	)
	if err != nil {
		return nil, err
	}
	return httpResponse.Body, nil
}
