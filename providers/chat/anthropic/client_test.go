package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/errs"
)

func userRequest(text string) *converse.Request {
	return &converse.Request{
		ModelID: "claude-3-haiku-20240307",
		Messages: []converse.Message{
			{Role: converse.RoleUser, Content: []converse.ContentBlock{converse.TextBlock(text)}},
		},
	}
}

// writeSSE writes a typed SSE event and flushes so the client receives it
// immediately. The data payload repeats the type field, which is what the
// event parser works from.
func writeSSE(writer http.ResponseWriter, eventType, data string) {
	fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", eventType, data)
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func TestConverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key header: got %q", got)
		}
		if got := request.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header is missing")
		}

		var body wireRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if body.Model != "claude-3-haiku-20240307" {
			t.Errorf("wire model: got %q", body.Model)
		}
		if body.Stream {
			t.Error("sync request should not set stream")
		}

		writer.Header().Set("Content-Type", "application/json")
		fmt.Fprint(writer, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "Hello there"}],
			"model": "claude-3-haiku-20240307",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`)
	}))
	defer server.Close()

	client := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	response, err := client.Converse(context.Background(), userRequest("Hi"))
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got := response.FirstText(); got != "Hello there" {
		t.Errorf("FirstText: got %q", got)
	}
	if response.Usage["output_tokens"] != 4 {
		t.Errorf("usage: got %v", response.Usage)
	}
}

func TestConverseWrapsFailures(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client := New().WithAPIKey("")
		_, err := client.Converse(context.Background(), userRequest("Hi"))

		var clientErr *errs.ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected a ClientError, got %v", err)
		}
		if clientErr.Vendor != "anthropic" || clientErr.Op != "converse" {
			t.Errorf("ClientError tags: got (%q, %q)", clientErr.Vendor, clientErr.Op)
		}
		if !errors.Is(err, errs.ErrValidation) {
			t.Errorf("cause should unwrap to ErrValidation, got %v", err)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			http.Error(writer, `{"type":"error","error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := New().WithAPIKey("test-key").WithBaseURL(server.URL)
		_, err := client.Converse(context.Background(), userRequest("Hi"))

		var clientErr *errs.ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected a ClientError, got %v", err)
		}
	})
}

func TestConverseAsync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `{"role":"assistant","content":[{"type":"text","text":"async reply"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`)
	}))
	defer server.Close()

	client := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	result, ok := <-client.ConverseAsync(context.Background(), userRequest("Hi"))
	if !ok {
		t.Fatal("result channel closed without delivering")
	}
	if result.Err != nil {
		t.Fatalf("async result: %v", result.Err)
	}
	if got := result.Response.FirstText(); got != "async reply" {
		t.Errorf("FirstText: got %q", got)
	}
}

func TestConverseStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body wireRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if !body.Stream {
			t.Error("streaming request should set stream=true")
		}

		writer.Header().Set("Content-Type", "text/event-stream")
		writer.WriteHeader(http.StatusOK)

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"role":"assistant","usage":{"input_tokens":25,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_start",
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world"}}`)
		writeSSE(writer, "content_block_stop",
			`{"type":"content_block_stop","index":0}`)
		writeSSE(writer, "message_delta",
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`)
		writeSSE(writer, "message_stop",
			`{"type":"message_stop"}`)
	}))
	defer server.Close()

	client := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	stream, err := client.ConverseStream(context.Background(), userRequest("Hi"))
	if err != nil {
		t.Fatalf("ConverseStream: %v", err)
	}

	var fragments []string
	for fragment, iterErr := range stream.Iter() {
		if iterErr != nil {
			t.Fatalf("stream iterator: %v", iterErr)
		}
		fragments = append(fragments, fragment)
	}

	if len(fragments) != 2 || fragments[0] != "Hello" || fragments[1] != " world" {
		t.Fatalf("fragments: got %q", fragments)
	}

	final := stream.Final()
	if final == nil {
		t.Fatal("Final after exhaustion should be non-nil")
	}
	if got := final.FirstText(); got != "Hello world" {
		t.Errorf("reassembled text: got %q", got)
	}
	if final.StopReason != "end_turn" {
		t.Errorf("stop reason: got %q", final.StopReason)
	}
	if final.Usage["input_tokens"] != 25 || final.Usage["output_tokens"] != 5 {
		t.Errorf("usage: got %v", final.Usage)
	}
}

func TestConverseStreamMidStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writer.WriteHeader(http.StatusOK)

		writeSSE(writer, "message_start",
			`{"type":"message_start","message":{"role":"assistant","usage":{"input_tokens":5,"output_tokens":0}}}`)
		writeSSE(writer, "content_block_delta",
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`)
		writeSSE(writer, "error",
			`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	}))
	defer server.Close()

	client := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	stream, err := client.ConverseStream(context.Background(), userRequest("Hi"))
	if err != nil {
		t.Fatalf("ConverseStream: %v", err)
	}

	var fragments []string
	var streamErr error
	for fragment, iterErr := range stream.Iter() {
		if iterErr != nil {
			streamErr = iterErr
			continue
		}
		fragments = append(fragments, fragment)
	}

	if len(fragments) != 1 || fragments[0] != "partial" {
		t.Errorf("fragments before the error: got %q", fragments)
	}

	var clientErr *errs.ClientError
	if !errors.As(streamErr, &clientErr) {
		t.Fatalf("expected a ClientError from the iterator, got %v", streamErr)
	}
	if clientErr.Op != "converse_stream" {
		t.Errorf("ClientError op: got %q", clientErr.Op)
	}
	if stream.Final() != nil {
		t.Error("Final after a mid-stream error should be nil")
	}
}
