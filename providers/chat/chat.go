// Package chat defines the contracts every vendor implementation satisfies:
// the request/response [Adapter], the [ModelClient] façade with its three
// operation shapes, and the scoped [TextStream] streaming resource.
//
// Implementations live in the per-vendor subpackages; the factory subpackage
// selects one by [vendors.Vendor] value.
package chat

import (
	"context"

	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/vendors"
)

// Adapter translates bidirectionally between the vendor-neutral conversation
// model and one vendor's wire format. AdaptRequest returns the wire request
// value ready for JSON marshaling; AdaptResponse accepts the decoded wire
// response of the same vendor. Passing another vendor's wire value is a
// programming error and fails with a descriptive error, never a panic.
type Adapter interface {
	// Vendor reports which vendor this adapter speaks for.
	Vendor() vendors.Vendor

	// AdaptRequest converts a validated neutral request into the vendor wire
	// request, resolving the model identifier through the catalog.
	AdaptRequest(request *converse.Request) (any, error)

	// AdaptResponse converts a decoded vendor wire response back into the
	// neutral response.
	AdaptResponse(wire any) (*converse.Response, error)
}

// Result delivers the outcome of an asynchronous converse call. Exactly one
// of Response and Err is set.
type Result struct {
	Response *converse.Response
	Err      error
}

// ModelClient binds one vendor to its adapter and transport and exposes the
// three operation shapes of the converse contract.
//
// Every operation validates the request before any network attempt and wraps
// any failure — validation, adaptation, or transport — into a single
// [errs.ClientError] carrying the original cause. A client that does not
// support an operation fails with errs.ErrNotImplemented instead of silently
// degrading.
type ModelClient interface {
	// Vendor reports which vendor this client dispatches to.
	Vendor() vendors.Vendor

	// Converse sends the request and blocks until the full response arrives.
	Converse(ctx context.Context, request *converse.Request) (*converse.Response, error)

	// ConverseAsync sends the request without blocking the caller. The
	// returned channel delivers exactly one Result and is then closed.
	// Each request is independent; no ordering is implied across calls.
	ConverseAsync(ctx context.Context, request *converse.Request) <-chan Result

	// ConverseStream opens a streaming conversation and returns the scoped
	// text stream. Pre-stream failures (validation, adaptation, connection)
	// are returned immediately; mid-stream failures surface through the
	// stream's iterator.
	ConverseStream(ctx context.Context, request *converse.Request) (*TextStream, error)
}
