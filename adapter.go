package x402

import (
	"context"
	"net/url"
)

// RequestAdapter is a read-only view over the host framework's request
// object. The core engine only ever talks to requests through this interface,
// so the same lifecycle runs unchanged under net/http, gin, and echo.
//
// Implementations must never mutate the underlying request.
type RequestAdapter interface {
	// GetHeader returns the first value of the named header, or "" when the
	// header is absent.
	GetHeader(name string) string
	GetMethod() string
	GetPath() string
	GetURL() string
	// GetAcceptHeader returns the Accept header, or "" when unset.
	GetAcceptHeader() string
	// GetUserAgent returns the User-Agent header, or "" when unset.
	GetUserAgent() string
	// GetQueryParams returns the decoded query parameters. Repeated keys keep
	// their first-seen order within each value slice.
	GetQueryParams() url.Values
	// GetQueryParam returns the first value for the named parameter and
	// whether the parameter was present at all.
	GetQueryParam(name string) (string, bool)
}

// BodyPeeker is an optional RequestAdapter capability. PeekBody buffers the
// request body and hands back a copy while restoring the original stream, so
// a dynamic pricing function can inspect the body without starving the
// downstream handler. Implementations buffer at most once.
type BodyPeeker interface {
	PeekBody() ([]byte, error)
}

// PricingFunc computes the payment options for a single request. Returning a
// nil or empty slice means the request is served without payment. The adapter
// it receives supports BodyPeeker where the host framework allows it.
type PricingFunc func(ctx context.Context, req RequestAdapter) ([]PaymentOption, error)
