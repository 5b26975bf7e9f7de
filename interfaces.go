package x402

import (
	"context"
)

// ResourceServer is the verification and settlement backend the middleware
// delegates to. Implementations own all cryptographic and facilitator
// concerns; the middleware only orchestrates the per-request lifecycle.
type ResourceServer interface {
	// Initialize prepares the backend (facilitator discovery, scheme
	// registration). It is called at most once per middleware instance.
	Initialize(ctx context.Context) error

	// BuildPaymentRequirementsFromOptions resolves advertised options into
	// concrete scheme-specific terms. May block on network lookups such as
	// token decimals.
	BuildPaymentRequirementsFromOptions(ctx context.Context, options []PaymentOption) ([]PaymentRequirements, error)

	// FindMatchingRequirements returns the requirement compatible with the
	// submitted proof's declared scheme and network, or nil.
	FindMatchingRequirements(available []PaymentRequirements, payload PaymentPayload) *PaymentRequirements

	// VerifyPayment checks the proof against the matched requirement.
	VerifyPayment(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (VerifyResponse, error)

	// SettlePayment submits the verified payment for on-chain settlement.
	SettlePayment(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (SettleResponse, error)

	// CreatePaymentRequiredResponse builds the 402 challenge payload.
	CreatePaymentRequiredResponse(requirements []PaymentRequirements, info ResourceInfo, errorMsg string) PaymentRequired
}

// HTTPRequestContext carries the request view into the static fast path.
type HTTPRequestContext struct {
	Adapter RequestAdapter
	Method  string
	Path    string
}

// HTTPResultType discriminates static fast path outcomes.
type HTTPResultType string

const (
	// ResultNoPaymentRequired means no static route claimed the request.
	ResultNoPaymentRequired HTTPResultType = "no_payment_required"
	// ResultPaymentError means a response (usually a 402 challenge) must be
	// written instead of invoking the downstream handler.
	ResultPaymentError HTTPResultType = "payment_error"
	// ResultPaymentVerified means the proof was accepted and the handler may
	// run, with settlement to follow.
	ResultPaymentVerified HTTPResultType = "payment_verified"
)

// ResponseInstruction tells the transport glue what to write.
type ResponseInstruction struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// HTTPProcessResult is the outcome of the static fast path.
type HTTPProcessResult struct {
	Type                HTTPResultType
	Response            *ResponseInstruction
	PaymentPayload      *PaymentPayload
	PaymentRequirements *PaymentRequirements
	Payer               string
}

// HTTPResourceServer extends ResourceServer with the bulk operations the
// static route subsystem delegates to: matching, challenge construction, and
// settlement header production all happen inside the server.
type HTTPResourceServer interface {
	ResourceServer

	// RequiresPayment reports whether a static route covers the request.
	RequiresPayment(method, path string) bool

	// ProcessHTTPRequest runs match/decode/verify for static routes and
	// returns response instructions or a verified payment.
	ProcessHTTPRequest(ctx context.Context, reqCtx HTTPRequestContext) HTTPProcessResult

	// ProcessSettlement settles a verified payment when the handler status
	// allows it and returns the settlement headers to merge, or nil when no
	// settlement was attempted.
	ProcessSettlement(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements, status int) (map[string]string, error)
}
