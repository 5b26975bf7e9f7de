// Package x402 implements the server-side request-interception layer of the
// x402 pay-per-request protocol: route matching, 402 challenges, payment
// proof verification, handler gating, and post-response settlement. The
// cryptographic verification and settlement engine is consumed through the
// ResourceServer interfaces; transport glue lives in the nethttp, gin, and
// echo subpackages.
package x402

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/x402-foundation/x402-middleware/go/metrics"
)

// Middleware is the payment lifecycle orchestrator. One instance serves many
// concurrent requests: the route table is immutable after construction and
// the initialization gate is the only shared mutable state.
type Middleware struct {
	server  HTTPResourceServer
	routes  *routeTable
	init    *initGate
	log     *zap.Logger
	metrics metrics.Recorder
}

// Option configures the middleware.
type Option func(*Middleware)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Middleware) {
		m.log = log
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(m *Middleware) {
		m.metrics = recorder
	}
}

// New builds a middleware instance over the given routes and resource
// server. When any route is configured, the server's asynchronous
// initialization starts immediately; requests arriving before it completes
// wait on it, and a failed initialization turns every later request into a
// 503 until the instance is recreated.
func New(routes RoutesConfig, server HTTPResourceServer, opts ...Option) (*Middleware, error) {
	table, err := compileRoutes(routes)
	if err != nil {
		return nil, err
	}

	m := &Middleware{
		server:  server,
		routes:  table,
		log:     zap.NewNop(),
		metrics: metrics.NewNoopRecorder(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if table.hasRoutes() {
		m.init = newInitGate()
		m.init.start(server.Initialize, m.log)
	} else {
		m.init = newSettledGate()
	}

	return m, nil
}

// InitState reports the backend initialization state.
func (m *Middleware) InitState() (InitState, error) {
	return m.init.State()
}

// StaticRoutes returns the static subset of the configured routes, keyed by
// route key. Resource server implementations use this to seed their matcher.
func (m *Middleware) StaticRoutes() map[string]StaticRoute {
	return m.routes.static
}

// DecisionKind discriminates what the transport glue should do next.
type DecisionKind int

const (
	// DecisionPassThrough: no payment concern; invoke the handler directly.
	DecisionPassThrough DecisionKind = iota
	// DecisionRespond: write Decision.Response instead of invoking the handler.
	DecisionRespond
	// DecisionProceed: payment verified; attach Decision.Grant.Info to the
	// request context, invoke the handler with a capturing writer, then call
	// FinalizeSettlement on the captured response.
	DecisionProceed
)

// Decision is the outcome of evaluating a request before the handler runs.
type Decision struct {
	Kind     DecisionKind
	Response *ResponseInstruction
	Grant    *PaymentGrant
}

// PaymentGrant carries a verified payment through handler invocation to
// settlement. Info is the same record placed in the request context; it is
// updated in place when settlement succeeds.
type PaymentGrant struct {
	Payload      PaymentPayload
	Requirements PaymentRequirements
	Info         *PaymentInfo

	id        string
	viaServer bool
}

// Evaluate runs the pre-handler half of the payment lifecycle: the
// initialization gate, dynamic route lookup, the static fast path, proof
// extraction and verification. It never returns an error; every failure is a
// Decision the glue can act on.
func (m *Middleware) Evaluate(ctx context.Context, req RequestAdapter) Decision {
	if err := m.init.Wait(ctx); err != nil {
		m.metrics.IncCounter(metrics.EventUnavailable, nil)
		return m.unavailable()
	}

	method, path := req.GetMethod(), req.GetPath()

	if entry, ok := m.routes.matchDynamic(method, path); ok {
		return m.evaluateDynamic(ctx, req, entry)
	}

	if !m.server.RequiresPayment(method, path) {
		return Decision{Kind: DecisionPassThrough}
	}
	return m.evaluateStatic(ctx, req, method, path)
}

func (m *Middleware) evaluateDynamic(ctx context.Context, req RequestAdapter, entry *dynamicEntry) Decision {
	id := uuid.NewString()
	log := m.log.With(zap.String("paymentId", id), zap.String("path", req.GetPath()))

	options, err := entry.route.Pricer(ctx, req)
	if err != nil {
		log.Error("dynamic pricing failed", zap.String("reason", err.Error()))
		return m.errorResponse(http.StatusInternalServerError, "failed to resolve payment requirements")
	}
	if len(options) == 0 {
		return Decision{Kind: DecisionPassThrough}
	}

	requirements, err := m.server.BuildPaymentRequirementsFromOptions(ctx, options)
	if err != nil {
		log.Error("building payment requirements failed", zap.String("reason", err.Error()))
		return m.errorResponse(http.StatusInternalServerError, "failed to resolve payment requirements")
	}

	info := ResourceInfo{
		URL:         req.GetURL(),
		Description: entry.route.Description,
		MimeType:    entry.route.MimeType,
	}

	header := ExtractPaymentHeader(req)
	if header == "" {
		return m.challenge(requirements, info, "")
	}

	payload, err := DecodePaymentHeader(header)
	if err != nil {
		log.Debug("payment header rejected", zap.String("reason", err.Error()))
		return m.challenge(requirements, info, ErrMsgInvalidPaymentHeader)
	}

	matched := m.server.FindMatchingRequirements(requirements, *payload)
	if matched == nil {
		return m.challenge(requirements, info, ErrMsgNoMatchingRequirements)
	}

	verified, err := m.server.VerifyPayment(ctx, *payload, *matched)
	if err != nil {
		log.Warn("payment verification errored", zap.String("reason", err.Error()))
		return m.challenge(requirements, info, ErrMsgVerificationFailed)
	}
	if !verified.IsValid {
		m.metrics.IncCounter(metrics.EventVerifyRejected, networkLabel(matched.Network))
		reason := verified.InvalidReason
		if reason == "" {
			reason = ErrMsgVerificationFailed
		}
		return m.challenge(requirements, info, reason)
	}

	m.metrics.IncCounter(metrics.EventVerified, networkLabel(matched.Network))

	payer := verified.Payer
	if payer == "" {
		payer = UnknownPayer
	}
	return Decision{
		Kind: DecisionProceed,
		Grant: &PaymentGrant{
			Payload:      *payload,
			Requirements: *matched,
			Info:         &PaymentInfo{Payer: payer, Network: matched.Network},
			id:           id,
		},
	}
}

func (m *Middleware) evaluateStatic(ctx context.Context, req RequestAdapter, method, path string) Decision {
	result := m.server.ProcessHTTPRequest(ctx, HTTPRequestContext{
		Adapter: req,
		Method:  method,
		Path:    path,
	})

	switch result.Type {
	case ResultPaymentError:
		m.metrics.IncCounter(metrics.EventChallenge, nil)
		if result.Response == nil {
			return m.errorResponse(http.StatusInternalServerError, "payment processing failed")
		}
		return Decision{Kind: DecisionRespond, Response: result.Response}

	case ResultPaymentVerified:
		if result.PaymentPayload == nil || result.PaymentRequirements == nil {
			return m.errorResponse(http.StatusInternalServerError, "payment processing failed")
		}
		m.metrics.IncCounter(metrics.EventVerified, networkLabel(result.PaymentRequirements.Network))
		payer := result.Payer
		if payer == "" {
			payer = UnknownPayer
		}
		return Decision{
			Kind: DecisionProceed,
			Grant: &PaymentGrant{
				Payload:      *result.PaymentPayload,
				Requirements: *result.PaymentRequirements,
				Info:         &PaymentInfo{Payer: payer, Network: result.PaymentRequirements.Network},
				id:           uuid.NewString(),
				viaServer:    true,
			},
		}

	default:
		return Decision{Kind: DecisionPassThrough}
	}
}

// FinalizeSettlement runs the post-handler half of the lifecycle. Settlement
// is attempted only for 2xx responses whose context is still live, at most
// once per request. On success the grant's PaymentInfo is upgraded in place
// and the response comes back with settlement headers merged; on any failure
// the original response is returned untouched — the caller was already
// served and is never penalized for a backend settlement problem.
func (m *Middleware) FinalizeSettlement(ctx context.Context, grant *PaymentGrant, resp *BufferedResponse) *BufferedResponse {
	if grant == nil || resp == nil {
		return resp
	}
	if ctx.Err() != nil {
		return resp
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return resp
	}

	log := m.log.With(zap.String("paymentId", grant.id), zap.String("network", string(grant.Requirements.Network)))

	var headers map[string]string
	if grant.viaServer {
		serverHeaders, err := m.server.ProcessSettlement(ctx, grant.Payload, grant.Requirements, resp.Status)
		if err != nil {
			m.metrics.IncCounter(metrics.EventSettlementFailed, networkLabel(grant.Requirements.Network))
			log.Error("payment settlement failed", zap.String("reason", err.Error()))
			return resp
		}
		if len(serverHeaders) == 0 {
			return resp
		}
		if encoded := serverHeaders[HeaderPaymentResponse]; encoded != "" {
			if settle, err := DecodeSettleResponseHeader(encoded); err == nil {
				upgradePaymentInfo(grant.Info, settle)
			}
		}
		headers = serverHeaders
	} else {
		settle, err := m.server.SettlePayment(ctx, grant.Payload, grant.Requirements)
		if err != nil {
			m.metrics.IncCounter(metrics.EventSettlementFailed, networkLabel(grant.Requirements.Network))
			log.Error("payment settlement failed", zap.String("reason", err.Error()))
			return resp
		}
		if !settle.Success {
			m.metrics.IncCounter(metrics.EventSettlementFailed, networkLabel(grant.Requirements.Network))
			log.Error("payment settlement rejected", zap.String("reason", settle.ErrorReason))
			return resp
		}

		encoded, err := EncodeSettleResponseHeader(settle)
		if err != nil {
			log.Error("settlement header encoding failed", zap.String("reason", err.Error()))
			return resp
		}
		upgradePaymentInfo(grant.Info, settle)
		headers = map[string]string{
			HeaderPaymentResponse:       encoded,
			HeaderPaymentResponseLegacy: encoded,
		}
	}

	m.metrics.IncCounter(metrics.EventSettled, networkLabel(grant.Requirements.Network))

	if resp.BodyConsumed() {
		log.Warn("response body already consumed; settled response body will be empty")
	}
	return resp.WithHeaders(headers)
}

// challenge builds a 402 decision carrying the full requirement set in both
// the JSON body and the PAYMENT-REQUIRED header.
func (m *Middleware) challenge(requirements []PaymentRequirements, info ResourceInfo, errorMsg string) Decision {
	m.metrics.IncCounter(metrics.EventChallenge, nil)

	required := m.server.CreatePaymentRequiredResponse(requirements, info, errorMsg)
	body, err := json.Marshal(required)
	if err != nil {
		m.log.Error("challenge encoding failed", zap.String("reason", err.Error()))
		return m.errorResponse(http.StatusInternalServerError, "payment processing failed")
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if encoded, err := EncodePaymentRequiredHeader(required); err == nil {
		headers[HeaderPaymentRequired] = encoded
	}

	return Decision{
		Kind: DecisionRespond,
		Response: &ResponseInstruction{
			Status:  http.StatusPaymentRequired,
			Headers: headers,
			Body:    body,
		},
	}
}

// unavailable is the durable 503 emitted while initialization is failed (or
// a request gave up waiting on it).
func (m *Middleware) unavailable() Decision {
	return m.errorResponse(http.StatusServiceUnavailable, ServiceUnavailableMessage)
}

func (m *Middleware) errorResponse(status int, message string) Decision {
	body, _ := json.Marshal(map[string]string{"error": message})
	return Decision{
		Kind: DecisionRespond,
		Response: &ResponseInstruction{
			Status:  status,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    body,
		},
	}
}

func upgradePaymentInfo(info *PaymentInfo, settle SettleResponse) {
	if info == nil {
		return
	}
	info.Transaction = settle.Transaction
	if settle.Payer != "" {
		info.Payer = settle.Payer
	}
}

func networkLabel(network Network) map[string]string {
	return map[string]string{"network": string(network)}
}
