package x402

import "context"

type contextKey struct{}

var paymentInfoKey contextKey

// ContextKeyPaymentInfo is the key gin and echo handlers can use to read the
// payment record from their framework context stores.
const ContextKeyPaymentInfo = "x402PaymentInfo"

// WithPaymentInfo attaches the payment record to the request context. The
// orchestrator calls this before the downstream handler runs, and mutates the
// same record in place once settlement completes.
func WithPaymentInfo(ctx context.Context, info *PaymentInfo) context.Context {
	return context.WithValue(ctx, paymentInfoKey, info)
}

// PaymentInfoFromContext returns the payment record for the current request,
// if the orchestrator verified a payment before invoking the handler.
func PaymentInfoFromContext(ctx context.Context) (*PaymentInfo, bool) {
	info, ok := ctx.Value(paymentInfoKey).(*PaymentInfo)
	return info, ok
}
