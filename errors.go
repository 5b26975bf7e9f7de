package x402

import "fmt"

// PaymentError represents a payment-specific error
type PaymentError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeInvalidPayment     = "invalid_payment"
	ErrCodePaymentRequired    = "payment_required"
	ErrCodeInvalidPrice       = "invalid_price"
	ErrCodeInvalidRoute       = "invalid_route"
	ErrCodeSettlementFailed   = "settlement_failed"
	ErrCodeUnsupportedScheme  = "unsupported_scheme"
	ErrCodeUnsupportedNetwork = "unsupported_network"
	ErrCodeNotInitialized     = "not_initialized"
)

// Challenge error strings carried in 402 responses. Clients branch on these,
// so absent-header (empty string) and malformed-header stay distinguishable.
const (
	ErrMsgInvalidPaymentHeader   = "invalid payment signature header"
	ErrMsgNoMatchingRequirements = "no matching payment requirements found"
	ErrMsgVerificationFailed     = "payment verification failed"
)

// ServiceUnavailableMessage is the 503 body error string emitted while the
// verification backend is in the failed state.
const ServiceUnavailableMessage = "Payment service temporarily unavailable"

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, details map[string]interface{}) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
