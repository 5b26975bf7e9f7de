package x402

// ProtocolVersion is the x402 protocol version this middleware speaks.
const ProtocolVersion = 2

// PaymentOption advertises one acceptable way to pay for a resource before
// the terms are resolved into concrete PaymentRequirements.
type PaymentOption struct {
	Scheme  string  `json:"scheme"`
	Network Network `json:"network"`
	PayTo   string  `json:"payTo"`
	Price   string  `json:"price"`
}

// PaymentRequirements defines fully resolved, scheme-specific terms a payment
// proof is verified against.
type PaymentRequirements struct {
	Scheme            string                 `json:"scheme"`
	Network           Network                `json:"network"`
	Asset             string                 `json:"asset"`
	Amount            string                 `json:"amount"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentPayload is the decoded proof-of-payment submitted by a caller.
type PaymentPayload struct {
	X402Version int                    `json:"x402Version"`
	Payload     map[string]interface{} `json:"payload"`
	Accepted    PaymentRequirements    `json:"accepted"`
	Resource    *ResourceInfo          `json:"resource,omitempty"`
	Extensions  map[string]interface{} `json:"extensions,omitempty"`
}

// ResourceInfo describes the resource being accessed.
type ResourceInfo struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// PaymentRequired is the 402 challenge payload sent to clients.
type PaymentRequired struct {
	X402Version int                   `json:"x402Version"`
	Error       string                `json:"error,omitempty"`
	Resource    *ResourceInfo         `json:"resource,omitempty"`
	Accepts     []PaymentRequirements `json:"accepts"`
}

// VerifyResponse contains the verification result from the resource server.
type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleResponse contains the settlement result from the resource server.
type SettleResponse struct {
	Success     bool    `json:"success"`
	ErrorReason string  `json:"errorReason,omitempty"`
	Payer       string  `json:"payer,omitempty"`
	Transaction string  `json:"transaction"`
	Network     Network `json:"network"`
}

// UnknownPayer is recorded when the verifier does not report a payer address.
const UnknownPayer = "unknown"

// PaymentInfo is attached to the request context after successful
// verification. Transaction stays empty until settlement succeeds; the same
// record is then updated in place so downstream readers only ever observe an
// upgrade, never a downgrade.
type PaymentInfo struct {
	Payer       string  `json:"payer"`
	Network     Network `json:"network"`
	Transaction string  `json:"transaction,omitempty"`
}
