package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Protocol header names. The primary names carry current-protocol payloads;
// the X- prefixed names are kept for clients that still speak the legacy
// framing.
const (
	HeaderPaymentSignature = "PAYMENT-SIGNATURE"
	HeaderPaymentLegacy    = "X-PAYMENT"

	HeaderPaymentRequired       = "PAYMENT-REQUIRED"
	HeaderPaymentResponse       = "PAYMENT-RESPONSE"
	HeaderPaymentResponseLegacy = "X-PAYMENT-RESPONSE"
)

// ExtractPaymentHeader reads the payment proof from the request. The primary
// header wins when both are present; the legacy header is only consulted when
// the primary is absent.
func ExtractPaymentHeader(req RequestAdapter) string {
	if value := req.GetHeader(HeaderPaymentSignature); value != "" {
		return value
	}
	return req.GetHeader(HeaderPaymentLegacy)
}

// DecodePaymentHeader decodes and validates a base64 payment proof header.
// A non-nil error means the header was present but unusable, which is a
// different protocol condition from the header being absent.
func DecodePaymentHeader(header string) (*PaymentPayload, error) {
	return ValidateAndDecodePaymentHeader(header)
}

// EncodePaymentRequiredHeader encodes the 402 challenge payload for the
// PAYMENT-REQUIRED response header.
func EncodePaymentRequiredHeader(required PaymentRequired) (string, error) {
	data, err := json.Marshal(required)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment required: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// EncodeSettleResponseHeader encodes a settlement receipt for the
// PAYMENT-RESPONSE response headers.
func EncodeSettleResponseHeader(response SettleResponse) (string, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settle response: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSettleResponseHeader decodes a PAYMENT-RESPONSE header value.
func DecodeSettleResponseHeader(header string) (SettleResponse, error) {
	data, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return SettleResponse{}, fmt.Errorf("invalid base64 encoding: %w", err)
	}

	var response SettleResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return SettleResponse{}, fmt.Errorf("invalid settle response JSON: %w", err)
	}

	return response, nil
}
