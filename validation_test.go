package x402

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestValidateAndDecodePaymentHeader(t *testing.T) {
	header := validPaymentHeader(t)

	payload, err := ValidateAndDecodePaymentHeader(header)
	if err != nil {
		t.Fatalf("Expected valid header to decode, got %v", err)
	}
	if payload.X402Version != ProtocolVersion {
		t.Errorf("Expected version %d, got %d", ProtocolVersion, payload.X402Version)
	}
	if payload.Accepted.Scheme != "exact" || payload.Accepted.Network != "eip155:8453" {
		t.Errorf("Unexpected accepted requirements: %+v", payload.Accepted)
	}
}

func TestValidateAndDecodePaymentHeaderEmpty(t *testing.T) {
	_, err := ValidateAndDecodePaymentHeader("")
	if err == nil {
		t.Fatal("Expected error for empty header")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("Expected empty-header error, got %v", err)
	}
}

func TestValidateAndDecodePaymentHeaderNotBase64(t *testing.T) {
	if _, err := ValidateAndDecodePaymentHeader("!!not-base64!!"); err == nil {
		t.Error("Expected error for non-base64 input")
	}
}

func TestValidateAndDecodePaymentHeaderNotJSON(t *testing.T) {
	header := base64.StdEncoding.EncodeToString([]byte("plain text"))
	if _, err := ValidateAndDecodePaymentHeader(header); err == nil {
		t.Error("Expected error for non-JSON content")
	}
}

func TestValidateAndDecodePaymentHeaderSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing payload", `{"x402Version":2,"accepted":{"scheme":"exact","network":"eip155:8453"}}`},
		{"missing accepted", `{"x402Version":2,"payload":{}}`},
		{"empty scheme", `{"x402Version":2,"payload":{},"accepted":{"scheme":"","network":"eip155:8453"}}`},
		{"version below minimum", `{"x402Version":0,"payload":{},"accepted":{"scheme":"exact","network":"eip155:8453"}}`},
		{"payload not object", `{"x402Version":2,"payload":"sig","accepted":{"scheme":"exact","network":"eip155:8453"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := base64.StdEncoding.EncodeToString([]byte(tt.body))
			if _, err := ValidateAndDecodePaymentHeader(header); err == nil {
				t.Error("Expected schema violation to be rejected")
			}
		})
	}
}
