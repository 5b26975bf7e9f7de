package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

// Base64 regex pattern - requires at least one character
var base64Regex = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// paymentPayloadSchema describes the minimum structure a decoded payment
// proof must have before it is unmarshaled into PaymentPayload.
const paymentPayloadSchema = `{
	"type": "object",
	"required": ["x402Version", "payload", "accepted"],
	"properties": {
		"x402Version": {"type": "integer", "minimum": 1},
		"payload": {"type": "object"},
		"accepted": {
			"type": "object",
			"required": ["scheme", "network"],
			"properties": {
				"scheme": {"type": "string", "minLength": 1},
				"network": {"type": "string", "minLength": 1}
			}
		},
		"resource": {
			"type": "object",
			"properties": {
				"url": {"type": "string"},
				"description": {"type": "string"},
				"mimeType": {"type": "string"}
			}
		}
	}
}`

var paymentPayloadSchemaLoader = gojsonschema.NewStringLoader(paymentPayloadSchema)

// ValidateAndDecodePaymentHeader validates and decodes a payment header
// string: base64 shape, JSON structure, then the payload schema. Returns the
// decoded PaymentPayload, or an error with a descriptive message.
func ValidateAndDecodePaymentHeader(paymentHeader string) (*PaymentPayload, error) {
	if paymentHeader == "" {
		return nil, fmt.Errorf("payment header is empty")
	}

	if !base64Regex.MatchString(paymentHeader) {
		return nil, fmt.Errorf("invalid payment header format: not valid base64")
	}

	decoded, err := base64.StdEncoding.DecodeString(paymentHeader)
	if err != nil {
		return nil, fmt.Errorf("invalid payment header format: base64 decoding failed - %v", err)
	}

	result, err := gojsonschema.Validate(paymentPayloadSchemaLoader, gojsonschema.NewBytesLoader(decoded))
	if err != nil {
		return nil, fmt.Errorf("invalid payment header format: not valid JSON - %v", err)
	}
	if !result.Valid() {
		// Report the first violation; one is enough for the client to act on.
		return nil, fmt.Errorf("invalid payment payload: %s", result.Errors()[0])
	}

	var payload PaymentPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payment payload: %v", err)
	}

	return &payload, nil
}
