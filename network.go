package x402

import (
	"fmt"
	"regexp"
	"strings"
)

// Network represents a blockchain network identifier in CAIP-2 format
// Format: namespace:reference (e.g., "eip155:8453" for Base mainnet)
type Network string

// namespace: alphanumeric with hyphens; reference additionally admits
// +/=_- so base64-encoded genesis hashes (e.g. Solana) pass.
var networkRegex = regexp.MustCompile(`^[a-zA-Z0-9-]+:[a-zA-Z0-9+/=_-]+$`)

// Validate checks the identifier against the CAIP-2 shape. The returned error
// names the offending string so configuration mistakes surface verbatim.
func (n Network) Validate() error {
	if networkRegex.MatchString(string(n)) {
		return nil
	}
	return &PaymentError{
		Code:    ErrCodeUnsupportedNetwork,
		Message: fmt.Sprintf("invalid network identifier %q: expected CAIP-2 format namespace:reference", string(n)),
	}
}

// Parse splits the network into namespace and reference components
func (n Network) Parse() (namespace, reference string, err error) {
	if err := n.Validate(); err != nil {
		return "", "", err
	}
	parts := strings.SplitN(string(n), ":", 2)
	return parts[0], parts[1], nil
}

// Namespace returns the CAIP-2 namespace, or "" if the identifier is malformed.
func (n Network) Namespace() string {
	ns, _, err := n.Parse()
	if err != nil {
		return ""
	}
	return ns
}

// Match checks if this network matches a pattern (supports wildcards)
// e.g., "eip155:1" matches "eip155:*" and "eip155:*" matches "eip155:1"
func (n Network) Match(pattern Network) bool {
	if n == pattern {
		return true
	}

	nStr := string(n)
	patternStr := string(pattern)

	if strings.HasSuffix(patternStr, ":*") {
		prefix := strings.TrimSuffix(patternStr, "*")
		return strings.HasPrefix(nStr, prefix)
	}

	// Bidirectional so a wildcard-configured network also matches concrete ones.
	if strings.HasSuffix(nStr, ":*") {
		prefix := strings.TrimSuffix(nStr, "*")
		return strings.HasPrefix(patternStr, prefix)
	}

	return false
}
