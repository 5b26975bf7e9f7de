package x402

import (
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxPriceUSD is the largest USD price a route may charge per request.
const MaxPriceUSD = 1e9

// DefaultScheme is used when a chain entry does not name a payment scheme.
const DefaultScheme = "exact"

// Chain family names, in the fixed order options are emitted.
const (
	ChainFamilyEVM       = "evm"
	ChainFamilySVM       = "svm"
	ChainFamilyHypercore = "hypercore"
)

// ChainConfig configures one chain/network a resource accepts payment on.
type ChainConfig struct {
	Network Network `json:"network" validate:"required"`
	PayTo   string  `json:"payTo" validate:"required"`
	Scheme  string  `json:"scheme,omitempty"`
}

// ChainsConfig groups the configured chains by family. EVM supports multiple
// entries; the other families take at most one.
type ChainsConfig struct {
	EVM       []ChainConfig `json:"evm,omitempty"`
	SVM       *ChainConfig  `json:"svm,omitempty"`
	Hypercore *ChainConfig  `json:"hypercore,omitempty"`
}

var chainValidate = validator.New(validator.WithRequiredStructEnabled())

// ConfiguredChainFamilies returns the family names with at least one
// configured entry, in emission order.
func (c ChainsConfig) ConfiguredChainFamilies() []string {
	var families []string
	if len(c.EVM) > 0 {
		families = append(families, ChainFamilyEVM)
	}
	if c.SVM != nil {
		families = append(families, ChainFamilySVM)
	}
	if c.Hypercore != nil {
		families = append(families, ChainFamilyHypercore)
	}
	return families
}

// BuildPaymentOptions produces one PaymentOption per configured chain entry:
// EVM entries in array order, then SVM, then Hypercore. Every network
// identifier and recipient address is validated before anything is emitted;
// the first invalid entry aborts the whole call so callers never see a
// partial option list.
func BuildPaymentOptions(chains ChainsConfig, priceUSD float64) ([]PaymentOption, error) {
	price, err := FormatUSD(priceUSD)
	if err != nil {
		return nil, err
	}

	var options []PaymentOption
	appendOption := func(family string, cfg ChainConfig) error {
		if err := chainValidate.Struct(cfg); err != nil {
			return &PaymentError{
				Code:    ErrCodeInvalidRoute,
				Message: fmt.Sprintf("incomplete %s chain config: %v", family, err),
			}
		}
		if err := cfg.Network.Validate(); err != nil {
			return err
		}
		if err := validatePayTo(family, cfg.PayTo); err != nil {
			return err
		}
		scheme := cfg.Scheme
		if scheme == "" {
			scheme = DefaultScheme
		}
		options = append(options, PaymentOption{
			Scheme:  scheme,
			Network: cfg.Network,
			PayTo:   cfg.PayTo,
			Price:   price,
		})
		return nil
	}

	for _, cfg := range chains.EVM {
		if err := appendOption(ChainFamilyEVM, cfg); err != nil {
			return nil, err
		}
	}
	if chains.SVM != nil {
		if err := appendOption(ChainFamilySVM, *chains.SVM); err != nil {
			return nil, err
		}
	}
	if chains.Hypercore != nil {
		if err := appendOption(ChainFamilyHypercore, *chains.Hypercore); err != nil {
			return nil, err
		}
	}

	return options, nil
}

// FormatUSD renders a USD price as "$" followed by a plain fixed-point
// decimal: no exponent notation, no trailing zeros, no dangling point.
// Formatting happens at 12 fractional digits before trimming so sub-cent
// prices like 1e-8 survive intact.
func FormatUSD(priceUSD float64) (string, error) {
	if math.IsNaN(priceUSD) || math.IsInf(priceUSD, 0) {
		return "", &PaymentError{
			Code:    ErrCodeInvalidPrice,
			Message: "price must be a finite number",
		}
	}
	if priceUSD < 0 {
		return "", &PaymentError{
			Code:    ErrCodeInvalidPrice,
			Message: fmt.Sprintf("price must not be negative, got %g", priceUSD),
		}
	}
	if priceUSD > MaxPriceUSD {
		return "", &PaymentError{
			Code:    ErrCodeInvalidPrice,
			Message: fmt.Sprintf("price %g exceeds maximum of %g", priceUSD, float64(MaxPriceUSD)),
		}
	}

	fixed := decimal.NewFromFloat(priceUSD).StringFixed(12)
	fixed = strings.TrimRight(fixed, "0")
	fixed = strings.TrimSuffix(fixed, ".")
	return "$" + fixed, nil
}

// validatePayTo checks the recipient address shape for the chain family.
// EVM and Hypercore both use 0x-prefixed hex addresses; SVM uses base58
// public keys.
func validatePayTo(family, payTo string) error {
	switch family {
	case ChainFamilyEVM, ChainFamilyHypercore:
		if !common.IsHexAddress(payTo) {
			return &PaymentError{
				Code:    ErrCodeInvalidRoute,
				Message: fmt.Sprintf("invalid %s recipient address %q", family, payTo),
			}
		}
	case ChainFamilySVM:
		if _, err := solana.PublicKeyFromBase58(payTo); err != nil {
			return &PaymentError{
				Code:    ErrCodeInvalidRoute,
				Message: fmt.Sprintf("invalid %s recipient address %q: %v", family, payTo, err),
			}
		}
	}
	return nil
}
