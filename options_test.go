package x402

import (
	"math"
	"testing"
)

const (
	testEVMAddress = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
	testSVMAddress = "11111111111111111111111111111111"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, "$0"},
		{0.01, "$0.01"},
		{1.5, "$1.5"},
		{10, "$10"},
		{0.00000001, "$0.00000001"},
		{1000000000, "$1000000000"},
	}
	for _, tt := range tests {
		got, err := FormatUSD(tt.price)
		if err != nil {
			t.Errorf("FormatUSD(%g) failed: %v", tt.price, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatUSD(%g) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestFormatUSDRejectsBadPrices(t *testing.T) {
	for _, price := range []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1), MaxPriceUSD + 1} {
		if _, err := FormatUSD(price); err == nil {
			t.Errorf("Expected FormatUSD(%g) to fail", price)
		}
	}
}

func TestBuildPaymentOptionsOrder(t *testing.T) {
	chains := ChainsConfig{
		EVM: []ChainConfig{
			{Network: "eip155:8453", PayTo: testEVMAddress},
			{Network: "eip155:1", PayTo: testEVMAddress, Scheme: "permit"},
		},
		SVM:       &ChainConfig{Network: "solana:mainnet", PayTo: testSVMAddress},
		Hypercore: &ChainConfig{Network: "hypercore:mainnet", PayTo: testEVMAddress},
	}

	options, err := BuildPaymentOptions(chains, 0.25)
	if err != nil {
		t.Fatalf("BuildPaymentOptions failed: %v", err)
	}
	if len(options) != 4 {
		t.Fatalf("Expected 4 options, got %d", len(options))
	}

	wantNetworks := []Network{"eip155:8453", "eip155:1", "solana:mainnet", "hypercore:mainnet"}
	for i, want := range wantNetworks {
		if options[i].Network != want {
			t.Errorf("Option %d: expected network %q, got %q", i, want, options[i].Network)
		}
		if options[i].Price != "$0.25" {
			t.Errorf("Option %d: expected price $0.25, got %q", i, options[i].Price)
		}
	}

	if options[0].Scheme != DefaultScheme {
		t.Errorf("Expected default scheme, got %q", options[0].Scheme)
	}
	if options[1].Scheme != "permit" {
		t.Errorf("Expected configured scheme to stick, got %q", options[1].Scheme)
	}
}

func TestBuildPaymentOptionsRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name   string
		chains ChainsConfig
	}{
		{
			"missing payTo",
			ChainsConfig{EVM: []ChainConfig{{Network: "eip155:8453"}}},
		},
		{
			"malformed network",
			ChainsConfig{EVM: []ChainConfig{{Network: "base", PayTo: testEVMAddress}}},
		},
		{
			"bad evm address",
			ChainsConfig{EVM: []ChainConfig{{Network: "eip155:8453", PayTo: "0xshort"}}},
		},
		{
			"bad svm address",
			ChainsConfig{SVM: &ChainConfig{Network: "solana:mainnet", PayTo: "not-base58!"}},
		},
		{
			"bad hypercore address",
			ChainsConfig{Hypercore: &ChainConfig{Network: "hypercore:mainnet", PayTo: testSVMAddress}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options, err := BuildPaymentOptions(tt.chains, 0.01)
			if err == nil {
				t.Fatal("Expected error")
			}
			if options != nil {
				t.Error("Expected no partial options on failure")
			}
		})
	}
}

func TestBuildPaymentOptionsAbortsOnFirstInvalid(t *testing.T) {
	chains := ChainsConfig{
		EVM: []ChainConfig{
			{Network: "eip155:8453", PayTo: testEVMAddress},
			{Network: "eip155:1", PayTo: "0xbad"},
		},
	}
	options, err := BuildPaymentOptions(chains, 0.01)
	if err == nil {
		t.Fatal("Expected error from second entry")
	}
	if options != nil {
		t.Error("Expected no partial options when a later entry is invalid")
	}
}

func TestBuildPaymentOptionsRejectsBadPriceBeforeValidation(t *testing.T) {
	chains := ChainsConfig{EVM: []ChainConfig{{Network: "eip155:8453", PayTo: testEVMAddress}}}
	if _, err := BuildPaymentOptions(chains, -1); err == nil {
		t.Fatal("Expected price error")
	}
}

func TestConfiguredChainFamilies(t *testing.T) {
	chains := ChainsConfig{
		EVM: []ChainConfig{{Network: "eip155:8453", PayTo: testEVMAddress}},
		SVM: &ChainConfig{Network: "solana:mainnet", PayTo: testSVMAddress},
	}
	families := chains.ConfiguredChainFamilies()
	if len(families) != 2 || families[0] != ChainFamilyEVM || families[1] != ChainFamilySVM {
		t.Errorf("Unexpected families: %v", families)
	}

	if families := (ChainsConfig{}).ConfiguredChainFamilies(); len(families) != 0 {
		t.Errorf("Expected no families, got %v", families)
	}
}
