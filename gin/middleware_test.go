package gin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402 "github.com/x402-foundation/x402-middleware/go"
)

type mockServer struct{}

func (m *mockServer) Initialize(context.Context) error { return nil }

func (m *mockServer) BuildPaymentRequirementsFromOptions(_ context.Context, options []x402.PaymentOption) ([]x402.PaymentRequirements, error) {
	requirements := make([]x402.PaymentRequirements, 0, len(options))
	for _, option := range options {
		requirements = append(requirements, x402.PaymentRequirements{
			Scheme:  option.Scheme,
			Network: option.Network,
			Asset:   "0xusdc",
			Amount:  "10000",
			PayTo:   option.PayTo,
		})
	}
	return requirements, nil
}

func (m *mockServer) FindMatchingRequirements(available []x402.PaymentRequirements, _ x402.PaymentPayload) *x402.PaymentRequirements {
	if len(available) == 0 {
		return nil
	}
	return &available[0]
}

func (m *mockServer) VerifyPayment(context.Context, x402.PaymentPayload, x402.PaymentRequirements) (x402.VerifyResponse, error) {
	return x402.VerifyResponse{IsValid: true, Payer: "0xpayer"}, nil
}

func (m *mockServer) SettlePayment(_ context.Context, _ x402.PaymentPayload, requirements x402.PaymentRequirements) (x402.SettleResponse, error) {
	return x402.SettleResponse{Success: true, Transaction: "0xtx", Network: requirements.Network}, nil
}

func (m *mockServer) CreatePaymentRequiredResponse(requirements []x402.PaymentRequirements, info x402.ResourceInfo, errorMsg string) x402.PaymentRequired {
	return x402.PaymentRequired{
		X402Version: x402.ProtocolVersion,
		Error:       errorMsg,
		Resource:    &info,
		Accepts:     requirements,
	}
}

func (m *mockServer) RequiresPayment(string, string) bool { return false }

func (m *mockServer) ProcessHTTPRequest(context.Context, x402.HTTPRequestContext) x402.HTTPProcessResult {
	return x402.HTTPProcessResult{Type: x402.ResultNoPaymentRequired}
}

func (m *mockServer) ProcessSettlement(context.Context, x402.PaymentPayload, x402.PaymentRequirements, int) (map[string]string, error) {
	return nil, nil
}

func testEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pricer := func(context.Context, x402.RequestAdapter) ([]x402.PaymentOption, error) {
		return []x402.PaymentOption{
			{Scheme: "exact", Network: "eip155:8453", PayTo: "0xresource", Price: "$0.01"},
		}, nil
	}
	payments, err := x402.New(x402.RoutesConfig{
		{Key: "GET /paid", Config: x402.DynamicRoute{Pricer: pricer}},
	}, &mockServer{})
	require.NoError(t, err)

	router := gin.New()
	router.Use(Middleware(payments))
	router.GET("/free", func(c *gin.Context) {
		c.String(http.StatusOK, "free")
	})
	router.GET("/paid", func(c *gin.Context) {
		value, exists := c.Get(x402.ContextKeyPaymentInfo)
		require.True(t, exists, "handler must find payment info in the gin store")
		info := value.(*x402.PaymentInfo)
		c.JSON(http.StatusOK, gin.H{"payer": info.Payer})
	})
	return router
}

func paymentHeader(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(x402.PaymentPayload{
		X402Version: x402.ProtocolVersion,
		Payload:     map[string]interface{}{"signature": "0xsig"},
		Accepted:    x402.PaymentRequirements{Scheme: "exact", Network: "eip155:8453"},
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(data)
}

func TestGinPassThrough(t *testing.T) {
	router := testEngine(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/free", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "free", rec.Body.String())
}

func TestGinChallenge(t *testing.T) {
	router := testEngine(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/paid", nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(x402.HeaderPaymentRequired))

	var required x402.PaymentRequired
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &required))
	assert.Len(t, required.Accepts, 1)
}

func TestGinSettledRequest(t *testing.T) {
	router := testEngine(t)

	req := httptest.NewRequest("GET", "/paid", nil)
	req.Header.Set(x402.HeaderPaymentSignature, paymentHeader(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"payer":"0xpayer"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(x402.HeaderPaymentResponse))
}
