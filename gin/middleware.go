// Package gin adapts the payment middleware to gin engines.
package gin

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	x402 "github.com/x402-foundation/x402-middleware/go"
	"github.com/x402-foundation/x402-middleware/go/nethttp"
)

// Middleware returns a gin handler running the payment lifecycle around the
// rest of the chain. Verified requests expose their payment record both on
// the request context and in the gin store under x402.ContextKeyPaymentInfo.
func Middleware(payments *x402.Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := payments.Evaluate(c.Request.Context(), nethttp.NewAdapter(c.Request))

		switch decision.Kind {
		case x402.DecisionRespond:
			respond(c, decision.Response)

		case x402.DecisionProceed:
			c.Set(x402.ContextKeyPaymentInfo, decision.Grant.Info)
			ctx := x402.WithPaymentInfo(c.Request.Context(), decision.Grant.Info)
			c.Request = c.Request.WithContext(ctx)

			capture := &responseWriter{ResponseWriter: c.Writer, header: make(http.Header), statusCode: http.StatusOK}
			c.Writer = capture

			c.Next()

			c.Writer = capture.ResponseWriter
			resp := x402.NewBufferedResponse(capture.statusCode, capture.header, capture.body.Bytes())
			resp = payments.FinalizeSettlement(c.Request.Context(), decision.Grant, resp)
			resp.WriteTo(c.Writer)
		}
	}
}

func respond(c *gin.Context, resp *x402.ResponseInstruction) {
	if resp == nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	for name, value := range resp.Headers {
		c.Header(name, value)
	}
	c.Data(resp.Status, resp.Headers["Content-Type"], resp.Body)
	c.Abort()
}

// responseWriter intercepts the handler's response so settlement headers can
// be attached before anything reaches the wire.
type responseWriter struct {
	gin.ResponseWriter
	header     http.Header
	body       bytes.Buffer
	statusCode int
	written    bool
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.WriteString(s)
}
