// Package echo adapts the payment middleware to echo servers.
package echo

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	x402 "github.com/x402-foundation/x402-middleware/go"
	"github.com/x402-foundation/x402-middleware/go/nethttp"
)

// Middleware returns an echo middleware running the payment lifecycle around
// the rest of the chain. Verified requests expose their payment record both
// on the request context and in the echo store under
// x402.ContextKeyPaymentInfo.
func Middleware(payments *x402.Middleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := payments.Evaluate(c.Request().Context(), nethttp.NewAdapter(c.Request()))

			switch decision.Kind {
			case x402.DecisionRespond:
				return respond(c, decision.Response)

			case x402.DecisionProceed:
				c.Set(x402.ContextKeyPaymentInfo, decision.Grant.Info)
				ctx := x402.WithPaymentInfo(c.Request().Context(), decision.Grant.Info)
				c.SetRequest(c.Request().WithContext(ctx))

				original := c.Response().Writer
				capture := &captureWriter{header: make(http.Header), status: http.StatusOK}
				c.Response().Writer = capture

				err := next(c)

				c.Response().Writer = original
				if err != nil {
					return err
				}

				resp := x402.NewBufferedResponse(capture.status, capture.header, capture.body.Bytes())
				resp = payments.FinalizeSettlement(c.Request().Context(), decision.Grant, resp)
				return resp.WriteTo(original)

			default:
				return next(c)
			}
		}
	}
}

func respond(c echo.Context, resp *x402.ResponseInstruction) error {
	if resp == nil {
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	for name, value := range resp.Headers {
		c.Response().Header().Set(name, value)
	}
	return c.Blob(resp.Status, resp.Headers["Content-Type"], resp.Body)
}

// captureWriter buffers the handler's response so settlement headers can be
// attached before anything reaches the wire.
type captureWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *captureWriter) Header() http.Header {
	return w.header
}

func (w *captureWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}
