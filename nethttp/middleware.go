package nethttp

import (
	"bytes"
	"net/http"

	x402 "github.com/x402-foundation/x402-middleware/go"
)

// Middleware wraps a handler chain with the payment lifecycle. Free requests
// pass straight through; challenged requests are answered without invoking
// the handler; verified requests run with the payment record on the request
// context and a capturing writer, so settlement headers can be merged in
// before the response leaves the server.
func Middleware(payments *x402.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := payments.Evaluate(r.Context(), NewAdapter(r))

			switch decision.Kind {
			case x402.DecisionRespond:
				writeInstruction(w, decision.Response)

			case x402.DecisionProceed:
				ctx := x402.WithPaymentInfo(r.Context(), decision.Grant.Info)
				capture := newCaptureWriter()
				next.ServeHTTP(capture, r.WithContext(ctx))

				resp := payments.FinalizeSettlement(r.Context(), decision.Grant, capture.buffered())
				resp.WriteTo(w)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func writeInstruction(w http.ResponseWriter, resp *x402.ResponseInstruction) {
	if resp == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

// captureWriter buffers everything the handler writes so the response can be
// augmented after the fact. The first WriteHeader wins, matching net/http.
type captureWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{
		header: make(http.Header),
		status: http.StatusOK,
	}
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

func (w *captureWriter) buffered() *x402.BufferedResponse {
	return x402.NewBufferedResponse(w.status, w.header, w.body.Bytes())
}
