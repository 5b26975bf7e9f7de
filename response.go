package x402

import (
	"net/http"
)

// BufferedResponse is a captured downstream response: status, headers, and a
// buffered body. The transport glue fills one in through its intercepting
// writer, the orchestrator augments it with settlement headers, and the glue
// writes the result out.
type BufferedResponse struct {
	Status int
	Header http.Header

	body     []byte
	consumed bool
}

// NewBufferedResponse builds a response snapshot from captured parts.
func NewBufferedResponse(status int, header http.Header, body []byte) *BufferedResponse {
	if header == nil {
		header = make(http.Header)
	}
	return &BufferedResponse{Status: status, Header: header, body: body}
}

// Body returns the buffered body and marks it consumed. Augmenting a
// consumed response afterwards yields an empty body.
func (r *BufferedResponse) Body() []byte {
	r.consumed = true
	return r.body
}

// BodyConsumed reports whether the body was already read out.
func (r *BufferedResponse) BodyConsumed() bool {
	return r.consumed
}

// WithHeaders clones the response with the given headers merged in,
// overwriting same-named existing headers. Status and body carry over
// untouched; a consumed body comes through empty, which the caller is
// expected to log as a degraded case rather than fail on.
func (r *BufferedResponse) WithHeaders(headers map[string]string) *BufferedResponse {
	clone := &BufferedResponse{
		Status: r.Status,
		Header: r.Header.Clone(),
	}
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}
	if !r.consumed {
		clone.body = r.body
	}
	for name, value := range headers {
		clone.Header.Set(name, value)
	}
	return clone
}

// WriteTo writes the response to a standard library response writer.
func (r *BufferedResponse) WriteTo(w http.ResponseWriter) error {
	for name, values := range r.Header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.WriteHeader(r.Status)
	_, err := w.Write(r.Body())
	return err
}
