// Package nethttp adapts the payment middleware to net/http servers. The
// Adapter here is also reused by the gin and echo glue, since both frameworks
// expose the underlying *http.Request.
package nethttp

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
)

// Adapter is a read-only view over *http.Request. It buffers the request
// body at most once when a dynamic pricer peeks at it, restoring the stream
// for the downstream handler.
type Adapter struct {
	req    *http.Request
	body   []byte
	peeked bool
}

// NewAdapter wraps the given request.
func NewAdapter(req *http.Request) *Adapter {
	return &Adapter{req: req}
}

func (a *Adapter) GetHeader(name string) string {
	return a.req.Header.Get(name)
}

func (a *Adapter) GetMethod() string {
	return a.req.Method
}

func (a *Adapter) GetPath() string {
	return a.req.URL.Path
}

func (a *Adapter) GetURL() string {
	scheme := "http"
	if a.req.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + a.req.Host + a.req.URL.RequestURI()
}

func (a *Adapter) GetAcceptHeader() string {
	return a.req.Header.Get("Accept")
}

func (a *Adapter) GetUserAgent() string {
	return a.req.UserAgent()
}

func (a *Adapter) GetQueryParams() url.Values {
	return a.req.URL.Query()
}

func (a *Adapter) GetQueryParam(name string) (string, bool) {
	values, ok := a.req.URL.Query()[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// PeekBody reads the request body into memory and replaces the stream with a
// replay of the same bytes. Subsequent calls return the buffered copy.
func (a *Adapter) PeekBody() ([]byte, error) {
	if a.peeked {
		return a.body, nil
	}
	if a.req.Body == nil {
		a.peeked = true
		return nil, nil
	}

	data, err := io.ReadAll(a.req.Body)
	if err != nil {
		return nil, err
	}
	a.req.Body.Close()
	a.req.Body = io.NopCloser(bytes.NewReader(data))

	a.body = data
	a.peeked = true
	return data, nil
}
