package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request describes one logical backend call. Values are immutable: every
// With method returns a modified copy and leaves the receiver untouched.
type Request struct {
	method  string
	path    string
	header  http.Header
	body    []byte
	timeout time.Duration
}

// NewRequest starts a request for method and path. The path is resolved
// against the executor's base URL and may carry a query string.
func NewRequest(method, path string) Request {
	return Request{
		method: method,
		path:   path,
		header: http.Header{"Accept": []string{"application/json"}},
	}
}

// Get is shorthand for NewRequest(http.MethodGet, path).
func Get(path string) Request { return NewRequest(http.MethodGet, path) }

// Post is shorthand for NewRequest(http.MethodPost, path).
func Post(path string) Request { return NewRequest(http.MethodPost, path) }

// Delete is shorthand for NewRequest(http.MethodDelete, path).
func Delete(path string) Request { return NewRequest(http.MethodDelete, path) }

// WithHeader returns a copy with header key set to value.
func (r Request) WithHeader(key, value string) Request {
	r.header = r.header.Clone()
	if r.header == nil {
		r.header = http.Header{}
	}
	r.header.Set(key, value)
	return r
}

// WithTimeout returns a copy with a per-attempt deadline of d. Zero means
// the attempt is bounded only by the caller's context.
func (r Request) WithTimeout(d time.Duration) Request {
	r.timeout = d
	return r
}

// WithBody returns a copy carrying body with the given content type.
func (r Request) WithBody(contentType string, body []byte) Request {
	r = r.WithHeader("Content-Type", contentType)
	r.body = bytes.Clone(body)
	return r
}

// WithJSON returns a copy whose body is v encoded as JSON.
func (r Request) WithJSON(v any) (Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("marshaling request body: %w", err)
	}
	return r.WithBody("application/json", data), nil
}

func (r Request) Method() string         { return r.method }
func (r Request) Path() string           { return r.path }
func (r Request) Timeout() time.Duration { return r.timeout }
func (r Request) Header() http.Header    { return r.header.Clone() }
func (r Request) Body() []byte           { return bytes.Clone(r.body) }

// String returns "METHOD path", used in logs and error messages.
func (r Request) String() string {
	return r.method + " " + r.path
}

// Response is the raw outcome of a physical call that returned a status.
type Response struct {
	StatusCode int
	Body       string
	Header     http.Header
}

// IsSuccess reports whether the status is 2xx.
func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
