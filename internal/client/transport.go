// Package client provides the HTTP transport boundary for the action clients.
//
// Action clients never see connection-level detail: a Transport hands back the
// status code and raw body, and everything else (timeouts, pooling, TLS) stays
// inside the implementation.
package client

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Request describes one backend call.
type Request struct {
	Method  string
	Path    string
	Name    string // stat name for reporting; defaults to Path
	Body    any    // marshaled as JSON when non-nil
	Headers map[string]string
}

// StatName returns the name under which this request is aggregated.
func (r Request) StatName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Path
}

// Response is the raw result of one backend call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport issues a single request and returns the raw response.
// Implementations must not retry.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Resty is a Transport backed by a resty client with a fixed base URL.
type Resty struct {
	client *resty.Client
}

// NewResty builds a transport for the given base URL and request timeout.
func NewResty(baseURL string, timeout time.Duration) *Resty {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Resty{client: c}
}

func (t *Resty) Do(ctx context.Context, req Request) (Response, error) {
	r := t.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return Response{}, err
	}
	return Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}, nil
}
