// Package apiclient talks to the multi-tenant cost backend. Every call takes
// the session principal explicitly; identity headers are derived from it and
// from nothing else.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Simplici0/cotizador3d/internal/observability/metrics"
	"github.com/Simplici0/cotizador3d/internal/session"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

type Option func(*options)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    zerolog.Logger
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport replaces the base transport; it is still wrapped for tracing.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a client for the backend mounted at baseURL (e.g.
// "http://localhost:8000/api"). Requests are never retried.
func New(baseURL string, opts ...Option) *Client {
	o := options{timeout: DefaultTimeout, transport: http.DefaultTransport, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{logger: o.logger}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(o.timeout).
		SetTransport(otelhttp.NewTransport(o.transport)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		OnAfterResponse(c.afterResponse).
		OnError(c.onError)
	return c
}

func (c *Client) afterResponse(_ *resty.Client, r *resty.Response) error {
	metrics.ObserveBackendCall(r.Request.Method, statusClass(r.StatusCode()), r.Time())
	ev := c.logger.Debug()
	if !r.IsSuccess() {
		ev = c.logger.Warn()
	}
	ev.Str("method", r.Request.Method).
		Str("path", r.Request.URL).
		Int("status", r.StatusCode()).
		Dur("duration", r.Time()).
		Msg("backend call")
	return nil
}

func (c *Client) onError(req *resty.Request, err error) {
	metrics.ObserveBackendCall(req.Method, "error", time.Since(req.Time))
	c.logger.Warn().Err(err).Str("method", req.Method).Str("path", req.URL).Msg("backend call failed")
}

func statusClass(code int) string {
	if code < 100 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// applyIdentity sets the headers for p. An admin sends only the bearer token;
// tenant headers are never mixed in.
func applyIdentity(r *resty.Request, p session.Principal) {
	switch id := p.(type) {
	case session.Admin:
		r.SetHeader("Authorization", "Bearer "+id.Token)
	case session.Tenant:
		r.SetHeader("X-Tenant", id.Name)
		r.SetHeader("X-Tenant-Key", id.Key)
	}
}

type call struct {
	method string
	path   string
	body   any
	query  map[string][]string
}

// do executes a call and decodes a JSON response into out (which may be nil).
func (c *Client) do(ctx context.Context, p session.Principal, cl call, out any) error {
	req := c.http.R().SetContext(ctx)
	applyIdentity(req, p)
	if cl.body != nil {
		req.SetBody(cl.body)
	}
	for k, vs := range cl.query {
		for _, v := range vs {
			req.QueryParam.Add(k, v)
		}
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		return &TransportError{Method: cl.method, Path: cl.path, Err: err}
	}
	if !resp.IsSuccess() {
		return newError(cl.method, cl.path, resp.StatusCode(), resp.Body())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

func get[T any](ctx context.Context, c *Client, p session.Principal, path string, query map[string][]string) (T, error) {
	var out T
	err := c.do(ctx, p, call{method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, p session.Principal, method, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, p, call{method: method, path: path, body: body}, &out)
	return out, err
}

func del(ctx context.Context, c *Client, p session.Principal, path string) error {
	return c.do(ctx, p, call{method: http.MethodDelete, path: path}, nil)
}

func idPath(prefix string, id int64, suffix ...string) string {
	return prefix + "/" + strconv.FormatInt(id, 10) + strings.Join(suffix, "")
}
