// Package gateway implements the REST transport client for the Datagroom
// gateway.
//
// The client owns exactly two responsibilities: attaching the bearer
// credential to every call, and mapping transport/HTTP outcomes onto the
// fixed [Status] taxonomy. It never retries — the gateway's endpoints are
// not assumed safe to replay, so retry policy belongs to the calling agent.
// It returns a [*Response] for every call rather than a Go error, so that
// downstream formatting has a single shape to consume.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/datagroom-ai/datagroom-mcp/internal/config"
	"github.com/datagroom-ai/datagroom-mcp/internal/observe"
	"github.com/datagroom-ai/datagroom-mcp/internal/query"
)

// Status classifies the outcome of a gateway call.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusAuthError      Status = "authError"
	StatusForbidden      Status = "forbidden"
	StatusNotFound       Status = "notFound"
	StatusServerError    Status = "serverError"
	StatusTransportError Status = "transportError"
)

// Response is the outcome of a single gateway call.
type Response struct {
	// Status is the mapped outcome class.
	Status Status

	// Payload holds the parsed-and-revalidated JSON body. Non-nil only when
	// Status is [StatusSuccess].
	Payload []byte

	// Message is a human-readable description of the failure. Empty on
	// success. Never contains the bearer credential.
	Message string
}

// OK reports whether the call succeeded.
func (r *Response) OK() bool { return r.Status == StatusSuccess }

// Configuration errors returned by [New]. These are startup failures: a
// client is never constructed without a complete credential, so no call can
// ever leave without one.
var (
	ErrMissingToken = errors.New("gateway: PAT token is not configured")
	ErrMissingURL   = errors.New("gateway: base URL is not configured")
)

// maxResponseBytes caps how much of a gateway response is read into memory.
const maxResponseBytes = 16 << 20 // 16 MiB

// Client issues authenticated REST calls against one Datagroom gateway.
// It is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	metrics *observe.Metrics
}

// New creates a Client from cfg. The base URL and PAT token are required;
// cfg.Timeout bounds every call (falling back to [config.DefaultTimeout]
// when unset).
func New(cfg config.GatewayConfig, metrics *observe.Metrics) (*Client, error) {
	if cfg.PATToken == "" {
		return nil, ErrMissingToken
	}
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Client{
		baseURL: cfg.URL,
		token:   cfg.PATToken,
		http:    &http.Client{Timeout: timeout},
		metrics: metrics,
	}, nil
}

// Do executes the normalized request and classifies the outcome.
func (c *Client) Do(ctx context.Context, req query.Request) *Response {
	return c.call(ctx, req.Method, req.Path, req.Body)
}

// Get issues a GET call against path.
func (c *Client) Get(ctx context.Context, path string) *Response {
	return c.call(ctx, http.MethodGet, path, nil)
}

// Post issues a POST call against path with the given JSON body.
func (c *Client) Post(ctx context.Context, path string, body []byte) *Response {
	return c.call(ctx, http.MethodPost, path, body)
}

// Ping probes gateway reachability for readiness checks. Any HTTP response,
// including an error status, proves the gateway is up; only transport
// failures count as unreachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("gateway: build ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body []byte) *Response {
	start := time.Now()

	ctx, span := observe.StartSpan(ctx, "gateway "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	resp := c.roundTrip(ctx, method, path, body)

	duration := time.Since(start)
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", string(resp.Status)),
	)
	c.metrics.GatewayRequestDuration.Record(ctx, duration.Seconds(), attrs)
	c.metrics.GatewayRequests.Add(ctx, 1, attrs)

	log := observe.Logger(ctx)
	if resp.OK() {
		log.Debug("gateway call", "method", method, "path", path, "duration", duration)
	} else {
		log.Warn("gateway call failed",
			"method", method, "path", path,
			"status", string(resp.Status), "message", resp.Message,
			"duration", duration,
		)
	}
	return resp
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) *Response {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Response{Status: StatusTransportError, Message: "invalid gateway request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return &Response{Status: StatusTransportError, Message: transportMessage(err)}
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return &Response{Status: StatusTransportError, Message: "reading gateway response: " + err.Error()}
	}

	return classify(httpResp.StatusCode, payload)
}

// classify maps an HTTP status and body onto the [Status] taxonomy.
func classify(code int, payload []byte) *Response {
	switch {
	case code >= 200 && code < 300:
		if !json.Valid(payload) {
			return &Response{Status: StatusServerError, Message: "malformed gateway response"}
		}
		return &Response{Status: StatusSuccess, Payload: payload}

	case code == http.StatusUnauthorized:
		return &Response{Status: StatusAuthError, Message: "gateway rejected the credential (HTTP 401); the PAT token may be expired or revoked"}

	case code == http.StatusForbidden:
		return &Response{Status: StatusForbidden, Message: "access denied by gateway ACLs (HTTP 403)"}

	case code == http.StatusNotFound:
		return &Response{Status: StatusNotFound, Message: "dataset or view not found (HTTP 404)"}

	case code >= 500:
		return &Response{Status: StatusServerError, Message: fmt.Sprintf("gateway internal error (HTTP %d)", code)}

	default:
		// Remaining 4xx codes indicate a request the gateway would not
		// accept; surface them as server-side rejections.
		return &Response{Status: StatusServerError, Message: fmt.Sprintf("unexpected gateway status (HTTP %d)", code)}
	}
}

// transportMessage turns network-level failures into readable messages,
// distinguishing timeouts, refused connections, and DNS failures.
func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "gateway request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "gateway request timed out"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "cannot connect to gateway: connection refused"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "gateway request timed out"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "cannot resolve gateway host: " + dnsErr.Name
	}

	return "gateway transport failure: " + err.Error()
}
