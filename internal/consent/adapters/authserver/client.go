// Package authserver talks to the authorization server's consent admin API.
//
// Every error returned wraps one of the sentinel values so callers can tell
// a missing challenge from a consumed one, and a transient failure from an
// ambiguous one.
package authserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"consentd/internal/consent/models"
	"consentd/pkg/platform/circuit"
	"consentd/pkg/platform/sentinel"
)

const (
	consentPath = "/admin/oauth2/auth/requests/consent"
	acceptPath  = consentPath + "/accept"
	rejectPath  = consentPath + "/reject"

	maxResponseBytes = 1 << 20

	errRequestHandled   = "request_was_handled"
	outcomeShortCircuit = "short_circuit"
)

// Operation names used in spans and metrics.
const (
	OpGet    = "get_consent_request"
	OpAccept = "accept_consent_request"
	OpReject = "reject_consent_request"
)

// Observer receives per-call outcomes. Outcome is "ok", the sentinel class, or
// "short_circuit" when the breaker refused the call.
type Observer interface {
	ObserveUpstream(op, outcome string, d time.Duration)
	SetUpstreamCircuitOpen(open bool)
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	tracer     trace.Tracer
	breaker    *circuit.Breaker
	observer   Observer
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout bounds each individual call.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

func WithObserver(o Observer) Option {
	return func(cl *Client) { cl.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(cl *Client) {
		if t != nil {
			cl.tracer = t
		}
	}
}

func New(adminURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(adminURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse admin url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("admin url must be http or https, got %q", adminURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout:    5 * time.Second,
		tracer:     otel.Tracer("consentd/authserver"),
		breaker:    circuit.New("authserver-admin"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetConsentRequest fetches a challenge. It never consumes it.
func (c *Client) GetConsentRequest(ctx context.Context, challenge string) (*models.Challenge, error) {
	var out consentRequest
	status, err := c.do(ctx, OpGet, http.MethodGet, consentPath, challenge, nil, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get consent request: unexpected status %d", status)
	}
	if out.Challenge == "" {
		out.Challenge = challenge
	}
	return out.toModel(), nil
}

// AcceptConsentRequest consumes the challenge with a grant.
func (c *Client) AcceptConsentRequest(ctx context.Context, challenge string, decision models.Decision) (string, error) {
	return c.submit(ctx, OpAccept, acceptPath, challenge, NewAcceptBody(decision))
}

// RejectConsentRequest consumes the challenge with a refusal.
func (c *Client) RejectConsentRequest(ctx context.Context, challenge string, code models.RejectCode, description string) (string, error) {
	return c.submit(ctx, OpReject, rejectPath, challenge, RejectBody{
		Error:            string(code),
		ErrorDescription: description,
		StatusCode:       http.StatusForbidden,
	})
}

func (c *Client) submit(ctx context.Context, op, path, challenge string, body any) (string, error) {
	var out redirectResponse
	if _, err := c.do(ctx, op, http.MethodPut, path, challenge, body, &out); err != nil {
		return "", err
	}
	if out.RedirectTo == "" {
		return "", fmt.Errorf("%s: %w: response has no redirect_to", op, sentinel.ErrAmbiguous)
	}
	return out.RedirectTo, nil
}

// do performs one call and classifies its failure. It returns the HTTP status
// on success.
func (c *Client) do(ctx context.Context, op, method, path, challenge string, body, out any) (int, error) {
	ctx, span := c.tracer.Start(ctx, "authserver."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	if c.breaker != nil && !c.breaker.Allow() {
		c.record(ctx, op, outcomeShortCircuit, 0)
		err := fmt.Errorf("%w: circuit %s open", sentinel.ErrUnavailable, c.breaker.Name())
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeShortCircuit)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, challenge, body, out)
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	outcome := classify(err)
	c.record(ctx, op, outcome, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return status, fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, challenge string, body, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	u := *c.baseURL
	u.Path += path
	u.RawQuery = url.Values{"consent_challenge": {challenge}}.Encode()

	// wrote flips once the request has been handed to the network. A failure
	// before that point means the server cannot have acted on it.
	var wrote atomic.Bool
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				wrote.Store(true)
			}
		},
	})

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, transportError(method, wrote.Load(), err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err := statusError(method, resp.StatusCode, raw); err != nil {
		return resp.StatusCode, err
	}
	if readErr != nil {
		return resp.StatusCode, transportError(method, true, readErr)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			if method == http.MethodPut {
				return resp.StatusCode, fmt.Errorf("%w: decode response: %v", sentinel.ErrAmbiguous, err)
			}
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// transportError classifies a failure with no usable response. Reads are
// always retryable; a write that reached the network may have taken effect.
func transportError(method string, wrote bool, err error) error {
	if method == http.MethodGet || !wrote {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", sentinel.ErrAmbiguous, err)
}

func statusError(method string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	detail := describe(body)
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", sentinel.ErrNotFound, detail)
	case status == http.StatusGone && handled(body):
		return fmt.Errorf("%w: %s", sentinel.ErrAlreadyUsed, detail)
	case status == http.StatusGone:
		return fmt.Errorf("%w: %s", sentinel.ErrExpired, detail)
	case method == http.MethodPut && status == http.StatusConflict:
		return fmt.Errorf("%w: %s", sentinel.ErrAlreadyUsed, detail)
	case status == http.StatusTooManyRequests:
		// The server refused before processing, so even a write had no effect.
		return fmt.Errorf("%w: status %d: %s", sentinel.ErrUnavailable, status, detail)
	case status >= 500:
		if method == http.MethodGet {
			return fmt.Errorf("%w: status %d: %s", sentinel.ErrUnavailable, status, detail)
		}
		return fmt.Errorf("%w: status %d: %s", sentinel.ErrAmbiguous, status, detail)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, detail)
	}
}

// handled reports whether a 410 body says the request was already decided.
// The authorization server answers a handled request with its redirect; a
// stale one carries only an error.
func handled(body []byte) bool {
	var v struct {
		RedirectTo string `json:"redirect_to"`
		genericError
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	return v.RedirectTo != "" || v.Error == errRequestHandled
}

func describe(body []byte) string {
	var ge genericError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error != "" {
		if ge.ErrorDescription != "" {
			return ge.Error + ": " + ge.ErrorDescription
		}
		return ge.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	case errors.Is(err, sentinel.ErrExpired):
		return "expired"
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, sentinel.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, sentinel.ErrAmbiguous):
		return "ambiguous"
	default:
		return "error"
	}
}

// record feeds the breaker and observer. Only transport-level trouble counts
// against upstream health; a 404 is a healthy answer.
func (c *Client) record(ctx context.Context, op, outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(op, outcome, d)
	}
	if c.breaker == nil || outcome == outcomeShortCircuit {
		return
	}
	switch outcome {
	case "unavailable", "ambiguous":
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "authorization server marked unhealthy",
				"breaker", c.breaker.Name(),
				"operation", op,
			)
			if c.observer != nil {
				c.observer.SetUpstreamCircuitOpen(true)
			}
		}
	default:
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "authorization server recovered",
				"breaker", c.breaker.Name(),
			)
			if c.observer != nil {
				c.observer.SetUpstreamCircuitOpen(false)
			}
		}
	}
}
