// Package remote is the HTTP client for the todo REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/todo-1m/webclient/internal/platform/metrics"
	"github.com/todo-1m/webclient/internal/platform/tracing"
)

var ErrInvalidResponse = errors.New("invalid response")

const maxErrorBody = 64 << 10

// RequestError describes a failed call. Status is zero when no response
// was received.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Status > 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	default:
		return e.Op + " failed"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

// Message returns the backend message carried by err, or fallback when
// the backend did not supply one.
func Message(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return fallback
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// New returns a client for the API at baseURL. A nil httpClient gets a
// default with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tracer:     tracing.Tracer(),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// do runs one request and decodes a 2xx JSON body into out when out is
// non-nil and the body is non-empty.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) (err error) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "remote."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.ObserveRemote(op, started, err)
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	var reader io.Reader
	if body != nil {
		raw, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return &RequestError{Op: op, Err: marshalErr}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{Op: op, Status: resp.StatusCode, Message: backendMessage(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}
	return nil
}

type errorBody struct {
	Message    string      `json:"message"`
	Error      string      `json:"error"`
	Violations []violation `json:"violations"`
}

type violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// backendMessage extracts the human readable part of an error body:
// message, else error, followed by any field violations.
func backendMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}

	details := make([]string, 0, len(body.Violations))
	for _, v := range body.Violations {
		if d := strings.TrimSpace(v.Field + " " + v.Message); d != "" {
			details = append(details, d)
		}
	}
	if len(details) == 0 {
		return msg
	}
	if msg == "" {
		return strings.Join(details, " | ")
	}
	return msg + ": " + strings.Join(details, " | ")
}

// decodeList decodes raw as a JSON array into out. Anything else leaves
// out empty.
func decodeList[T any](raw json.RawMessage) []T {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil || items == nil {
		return []T{}
	}
	return items
}
