// Package transport performs the single HTTP GET against an introspection
// endpoint and, when asked, converts the XML reply into a generic nested
// mapping.
//
// A connection-level failure is not an error here: it is reported through
// Result.OK so callers can classify the endpoint as unreachable. Only
// failures after a response was received (reading or parsing the body) are
// returned as errors.
package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/clbanning/mxj/v2"

	"introspect/internal/middleware"
)

// DefaultTimeout bounds connect plus read when the caller does not set one.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of one Fetch.
type Result struct {
	// OK is false when no connection to the endpoint could be established.
	OK bool
	// Status is the HTTP status code of the reply (0 when !OK).
	Status int
	// Text is the unmodified body when the fetch was not parsed as XML.
	Text string
	// Doc is the parsed body when the fetch was parsed as XML.
	Doc Doc
}

// Client issues introspection requests. It is safe for concurrent use.
type Client struct {
	http *http.Client
}

// New creates a Client whose requests are bounded by timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: middleware.Logger(http.DefaultTransport),
		},
	}
}

// NewWithHTTPClient wraps an existing *http.Client, e.g. one pointed at an
// httptest server.
func NewWithHTTPClient(c *http.Client) *Client {
	return &Client{http: c}
}

// Fetch performs exactly one GET against url. With parseXML the body is
// decoded into Result.Doc, otherwise it is returned verbatim in Result.Text.
func (c *Client) Fetch(ctx context.Context, url string, parseXML bool) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("transport: building request for %q: %w", url, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("transport: %s: %w", url, ctxErr)
		}
		slog.Info("transport: endpoint unreachable", "url", url, "error", err)
		return Result{OK: false, Doc: Doc{}}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("transport: reading body from %s: %w", url, err)
	}

	res := Result{OK: true, Status: resp.StatusCode}
	if !parseXML {
		res.Text = string(body)
		return res, nil
	}

	doc, err := ParseXML(body)
	if err != nil {
		return Result{}, fmt.Errorf("transport: %s (HTTP %d): %w", url, resp.StatusCode, err)
	}
	res.Doc = doc
	return res, nil
}

// ParseXML converts an XML document into a Doc. Element text is stored under
// TextKey, attributes under AttrPrefix+name, repeated sibling elements become
// a []any and a lone element stays a bare mapping.
func ParseXML(body []byte) (Doc, error) {
	m, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("%w: not an XML document: %v", ErrShape, err)
	}
	return Doc(m), nil
}
