package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/specialistvlad/monox/internal/ctxlog"
)

// HTTPClient queries an npm-compatible registry over HTTP:
// GET <base>/<dep>/latest, answering {"version": "..."}.
type HTTPClient struct {
	client *resty.Client
}

type latestDocument struct {
	Version string `json:"version"`
}

// NewHTTPClient creates an HTTP binding rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	return &HTTPClient{client: c}
}

// Close releases idle connections.
func (h *HTTPClient) Close() error {
	return h.client.Close()
}

// Latest implements Client.
func (h *HTTPClient) Latest(ctx context.Context, name string) (string, error) {
	var doc latestDocument
	// Scoped names keep the '@' but encode the slash, as npm expects.
	escaped := strings.ReplaceAll(name, "/", "%2F")
	res, err := h.client.R().
		SetContext(ctx).
		SetRawPathParam("name", escaped).
		SetForceResponseContentType("application/json").
		SetResult(&doc).
		Get("/{name}/latest")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrLookupFailed, name, err)
	}
	if res.StatusCode() != http.StatusOK {
		ctxlog.FromContext(ctx).Debug("Registry answered with an error.", "dependency", name, "status", res.StatusCode())
		return "", fmt.Errorf("%w: %s: status %d", ErrLookupFailed, name, res.StatusCode())
	}
	if doc.Version == "" {
		return "", fmt.Errorf("%w: %s: response has no version", ErrLookupFailed, name)
	}
	return doc.Version, nil
}
