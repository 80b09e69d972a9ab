// Package registry implements ports.Registry against an npm compatible registry.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/zerr"
)

// AcceptHeader asks for the abbreviated install metadata document.
const AcceptHeader = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8, */*"

// Client implements ports.Registry over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	newBackOff func() backoff.BackOff
}

// NewClient creates a Client for the registry named in cfg.
func NewClient(cfg *domain.Config) *Client {
	return newClientWithHTTP(cfg.Registry, &http.Client{Timeout: cfg.Timeout}, cfg.Retries)
}

func newClientWithHTTP(baseURL string, client *http.Client, retries int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		retries:    retries,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Fetch returns every published version of name. Transport failures, 429
// and 5xx answers are retried with exponential backoff.
func (c *Client) Fetch(ctx context.Context, name string) (*domain.Manifest, error) {
	if name == "" {
		return nil, zerr.Wrap(domain.ErrEmptyPackageName, "failed to fetch manifest")
	}

	endpoint := c.baseURL + "/" + url.PathEscape(name)
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(max(c.retries, 0))), ctx)

	return backoff.RetryWithData(func() (*domain.Manifest, error) {
		return c.fetchOnce(ctx, endpoint, name)
	}, policy)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint, name string) (*domain.Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(unavailable(name, err.Error()))
	}
	req.Header.Set("Accept", AcceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(unavailable(name, ctx.Err().Error()))
		}
		return nil, unavailable(name, err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(
			zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "registry has no such package"), "package", name),
		)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, zerr.With(unavailable(name, resp.Status), "status_code", resp.StatusCode)
	default:
		return nil, backoff.Permanent(zerr.With(unavailable(name, resp.Status), "status_code", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(name, err.Error())
	}

	manifest, err := decodeManifest(name, body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return manifest, nil
}

func unavailable(name, reason string) error {
	return zerr.With(zerr.Wrap(domain.ErrRegistryUnavailable, fmt.Sprintf("registry request failed: %s", reason)), "package", name)
}
