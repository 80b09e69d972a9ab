package registry

import (
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// NewClientForTest creates a Client that retries without waiting.
func NewClientForTest(baseURL string, client *http.Client, retries int) *Client {
	c := newClientWithHTTP(baseURL, client, retries)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}
