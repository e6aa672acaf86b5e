package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"greendex/config"
)

// ErrNotFound is returned when an upstream service has no document for the
// requested repository or package.
var ErrNotFound = errors.New("upstream document not found")

// userAgentTransport adds the contact User-Agent header to every request.
// The ecosystem services rate-limit anonymous clients aggressively.
type userAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.UserAgent)
	return t.Transport.RoundTrip(req)
}

// Client talks to the upstream ecosystem services. One instance is shared by
// all sync workers.
type Client struct {
	Config *config.Config
	Logger *zap.Logger

	httpClient *http.Client
}

// New creates a client with the shared transport.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		Config: cfg,
		Logger: logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &userAgentTransport{
				Transport: http.DefaultTransport,
				UserAgent: cfg.UserAgent,
			},
		},
	}
}

// getJSON fetches a URL and decodes the JSON body into out. A 404 maps to
// ErrNotFound; other non-2xx statuses are errors.
func (c *Client) getJSON(rawURL string, out any) error {
	resp, err := c.httpClient.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getText fetches a URL and returns the body as a string.
func (c *Client) getText(rawURL string) (string, error) {
	resp, err := c.httpClient.Get(rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ResolveURL follows redirects and returns the final URL a project page
// lands on. Submitted URLs frequently point at moved or renamed
// repositories.
func (c *Client) ResolveURL(rawURL string) (string, error) {
	resp, err := c.httpClient.Get(rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	final := resp.Request.URL
	// drop tracking noise picked up along redirect chains
	final.RawQuery = ""
	final.Fragment = ""
	return final.String(), nil
}

// Ping fires a background-refresh request at an upstream endpoint. Failures
// are logged and swallowed: pings are best effort.
func (c *Client) Ping(rawURL string) {
	resp, err := c.httpClient.Get(rawURL)
	if err != nil {
		c.Logger.Debug("ping failed", zap.String("url", rawURL), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
}

// apiURL joins a service base URL with an API path and query parameters.
func apiURL(base, path string, params url.Values) string {
	u := base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
