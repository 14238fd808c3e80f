package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/services"
)

const (
	defaultHTTPTimeout = 120 * time.Second
	userAgent          = "Scribe-Go/0.1.0"
)

// FullAudioKey returns the object key for a job's complete audio upload.
func FullAudioKey(jobID string) string {
	return fmt.Sprintf("full_audio_%s", jobID)
}

// SegmentKey returns the object key for one extracted segment clip.
func SegmentKey(jobID string, index int) string {
	return fmt.Sprintf("segment_%s_%d.mp3", jobID, index)
}

// Client talks to the HTTP object store holding audio artifacts.
type Client struct {
	endpoint   string
	bucket     string
	apiKey     string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an object store client from configuration.
func NewClient(cfg config.BlobStore, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	client := &Client{
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		bucket:     strings.TrimSpace(cfg.Bucket),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ObjectURL returns the addressable URL for a stored object. Engines that pull
// audio directly from the store receive this URL instead of raw bytes.
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, url.PathEscape(key))
}

// Put streams body into the store under key. The store overwrites any existing
// object, which makes segment retries idempotent.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if err := c.ready(key); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.ObjectURL(key), body)
	if err != nil {
		return services.Wrap(services.ErrStore, "blobstore", "put", key, err)
	}
	c.decorate(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrStore, "blobstore", "put", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError("put", key, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Open returns a reader over a stored object. The caller owns the close.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := c.ready(key); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ObjectURL(key), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "blobstore", "get", key, err)
	}
	c.decorate(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "blobstore", "get", key, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, c.statusError("get", key, resp)
	}
	return resp.Body, nil
}

// Delete removes a stored object. Deleting an absent object is not an error so
// cleanup paths can run unconditionally.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.ready(key); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.ObjectURL(key), nil)
	if err != nil {
		return services.Wrap(services.ErrStore, "blobstore", "delete", key, err)
	}
	c.decorate(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrStore, "blobstore", "delete", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError("delete", key, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) ready(key string) error {
	if c == nil || c.httpClient == nil {
		return services.Wrap(services.ErrConfiguration, "blobstore", "client", "not configured", nil)
	}
	if c.endpoint == "" {
		return services.Wrap(services.ErrConfiguration, "blobstore", "client", "endpoint required", nil)
	}
	if c.bucket == "" {
		return services.Wrap(services.ErrConfiguration, "blobstore", "client", "bucket required", nil)
	}
	if strings.TrimSpace(key) == "" {
		return services.Wrap(services.ErrStore, "blobstore", "client", "object key required", nil)
	}
	return nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) statusError(operation, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	message := fmt.Sprintf("%s: http %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	return services.Wrap(services.ErrStore, "blobstore", operation, message, nil)
}
