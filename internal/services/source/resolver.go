package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/services"
)

const (
	defaultHTTPTimeout  = 30 * time.Second
	defaultPollAttempts = 10
	defaultPollDelay    = 3 * time.Second
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Resolved describes a successfully resolved source.
type Resolved struct {
	VideoID  string
	Title    string
	AudioURL string
}

// Resolver turns media page URLs into audio download links via the hosted
// conversion API.
type Resolver struct {
	apiKey     string
	apiHost    string
	baseURL    string
	httpClient *http.Client

	pollAttempts int
	pollDelay    time.Duration
	sleeper      func(time.Duration)
}

// Option customizes the resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithPolling overrides how long the resolver waits for a conversion that the
// API reports as still processing.
func WithPolling(attempts int, delay time.Duration) Option {
	return func(r *Resolver) {
		if attempts > 0 {
			r.pollAttempts = attempts
		}
		if delay >= 0 {
			r.pollDelay = delay
		}
	}
}

// WithBaseURL overrides the conversion API base URL (useful for tests). The
// default is https://<api_host>.
func WithBaseURL(baseURL string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithSleeper overrides how poll sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(r *Resolver) {
		r.sleeper = sleeper
	}
}

// NewResolver constructs a resolver from configuration.
func NewResolver(cfg config.Source, opts ...Option) *Resolver {
	timeout := defaultHTTPTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	resolver := &Resolver{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiHost:      strings.TrimSpace(cfg.APIHost),
		httpClient:   &http.Client{Timeout: timeout},
		pollAttempts: defaultPollAttempts,
		pollDelay:    defaultPollDelay,
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// ExtractVideoID pulls the video identifier out of the supported URL shapes.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", services.Wrap(services.ErrSourceUnavailable, "source", "parse", "empty url", nil)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", services.Wrap(services.ErrSourceUnavailable, "source", "parse", rawURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	var candidate string
	switch host {
	case "youtu.be":
		candidate = strings.Trim(parsed.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if v := parsed.Query().Get("v"); v != "" {
			candidate = v
		} else {
			segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
			if len(segments) == 2 && (segments[0] == "shorts" || segments[0] == "embed" || segments[0] == "live") {
				candidate = segments[1]
			}
		}
	default:
		return "", services.Wrap(services.ErrSourceUnavailable, "source", "parse", fmt.Sprintf("unsupported host %q", parsed.Hostname()), nil)
	}

	if !videoIDPattern.MatchString(candidate) {
		return "", services.Wrap(services.ErrSourceUnavailable, "source", "parse", fmt.Sprintf("no video id in %q", rawURL), nil)
	}
	return candidate, nil
}

type conversionResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Title  string `json:"title"`
	Link   string `json:"link"`
}

// Resolve converts a media page URL into a Resolved source with a direct audio
// download link. The conversion API may report the transcode as in progress,
// in which case the call polls until the link is ready or the budget runs out.
func (r *Resolver) Resolve(ctx context.Context, mediaURL string) (Resolved, error) {
	if r == nil || r.httpClient == nil {
		return Resolved{}, services.Wrap(services.ErrConfiguration, "source", "resolve", "resolver not configured", nil)
	}
	if r.apiKey == "" {
		return Resolved{}, services.Wrap(services.ErrConfiguration, "source", "resolve", "api key required", nil)
	}
	if r.apiHost == "" {
		return Resolved{}, services.Wrap(services.ErrConfiguration, "source", "resolve", "api host required", nil)
	}

	videoID, err := ExtractVideoID(mediaURL)
	if err != nil {
		return Resolved{}, err
	}

	attempts := r.pollAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		conversion, err := r.requestConversion(ctx, videoID)
		if err != nil {
			return Resolved{}, err
		}
		switch strings.ToLower(strings.TrimSpace(conversion.Status)) {
		case "ok":
			link := strings.TrimSpace(conversion.Link)
			if link == "" {
				return Resolved{}, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "conversion returned no link", nil)
			}
			return Resolved{
				VideoID:  videoID,
				Title:    strings.TrimSpace(conversion.Title),
				AudioURL: link,
			}, nil
		case "processing":
			if attempt == attempts {
				return Resolved{}, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "conversion still processing after poll budget", nil)
			}
			if err := r.sleep(ctx, r.pollDelay); err != nil {
				return Resolved{}, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "poll interrupted", err)
			}
		default:
			message := strings.TrimSpace(conversion.Msg)
			if message == "" {
				message = fmt.Sprintf("conversion status %q", conversion.Status)
			}
			return Resolved{}, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", message, nil)
		}
	}
	return Resolved{}, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "conversion never completed", nil)
}

// Fetch streams the resolved audio download. The caller owns the close.
func (r *Resolver) Fetch(ctx context.Context, audioURL string) (io.ReadCloser, error) {
	if r == nil || r.httpClient == nil {
		return nil, services.Wrap(services.ErrConfiguration, "source", "fetch", "resolver not configured", nil)
	}
	audioURL = strings.TrimSpace(audioURL)
	if audioURL == "" {
		return nil, services.Wrap(services.ErrSourceUnavailable, "source", "fetch", "empty audio url", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "source", "fetch", audioURL, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "source", "fetch", "download audio", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, services.Wrap(services.ErrSourceUnavailable, "source", "fetch", detail, nil)
	}
	return resp.Body, nil
}

func (r *Resolver) requestConversion(ctx context.Context, videoID string) (conversionResponse, error) {
	var conversion conversionResponse
	base := r.baseURL
	if base == "" {
		base = "https://" + r.apiHost
	}
	endpoint := fmt.Sprintf("%s/dl?id=%s", base, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return conversion, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "build request", err)
	}
	req.Header.Set("X-RapidAPI-Key", r.apiKey)
	req.Header.Set("X-RapidAPI-Host", r.apiHost)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return conversion, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "conversion request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return conversion, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return conversion, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", detail, nil)
	}
	if err := json.Unmarshal(body, &conversion); err != nil {
		return conversion, services.Wrap(services.ErrSourceUnavailable, "source", "resolve", "decode response", err)
	}
	return conversion, nil
}

func (r *Resolver) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
