package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/services"
)

const recognizerDefaultTimeout = 300 * time.Second

// Recognizer is the batch recognition engine. It hands the provider a
// reference to the stored audio object instead of uploading bytes, so the
// provider pulls the audio itself.
type Recognizer struct {
	endpoint   string
	apiKey     string
	model      string
	language   string
	store      Store
	httpClient *http.Client
}

// RecognizerOption customizes the recognizer.
type RecognizerOption func(*Recognizer)

// WithRecognizerHTTPClient overrides the default HTTP client.
func WithRecognizerHTTPClient(client *http.Client) RecognizerOption {
	return func(r *Recognizer) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewRecognizer constructs the batch recognition engine.
func NewRecognizer(cfg config.Engine, store Store, opts ...RecognizerOption) *Recognizer {
	timeout := recognizerDefaultTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	recognizer := &Recognizer{
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		language:   strings.TrimSpace(cfg.Language),
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(recognizer)
	}
	return recognizer
}

// Name identifies the engine in logs and progress events.
func (r *Recognizer) Name() string { return "recognizer" }

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	URI    string          `json:"uri"`
}

type recognizeConfig struct {
	LanguageCodes []string `json:"languageCodes"`
	Model         string   `json:"model"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe runs batch recognition against the stored object.
func (r *Recognizer) Transcribe(ctx context.Context, objectKey string) (services.Result, error) {
	if r == nil || r.httpClient == nil || r.store == nil {
		return services.Empty(), services.Wrap(services.ErrConfiguration, "stt", "recognizer", "not configured", nil)
	}
	if r.endpoint == "" {
		return services.Empty(), services.Wrap(services.ErrConfiguration, "stt", "recognizer", "endpoint required", nil)
	}
	if r.apiKey == "" {
		return services.Empty(), services.Wrap(services.ErrConfiguration, "stt", "recognizer", "api key required", nil)
	}

	payload := recognizeRequest{
		Config: recognizeConfig{
			LanguageCodes: []string{r.language},
			Model:         r.model,
		},
		URI: r.store.ObjectURL(objectKey),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", "recognize request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", detail, nil)
	}

	var decoded recognizeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", "decode response", err)
	}
	if decoded.Error != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "recognizer", strings.TrimSpace(decoded.Error.Message), nil)
	}

	var parts []string
	for _, result := range decoded.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if transcript := strings.TrimSpace(result.Alternatives[0].Transcript); transcript != "" {
			parts = append(parts, transcript)
		}
	}
	return services.Text(strings.Join(parts, " ")), nil
}
