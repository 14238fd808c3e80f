package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/services"
)

const scribeDefaultTimeout = 300 * time.Second

// Transcriber is the upload-based engine. It streams the stored audio bytes
// to the provider as a multipart form instead of passing a reference.
type Transcriber struct {
	endpoint   string
	apiKey     string
	model      string
	language   string
	store      Store
	httpClient *http.Client
}

// TranscriberOption customizes the transcriber.
type TranscriberOption func(*Transcriber)

// WithTranscriberHTTPClient overrides the default HTTP client.
func WithTranscriberHTTPClient(client *http.Client) TranscriberOption {
	return func(t *Transcriber) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// NewTranscriber constructs the upload-based engine.
func NewTranscriber(cfg config.Engine, store Store, opts ...TranscriberOption) *Transcriber {
	timeout := scribeDefaultTimeout
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	transcriber := &Transcriber{
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		language:   strings.TrimSpace(cfg.Language),
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(transcriber)
	}
	return transcriber
}

// Name identifies the engine in logs and progress events.
func (t *Transcriber) Name() string { return "transcriber" }

type transcriberResponse struct {
	Text   string `json:"text"`
	Detail *struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// Transcribe uploads the stored object's bytes and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, objectKey string) (services.Result, error) {
	if t == nil || t.httpClient == nil || t.store == nil {
		return services.Empty(), services.Wrap(services.ErrConfiguration, "stt", "transcriber", "not configured", nil)
	}
	if t.endpoint == "" {
		return services.Empty(), services.Wrap(services.ErrConfiguration, "stt", "transcriber", "endpoint required", nil)
	}
	if t.apiKey == "" {
		return services.Empty(), services.Wrap(services.ErrConfiguration, "stt", "transcriber", "api key required", nil)
	}

	audio, err := t.store.Open(ctx, objectKey)
	if err != nil {
		return services.Empty(), err
	}
	defer audio.Close()

	// The multipart body is streamed through a pipe so segment audio never
	// has to be buffered in memory.
	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)
	go func() {
		part, err := form.CreateFormFile("file", objectKey)
		if err == nil {
			_, err = io.Copy(part, audio)
		}
		if err == nil {
			err = form.WriteField("model_id", t.model)
		}
		if err == nil && t.language != "" {
			err = form.WriteField("language_code", t.language)
		}
		if err == nil {
			err = form.Close()
		}
		pipeWriter.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, pipeReader)
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "transcriber", "build request", err)
	}
	req.Header.Set("xi-api-key", t.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "transcriber", "upload request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "transcriber", "read response", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "transcriber", detail, nil)
	}

	var decoded transcriberResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "transcriber", "decode response", err)
	}
	if decoded.Detail != nil && strings.TrimSpace(decoded.Detail.Message) != "" {
		return services.Empty(), services.Wrap(services.ErrEngine, "stt", "transcriber", strings.TrimSpace(decoded.Detail.Message), nil)
	}
	return services.Text(decoded.Text), nil
}
