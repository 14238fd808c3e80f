package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a client for the given bind address. The address may be a
// bare host:port or a full http URL.
func NewClient(bind string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, fmt.Errorf("daemon API address is empty")
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse daemon API address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	return &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Submit enqueues a new transcription job.
func (c *Client) Submit(ctx context.Context, sessionID, mediaURL string) (JobView, error) {
	payload, err := json.Marshal(SubmitRequest{URL: mediaURL, SessionID: sessionID})
	if err != nil {
		return JobView{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/jobs", nil), bytes.NewReader(payload))
	if err != nil {
		return JobView{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp SubmitResponse
	if err := c.do(req, http.StatusAccepted, &resp); err != nil {
		return JobView{}, err
	}
	return resp.Job, nil
}

// List returns jobs, optionally filtered by status names.
func (c *Client) List(ctx context.Context, statuses ...string) ([]JobView, error) {
	values := url.Values{}
	for _, status := range statuses {
		if status = strings.TrimSpace(status); status != "" {
			values.Add("status", status)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/jobs", values), nil)
	if err != nil {
		return nil, err
	}
	var resp JobListResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// Describe returns one job including its transcript, or nil when unknown.
func (c *Client) Describe(ctx context.Context, jobID string) (*JobView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/jobs/"+url.PathEscape(jobID), nil), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var payload JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload.Job, nil
}

// Events returns the durable progress log after the given sequence number.
func (c *Client) Events(ctx context.Context, jobID string, since int64) ([]EventView, error) {
	values := url.Values{}
	if since > 0 {
		values.Set("since", strconv.FormatInt(since, 10))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/jobs/"+url.PathEscape(jobID)+"/events", values), nil)
	if err != nil {
		return nil, err
	}
	var resp EventListResponse
	if err := c.do(req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Follow streams progress events, invoking fn for each one. The stream replays
// history after since and then follows live updates until the job reaches a
// terminal state, the callback errors, or the context is canceled.
func (c *Client) Follow(ctx context.Context, jobID string, since int64, fn func(seq int64, content string) error) error {
	values := url.Values{"follow": {"1"}}
	if since > 0 {
		values.Set("since", strconv.FormatInt(since, 10))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/jobs/"+url.PathEscape(jobID)+"/events", values), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streams have no deadline; the server closes them at the terminal event.
	streaming := &http.Client{Transport: c.http.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	var (
		seq   int64
		data  []string
		seen  bool
		flush = func() error {
			if !seen {
				return nil
			}
			err := fn(seq, strings.Join(data, "\n"))
			seq, data, seen = 0, nil, false
			return err
		}
	)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "id: "):
			seq, _ = strconv.ParseInt(strings.TrimPrefix(line, "id: "), 10, 64)
			seen = true
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
			seen = true
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return scanner.Err()
}

func (c *Client) endpoint(path string, values url.Values) string {
	ref := &url.URL{Path: path}
	if len(values) > 0 {
		ref.RawQuery = values.Encode()
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon API returned status %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("daemon API returned status %d", resp.StatusCode)
}
