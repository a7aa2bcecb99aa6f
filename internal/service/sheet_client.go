package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sheetproxy/internal/model"
)

var ErrUpstreamStatus = errors.New("upstream returned an error status")

type SheetClient struct {
	resource     model.Resource
	baseURL      string
	callbackName string
	httpClient   *http.Client
	now          func() time.Time
}

type SheetClientOption func(*SheetClient)

// WithCallbackName asks the upstream for the legacy `name(<json>)` format.
func WithCallbackName(name string) SheetClientOption {
	return func(s *SheetClient) { s.callbackName = name }
}

func WithHTTPClient(c *http.Client) SheetClientOption {
	return func(s *SheetClient) { s.httpClient = c }
}

func WithClock(now func() time.Time) SheetClientOption {
	return func(s *SheetClient) { s.now = now }
}

func NewSheetClient(resource model.Resource, baseURL string, opts ...SheetClientOption) *SheetClient {
	s := &SheetClient{
		resource:   resource,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SheetClient) Resource() model.Resource {
	return s.resource
}

func (s *SheetClient) ReadAll(ctx context.Context) (json.RawMessage, error) {
	return s.read(ctx, nil)
}

func (s *SheetClient) ReadByID(ctx context.Context, id string) (json.RawMessage, error) {
	return s.read(ctx, url.Values{s.resource.LookupParam(): {id}})
}

func (s *SheetClient) Write(ctx context.Context, body []byte) (*WriteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	text, contentType, err := s.do(req)
	if err != nil {
		return nil, err
	}

	res := &WriteResult{Body: text, ContentType: contentType}
	if raw, ok := ExtractJSONText(text); ok {
		res.Body = raw
		res.IsJSON = true
	}
	return res, nil
}

// BuildURL appends the cache-busting timestamp, the legacy callback and any
// lookup parameters to the configured base URL.
func (s *SheetClient) BuildURL(extra url.Values) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if s.callbackName != "" {
		q.Set("format", "jsonp")
		q.Set("callback", s.callbackName)
	}
	q.Set("t", strconv.FormatInt(s.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (s *SheetClient) read(ctx context.Context, extra url.Values) (json.RawMessage, error) {
	target, err := s.BuildURL(extra)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	text, _, err := s.do(req)
	if err != nil {
		return nil, err
	}

	raw, ok := ExtractJSONText(text)
	if !ok {
		return nil, ErrUnparseable
	}
	return NormalizeEnvelope(raw)
}

func (s *SheetClient) do(req *http.Request) ([]byte, string, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s upstream request failed: %w", s.resource, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s upstream response: %w", s.resource, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}
	return text, resp.Header.Get("Content-Type"), nil
}
