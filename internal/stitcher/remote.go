package stitcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"resty.dev/v3"
)

const scorpionPath = "/api/scorpion"

// RemoteSource reads manifests and blocks from the content backend.
type RemoteSource struct {
	httpClient *resty.Client

	mu      sync.RWMutex
	baseURL string
}

func NewRemoteSource(baseURL string, timeout time.Duration) *RemoteSource {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &RemoteSource{
		httpClient: client,
		baseURL:    trimBaseURL(baseURL),
	}
}

func (s *RemoteSource) Close() error {
	return s.httpClient.Close()
}

func (s *RemoteSource) Name() string {
	return "remote"
}

// SetBaseURL points the source at another backend.
func (s *RemoteSource) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = trimBaseURL(baseURL)
}

// Enabled reports whether a backend URL is set.
func (s *RemoteSource) Enabled() bool {
	return s.BaseURL() != ""
}

func (s *RemoteSource) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

// Manifest returns the "blocks" array of GET /api/scorpion/manifest.
func (s *RemoteSource) Manifest(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, s.BaseURL()+scorpionPath+"/manifest")
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("manifest response is not valid JSON: %s", truncate(body))
	}

	refs := []string{}
	for _, r := range gjson.Get(body, "blocks").Array() {
		if r.Type == gjson.String && r.String() != "" {
			refs = append(refs, r.String())
		}
	}
	return refs, nil
}

func (s *RemoteSource) Block(ctx context.Context, ref string) ([]byte, error) {
	body, err := s.get(ctx, s.BaseURL()+scorpionPath+"/"+EscapeReference(ref))
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("block %s response is not valid JSON: %s", ref, truncate(body))
	}
	return []byte(body), nil
}

// AssetPrefix is the block directory on the backend, which also serves the
// block's generated images.
func (s *RemoteSource) AssetPrefix(ref string) string {
	return s.BaseURL() + scorpionPath + "/" + EscapeReference(ref)
}

func (s *RemoteSource) get(ctx context.Context, u string) (string, error) {
	response, err := s.httpClient.R().
		SetContext(ctx).
		Get(u)
	if err != nil {
		return "", fmt.Errorf("httpClient.Get(%s) > %w", u, err)
	}
	if response.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("GET %s: %w", u, ErrNotFound)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), truncate(response.String()))
	}
	return response.String(), nil
}

// EscapeReference percent-encodes every path segment of a manifest
// reference, reserved characters such as & = + : @ $ included.
func EscapeReference(ref string) string {
	segments := strings.Split(ref, "/")
	for i, segment := range segments {
		segments[i] = strings.ReplaceAll(url.QueryEscape(segment), "+", "%20")
	}
	return strings.Join(segments, "/")
}

func trimBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func truncate(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
