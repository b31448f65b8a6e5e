// Package generator triggers asset generation on the content backend.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"
)

const statusSuccess = "success"

// HealthOffline is the status reported when the backend cannot be reached.
const HealthOffline = "offline"

// PromptAsset names a prompt file that UpdatePrompt can overwrite.
type PromptAsset string

const (
	PromptAssetScript       PromptAsset = "script"
	PromptAssetImagePrompts PromptAsset = "image_prompts"
)

var ErrMissingBlockID = errors.New("block id is required")

type GenerateRequest struct {
	BlockID string   `json:"blockId"`
	Targets []string `json:"targets"`
	Force   bool     `json:"force"`
}

type GenerateResponse struct {
	Status  string   `json:"status,omitempty"`
	Log     string   `json:"log,omitempty"`
	Targets []string `json:"targets,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details string   `json:"details,omitempty"`
}

// Succeeded reports whether the backend finished generation.
func (r GenerateResponse) Succeeded() bool {
	return r.Status == statusSuccess
}

// Message is the human readable failure reason.
func (r GenerateResponse) Message() string {
	if r.Succeeded() {
		return "Generation Complete"
	}
	if r.Details != "" {
		return r.Details
	}
	if r.Error != "" {
		return r.Error
	}
	return "Failed"
}

type UpdatePromptRequest struct {
	BlockID   string      `json:"blockId"`
	AssetType PromptAsset `json:"assetType"`
	Content   string      `json:"content"`
}

type UpdatePromptResponse struct {
	Status string `json:"status,omitempty"`
	Path   string `json:"path,omitempty"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode,omitempty"`
}

// Client calls the generation backend. Calls are never retried.
type Client struct {
	httpClient *resty.Client

	mu      sync.RWMutex
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// SetBaseURL points the client at another backend.
func (client *Client) SetBaseURL(baseURL string) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

func (client *Client) BaseURL() string {
	client.mu.RLock()
	defer client.mu.RUnlock()
	return client.baseURL
}

// Generate asks the backend to regenerate targets of a block. Empty targets
// regenerate the whole block. A response from the backend is returned even
// when generation failed; an error means the backend was not reached or did
// not answer with JSON.
func (client *Client) Generate(ctx context.Context, blockID string, targets []string, force bool) (GenerateResponse, error) {
	if blockID == "" {
		return GenerateResponse{}, ErrMissingBlockID
	}
	if targets == nil {
		targets = []string{}
	}

	var result, failure GenerateResponse
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(GenerateRequest{BlockID: blockID, Targets: targets, Force: force}).
		SetResult(&result).
		SetError(&failure).
		Post(client.BaseURL() + "/generate")
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("httpClient.Post(/generate) > %w", err)
	}
	if response.IsError() {
		if failure.Status == "" && failure.Error == "" && failure.Details == "" {
			return GenerateResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
		}
		slog.Warn("generation failed",
			"blockId", blockID,
			"status", response.StatusCode(),
			"error", failure.Error,
		)
		return failure, nil
	}

	slog.Info("generation finished", "blockId", blockID, "targets", targets, "status", result.Status)
	return result, nil
}

// UpdatePrompt overwrites the script or image prompts of a block without
// triggering generation.
func (client *Client) UpdatePrompt(ctx context.Context, blockID string, assetType PromptAsset, content string) (UpdatePromptResponse, error) {
	if blockID == "" {
		return UpdatePromptResponse{}, ErrMissingBlockID
	}
	switch assetType {
	case PromptAssetScript, PromptAssetImagePrompts:
	default:
		return UpdatePromptResponse{}, fmt.Errorf("unknown prompt asset type %q", assetType)
	}

	var result, failure UpdatePromptResponse
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(UpdatePromptRequest{BlockID: blockID, AssetType: assetType, Content: content}).
		SetResult(&result).
		SetError(&failure).
		Post(client.BaseURL() + "/update_prompt")
	if err != nil {
		return UpdatePromptResponse{}, fmt.Errorf("httpClient.Post(/update_prompt) > %w", err)
	}
	if response.IsError() {
		message := failure.Error
		if message == "" {
			message = response.String()
		}
		return failure, fmt.Errorf("response error %d: %s", response.StatusCode(), message)
	}
	return result, nil
}

// Health reports the backend status, or HealthOffline when it cannot be
// reached.
func (client *Client) Health(ctx context.Context) HealthResponse {
	var result HealthResponse
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get(client.BaseURL() + "/health")
	if err != nil {
		slog.Debug("backend health check failed", "error", err)
		return HealthResponse{Status: HealthOffline}
	}
	if response.IsError() || result.Status == "" {
		return HealthResponse{Status: HealthOffline}
	}
	return result
}

// SlideTarget returns the generation target of the i-th slide: slide_a,
// slide_b, ..., slide_z, slide_aa, ...
func SlideTarget(i int) string {
	return "slide_" + letters(i)
}

func letters(i int) string {
	if i < 0 {
		i = 0
	}
	var b []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('a' + (n-1)%26)}, b...)
	}
	return string(b)
}
