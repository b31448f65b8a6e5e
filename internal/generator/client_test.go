package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name        string
		targets     []string
		status      int
		body        string
		wantRequest GenerateRequest
		want        GenerateResponse
		wantSuccess bool
		wantMessage string
		wantErr     bool
	}{
		{
			name:        "whole block",
			status:      http.StatusOK,
			body:        `{"status": "success", "log": "done", "targets": []}`,
			wantRequest: GenerateRequest{BlockID: "004", Targets: []string{}, Force: true},
			want:        GenerateResponse{Status: "success", Log: "done", Targets: []string{}},
			wantSuccess: true,
			wantMessage: "Generation Complete",
		},
		{
			name:        "selected slides",
			targets:     []string{"slide_a", "slide_c"},
			status:      http.StatusOK,
			body:        `{"status": "success", "targets": ["slide_a", "slide_c"]}`,
			wantRequest: GenerateRequest{BlockID: "004", Targets: []string{"slide_a", "slide_c"}, Force: true},
			want:        GenerateResponse{Status: "success", Targets: []string{"slide_a", "slide_c"}},
			wantSuccess: true,
			wantMessage: "Generation Complete",
		},
		{
			name:        "backend reports failure",
			status:      http.StatusInternalServerError,
			body:        `{"error": "Generation failed", "details": "missing script.txt"}`,
			wantRequest: GenerateRequest{BlockID: "004", Targets: []string{}, Force: true},
			want:        GenerateResponse{Error: "Generation failed", Details: "missing script.txt"},
			wantMessage: "missing script.txt",
		},
		{
			name:        "success status other than success",
			status:      http.StatusOK,
			body:        `{"status": "queued"}`,
			wantRequest: GenerateRequest{BlockID: "004", Targets: []string{}, Force: true},
			want:        GenerateResponse{Status: "queued"},
			wantMessage: "Failed",
		},
		{
			name:        "error without json body",
			status:      http.StatusBadGateway,
			body:        `bad gateway`,
			wantRequest: GenerateRequest{BlockID: "004", Targets: []string{}, Force: true},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest GenerateRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/generate", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL+"/", 0)
			defer client.Close()

			got, err := client.Generate(context.Background(), "004", tt.targets, true)
			assert.Equal(t, tt.wantRequest, gotRequest)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSuccess, got.Succeeded())
			assert.Equal(t, tt.wantMessage, got.Message())
		})
	}
}

func TestClient_Generate_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(server.URL, 0)
	defer client.Close()

	_, err := client.Generate(context.Background(), "004", nil, false)
	assert.Error(t, err)

	_, err = client.Generate(context.Background(), "", nil, false)
	assert.ErrorIs(t, err, ErrMissingBlockID)
}

func TestClient_UpdatePrompt(t *testing.T) {
	tests := []struct {
		name      string
		assetType PromptAsset
		status    int
		body      string
		want      UpdatePromptResponse
		wantErr   string
	}{
		{
			name:      "saved",
			assetType: PromptAssetImagePrompts,
			status:    http.StatusOK,
			body:      `{"status": "saved", "path": "drafts/block_004"}`,
			want:      UpdatePromptResponse{Status: "saved", Path: "drafts/block_004"},
		},
		{
			name:      "block not found",
			assetType: PromptAssetScript,
			status:    http.StatusNotFound,
			body:      `{"error": "Block 004 not found"}`,
			wantErr:   "response error 404: Block 004 not found",
		},
		{
			name:      "unknown asset type",
			assetType: "audio",
			wantErr:   "unknown prompt asset type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest UpdatePromptRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/update_prompt", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 0)
			defer client.Close()

			got, err := client.UpdatePrompt(context.Background(), "004", tt.assetType, "A salon chair, studio lighting")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, UpdatePromptRequest{
				BlockID:   "004",
				AssetType: tt.assetType,
				Content:   "A salon chair, studio lighting",
			}, gotRequest)
		})
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "mode": "omega_bridge"}`))
	}))
	defer server.Close()

	client := NewClient("http://127.0.0.1:1", 0)
	defer client.Close()

	assert.Equal(t, HealthResponse{Status: HealthOffline}, client.Health(context.Background()))

	client.SetBaseURL(server.URL + "/")
	assert.Equal(t, server.URL, client.BaseURL())
	assert.Equal(t, HealthResponse{Status: "ok", Mode: "omega_bridge"}, client.Health(context.Background()))
}

func TestSlideTarget(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{index: 0, want: "slide_a"},
		{index: 2, want: "slide_c"},
		{index: 25, want: "slide_z"},
		{index: 26, want: "slide_aa"},
		{index: 27, want: "slide_ab"},
		{index: -1, want: "slide_a"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, SlideTarget(tt.index))
		})
	}
}
