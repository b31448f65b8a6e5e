package stitcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSource_Manifest(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		want        []string
		wantErr     bool
		wantMissing bool
	}{
		{
			name:   "returns blocks",
			status: http.StatusOK,
			body:   `{"blocks": ["Hour 1 - Sanitation/block_001", "Hour 1 - Sanitation/block_002"]}`,
			want:   []string{"Hour 1 - Sanitation/block_001", "Hour 1 - Sanitation/block_002"},
		},
		{
			name:   "missing blocks key",
			status: http.StatusOK,
			body:   `{}`,
			want:   []string{},
		},
		{
			name:   "non string entries are dropped",
			status: http.StatusOK,
			body:   `{"blocks": ["a", 1, null, ""]}`,
			want:   []string{"a"},
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "boom"}`,
			wantErr: true,
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"error": "Not found"}`,
			wantErr:     true,
			wantMissing: true,
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/scorpion/manifest", r.URL.Path)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			source := NewRemoteSource(server.URL+"/", 0)
			defer source.Close()

			got, err := source.Manifest(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
				if tc.wantMissing {
					assert.ErrorIs(t, err, ErrNotFound)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRemoteSource_Block(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scorpion/Hour%201%20-%20Sanitation/block_001", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"block_id": "001", "hour_name": "Hour 1"}`))
	}))
	defer server.Close()

	source := NewRemoteSource(server.URL, 0)
	defer source.Close()

	got, err := source.Block(context.Background(), "Hour 1 - Sanitation/block_001")
	require.NoError(t, err)
	assert.JSONEq(t, `{"block_id": "001", "hour_name": "Hour 1"}`, string(got))
	assert.Equal(t, server.URL+"/api/scorpion/Hour%201%20-%20Sanitation/block_001", source.AssetPrefix("Hour 1 - Sanitation/block_001"))
}

func TestRemoteSource_SetBaseURL(t *testing.T) {
	source := NewRemoteSource("http://localhost:5000/", 0)
	defer source.Close()
	assert.Equal(t, "http://localhost:5000", source.BaseURL())

	source.SetBaseURL("http://review.internal:8000//")
	assert.Equal(t, "http://review.internal:8000", source.BaseURL())
}

func TestRemoteSource_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	source := NewRemoteSource(url, 0)
	defer source.Close()

	_, err := source.Manifest(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRemoteSource_Enabled(t *testing.T) {
	source := NewRemoteSource("", 0)
	defer source.Close()
	assert.False(t, source.Enabled())

	source.SetBaseURL("http://localhost:5000")
	assert.True(t, source.Enabled())

	source.SetBaseURL("")
	assert.False(t, source.Enabled())
}

func TestEscapeReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "spaces", ref: "Hour 1 - Sanitation/block_001", want: "Hour%201%20-%20Sanitation/block_001"},
		{name: "query and fragment", ref: "a?b/c#d", want: "a%3Fb/c%23d"},
		{name: "reserved characters", ref: "Q&A = 1+1: @home $5/block_001", want: "Q%26A%20%3D%201%2B1%3A%20%40home%20%245/block_001"},
		{name: "percent sign", ref: "100%/block_001", want: "100%25/block_001"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EscapeReference(tc.ref))
		})
	}
}

func TestRemoteSource_Block_ReservedCharacters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scorpion/Q%26A%20%3D%20fun/block_001", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"block_id": "001"}`))
	}))
	defer server.Close()

	source := NewRemoteSource(server.URL, 0)
	defer source.Close()

	_, err := source.Block(context.Background(), "Q&A = fun/block_001")
	require.NoError(t, err)
}
