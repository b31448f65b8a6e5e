package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/at-ishikawa/sigmareview/internal/assetaudit"
	"github.com/at-ishikawa/sigmareview/internal/generator"
	mock_server "github.com/at-ishikawa/sigmareview/internal/mocks/server"
	"github.com/at-ishikawa/sigmareview/internal/review"
	"github.com/at-ishikawa/sigmareview/internal/statistics"
	"github.com/at-ishikawa/sigmareview/internal/stitcher"
	"github.com/at-ishikawa/sigmareview/internal/storage"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *review.Store {
	t.Helper()
	store, err := review.NewStore(context.Background(), storage.NewMemoryStorage(), review.WithClock(func() time.Time {
		return fixedNow
	}))
	require.NoError(t, err)
	return store
}

func newTestHandler(t *testing.T, sources []stitcher.Source, opts ...Option) (*ReviewHandler, *review.Store) {
	t.Helper()
	if sources == nil {
		sources = []stitcher.Source{stitcher.NewEmbeddedFixtureSource("/assets/images")}
	}
	store := newTestStore(t)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewReviewHandler(stitcher.NewResolver(sources), store, opts...), store
}

func newRequest(t *testing.T, fields map[string]any) *connect.Request[structpb.Struct] {
	t.Helper()
	msg, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return connect.NewRequest(msg)
}

func decodeView[T any](t *testing.T, res *connect.Response[structpb.Struct]) T {
	t.Helper()
	var view T
	require.NoError(t, decode(res.Msg, &view))
	return view
}

func requireCode(t *testing.T, err error, code connect.Code) *connect.Error {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "not a connect error: %v", err)
	assert.Equal(t, code, connectErr.Code())
	return connectErr
}

func fieldViolations(t *testing.T, connectErr *connect.Error) []string {
	t.Helper()
	var fields []string
	for _, detail := range connectErr.Details() {
		msg, err := detail.Value()
		require.NoError(t, err)
		badRequest, ok := msg.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range badRequest.GetFieldViolations() {
			fields = append(fields, v.GetField())
		}
	}
	return fields
}

func emptyLocalSource() stitcher.Source {
	return stitcher.NewLocalSource(fstest.MapFS{
		"assets/manifests/index.json": &fstest.MapFile{Data: []byte(`{}`)},
	}, "")
}

func TestReviewHandler_GetManifest(t *testing.T) {
	tests := []struct {
		name      string
		sources   []stitcher.Source
		wantState ViewState
		want      []string
	}{
		{
			name:      "fixture blocks",
			wantState: ViewStateReady,
			want:      []string{"h1_block_001.json", "h1_block_002.json", "h1_block_004.json"},
		},
		{
			name:      "empty manifest",
			sources:   []stitcher.Source{emptyLocalSource()},
			wantState: ViewStateEmpty,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, tt.sources)

			res, err := handler.GetManifest(context.Background(), newRequest(t, nil))
			require.NoError(t, err)

			view := decodeView[ManifestView](t, res)
			assert.Equal(t, tt.wantState, view.State)
			assert.Equal(t, tt.want, view.Blocks)
		})
	}
}

func TestReviewHandler_GetOverview(t *testing.T) {
	handler, store := newTestHandler(t, nil)
	_, err := store.AddCorrection(context.Background(), review.CorrectionInput{
		BlockID:   "001",
		HourID:    "1",
		AssetType: review.AssetTypeImage,
		AssetName: "slide_a",
		Issue:     "blurry",
	})
	require.NoError(t, err)

	res, err := handler.GetOverview(context.Background(), newRequest(t, nil))
	require.NoError(t, err)

	view := decodeView[OverviewView](t, res)
	assert.Equal(t, ViewStateReady, view.State)
	require.Len(t, view.Overview.Hours, 4)
	assert.Equal(t, statistics.HourStatistics{
		HourID:      1,
		Title:       "Sanitation",
		TotalBlocks: 3,
		Pending:     2,
		Corrections: 1,
	}, view.Overview.Hours[0])
	assert.Equal(t, 3, view.Overview.TotalBlocks)
	assert.Equal(t, 1, view.Overview.TotalCorrections)
}

func TestReviewHandler_GetHour(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]any
		wantState  ViewState
		wantTitle  string
		wantBlocks []BlockSummary
		wantCode   connect.Code
		wantField  string
	}{
		{
			name:      "hour with blocks",
			fields:    map[string]any{"hourId": "1"},
			wantState: ViewStateReady,
			wantTitle: "Sanitation",
			wantBlocks: []BlockSummary{
				{Reference: "h1_block_001.json", BlockID: "001", Status: statistics.BlockStatusCorrections, Corrections: 1},
				{Reference: "h1_block_002.json", BlockID: "002", Status: statistics.BlockStatusPending},
				{Reference: "h1_block_004.json", BlockID: "004", Status: statistics.BlockStatusPending},
			},
		},
		{
			name:       "hour without blocks",
			fields:     map[string]any{"hourId": "3"},
			wantState:  ViewStateEmpty,
			wantTitle:  "Protocols",
			wantBlocks: []BlockSummary{},
		},
		{
			name:      "missing hour id",
			fields:    map[string]any{},
			wantCode:  connect.CodeInvalidArgument,
			wantField: "hourId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := newTestHandler(t, nil)
			_, err := store.UpsertCorrectionForBlock(context.Background(), "001", review.CorrectionPatch{
				Issue: review.Ptr("wrong caption"),
			})
			require.NoError(t, err)

			res, err := handler.GetHour(context.Background(), newRequest(t, tt.fields))
			if tt.wantCode != 0 {
				connectErr := requireCode(t, err, tt.wantCode)
				assert.Equal(t, []string{tt.wantField}, fieldViolations(t, connectErr))
				return
			}
			require.NoError(t, err)

			view := decodeView[HourView](t, res)
			assert.Equal(t, tt.wantState, view.State)
			assert.Equal(t, tt.wantTitle, view.Title)
			assert.Equal(t, tt.wantBlocks, view.Blocks)
		})
	}
}

func TestReviewHandler_GetBlock(t *testing.T) {
	tests := []struct {
		name          string
		fields        map[string]any
		wantReference string
		wantTitle     string
		wantCode      connect.Code
	}{
		{
			name:          "by block id",
			fields:        map[string]any{"blockId": "004"},
			wantReference: "h1_block_004.json",
			wantTitle:     "Block 004 - Disinfection Deep Dive",
		},
		{
			name:          "by reference",
			fields:        map[string]any{"reference": "h1_block_001.json"},
			wantReference: "h1_block_001.json",
			wantTitle:     "Block 001 - Introduction",
		},
		{
			name:     "unknown block",
			fields:   map[string]any{"blockId": "999"},
			wantCode: connect.CodeNotFound,
		},
		{
			name:     "no block id or reference",
			fields:   map[string]any{},
			wantCode: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, nil)

			res, err := handler.GetBlock(context.Background(), newRequest(t, tt.fields))
			if tt.wantCode != 0 {
				connectErr := requireCode(t, err, tt.wantCode)
				if tt.wantCode == connect.CodeNotFound {
					assert.Equal(t, string(ViewStateNotFound), connectErr.Meta().Get(ViewStateHeader))
				}
				return
			}
			require.NoError(t, err)

			view := decodeView[BlockView](t, res)
			assert.Equal(t, ViewStateReady, view.State)
			assert.Equal(t, tt.wantReference, view.Reference)
			require.NotNil(t, view.Block)
			assert.Equal(t, tt.wantTitle, view.Block.Title)
			assert.Empty(t, view.Corrections)
		})
	}
}

func TestReviewHandler_GetBlock_CheckAssets(t *testing.T) {
	assetServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "slide_a.png") || strings.HasSuffix(r.URL.Path, "slide_b.png") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer assetServer.Close()

	audit := assetaudit.NewLog(10)
	checker := assetaudit.NewChecker(audit, "https://placeholder.test/missing.svg", time.Second)
	handler, _ := newTestHandler(t,
		[]stitcher.Source{stitcher.NewEmbeddedFixtureSource(assetServer.URL + "/assets")},
		WithChecker(checker),
		WithAuditLog(audit),
	)

	res, err := handler.GetBlock(context.Background(), newRequest(t, map[string]any{
		"blockId":     "004",
		"checkAssets": true,
	}))
	require.NoError(t, err)

	view := decodeView[BlockView](t, res)
	assert.Equal(t, 2, view.MissingAssets)
	require.Len(t, view.Block.Slides, 3)
	assert.Equal(t, assetServer.URL+"/assets/block_004/slide_a.png", view.Block.Slides[0].ImageURL)
	assert.Equal(t, "https://placeholder.test/missing.svg", view.Block.Slides[2].ImageURL)
	assert.Empty(t, view.Block.Audio)

	res, err = handler.GetAssetLog(context.Background(), newRequest(t, nil))
	require.NoError(t, err)
	assert.Len(t, decodeView[AssetLogView](t, res).Entries, 2)

	_, err = handler.ClearAssetLog(context.Background(), newRequest(t, nil))
	require.NoError(t, err)
	res, err = handler.GetAssetLog(context.Background(), newRequest(t, nil))
	require.NoError(t, err)
	assert.Empty(t, decodeView[AssetLogView](t, res).Entries)
}

func TestReviewHandler_CorrectionLifecycle(t *testing.T) {
	ctx := context.Background()
	handler, store := newTestHandler(t, nil)

	res, err := handler.AddCorrection(ctx, newRequest(t, map[string]any{
		"blockId":   "002",
		"hourId":    "1",
		"assetType": "image",
		"assetName": "slide_b",
		"issue":     "<b>text overlaps</b> the logo",
		"priority":  "high",
	}))
	require.NoError(t, err)
	added := decodeView[CorrectionView](t, res).Correction
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "text overlaps the logo", added.Issue)
	assert.Equal(t, review.StatusPending, added.Status)
	assert.Equal(t, fixedNow, added.CreatedAt)

	for _, issue := range []string{"first pass", "second pass"} {
		_, err = handler.UpsertBlockCorrection(ctx, newRequest(t, map[string]any{
			"blockId": "004",
			"issue":   issue,
		}))
		require.NoError(t, err)
	}
	res, err = handler.ListCorrections(ctx, newRequest(t, map[string]any{"blockId": "004"}))
	require.NoError(t, err)
	blockCorrections := decodeView[CorrectionsView](t, res).Corrections
	require.Len(t, blockCorrections, 1)
	assert.Equal(t, "second pass", blockCorrections[0].Issue)
	assert.Equal(t, review.AssetTypePrompt, blockCorrections[0].AssetType)
	assert.Equal(t, review.BlockAssetName, blockCorrections[0].AssetName)

	_, err = handler.UpdateCorrection(ctx, newRequest(t, map[string]any{
		"id":     added.ID,
		"status": "fixed",
	}))
	require.NoError(t, err)
	updated, ok := store.Correction(added.ID)
	require.True(t, ok)
	assert.Equal(t, review.StatusFixed, updated.Status)
	assert.Equal(t, "text overlaps the logo", updated.Issue)

	_, err = handler.DeleteCorrection(ctx, newRequest(t, map[string]any{"id": added.ID}))
	require.NoError(t, err)
	_, err = handler.UpdateCorrection(ctx, newRequest(t, map[string]any{
		"id":    added.ID,
		"issue": "too late",
	}))
	require.NoError(t, err)

	res, err = handler.ListCorrections(ctx, newRequest(t, nil))
	require.NoError(t, err)
	all := decodeView[CorrectionsView](t, res).Corrections
	require.Len(t, all, 1)
	assert.Equal(t, "004", all[0].BlockID)
}

func TestReviewHandler_CorrectionErrors(t *testing.T) {
	tests := []struct {
		name      string
		call      func(h *ReviewHandler, req *connect.Request[structpb.Struct]) error
		fields    map[string]any
		wantField string
	}{
		{
			name: "add with unknown asset type",
			call: func(h *ReviewHandler, req *connect.Request[structpb.Struct]) error {
				_, err := h.AddCorrection(context.Background(), req)
				return err
			},
			fields: map[string]any{
				"blockId":   "001",
				"assetType": "video",
				"assetName": "clip",
			},
			wantField: "assetType",
		},
		{
			name: "upsert without block id",
			call: func(h *ReviewHandler, req *connect.Request[structpb.Struct]) error {
				_, err := h.UpsertBlockCorrection(context.Background(), req)
				return err
			},
			fields:    map[string]any{"issue": "no block"},
			wantField: "blockId",
		},
		{
			name: "update without id",
			call: func(h *ReviewHandler, req *connect.Request[structpb.Struct]) error {
				_, err := h.UpdateCorrection(context.Background(), req)
				return err
			},
			fields:    map[string]any{"status": "fixed"},
			wantField: "id",
		},
		{
			name: "delete without id",
			call: func(h *ReviewHandler, req *connect.Request[structpb.Struct]) error {
				_, err := h.DeleteCorrection(context.Background(), req)
				return err
			},
			fields:    map[string]any{},
			wantField: "id",
		},
		{
			name: "feedback with unknown action",
			call: func(h *ReviewHandler, req *connect.Request[structpb.Struct]) error {
				_, err := h.SubmitFeedback(context.Background(), req)
				return err
			},
			fields: map[string]any{
				"blockId": "001",
				"atomId":  "vis-001-a",
				"action":  "archive",
			},
			wantField: "action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := newTestHandler(t, nil)

			err := tt.call(handler, newRequest(t, tt.fields))

			connectErr := requireCode(t, err, connect.CodeInvalidArgument)
			assert.Equal(t, []string{tt.wantField}, fieldViolations(t, connectErr))
			assert.Empty(t, store.Corrections())
		})
	}
}

func TestReviewHandler_SubmitFeedback(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	res, err := handler.SubmitFeedback(context.Background(), newRequest(t, map[string]any{
		"blockId": "001",
		"hourId":  "1",
		"atomId":  "vis-001-b",
		"action":  "delete",
	}))
	require.NoError(t, err)

	c := decodeView[CorrectionView](t, res).Correction
	assert.Equal(t, "vis-001-b", c.AssetName)
	assert.Equal(t, review.AssetTypeImage, c.AssetType)
	assert.Equal(t, review.PriorityHigh, c.Priority)
	assert.Equal(t, "Marked for deletion", c.Issue)
}

func TestReviewHandler_ExportAndImport(t *testing.T) {
	ctx := context.Background()
	source, store := newTestHandler(t, nil)
	for _, in := range []review.CorrectionInput{
		{BlockID: "001", HourID: "1", AssetType: review.AssetTypeImage, AssetName: "slide_a", Issue: "blurry"},
		{BlockID: "010", HourID: "2", AssetType: review.AssetTypeAudio, AssetName: "narration", Issue: "clipped"},
	} {
		_, err := store.AddCorrection(ctx, in)
		require.NoError(t, err)
	}

	res, err := source.ExportCorrections(ctx, newRequest(t, map[string]any{}))
	require.NoError(t, err)
	exported := decodeView[ExportView](t, res)
	assert.Equal(t, "corrections-all-2026-03-14.json", exported.FileName)
	assert.Equal(t, "application/json", exported.ContentType)
	assert.Equal(t, "utf-8", exported.Encoding)

	res, err = source.ExportCorrections(ctx, newRequest(t, map[string]any{"hourId": "2"}))
	require.NoError(t, err)
	hourExport := decodeView[ExportView](t, res)
	assert.Equal(t, "corrections-hour-2-2026-03-14.json", hourExport.FileName)
	assert.Contains(t, hourExport.Content, `"totalCorrections": 1`)

	target, targetStore := newTestHandler(t, nil)
	res, err = target.ImportCorrections(ctx, newRequest(t, map[string]any{"content": exported.Content}))
	require.NoError(t, err)
	imported := decodeView[ImportView](t, res)
	assert.Equal(t, 2, imported.New)
	assert.Equal(t, store.Corrections(), targetStore.Corrections())

	res, err = target.ImportCorrections(ctx, newRequest(t, map[string]any{"content": exported.Content}))
	require.NoError(t, err)
	assert.Equal(t, 2, decodeView[ImportView](t, res).Skipped)
}

func TestReviewHandler_ExportCorrections_PDF(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	res, err := handler.ExportCorrections(context.Background(), newRequest(t, map[string]any{"format": "pdf"}))
	require.NoError(t, err)

	view := decodeView[ExportView](t, res)
	assert.Equal(t, "base64", view.Encoding)
	assert.Equal(t, "application/pdf", view.ContentType)
	data, err := base64.StdEncoding.DecodeString(view.Content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestReviewHandler_ExportCorrections_InvalidFormat(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	_, err := handler.ExportCorrections(context.Background(), newRequest(t, map[string]any{"format": "docx"}))

	connectErr := requireCode(t, err, connect.CodeInvalidArgument)
	assert.Equal(t, []string{"format"}, fieldViolations(t, connectErr))
}

func TestReviewHandler_ImportCorrections_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]any
		wantField string
	}{
		{
			name:      "unsupported format",
			fields:    map[string]any{"content": "{}", "format": "csv"},
			wantField: "format",
		},
		{
			name:      "malformed json",
			fields:    map[string]any{"content": "{not json"},
			wantField: "content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, nil)

			_, err := handler.ImportCorrections(context.Background(), newRequest(t, tt.fields))

			connectErr := requireCode(t, err, connect.CodeInvalidArgument)
			assert.Equal(t, []string{tt.wantField}, fieldViolations(t, connectErr))
		})
	}
}

func TestReviewHandler_Preferences(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]any
		want      review.Preferences
		wantField string
	}{
		{
			name:   "grid size",
			fields: map[string]any{"key": "gridSize", "value": "compact"},
			want:   review.Preferences{GridSize: review.GridSizeCompact},
		},
		{
			name:   "dark mode",
			fields: map[string]any{"key": "darkMode", "value": "true"},
			want:   review.Preferences{GridSize: review.GridSizeNormal, DarkMode: true},
		},
		{
			name:      "invalid dark mode",
			fields:    map[string]any{"key": "darkMode", "value": "sometimes"},
			wantField: "darkMode",
		},
		{
			name:      "unknown key",
			fields:    map[string]any{"key": "fontSize", "value": "12"},
			wantField: "key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, nil)

			res, err := handler.SetPreference(context.Background(), newRequest(t, tt.fields))
			if tt.wantField != "" {
				connectErr := requireCode(t, err, connect.CodeInvalidArgument)
				assert.Equal(t, []string{tt.wantField}, fieldViolations(t, connectErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeView[PreferencesView](t, res).Preferences)

			res, err = handler.GetPreferences(context.Background(), newRequest(t, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeView[PreferencesView](t, res).Preferences)
		})
	}
}

func TestReviewHandler_Generate(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(g *mock_server.MockGenerator)
		fields   map[string]any
		want     GenerateView
		wantCode connect.Code
	}{
		{
			name: "success",
			setup: func(g *mock_server.MockGenerator) {
				g.EXPECT().Generate(gomock.Any(), "001", []string{"slide_a"}, true).
					Return(generator.GenerateResponse{Status: "success", Log: "done"}, nil)
			},
			fields: map[string]any{"blockId": "001", "targets": []any{"slide_a"}, "force": true},
			want:   GenerateView{Succeeded: true, Status: "success", Message: "Generation Complete", Log: "done"},
		},
		{
			name: "backend failure is a response",
			setup: func(g *mock_server.MockGenerator) {
				g.EXPECT().Generate(gomock.Any(), "001", nil, false).
					Return(generator.GenerateResponse{Status: "error", Details: "GPU busy"}, nil)
			},
			fields: map[string]any{"blockId": "001"},
			want:   GenerateView{Status: "error", Message: "GPU busy"},
		},
		{
			name: "missing block id",
			setup: func(g *mock_server.MockGenerator) {
				g.EXPECT().Generate(gomock.Any(), "", nil, false).
					Return(generator.GenerateResponse{}, generator.ErrMissingBlockID)
			},
			fields:   map[string]any{},
			wantCode: connect.CodeInvalidArgument,
		},
		{
			name: "unreachable backend",
			setup: func(g *mock_server.MockGenerator) {
				g.EXPECT().Generate(gomock.Any(), "001", nil, false).
					Return(generator.GenerateResponse{}, errors.New("connection refused"))
			},
			fields:   map[string]any{"blockId": "001"},
			wantCode: connect.CodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gen := mock_server.NewMockGenerator(ctrl)
			tt.setup(gen)
			handler, _ := newTestHandler(t, nil, WithGenerator(gen))

			res, err := handler.Generate(context.Background(), newRequest(t, tt.fields))
			if tt.wantCode != 0 {
				requireCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeView[GenerateView](t, res))
		})
	}
}

func TestReviewHandler_UpdatePrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mock_server.NewMockGenerator(ctrl)
	gen.EXPECT().UpdatePrompt(gomock.Any(), "001", generator.PromptAssetScript, "new script").
		Return(generator.UpdatePromptResponse{Status: "success", Path: "block_001/script.txt"}, nil)
	handler, _ := newTestHandler(t, nil, WithGenerator(gen))

	res, err := handler.UpdatePrompt(context.Background(), newRequest(t, map[string]any{
		"blockId":   "001",
		"assetType": "script",
		"content":   "new script",
	}))
	require.NoError(t, err)
	assert.Equal(t, generator.UpdatePromptResponse{Status: "success", Path: "block_001/script.txt"},
		decodeView[generator.UpdatePromptResponse](t, res))

	_, err = handler.UpdatePrompt(context.Background(), newRequest(t, map[string]any{
		"blockId":   "001",
		"assetType": "audio",
	}))
	connectErr := requireCode(t, err, connect.CodeInvalidArgument)
	assert.Equal(t, []string{"assetType"}, fieldViolations(t, connectErr))
}

func TestReviewHandler_Health(t *testing.T) {
	t.Run("without generator", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)

		res, err := handler.Health(context.Background(), newRequest(t, nil))
		require.NoError(t, err)
		assert.Equal(t, generator.HealthResponse{Status: generator.HealthOffline}, decodeView[generator.HealthResponse](t, res))
	})

	t.Run("with generator", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gen := mock_server.NewMockGenerator(ctrl)
		gen.EXPECT().Health(gomock.Any()).Return(generator.HealthResponse{Status: "ok", Mode: "local"})
		handler, _ := newTestHandler(t, nil, WithGenerator(gen))

		res, err := handler.Health(context.Background(), newRequest(t, nil))
		require.NoError(t, err)
		assert.Equal(t, generator.HealthResponse{Status: "ok", Mode: "local"}, decodeView[generator.HealthResponse](t, res))
	})
}
