// Package server provides the Connect RPC handlers of the review service.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/at-ishikawa/sigmareview/internal/assetaudit"
	"github.com/at-ishikawa/sigmareview/internal/config"
	"github.com/at-ishikawa/sigmareview/internal/content"
	"github.com/at-ishikawa/sigmareview/internal/datasync"
	"github.com/at-ishikawa/sigmareview/internal/generator"
	"github.com/at-ishikawa/sigmareview/internal/report"
	"github.com/at-ishikawa/sigmareview/internal/review"
	"github.com/at-ishikawa/sigmareview/internal/statistics"
	"github.com/at-ishikawa/sigmareview/internal/stitcher"
)

// ViewState tells the client which view to render.
type ViewState string

const (
	ViewStateReady    ViewState = "ready"
	ViewStateEmpty    ViewState = "empty"
	ViewStateNotFound ViewState = "not_found"
)

func stateOf(n int) ViewState {
	if n == 0 {
		return ViewStateEmpty
	}
	return ViewStateReady
}

type ManifestView struct {
	State  ViewState `json:"state"`
	Blocks []string  `json:"blocks"`
}

type OverviewView struct {
	State    ViewState           `json:"state"`
	Overview statistics.Overview `json:"overview"`
}

// BlockSummary is one tile of the hour grid.
type BlockSummary struct {
	Reference   string                 `json:"reference"`
	BlockID     string                 `json:"blockId"`
	Status      statistics.BlockStatus `json:"status"`
	Corrections int                    `json:"corrections"`
}

type HourView struct {
	State  ViewState      `json:"state"`
	HourID string         `json:"hourId"`
	Title  string         `json:"title"`
	Blocks []BlockSummary `json:"blocks"`
}

type BlockView struct {
	State         ViewState            `json:"state"`
	Reference     string               `json:"reference"`
	Block         *content.ReviewBlock `json:"block"`
	Corrections   []review.Correction  `json:"corrections"`
	MissingAssets int                  `json:"missingAssets"`
}

type CorrectionsView struct {
	Corrections []review.Correction `json:"corrections"`
}

type CorrectionView struct {
	Correction review.Correction `json:"correction"`
}

type PreferencesView struct {
	Preferences review.Preferences `json:"preferences"`
}

type ExportView struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
}

type ImportView struct {
	New     int    `json:"new"`
	Skipped int    `json:"skipped"`
	Updated int    `json:"updated"`
	Log     string `json:"log"`
}

type GenerateView struct {
	Succeeded bool     `json:"succeeded"`
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Log       string   `json:"log,omitempty"`
	Targets   []string `json:"targets,omitempty"`
}

type AssetLogView struct {
	Entries []assetaudit.Entry `json:"entries"`
}

type HourRequest struct {
	HourID string `json:"hourId"`
}

type BlockRequest struct {
	BlockID     string `json:"blockId"`
	Reference   string `json:"reference"`
	CheckAssets bool   `json:"checkAssets"`
}

type ListCorrectionsRequest struct {
	BlockID string `json:"blockId"`
	HourID  string `json:"hourId"`
}

// CorrectionRequest carries the fields of add, upsert and update calls.
// Absent fields are left unchanged by upsert and update.
type CorrectionRequest struct {
	ID        string            `json:"id"`
	BlockID   string            `json:"blockId"`
	HourID    *string           `json:"hourId"`
	AssetType *review.AssetType `json:"assetType"`
	AssetName *string           `json:"assetName"`
	Issue     *string           `json:"issue"`
	Priority  *review.Priority  `json:"priority"`
	Status    *review.Status    `json:"status"`
	CreatedBy *string           `json:"createdBy"`
}

func (r CorrectionRequest) patch() review.CorrectionPatch {
	return review.CorrectionPatch{
		HourID:    r.HourID,
		AssetType: r.AssetType,
		AssetName: r.AssetName,
		Issue:     r.Issue,
		Priority:  r.Priority,
		Status:    r.Status,
		CreatedBy: r.CreatedBy,
	}
}

func (r CorrectionRequest) input() review.CorrectionInput {
	return review.CorrectionInput{
		BlockID:   r.BlockID,
		HourID:    value(r.HourID),
		AssetType: value(r.AssetType),
		AssetName: value(r.AssetName),
		Issue:     value(r.Issue),
		Priority:  value(r.Priority),
		Status:    value(r.Status),
		CreatedBy: value(r.CreatedBy),
	}
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

type FeedbackRequest struct {
	BlockID string                `json:"blockId"`
	HourID  string                `json:"hourId"`
	AtomID  string                `json:"atomId"`
	Action  review.FeedbackAction `json:"action"`
	Note    string                `json:"note"`
}

type ExportRequest struct {
	HourID string `json:"hourId"`
	Format string `json:"format"`
}

type ImportRequest struct {
	Content        string `json:"content"`
	Format         string `json:"format"`
	UpdateExisting bool   `json:"updateExisting"`
	DryRun         bool   `json:"dryRun"`
}

type PreferenceRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type GenerateRequest struct {
	BlockID string   `json:"blockId"`
	Targets []string `json:"targets"`
	Force   bool     `json:"force"`
}

type PromptRequest struct {
	BlockID   string                `json:"blockId"`
	AssetType generator.PromptAsset `json:"assetType"`
	Content   string                `json:"content"`
}

// ReviewHandler serves the review service procedures.
type ReviewHandler struct {
	resolver  *stitcher.Resolver
	store     *review.Store
	generator Generator
	exporter  *report.Exporter
	checker   *assetaudit.Checker
	audit     *assetaudit.Log
	hours     []config.HourConfig
	now       func() time.Time
}

type Option func(*ReviewHandler)

func WithGenerator(g Generator) Option {
	return func(h *ReviewHandler) {
		h.generator = g
	}
}

func WithExporter(e *report.Exporter) Option {
	return func(h *ReviewHandler) {
		h.exporter = e
	}
}

// WithChecker enables asset checks on GetBlock requests that ask for it.
func WithChecker(c *assetaudit.Checker) Option {
	return func(h *ReviewHandler) {
		h.checker = c
	}
}

func WithAuditLog(l *assetaudit.Log) Option {
	return func(h *ReviewHandler) {
		h.audit = l
	}
}

func WithHours(hours []config.HourConfig) Option {
	return func(h *ReviewHandler) {
		h.hours = hours
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *ReviewHandler) {
		h.now = now
	}
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(resolver *stitcher.Resolver, store *review.Store, opts ...Option) *ReviewHandler {
	h := &ReviewHandler{
		resolver: resolver,
		store:    store,
		hours:    config.DefaultHours,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.exporter == nil {
		h.exporter = report.NewExporter(store, report.WithHourTitles(h.hourTitle), report.WithClock(h.now))
	}
	if h.audit == nil {
		h.audit = assetaudit.NewLog(assetaudit.DefaultMaxEntries)
	}
	return h
}

func (h *ReviewHandler) hourTitle(hourID string) string {
	n, ok := content.HourNumber(hourID)
	if !ok {
		return ""
	}
	for _, hour := range h.hours {
		if hour.ID == n {
			return hour.Title
		}
	}
	return ""
}

// GetManifest returns every block reference.
func (h *ReviewHandler) GetManifest(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	refs := h.resolver.FetchManifest(ctx)
	return respond(ManifestView{State: stateOf(len(refs)), Blocks: refs})
}

// GetOverview returns the review progress of every configured hour.
func (h *ReviewHandler) GetOverview(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	refs := h.resolver.FetchManifest(ctx)
	hours := make([]statistics.Hour, 0, len(h.hours))
	for _, hour := range h.hours {
		hours = append(hours, statistics.Hour{ID: hour.ID, Title: hour.Title})
	}
	return respond(OverviewView{
		State:    stateOf(len(refs)),
		Overview: statistics.CalculateOverview(hours, refs, h.store.Corrections()),
	})
}

// GetHour returns the block grid of one hour.
func (h *ReviewHandler) GetHour(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in HourRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if in.HourID == "" {
		return nil, invalidArgument("hourId", "hourId is required")
	}

	refs := h.resolver.HourManifest(ctx, in.HourID)
	blocks := make([]BlockSummary, 0, len(refs))
	for _, ref := range refs {
		blockID := content.BlockIDFromReference(ref)
		corrections := h.store.CorrectionsForBlock(blockID)
		blocks = append(blocks, BlockSummary{
			Reference:   ref,
			BlockID:     blockID,
			Status:      statistics.StatusOf(corrections),
			Corrections: len(corrections),
		})
	}
	return respond(HourView{
		State:  stateOf(len(blocks)),
		HourID: in.HourID,
		Title:  h.hourTitle(in.HourID),
		Blocks: blocks,
	})
}

// GetBlock loads one block by reference or block id with its corrections.
func (h *ReviewHandler) GetBlock(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in BlockRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}

	var block *content.ReviewBlock
	ref := in.Reference
	ok := false
	switch {
	case ref != "":
		block, ok = h.resolver.LoadReviewBlock(ctx, ref)
	case in.BlockID != "":
		block, ref, ok = h.resolver.LoadReviewBlockByID(ctx, in.BlockID)
	default:
		return nil, invalidArgument("blockId", "blockId or reference is required")
	}
	if !ok {
		return nil, notFound("block %s not found", lookupKey(in))
	}

	view := BlockView{
		State:     ViewStateReady,
		Reference: ref,
		Block:     block,
	}
	if in.CheckAssets && h.checker != nil {
		view.MissingAssets = h.checker.CheckReviewBlock(ctx, block)
	}
	blockID := block.BlockID
	if blockID == "" {
		blockID = content.BlockIDFromReference(ref)
	}
	view.Corrections = h.store.CorrectionsForBlock(blockID)
	return respond(view)
}

func lookupKey(in BlockRequest) string {
	if in.Reference != "" {
		return in.Reference
	}
	return in.BlockID
}

// ListCorrections returns corrections, optionally scoped to a block or an hour.
func (h *ReviewHandler) ListCorrections(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in ListCorrectionsRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}

	var corrections []review.Correction
	switch {
	case in.BlockID != "":
		corrections = h.store.CorrectionsForBlock(in.BlockID)
	case in.HourID != "":
		corrections = h.store.CorrectionsForHour(in.HourID)
	default:
		corrections = h.store.Corrections()
	}
	return respond(CorrectionsView{Corrections: corrections})
}

func (h *ReviewHandler) AddCorrection(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in CorrectionRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	c, err := h.store.AddCorrection(ctx, in.input())
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(CorrectionView{Correction: c})
}

// UpsertBlockCorrection merges the request into the first correction of the block.
func (h *ReviewHandler) UpsertBlockCorrection(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in CorrectionRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if in.BlockID == "" {
		return nil, invalidArgument("blockId", "blockId is required")
	}
	c, err := h.store.UpsertCorrectionForBlock(ctx, in.BlockID, in.patch())
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(CorrectionView{Correction: c})
}

// UpdateCorrection patches a correction by id. Unknown ids are ignored.
func (h *ReviewHandler) UpdateCorrection(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in CorrectionRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, invalidArgument("id", "id is required")
	}
	if err := h.store.UpdateCorrectionByID(ctx, in.ID, in.patch()); err != nil {
		return nil, toConnectError(err)
	}
	return respond(struct{}{})
}

// DeleteCorrection removes a correction by id. Unknown ids are ignored.
func (h *ReviewHandler) DeleteCorrection(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in CorrectionRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, invalidArgument("id", "id is required")
	}
	if err := h.store.DeleteCorrectionByID(ctx, in.ID); err != nil {
		return nil, toConnectError(err)
	}
	return respond(struct{}{})
}

// SubmitFeedback records a keep, delete, regen or note verdict on an atom.
func (h *ReviewHandler) SubmitFeedback(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in FeedbackRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	input, err := review.FeedbackCorrection(in.BlockID, in.HourID, in.AtomID, in.Action, in.Note)
	if err != nil {
		return nil, invalidArgument("action", err.Error())
	}
	c, err := h.store.AddCorrection(ctx, input)
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(CorrectionView{Correction: c})
}

// ExportCorrections renders the corrections file. PDF content is base64 encoded.
func (h *ReviewHandler) ExportCorrections(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in ExportRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(in.Format)
	if err != nil {
		return nil, invalidArgument("format", err.Error())
	}

	data, err := h.exporter.Render(format, in.HourID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("render %s export: %w", format, err))
	}
	view := ExportView{
		FileName:    report.FileName(in.HourID, format, h.now()),
		ContentType: format.ContentType(),
		Encoding:    "utf-8",
		Content:     string(data),
	}
	if format == report.FormatPDF {
		view.Encoding = "base64"
		view.Content = base64.StdEncoding.EncodeToString(data)
	}
	return respond(view)
}

// ImportCorrections appends the corrections of a previously exported file.
func (h *ReviewHandler) ImportCorrections(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in ImportRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}

	var corrections []review.Correction
	var err error
	switch in.Format {
	case "", string(report.FormatJSON):
		corrections, err = datasync.ParseJSON([]byte(in.Content))
	case string(report.FormatYAML):
		corrections, err = datasync.ParseYAML([]byte(in.Content))
	default:
		return nil, invalidArgument("format", fmt.Sprintf("unsupported import format %q", in.Format))
	}
	if err != nil {
		return nil, invalidArgument("content", err.Error())
	}

	var log bytes.Buffer
	result, err := datasync.NewImporter(h.store, &log).Import(ctx, corrections, datasync.ImportOptions{
		DryRun:         in.DryRun,
		UpdateExisting: in.UpdateExisting,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(ImportView{
		New:     result.New,
		Skipped: result.Skipped,
		Updated: result.Updated,
		Log:     log.String(),
	})
}

func (h *ReviewHandler) GetPreferences(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return respond(PreferencesView{Preferences: h.store.Preferences()})
}

// SetPreference updates one preference by key.
func (h *ReviewHandler) SetPreference(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in PreferenceRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if err := h.store.SetPreferenceByName(ctx, in.Key, in.Value); err != nil {
		if errors.Is(err, review.ErrUnknownPreference) {
			return nil, invalidArgument("key", err.Error())
		}
		return nil, toConnectError(err)
	}
	return respond(PreferencesView{Preferences: h.store.Preferences()})
}

// Generate asks the backend to regenerate assets of a block. A backend
// failure is reported in the response, an unreachable backend as Unavailable.
func (h *ReviewHandler) Generate(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	if h.generator == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("generation backend is not configured"))
	}
	var in GenerateRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}

	res, err := h.generator.Generate(ctx, in.BlockID, in.Targets, in.Force)
	if err != nil {
		if errors.Is(err, generator.ErrMissingBlockID) {
			return nil, invalidArgument("blockId", err.Error())
		}
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("generate %s: %w", in.BlockID, err))
	}
	return respond(GenerateView{
		Succeeded: res.Succeeded(),
		Status:    res.Status,
		Message:   res.Message(),
		Log:       res.Log,
		Targets:   res.Targets,
	})
}

// UpdatePrompt overwrites the script or image prompts of a block on the backend.
func (h *ReviewHandler) UpdatePrompt(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	if h.generator == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("generation backend is not configured"))
	}
	var in PromptRequest
	if err := decode(req.Msg, &in); err != nil {
		return nil, err
	}
	if in.BlockID == "" {
		return nil, invalidArgument("blockId", "blockId is required")
	}
	switch in.AssetType {
	case generator.PromptAssetScript, generator.PromptAssetImagePrompts:
	default:
		return nil, invalidArgument("assetType", "assetType must be one of [script image_prompts]")
	}

	res, err := h.generator.UpdatePrompt(ctx, in.BlockID, in.AssetType, in.Content)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("update prompt %s: %w", in.BlockID, err))
	}
	return respond(res)
}

// Health reports whether the generation backend is reachable.
func (h *ReviewHandler) Health(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	if h.generator == nil {
		return respond(generator.HealthResponse{Status: generator.HealthOffline})
	}
	return respond(h.generator.Health(ctx))
}

// GetAssetLog returns the recorded asset and fetch failures, newest last.
func (h *ReviewHandler) GetAssetLog(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	entries := h.audit.Entries()
	if entries == nil {
		entries = []assetaudit.Entry{}
	}
	return respond(AssetLogView{Entries: entries})
}

func (h *ReviewHandler) ClearAssetLog(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	h.audit.Clear()
	return respond(struct{}{})
}
