package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// ReviewServiceName is the fully-qualified name of the review service.
const ReviewServiceName = "sigmareview.v1.ReviewService"

const (
	GetManifestProcedure           = "/" + ReviewServiceName + "/GetManifest"
	GetOverviewProcedure           = "/" + ReviewServiceName + "/GetOverview"
	GetHourProcedure               = "/" + ReviewServiceName + "/GetHour"
	GetBlockProcedure              = "/" + ReviewServiceName + "/GetBlock"
	ListCorrectionsProcedure       = "/" + ReviewServiceName + "/ListCorrections"
	AddCorrectionProcedure         = "/" + ReviewServiceName + "/AddCorrection"
	UpsertBlockCorrectionProcedure = "/" + ReviewServiceName + "/UpsertBlockCorrection"
	UpdateCorrectionProcedure      = "/" + ReviewServiceName + "/UpdateCorrection"
	DeleteCorrectionProcedure      = "/" + ReviewServiceName + "/DeleteCorrection"
	SubmitFeedbackProcedure        = "/" + ReviewServiceName + "/SubmitFeedback"
	ExportCorrectionsProcedure     = "/" + ReviewServiceName + "/ExportCorrections"
	ImportCorrectionsProcedure     = "/" + ReviewServiceName + "/ImportCorrections"
	GetPreferencesProcedure        = "/" + ReviewServiceName + "/GetPreferences"
	SetPreferenceProcedure         = "/" + ReviewServiceName + "/SetPreference"
	GenerateProcedure              = "/" + ReviewServiceName + "/Generate"
	UpdatePromptProcedure          = "/" + ReviewServiceName + "/UpdatePrompt"
	HealthProcedure                = "/" + ReviewServiceName + "/Health"
	GetAssetLogProcedure           = "/" + ReviewServiceName + "/GetAssetLog"
	ClearAssetLogProcedure         = "/" + ReviewServiceName + "/ClearAssetLog"
)

type unaryFunc = func(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)

func (h *ReviewHandler) procedures() map[string]unaryFunc {
	return map[string]unaryFunc{
		GetManifestProcedure:           h.GetManifest,
		GetOverviewProcedure:           h.GetOverview,
		GetHourProcedure:               h.GetHour,
		GetBlockProcedure:              h.GetBlock,
		ListCorrectionsProcedure:       h.ListCorrections,
		AddCorrectionProcedure:         h.AddCorrection,
		UpsertBlockCorrectionProcedure: h.UpsertBlockCorrection,
		UpdateCorrectionProcedure:      h.UpdateCorrection,
		DeleteCorrectionProcedure:      h.DeleteCorrection,
		SubmitFeedbackProcedure:        h.SubmitFeedback,
		ExportCorrectionsProcedure:     h.ExportCorrections,
		ImportCorrectionsProcedure:     h.ImportCorrections,
		GetPreferencesProcedure:        h.GetPreferences,
		SetPreferenceProcedure:         h.SetPreference,
		GenerateProcedure:              h.Generate,
		UpdatePromptProcedure:          h.UpdatePrompt,
		HealthProcedure:                h.Health,
		GetAssetLogProcedure:           h.GetAssetLog,
		ClearAssetLogProcedure:         h.ClearAssetLog,
	}
}

// NewReviewServiceHandler builds an HTTP handler that serves every review
// procedure. It returns the path on which to mount the handler.
// Requests and responses are google.protobuf.Struct messages, so clients can
// use the Connect JSON protocol without generated stubs.
func NewReviewServiceHandler(h *ReviewHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	logger := slog.Default()
	opts = append([]connect.HandlerOption{
		connect.WithInterceptors(newLoggingInterceptor(logger)),
		connect.WithRecover(func(ctx context.Context, spec connect.Spec, _ http.Header, p any) error {
			logger.ErrorContext(ctx, "panic in handler", "procedure", spec.Procedure, "panic", p)
			return connect.NewError(connect.CodeInternal, fmt.Errorf("internal error in %s", spec.Procedure))
		}),
	}, opts...)

	mux := http.NewServeMux()
	for procedure, fn := range h.procedures() {
		mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
	}
	return "/" + ReviewServiceName + "/", mux
}

func newLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"duration", time.Since(start),
			}
			if err != nil {
				logger.WarnContext(ctx, "request failed", append(attrs, "code", connect.CodeOf(err).String(), "error", err)...)
				return res, err
			}
			logger.DebugContext(ctx, "request served", attrs...)
			return res, nil
		}
	}
}
