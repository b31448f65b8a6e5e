package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/at-ishikawa/sigmareview/internal/assetaudit"
	"github.com/at-ishikawa/sigmareview/internal/config"
	"github.com/at-ishikawa/sigmareview/internal/content"
	"github.com/at-ishikawa/sigmareview/internal/generator"
	"github.com/at-ishikawa/sigmareview/internal/report"
	"github.com/at-ishikawa/sigmareview/internal/review"
	"github.com/at-ishikawa/sigmareview/internal/server"
	"github.com/at-ishikawa/sigmareview/internal/stitcher"
	"github.com/at-ishikawa/sigmareview/internal/storage"
)

// Services holds the components shared by the CLI and the server.
type Services struct {
	Config    *config.Config
	Audit     *assetaudit.Log
	Remote    *stitcher.RemoteSource
	Resolver  *stitcher.Resolver
	Storage   storage.Storage
	Store     *review.Store
	Generator *generator.Client
	Checker   *assetaudit.Checker
	Exporter  *report.Exporter
}

// NewServices wires the content sources, the review store and the backend
// clients from cfg. Close releases what it opened.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{
		Config:    cfg,
		Audit:     assetaudit.NewLog(cfg.Assets.MaxLoggedErrors),
		Generator: generator.NewClient(cfg.Generation.BaseURL, cfg.Generation.Timeout),
	}
	var checkerOpts []assetaudit.CheckerOption
	if cfg.Sources.LocalDirectory != "" {
		checkerOpts = append(checkerOpts, assetaudit.WithLocalFiles(os.DirFS(cfg.Sources.LocalDirectory), cfg.Sources.PublicBaseURL))
	}
	s.Checker = assetaudit.NewChecker(s.Audit, cfg.Assets.PlaceholderURL, cfg.Assets.CheckTimeout, checkerOpts...)
	s.Resolver = stitcher.NewResolver(
		s.sources(),
		stitcher.WithRetry(cfg.Sources.RetryAttempts, cfg.Sources.RetryDelay),
		stitcher.WithAuditLog(s.Audit),
	)

	st, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("storage.Open() > %w", err)
	}
	s.Storage = st

	store, err := review.NewStore(ctx, st,
		review.WithStorageName(cfg.Storage.Name),
		review.WithPreferenceHook(s.applyPreferences),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("review.NewStore() > %w", err)
	}
	s.Store = store
	s.applyPreferences(store.Preferences())

	s.Exporter = report.NewExporter(store,
		report.WithTemplate(cfg.Templates.ReportTemplate),
		report.WithHourTitles(func(hourID string) string {
			n, ok := content.HourNumber(hourID)
			if !ok {
				return ""
			}
			return cfg.HourTitle(n)
		}),
	)
	return s, nil
}

// sources orders the content sources: the local bundle, the backend, then fixtures.
func (s *Services) sources() []stitcher.Source {
	cfg := s.Config.Sources
	var sources []stitcher.Source
	if cfg.LocalDirectory != "" {
		sources = append(sources, stitcher.NewLocalSource(os.DirFS(cfg.LocalDirectory), cfg.PublicBaseURL))
	}
	// The remote source is skipped until a backend URL is configured or set
	// as a preference.
	s.Remote = stitcher.NewRemoteSource(cfg.BackendURL, cfg.RequestTimeout)
	sources = append(sources, s.Remote)
	if cfg.FixturesEnabled {
		prefix := content.ResolveAssetURL(cfg.PublicBaseURL, stitcher.ImageDirectory)
		if cfg.FixturesDirectory != "" {
			sources = append(sources, stitcher.NewFixtureSource(os.DirFS(cfg.FixturesDirectory), ".", prefix))
		} else {
			sources = append(sources, stitcher.NewEmbeddedFixtureSource(prefix))
		}
	}
	return sources
}

// applyPreferences points the backend clients at the reviewer's backend URL,
// or back at the configured URLs when the preference is cleared.
func (s *Services) applyPreferences(p review.Preferences) {
	remoteURL, generatorURL := p.BackendURL, p.BackendURL
	if p.BackendURL == "" {
		remoteURL = s.Config.Sources.BackendURL
		generatorURL = s.Config.Generation.BaseURL
	}
	if s.Remote != nil {
		s.Remote.SetBaseURL(remoteURL)
	}
	s.Generator.SetBaseURL(generatorURL)
	slog.Default().Debug("backend url updated", "remote", remoteURL, "generator", generatorURL)
}

// ReviewHandler builds the review service handler over the services.
func (s *Services) ReviewHandler() *server.ReviewHandler {
	return server.NewReviewHandler(s.Resolver, s.Store,
		server.WithGenerator(s.Generator),
		server.WithExporter(s.Exporter),
		server.WithChecker(s.Checker),
		server.WithAuditLog(s.Audit),
		server.WithHours(s.Config.Hours),
	)
}

func (s *Services) Close() error {
	var errs []error
	if s.Storage != nil {
		errs = append(errs, s.Storage.Close())
	}
	if s.Remote != nil {
		errs = append(errs, s.Remote.Close())
	}
	if s.Generator != nil {
		errs = append(errs, s.Generator.Close())
	}
	return errors.Join(errs...)
}
