package stitcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/at-ishikawa/sigmareview/internal/assetaudit"
	"github.com/at-ishikawa/sigmareview/internal/content"
)

// Resolver evaluates its sources in order; the first source that answers wins.
// Failures never reach callers: a manifest that no source can provide is empty
// and a block that no source can provide is absent.
type Resolver struct {
	sources       []Source
	retryAttempts uint
	retryDelay    time.Duration
	audit         *assetaudit.Log
	logger        *slog.Logger
}

type Option func(*Resolver)

// WithRetry retries every source attempt up to attempts more times.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(r *Resolver) {
		r.retryAttempts = attempts
		r.retryDelay = delay
	}
}

// WithAuditLog records fetch failures in log.
func WithAuditLog(log *assetaudit.Log) Option {
	return func(r *Resolver) {
		r.audit = log
	}
}

func NewResolver(sources []Source, opts ...Option) *Resolver {
	r := &Resolver{
		sources:    sources,
		retryDelay: 100 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchManifest returns the manifest of the first source that can provide one,
// or an empty slice when none can.
func (r *Resolver) FetchManifest(ctx context.Context) []string {
	for _, source := range r.sources {
		if !isEnabled(source) {
			continue
		}
		var refs []string
		err := r.attempt(ctx, func() error {
			var err error
			refs, err = source.Manifest(ctx)
			return err
		})
		if err != nil {
			r.logger.Warn("manifest source failed", "source", source.Name(), "error", err)
			r.recordFailure(source, "manifest", err)
			continue
		}
		if refs == nil {
			refs = []string{}
		}
		return refs
	}
	r.logger.Error("no source could provide a manifest", "sources", len(r.sources))
	return []string{}
}

// FetchBlock fetches and parses ref from the first source that has it.
func (r *Resolver) FetchBlock(ctx context.Context, ref string) (*content.Block, bool) {
	block, _, ok := r.fetchBlock(ctx, ref)
	return block, ok
}

func (r *Resolver) fetchBlock(ctx context.Context, ref string) (*content.Block, Source, bool) {
	for _, source := range r.sources {
		if !isEnabled(source) {
			continue
		}
		var raw []byte
		err := r.attempt(ctx, func() error {
			var err error
			raw, err = source.Block(ctx, ref)
			return err
		})
		if err != nil {
			r.logger.Warn("block source failed", "source", source.Name(), "ref", ref, "error", err)
			r.recordFailure(source, ref, err)
			continue
		}
		block := content.ParseBlock(raw)
		return &block, source, true
	}
	r.logger.Error("no source could provide the block", "ref", ref)
	return nil, nil, false
}

// HourManifest returns the manifest entries that belong to hour.
func (r *Resolver) HourManifest(ctx context.Context, hour string) []string {
	return content.FilterByHour(r.FetchManifest(ctx), hour)
}

// FindReference returns the first manifest entry that contains blockID.
func (r *Resolver) FindReference(ctx context.Context, blockID string) (string, bool) {
	return content.FindReference(r.FetchManifest(ctx), blockID)
}

// LoadReviewBlock fetches ref and projects it with the asset prefix of the
// source that provided it.
func (r *Resolver) LoadReviewBlock(ctx context.Context, ref string) (*content.ReviewBlock, bool) {
	block, source, ok := r.fetchBlock(ctx, ref)
	if !ok {
		return nil, false
	}
	review := content.ProjectForReview(*block, source.AssetPrefix(ref))
	return &review, true
}

// LoadReviewBlockByID resolves blockID through the manifest and loads it.
func (r *Resolver) LoadReviewBlockByID(ctx context.Context, blockID string) (*content.ReviewBlock, string, bool) {
	ref, ok := r.FindReference(ctx, blockID)
	if !ok {
		return nil, "", false
	}
	review, ok := r.LoadReviewBlock(ctx, ref)
	return review, ref, ok
}

func (r *Resolver) attempt(ctx context.Context, fn func() error) error {
	return retry.Do(
		func() error {
			err := fn()
			if err != nil && errors.Is(err, ErrNotFound) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.retryAttempts+1),
		retry.Delay(r.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (r *Resolver) recordFailure(source Source, path string, err error) {
	if r.audit == nil {
		return
	}
	if source.Name() == "remote" && !errors.Is(err, ErrNotFound) {
		r.audit.NetworkError(fmt.Sprintf("%s source: %v", source.Name(), err), "path", path)
		return
	}
	r.audit.ManifestError(fmt.Sprintf("%s source: %v", source.Name(), err), path)
}
