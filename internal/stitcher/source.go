// Package stitcher fetches block manifests and block documents from an
// ordered list of sources and normalizes them into content blocks.
package stitcher

import (
	"context"
	"errors"
)

//go:generate mockgen -source=source.go -destination=../mocks/stitcher/mock_source.go -package=mock_stitcher

// ErrNotFound is returned by a Source that does not have the requested document.
var ErrNotFound = errors.New("not found")

// Source is one place block documents can be loaded from.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Manifest returns the ordered block references the source knows about.
	Manifest(ctx context.Context) ([]string, error)
	// Block returns the raw JSON document of one block reference.
	Block(ctx context.Context, ref string) ([]byte, error)
	// AssetPrefix returns the base URL asset identifiers of ref resolve against.
	AssetPrefix(ref string) string
}

// enabler is implemented by sources that can be switched off at runtime.
type enabler interface {
	Enabled() bool
}

func isEnabled(source Source) bool {
	e, ok := source.(enabler)
	return !ok || e.Enabled()
}
