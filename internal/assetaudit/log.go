// Package assetaudit keeps a bounded record of missing assets and failed
// content fetches so reviewers can export them for later fixing.
package assetaudit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Kind classifies an audit entry.
type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindManifest Kind = "manifest"
	KindNetwork  Kind = "network"
	KindUnknown  Kind = "unknown"
)

const DefaultMaxEntries = 100

// Entry is one recorded asset or fetch failure.
type Entry struct {
	Type      Kind      `json:"type"`
	AssetID   string    `json:"assetId"`
	AssetPath string    `json:"assetPath,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is a bounded, concurrency-safe audit log. Only the newest entries are kept.
type Log struct {
	mu         sync.Mutex
	entries    []Entry
	maxEntries int
	now        func() time.Time
}

func NewLog(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// MissingAsset records an image or audio asset that could not be loaded.
func (l *Log) MissingAsset(assetID, assetPath string, kind Kind) {
	if kind != KindAudio {
		kind = KindImage
	}
	message := fmt.Sprintf("Missing %s asset: %s", kind, assetPath)
	slog.Default().Warn(message, "assetId", assetID, "assetPath", assetPath)
	l.add(Entry{Type: kind, AssetID: assetID, AssetPath: assetPath, Message: message})
}

// NetworkError records a failed request.
func (l *Log) NetworkError(message string, attrs ...any) {
	message = "Network error: " + message
	slog.Default().Error(message, attrs...)
	l.add(Entry{Type: KindNetwork, AssetID: "network-error", Message: message})
}

// ManifestError records a manifest or block document that could not be used.
func (l *Log) ManifestError(message, manifestPath string) {
	message = "Manifest error: " + message
	slog.Default().Error(message, "manifestPath", manifestPath)
	l.add(Entry{Type: KindManifest, AssetID: "manifest-error", AssetPath: manifestPath, Message: message})
}

func (l *Log) add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Timestamp = l.now().UTC()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.maxEntries; over > 0 {
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
}

// Entries returns a copy of all entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry{}, l.entries...)
}

// MissingAssets returns the image and audio entries.
func (l *Log) MissingAssets() []Entry {
	return lo.Filter(l.Entries(), func(e Entry, _ int) bool {
		return e.Type == KindImage || e.Type == KindAudio
	})
}

// NetworkErrors returns the network entries.
func (l *Log) NetworkErrors() []Entry {
	return lo.Filter(l.Entries(), func(e Entry, _ int) bool {
		return e.Type == KindNetwork
	})
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Export renders all entries as an indented JSON array.
func (l *Log) Export() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.Entries()); err != nil {
		return nil, fmt.Errorf("encode asset audit entries: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
