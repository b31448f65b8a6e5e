package stitcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/at-ishikawa/sigmareview/internal/content"
)

const (
	ManifestDirectory = "assets/manifests"
	ManifestIndexFile = "index.json"
	ImageDirectory    = "assets/images"
)

// LocalSource reads the static manifest bundle written by the hydration tooling:
// an index of hour keys to block ids and one JSON file per block.
type LocalSource struct {
	fsys          fs.FS
	publicBaseURL string
}

// NewLocalSource reads manifests from fsys. Images are served under
// publicBaseURL/assets/images.
func NewLocalSource(fsys fs.FS, publicBaseURL string) *LocalSource {
	return &LocalSource{
		fsys:          fsys,
		publicBaseURL: publicBaseURL,
	}
}

func (s *LocalSource) Name() string {
	return "local"
}

// Manifest lists references of the form h<N>_block_<id>.json, ordered by hour.
func (s *LocalSource) Manifest(_ context.Context) ([]string, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}

	type hourEntry struct {
		number int
		key    string
	}
	hours := make([]hourEntry, 0, len(index))
	for key := range index {
		n, ok := content.HourNumber(key)
		if !ok {
			slog.Default().Warn("skip manifest index key without hour number", "key", key)
			continue
		}
		hours = append(hours, hourEntry{number: n, key: key})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].number != hours[j].number {
			return hours[i].number < hours[j].number
		}
		return hours[i].key < hours[j].key
	})

	refs := []string{}
	for _, hour := range hours {
		for _, id := range index[hour.key] {
			refs = append(refs, BlockFileName(hour.number, id))
		}
	}
	return refs, nil
}

// Index returns the raw hour index.
func (s *LocalSource) Index(_ context.Context) (map[string][]string, error) {
	return s.readIndex()
}

func (s *LocalSource) readIndex() (map[string][]string, error) {
	data, err := fs.ReadFile(s.fsys, path.Join(ManifestDirectory, ManifestIndexFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read manifest index: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("read manifest index: %w", err)
	}
	var index map[string][]string
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", ManifestIndexFile, err)
	}
	return index, nil
}

func (s *LocalSource) Block(_ context.Context, ref string) ([]byte, error) {
	name := path.Join(ManifestDirectory, ref)
	if !fs.ValidPath(name) || strings.Contains(ref, "..") {
		return nil, fmt.Errorf("invalid block reference %q: %w", ref, ErrNotFound)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read block %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("read block %s: %w", ref, err)
	}
	return data, nil
}

func (s *LocalSource) AssetPrefix(_ string) string {
	return content.ResolveAssetURL(s.publicBaseURL, ImageDirectory)
}

// BlockFileName is the file name of a block in the static bundle.
func BlockFileName(hour int, blockID string) string {
	return fmt.Sprintf("h%d_block_%s.json", hour, strings.TrimPrefix(blockID, "block_"))
}
