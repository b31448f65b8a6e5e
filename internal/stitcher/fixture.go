package stitcher

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/sigmareview/internal/content"
)

//go:embed fixtures/*.yml
var embeddedFixtures embed.FS

// FixtureSource serves development blocks written as YAML documents.
// It is the last resort of the source chain.
type FixtureSource struct {
	fsys        fs.FS
	dir         string
	assetPrefix string
}

func NewFixtureSource(fsys fs.FS, dir, assetPrefix string) *FixtureSource {
	if dir == "" {
		dir = "."
	}
	return &FixtureSource{
		fsys:        fsys,
		dir:         dir,
		assetPrefix: assetPrefix,
	}
}

// NewEmbeddedFixtureSource serves the fixtures bundled with the binary.
func NewEmbeddedFixtureSource(assetPrefix string) *FixtureSource {
	return NewFixtureSource(embeddedFixtures, "fixtures", assetPrefix)
}

func (s *FixtureSource) Name() string {
	return "fixture"
}

type fixture struct {
	ref  string
	hour int
	id   string
	doc  []byte
}

func (s *FixtureSource) Manifest(_ context.Context) ([]string, error) {
	fixtures, err := s.load()
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		refs = append(refs, f.ref)
	}
	return refs, nil
}

func (s *FixtureSource) Block(_ context.Context, ref string) ([]byte, error) {
	fixtures, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, f := range fixtures {
		if f.ref == ref {
			return f.doc, nil
		}
	}
	return nil, fmt.Errorf("fixture %s: %w", ref, ErrNotFound)
}

func (s *FixtureSource) AssetPrefix(_ string) string {
	return s.assetPrefix
}

func (s *FixtureSource) load() ([]fixture, error) {
	var names []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := fs.Glob(s.fsys, path.Join(s.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("fs.Glob(%s) > %w", pattern, err)
		}
		names = append(names, matches...)
	}

	fixtures := make([]fixture, 0, len(names))
	for _, name := range names {
		f, err := s.read(name)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].hour != fixtures[j].hour {
			return fixtures[i].hour < fixtures[j].hour
		}
		return fixtures[i].id < fixtures[j].id
	})
	return fixtures, nil
}

func (s *FixtureSource) read(name string) (fixture, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fixture{}, fmt.Errorf("read fixture %s: %w", name, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fixture{}, fmt.Errorf("yaml.Unmarshal(%s) > %w", name, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fixture{}, fmt.Errorf("json.Marshal(%s) > %w", name, err)
	}

	id := gjson.GetBytes(raw, "block_id").String()
	if id == "" {
		id = strings.TrimPrefix(strings.TrimSuffix(path.Base(name), path.Ext(name)), "block_")
	}
	hour, _ := content.HourNumber(gjson.GetBytes(raw, "hour_name").String())
	return fixture{
		ref:  BlockFileName(hour, id),
		hour: hour,
		id:   id,
		doc:  raw,
	}, nil
}
