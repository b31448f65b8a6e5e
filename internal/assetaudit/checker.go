package assetaudit

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/sigmareview/internal/content"
)

const DefaultPlaceholderURL = "https://placeholder.pics/svg/800x600/333333/AAAAAA/Image%20Not%20Found"

// Checker checks that asset URLs are reachable and substitutes a placeholder
// for the ones that are not.
type Checker struct {
	client         *resty.Client
	log            *Log
	placeholderURL string

	files         fs.FS
	publicBaseURL string
}

type CheckerOption func(*Checker)

// WithLocalFiles checks relative asset URLs against files in fsys, the
// directory served under publicBaseURL.
func WithLocalFiles(fsys fs.FS, publicBaseURL string) CheckerOption {
	return func(p *Checker) {
		p.files = fsys
		p.publicBaseURL = strings.TrimRight(publicBaseURL, "/")
	}
}

func NewChecker(log *Log, placeholderURL string, timeout time.Duration, opts ...CheckerOption) *Checker {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return newChecker(client, log, placeholderURL, opts...)
}

func newChecker(client *resty.Client, log *Log, placeholderURL string, opts ...CheckerOption) *Checker {
	if placeholderURL == "" {
		placeholderURL = DefaultPlaceholderURL
	}
	p := &Checker{
		client:         client,
		log:            log,
		placeholderURL: placeholderURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlaceholderURL is the URL shown in place of a missing image.
func (p *Checker) PlaceholderURL() string {
	return p.placeholderURL
}

// Check returns assetURL when it can be fetched and the placeholder otherwise.
// http and https URLs are requested, other URLs are looked up in the local
// files. Without local files they are returned unchanged.
func (p *Checker) Check(ctx context.Context, assetID, assetURL string, kind Kind) string {
	if assetURL == "" {
		return assetURL
	}
	var err error
	switch {
	case isHTTP(assetURL) && !p.servedLocally(assetURL):
		err = p.fetch(ctx, assetURL)
	case p.files != nil && !strings.HasPrefix(assetURL, "data:") && !strings.HasPrefix(assetURL, "//"):
		err = p.stat(assetURL)
	default:
		return assetURL
	}
	if err != nil {
		p.log.MissingAsset(assetID, assetURL, kind)
		if kind == KindAudio {
			return ""
		}
		return p.placeholderURL
	}
	return assetURL
}

// CheckReviewBlock checks the slide images and audio of block in place.
// It returns the number of missing assets.
func (p *Checker) CheckReviewBlock(ctx context.Context, block *content.ReviewBlock) int {
	missing := 0
	for i, slide := range block.Slides {
		checked := p.Check(ctx, slide.ID, slide.ImageURL, KindImage)
		if checked != slide.ImageURL {
			missing++
			block.Slides[i].ImageURL = checked
		}
	}
	block.Images = block.Images[:0]
	for _, slide := range block.Slides {
		block.Images = append(block.Images, slide.ImageURL)
	}
	if block.Audio != "" {
		checked := p.Check(ctx, block.BlockID+"/audio", block.Audio, KindAudio)
		if checked != block.Audio {
			missing++
			block.Audio = checked
		}
	}
	return missing
}

func (p *Checker) fetch(ctx context.Context, assetURL string) error {
	response, err := p.client.R().
		SetContext(ctx).
		Head(assetURL)
	if err != nil {
		return fmt.Errorf("client.Head > %w", err)
	}
	if response.StatusCode() == http.StatusMethodNotAllowed {
		response, err = p.client.R().
			SetContext(ctx).
			SetDoNotParseResponse(true).
			Get(assetURL)
		if err != nil {
			return fmt.Errorf("client.Get > %w", err)
		}
		_ = response.RawBody().Close()
	}
	if response.IsError() {
		return fmt.Errorf("response error %d", response.StatusCode())
	}
	return nil
}

// servedLocally reports whether an absolute URL points into the local files.
func (p *Checker) servedLocally(assetURL string) bool {
	return p.files != nil && isHTTP(p.publicBaseURL) && strings.HasPrefix(assetURL, p.publicBaseURL+"/")
}

func (p *Checker) stat(assetURL string) error {
	rel := strings.TrimPrefix(assetURL, p.publicBaseURL)
	if u, err := url.Parse(rel); err == nil && u.Path != "" {
		rel = u.Path
	}
	name := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if !fs.ValidPath(name) {
		return fmt.Errorf("invalid asset path %q", assetURL)
	}
	info, err := fs.Stat(p.files, name)
	if err != nil {
		return fmt.Errorf("fs.Stat(%s) > %w", name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", name)
	}
	return nil
}

func isHTTP(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
