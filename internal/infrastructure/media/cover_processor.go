// Package media produces the cover thumbnails shown above each work.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

// ThumbnailWidths are the generated cover widths, largest first.
var ThumbnailWidths = []int{1200, 600, 300}

const (
	thumbsDir   = "thumbs"
	webpQuality = 85
	// URLPrefix is where the media directory is mounted.
	URLPrefix = "/media"
)

// Cover describes a renderable cover. A zero Cover means show the placeholder.
type Cover struct {
	Src    string
	SrcSet string
	Alt    string
}

// Available reports whether a cover image can be rendered.
func (c Cover) Available() bool { return c.Src != "" }

// CoverProcessor generates WebP thumbnails for work covers under a media root.
type CoverProcessor struct {
	basePath string
	logger   *logging.ChanneledLogger
	mu       sync.Mutex
}

// NewCoverProcessor creates a processor rooted at basePath.
func NewCoverProcessor(basePath string, logger *logging.ChanneledLogger) *CoverProcessor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CoverProcessor{basePath: basePath, logger: logger}
}

// CoverFor returns the cover for w, generating thumbnails when they are
// missing or older than the source. Missing or undecodable sources yield a
// zero Cover so the page falls back to the placeholder.
func (p *CoverProcessor) CoverFor(w *content.Work) Cover {
	if w == nil || !w.HasCover() {
		return Cover{}
	}

	paths, err := p.EnsureThumbnails(w.ID, w.Cover)
	if err != nil {
		p.logger.Media().Warn("Cover unavailable, using placeholder", "workId", w.ID, "cover", w.Cover, "error", err.Error())
		return Cover{}
	}

	set := make([]string, len(paths))
	for i, path := range paths {
		set[i] = fmt.Sprintf("%s %dw", p.url(path), ThumbnailWidths[i])
	}
	return Cover{
		Src:    p.url(paths[1]),
		SrcSet: strings.Join(set, ", "),
		Alt:    w.Title,
	}
}

// EnsureThumbnails creates the 1200px, 600px and 300px WebP thumbnails for
// source (relative to the media root) and returns their file paths.
func (p *CoverProcessor) EnsureThumbnails(workID, source string) ([]string, error) {
	originalPath, err := p.resolve(source)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat cover: %w", err)
	}

	dir := filepath.Join(p.basePath, thumbsDir)
	paths := make([]string, len(ThumbnailWidths))
	stale := false
	for i, width := range ThumbnailWidths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("%s_%dpx.webp", workID, width))
		thumb, err := os.Stat(paths[i])
		if err != nil || thumb.ModTime().Before(info.ModTime()) {
			stale = true
		}
	}
	if !stale {
		return paths, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbs directory: %w", err)
	}
	if err := p.generateWebPThumbnails(originalPath, paths); err != nil {
		return nil, err
	}

	p.logger.Media().Info("Cover thumbnails generated", "workId", workID, "source", source)
	return paths, nil
}

// resolve maps a media-relative path onto disk, refusing paths that escape
// the media root.
func (p *CoverProcessor) resolve(source string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(source, URLPrefix+"/"))
	full := filepath.Join(p.basePath, clean)
	rel, err := filepath.Rel(p.basePath, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("cover path %q outside media root", source)
	}
	return full, nil
}

func (p *CoverProcessor) generateWebPThumbnails(originalPath string, paths []string) error {
	img, err := imaging.Open(originalPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	for i, width := range ThumbnailWidths {
		resized := img
		if img.Bounds().Dx() > width {
			resized = imaging.Resize(img, width, 0, imaging.Lanczos)
		}

		if err := webp.Save(paths[i], resized, &webp.Options{Quality: webpQuality}); err != nil {
			for j := 0; j < i; j++ {
				os.Remove(paths[j])
			}
			return fmt.Errorf("failed to save WebP thumbnail %s: %w", filepath.Base(paths[i]), err)
		}
	}
	return nil
}

func (p *CoverProcessor) url(path string) string {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil {
		return ""
	}
	return URLPrefix + "/" + filepath.ToSlash(rel)
}
