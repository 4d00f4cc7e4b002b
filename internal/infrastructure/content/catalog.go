// Package content loads the works catalog from a directory of markdown files.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

const workExt = ".md"

// Catalog is the in-memory set of published works. It is safe for concurrent
// use; Reload swaps the whole set at once.
type Catalog struct {
	dir      string
	renderer *Renderer
	logger   *logging.ChanneledLogger

	mu     sync.RWMutex
	bySlug map[string]*entity.Work
	byID   map[string]*entity.Work
	works  []*entity.Work
	loaded time.Time
}

// NewCatalog creates an empty catalog over dir. Call Reload to populate it.
func NewCatalog(dir string, logger *logging.ChanneledLogger) *Catalog {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Catalog{
		dir:      dir,
		renderer: NewRenderer(),
		logger:   logger,
		bySlug:   make(map[string]*entity.Work),
		byID:     make(map[string]*entity.Work),
	}
}

// Dir returns the watched content directory.
func (c *Catalog) Dir() string { return c.dir }

// Reload re-reads every work file. Files that fail to parse are logged and
// skipped; the previous set stays in place only if the directory itself is
// unreadable.
func (c *Catalog) Reload() error {
	start := time.Now()

	var works []*entity.Work
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != c.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), workExt) {
			return nil
		}

		work, err := c.parseFile(path)
		if err != nil {
			c.logger.Content().Warn("Skipping work file", "path", path, "error", err.Error())
			return nil
		}
		works = append(works, work)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read content directory %s: %w", c.dir, err)
	}

	bySlug := make(map[string]*entity.Work, len(works))
	byID := make(map[string]*entity.Work, len(works))
	published := make([]*entity.Work, 0, len(works))
	drafts := 0
	for _, w := range works {
		if w.Draft {
			drafts++
			continue
		}
		if prev, dup := byID[w.ID]; dup {
			c.logger.Content().Warn("Duplicate work id, keeping first",
				"id", w.ID, "kept", prev.SourcePath, "skipped", w.SourcePath)
			continue
		}
		if _, dup := bySlug[w.Slug]; dup {
			c.logger.Content().Warn("Duplicate work slug, skipping", "slug", w.Slug, "path", w.SourcePath)
			continue
		}
		bySlug[w.Slug] = w
		byID[w.ID] = w
		published = append(published, w)
	}

	sort.SliceStable(published, func(i, j int) bool {
		if !published[i].Published.Equal(published[j].Published) {
			return published[i].Published.After(published[j].Published)
		}
		return published[i].Title < published[j].Title
	})

	c.mu.Lock()
	c.bySlug = bySlug
	c.byID = byID
	c.works = published
	c.loaded = time.Now()
	c.mu.Unlock()

	c.logger.Content().Info("Works catalog loaded",
		"dir", c.dir, "works", len(published), "drafts", drafts, "duration", time.Since(start))
	return nil
}

func (c *Catalog) parseFile(path string) (*entity.Work, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fm, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	work := &entity.Work{
		ID:         strings.TrimSpace(fm.ID),
		Slug:       slug,
		Title:      strings.TrimSpace(fm.Title),
		Kind:       entity.Kind(strings.ToLower(strings.TrimSpace(fm.Kind))),
		Summary:    strings.TrimSpace(fm.Summary),
		Cover:      strings.TrimSpace(fm.Cover),
		Draft:      fm.Draft,
		SourcePath: path,
		ModTime:    info.ModTime(),
	}
	if work.ID == "" {
		work.ID = slug
	}
	if work.Title == "" {
		return nil, errors.New("title is required")
	}
	if work.Kind == "" {
		work.Kind = entity.KindProse
	}
	if !work.Kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", work.Kind)
	}
	if work.Published, err = parsePublished(fm.Published); err != nil {
		return nil, err
	}
	if work.Body, err = c.renderer.Render(body); err != nil {
		return nil, err
	}
	return work, nil
}

// FindBySlug returns the published work with slug.
func (c *Catalog) FindBySlug(slug string) (*entity.Work, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if w, ok := c.bySlug[slug]; ok {
		return w, nil
	}
	return nil, entity.ErrWorkNotFound
}

// FindByID returns the published work with id.
func (c *Catalog) FindByID(id string) (*entity.Work, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if w, ok := c.byID[id]; ok {
		return w, nil
	}
	return nil, entity.ErrWorkNotFound
}

// FindAll returns published works, newest first.
func (c *Catalog) FindAll() []*entity.Work {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*entity.Work(nil), c.works...)
}

// LoadedAt returns when the catalog was last reloaded.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
