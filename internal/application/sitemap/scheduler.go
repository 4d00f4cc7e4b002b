package sitemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AtRiskMedia/folio-go/internal/domain/repositories"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

// Generator rebuilds the served sitemap from the works catalog plus any
// static pages under the public directory.
type Generator struct {
	works     repositories.WorkRepository
	publicDir string
	baseURL   string
	out       string
	logger    *logging.ChanneledLogger
	mu        sync.Mutex
}

// NewGenerator writes to out.
func NewGenerator(works repositories.WorkRepository, publicDir, baseURL, out string, logger *logging.ChanneledLogger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Generator{works: works, publicDir: publicDir, baseURL: baseURL, out: out, logger: logger}
}

// Path returns the output file.
func (g *Generator) Path() string { return g.out }

// Generate rebuilds the sitemap file.
func (g *Generator) Generate() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	start := time.Now()

	entries, err := FromWorks(g.baseURL, g.works.FindAll())
	if err != nil {
		return err
	}

	if info, statErr := os.Stat(g.publicDir); statErr == nil && info.IsDir() {
		static, err := Walk(g.publicDir, g.baseURL)
		if err != nil {
			return err
		}
		entries = Merge(static, entries)
	}

	if err := WriteFile(g.out, entries); err != nil {
		return err
	}
	g.logger.Sitemap().Info("Sitemap generated", "path", g.out, "urls", len(entries), "duration", time.Since(start))
	return nil
}

// Scheduler regenerates the sitemap on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// NewScheduler creates a scheduler in loc.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{cron: cron.New(cron.WithLocation(loc))}
}

// Schedule registers g to run on spec, replacing any previous job.
func (s *Scheduler) Schedule(spec string, g *Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	id, err := s.cron.AddFunc(spec, func() {
		if err := g.Generate(); err != nil {
			g.logger.Sitemap().Error("Scheduled sitemap generation failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sitemap schedule %q: %w", spec, err)
	}
	s.entryID = id
	return nil
}

// Next returns the next scheduled run, or the zero time.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		<-s.cron.Stop().Done()
		s.started = false
	}
}

// DefaultPath is where serve mode writes the sitemap.
func DefaultPath(publicDir string) string {
	return filepath.Join(publicDir, "sitemap.xml")
}
