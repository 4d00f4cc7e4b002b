// Package services contains the application services the HTTP layer drives.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/domain/repositories"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
	"github.com/AtRiskMedia/folio-go/internal/presentation/templates"
)

// AreaProvider hands out one storage area per visitor.
type AreaProvider interface {
	Area(visitorID string) storage.KeyValue
}

// CoverSource resolves a work's cover image.
type CoverSource interface {
	CoverFor(w *content.Work) media.Cover
}

// Close triggers reported by the page.
const (
	TriggerButton  = "button"
	TriggerOverlay = "overlay"
	TriggerEscape  = "escape"
)

// Action identifies who is acting and what the page currently shows.
type Action struct {
	VisitorID string
	Slug      string
	// Origin is the storage-event connection of the acting page, if any.
	Origin string
	Modal  entity.ModalState
}

// EngagementServiceConfig wires an EngagementService.
type EngagementServiceConfig struct {
	Works     repositories.WorkRepository
	Areas     AreaProvider
	Covers    CoverSource
	Events    messaging.StoragePublisher
	OnComment engagement.CommentHook
	BaseURL   string
	Host      templates.Host
	Clock     func() time.Time
	Logger    *logging.ChanneledLogger
}

// EngagementService runs the engagement widget server-side. Every call builds
// a fresh widget over the visitor's storage area, applies one action and
// returns the htmx fragments that changed.
type EngagementService struct {
	cfg EngagementServiceConfig
}

// NewEngagementService creates the service.
func NewEngagementService(cfg EngagementServiceConfig) *EngagementService {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDiscardLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Host == "" {
		cfg.Host = templates.HostServer
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &EngagementService{cfg: cfg}
}

// BaseURL is the site root without a trailing slash.
func (s *EngagementService) BaseURL() string { return s.cfg.BaseURL }

// WorkURL is the canonical URL of a work page.
func (s *EngagementService) WorkURL(slug string) string {
	return s.cfg.BaseURL + "/works/" + slug
}

// session is one widget bound to one request.
type session struct {
	work   *content.Work
	doc    *dom.VirtualDocument
	nodes  templates.WidgetNodes
	widget *engagement.Widget
}

func (s *EngagementService) open(ctx context.Context, a Action, platform engagement.Platform, kv storage.KeyValue, actionBase string) (*session, error) {
	work, err := s.cfg.Works.FindBySlug(a.Slug)
	if err != nil {
		return nil, err
	}

	var cover media.Cover
	if s.cfg.Covers != nil {
		cover = s.cfg.Covers.CoverFor(work)
	}

	doc := dom.NewDocument()
	nodes := templates.BuildWidget(doc, templates.WidgetProps{
		WorkID:     work.ID,
		Slug:       work.Slug,
		Title:      work.Title,
		URL:        s.WorkURL(work.Slug),
		Cover:      cover,
		ActionBase: actionBase,
	})

	store := engagement.NewStore(kv, work.ID, s.cfg.Logger)
	if s.cfg.Events != nil && a.VisitorID != "" {
		store.WithObserver(func(key string) {
			s.cfg.Events.Publish(a.VisitorID, messaging.StorageEvent{Key: key, WorkID: work.ID, Origin: a.Origin})
		})
	}

	widget := engagement.New(engagement.Options{
		WorkID:    work.ID,
		Title:     work.Title,
		URL:       s.WorkURL(work.Slug),
		Store:     store,
		Document:  doc,
		Elements:  engagement.LookupElements(doc),
		Platform:  platform,
		Scheduler: engagement.NewManualScheduler(),
		Clock:     s.cfg.Clock,
		Logger:    s.cfg.Logger,
		OnComment: s.cfg.OnComment,
		Modal:     a.Modal,
	})
	widget.Init(ctx)

	return &session{work: work, doc: doc, nodes: nodes, widget: widget}, nil
}

func (s *EngagementService) action(ctx context.Context, a Action, platform engagement.Platform) (*session, error) {
	return s.open(ctx, a, platform, s.cfg.Areas.Area(a.VisitorID), "/works/"+a.Slug)
}

// fragments returns the widget plus any toasts raised. The modal is only
// included when the action changed it, so typed input survives other swaps.
func (ss *session) fragments(withModal bool) string {
	var f templates.Fragments
	f.Replace(ss.nodes.Root)
	if withModal {
		f.Replace(ss.nodes.Modal)
	}
	return f.Toasts(ss.widget.Toaster().Shown()).String()
}

// WorkPage renders the page for a work. On the server host the widget shows
// the visitor's stored record; on the wasm host the browser loads it.
func (s *EngagementService) WorkPage(ctx context.Context, a Action, page templates.Page) (templates.WorkPage, *content.Work, error) {
	var (
		ss  *session
		err error
	)
	if s.cfg.Host == templates.HostWasm {
		ss, err = s.open(ctx, a, nil, storage.NewMemoryArea(0), "")
	} else {
		ss, err = s.action(ctx, a, nil)
	}
	if err != nil {
		return templates.WorkPage{}, nil, err
	}

	page.Host = s.cfg.Host
	page.Title = ss.work.Title
	page.Description = ss.work.Summary
	page.Canonical = s.WorkURL(ss.work.Slug)
	return templates.NewWorkPage(page, ss.work, ss.nodes), ss.work, nil
}

// Widget returns the current widget fragments, used after a storage event
// from another tab.
func (s *EngagementService) Widget(ctx context.Context, a Action) (string, error) {
	ss, err := s.action(ctx, a, nil)
	if err != nil {
		return "", err
	}
	return ss.fragments(false), nil
}

// Like toggles the visitor's like.
func (s *EngagementService) Like(ctx context.Context, a Action) (string, error) {
	ss, err := s.action(ctx, a, nil)
	if err != nil {
		return "", err
	}
	ss.widget.ToggleLike(ctx)
	return ss.fragments(false), nil
}

// Share replays the share cascade with the outcomes the page observed.
func (s *EngagementService) Share(ctx context.Context, a Action, platform engagement.Platform) (string, error) {
	ss, err := s.action(ctx, a, platform)
	if err != nil {
		return "", err
	}
	ss.widget.Share(ctx)
	return ss.fragments(false), nil
}

// OpenComments opens the comment modal. It returns no fragments when the
// modal is already open.
func (s *EngagementService) OpenComments(ctx context.Context, a Action) (string, error) {
	ss, err := s.action(ctx, a, nil)
	if err != nil {
		return "", err
	}
	if !ss.widget.OpenModal() {
		return "", nil
	}
	var f templates.Fragments
	return f.Replace(ss.nodes.Modal).String(), nil
}

// CloseComments closes the modal for the given trigger. Rejected closes
// return no fragments.
func (s *EngagementService) CloseComments(ctx context.Context, a Action, trigger string) (string, error) {
	ss, err := s.action(ctx, a, nil)
	if err != nil {
		return "", err
	}

	var closed bool
	switch trigger {
	case TriggerEscape:
		closed = ss.widget.KeyDown("Escape")
	case TriggerOverlay:
		closed = ss.widget.OverlayClicked(engagement.TargetOverlay)
	default:
		closed = ss.widget.CloseModal()
	}
	if !closed {
		return "", nil
	}
	var f templates.Fragments
	return f.Replace(ss.nodes.Modal).String(), nil
}

// CountCharacters refreshes the character counter for text.
func (s *EngagementService) CountCharacters(ctx context.Context, a Action, text string) (string, error) {
	ss, err := s.action(ctx, a, nil)
	if err != nil {
		return "", err
	}
	ss.doc.Node(engagement.IDCommentText).SetValue(text)
	ss.widget.InputChanged()

	var f templates.Fragments
	return f.Replace(ss.doc.Node(engagement.IDCharCount)).String(), nil
}

// SubmitComment validates and stores a comment. A rejected comment keeps the
// modal open with the visitor's input and raises a toast.
func (s *EngagementService) SubmitComment(ctx context.Context, a Action, text, name string) (string, error) {
	ss, err := s.action(ctx, a, nil)
	if err != nil {
		return "", err
	}
	ss.doc.Node(engagement.IDCommentText).SetValue(text)
	ss.doc.Node(engagement.IDCommentName).SetValue(name)
	ss.widget.InputChanged()

	ss.widget.SubmitComment(ctx)
	return ss.fragments(true), nil
}

// Record returns the visitor's stored record for a work.
func (s *EngagementService) Record(ctx context.Context, a Action) (*content.Work, entity.Record, error) {
	work, err := s.cfg.Works.FindBySlug(a.Slug)
	if err != nil {
		return nil, entity.Record{}, err
	}
	store := engagement.NewStore(s.cfg.Areas.Area(a.VisitorID), work.ID, s.cfg.Logger)
	return work, store.Load(ctx), nil
}

// Index returns the published works.
func (s *EngagementService) Index() []*content.Work {
	return s.cfg.Works.FindAll()
}
