package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/services"
	"github.com/AtRiskMedia/folio-go/internal/application/sitemap"
	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/folio-go/internal/presentation/templates"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type works map[string]*content.Work

func (w works) FindBySlug(slug string) (*content.Work, error) {
	if work, ok := w[slug]; ok {
		return work, nil
	}
	return nil, content.ErrWorkNotFound
}

func (w works) FindByID(id string) (*content.Work, error) {
	for _, work := range w {
		if work.ID == id {
			return work, nil
		}
	}
	return nil, content.ErrWorkNotFound
}

func (w works) FindAll() []*content.Work {
	out := make([]*content.Work, 0, len(w))
	for _, work := range w {
		out = append(out, work)
	}
	return out
}

type areas struct {
	mu sync.Mutex
	m  map[string]*storage.MemoryArea
}

func (a *areas) Area(visitorID string) storage.KeyValue {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.m == nil {
		a.m = make(map[string]*storage.MemoryArea)
	}
	if _, ok := a.m[visitorID]; !ok {
		a.m[visitorID] = storage.NewMemoryArea(0)
	}
	return a.m[visitorID]
}

var testWorks = works{
	"low-tide": {
		ID: "tide", Slug: "low-tide", Title: "Low Tide", Kind: content.KindPoetry,
		Published: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	},
}

type testServer struct {
	router    *gin.Engine
	generator *sitemap.Generator
	cookies   []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewDiscardLogger()
	tracker := performance.NewTracker(time.Second, logger)
	tokens, err := security.NewVisitorTokens("handler-test-secret", time.Hour)
	require.NoError(t, err)

	svc := services.NewEngagementService(services.EngagementServiceConfig{
		Works:   testWorks,
		Areas:   &areas{},
		BaseURL: "https://folio.example",
		Clock:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		Logger:  logger,
	})

	public := t.TempDir()
	generator := sitemap.NewGenerator(testWorks, public, "https://folio.example", sitemap.DefaultPath(public), logger)

	site := templates.Page{SiteName: "Folio"}
	worksHandlers := NewWorksHandlers(svc, site, logger, tracker)
	engagementHandlers := NewEngagementHandlers(svc, logger, tracker)
	healthHandlers := NewHealthHandlers(svc, nil, tracker)
	sitemapHandlers := NewSitemapHandlers(generator, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.GET("/healthz", healthHandlers.Health)
	r.GET("/sitemap.xml", sitemapHandlers.Sitemap)

	v := r.Group("/")
	v.Use(middleware.VisitorMiddleware(middleware.VisitorConfig{Tokens: tokens, CookieName: "folio_visitor"}, logger, tracker))
	v.GET("/", worksHandlers.Index)
	w := v.Group("/works/:slug")
	w.GET("", worksHandlers.Work)
	w.GET("/widget", engagementHandlers.Widget)
	w.GET("/engagement", engagementHandlers.Engagement)
	w.POST("/like", engagementHandlers.Like)
	w.POST("/share", engagementHandlers.Share)
	w.POST("/comments/open", engagementHandlers.OpenComments)
	w.POST("/comments/close", engagementHandlers.CloseComments)
	w.POST("/comments/count", engagementHandlers.CountCharacters)
	w.POST("/comments/submit", engagementHandlers.SubmitComment)

	return &testServer{router: r, generator: generator}
}

// do sends a request as the same visitor across calls.
func (s *testServer) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		s.cookies = set
	}
	return rec
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="/works/low-tide">Low Tide</a>`)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	require.Len(t, s.cookies, 1)
	assert.True(t, s.cookies[0].HttpOnly)
}

func TestWorkPage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/works/low-tide", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<section id="engagement"`)
	assert.Contains(t, rec.Body.String(), `<link rel="canonical" href="https://folio.example/works/low-tide">`)

	rec = s.do(http.MethodGet, "/works/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is no published work at this address.")
}

func TestLikePersistsForVisitor(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/works/low-tide/like", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="like-count" class="engagement-count">1</span>`)

	rec = s.do(http.MethodGet, "/works/low-tide/engagement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got EngagementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tide", got.WorkID)
	assert.Equal(t, 1, got.Record.Likes)
	assert.True(t, got.Record.UserLiked)

	stranger := newTestServer(t)
	rec = stranger.do(http.MethodGet, "/works/low-tide/engagement", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0, got.Record.Likes)
}

func TestShareOutcomes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/works/low-tide/share", url.Values{"native": {"aborted"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="share-count" class="engagement-count">0</span>`)

	rec = s.do(http.MethodPost, "/works/low-tide/share", url.Values{"native": {"failed"}, "clipboard": {"succeeded"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="share-count" class="engagement-count">1</span>`)
	assert.Contains(t, rec.Body.String(), `hx-swap-oob="beforeend:#toast-container"`)
}

func TestCommentFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/works/low-tide/comments/open", url.Values{"state": {"closed"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-hidden="false"`)

	rec = s.do(http.MethodPost, "/works/low-tide/comments/open", url.Values{"state": {"open"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/works/low-tide/comments/count", url.Values{"state": {"open"}, "text": {"four"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `>4</span>`)

	rec = s.do(http.MethodPost, "/works/low-tide/comments/submit", url.Values{"state": {"open"}, "text": {"Lovely."}, "name": {"Ada"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lovely.")
	assert.Contains(t, rec.Body.String(), `<span id="comment-count" class="engagement-count">1</span>`)

	rec = s.do(http.MethodPost, "/works/low-tide/comments/close", url.Values{"state": {"closed"}, "trigger": {"escape"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUnknownWorkAction(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/works/missing/like", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"work not found"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["works"])
}

func TestSitemapGeneratedOnDemand(t *testing.T) {
	s := newTestServer(t)
	_, err := os.Stat(s.generator.Path())
	require.True(t, os.IsNotExist(err))

	rec := s.do(http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://folio.example/works/low-tide</loc>")
	assert.FileExists(t, filepath.Clean(s.generator.Path()))
}
