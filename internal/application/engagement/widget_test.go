package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
)

const (
	testWorkID = "salt-and-iron"
	testURL    = "https://folio.example/works/salt-and-iron"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakePlatform struct {
	shareAvailable     bool
	shareErr           error
	clipboardAvailable bool
	clipboardErr       error

	shared  []ShareData
	written []string
}

func (p *fakePlatform) CanShare() bool { return p.shareAvailable }

func (p *fakePlatform) Share(_ context.Context, data ShareData) error {
	p.shared = append(p.shared, data)
	return p.shareErr
}

func (p *fakePlatform) CanWriteClipboard() bool { return p.clipboardAvailable }

func (p *fakePlatform) WriteClipboard(_ context.Context, text string) error {
	p.written = append(p.written, text)
	return p.clipboardErr
}

// failingArea rejects every write.
type failingArea struct{ storage.KeyValue }

func (failingArea) SetItem(context.Context, string, string) error { return storage.ErrQuotaExceeded }

type harness struct {
	doc       *dom.VirtualDocument
	kv        storage.KeyValue
	scheduler *ManualScheduler
	platform  *fakePlatform
	widget    *Widget
}

func buildDocument() *dom.VirtualDocument {
	doc := dom.NewDocument()
	likeBtn := doc.Create("button", IDLikeButton).Append(doc.Create("span", IDLikeCount))
	commentBtn := doc.Create("button", IDCommentButton).Append(doc.Create("span", IDCommentCount))
	shareBtn := doc.Create("button", IDShareButton).Append(doc.Create("span", IDShareCount))

	content := doc.Create("div", IDModalContent).Append(
		doc.Create("button", IDModalClose),
		doc.Create("textarea", IDCommentText),
		doc.Create("span", IDCharCount),
		doc.Create("input", IDCommentName),
		doc.Create("button", IDSubmitButton),
		doc.Create("div", IDCommentsList),
	)
	modal := doc.Create("div", IDModal).Append(content)
	cover := doc.Create("img", IDCoverImage)
	cover.SetAttr("src", "/media/covers/salt-and-iron_600.webp")

	doc.BodyNode().Append(
		cover,
		doc.Create("div", IDCoverPlaceholder),
		likeBtn, commentBtn, shareBtn, modal,
		doc.Create("div", IDToastContainer),
	)
	return doc
}

func newHarness(t *testing.T, kv storage.KeyValue) *harness {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemoryArea(0)
	}
	doc := buildDocument()
	h := &harness{
		doc:       doc,
		kv:        kv,
		scheduler: NewManualScheduler(),
		platform:  &fakePlatform{},
	}
	h.widget = New(Options{
		WorkID:    testWorkID,
		Title:     "Salt and Iron",
		URL:       testURL,
		Store:     NewStore(kv, testWorkID, nil),
		Document:  doc,
		Elements:  LookupElements(doc),
		Platform:  h.platform,
		Scheduler: h.scheduler,
		Clock:     func() time.Time { return testNow },
	})
	h.widget.Init(context.Background())
	return h
}

func (h *harness) text(id string) string { return h.doc.Node(id).Text() }

func (h *harness) stored(t *testing.T) entity.Record {
	t.Helper()
	raw, ok, err := h.kv.GetItem(context.Background(), entity.StorageKey(testWorkID))
	require.NoError(t, err)
	require.True(t, ok, "record was never saved")
	var r entity.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func (h *harness) toasts() []*dom.Node {
	return h.doc.Node(IDToastContainer).Children()
}

func TestWidgetInit(t *testing.T) {
	t.Run("renders zeros with nothing stored", func(t *testing.T) {
		h := newHarness(t, nil)
		assert.Equal(t, "0", h.text(IDLikeCount))
		assert.Equal(t, "0", h.text(IDShareCount))
		assert.Equal(t, "0", h.text(IDCommentCount))
		assert.Contains(t, h.text(IDCommentsList), EmptyCommentsMessage)
		assert.False(t, h.doc.Node(IDLikeButton).HasClass(ClassActive))
		assert.Equal(t, "true", h.doc.Node(IDModal).Attr("aria-hidden"))
	})

	t.Run("renders the stored record", func(t *testing.T) {
		kv := storage.NewMemoryArea(0)
		require.NoError(t, kv.SetItem(context.Background(), entity.StorageKey(testWorkID),
			`{"likes":7,"userLiked":true,"shares":2,"comments":[{"id":1,"text":"<b>bold</b>","name":"Kit","timestamp":"2025-06-01T11:00:00.000Z"}]}`))

		h := newHarness(t, kv)
		assert.Equal(t, "7", h.text(IDLikeCount))
		assert.Equal(t, "2", h.text(IDShareCount))
		assert.Equal(t, "1", h.text(IDCommentCount))
		assert.True(t, h.doc.Node(IDLikeButton).HasClass(ClassActive))
		assert.Contains(t, h.text(IDCommentsList), "&lt;b&gt;bold&lt;/b&gt;")
		assert.Contains(t, h.text(IDCommentsList), "1 hour ago")
	})

	t.Run("malformed storage falls back to defaults and is left alone", func(t *testing.T) {
		kv := storage.NewMemoryArea(0)
		require.NoError(t, kv.SetItem(context.Background(), entity.StorageKey(testWorkID), "{not json"))

		h := newHarness(t, kv)
		assert.Equal(t, "0", h.text(IDLikeCount))

		raw, _, err := kv.GetItem(context.Background(), entity.StorageKey(testWorkID))
		require.NoError(t, err)
		assert.Equal(t, "{not json", raw)
	})

	t.Run("missing elements are skipped", func(t *testing.T) {
		w := New(Options{
			WorkID:    testWorkID,
			Store:     NewStore(storage.NewMemoryArea(0), testWorkID, nil),
			Document:  dom.NewDocument(),
			Scheduler: NewManualScheduler(),
		})
		ctx := context.Background()
		assert.NotPanics(t, func() {
			w.Init(ctx)
			w.ToggleLike(ctx)
			w.Share(ctx)
			w.OpenModal()
			w.InputChanged()
			w.SubmitComment(ctx)
			w.CloseModal()
			w.CoverFailed()
		})
		assert.Equal(t, 1, w.State().Record.Likes)
	})
}

func TestWidgetToggleLike(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	btn := h.doc.Node(IDLikeButton)

	h.widget.ToggleLike(ctx)
	assert.Equal(t, "1", h.text(IDLikeCount))
	assert.True(t, btn.HasClass(ClassActive))
	assert.True(t, btn.HasClass(ClassPulse))
	assert.Equal(t, "true", btn.Attr("aria-pressed"))
	assert.Equal(t, 1, h.stored(t).Likes)
	assert.True(t, h.stored(t).UserLiked)

	h.scheduler.Advance(PulseDuration)
	assert.False(t, btn.HasClass(ClassPulse))

	h.widget.ToggleLike(ctx)
	assert.Equal(t, "0", h.text(IDLikeCount))
	assert.False(t, btn.HasClass(ClassActive))
	assert.False(t, btn.HasClass(ClassPulse), "unlike does not pulse")
	assert.Equal(t, 0, h.stored(t).Likes)
	assert.False(t, h.stored(t).UserLiked)
}

func TestWidgetShare(t *testing.T) {
	ctx := context.Background()

	t.Run("native share success counts", func(t *testing.T) {
		h := newHarness(t, nil)
		h.platform.shareAvailable = true
		h.platform.clipboardAvailable = true

		h.widget.Share(ctx)
		require.Len(t, h.platform.shared, 1)
		assert.Equal(t, ShareData{Title: "Salt and Iron", Text: DefaultShareText, URL: testURL}, h.platform.shared[0])
		assert.Empty(t, h.platform.written)
		assert.Equal(t, "1", h.text(IDShareCount))
		assert.Equal(t, 1, h.stored(t).Shares)
		assert.True(t, h.doc.Node(IDShareButton).HasClass(ClassPulse))
		assert.Empty(t, h.toasts())
	})

	t.Run("abort is silent", func(t *testing.T) {
		h := newHarness(t, nil)
		h.platform.shareAvailable = true
		h.platform.shareErr = ErrShareAborted
		h.platform.clipboardAvailable = true

		h.widget.Share(ctx)
		assert.Empty(t, h.platform.written)
		assert.Equal(t, "0", h.text(IDShareCount))
		assert.Empty(t, h.toasts())
	})

	t.Run("native failure falls through to clipboard", func(t *testing.T) {
		h := newHarness(t, nil)
		h.platform.shareAvailable = true
		h.platform.shareErr = errors.New("NotAllowedError")
		h.platform.clipboardAvailable = true

		h.widget.Share(ctx)
		assert.Equal(t, []string{testURL}, h.platform.written)
		assert.Equal(t, "1", h.text(IDShareCount))
		toasts := h.toasts()
		require.Len(t, toasts, 1)
		assert.Equal(t, MsgLinkCopied, toasts[0].Text())
		assert.True(t, toasts[0].HasClass("toast-success"))
	})

	t.Run("no capability shows the link without counting", func(t *testing.T) {
		h := newHarness(t, nil)

		h.widget.Share(ctx)
		assert.Equal(t, "0", h.text(IDShareCount))
		toasts := h.toasts()
		require.Len(t, toasts, 1)
		assert.Equal(t, MsgCopyManually+testURL, toasts[0].Text())
		_, saved, err := h.kv.GetItem(ctx, entity.StorageKey(testWorkID))
		require.NoError(t, err)
		assert.False(t, saved)
	})

	t.Run("clipboard failure shows the link without counting", func(t *testing.T) {
		h := newHarness(t, nil)
		h.platform.clipboardAvailable = true
		h.platform.clipboardErr = errors.New("denied")

		h.widget.Share(ctx)
		assert.Equal(t, "0", h.text(IDShareCount))
		require.Len(t, h.toasts(), 1)
		assert.True(t, strings.HasSuffix(h.toasts()[0].Text(), testURL))
	})
}

func TestWidgetModal(t *testing.T) {
	h := newHarness(t, nil)
	modal := h.doc.Node(IDModal)
	body := h.doc.BodyNode()

	require.True(t, h.widget.OpenModal())
	assert.True(t, modal.HasClass(ClassActive))
	assert.Equal(t, "false", modal.Attr("aria-hidden"))
	assert.Equal(t, "hidden", body.Style("overflow"))
	assert.Equal(t, IDCommentText, h.doc.Focused().ID())
	assert.False(t, h.widget.OpenModal(), "second open is ignored")

	h.doc.Node(IDCommentText).SetValue("draft")
	h.doc.Node(IDCommentName).SetValue("Kit")
	assert.Equal(t, 5, h.widget.InputChanged())
	assert.Equal(t, "5", h.text(IDCharCount))

	assert.False(t, h.widget.OverlayClicked(TargetContent))
	assert.Equal(t, entity.ModalOpen, h.widget.State().Modal)

	assert.False(t, h.widget.KeyDown("Enter"))
	require.True(t, h.widget.KeyDown("Escape"))
	assert.False(t, modal.HasClass(ClassActive))
	assert.Empty(t, h.doc.Node(IDCommentText).Value())
	assert.Empty(t, h.doc.Node(IDCommentName).Value())
	assert.Equal(t, "0", h.text(IDCharCount))
	assert.Empty(t, body.Style("overflow"))

	assert.False(t, h.widget.KeyDown("Escape"), "escape while closed is a no-op")

	require.True(t, h.widget.OpenModal())
	require.True(t, h.widget.OverlayClicked(TargetOverlay))
	assert.Equal(t, entity.ModalClosed, h.widget.State().Modal)
}

func TestWidgetInputChangedCountsCharacters(t *testing.T) {
	h := newHarness(t, nil)
	h.widget.OpenModal()
	h.doc.Node(IDCommentText).SetValue("héllo ✨")
	assert.Equal(t, 7, h.widget.InputChanged())
}

func TestWidgetSubmitComment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and renders a comment", func(t *testing.T) {
		h := newHarness(t, nil)
		var notified []entity.Comment
		h.widget.opts.OnComment = func(workID, title string, c entity.Comment) {
			assert.Equal(t, testWorkID, workID)
			assert.Equal(t, "Salt and Iron", title)
			notified = append(notified, c)
		}

		h.widget.OpenModal()
		h.doc.Node(IDCommentText).SetValue("  It stayed with me.  ")
		require.True(t, h.widget.SubmitComment(ctx))

		rec := h.stored(t)
		require.Len(t, rec.Comments, 1)
		assert.Equal(t, "It stayed with me.", rec.Comments[0].Text)
		assert.Equal(t, entity.AnonymousName, rec.Comments[0].Name)
		assert.Equal(t, testNow.UnixMilli(), rec.Comments[0].ID)

		assert.Equal(t, "1", h.text(IDCommentCount))
		assert.Contains(t, h.text(IDCommentsList), "It stayed with me.")
		assert.Contains(t, h.text(IDCommentsList), "Just now")
		assert.Equal(t, entity.ModalClosed, h.widget.State().Modal)
		assert.Empty(t, h.doc.Node(IDCommentText).Value())
		require.Len(t, h.toasts(), 1)
		assert.Equal(t, MsgCommentThanks, h.toasts()[0].Text())
		require.Len(t, notified, 1)
	})

	t.Run("empty text keeps the modal open", func(t *testing.T) {
		h := newHarness(t, nil)
		h.widget.OpenModal()
		h.doc.Node(IDCommentText).SetValue("   ")
		h.doc.Node(IDCommentName).SetValue("Kit")

		assert.False(t, h.widget.SubmitComment(ctx))
		assert.Equal(t, entity.ModalOpen, h.widget.State().Modal)
		assert.Equal(t, "Kit", h.doc.Node(IDCommentName).Value())
		require.Len(t, h.toasts(), 1)
		assert.Equal(t, MsgEmptyComment, h.toasts()[0].Text())
		assert.True(t, h.toasts()[0].HasClass("toast-error"))
		assert.Equal(t, 0, h.widget.State().Record.CommentCount())
	})

	t.Run("submit while closed does nothing", func(t *testing.T) {
		h := newHarness(t, nil)
		h.doc.Node(IDCommentText).SetValue("sneaky")
		assert.False(t, h.widget.SubmitComment(ctx))
		assert.Empty(t, h.toasts())
	})

	t.Run("newest comment first", func(t *testing.T) {
		h := newHarness(t, nil)
		for _, text := range []string{"one", "two"} {
			h.widget.OpenModal()
			h.doc.Node(IDCommentText).SetValue(text)
			require.True(t, h.widget.SubmitComment(ctx))
		}
		rec := h.stored(t)
		require.Len(t, rec.Comments, 2)
		assert.Equal(t, "two", rec.Comments[0].Text)
		assert.Greater(t, rec.Comments[0].ID, rec.Comments[1].ID)
	})
}

func TestWidgetSurvivesFailedWrites(t *testing.T) {
	kv := failingArea{storage.NewMemoryArea(0)}
	h := newHarness(t, kv)
	ctx := context.Background()

	h.widget.ToggleLike(ctx)
	assert.Equal(t, "1", h.text(IDLikeCount))
	assert.Equal(t, 1, h.widget.State().Record.Likes)

	h.widget.OpenModal()
	h.doc.Node(IDCommentText).SetValue("kept in memory")
	require.True(t, h.widget.SubmitComment(ctx))
	assert.Equal(t, "1", h.text(IDCommentCount))
}

func TestWidgetCover(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, "none", h.doc.Node(IDCoverPlaceholder).Style("display"))

	h.widget.CoverFailed()
	assert.Equal(t, "none", h.doc.Node(IDCoverImage).Style("display"))
	assert.Equal(t, "flex", h.doc.Node(IDCoverPlaceholder).Style("display"))
}

func TestWidgetWorksAreIsolated(t *testing.T) {
	kv := storage.NewMemoryArea(0)
	ctx := context.Background()

	a := New(Options{WorkID: "a", Store: NewStore(kv, "a", nil), Document: dom.NewDocument(), Scheduler: NewManualScheduler()})
	b := New(Options{WorkID: "b", Store: NewStore(kv, "b", nil), Document: dom.NewDocument(), Scheduler: NewManualScheduler()})
	a.Init(ctx)
	b.Init(ctx)

	a.ToggleLike(ctx)
	b.Init(ctx)
	assert.Equal(t, 0, b.State().Record.Likes)
	assert.Equal(t, 1, kv.Len())
}
