package templates

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWork() *content.Work {
	return &content.Work{
		ID:        "tide",
		Slug:      "low-tide",
		Title:     "Low Tide <at dusk>",
		Kind:      content.KindPoetry,
		Summary:   "Salt & quiet.",
		Published: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Body:      template.HTML("<p>the sea went out</p>"),
	}
}

func TestBuildWidgetBindsEveryElement(t *testing.T) {
	doc := dom.NewDocument()
	BuildWidget(doc, WidgetProps{WorkID: "tide", Slug: "low-tide", Title: "Low Tide", ActionBase: "/works/low-tide"})

	els := engagement.LookupElements(doc)
	for name, el := range map[string]dom.Element{
		"like button":    els.LikeButton,
		"like count":     els.LikeCount,
		"comment button": els.CommentButton,
		"comment count":  els.CommentCount,
		"share button":   els.ShareButton,
		"share count":    els.ShareCount,
		"modal":          els.Modal,
		"modal content":  els.ModalContent,
		"modal close":    els.ModalClose,
		"submit":         els.SubmitButton,
		"comment text":   els.CommentText,
		"comment name":   els.CommentName,
		"char count":     els.CharCount,
		"comments list":  els.CommentsList,
		"placeholder":    els.CoverPlaceholder,
		"toasts":         els.ToastContainer,
	} {
		assert.NotNil(t, el, name)
	}
	assert.Nil(t, els.CoverImage, "no cover image without a cover")

	assert.Equal(t, "/works/low-tide/like", doc.Node(engagement.IDLikeButton).Attr("hx-post"))
	assert.Equal(t, "/works/low-tide/share", doc.Node(engagement.IDShareButton).Attr("data-share-action"))
	assert.Contains(t, doc.Node(engagement.IDModal).Attr("hx-trigger"), "Escape")
}

func TestBuildWidgetWithoutActions(t *testing.T) {
	doc := dom.NewDocument()
	nodes := BuildWidget(doc, WidgetProps{WorkID: "tide", Title: "Low Tide"})

	html := nodes.Root.OuterHTML() + nodes.Modal.OuterHTML()
	assert.NotContains(t, html, "hx-post")
	assert.Contains(t, html, `data-work-id="tide"`)
}

func TestBuildWidgetCover(t *testing.T) {
	doc := dom.NewDocument()
	cover := media.Cover{Src: "/media/thumbs/tide_600px.webp", SrcSet: "/media/thumbs/tide_600px.webp 600w", Alt: "Low Tide"}
	nodes := BuildWidget(doc, WidgetProps{WorkID: "tide", Title: "Low Tide", Cover: cover})

	img := doc.Node(engagement.IDCoverImage)
	require.NotNil(t, img)
	assert.Equal(t, cover.Src, img.Attr("src"))
	assert.Contains(t, nodes.Cover.OuterHTML(), `srcset="/media/thumbs/tide_600px.webp 600w"`)
}

func TestWidgetRendersIntoSkeleton(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDocument()
	nodes := BuildWidget(doc, WidgetProps{WorkID: "tide", Title: "Low Tide", ActionBase: "/works/low-tide"})

	kv := storage.NewMemoryArea(0)
	require.NoError(t, kv.SetItem(ctx, "engagement:tide", `{"likes":3,"userLiked":true,"shares":1,"comments":[]}`))

	w := engagement.New(engagement.Options{
		WorkID:    "tide",
		Store:     engagement.NewStore(kv, "tide", nil),
		Document:  doc,
		Elements:  engagement.LookupElements(doc),
		Scheduler: engagement.NewManualScheduler(),
	})
	w.Init(ctx)

	html := nodes.Root.OuterHTML()
	assert.Contains(t, html, `<span id="like-count" class="engagement-count">3</span>`)
	assert.Contains(t, html, `aria-pressed="true"`)
	assert.Contains(t, html, engagement.EmptyCommentsMessage)
	assert.Equal(t, "flex", doc.Node(engagement.IDCoverPlaceholder).Style("display"))
}

func TestFragments(t *testing.T) {
	doc := dom.NewDocument()
	nodes := BuildWidget(doc, WidgetProps{WorkID: "tide", Title: "Low Tide"})
	toaster := engagement.NewToaster(doc, nodes.Toasts, engagement.NewManualScheduler())
	toaster.Show("Thank you for your comment!", engagement.ToastSuccess)

	var f Fragments
	assert.True(t, f.Empty())
	out := f.Replace(nodes.Root, nil).Toasts(toaster.Shown()).String()

	assert.True(t, strings.HasPrefix(out, `<section id="engagement" `))
	assert.Contains(t, out, `hx-swap-oob="true"`)
	assert.Contains(t, out, `<div hx-swap-oob="beforeend:#toast-container"><div class="toast toast-success"`)
	assert.Empty(t, nodes.Root.Attr("hx-swap-oob"), "oob marker is not left on the node")

	var none Fragments
	assert.Empty(t, none.Toasts(nil).String())
}

func TestRenderIndex(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderIndex(&buf, IndexPage{
		Page:  Page{Title: "Works"},
		Works: []*content.Work{sampleWork()},
	}))

	out := buf.String()
	assert.Contains(t, out, `<a href="/works/low-tide">Low Tide &lt;at dusk&gt;</a>`)
	assert.Contains(t, out, "Poetry")
	assert.Contains(t, out, "January 5, 2025")
	assert.Contains(t, out, HTMXSrc)
	assert.Contains(t, out, `<a href="/" class="site-title">Folio</a>`)
}

func TestRenderIndexEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderIndex(&buf, IndexPage{Page: Page{Title: "Works"}}))
	assert.Contains(t, buf.String(), "Nothing published yet.")
}

func TestRenderWork(t *testing.T) {
	doc := dom.NewDocument()
	nodes := BuildWidget(doc, WidgetProps{WorkID: "tide", Title: "Low Tide"})

	var buf bytes.Buffer
	require.NoError(t, RenderWork(&buf, NewWorkPage(Page{Title: "Low Tide", Host: HostWasm}, sampleWork(), nodes)))

	out := buf.String()
	assert.Contains(t, out, "<p>the sea went out</p>")
	assert.Contains(t, out, `<section id="engagement"`)
	assert.Contains(t, out, `id="comment-modal"`)
	assert.Contains(t, out, `/static/wasm_exec.js`)
	assert.NotContains(t, out, HTMXSrc)
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderError(&buf, ErrorPage{Page: Page{Title: "Not found"}, Heading: "Not found", Message: "No such work."}))
	assert.Contains(t, buf.String(), "No such work.")
}

func TestParseHost(t *testing.T) {
	assert.Equal(t, HostWasm, ParseHost("wasm"))
	assert.Equal(t, HostServer, ParseHost(""))
	assert.Equal(t, HostServer, ParseHost("other"))
}
