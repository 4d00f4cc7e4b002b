package templates

import (
	"fmt"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
)

// IDCover is the figure that holds the cover image and its placeholder.
const IDCover = "cover"

// MaxCommentLength bounds the comment textarea.
const MaxCommentLength = 2000

// WidgetProps describes the work the widget is bound to.
type WidgetProps struct {
	WorkID string
	Slug   string
	Title  string
	URL    string
	Cover  media.Cover
	// ActionBase is the path the htmx controls post to, normally
	// /works/<slug>. An empty base renders plain controls for the browser
	// host, which binds its own listeners.
	ActionBase string
}

// WidgetNodes are the top-level containers of a built widget. They are all
// attached to the document body.
type WidgetNodes struct {
	Cover  *dom.Node
	Root   *dom.Node
	Modal  *dom.Node
	Toasts *dom.Node
}

// BuildWidget writes the widget skeleton into doc. The engagement widget
// fills in counts, the comment list and the modal state afterwards.
func BuildWidget(doc *dom.VirtualDocument, props WidgetProps) WidgetNodes {
	nodes := WidgetNodes{
		Cover:  buildCover(doc, props),
		Root:   buildControls(doc, props),
		Modal:  buildModal(doc, props),
		Toasts: doc.Create("div", engagement.IDToastContainer, "toast-container"),
	}
	nodes.Toasts.SetAttr("aria-live", "polite")

	doc.BodyNode().Append(nodes.Cover, nodes.Root, nodes.Modal, nodes.Toasts)
	return nodes
}

func buildCover(doc *dom.VirtualDocument, props WidgetProps) *dom.Node {
	figure := doc.Create("figure", IDCover, "work-cover")

	if props.Cover.Available() {
		img := doc.Create("img", engagement.IDCoverImage, "cover-image")
		img.SetAttr("src", props.Cover.Src)
		if props.Cover.SrcSet != "" {
			img.SetAttr("srcset", props.Cover.SrcSet)
			img.SetAttr("sizes", "(min-width: 768px) 600px, 100vw")
		}
		img.SetAttr("alt", props.Cover.Alt)
		img.SetAttr("loading", "lazy")
		img.SetAttr("data-folio-cover", "")
		figure.Append(img)
	}

	placeholder := doc.Create("div", engagement.IDCoverPlaceholder, "cover-placeholder")
	placeholder.SetAttr("role", "img")
	placeholder.SetAttr("aria-label", props.Title)
	title := doc.Create("span", "", "cover-placeholder-title")
	title.SetText(props.Title)
	placeholder.Append(title)
	figure.Append(placeholder)

	return figure
}

func buildControls(doc *dom.VirtualDocument, props WidgetProps) *dom.Node {
	root := doc.Create("section", engagement.IDWidget, "engagement")
	root.SetAttr("aria-label", "Engagement")
	root.SetAttr("data-work-id", props.WorkID)
	root.SetAttr("data-title", props.Title)
	root.SetAttr("data-url", props.URL)

	bar := doc.Create("div", "", "engagement-bar")

	like := doc.Create("button", engagement.IDLikeButton, "engagement-btn", "like-btn")
	like.SetAttr("type", "button")
	like.SetAttr("aria-label", "Like")
	like.SetAttr("aria-pressed", "false")
	post(like, props, "/like", "")
	like.Append(icon(doc, "♥"), counter(doc, engagement.IDLikeCount))

	comment := doc.Create("button", engagement.IDCommentButton, "engagement-btn", "comment-btn")
	comment.SetAttr("type", "button")
	comment.SetAttr("aria-label", "Comments")
	comment.SetAttr("aria-controls", engagement.IDModal)
	post(comment, props, "/comments/open", modalVals(""))
	comment.Append(icon(doc, "✎"), counter(doc, engagement.IDCommentCount))

	share := doc.Create("button", engagement.IDShareButton, "engagement-btn", "share-btn")
	share.SetAttr("type", "button")
	share.SetAttr("aria-label", "Share")
	// The page runs the share cascade itself and posts the outcome.
	if props.ActionBase != "" {
		share.SetAttr("data-share-action", props.ActionBase+"/share")
	}
	share.Append(icon(doc, "↗"), counter(doc, engagement.IDShareCount))

	bar.Append(like, comment, share)

	heading := doc.Create("h2", "", "comments-heading")
	heading.SetText("Comments")
	list := doc.Create("div", engagement.IDCommentsList, "comments-list")

	root.Append(bar, heading, list)
	return root
}

func buildModal(doc *dom.VirtualDocument, props WidgetProps) *dom.Node {
	overlay := doc.Create("div", engagement.IDModal, "modal-overlay")
	overlay.SetAttr("role", "dialog")
	overlay.SetAttr("aria-modal", "true")
	overlay.SetAttr("aria-labelledby", "comment-modal-title")
	overlay.SetAttr("aria-hidden", "true")
	if props.ActionBase != "" {
		overlay.SetAttr("hx-post", props.ActionBase+"/comments/close")
		overlay.SetAttr("hx-trigger", "click[target===this], keyup[key==='Escape'] from:body")
		overlay.SetAttr("hx-vals", modalVals(`event.type === "keyup" ? "escape" : "overlay"`))
		overlay.SetAttr("hx-swap", "none")
	}

	content := doc.Create("div", engagement.IDModalContent, "modal-content")

	header := doc.Create("div", "", "modal-header")
	title := doc.Create("h3", "comment-modal-title")
	title.SetText("Share your thoughts")
	closeBtn := doc.Create("button", engagement.IDModalClose, "modal-close")
	closeBtn.SetAttr("type", "button")
	closeBtn.SetAttr("aria-label", "Close")
	closeBtn.SetText("×")
	post(closeBtn, props, "/comments/close", modalVals(`"button"`))
	header.Append(title, closeBtn)

	form := doc.Create("form", engagement.IDCommentForm, "comment-form")
	if props.ActionBase != "" {
		form.SetAttr("hx-post", props.ActionBase+"/comments/submit")
		form.SetAttr("hx-vals", modalVals(""))
		form.SetAttr("hx-swap", "none")
	}

	text := doc.Create("textarea", engagement.IDCommentText, "comment-text")
	text.SetAttr("name", "text")
	text.SetAttr("rows", "5")
	text.SetAttr("maxlength", fmt.Sprint(MaxCommentLength))
	text.SetAttr("placeholder", "What did this piece stir in you?")
	if props.ActionBase != "" {
		text.SetAttr("hx-post", props.ActionBase+"/comments/count")
		text.SetAttr("hx-trigger", "input changed delay:150ms")
		text.SetAttr("hx-swap", "none")
	}

	meta := doc.Create("div", "", "comment-meta")
	count := doc.Create("span", engagement.IDCharCount, "char-count")
	count.SetText("0")
	limit := doc.Create("span", "", "char-limit")
	limit.SetText(fmt.Sprintf(" / %d", MaxCommentLength))
	meta.Append(count, limit)

	name := doc.Create("input", engagement.IDCommentName, "comment-name")
	name.SetAttr("type", "text")
	name.SetAttr("name", "name")
	name.SetAttr("maxlength", "80")
	name.SetAttr("placeholder", "Your name (optional)")

	submit := doc.Create("button", engagement.IDSubmitButton, "comment-submit")
	submit.SetAttr("type", "submit")
	submit.SetText("Post comment")

	form.Append(text, meta, name, submit)
	content.Append(header, form)
	overlay.Append(content)
	return overlay
}

// post wires el to an htmx POST. Responses are out-of-band fragments only.
func post(el *dom.Node, props WidgetProps, action, vals string) {
	if props.ActionBase == "" {
		return
	}
	el.SetAttr("hx-post", props.ActionBase+action)
	el.SetAttr("hx-swap", "none")
	if vals != "" {
		el.SetAttr("hx-vals", vals)
	}
}

// modalVals reports the modal state the page currently shows, plus the
// trigger expression when one is given.
func modalVals(trigger string) string {
	state := `document.getElementById("` + engagement.IDModal + `").classList.contains("` +
		engagement.ClassActive + `") ? "open" : "closed"`
	if trigger == "" {
		return "js:{state: " + state + "}"
	}
	return "js:{state: " + state + ", trigger: " + trigger + "}"
}

func icon(doc *dom.VirtualDocument, glyph string) *dom.Node {
	n := doc.Create("span", "", "engagement-icon")
	n.SetAttr("aria-hidden", "true")
	n.SetText(glyph)
	return n
}

func counter(doc *dom.VirtualDocument, id string) *dom.Node {
	n := doc.Create("span", id, "engagement-count")
	n.SetText("0")
	return n
}
