//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom/jsdom"
)

// on registers handler for event on the element with id, if it exists. The
// JS callback is kept for the life of the page.
func on(doc *jsdom.Document, id, event string, handler func(evt js.Value)) {
	el := doc.ByID(id)
	if el == nil {
		return
	}
	el.(*jsdom.Element).JSValue().Call("addEventListener", event, js.FuncOf(func(_ js.Value, args []js.Value) any {
		handler(arg(args))
		return nil
	}))
}

func bind(ctx context.Context, loop *eventLoop, doc *jsdom.Document, w *engagement.Widget, key string) {
	post := func(fn func()) func(js.Value) {
		return func(js.Value) { loop.Post(fn) }
	}

	on(doc, engagement.IDLikeButton, "click", post(func() { w.ToggleLike(ctx) }))
	// Share awaits browser promises, so the loop blocks until it settles.
	on(doc, engagement.IDShareButton, "click", post(func() { w.Share(ctx) }))
	on(doc, engagement.IDCommentButton, "click", post(func() { w.OpenModal() }))
	on(doc, engagement.IDModalClose, "click", post(func() { w.CloseModal() }))
	on(doc, engagement.IDCommentText, "input", post(func() { w.InputChanged() }))
	on(doc, engagement.IDCoverImage, "error", post(w.CoverFailed))

	// The submit button posts the form, so enter in the name field and a
	// click both arrive here.
	on(doc, engagement.IDCommentForm, "submit", func(evt js.Value) {
		evt.Call("preventDefault")
		loop.Post(func() { w.SubmitComment(ctx) })
	})

	on(doc, engagement.IDModal, "click", func(evt js.Value) {
		target := engagement.TargetContent
		if evt.Get("target").Equal(evt.Get("currentTarget")) {
			target = engagement.TargetOverlay
		}
		loop.Post(func() { w.OverlayClicked(target) })
	})

	js.Global().Get("document").Call("addEventListener", "keydown", js.FuncOf(func(_ js.Value, args []js.Value) any {
		k := arg(args).Get("key").String()
		loop.Post(func() { w.KeyDown(k) })
		return nil
	}))

	// Another tab saved this work's record.
	js.Global().Call("addEventListener", "storage", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if arg(args).Get("key").String() == key {
			loop.Post(func() { w.Init(ctx) })
		}
		return nil
	}))
}
