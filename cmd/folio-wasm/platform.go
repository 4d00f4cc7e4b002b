//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
)

// browserPlatform uses navigator.share and navigator.clipboard, checking for
// each when it is needed.
type browserPlatform struct{}

func navigator() js.Value { return js.Global().Get("navigator") }

func (browserPlatform) CanShare() bool {
	return navigator().Get("share").Type() == js.TypeFunction
}

func (browserPlatform) Share(ctx context.Context, data engagement.ShareData) error {
	payload := js.Global().Get("Object").New()
	payload.Set("title", data.Title)
	payload.Set("text", data.Text)
	payload.Set("url", data.URL)

	_, err := await(ctx, navigator().Call("share", payload))
	var jsErr jsError
	if errors.As(err, &jsErr) && jsErr.name == "AbortError" {
		return engagement.ErrShareAborted
	}
	return err
}

func (browserPlatform) CanWriteClipboard() bool {
	clip := navigator().Get("clipboard")
	return clip.Truthy() && clip.Get("writeText").Type() == js.TypeFunction
}

func (browserPlatform) WriteClipboard(ctx context.Context, text string) error {
	_, err := await(ctx, navigator().Get("clipboard").Call("writeText", text))
	return err
}

type jsError struct {
	name    string
	message string
}

func (e jsError) Error() string { return fmt.Sprintf("%s: %s", e.name, e.message) }

type settled struct {
	value js.Value
	err   error
}

// await blocks the calling goroutine until promise settles.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	ch := make(chan settled, 1)
	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ch <- settled{value: arg(args)}
		return nil
	})
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		reason := arg(args)
		e := jsError{name: "Error", message: reason.String()}
		if reason.Type() == js.TypeObject {
			e.name = reason.Get("name").String()
			e.message = reason.Get("message").String()
		}
		ch <- settled{err: e}
		return nil
	})
	defer onResolve.Release()
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

func arg(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}
