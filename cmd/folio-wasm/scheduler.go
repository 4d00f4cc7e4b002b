//go:build js && wasm

package main

import (
	"syscall/js"
	"time"
)

// jsScheduler maps widget timers onto requestAnimationFrame and setTimeout.
type jsScheduler struct {
	loop *eventLoop
}

func (s jsScheduler) NextFrame(fn func()) {
	s.once("requestAnimationFrame", fn)
}

func (s jsScheduler) After(d time.Duration, fn func()) {
	s.once("setTimeout", fn, d.Milliseconds())
}

func (s jsScheduler) once(method string, fn func(), args ...any) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		s.loop.Post(fn)
		return nil
	})
	js.Global().Call(method, append([]any{cb}, args...)...)
}
