//go:build js && wasm

package main

// eventLoop runs widget work on one goroutine. JS callbacks must return
// promptly, so they post here instead of touching the widget directly.
type eventLoop struct {
	tasks chan func()
}

func newEventLoop() *eventLoop {
	return &eventLoop{tasks: make(chan func(), 64)}
}

// Post queues fn. It never blocks the JS caller.
func (l *eventLoop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	default:
		go func() { l.tasks <- fn }()
	}
}

// Run executes tasks forever; the page owns the program's lifetime.
func (l *eventLoop) Run() {
	for fn := range l.tasks {
		fn()
	}
}
