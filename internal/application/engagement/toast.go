package engagement

import (
	"strconv"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
)

const (
	// ToastDwell is how long a toast stays visible.
	ToastDwell = 3 * time.Second
	// ToastHideTransition is the hide transition before removal.
	ToastHideTransition = 300 * time.Millisecond
	// PulseDuration is how long a control keeps the pulse class.
	PulseDuration = 600 * time.Millisecond
)

// ToastKind selects the toast styling.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toaster shows transient notifications. Toasts stack; nothing is queued or
// de-duplicated.
type Toaster struct {
	doc       dom.Document
	container dom.Element
	scheduler Scheduler
	shown     []dom.Element
}

// NewToaster appends toasts to container, or to the document body when
// container is nil.
func NewToaster(doc dom.Document, container dom.Element, scheduler Scheduler) *Toaster {
	return &Toaster{doc: doc, container: container, scheduler: scheduler}
}

// Show appends a toast, makes it visible on the next frame, hides it after
// ToastDwell and removes it ToastHideTransition later. It returns the toast
// element, or nil when there is nowhere to show it.
func (t *Toaster) Show(message string, kind ToastKind) dom.Element {
	if t == nil || t.doc == nil {
		return nil
	}

	host := t.container
	if host == nil {
		host = t.doc.Body()
	}
	if host == nil {
		return nil
	}

	toast := t.doc.CreateElement("div")
	toast.AddClass(ClassToast, "toast-"+string(kind))
	toast.SetAttr("role", "status")
	toast.SetAttr("data-dwell-ms", strconv.FormatInt(ToastDwell.Milliseconds(), 10))
	toast.SetAttr("data-hide-ms", strconv.FormatInt(ToastHideTransition.Milliseconds(), 10))
	toast.SetText(message)
	host.AppendChild(toast)
	t.shown = append(t.shown, toast)

	t.scheduler.NextFrame(func() {
		toast.AddClass(ClassShow)
	})
	t.scheduler.After(ToastDwell, func() {
		toast.RemoveClass(ClassShow)
		t.scheduler.After(ToastHideTransition, func() {
			toast.Remove()
		})
	})

	return toast
}

// Shown returns every toast created so far, including removed ones.
func (t *Toaster) Shown() []dom.Element {
	if t == nil {
		return nil
	}
	return t.shown
}

// pulse adds the pulse class to el and removes it after PulseDuration.
func pulse(el dom.Element, scheduler Scheduler) {
	if el == nil {
		return
	}
	el.RemoveClass(ClassPulse)
	el.AddClass(ClassPulse)
	scheduler.After(PulseDuration, func() {
		el.RemoveClass(ClassPulse)
	})
}
