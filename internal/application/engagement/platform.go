package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrShareAborted is returned by Platform.Share when the user dismisses the
// share sheet.
var ErrShareAborted = errors.New("share aborted")

// ShareData is handed to the native share sheet.
type ShareData struct {
	Title string
	Text  string
	URL   string
}

// Platform exposes the optional capabilities the share control consumes.
// Availability is checked at call time.
type Platform interface {
	CanShare() bool
	Share(ctx context.Context, data ShareData) error
	CanWriteClipboard() bool
	WriteClipboard(ctx context.Context, text string) error
}

// NoPlatform has neither capability.
type NoPlatform struct{}

func (NoPlatform) CanShare() bool { return false }

func (NoPlatform) Share(context.Context, ShareData) error { return errors.New("share unavailable") }

func (NoPlatform) CanWriteClipboard() bool { return false }

func (NoPlatform) WriteClipboard(context.Context, string) error {
	return errors.New("clipboard unavailable")
}

// Outcome is what the browser reports after attempting one capability.
type Outcome string

const (
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeAborted     Outcome = "aborted"
	OutcomeFailed      Outcome = "failed"
)

// ParseOutcome maps a reported value to an Outcome. Unknown or empty values
// are treated as unavailable.
func ParseOutcome(s string) Outcome {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case OutcomeSucceeded, "success", "shared", "written":
		return OutcomeSucceeded
	case OutcomeAborted, "abort", "cancelled", "canceled":
		return OutcomeAborted
	case OutcomeFailed, "error":
		return OutcomeFailed
	default:
		return OutcomeUnavailable
	}
}

// ReportedPlatform replays capability results the browser already observed.
// The server host uses it: the page runs navigator.share and the clipboard
// write itself and posts what happened.
type ReportedPlatform struct {
	Native    Outcome
	Clipboard Outcome
}

func (p ReportedPlatform) CanShare() bool { return p.Native != OutcomeUnavailable && p.Native != "" }

func (p ReportedPlatform) Share(context.Context, ShareData) error {
	switch p.Native {
	case OutcomeSucceeded:
		return nil
	case OutcomeAborted:
		return ErrShareAborted
	default:
		return fmt.Errorf("native share %s", p.Native)
	}
}

func (p ReportedPlatform) CanWriteClipboard() bool {
	return p.Clipboard != OutcomeUnavailable && p.Clipboard != ""
}

func (p ReportedPlatform) WriteClipboard(context.Context, string) error {
	if p.Clipboard == OutcomeSucceeded {
		return nil
	}
	return fmt.Errorf("clipboard write %s", p.Clipboard)
}
