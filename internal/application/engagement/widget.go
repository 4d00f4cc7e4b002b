package engagement

import (
	"context"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
)

// User-facing messages.
const (
	MsgLinkCopied    = "Link copied to clipboard!"
	MsgCopyManually  = "Copy this link: "
	MsgEmptyComment  = "Please enter your thoughts"
	MsgCommentThanks = "Thank you for your comment!"
	DefaultShareText = "I thought you might enjoy this piece."
)

const scrollLockOverflow = "hidden"

// State is the widget's application state: the record it last loaded or
// saved and the modal state.
type State struct {
	Record entity.Record
	Modal  entity.ModalState
}

// ClickTarget identifies what an overlay click landed on.
type ClickTarget int

const (
	TargetOverlay ClickTarget = iota
	TargetContent
)

// CommentHook is told about each stored comment.
type CommentHook func(workID, workTitle string, c entity.Comment)

// Options configures a Widget. Store, Scheduler and Document are required.
type Options struct {
	WorkID    string
	Title     string
	URL       string
	ShareText string
	Store     *Store
	Document  dom.Document
	Elements  Elements
	Platform  Platform
	Scheduler Scheduler
	Clock     func() time.Time
	Logger    *logging.ChanneledLogger
	OnComment CommentHook
	// Modal is the state the modal starts in. Server-rendered pages report it
	// with each request.
	Modal entity.ModalState
}

// Widget is the engagement widget for one work on one page. It is driven by
// UI events from a single goroutine and is not safe for concurrent use.
type Widget struct {
	opts    Options
	els     Elements
	state   State
	toaster *Toaster
	logger  *logging.ChanneledLogger
}

// New creates a widget. Call Init before dispatching events.
func New(opts Options) *Widget {
	if opts.Platform == nil {
		opts.Platform = NoPlatform{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	if opts.ShareText == "" {
		opts.ShareText = DefaultShareText
	}

	return &Widget{
		opts:    opts,
		els:     opts.Elements,
		state:   State{Record: entity.NewRecord(), Modal: opts.Modal},
		toaster: NewToaster(opts.Document, opts.Elements.ToastContainer, opts.Scheduler),
		logger:  opts.Logger,
	}
}

// State returns a copy of the current state.
func (w *Widget) State() State {
	s := w.state
	s.Record.Comments = append([]entity.Comment(nil), w.state.Record.Comments...)
	return s
}

// Toaster exposes the toast host, mainly so hosts can serialize new toasts.
func (w *Widget) Toaster() *Toaster { return w.toaster }

// Init loads the record and renders every control.
func (w *Widget) Init(ctx context.Context) {
	w.state.Record = w.opts.Store.Load(ctx)
	w.renderCounts()
	w.renderComments()
	w.renderModal()
	w.initCover()
}

// ToggleLike flips the like state, persists, and re-renders.
func (w *Widget) ToggleLike(ctx context.Context) {
	next, transition := entity.ToggleLike(w.state.Record)
	w.state.Record = next
	w.persist(ctx)
	w.renderLike()

	if transition.Pulse {
		pulse(w.els.LikeButton, w.opts.Scheduler)
	}

	w.logger.Engagement().Debug("Like toggled",
		"workId", w.opts.WorkID, "from", transition.From.String(), "to", transition.To.String(), "likes", next.Likes)
}

// Share runs the share cascade: native sheet, then clipboard, then a toast
// carrying the raw URL.
func (w *Widget) Share(ctx context.Context) {
	p := w.opts.Platform
	data := ShareData{Title: w.opts.Title, Text: w.opts.ShareText, URL: w.opts.URL}

	if p.CanShare() {
		err := p.Share(ctx, data)
		switch {
		case err == nil:
			w.recordShare(ctx)
			w.logger.Engagement().Debug("Shared via native sheet", "workId", w.opts.WorkID)
			return
		case errors.Is(err, ErrShareAborted):
			return
		default:
			w.logger.Engagement().Debug("Native share failed, falling back", "workId", w.opts.WorkID, "error", err.Error())
		}
	}

	if p.CanWriteClipboard() {
		err := p.WriteClipboard(ctx, w.opts.URL)
		if err == nil {
			w.toaster.Show(MsgLinkCopied, ToastSuccess)
			w.recordShare(ctx)
			return
		}
		w.logger.Engagement().Debug("Clipboard write failed", "workId", w.opts.WorkID, "error", err.Error())
	}

	w.toaster.Show(MsgCopyManually+w.opts.URL, ToastInfo)
}

func (w *Widget) recordShare(ctx context.Context) {
	w.state.Record = w.state.Record.IncrementShares()
	w.persist(ctx)
	w.renderShares()
	pulse(w.els.ShareButton, w.opts.Scheduler)
}

// OpenModal opens the comment modal. It reports false when already open.
func (w *Widget) OpenModal() bool {
	next, ok := entity.ModalTransition(w.state.Modal, entity.EventOpen)
	if !ok {
		return false
	}
	w.state.Modal = next
	w.renderModal()

	if w.els.Body != nil {
		w.els.Body.SetStyle("overflow", scrollLockOverflow)
	}
	if w.els.CommentText != nil {
		w.els.CommentText.Focus()
	}
	return true
}

// CloseModal closes the modal, clears both inputs, resets the counter and
// restores page scroll. It reports false when already closed.
func (w *Widget) CloseModal() bool {
	next, ok := entity.ModalTransition(w.state.Modal, entity.EventClose)
	if !ok {
		return false
	}
	w.state.Modal = next
	w.renderModal()

	if w.els.CommentText != nil {
		w.els.CommentText.SetValue("")
	}
	if w.els.CommentName != nil {
		w.els.CommentName.SetValue("")
	}
	if w.els.CharCount != nil {
		w.els.CharCount.SetText("0")
	}
	if w.els.Body != nil {
		w.els.Body.SetStyle("overflow", "")
	}
	return true
}

// OverlayClicked closes the modal only when the click landed on the overlay
// itself; clicks inside the content do not propagate.
func (w *Widget) OverlayClicked(target ClickTarget) bool {
	if target != TargetOverlay {
		return false
	}
	return w.CloseModal()
}

// KeyDown handles document key presses. Escape closes an open modal.
func (w *Widget) KeyDown(key string) bool {
	if key == "Escape" && w.state.Modal == entity.ModalOpen {
		return w.CloseModal()
	}
	return false
}

// InputChanged refreshes the character counter from the text input.
func (w *Widget) InputChanged() int {
	if w.els.CommentText == nil {
		return 0
	}
	n := utf8.RuneCountInString(w.els.CommentText.Value())
	if w.els.CharCount != nil {
		w.els.CharCount.SetText(strconv.Itoa(n))
	}
	return n
}

// SubmitComment validates and stores the comment in the text and name inputs.
// It reports whether a comment was stored.
func (w *Widget) SubmitComment(ctx context.Context) bool {
	if _, ok := entity.ModalTransition(w.state.Modal, entity.EventSubmit); !ok {
		return false
	}

	var text, name string
	if w.els.CommentText != nil {
		text = w.els.CommentText.Value()
	}
	if w.els.CommentName != nil {
		name = w.els.CommentName.Value()
	}

	comment, err := entity.NewComment(text, name, w.opts.Clock())
	if err != nil {
		w.toaster.Show(MsgEmptyComment, ToastError)
		return false
	}

	w.state.Record = w.state.Record.AddComment(comment)
	w.persist(ctx)
	w.renderComments()
	w.renderCommentCount()
	w.CloseModal()
	w.toaster.Show(MsgCommentThanks, ToastSuccess)

	w.logger.Engagement().Info("Comment stored",
		"workId", w.opts.WorkID, "commentId", w.state.Record.Comments[0].ID, "comments", w.state.Record.CommentCount())

	if w.opts.OnComment != nil {
		w.opts.OnComment(w.opts.WorkID, w.opts.Title, w.state.Record.Comments[0])
	}
	return true
}

// CoverFailed swaps the cover image for its placeholder.
func (w *Widget) CoverFailed() {
	if w.els.CoverImage != nil {
		w.els.CoverImage.SetStyle("display", "none")
	}
	if w.els.CoverPlaceholder != nil {
		w.els.CoverPlaceholder.SetStyle("display", "flex")
	}
}

func (w *Widget) initCover() {
	if w.els.CoverImage == nil {
		if w.els.CoverPlaceholder != nil {
			w.els.CoverPlaceholder.SetStyle("display", "flex")
		}
		return
	}
	if w.els.CoverImage.Attr("src") == "" {
		w.CoverFailed()
		return
	}
	if w.els.CoverPlaceholder != nil {
		w.els.CoverPlaceholder.SetStyle("display", "none")
	}
}

// persist saves the record. Failures are already logged by the store and are
// not surfaced: the in-memory record carries the session.
func (w *Widget) persist(ctx context.Context) {
	_ = w.opts.Store.Save(ctx, w.state.Record)
}

func (w *Widget) renderCounts() {
	w.renderLike()
	w.renderShares()
	w.renderCommentCount()
}

func (w *Widget) renderLike() {
	if w.els.LikeCount != nil {
		w.els.LikeCount.SetText(strconv.Itoa(w.state.Record.Likes))
	}
	if w.els.LikeButton != nil {
		if w.state.Record.UserLiked {
			w.els.LikeButton.AddClass(ClassActive)
			w.els.LikeButton.SetAttr("aria-pressed", "true")
		} else {
			w.els.LikeButton.RemoveClass(ClassActive)
			w.els.LikeButton.SetAttr("aria-pressed", "false")
		}
	}
}

func (w *Widget) renderShares() {
	if w.els.ShareCount != nil {
		w.els.ShareCount.SetText(strconv.Itoa(w.state.Record.Shares))
	}
}

func (w *Widget) renderCommentCount() {
	if w.els.CommentCount != nil {
		w.els.CommentCount.SetText(strconv.Itoa(w.state.Record.CommentCount()))
	}
}

func (w *Widget) renderComments() {
	if w.els.CommentsList != nil {
		w.els.CommentsList.SetHTML(RenderComments(w.state.Record.Comments, w.opts.Clock()))
	}
}

func (w *Widget) renderModal() {
	if w.els.Modal == nil {
		return
	}
	if w.state.Modal == entity.ModalOpen {
		w.els.Modal.AddClass(ClassActive)
		w.els.Modal.SetAttr("aria-hidden", "false")
	} else {
		w.els.Modal.RemoveClass(ClassActive)
		w.els.Modal.SetAttr("aria-hidden", "true")
	}
}
