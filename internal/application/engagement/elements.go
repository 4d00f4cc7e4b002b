// Package engagement implements the engagement widget: like, share and
// comment controls over a per-work record kept in the visitor's storage.
package engagement

import "github.com/AtRiskMedia/folio-go/internal/presentation/dom"

// Element ids the widget binds to. Every element is optional.
const (
	// IDWidget is the widget root. It carries data-work-id, data-title and
	// data-url for hosts that bind the widget to an existing page.
	IDWidget           = "engagement"
	IDCommentForm      = "comment-form"
	IDLikeButton       = "like-btn"
	IDLikeCount        = "like-count"
	IDCommentButton    = "comment-btn"
	IDCommentCount     = "comment-count"
	IDShareButton      = "share-btn"
	IDShareCount       = "share-count"
	IDModal            = "comment-modal"
	IDModalContent     = "comment-modal-content"
	IDModalClose       = "comment-modal-close"
	IDSubmitButton     = "comment-submit"
	IDCommentText      = "comment-text"
	IDCommentName      = "comment-name"
	IDCharCount        = "char-count"
	IDCommentsList     = "comments-list"
	IDCoverImage       = "cover-image"
	IDCoverPlaceholder = "cover-placeholder"
	IDToastContainer   = "toast-container"
)

// CSS classes toggled by the widget.
const (
	ClassActive = "active"
	ClassPulse  = "pulse"
	ClassToast  = "toast"
	ClassShow   = "show"
	ClassHidden = "hidden"
)

// Elements holds the handles the widget renders into. Nil handles are skipped.
type Elements struct {
	LikeButton       dom.Element
	LikeCount        dom.Element
	CommentButton    dom.Element
	CommentCount     dom.Element
	ShareButton      dom.Element
	ShareCount       dom.Element
	Modal            dom.Element
	ModalContent     dom.Element
	ModalClose       dom.Element
	SubmitButton     dom.Element
	CommentText      dom.Element
	CommentName      dom.Element
	CharCount        dom.Element
	CommentsList     dom.Element
	CoverImage       dom.Element
	CoverPlaceholder dom.Element
	ToastContainer   dom.Element
	Body             dom.Element
}

// LookupElements resolves every widget element in doc by id.
func LookupElements(doc dom.Document) Elements {
	return Elements{
		LikeButton:       doc.ByID(IDLikeButton),
		LikeCount:        doc.ByID(IDLikeCount),
		CommentButton:    doc.ByID(IDCommentButton),
		CommentCount:     doc.ByID(IDCommentCount),
		ShareButton:      doc.ByID(IDShareButton),
		ShareCount:       doc.ByID(IDShareCount),
		Modal:            doc.ByID(IDModal),
		ModalContent:     doc.ByID(IDModalContent),
		ModalClose:       doc.ByID(IDModalClose),
		SubmitButton:     doc.ByID(IDSubmitButton),
		CommentText:      doc.ByID(IDCommentText),
		CommentName:      doc.ByID(IDCommentName),
		CharCount:        doc.ByID(IDCharCount),
		CommentsList:     doc.ByID(IDCommentsList),
		CoverImage:       doc.ByID(IDCoverImage),
		CoverPlaceholder: doc.ByID(IDCoverPlaceholder),
		ToastContainer:   doc.ByID(IDToastContainer),
		Body:             doc.Body(),
	}
}
