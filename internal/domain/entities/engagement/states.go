package engagement

// LikeState is the two-state like control.
type LikeState int

const (
	NotLiked LikeState = iota
	Liked
)

func (s LikeState) String() string {
	if s == Liked {
		return "liked"
	}
	return "not-liked"
}

// LikeTransition describes what a toggle did.
type LikeTransition struct {
	From  LikeState
	To    LikeState
	Pulse bool
}

// ToggleLike applies the like state machine to r.
//
//	not-liked -> liked:     likes+1, pulse
//	liked     -> not-liked: likes-1 floored at 0, no pulse
func ToggleLike(r Record) (Record, LikeTransition) {
	from := r.LikeState()

	switch from {
	case NotLiked:
		r.Likes++
		r.UserLiked = true
		return r, LikeTransition{From: NotLiked, To: Liked, Pulse: true}
	default:
		if r.Likes > 0 {
			r.Likes--
		}
		r.UserLiked = false
		return r, LikeTransition{From: Liked, To: NotLiked}
	}
}

// ModalState is the comment modal state.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpen
)

func (s ModalState) String() string {
	if s == ModalOpen {
		return "open"
	}
	return "closed"
}

// ParseModalState reads the state a page reports for its modal. Anything other
// than "open" is closed.
func ParseModalState(s string) ModalState {
	if s == "open" {
		return ModalOpen
	}
	return ModalClosed
}

// ModalEvent is an input to the comment modal state machine.
type ModalEvent int

const (
	EventOpen ModalEvent = iota
	EventClose
	EventSubmit
)

func (e ModalEvent) String() string {
	switch e {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// ModalTransition returns the next state for event e, and false when e is not
// accepted in state s. A submit keeps the modal open; the caller closes it
// only after a valid comment has been stored.
func ModalTransition(s ModalState, e ModalEvent) (ModalState, bool) {
	switch s {
	case ModalClosed:
		if e == EventOpen {
			return ModalOpen, true
		}
	case ModalOpen:
		switch e {
		case EventClose:
			return ModalClosed, true
		case EventSubmit:
			return ModalOpen, true
		}
	}
	return s, false
}
