// Package engagement defines the per-work engagement record and the explicit
// state machines that mutate it.
package engagement

import (
	"errors"
	"strings"
	"time"
)

// AnonymousName is used when a commenter leaves the name field blank.
const AnonymousName = "Anonymous"

// TimestampLayout is the ISO-8601 layout used for Comment.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Comment is a single visitor comment. ID is the creation time in
// milliseconds since the epoch.
type Comment struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// CreatedAt parses Timestamp. Comments written by older clients without a
// parseable timestamp fall back to ID.
func (c Comment) CreatedAt() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, c.Timestamp); err == nil {
		return t
	}
	return time.UnixMilli(c.ID).UTC()
}

// Record is the persisted engagement state for one work in one visitor's
// storage. Comments are ordered newest first.
type Record struct {
	Likes     int       `json:"likes"`
	UserLiked bool      `json:"userLiked"`
	Shares    int       `json:"shares"`
	Comments  []Comment `json:"comments"`
}

// NewRecord returns the zero-value record used when nothing is stored yet.
func NewRecord() Record {
	return Record{Comments: []Comment{}}
}

// Normalize repairs values that would violate the record invariants after
// decoding: negative counters are clamped and a nil comment list becomes empty.
func (r Record) Normalize() Record {
	if r.Likes < 0 {
		r.Likes = 0
	}
	if r.Shares < 0 {
		r.Shares = 0
	}
	if r.Comments == nil {
		r.Comments = []Comment{}
	}
	return r
}

// CommentCount is the value displayed on the comment badge.
func (r Record) CommentCount() int {
	return len(r.Comments)
}

// LikeState returns the current state of the like control.
func (r Record) LikeState() LikeState {
	if r.UserLiked {
		return Liked
	}
	return NotLiked
}

// StorageKey returns the fixed storage key for a work.
func StorageKey(workID string) string {
	return "engagement:" + workID
}

// ErrEmptyComment is returned by NewComment when the text is blank.
var ErrEmptyComment = errors.New("comment text is empty")

// NewComment builds a comment created at now. Text is trimmed and required;
// a blank name becomes AnonymousName.
func NewComment(text, name string, now time.Time) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyComment
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = AnonymousName
	}

	now = now.UTC()
	return Comment{
		ID:        now.UnixMilli(),
		Text:      text,
		Name:      name,
		Timestamp: now.Format(TimestampLayout),
	}, nil
}

// AddComment prepends c. When c collides with the newest comment's id (a
// double submit inside the same millisecond) the id is bumped so ids stay
// unique within the record. Identical texts are kept as separate comments.
func (r Record) AddComment(c Comment) Record {
	if len(r.Comments) > 0 && c.ID <= r.Comments[0].ID {
		c.ID = r.Comments[0].ID + 1
	}

	comments := make([]Comment, 0, len(r.Comments)+1)
	comments = append(comments, c)
	comments = append(comments, r.Comments...)
	r.Comments = comments
	return r
}

// IncrementShares records one successful share.
func (r Record) IncrementShares() Record {
	r.Shares++
	return r
}
