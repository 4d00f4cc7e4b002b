package engagement

import (
	"fmt"
	"html"
	"strings"
	"time"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
)

// EmptyCommentsMessage is rendered when a work has no comments.
const EmptyCommentsMessage = "No comments yet. Be the first to share your thoughts!"

// RelativeTime formats t relative to now for the comment list.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	days := int(diff / (24 * time.Hour))
	hours := int(diff / time.Hour)
	minutes := int(diff / time.Minute)

	switch {
	case days > 7:
		return t.Local().Format("Jan 2, 2006")
	case days >= 1:
		return plural(days, "day") + " ago"
	case hours >= 1:
		return plural(hours, "hour") + " ago"
	case minutes >= 1:
		return plural(minutes, "minute") + " ago"
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// RenderComments returns the comment list markup, newest first. Author names
// and bodies are HTML-escaped.
func RenderComments(comments []entity.Comment, now time.Time) string {
	if len(comments) == 0 {
		return `<p class="no-comments">` + html.EscapeString(EmptyCommentsMessage) + `</p>`
	}

	var b strings.Builder
	for _, c := range comments {
		b.WriteString(`<div class="comment" data-comment-id="`)
		fmt.Fprintf(&b, "%d", c.ID)
		b.WriteString(`"><div class="comment-header"><span class="comment-author">`)
		b.WriteString(html.EscapeString(c.Name))
		b.WriteString(`</span><span class="comment-time">`)
		b.WriteString(html.EscapeString(RelativeTime(c.CreatedAt(), now)))
		b.WriteString(`</span></div><p class="comment-text">`)
		b.WriteString(html.EscapeString(c.Text))
		b.WriteString(`</p></div>`)
	}
	return b.String()
}
