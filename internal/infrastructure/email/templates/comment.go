package templates

import (
	"bytes"
	"html/template"
)

// CommentEmailProps is the data of a new-comment notification.
type CommentEmailProps struct {
	WorkTitle string
	WorkURL   string
	Author    string
	Text      string
	Timestamp string
}

var commentTemplate = template.Must(template.New("commentEmail").Parse(`
<p style="margin: 0 0 16px;">New comment on <a href="{{.WorkURL}}">{{.WorkTitle}}</a></p>
<blockquote style="margin: 0 0 16px; padding: 0 0 0 12px; border-left: 3px solid #c9b68a; white-space: pre-wrap;">{{.Text}}</blockquote>
<p style="margin: 0; color: #6b665c; font-size: 14px;">{{.Author}} &middot; {{.Timestamp}}</p>`))

// GetCommentEmailContent renders the notification body. All fields are
// escaped; visitor text is never trusted.
func GetCommentEmailContent(props CommentEmailProps) (template.HTML, error) {
	var buf bytes.Buffer
	if err := commentTemplate.Execute(&buf, props); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
