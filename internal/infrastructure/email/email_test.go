package email

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
)

type recordingService struct {
	mu   sync.Mutex
	sent []CommentNotification
	err  error
}

func (s *recordingService) SendCommentNotification(n CommentNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func TestNewServiceRequiresConfiguration(t *testing.T) {
	_, err := NewService(Options{APIKey: "re_123"})
	require.ErrorIs(t, err, ErrNotConfigured)

	svc, err := NewService(Options{APIKey: "re_123", To: "me@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildCommentEmailEscapesVisitorText(t *testing.T) {
	req, err := buildCommentEmail(CommentNotification{
		WorkTitle: "Low Tide",
		WorkURL:   "https://folio.example/works/low-tide",
		Author:    "<b>Kit</b>",
		Text:      `<script>alert("x")</script>`,
		Timestamp: "2025-06-01T12:00:00.000Z",
	}, "Folio", "noreply@folio.example", "me@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Folio <noreply@folio.example>", req.From)
	assert.Equal(t, []string{"me@example.com"}, req.To)
	assert.Equal(t, "New comment on Low Tide", req.Subject)
	assert.NotContains(t, req.Html, "<script>")
	assert.NotContains(t, req.Html, "<b>Kit</b>")
	assert.Contains(t, req.Html, `href="https://folio.example/works/low-tide"`)
}

func TestNotifier(t *testing.T) {
	svc := &recordingService{}
	n := NewNotifier(svc, func(id string) string { return "https://folio.example/w/" + id }, nil)

	n.CommentStored("tide", "Low Tide", entity.Comment{ID: 1, Name: "Kit", Text: "lovely", Timestamp: "t"})
	n.Wait()

	require.Len(t, svc.sent, 1)
	assert.Equal(t, CommentNotification{
		WorkID: "tide", WorkTitle: "Low Tide", WorkURL: "https://folio.example/w/tide",
		Author: "Kit", Text: "lovely", Timestamp: "t",
	}, svc.sent[0])

	t.Run("failures are swallowed", func(t *testing.T) {
		svc.err = errors.New("boom")
		assert.NotPanics(t, func() {
			n.CommentStored("tide", "Low Tide", entity.Comment{})
			n.Wait()
		})
	})

	t.Run("nil notifier is a no-op", func(t *testing.T) {
		var nilNotifier *Notifier
		nilNotifier.CommentStored("a", "b", entity.Comment{})
		nilNotifier.Wait()
	})
}
