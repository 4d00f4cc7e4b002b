package email

import (
	"sync"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

// Notifier sends comment notifications in the background. Failures are
// logged only; the visitor never waits on email.
type Notifier struct {
	service Service
	urlFor  func(workID string) string
	logger  *logging.ChanneledLogger
	wg      sync.WaitGroup
}

// NewNotifier wraps service. urlFor maps a work id to its public URL.
func NewNotifier(service Service, urlFor func(workID string) string, logger *logging.ChanneledLogger) *Notifier {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Notifier{service: service, urlFor: urlFor, logger: logger}
}

// CommentStored matches the widget's comment hook.
func (n *Notifier) CommentStored(workID, workTitle string, c entity.Comment) {
	if n == nil || n.service == nil {
		return
	}

	msg := CommentNotification{
		WorkID:    workID,
		WorkTitle: workTitle,
		Author:    c.Name,
		Text:      c.Text,
		Timestamp: c.Timestamp,
	}
	if n.urlFor != nil {
		msg.WorkURL = n.urlFor(workID)
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.service.SendCommentNotification(msg); err != nil {
			n.logger.Notify().Error("Comment notification failed", "workId", workID, "error", err.Error())
			return
		}
		n.logger.Notify().Info("Comment notification sent", "workId", workID)
	}()
}

// Wait blocks until in-flight notifications finish.
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}
