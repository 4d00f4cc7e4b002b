// Package email sends owner notifications through Resend.
package email

import (
	"errors"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/email/templates"
)

// ErrNotConfigured is returned by NewService when no API key is set.
var ErrNotConfigured = errors.New("email notifications are not configured")

// CommentNotification describes a stored comment.
type CommentNotification struct {
	WorkID    string
	WorkTitle string
	WorkURL   string
	Author    string
	Text      string
	Timestamp string
}

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendCommentNotification(n CommentNotification) error
}

// Options configures the Resend client.
type Options struct {
	APIKey   string
	To       string
	From     string
	FromName string
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	to        string
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService(opts Options) (Service, error) {
	if opts.APIKey == "" || opts.To == "" {
		return nil, ErrNotConfigured
	}
	if opts.From == "" {
		opts.From = "noreply@folio.local"
	}
	if opts.FromName == "" {
		opts.FromName = "Folio"
	}

	return &ResendClient{
		client:    resend.NewClient(opts.APIKey),
		to:        opts.To,
		fromEmail: opts.From,
		fromName:  opts.FromName,
	}, nil
}

// SendCommentNotification composes and sends the new-comment email.
func (c *ResendClient) SendCommentNotification(n CommentNotification) error {
	params, err := buildCommentEmail(n, c.fromName, c.fromEmail, c.to)
	if err != nil {
		return err
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send comment notification via Resend: %w", err)
	}
	return nil
}

func buildCommentEmail(n CommentNotification, fromName, fromEmail, to string) (*resend.SendEmailRequest, error) {
	content, err := templates.GetCommentEmailContent(templates.CommentEmailProps{
		WorkTitle: n.WorkTitle,
		WorkURL:   n.WorkURL,
		Author:    n.Author,
		Text:      n.Text,
		Timestamp: n.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render comment email: %w", err)
	}

	html, err := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: fmt.Sprintf("%s commented on %s", n.Author, n.WorkTitle),
		Content:   content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render email layout: %w", err)
	}

	return &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", fromName, fromEmail),
		To:      []string{to},
		Subject: "New comment on " + strings.TrimSpace(n.WorkTitle),
		Html:    html,
	}, nil
}
