// Package templates provides the notification email markup.
package templates

import (
	"bytes"
	"html/template"
)

// EmailLayoutProps wraps pre-rendered content in the shared frame.
type EmailLayoutProps struct {
	Preheader  string
	Content    template.HTML
	FooterText string
}

var emailLayoutTemplate = template.Must(template.New("emailLayout").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>Folio</title>
  </head>
  <body style="font-family: Georgia, serif; font-size: 16px; line-height: 1.4; background-color: #f6f4ef; margin: 0; padding: 0;">
    <span style="display: none; max-height: 0; overflow: hidden;">{{.Preheader}}</span>
    <div style="max-width: 600px; margin: 0 auto; padding: 24px;">
      <div style="background: #ffffff; border: 1px solid #e7e2d8; border-radius: 12px; padding: 24px;">
        {{.Content}}
      </div>
      <p style="color: #8c877c; font-size: 14px; text-align: center;">{{.FooterText}}</p>
    </div>
  </body>
</html>`))

// GetEmailLayout renders the full email document.
func GetEmailLayout(props EmailLayoutProps) (string, error) {
	if props.FooterText == "" {
		props.FooterText = "Sent by your Folio site."
	}

	var buf bytes.Buffer
	if err := emailLayoutTemplate.Execute(&buf, props); err != nil {
		return "", err
	}
	return buf.String(), nil
}
