package notification

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

//go:embed templates/notification.html
var notificationHTML string

var notificationTemplate = template.Must(template.New("notification").Parse(notificationHTML))

// TemplateData fills the notification email.
type TemplateData struct {
	Username string
	Message  string
	Header   string
}

// Render renders the notification email body.
func Render(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render notification template: %w", err)
	}
	return buf.String(), nil
}
