package contact

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/missionconf/server/internal/email"
	"github.com/missionconf/server/internal/sanitize"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(
		htmltemplate.New("notification.html").
			Funcs(htmltemplate.FuncMap{"multiline": multiline}).
			ParseFS(templateFS, "templates/notification.html"),
	)
	textTemplate = texttemplate.Must(
		texttemplate.New("notification.txt").ParseFS(templateFS, "templates/notification.txt"),
	)
)

// Addressing holds the fixed envelope used for every notification.
type Addressing struct {
	Recipient  string
	FromDomain string
	SiteName   string
}

func (a Addressing) From() string {
	return fmt.Sprintf("%s Contact Form <noreply@%s>", a.SiteName, a.FromDomain)
}

type notificationData struct {
	SiteName  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	SentAt    string
	Message   string
}

// ComposeNotification renders the email sent to the recipient for a stored
// contact message. Replies go straight back to the submitter.
func ComposeNotification(msg Message, addr Addressing) (email.Message, error) {
	data := notificationData{
		SiteName:  addr.SiteName,
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
		Email:     msg.Email,
		Phone:     msg.Phone,
		SentAt:    msg.SentAt.UTC().Format(time.RFC3339),
		Message:   msg.Message,
	}

	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return email.Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return email.Message{}, fmt.Errorf("render text: %w", err)
	}

	return email.Message{
		From:    addr.From(),
		To:      addr.Recipient,
		Subject: fmt.Sprintf("New contact message from %s %s", msg.FirstName, msg.LastName),
		HTML:    html.String(),
		Text:    text.String(),
		ReplyTo: msg.Email,
	}, nil
}

// multiline escapes user text and keeps its line breaks.
func multiline(s string) htmltemplate.HTML {
	return htmltemplate.HTML(sanitize.Lines(s))
}
