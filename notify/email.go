package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
)

const resendEndpoint = "https://api.resend.com/emails"

// EmailChannel sends through the Resend HTTP API. Without an API key it
// only logs what it would have sent.
type EmailChannel struct {
	APIKey   string
	From     string
	Endpoint string
	Client   *http.Client
}

func NewEmailChannel(apiKey, from string) *EmailChannel {
	return &EmailChannel{APIKey: apiKey, From: from, Endpoint: resendEndpoint}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) DryRun() bool { return e.APIKey == "" }

func (e *EmailChannel) Send(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}
	if e.DryRun() {
		log.Printf("[NOTIFY] (dry-run) email to=%s subject=%q", to, msg.Title)
		return nil
	}

	payload := map[string]interface{}{
		"from":    e.From,
		"to":      []string{to},
		"subject": msg.Title,
		"html":    renderEmailHTML(msg),
	}
	headers := map[string]string{"Authorization": "Bearer " + e.APIKey}
	return postJSON(ctx, e.Client, e.Endpoint, headers, payload)
}

func renderEmailHTML(msg Message) string {
	return fmt.Sprintf(`<h2>%s</h2><p>%s</p><p><strong>Service:</strong> %s<br><strong>Status:</strong> %s &rarr; %s<br><strong>Time:</strong> %s</p>`,
		html.EscapeString(msg.Title),
		html.EscapeString(msg.Body),
		html.EscapeString(msg.ServiceName),
		html.EscapeString(string(msg.OldLevel)),
		html.EscapeString(string(msg.NewLevel)),
		msg.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"),
	)
}
