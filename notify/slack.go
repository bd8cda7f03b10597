package notify

import (
	"context"
	"fmt"
	"net/http"
)

type SlackChannel struct {
	Client *http.Client
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Send(ctx context.Context, webhookURL string, msg Message) error {
	payload := map[string]interface{}{
		"text": fmt.Sprintf("%s %s", levelEmoji(msg.NewLevel), msg.Title),
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*%s*\n%s\n*Status:* `%s` → `%s`", msg.Title, msg.Body, msg.OldLevel, msg.NewLevel),
				},
			},
		},
	}
	return postJSON(ctx, s.Client, webhookURL, nil, payload)
}
