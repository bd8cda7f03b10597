package notify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"statuspulse/models"
)

type DiscordChannel struct {
	Client *http.Client
}

func (d *DiscordChannel) Name() string { return "discord" }

func (d *DiscordChannel) Send(ctx context.Context, webhookURL string, msg Message) error {
	payload := map[string]interface{}{
		"username": "StatusPulse",
		"embeds": []map[string]interface{}{
			{
				"title":       msg.Title,
				"description": msg.Body,
				"color":       levelColor(msg.NewLevel),
				"fields": []map[string]interface{}{
					{"name": "Service", "value": msg.ServiceName, "inline": true},
					{"name": "Status", "value": strings.ToUpper(string(msg.NewLevel)), "inline": true},
					{"name": "Previous", "value": string(msg.OldLevel), "inline": true},
				},
				"timestamp": msg.Timestamp.UTC().Format(time.RFC3339),
				"footer":    map[string]string{"text": "StatusPulse"},
			},
		},
	}
	return postJSON(ctx, d.Client, webhookURL, nil, payload)
}

func levelColor(l models.Level) int {
	switch l {
	case models.Operational:
		return 0x22c55e
	case models.Degraded:
		return 0xeab308
	case models.PartialOutage:
		return 0xf97316
	case models.MajorOutage:
		return 0xef4444
	default:
		return 0x6b7280
	}
}

func levelEmoji(l models.Level) string {
	switch l {
	case models.Operational:
		return "🟢"
	case models.Degraded:
		return "🟡"
	case models.PartialOutage:
		return "🟠"
	case models.MajorOutage:
		return "🔴"
	default:
		return "⚪"
	}
}
