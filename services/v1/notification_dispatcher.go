package v1

import (
	"context"
	"fmt"
	"log"
	"time"

	"statuspulse/models"
	"statuspulse/notify"
	"statuspulse/retry"
)

// StatusChange is what subscribers are told about.
type StatusChange struct {
	ServiceID   int64
	ServiceName string
	OldLevel    models.Level
	NewLevel    models.Level
	Message     string
}

// IsRecovery is a move to operational from anything else.
func (c StatusChange) IsRecovery() bool {
	return c.NewLevel == models.Operational && c.OldLevel != models.Operational
}

type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, change StatusChange)
}

type Channels struct {
	Email   notify.Channel
	Slack   notify.Channel
	Discord notify.Channel
}

// NotificationDispatcher fans a status change out to subscribers.
// Recovery goes only to subscribers filtering on "all"; degradations go
// to every subscriber regardless of filter.
type NotificationDispatcher struct {
	store    NotificationStore
	channels Channels
	policy   retry.Policy
	now      func() time.Time
}

func NewNotificationDispatcher(store NotificationStore, channels Channels, maxAttempts int, backoff time.Duration) *NotificationDispatcher {
	return &NotificationDispatcher{
		store:    store,
		channels: channels,
		policy:   retry.Policy{Attempts: maxAttempts, Backoff: backoff, Jitter: retry.DefaultJitter},
		now:      time.Now,
	}
}

func (d *NotificationDispatcher) NotifyStatusChange(ctx context.Context, change StatusChange) {
	subs, err := d.store.FindSubscribers(ctx, change.ServiceID)
	if err != nil {
		log.Printf("[NOTIFY] Error loading subscribers for %s (ID: %d): %v", change.ServiceName, change.ServiceID, err)
		return
	}

	msg := buildMessage(change, d.now())
	recovery := change.IsRecovery()
	sent := 0

	for _, sub := range subs {
		pref := sub.Preference
		if pref == nil {
			continue
		}
		if recovery && pref.SeverityFilter != models.SeverityFilterAll {
			continue
		}
		d.notifySubscriber(ctx, sub, pref, msg, recovery)
		sent++
	}

	log.Printf("[NOTIFY] %s (ID: %d) %s -> %s notified %d/%d subscriber(s)",
		change.ServiceName, change.ServiceID, change.OldLevel, change.NewLevel, sent, len(subs))
}

func (d *NotificationDispatcher) notifySubscriber(ctx context.Context, sub models.Subscriber, pref *models.AlertPreference, msg notify.Message, recovery bool) {
	kind := models.NotificationStatusChange
	if recovery {
		kind = models.NotificationRecovery
	}
	inApp := &models.Notification{
		UserID:  sub.UserID,
		Type:    kind,
		Channel: models.ChannelInApp,
		Title:   msg.Title,
		Message: msg.Body,
	}
	if err := d.store.CreateNotification(ctx, inApp); err != nil {
		log.Printf("[NOTIFY] Error storing in-app notification for user %d: %v", sub.UserID, err)
	}

	if pref.EmailEnabled && sub.Email != "" {
		d.deliver(ctx, d.channels.Email, sub.Email, sub.UserID, msg)
	}
	if pref.SlackWebhook != "" {
		d.deliver(ctx, d.channels.Slack, pref.SlackWebhook, sub.UserID, msg)
	}
	if pref.DiscordWebhook != "" {
		d.deliver(ctx, d.channels.Discord, pref.DiscordWebhook, sub.UserID, msg)
	}
}

// deliver retries one channel up to the configured attempt cap. A failure
// here never affects other channels or subscribers.
func (d *NotificationDispatcher) deliver(ctx context.Context, ch notify.Channel, target string, userID int64, msg notify.Message) {
	if ch == nil {
		return
	}
	err := retry.Do(ctx, d.policy, func(int) error {
		return ch.Send(ctx, target, msg)
	})
	if err != nil {
		cerr := &notify.ChannelError{Channel: ch.Name(), Err: err}
		log.Printf("[NOTIFY] Abandoning delivery to user %d after %d attempt(s): %v", userID, d.policy.Attempts, cerr)
	}
}

func buildMessage(c StatusChange, at time.Time) notify.Message {
	var title string
	switch {
	case c.IsRecovery():
		title = fmt.Sprintf("%s has recovered", c.ServiceName)
	case c.NewLevel == models.MajorOutage:
		title = fmt.Sprintf("%s is experiencing a major outage", c.ServiceName)
	case c.NewLevel == models.PartialOutage:
		title = fmt.Sprintf("%s is experiencing a partial outage", c.ServiceName)
	case c.NewLevel == models.Degraded:
		title = fmt.Sprintf("%s is degraded", c.ServiceName)
	default:
		title = fmt.Sprintf("%s status changed to %s", c.ServiceName, c.NewLevel)
	}

	body := c.Message
	if body == "" {
		body = fmt.Sprintf("%s changed from %s to %s.", c.ServiceName, c.OldLevel, c.NewLevel)
	}

	return notify.Message{
		ServiceName: c.ServiceName,
		OldLevel:    c.OldLevel,
		NewLevel:    c.NewLevel,
		Title:       title,
		Body:        body,
		Timestamp:   at.UTC(),
	}
}
