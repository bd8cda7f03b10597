package models

import "time"

const (
	ChannelInApp   = "in_app"
	ChannelEmail   = "email"
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
)

const (
	NotificationStatusChange = "status_change"
	NotificationRecovery     = "recovery"
)

// SeverityFilterAll is the only filter value that receives recovery notifications.
const SeverityFilterAll = "all"

type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Channel   string
	Title     string
	Message   string
	Sent      bool
	Attempts  int
	LastError string
	SentAt    *time.Time
	CreatedAt time.Time
}

type AlertPreference struct {
	UserID         int64
	EmailEnabled   bool
	SlackWebhook   string
	DiscordWebhook string
	SeverityFilter string
	OnlyMonitored  bool
}

// Subscriber is a user monitoring a service joined with their alert
// preference. Preference is nil when the user never saved one.
type Subscriber struct {
	UserID     int64
	Email      string
	Name       string
	Preference *AlertPreference
}
