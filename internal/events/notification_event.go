package events

import (
	"time"

	"github.com/google/uuid"
)

const EmailNotificationTopic = "notifications.email"

type NotificationType string

const NotificationTypeEmail NotificationType = "EMAIL"

// NotificationEvent is the contract consumed by the notification service.
// Field names are camelCase because that service owns the schema.
type NotificationEvent struct {
	Type      NotificationType `json:"type"`
	Recipient Recipient        `json:"recipient"`
	Content   Content          `json:"content"`
	Metadata  Metadata         `json:"metadata"`
}

type Recipient struct {
	Email string `json:"email"`
}

type Content struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	HTML    bool   `json:"html"`
}

type Metadata struct {
	EventID       string    `json:"eventId"`
	SourceService string    `json:"sourceService"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewEmailNotification stamps a fresh event id and the current UTC time.
func NewEmailNotification(sourceService, email, subject, message string, isHTML bool) NotificationEvent {
	return NotificationEvent{
		Type:      NotificationTypeEmail,
		Recipient: Recipient{Email: email},
		Content: Content{
			Subject: subject,
			Message: message,
			HTML:    isHTML,
		},
		Metadata: Metadata{
			EventID:       uuid.NewString(),
			SourceService: sourceService,
			CreatedAt:     time.Now().UTC(),
		},
	}
}
