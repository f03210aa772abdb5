package ports

import "context"

// Notification is a single outbound message (email in this deployment).
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Notifier is a fire-and-forget sink for outbound notifications. Callers
// must not depend on delivery; a nil return only means the message was
// accepted.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
