package vacation

import "context"

// StatusNotification is what the owner of a request is told after a
// decision.
type StatusNotification struct {
	RequestID      string
	UserID         string
	FullName       string
	Email          string
	Period         Period
	Status         Status
	ManagerComment string
}

// Notifier delivers decision notifications. Implementations may be slow
// or fail; RequestService logs the error and moves on.
type Notifier interface {
	NotifyStatus(ctx context.Context, n StatusNotification) error
}
