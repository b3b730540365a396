package notify

import (
	"context"
	"log"

	"github.com/warp/vacationflow/vacation"
)

// DefaultSender is used when no sender address is configured.
const DefaultSender = "noreply@vacationflow.com"

// LogNotifier renders each notification and writes it to a logger
// instead of sending it.
type LogNotifier struct {
	Sender string
	Logger *log.Logger
}

var _ vacation.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(sender string) *LogNotifier {
	if sender == "" {
		sender = DefaultSender
	}
	return &LogNotifier{Sender: sender, Logger: log.Default()}
}

func (l *LogNotifier) NotifyStatus(_ context.Context, n vacation.StatusNotification) error {
	if n.Email == "" {
		l.Logger.Printf("[Notify] request %s: user %s has no email, skipping", n.RequestID, n.UserID)
		return nil
	}
	msg := Render(l.Sender, n)
	l.Logger.Printf("[Notify] to=%s from=%s subject=%q request=%s", msg.To, msg.From, msg.Subject, n.RequestID)
	return nil
}
