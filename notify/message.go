// Package notify renders and delivers request status notifications.
package notify

import (
	"fmt"
	"strings"

	"github.com/warp/vacationflow/vacation"
)

// Message is a rendered notification ready for a transport.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

var statusLabels = map[vacation.Status]string{
	vacation.StatusApproved:  "Одобрена",
	vacation.StatusRejected:  "Отклонена",
	vacation.StatusPending:   "На рассмотрении",
	vacation.StatusCancelled: "Отменена",
}

// StatusLabel is the user-facing name of a status.
func StatusLabel(s vacation.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Render builds the plain-text message for n.
func Render(from string, n vacation.StatusNotification) Message {
	label := StatusLabel(n.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "Здравствуйте, %s!\n\n", n.FullName)
	fmt.Fprintf(&b, "Даты отпуска: %s - %s\n", n.Period.Start, n.Period.End)
	fmt.Fprintf(&b, "Статус: %s\n", label)
	if n.ManagerComment != "" {
		fmt.Fprintf(&b, "\nКомментарий руководителя:\n%s\n", n.ManagerComment)
	}
	b.WriteString("\nЭто автоматическое уведомление из системы VacationFlow.\n")

	return Message{
		From:    from,
		To:      n.Email,
		Subject: "Заявка на отпуск " + label,
		Body:    b.String(),
	}
}
