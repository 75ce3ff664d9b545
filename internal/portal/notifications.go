package portal

import (
	"fmt"

	"github.com/eliteadvisers/portal/internal/model"
)

// MaxNotifications is how many derived notifications a dashboard shows.
const MaxNotifications = 5

// DeriveNotifications builds one notification per problem, keeps the last
// MaxNotifications and returns them newest first. A problem with an advisor
// message yields a message notification; every other problem yields a
// status notification.
func DeriveNotifications(problems []model.Problem, advisors []model.Admin) []model.Notification {
	notes := make([]model.Notification, 0, len(problems))
	for _, p := range problems {
		if p.AdminMessage != "" {
			name := p.AssignedAdmin.ResolveName(advisors)
			if name == "" {
				name = "CA"
			}
			notes = append(notes, model.Notification{
				Type: model.NotificationMessage,
				Text: fmt.Sprintf("Message from %s: %s", name, p.AdminMessage),
			})
			continue
		}

		title := p.Title
		if title == "" {
			title = "Untitled"
		}
		status := string(p.Status)
		if status == "" {
			status = string(model.ProblemStatusPending)
		}
		notes = append(notes, model.Notification{
			Type: model.NotificationStatus,
			Text: fmt.Sprintf("Query %q is now %s", title, status),
		})
	}

	if len(notes) > MaxNotifications {
		notes = notes[len(notes)-MaxNotifications:]
	}
	for i, j := 0, len(notes)-1; i < j; i, j = i+1, j-1 {
		notes[i], notes[j] = notes[j], notes[i]
	}
	return notes
}
