package notification

import (
	"context"
	"fmt"
	"strings"

	"calltrack_backend/internal/events"
	userrepo "calltrack_backend/internal/users/repository"
	"calltrack_backend/platform/logger"

	"github.com/google/uuid"
)

// UserDirectory resolves salesperson IDs to addressable users.
type UserDirectory interface {
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]userrepo.User, error)
}

// Subscriber listens for swept follow-ups and mails each affected
// salesperson a summary of what went missed.
type Subscriber struct {
	sender Sender
	users  UserDirectory
	log    *logger.Logger
}

// NewSubscriber creates the missed-followup email subscriber.
func NewSubscriber(sender Sender, users UserDirectory, log *logger.Logger) *Subscriber {
	return &Subscriber{sender: sender, users: users, log: log}
}

// Register attaches the subscriber to the event bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.FollowupsMarkedMissed{}.EventName(), events.HandlerFunc(s.handleMissed))
}

func (s *Subscriber) handleMissed(ctx context.Context, event events.Event) error {
	swept, ok := event.(events.FollowupsMarkedMissed)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if swept.Marked == 0 {
		return nil
	}

	perSalesperson := map[uuid.UUID][]events.MissedRef{}
	for _, ref := range swept.Missed {
		perSalesperson[ref.SalespersonID] = append(perSalesperson[ref.SalespersonID], ref)
	}

	ids := make([]uuid.UUID, 0, len(perSalesperson))
	for id := range perSalesperson {
		ids = append(ids, id)
	}

	users, err := s.users.EmailsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve salesperson emails: %w", err)
	}

	for id, refs := range perSalesperson {
		user, ok := users[id]
		if !ok || !user.IsActive {
			continue
		}

		subject := fmt.Sprintf("%d follow-up(s) marked missed", len(refs))
		if err := s.sender.Send(ctx, user.Email, subject, missedBody(user.FullName, refs)); err != nil {
			s.log.Error("failed to send missed-followup email",
				"salesperson_id", id.String(),
				"error", err.Error(),
			)
		}
	}

	return nil
}

func missedBody(fullName string, refs []events.MissedRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", fullName)
	fmt.Fprintf(&b, "The following follow-ups passed their scheduled date and were marked missed:\n\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "  - followup %s (scheduled %s)\n", ref.FollowupID, ref.ScheduledDate.Format("2006-01-02 15:04"))
	}
	b.WriteString("\nPlease reschedule or close them out.\n")
	return b.String()
}
