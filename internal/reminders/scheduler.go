package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Subscribers interface {
	ReminderSubscribers(ctx context.Context) ([]int64, error)
}

type Notifier interface {
	SendReminder(ctx context.Context, userID int64) error
}

// NextRun returns the first moment strictly after now at hour:00 in loc.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// Scheduler sends the daily mood check-in to every subscribed user.
type Scheduler struct {
	subscribers Subscribers
	notifier    Notifier
	hour        int
	loc         *time.Location
	now         func() time.Time
	after       func(time.Duration) <-chan time.Time
}

func NewScheduler(subscribers Subscribers, notifier Notifier, hour int, loc *time.Location) *Scheduler {
	return &Scheduler{
		subscribers: subscribers,
		notifier:    notifier,
		hour:        hour,
		loc:         loc,
		now:         time.Now,
		after:       time.After,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := NextRun(s.now(), s.hour, s.loc)
		slog.Info("[Reminders] Next reminder scheduled",
			slog.Time("at", next))

		select {
		case <-ctx.Done():
			slog.Info("[Reminders] Scheduler stopped")
			return
		case <-s.after(next.Sub(s.now())):
		}

		sent, err := s.SendAll(ctx)
		if err != nil {
			slog.Error("[Reminders] Reminder run failed",
				slog.String("error", err.Error()))
			continue
		}
		slog.Info("[Reminders] Reminders sent",
			slog.Int("count", sent))
	}
}

// SendAll notifies every subscriber. A failure for one user is logged and
// does not stop the others.
func (s *Scheduler) SendAll(ctx context.Context) (int, error) {
	ids, err := s.subscribers.ReminderSubscribers(ctx)
	if err != nil {
		return 0, fmt.Errorf("[Reminders] failed to list subscribers: %w", err)
	}

	sent := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := s.notifier.SendReminder(ctx, id); err != nil {
			slog.Warn("[Reminders] Failed to send reminder",
				slog.Int64("user_id", id),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	return sent, nil
}
