package service

import (
	"context"
	"log/slog"

	"github.com/JarviousX/yogitrack-studio-management/internal/metrics"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

// ledgerEvents holds the clamps and skipped attendees raised inside a
// transaction. They are published after commit; a store that retries the
// transaction body starts each attempt with an empty set.
type ledgerEvents struct {
	clamps  []clampEvent
	skipped []string
}

type clampEvent struct {
	op, field string
	attrs     []any
}

type ledgerEventsKey struct{}

func eventsFrom(ctx context.Context) *ledgerEvents {
	ev, _ := ctx.Value(ledgerEventsKey{}).(*ledgerEvents)
	return ev
}

// runInTx wraps store.RunInTx and publishes the ledger events of the
// attempt that committed.
func (s *Service) runInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if eventsFrom(ctx) != nil {
		return s.store.RunInTx(ctx, fn)
	}
	ev := &ledgerEvents{}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		*ev = ledgerEvents{}
		return fn(context.WithValue(ctx, ledgerEventsKey{}, ev), tx)
	})
	if err != nil {
		return err
	}
	for _, c := range ev.clamps {
		s.reportClamp(ctx, c)
	}
	for _, id := range ev.skipped {
		s.reportSkipped(ctx, id)
	}
	return nil
}

// drift records a clamp that changed a ledger value. attrs carry the value
// before and after along with the ids involved.
func (s *Service) drift(ctx context.Context, op, field string, attrs ...any) {
	c := clampEvent{op: op, field: field, attrs: attrs}
	if ev := eventsFrom(ctx); ev != nil {
		ev.clamps = append(ev.clamps, c)
		return
	}
	s.reportClamp(ctx, c)
}

func (s *Service) skipAttendee(ctx context.Context, customerID string) {
	if ev := eventsFrom(ctx); ev != nil {
		ev.skipped = append(ev.skipped, customerID)
		return
	}
	s.reportSkipped(ctx, customerID)
}

func (s *Service) reportClamp(ctx context.Context, c clampEvent) {
	metrics.RecordClamp(c.op, c.field)
	args := append([]any{
		slog.String("operation", c.op),
		slog.String("field", c.field),
	}, c.attrs...)
	s.logger.WarnContext(ctx, "ledger value clamped", args...)
}

func (s *Service) reportSkipped(ctx context.Context, customerID string) {
	metrics.SkippedAttendees.Inc()
	s.logger.WarnContext(ctx, "attendee skipped, customer not found", "customer", customerID)
}
