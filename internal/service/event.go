package service

import (
	"context"
	"fmt"
	"time"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/repo"
)

// dateLayout is the ISO 8601 calendar date format used on the wire.
const dateLayout = "2006-01-02"

// ListOptions carries the optional filters for a plain event listing.
type ListOptions struct {
	SortByPriority bool
	// DueSoonDays, when non-nil, restricts results to events whose end
	// date falls within [today, today+N] and sorts by end date first.
	DueSoonDays *int
}

// EventService implements business logic for Event operations: filter
// composition, tag-set replacement, and attaching tag sets to results.
// Writes that touch both the event row and its associations run inside a
// single transaction via the store.
type EventService struct {
	store Storer
	now   func() time.Time
}

// NewEventService constructs an EventService backed by the provided store.
func NewEventService(store Storer) *EventService {
	return NewEventServiceWithClock(store, time.Now)
}

// NewEventServiceWithClock injects the clock used by due-soon filtering,
// so tests can fix "today".
func NewEventServiceWithClock(store Storer, now func() time.Time) *EventService {
	return &EventService{store: store, now: now}
}

// Get returns a single event with its tag set.
// Returns domain.ErrNotFound if the id does not exist.
func (s *EventService) Get(ctx context.Context, id int64) (domain.EventWithTags, error) {
	r := s.store.Repos()

	ev, err := r.Events.GetByID(ctx, id)
	if err != nil {
		return domain.EventWithTags{}, fmt.Errorf("service.EventService.Get: %w", err)
	}
	tags, err := r.Tags.ListByEvent(ctx, id)
	if err != nil {
		return domain.EventWithTags{}, fmt.Errorf("service.EventService.Get: %w", err)
	}
	return domain.EventWithTags{Event: ev, Tags: tags}, nil
}

// List returns events matching the options, each with its tag set.
// The due-soon window is computed from the injected clock: today through
// today+N calendar days, inclusive on both ends.
func (s *EventService) List(ctx context.Context, opts ListOptions) ([]domain.EventWithTags, error) {
	filter := domain.EventFilter{SortByPriority: opts.SortByPriority}
	if opts.DueSoonDays != nil {
		today := s.today()
		until := today.AddDate(0, 0, *opts.DueSoonDays)
		filter.DueStart = &today
		filter.DueEnd = &until
	}

	r := s.store.Repos()
	events, err := r.Events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.List: %w", err)
	}
	result, err := attachTags(ctx, r.Tags, events)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.List: %w", err)
	}
	return result, nil
}

// ListByDateRange returns events whose interval overlaps [start, end],
// each with its tag set. Both bounds are required ISO 8601 dates.
// Returns domain.ErrValidation on missing or malformed input.
func (s *EventService) ListByDateRange(ctx context.Context, start, end string) ([]domain.EventWithTags, error) {
	startDate, err := parseDate("start_date", start)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("end_date", end)
	if err != nil {
		return nil, err
	}

	r := s.store.Repos()
	events, err := r.Events.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.ListByDateRange: %w", err)
	}
	result, err := attachTags(ctx, r.Tags, events)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.ListByDateRange: %w", err)
	}
	return result, nil
}

// Create validates and persists an event together with its tag set in one
// transaction. A tag id that does not exist fails the whole operation —
// no event row survives a bad association.
// Returns domain.ErrValidation on invalid input, domain.ErrStorage on
// association failure.
func (s *EventService) Create(ctx context.Context, ev domain.Event, tagIDs []int64) (domain.EventWithTags, error) {
	if err := validateEvent(ev); err != nil {
		return domain.EventWithTags{}, err
	}

	var created domain.EventWithTags
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		result, err := r.Events.Create(ctx, ev)
		if err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := r.Tags.ReplaceForEvent(ctx, result.ID, tagIDs); err != nil {
				return err
			}
		}
		tags, err := r.Tags.ListByEvent(ctx, result.ID)
		if err != nil {
			return err
		}
		created = domain.EventWithTags{Event: result, Tags: tags}
		return nil
	})
	if err != nil {
		return domain.EventWithTags{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	return created, nil
}

// Update applies a sparse patch and, when the patch carries a tag set,
// replaces the event's associations — all in one transaction.
// A patch that modifies nothing still succeeds if the event exists.
// Returns domain.ErrNotFound if the id does not exist.
func (s *EventService) Update(ctx context.Context, id int64, patch domain.EventPatch) (domain.EventWithTags, error) {
	if err := validatePatch(patch); err != nil {
		return domain.EventWithTags{}, err
	}

	var updated domain.EventWithTags
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		if err := r.Events.Update(ctx, id, patch); err != nil {
			return err
		}
		if patch.TagIDs != nil {
			if err := r.Tags.ReplaceForEvent(ctx, id, *patch.TagIDs); err != nil {
				return err
			}
		}
		ev, err := r.Events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		tags, err := r.Tags.ListByEvent(ctx, id)
		if err != nil {
			return err
		}
		updated = domain.EventWithTags{Event: ev, Tags: tags}
		return nil
	})
	if err != nil {
		return domain.EventWithTags{}, fmt.Errorf("service.EventService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes an event; its associations cascade in the same statement.
// Returns domain.ErrNotFound if the id does not exist.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Repos().Events.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.EventService.Delete: %w", err)
	}
	return nil
}

// ToggleCompleted flips the completed flag and returns the new value.
// Returns domain.ErrNotFound if the id does not exist.
func (s *EventService) ToggleCompleted(ctx context.Context, id int64) (bool, error) {
	completed, err := s.store.Repos().Events.ToggleCompleted(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service.EventService.ToggleCompleted: %w", err)
	}
	return completed, nil
}

// today returns the clock's current calendar day at UTC midnight, matching
// how DATE columns compare.
func (s *EventService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// attachTags enriches events with their tag sets via one batched lookup.
// Every result carries a non-nil Tags slice ordered by tag id ascending.
func attachTags(ctx context.Context, tags repo.TagRepo, events []domain.Event) ([]domain.EventWithTags, error) {
	ids := make([]int64, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	byEvent, err := tags.ListByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.EventWithTags, len(events))
	for i, ev := range events {
		t := byEvent[ev.ID]
		if t == nil {
			t = []domain.Tag{}
		}
		result[i] = domain.EventWithTags{Event: ev, Tags: t}
	}
	return result, nil
}

// validateEvent enforces the rules for a full event write.
func validateEvent(ev domain.Event) error {
	if ev.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if ev.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}
	return nil
}

// validatePatch rejects patches that would null out required fields.
func validatePatch(p domain.EventPatch) error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
	}
	if p.StartDate != nil && p.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date must be a valid date", domain.ErrValidation)
	}
	return nil
}

// parseDate parses an ISO 8601 calendar date, reporting the field name in
// the validation error.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", domain.ErrValidation, field)
	}
	return t, nil
}
