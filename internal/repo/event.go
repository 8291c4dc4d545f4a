package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/opensw/calendar-api/internal/domain"
)

// EventRepo defines the persistence operations for Events.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type EventRepo interface {
	// Create inserts a new event and returns the persisted record with its
	// generated id.
	Create(ctx context.Context, ev domain.Event) (domain.Event, error)

	// GetByID retrieves a single event by primary key.
	// Returns domain.ErrNotFound if no event with that id exists.
	GetByID(ctx context.Context, id int64) (domain.Event, error)

	// List returns events matching the filter. With a due window set, only
	// events whose end_date falls inside [DueStart, DueEnd] are returned
	// (events without an end_date never match) and end_date ascending is
	// the primary sort key. SortByPriority appends priority ascending.
	// With neither set, storage order applies.
	List(ctx context.Context, f domain.EventFilter) ([]domain.Event, error)

	// ListByDateRange returns events whose interval overlaps [start, end]:
	// start_date <= end AND end_date >= start. Events without an end_date
	// never match. Ordered by start_date ascending, then priority ascending.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]domain.Event, error)

	// Update applies a sparse patch: only non-nil patch fields are written,
	// all in one statement. A patch with no fields set degrades to an
	// existence check. Returns domain.ErrNotFound if the id does not exist.
	Update(ctx context.Context, id int64, p domain.EventPatch) error

	// Delete removes an event by primary key; its associations cascade.
	// Returns domain.ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, id int64) error

	// ToggleCompleted flips the completed flag in a single statement and
	// returns the new value. Returns domain.ErrNotFound if the id does
	// not exist.
	ToggleCompleted(ctx context.Context, id int64) (bool, error)

	// CountMonth reports total and completed event counts for the calendar
	// month containing the events' start_date.
	CountMonth(ctx context.Context, year int, month time.Month) (domain.MonthlyProgress, error)
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

const eventColumns = `id, title, description, start_date, end_date, priority, recurrence, completed`

func (r *pgEventRepo) Create(ctx context.Context, ev domain.Event) (domain.Event, error) {
	const q = `
		INSERT INTO events (title, description, start_date, end_date, priority, recurrence, completed)
		VALUES (@title, @description, @start_date, @end_date, @priority, @recurrence, @completed)
		RETURNING ` + eventColumns

	args := pgx.NamedArgs{
		"title":       ev.Title,
		"description": ev.Description,
		"start_date":  ev.StartDate,
		"end_date":    ev.EndDate, // nil becomes NULL
		"priority":    ev.Priority,
		"recurrence":  ev.Recurrence,
		"completed":   ev.Completed,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", storageErr(err))
	}
	return result, nil
}

func (r *pgEventRepo) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	const q = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	return result, nil
}

// List builds the WHERE/ORDER BY clauses conditionally from the filter.
// A NULL end_date fails the BETWEEN comparison, so open-ended events are
// excluded from due-window queries.
func (r *pgEventRepo) List(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + eventColumns + ` FROM events`)
	args := pgx.NamedArgs{}

	dueWindow := f.DueStart != nil && f.DueEnd != nil
	if dueWindow {
		b.WriteString(` WHERE end_date BETWEEN @due_start AND @due_end`)
		args["due_start"] = *f.DueStart
		args["due_end"] = *f.DueEnd
	}

	var order []string
	if dueWindow {
		order = append(order, "end_date")
	}
	if f.SortByPriority {
		order = append(order, "priority")
	}
	if len(order) > 0 {
		b.WriteString(` ORDER BY ` + strings.Join(order, ", "))
	}

	return r.queryEvents(ctx, "List", b.String(), args)
}

func (r *pgEventRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	const q = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE start_date <= @range_end
		  AND end_date >= @range_start
		ORDER BY start_date, priority`

	args := pgx.NamedArgs{"range_start": start, "range_end": end}
	return r.queryEvents(ctx, "ListByDateRange", q, args)
}

// Update writes only the fields present in the patch. The SET list is
// assembled from the statically enumerated patch fields, never from
// caller-supplied keys.
func (r *pgEventRepo) Update(ctx context.Context, id int64, p domain.EventPatch) error {
	if p.IsZero() {
		// Nothing to write; still distinguish "no-op" from "no such event".
		return r.exists(ctx, id)
	}

	sets := make([]string, 0, 7)
	args := pgx.NamedArgs{"id": id}

	if p.Title != nil {
		sets = append(sets, "title = @title")
		args["title"] = *p.Title
	}
	if p.Description != nil {
		sets = append(sets, "description = @description")
		args["description"] = *p.Description
	}
	if p.StartDate != nil {
		sets = append(sets, "start_date = @start_date")
		args["start_date"] = *p.StartDate
	}
	if p.EndDate != nil {
		sets = append(sets, "end_date = @end_date")
		args["end_date"] = *p.EndDate
	}
	if p.Priority != nil {
		sets = append(sets, "priority = @priority")
		args["priority"] = *p.Priority
	}
	if p.Recurrence != nil {
		sets = append(sets, "recurrence = @recurrence")
		args["recurrence"] = *p.Recurrence
	}
	if p.Completed != nil {
		sets = append(sets, "completed = @completed")
		args["completed"] = *p.Completed
	}

	q := `UPDATE events SET ` + strings.Join(sets, ", ") + ` WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Update: %w", storageErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Update: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgEventRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM events WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.EventRepo.Delete: %w", storageErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ToggleCompleted expresses the flip as one statement so concurrent toggles
// on the same id cannot lose updates.
func (r *pgEventRepo) ToggleCompleted(ctx context.Context, id int64) (bool, error) {
	const q = `
		UPDATE events
		SET completed = NOT completed
		WHERE id = @id
		RETURNING completed`

	var completed bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("repo.EventRepo.ToggleCompleted: %w", domain.ErrNotFound)
		}
		return false, fmt.Errorf("repo.EventRepo.ToggleCompleted: %w", err)
	}
	return completed, nil
}

func (r *pgEventRepo) CountMonth(ctx context.Context, year int, month time.Month) (domain.MonthlyProgress, error) {
	const q = `
		SELECT count(*), count(*) FILTER (WHERE completed)
		FROM events
		WHERE start_date >= @month_start AND start_date < @month_end`

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	args := pgx.NamedArgs{
		"month_start": monthStart,
		"month_end":   monthStart.AddDate(0, 1, 0),
	}

	var p domain.MonthlyProgress
	if err := r.db.QueryRow(ctx, q, args).Scan(&p.Total, &p.Completed); err != nil {
		return domain.MonthlyProgress{}, fmt.Errorf("repo.EventRepo.CountMonth: %w", err)
	}
	return p, nil
}

func (r *pgEventRepo) exists(ctx context.Context, id int64) error {
	const q = `SELECT 1 FROM events WHERE id = @id`

	var one int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("repo.EventRepo.Update: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.EventRepo.Update: %w", err)
	}
	return nil
}

func (r *pgEventRepo) queryEvents(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.%s: %w", op, err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventRepo.%s: scan: %w", op, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.%s: rows: %w", op, err)
	}
	return events, nil
}

// scanEvent maps a single database row into a domain.Event.
// It handles the nullable end_date conversion.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		ev        domain.Event
		startDate pgtype.Date
		endDate   pgtype.Date
	)

	err := s.Scan(&ev.ID, &ev.Title, &ev.Description, &startDate, &endDate,
		&ev.Priority, &ev.Recurrence, &ev.Completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	ev.StartDate = startDate.Time
	if endDate.Valid {
		ed := endDate.Time
		ev.EndDate = &ed
	}
	return ev, nil
}
