package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opensw/calendar-api/internal/domain"
)

// TagRepo defines the persistence operations for Tags and the event_tags
// join table.
type TagRepo interface {
	// Create inserts a tag and returns the persisted record with its
	// generated id. Returns domain.ErrStorage on constraint violation.
	Create(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// List returns all tags in insertion order (id ascending).
	List(ctx context.Context) ([]domain.Tag, error)

	// ListByEvent returns the tags linked to one event, ordered by tag id
	// ascending.
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Tag, error)

	// ListByEvents returns the tags for every given event id in one query,
	// grouped by event id, each group ordered by tag id ascending.
	// Event ids with no tags are absent from the map.
	ListByEvents(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error)

	// ReplaceForEvent deletes all associations for eventID and inserts one
	// per id in tagIDs. A tag id that does not exist, or a duplicate in
	// tagIDs, violates a constraint and returns domain.ErrStorage; run
	// this inside the same transaction as the event write so the whole
	// operation rolls back together.
	ReplaceForEvent(ctx context.Context, eventID int64, tagIDs []int64) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

func (r *pgTagRepo) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name, color)
		VALUES (@name, @color)
		RETURNING id, name, color`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": tag.Name, "color": tag.Color})
	result, err := scanTag(row)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", storageErr(err))
	}
	return result, nil
}

func (r *pgTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	const q = `
		SELECT id, name, color
		FROM tags
		ORDER BY id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.List: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: rows: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) ListByEvent(ctx context.Context, eventID int64) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.color
		FROM tags t
		JOIN event_tags et ON et.tag_id = t.id
		WHERE et.event_id = @event_id
		ORDER BY t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByEvent: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByEvent: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByEvent: rows: %w", err)
	}
	return tags, nil
}

// ListByEvents batches the per-event tag lookup into a single join grouped
// by event id. Ordering by (event_id, tag_id) keeps each group's tags in
// tag-id order.
func (r *pgTagRepo) ListByEvents(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error) {
	if len(eventIDs) == 0 {
		return map[int64][]domain.Tag{}, nil
	}

	const q = `
		SELECT et.event_id, t.id, t.name, t.color
		FROM tags t
		JOIN event_tags et ON et.tag_id = t.id
		WHERE et.event_id = ANY(@event_ids)
		ORDER BY et.event_id, t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"event_ids": eventIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByEvents: %w", err)
	}
	defer rows.Close()

	byEvent := map[int64][]domain.Tag{}
	for rows.Next() {
		var (
			eventID int64
			tag     domain.Tag
		)
		if err := rows.Scan(&eventID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByEvents: scan: %w", err)
		}
		byEvent[eventID] = append(byEvent[eventID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByEvents: rows: %w", err)
	}
	return byEvent, nil
}

// ReplaceForEvent implements full-replacement semantics: the old set is
// deleted and the new set inserted, never an incremental diff.
func (r *pgTagRepo) ReplaceForEvent(ctx context.Context, eventID int64, tagIDs []int64) error {
	const del = `DELETE FROM event_tags WHERE event_id = @event_id`

	if _, err := r.db.Exec(ctx, del, pgx.NamedArgs{"event_id": eventID}); err != nil {
		return fmt.Errorf("repo.TagRepo.ReplaceForEvent: delete: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	// One statement for the whole set. Duplicates in tagIDs hit the
	// composite primary key; unknown tag ids hit the foreign key.
	const ins = `
		INSERT INTO event_tags (event_id, tag_id)
		SELECT @event_id, unnest(@tag_ids::bigint[])`

	args := pgx.NamedArgs{"event_id": eventID, "tag_ids": tagIDs}
	if _, err := r.db.Exec(ctx, ins, args); err != nil {
		return fmt.Errorf("repo.TagRepo.ReplaceForEvent: insert: %w", storageErr(err))
	}
	return nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var t domain.Tag
	if err := s.Scan(&t.ID, &t.Name, &t.Color); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	return t, nil
}
