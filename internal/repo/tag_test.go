package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/repo"
	"github.com/opensw/calendar-api/testutil"
)

// newTestRepos opens a single transaction and returns all repos backed by
// it, so tests can create full hierarchies (event → associations) within
// one rolled-back transaction.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewRepos(tx)
}

func mustCreateTag(t *testing.T, tags repo.TagRepo, name string) domain.Tag {
	t.Helper()
	tag, err := tags.Create(context.Background(), domain.Tag{Name: name, Color: domain.DefaultTagColor})
	require.NoError(t, err)
	return tag
}

func mustCreateEvent(t *testing.T, events repo.EventRepo, ev domain.Event) domain.Event {
	t.Helper()
	created, err := events.Create(context.Background(), ev)
	require.NoError(t, err)
	return created
}

func eventFixture() domain.Event {
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return domain.Event{
		Title:       "Team Sync",
		Description: "weekly planning call",
		StartDate:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
		Priority:    2,
		Recurrence:  "weekly",
	}
}

// ---- Create / List ---------------------------------------------------------

func TestTagRepo_Create(t *testing.T) {
	r := newTestRepos(t)

	got, err := r.Tags.Create(context.Background(), domain.Tag{Name: "School", Color: "#ff0000"})

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "School", got.Name)
	assert.Equal(t, "#ff0000", got.Color)
}

func TestTagRepo_List_InsertionOrder(t *testing.T) {
	r := newTestRepos(t)

	first := mustCreateTag(t, r.Tags, "Work")
	second := mustCreateTag(t, r.Tags, "Personal")

	got, err := r.Tags.List(context.Background())

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, first.ID, got[len(got)-2].ID)
	assert.Equal(t, second.ID, got[len(got)-1].ID)
}

func TestTagRepo_List_Empty(t *testing.T) {
	r := newTestRepos(t)

	got, err := r.Tags.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
}

// ---- ReplaceForEvent / ListByEvent -----------------------------------------

func TestTagRepo_ReplaceForEvent_RoundTrip(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	ev := mustCreateEvent(t, r.Events, eventFixture())
	a := mustCreateTag(t, r.Tags, "A")
	b := mustCreateTag(t, r.Tags, "B")

	// Insert in descending id order; reads must still come back ascending.
	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev.ID, []int64{b.ID, a.ID}))

	got, err := r.Tags.ListByEvent(ctx, ev.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

func TestTagRepo_ReplaceForEvent_FullReplacement(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	ev := mustCreateEvent(t, r.Events, eventFixture())
	old := mustCreateTag(t, r.Tags, "old")
	kept := mustCreateTag(t, r.Tags, "kept")
	added := mustCreateTag(t, r.Tags, "added")

	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev.ID, []int64{old.ID, kept.ID}))
	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev.ID, []int64{kept.ID, added.ID}))

	got, err := r.Tags.ListByEvent(ctx, ev.ID)

	require.NoError(t, err)
	require.Len(t, got, 2, "tag present in both sets must appear exactly once")
	assert.Equal(t, kept.ID, got[0].ID)
	assert.Equal(t, added.ID, got[1].ID)
}

func TestTagRepo_ReplaceForEvent_EmptySetClears(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	ev := mustCreateEvent(t, r.Events, eventFixture())
	tag := mustCreateTag(t, r.Tags, "temp")
	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev.ID, []int64{tag.ID}))

	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev.ID, nil))

	got, err := r.Tags.ListByEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// The failing statement aborts the shared test transaction, so these two
// tests assert the error and nothing else.

func TestTagRepo_ReplaceForEvent_UnknownTagID(t *testing.T) {
	r := newTestRepos(t)

	ev := mustCreateEvent(t, r.Events, eventFixture())

	err := r.Tags.ReplaceForEvent(context.Background(), ev.ID, []int64{999_999_999})

	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestTagRepo_ReplaceForEvent_DuplicateTagIDs(t *testing.T) {
	r := newTestRepos(t)

	ev := mustCreateEvent(t, r.Events, eventFixture())
	tag := mustCreateTag(t, r.Tags, "dup")

	err := r.Tags.ReplaceForEvent(context.Background(), ev.ID, []int64{tag.ID, tag.ID})

	assert.ErrorIs(t, err, domain.ErrStorage)
}

// ---- ListByEvents ----------------------------------------------------------

func TestTagRepo_ListByEvents_GroupsByEvent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	ev1 := mustCreateEvent(t, r.Events, eventFixture())
	ev2 := mustCreateEvent(t, r.Events, eventFixture())
	a := mustCreateTag(t, r.Tags, "A")
	b := mustCreateTag(t, r.Tags, "B")
	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev1.ID, []int64{a.ID, b.ID}))
	require.NoError(t, r.Tags.ReplaceForEvent(ctx, ev2.ID, []int64{b.ID}))

	got, err := r.Tags.ListByEvents(ctx, []int64{ev1.ID, ev2.ID})

	require.NoError(t, err)
	require.Len(t, got[ev1.ID], 2)
	assert.Equal(t, a.ID, got[ev1.ID][0].ID)
	require.Len(t, got[ev2.ID], 1)
	assert.Equal(t, b.ID, got[ev2.ID][0].ID)
}

func TestTagRepo_ListByEvents_NoIDs(t *testing.T) {
	r := newTestRepos(t)

	got, err := r.Tags.ListByEvents(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}
