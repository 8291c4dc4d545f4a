package service_test

import (
	"context"
	"time"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/repo"
)

// fakeStore satisfies service.Storer with mock repos. InTx simply invokes
// the callback, so a callback error stands in for a rolled-back transaction.
type fakeStore struct {
	repos repo.Repos
}

func (f *fakeStore) Repos() repo.Repos { return f.repos }

func (f *fakeStore) InTx(_ context.Context, fn func(repo.Repos) error) error {
	return fn(f.repos)
}

// mockEventRepo is a test double for repo.EventRepo.
// Set only the method fields your test needs.
type mockEventRepo struct {
	create          func(ctx context.Context, ev domain.Event) (domain.Event, error)
	getByID         func(ctx context.Context, id int64) (domain.Event, error)
	list            func(ctx context.Context, f domain.EventFilter) ([]domain.Event, error)
	listByDateRange func(ctx context.Context, start, end time.Time) ([]domain.Event, error)
	update          func(ctx context.Context, id int64, p domain.EventPatch) error
	delete          func(ctx context.Context, id int64) error
	toggleCompleted func(ctx context.Context, id int64) (bool, error)
	countMonth      func(ctx context.Context, year int, month time.Month) (domain.MonthlyProgress, error)
}

func (m *mockEventRepo) Create(ctx context.Context, ev domain.Event) (domain.Event, error) {
	return m.create(ctx, ev)
}
func (m *mockEventRepo) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockEventRepo) List(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	return m.list(ctx, f)
}
func (m *mockEventRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]domain.Event, error) {
	return m.listByDateRange(ctx, start, end)
}
func (m *mockEventRepo) Update(ctx context.Context, id int64, p domain.EventPatch) error {
	return m.update(ctx, id, p)
}
func (m *mockEventRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockEventRepo) ToggleCompleted(ctx context.Context, id int64) (bool, error) {
	return m.toggleCompleted(ctx, id)
}
func (m *mockEventRepo) CountMonth(ctx context.Context, year int, month time.Month) (domain.MonthlyProgress, error) {
	return m.countMonth(ctx, year, month)
}

// compile-time check
var _ repo.EventRepo = (*mockEventRepo)(nil)

// mockTagRepo is a test double for repo.TagRepo.
type mockTagRepo struct {
	create          func(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	list            func(ctx context.Context) ([]domain.Tag, error)
	listByEvent     func(ctx context.Context, eventID int64) ([]domain.Tag, error)
	listByEvents    func(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error)
	replaceForEvent func(ctx context.Context, eventID int64, tagIDs []int64) error
}

func (m *mockTagRepo) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	return m.create(ctx, tag)
}
func (m *mockTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	return m.list(ctx)
}
func (m *mockTagRepo) ListByEvent(ctx context.Context, eventID int64) ([]domain.Tag, error) {
	return m.listByEvent(ctx, eventID)
}
func (m *mockTagRepo) ListByEvents(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error) {
	return m.listByEvents(ctx, eventIDs)
}
func (m *mockTagRepo) ReplaceForEvent(ctx context.Context, eventID int64, tagIDs []int64) error {
	return m.replaceForEvent(ctx, eventID, tagIDs)
}

// compile-time check
var _ repo.TagRepo = (*mockTagRepo)(nil)

// newFakeStore bundles mock repos into a store.
func newFakeStore(events *mockEventRepo, tags *mockTagRepo) *fakeStore {
	return &fakeStore{repos: repo.Repos{Events: events, Tags: tags}}
}
