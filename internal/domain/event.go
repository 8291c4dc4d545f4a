package domain

import "time"

// Event represents a single calendar item.
// EndDate is nil for open-ended events; open-ended events never match
// date-range or due-soon queries.
// Priority is ascending: lower value means higher priority.
// Recurrence is a free-form label ("daily", "weekly", ...); it is stored
// as-is and only interpreted by the iCalendar feed.
type Event struct {
	ID          int64
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Priority    int
	Recurrence  string
	Completed   bool
}

// EventWithTags is an event together with its full tag set,
// ordered by tag ID ascending.
type EventWithTags struct {
	Event
	Tags []Tag
}

// EventPatch carries a sparse update: nil fields are left unchanged.
// TagIDs distinguishes three cases — nil leaves the tag set alone,
// an empty non-nil slice clears it, a populated slice replaces it.
type EventPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Priority    *int
	Recurrence  *string
	Completed   *bool
	TagIDs      *[]int64
}

// IsZero reports whether the patch modifies no event column.
// A zero patch may still carry a TagIDs replacement.
func (p EventPatch) IsZero() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.StartDate == nil &&
		p.EndDate == nil &&
		p.Priority == nil &&
		p.Recurrence == nil &&
		p.Completed == nil
}

// EventFilter narrows and orders a listing of events.
// DueStart/DueEnd, when set, restrict results to events whose end date
// falls inside the closed interval and force end_date as the primary
// sort key. SortByPriority appends priority ascending as a sort key.
type EventFilter struct {
	DueStart       *time.Time
	DueEnd         *time.Time
	SortByPriority bool
}

// MonthlyProgress summarizes completion state for the events of one
// calendar month.
type MonthlyProgress struct {
	Total     int64
	Completed int64
}
