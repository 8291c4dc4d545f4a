// Package ical renders the event list as an iCalendar feed so external
// calendar clients can subscribe to it.
package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/opensw/calendar-api/internal/domain"
)

// feedNamespace seeds deterministic per-event UIDs, so an event keeps its
// identity across feed refreshes.
var feedNamespace = uuid.MustParse("5d2071f1-38e5-4a61-a72a-cf3c3afefbf6")

// frequencies maps the recurrence labels the store accepts free-form to
// RRULE frequencies. Labels outside this map export as one-off events.
var frequencies = map[string]rrule.Frequency{
	"daily":   rrule.DAILY,
	"weekly":  rrule.WEEKLY,
	"monthly": rrule.MONTHLY,
	"yearly":  rrule.YEARLY,
}

// EventUID returns the stable feed UID for an event id.
func EventUID(id int64) string {
	return uuid.NewSHA1(feedNamespace, []byte(fmt.Sprintf("event-%d", id))).String()
}

// RecurrenceRule translates a recurrence label into an RRULE value.
// The second return is false when the label is unknown or empty.
func RecurrenceRule(label string) (string, bool) {
	freq, ok := frequencies[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", false
	}
	opt := rrule.ROption{Freq: freq}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", false
	}
	return opt.RRuleString(), true
}

// Render serializes events into an iCalendar document. Events are all-day:
// DTSTART is the start date and DTEND, when the event has an end date, is
// the day after it (iCalendar all-day ends are exclusive). Completed
// events carry STATUS:COMPLETED.
func Render(events []domain.EventWithTags, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//opensw//calendar-api//EN")

	for _, ev := range events {
		ve := cal.AddEvent(EventUID(ev.ID))
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}

		ve.SetAllDayStartAt(ev.StartDate)
		if ev.EndDate != nil {
			ve.SetAllDayEndAt(ev.EndDate.AddDate(0, 0, 1))
		}

		if rule, ok := RecurrenceRule(ev.Recurrence); ok {
			ve.AddRrule(rule)
		}

		if ev.Completed {
			ve.SetStatus(ics.ObjectStatusCompleted)
		} else {
			ve.SetStatus(ics.ObjectStatusConfirmed)
		}

		if len(ev.Tags) > 0 {
			names := make([]string, len(ev.Tags))
			for i, t := range ev.Tags {
				names[i] = t.Name
			}
			ve.SetProperty(ics.ComponentProperty(ics.PropertyCategories), strings.Join(names, ","))
		}
	}

	return cal.Serialize()
}
