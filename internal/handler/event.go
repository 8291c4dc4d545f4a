package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/ical"
	"github.com/opensw/calendar-api/internal/service"
)

// eventResponse is the JSON shape of an event with its tag set.
type eventResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	StartDate   openapi_types.Date  `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date,omitempty"`
	Priority    int                 `json:"priority"`
	Recurrence  string              `json:"recurrence,omitempty"`
	Completed   bool                `json:"completed"`
	Tags        []tagResponse       `json:"tags"`
}

// createEventRequest is the JSON body for POST /events.
type createEventRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
	Priority    int                 `json:"priority"`
	Recurrence  string              `json:"recurrence"`
	Completed   bool                `json:"completed"`
	TagIDs      []int64             `json:"tag_ids"`
}

// updateEventRequest is the JSON body for PUT /events/{id}.
// Absent fields are left unchanged; tag_ids, when present, replaces the
// event's whole tag set.
type updateEventRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
	Priority    *int                `json:"priority"`
	Recurrence  *string             `json:"recurrence"`
	Completed   *bool               `json:"completed"`
	TagIDs      *[]int64            `json:"tag_ids"`
}

// ListEvents handles GET /events.
// Optional query parameters: ?sort_by_priority=true and ?due_soon_days=N.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{
		SortByPriority: boolParam(r, "sort_by_priority"),
	}
	if raw := r.URL.Query().Get("due_soon_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "due_soon_days must be an integer")
			return
		}
		opts.DueSoonDays = &days
	}

	events, err := s.events.List(r.Context(), opts)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eventsToResponse(events))
}

// ListEventsByDateRange handles GET /events/range.
// Both ?start_date= and ?end_date= are required YYYY-MM-DD dates.
func (s *Server) ListEventsByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := s.events.ListByDateRange(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			validationFailed(w, err)
			return
		}
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eventsToResponse(events))
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := s.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "event not found")
			return
		}
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eventToResponse(event))
}

// CreateEvent handles POST /events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var body createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	created, err := s.events.Create(r.Context(), requestToEvent(body), body.TagIDs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			validationFailed(w, err)
		case errors.Is(err, domain.ErrStorage):
			storageConflict(w, err)
		default:
			internalError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, eventToResponse(created))
}

// UpdateEvent handles PUT /events/{id}.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var body updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	updated, err := s.events.Update(r.Context(), id, requestToPatch(body))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			notFound(w, "event not found")
		case errors.Is(err, domain.ErrValidation):
			validationFailed(w, err)
		case errors.Is(err, domain.ErrStorage):
			storageConflict(w, err)
		default:
			internalError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, eventToResponse(updated))
}

// DeleteEvent handles DELETE /events/{id}.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	if err := s.events.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "event not found")
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleEventCompleted handles PATCH /events/{id}/completed.
func (s *Server) ToggleEventCompleted(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	completed, err := s.events.ToggleCompleted(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "event not found")
			return
		}
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "completed": completed})
}

// GetMonthlyProgress handles GET /events/progress.
// ?year= and ?month= select the calendar month.
func (s *Server) GetMonthlyProgress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		badRequest(w, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		badRequest(w, "month must be an integer")
		return
	}

	progress, err := s.events.MonthlyProgress(r.Context(), year, month)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			validationFailed(w, err)
			return
		}
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{
		"total":     progress.Total,
		"completed": progress.Completed,
	})
}

// GetICalFeed handles GET /events/feed.ics.
// It serves the full event list as an iCalendar document.
func (s *Server) GetICalFeed(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context(), service.ListOptions{})
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ical.Render(events, s.now())))
}

// --- mapping helpers --------------------------------------------------------

// eventID parses the {id} path parameter, writing a 404 for anything that
// is not a valid integer id.
func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		notFound(w, "event not found")
		return 0, false
	}
	return id, true
}

// boolParam reports whether the named query parameter is set truthy.
func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// requestToEvent converts a create body into a domain.Event.
// A missing start_date stays the zero time and fails service validation.
func requestToEvent(body createEventRequest) domain.Event {
	ev := domain.Event{
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Recurrence:  body.Recurrence,
		Completed:   body.Completed,
	}
	if body.StartDate != nil {
		ev.StartDate = body.StartDate.Time
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		ev.EndDate = &ed
	}
	return ev
}

// requestToPatch converts an update body into a domain.EventPatch,
// preserving the absent-versus-present distinction of every field.
func requestToPatch(body updateEventRequest) domain.EventPatch {
	p := domain.EventPatch{
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Recurrence:  body.Recurrence,
		Completed:   body.Completed,
		TagIDs:      body.TagIDs,
	}
	if body.StartDate != nil {
		sd := body.StartDate.Time
		p.StartDate = &sd
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		p.EndDate = &ed
	}
	return p
}

// eventToResponse converts a domain.EventWithTags into its JSON shape.
func eventToResponse(ev domain.EventWithTags) eventResponse {
	resp := eventResponse{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		StartDate:   openapi_types.Date{Time: ev.StartDate},
		Priority:    ev.Priority,
		Recurrence:  ev.Recurrence,
		Completed:   ev.Completed,
		Tags:        make([]tagResponse, len(ev.Tags)),
	}
	if ev.EndDate != nil {
		ed := openapi_types.Date{Time: *ev.EndDate}
		resp.EndDate = &ed
	}
	for i, t := range ev.Tags {
		resp.Tags[i] = tagToResponse(t)
	}
	return resp
}

func eventsToResponse(events []domain.EventWithTags) []eventResponse {
	resp := make([]eventResponse, len(events))
	for i, ev := range events {
		resp[i] = eventToResponse(ev)
	}
	return resp
}
