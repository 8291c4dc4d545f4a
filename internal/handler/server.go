// Package handler implements the HTTP layer for the calendar API.
// Handlers are methods on Server, split into resource-specific files, and
// stay thin: decode, delegate to a service, map errors, encode.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/service"
)

// TagServicer defines the business operations the tag handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TagServicer interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Create(ctx context.Context, name, color string) (domain.Tag, error)
}

// EventServicer defines the business operations the event handlers depend on.
type EventServicer interface {
	Get(ctx context.Context, id int64) (domain.EventWithTags, error)
	List(ctx context.Context, opts service.ListOptions) ([]domain.EventWithTags, error)
	ListByDateRange(ctx context.Context, start, end string) ([]domain.EventWithTags, error)
	Create(ctx context.Context, ev domain.Event, tagIDs []int64) (domain.EventWithTags, error)
	Update(ctx context.Context, id int64, patch domain.EventPatch) (domain.EventWithTags, error)
	Delete(ctx context.Context, id int64) error
	ToggleCompleted(ctx context.Context, id int64) (bool, error)
	MonthlyProgress(ctx context.Context, year, month int) (domain.MonthlyProgress, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	tags   TagServicer
	events EventServicer
	now    func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(tags TagServicer, events EventServicer) *Server {
	return &Server{tags: tags, events: events, now: time.Now}
}

// Routes builds the API router. Mount it under the middleware stack in main.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.ListTags)
		r.Post("/", s.CreateTag)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.ListEvents)
		r.Post("/", s.CreateEvent)
		r.Get("/range", s.ListEventsByDateRange)
		r.Get("/progress", s.GetMonthlyProgress)
		r.Get("/feed.ics", s.GetICalFeed)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetEvent)
			r.Put("/", s.UpdateEvent)
			r.Delete("/", s.DeleteEvent)
			r.Patch("/completed", s.ToggleEventCompleted)
		})
	})

	return r
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
