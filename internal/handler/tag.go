package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opensw/calendar-api/internal/domain"
)

// tagResponse is the JSON shape of a tag.
type tagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// createTagRequest is the JSON body for POST /tags.
// Color is optional; the service applies the default.
type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListTags handles GET /tags.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	resp := make([]tagResponse, len(tags))
	for i, t := range tags {
		resp[i] = tagToResponse(t)
	}
	respondJSON(w, http.StatusOK, resp)
}

// CreateTag handles POST /tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var body createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	tag, err := s.tags.Create(r.Context(), body.Name, body.Color)
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

	respondJSON(w, http.StatusCreated, tagToResponse(tag))
}

// tagToResponse converts a domain.Tag into its JSON shape.
func tagToResponse(t domain.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Color: t.Color}
}
