// Package service implements the business logic between HTTP handlers and
// the repo layer: validation, query composition, and transaction scoping.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/repo"
)

// Storer hands out repositories, optionally scoped to one transaction.
// Defining the interface here (in the consumer package) lets unit tests
// inject a fake whose InTx simply invokes the callback with mock repos.
// *repo.Store satisfies it.
type Storer interface {
	Repos() repo.Repos
	InTx(ctx context.Context, fn func(repo.Repos) error) error
}

// hexColor matches 3- or 6-digit hex color codes like "#38d" or "#3788d8".
var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// TagService implements business logic for Tag operations.
type TagService struct {
	store Storer
}

// NewTagService constructs a TagService backed by the provided store.
func NewTagService(store Storer) *TagService {
	return &TagService{store: store}
}

// List returns all tags in insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.Repos().Tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}

// Create validates the tag and persists it. An omitted color gets
// domain.DefaultTagColor; a malformed one is rejected.
// Returns domain.ErrValidation on invalid input.
func (s *TagService) Create(ctx context.Context, name, color string) (domain.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Tag{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if color == "" {
		color = domain.DefaultTagColor
	}
	if !hexColor.MatchString(color) {
		return domain.Tag{}, fmt.Errorf("%w: color must be a hex color code", domain.ErrValidation)
	}

	tag, err := s.store.Repos().Tags.Create(ctx, domain.Tag{Name: name, Color: color})
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return tag, nil
}
