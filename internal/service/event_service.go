package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type eventRepository interface {
	FindByID(ctx context.Context, customID string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// EventService serves the event catalog, read through the cache.
type EventService struct {
	repo     eventRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewEventService constructs the catalog service. cache may be nil.
func NewEventService(repo eventRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Get returns one event by custom id.
func (s *EventService) Get(ctx context.Context, customID string) (*models.Event, error) {
	key := "events:" + customID
	var cached models.Event
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	event, err := s.repo.FindByID(ctx, customID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, storeError(err, "failed to load event")
	}
	s.cache.Set(ctx, key, event, s.cacheTTL)
	return event, nil
}

// List returns the catalog filtered by category, department or open state.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	key := fmt.Sprintf("events:list:%s:%s:%t", filter.Category, filter.Department, filter.OpenOnly)
	var cached []models.Event
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to list events")
	}
	if events == nil {
		events = []models.Event{}
	}
	s.cache.Set(ctx, key, events, s.cacheTTL)
	return events, nil
}

// storeError maps infrastructure failures onto the public taxonomy: transient
// failures become SERVICE_UNAVAILABLE, anything else INTERNAL_ERROR.
func storeError(err error, message string) error {
	if isTransient(err) {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
