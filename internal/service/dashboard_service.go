package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
)

type dashboardRepository interface {
	RegistrationTallies(ctx context.Context, eventID string) ([]models.RegistrationTally, error)
	DecisionTallies(ctx context.Context, eventID string) ([]models.DecisionTally, error)
}

// DashboardService composes the admin overview of registrations and gate activity.
type DashboardService struct {
	repo     dashboardRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService. cache may be nil.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// Summary returns the overview for eventID, or for every event when empty,
// and reports whether it was served from cache.
func (s *DashboardService) Summary(ctx context.Context, eventID string) (*dto.DashboardSummary, bool, error) {
	eventID = strings.TrimSpace(eventID)
	key := "dash:summary:" + eventID
	if eventID == "" {
		key = "dash:summary:all"
	}
	var cached dto.DashboardSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	regs, err := s.repo.RegistrationTallies(ctx, eventID)
	if err != nil {
		return nil, false, storeError(err, "failed to load registration counts")
	}
	decisions, err := s.repo.DecisionTallies(ctx, eventID)
	if err != nil {
		return nil, false, storeError(err, "failed to load decision counts")
	}

	summary := composeSummary(eventID, regs, decisions)
	summary.GeneratedAt = s.now().UTC()
	s.cache.Set(ctx, key, summary, s.cacheTTL)
	return summary, false, nil
}

// Refresh drops every cached summary so the next read recomputes it.
func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "dash:summary:*")
}

func composeSummary(eventID string, regs []models.RegistrationTally, decisions []models.DecisionTally) *dto.DashboardSummary {
	byEvent := make(map[string]*dto.EventTally)
	tally := func(id string) *dto.EventTally {
		t, ok := byEvent[id]
		if !ok {
			t = &dto.EventTally{EventID: id}
			byEvent[id] = t
		}
		return t
	}

	for _, row := range regs {
		t := tally(row.EventID)
		t.Registered += row.Count
		t.Participants += row.Participants
		switch row.Status {
		case models.RegistrationPending:
			t.Pending += row.Count
		case models.RegistrationApproved:
			t.Approved += row.Count
		case models.RegistrationRejected:
			t.Rejected += row.Count
		}
	}
	for _, row := range decisions {
		t := tally(row.EventID)
		switch row.Action {
		case models.ActionEntryAllowed:
			t.Allowed += row.Count
			t.Admitted += row.Registrations
		case models.ActionEntryDenied:
			t.Denied += row.Count
		}
	}

	summary := &dto.DashboardSummary{EventID: eventID, Events: make([]dto.EventTally, 0, len(byEvent))}
	for _, t := range byEvent {
		summary.Events = append(summary.Events, *t)
		summary.Totals.Registered += t.Registered
		summary.Totals.Pending += t.Pending
		summary.Totals.Approved += t.Approved
		summary.Totals.Rejected += t.Rejected
		summary.Totals.Participants += t.Participants
		summary.Totals.Allowed += t.Allowed
		summary.Totals.Denied += t.Denied
		summary.Totals.Admitted += t.Admitted
	}
	sort.Slice(summary.Events, func(i, j int) bool {
		return summary.Events[i].EventID < summary.Events[j].EventID
	})
	return summary
}
