package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gardenia-api/internal/models"
)

// AnalyticsRepository exposes read-only aggregates for the admin dashboard.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// RegistrationTallies groups registrations by event and status. An empty
// eventID covers every event.
func (r *AnalyticsRepository) RegistrationTallies(ctx context.Context, eventID string) ([]models.RegistrationTally, error) {
	query := `SELECT event_id, status, COUNT(*) AS count,
        COALESCE(SUM(1 + jsonb_array_length(team_members)), 0) AS participants
        FROM registrations`
	var args []interface{}
	if eventID != "" {
		args = append(args, eventID)
		query += " WHERE event_id = $1"
	}
	query += " GROUP BY event_id, status ORDER BY event_id, status"

	var tallies []models.RegistrationTally
	if err := r.db.SelectContext(ctx, &tallies, query, args...); err != nil {
		return nil, fmt.Errorf("tally registrations: %w", err)
	}
	return tallies, nil
}

// DecisionTallies groups gate decisions by event and action.
func (r *AnalyticsRepository) DecisionTallies(ctx context.Context, eventID string) ([]models.DecisionTally, error) {
	query := `SELECT event_id, action, COUNT(*) AS count, COUNT(DISTINCT reg_id) AS registrations
        FROM entry_decisions`
	var args []interface{}
	if eventID != "" {
		args = append(args, eventID)
		query += " WHERE event_id = $1"
	}
	query += " GROUP BY event_id, action ORDER BY event_id, action"

	var tallies []models.DecisionTally
	if err := r.db.SelectContext(ctx, &tallies, query, args...); err != nil {
		return nil, fmt.Errorf("tally entry decisions: %w", err)
	}
	return tallies, nil
}
