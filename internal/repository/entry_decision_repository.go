package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gardenia-api/internal/models"
)

const entryDecisionColumns = `id, registration_id, reg_id, event_id, leader, team_members, event_details, action, reason, operator_id, scanned_at, logged_at`

// exportLimit caps unpaginated audit exports.
const exportLimit = 10000

// EntryDecisionRepository appends and reads gate decisions. It exposes no
// update or delete.
type EntryDecisionRepository struct {
	db *sqlx.DB
}

// NewEntryDecisionRepository constructs the repository.
func NewEntryDecisionRepository(db *sqlx.DB) *EntryDecisionRepository {
	return &EntryDecisionRepository{db: db}
}

// Create appends a decision row. Each call inserts a new row.
func (r *EntryDecisionRepository) Create(ctx context.Context, decision *models.EntryDecision) error {
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	if decision.LoggedAt.IsZero() {
		decision.LoggedAt = time.Now().UTC()
	}
	if decision.TeamMembers == nil {
		decision.TeamMembers = models.People{}
	}
	const query = `INSERT INTO entry_decisions (id, registration_id, reg_id, event_id, leader, team_members, event_details, action, reason, operator_id, scanned_at, logged_at)
VALUES (:id, :registration_id, :reg_id, :event_id, :leader, :team_members, :event_details, :action, :reason, :operator_id, :scanned_at, :logged_at)`
	if _, err := r.db.NamedExecContext(ctx, query, decision); err != nil {
		return fmt.Errorf("insert entry decision: %w", err)
	}
	return nil
}

// ListByRegID returns every decision for one registration, newest first.
func (r *EntryDecisionRepository) ListByRegID(ctx context.Context, regID string) ([]models.EntryDecision, error) {
	query := `SELECT ` + entryDecisionColumns + ` FROM entry_decisions WHERE reg_id = $1 ORDER BY scanned_at DESC, logged_at DESC`
	var decisions []models.EntryDecision
	if err := r.db.SelectContext(ctx, &decisions, query, regID); err != nil {
		return nil, fmt.Errorf("list entry decisions by registration: %w", err)
	}
	return decisions, nil
}

// List returns a page of decisions for audit review with the total count.
func (r *EntryDecisionRepository) List(ctx context.Context, filter models.EntryDecisionFilter) ([]models.EntryDecision, int, error) {
	where, args := decisionConditions(filter)
	page, pageSize := normalisePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s FROM entry_decisions%s ORDER BY scanned_at DESC, logged_at DESC LIMIT %d OFFSET %d", entryDecisionColumns, where, pageSize, (page-1)*pageSize)
	var decisions []models.EntryDecision
	if err := r.db.SelectContext(ctx, &decisions, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list entry decisions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM entry_decisions"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count entry decisions: %w", err)
	}
	return decisions, total, nil
}

// ListForExport returns all matching decisions up to the export cap.
func (r *EntryDecisionRepository) ListForExport(ctx context.Context, filter models.EntryDecisionFilter) ([]models.EntryDecision, error) {
	where, args := decisionConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM entry_decisions%s ORDER BY scanned_at DESC, logged_at DESC LIMIT %d", entryDecisionColumns, where, exportLimit)
	var decisions []models.EntryDecision
	if err := r.db.SelectContext(ctx, &decisions, query, args...); err != nil {
		return nil, fmt.Errorf("export entry decisions: %w", err)
	}
	return decisions, nil
}

func decisionConditions(filter models.EntryDecisionFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		conditions = append(conditions, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.RegID != "" {
		args = append(args, filter.RegID)
		conditions = append(conditions, fmt.Sprintf("reg_id = $%d", len(args)))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("scanned_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("scanned_at <= $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
