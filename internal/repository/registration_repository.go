package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/gardenia-api/internal/models"
)

const registrationColumns = `id, registration_id, event_id, is_garden_city_student, leader, team_members, status, qr_payload, final_event_date, ticket_status, ticket_path, created_at, updated_at`

// ErrDuplicateRegistrationID is returned when the unique constraint on
// registration_id rejects an insert.
var ErrDuplicateRegistrationID = errors.New("registration id already exists")

// RegistrationRepository persists registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create allocates the next registration_seq value, lets ident derive the
// public id and QR payload from it, and inserts the complete row in one
// transaction.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration, ident func(seq int64) (string, string)) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration tx: %w", err)
	}

	var seq int64
	if err := tx.GetContext(ctx, &seq, `SELECT nextval('registration_seq')`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("allocate registration sequence: %w", err)
	}

	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.RegistrationID, reg.QRPayload = ident(seq)
	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	if reg.TeamMembers == nil {
		reg.TeamMembers = models.People{}
	}

	const query = `INSERT INTO registrations (id, registration_id, event_id, is_garden_city_student, leader, team_members, status, qr_payload, final_event_date, ticket_status, ticket_path, created_at, updated_at)
VALUES (:id, :registration_id, :event_id, :is_garden_city_student, :leader, :team_members, :status, :qr_payload, :final_event_date, :ticket_status, :ticket_path, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, reg); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicateRegistrationID
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration tx: %w", err)
	}
	return nil
}

// FindByRegistrationID returns the registration carrying the public id.
func (r *RegistrationRepository) FindByRegistrationID(ctx context.Context, registrationID string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE registration_id = $1 LIMIT 1`
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, registrationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// List returns registrations matching the filter with the total count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	baseQuery := `FROM registrations WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.EventID != "" {
		args = append(args, filter.EventID)
		conditions = append(conditions, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(leader->>'name') LIKE $%d OR LOWER(leader->>'email') LIKE $%d OR LOWER(registration_id) LIKE $%d)", idx, idx, idx))
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}
	page, pageSize := normalisePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", registrationColumns, baseQuery, sortOrder, pageSize, (page-1)*pageSize)
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return regs, total, nil
}

// UpdateStatus changes the approval status. registration_id is never touched.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, registrationID string, status models.RegistrationStatus) error {
	const query = `UPDATE registrations SET status = $2, updated_at = $3 WHERE registration_id = $1`
	res, err := r.db.ExecContext(ctx, query, registrationID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	return requireAffected(res)
}

// UpdateTicket records the outcome of a ticket render.
func (r *RegistrationRepository) UpdateTicket(ctx context.Context, registrationID string, status models.TicketStatus, path *string) error {
	const query = `UPDATE registrations SET ticket_status = $2, ticket_path = $3, updated_at = $4 WHERE registration_id = $1`
	res, err := r.db.ExecContext(ctx, query, registrationID, status, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	return requireAffected(res)
}

// ListTicketBacklog returns registrations whose ticket was never rendered,
// oldest first, so they can be re-queued after a restart.
func (r *RegistrationRepository) ListTicketBacklog(ctx context.Context, limit int) ([]models.Registration, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE ticket_status = $1 ORDER BY created_at ASC LIMIT %d", registrationColumns, limit)
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, models.TicketPending); err != nil {
		return nil, fmt.Errorf("list ticket backlog: %w", err)
	}
	return regs, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalisePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a lower-cased LIKE pattern matching term anywhere.
// Wildcards typed by the user match literally under the default '\' escape.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
