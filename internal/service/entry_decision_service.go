package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/pkg/export"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type entryDecisionRepository interface {
	Create(ctx context.Context, decision *models.EntryDecision) error
	ListByRegID(ctx context.Context, regID string) ([]models.EntryDecision, error)
	List(ctx context.Context, filter models.EntryDecisionFilter) ([]models.EntryDecision, int, error)
	ListForExport(ctx context.Context, filter models.EntryDecisionFilter) ([]models.EntryDecision, error)
}

type registrationLookup interface {
	Lookup(ctx context.Context, regID string) (*models.Registration, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// EntryDecisionService appends gate decisions and serves the audit trail.
type EntryDecisionService struct {
	repo      entryDecisionRepository
	regs      registrationLookup
	events    eventCatalog
	audit     auditLogWriter
	csv       datasetRenderer
	pdf       titledRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEntryDecisionService constructs the decision log.
func NewEntryDecisionService(repo entryDecisionRepository, regs registrationLookup, events eventCatalog, audit auditLogWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EntryDecisionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryDecisionService{
		repo:      repo,
		regs:      regs,
		events:    events,
		audit:     audit,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Record appends one decision. It never updates earlier rows and is not
// retried on failure; the operator resubmits.
func (s *EntryDecisionService) Record(ctx context.Context, req dto.RecordDecisionRequest, operator *models.JWTClaims) (*models.EntryDecision, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid decision payload")
	}
	action, ok := models.ParseDecisionAction(req.Action)
	if !ok {
		return nil, appErrors.Invalid("action", "action must be ALLOWED or DENIED")
	}

	reg, err := s.regs.Lookup(ctx, strings.TrimSpace(req.RegistrationID))
	if err != nil {
		return nil, err
	}
	if eventID := strings.TrimSpace(req.EventID); eventID != "" && eventID != reg.EventID {
		return nil, appErrors.Invalid("eventId", "credential not valid for this event")
	}

	event, err := s.events.Get(ctx, reg.EventID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		event = &models.Event{CustomID: reg.EventID}
	}

	decision := &models.EntryDecision{
		RegistrationID: reg.ID,
		RegID:          reg.RegistrationID,
		EventID:        reg.EventID,
		Leader:         reg.Leader,
		TeamMembers:    reg.TeamMembers,
		EventDetails:   event.Snapshot(),
		Action:         action,
		ScannedAt:      req.ScannedAt.UTC(),
		LoggedAt:       s.now().UTC(),
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		decision.Reason = &reason
	}
	if operator != nil && operator.UserID != "" {
		op := operator.UserID
		decision.OperatorID = &op
	}

	if err := s.repo.Create(ctx, decision); err != nil {
		return nil, storeError(err, "failed to record entry decision")
	}
	s.metrics.IncDecision(string(action))
	s.logger.Info("entry decision recorded",
		zap.String("reg_id", decision.RegID),
		zap.String("action", string(action)),
		zap.String("decision_id", decision.ID),
	)
	return decision, nil
}

// History returns all decisions for one registration, newest first.
func (s *EntryDecisionService) History(ctx context.Context, regID string) (*dto.DecisionHistory, error) {
	reg, err := s.regs.Lookup(ctx, regID)
	if err != nil {
		return nil, err
	}
	decisions, err := s.repo.ListByRegID(ctx, reg.RegistrationID)
	if err != nil {
		return nil, storeError(err, "failed to load entry decisions")
	}
	if decisions == nil {
		decisions = []models.EntryDecision{}
	}
	history := &dto.DecisionHistory{
		RegistrationID: reg.RegistrationID,
		Count:          len(decisions),
		Decisions:      decisions,
	}
	if len(decisions) > 0 {
		latest := decisions[0].Action
		history.LatestAction = &latest
	}
	return history, nil
}

// List returns a page of decisions for audit review.
func (s *EntryDecisionService) List(ctx context.Context, query dto.DecisionQuery) ([]models.EntryDecision, *models.Pagination, error) {
	filter, err := decisionFilter(query)
	if err != nil {
		return nil, nil, err
	}
	decisions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list entry decisions")
	}
	if decisions == nil {
		decisions = []models.EntryDecision{}
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return decisions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

var exportHeaders = []string{"Scanned At", "Logged At", "Registration", "Event", "Leader", "Team Size", "Action", "Reason", "Operator"}

// Export renders the filtered audit trail as CSV or PDF.
func (s *EntryDecisionService) Export(ctx context.Context, query dto.DecisionQuery, actor *models.JWTClaims) (*dto.ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Invalid("format", "format must be csv or pdf")
	}
	filter, err := decisionFilter(query)
	if err != nil {
		return nil, err
	}
	decisions, err := s.repo.ListForExport(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to load entry decisions")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(decisions))}
	for _, d := range decisions {
		row := map[string]string{
			"Scanned At":   d.ScannedAt.UTC().Format(time.RFC3339),
			"Logged At":    d.LoggedAt.UTC().Format(time.RFC3339),
			"Registration": d.RegID,
			"Event":        d.EventDetails.Title,
			"Leader":       d.Leader.Name,
			"Team Size":    fmt.Sprintf("%d", 1+len(d.TeamMembers)),
			"Action":       string(d.Action),
		}
		if row["Event"] == "" {
			row["Event"] = d.EventID
		}
		if d.Reason != nil {
			row["Reason"] = *d.Reason
		}
		if d.OperatorID != nil {
			row["Operator"] = *d.OperatorID
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	stamp := s.now().UTC().Format("20060102-150405")
	file := &dto.ExportFile{Filename: "entry-decisions-" + stamp + "." + format}
	switch format {
	case "pdf":
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(dataset, "Gardenia 2025 entry decisions")
	default:
		file.ContentType = "text/csv; charset=utf-8"
		file.Data, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	if s.audit != nil {
		meta, _ := json.Marshal(map[string]interface{}{"format": format, "rows": len(decisions), "eventId": filter.EventID})
		entry := &models.AuditLog{Action: models.AuditActionDecisionExport, Resource: "entry_decision", NewValues: meta}
		if actor != nil {
			entry.UserID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record export audit log", zap.Error(err))
		}
	}
	return file, nil
}

func decisionFilter(query dto.DecisionQuery) (models.EntryDecisionFilter, error) {
	filter := models.EntryDecisionFilter{
		EventID:  strings.TrimSpace(query.EventID),
		RegID:    strings.TrimSpace(query.RegID),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Action != "" {
		action, ok := models.ParseDecisionAction(query.Action)
		if !ok {
			return filter, appErrors.Invalid("action", "action must be ALLOWED or DENIED")
		}
		filter.Action = &action
	}
	if query.From != "" {
		from, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			return filter, appErrors.Invalid("from", "from must be an RFC3339 timestamp")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			return filter, appErrors.Invalid("to", "to must be an RFC3339 timestamp")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, appErrors.Invalid("to", "to must not be before from")
	}
	return filter, nil
}
