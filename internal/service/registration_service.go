package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/credential"
	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/internal/repository"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type registrationRepository interface {
	Create(ctx context.Context, reg *models.Registration, ident func(seq int64) (string, string)) error
	FindByRegistrationID(ctx context.Context, registrationID string) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	UpdateStatus(ctx context.Context, registrationID string, status models.RegistrationStatus) error
}

type eventCatalog interface {
	Get(ctx context.Context, customID string) (*models.Event, error)
}

type ticketScheduler interface {
	Schedule(ctx context.Context, registrationID string) error
	Link(ctx context.Context, reg *models.Registration) *dto.TicketLink
}

type auditLogWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RegistrationConfig shapes registration identifiers.
type RegistrationConfig struct {
	IDPrefix string
	IDPad    int
}

// RegistrationService accepts registrations and serves admin management.
type RegistrationService struct {
	repo      registrationRepository
	events    eventCatalog
	tickets   ticketScheduler
	audit     auditLogWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    RegistrationConfig
}

// NewRegistrationService wires the registration store. tickets and audit may be nil.
func NewRegistrationService(repo registrationRepository, events eventCatalog, tickets ticketScheduler, audit auditLogWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg RegistrationConfig) *RegistrationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "GDN2025"
	}
	if cfg.IDPad <= 0 {
		cfg.IDPad = 4
	}
	return &RegistrationService{
		repo:      repo,
		events:    events,
		tickets:   tickets,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
	}
}

// UseTickets attaches the ticket pipeline after construction.
func (s *RegistrationService) UseTickets(tickets ticketScheduler) {
	s.tickets = tickets
}

// FormatID renders the public id for a sequence value, e.g. GDN2025-0042.
func (s *RegistrationService) FormatID(seq int64) string {
	return fmt.Sprintf("%s-%0*d", s.config.IDPrefix, s.config.IDPad, seq)
}

// Submit validates the form against the event rules and stores it. The first
// failing constraint is returned; nothing is stored on failure.
func (s *RegistrationService) Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.RegistrationReceipt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	event, err := s.events.Get(ctx, strings.TrimSpace(req.EventID))
	if err != nil {
		return nil, err
	}
	if !event.RegistrationOpen {
		return nil, appErrors.Invalid("eventId", "registration is closed for this event")
	}

	leader, verr := buildPerson(req.Leader, req.IsGardenCityStudent, "leader", true)
	if verr != nil {
		return nil, verr
	}
	members := make(models.People, 0, len(req.TeamMembers))
	for i, in := range req.TeamMembers {
		member, verr := buildPerson(in, req.IsGardenCityStudent, fmt.Sprintf("teamMembers[%d]", i), false)
		if verr != nil {
			return nil, verr
		}
		members = append(members, member)
	}

	if verr := checkTeamSize(*event, len(members)); verr != nil {
		return nil, verr
	}

	reg := &models.Registration{
		EventID:             event.CustomID,
		IsGardenCityStudent: req.IsGardenCityStudent,
		Leader:              leader,
		TeamMembers:         members,
		Status:              models.RegistrationPending,
		FinalEventDate:      event.FinalDate(req.IsGardenCityStudent),
		TicketStatus:        models.TicketPending,
	}
	err = s.repo.Create(ctx, reg, func(seq int64) (string, string) {
		id := s.FormatID(seq)
		return id, credential.Encode(id, event.CustomID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistrationID) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "registration id already issued, please submit again")
		}
		return nil, storeError(err, "failed to store registration")
	}
	s.metrics.IncRegistration(reg.EventID)

	if s.tickets != nil {
		if err := s.tickets.Schedule(ctx, reg.RegistrationID); err != nil {
			s.logger.Warn("ticket rendering not scheduled",
				zap.String("registration_id", reg.RegistrationID),
				zap.Error(err),
			)
		}
	}

	return &dto.RegistrationReceipt{
		RegistrationID: reg.RegistrationID,
		QRPayload:      reg.QRPayload,
		Status:         reg.Status,
		TicketStatus:   models.TicketPending,
	}, nil
}

// Get returns the admin view of one registration including its ticket link.
func (s *RegistrationService) Get(ctx context.Context, registrationID string) (*dto.RegistrationDetail, error) {
	reg, err := s.repo.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, storeError(err, "failed to load registration")
	}
	event, err := s.events.Get(ctx, reg.EventID)
	if err != nil {
		s.logger.Warn("event missing for registration", zap.String("registration_id", reg.RegistrationID), zap.Error(err))
		event = &models.Event{CustomID: reg.EventID}
	}
	detail := &dto.RegistrationDetail{RegistrationView: buildView(reg, event)}
	if s.tickets != nil {
		detail.Ticket = s.tickets.Link(ctx, reg)
	}
	return detail, nil
}

// List returns registrations for admin review.
func (s *RegistrationService) List(ctx context.Context, query dto.RegistrationQuery) ([]models.Registration, *models.Pagination, error) {
	filter := models.RegistrationFilter{
		EventID:   query.EventID,
		Search:    strings.TrimSpace(query.Search),
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" {
		status := models.RegistrationStatus(strings.ToUpper(query.Status))
		if !status.Valid() {
			return nil, nil, appErrors.Invalid("status", "status must be one of PENDING APPROVED REJECTED")
		}
		filter.Status = &status
	}

	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list registrations")
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return regs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus moves a registration between PENDING, APPROVED and REJECTED.
// The registration id is never changed.
func (s *RegistrationService) UpdateStatus(ctx context.Context, registrationID string, req dto.UpdateRegistrationStatusRequest, actor *models.JWTClaims) (*dto.RegistrationDetail, error) {
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}

	current, err := s.repo.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, storeError(err, "failed to load registration")
	}

	next := models.RegistrationStatus(req.Status)
	if current.Status != next {
		if err := s.repo.UpdateStatus(ctx, registrationID, next); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
			}
			return nil, storeError(err, "failed to update registration status")
		}
		s.recordAudit(ctx, actor, registrationID, current.Status, next)
	}

	return s.Get(ctx, registrationID)
}

func (s *RegistrationService) recordAudit(ctx context.Context, actor *models.JWTClaims, registrationID string, from, to models.RegistrationStatus) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(map[string]string{"status": string(from)})
	newValues, _ := json.Marshal(map[string]string{"status": string(to)})
	entry := &models.AuditLog{
		Action:     models.AuditActionRegistrationStatusChange,
		Resource:   "registration",
		ResourceID: &registrationID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if actor != nil {
		entry.UserID = &actor.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record status change audit log", zap.String("registration_id", registrationID), zap.Error(err))
	}
}

// buildPerson resolves the identity variant once, from the submission's
// student flag. Exactly one variant may be filled in: the fields it requires
// must be present and the other variant's fields must be empty.
func buildPerson(in dto.PersonInput, isGardenCityStudent bool, field string, leader bool) (models.Person, error) {
	p := models.Person{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
	if p.Name == "" {
		return p, appErrors.Invalid(field+".name", field+".name is required")
	}
	if leader {
		if p.Email == "" {
			return p, appErrors.Invalid(field+".email", field+".email is required")
		}
		if p.Phone == "" {
			return p, appErrors.Invalid(field+".phone", field+".phone is required")
		}
	}

	if isGardenCityStudent {
		reg := strings.TrimSpace(in.RegisterNumber)
		if reg == "" {
			return p, appErrors.Invalid(field+".registerNumber", field+".registerNumber is required for Garden City students")
		}
		if strings.TrimSpace(in.CollegeName) != "" {
			return p, appErrors.Invalid(field+".collegeName", field+".collegeName is only for external participants")
		}
		if strings.TrimSpace(in.CollegeRegisterNumber) != "" {
			return p, appErrors.Invalid(field+".collegeRegisterNumber", field+".collegeRegisterNumber is only for external participants")
		}
		p.Identity = models.InternalStudent{RegisterNumber: reg}
		return p, nil
	}

	if strings.TrimSpace(in.RegisterNumber) != "" {
		return p, appErrors.Invalid(field+".registerNumber", field+".registerNumber is only for Garden City students")
	}
	college := strings.TrimSpace(in.CollegeName)
	if college == "" {
		return p, appErrors.Invalid(field+".collegeName", field+".collegeName is required for external participants")
	}
	p.Identity = models.ExternalParticipant{
		CollegeName:           college,
		CollegeRegisterNumber: strings.TrimSpace(in.CollegeRegisterNumber),
	}
	return p, nil
}

// checkTeamSize enforces min <= 1+members <= max, and no members for
// Individual events.
func checkTeamSize(event models.Event, members int) error {
	if event.Type == models.EventTypeIndividual && members > 0 {
		return appErrors.Invalid("teamMembers", "individual events do not accept team members")
	}
	min, max := event.TeamBounds()
	total := 1 + members
	if total < min || total > max {
		return appErrors.Invalid("teamMembers", fmt.Sprintf("team size must be between %d and %d including the leader, got %d", min, max, total))
	}
	return nil
}

func buildView(reg *models.Registration, event *models.Event) dto.RegistrationView {
	members := reg.TeamMembers
	if members == nil {
		members = models.People{}
	}
	return dto.RegistrationView{
		RegistrationID:      reg.RegistrationID,
		EventID:             reg.EventID,
		Status:              reg.Status,
		IsGardenCityStudent: reg.IsGardenCityStudent,
		Leader:              reg.Leader,
		TeamMembers:         members,
		FinalEventDate:      reg.FinalEventDate,
		TicketStatus:        reg.TicketStatus,
		Event: dto.EventSummary{
			CustomID:   event.CustomID,
			Title:      event.Title,
			Category:   event.Category,
			Department: event.Department,
			Date:       event.Date,
			Time:       event.Time,
			Location:   event.Location,
		},
		CreatedAt: reg.CreatedAt,
	}
}
