package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/pkg/export"
	"github.com/noah-isme/gardenia-api/pkg/jobs"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

// TicketJobType identifies ticket render jobs on the queue.
const TicketJobType = "ticket.render"

const (
	ticketRenderOK     = "ok"
	ticketRenderError  = "error"
	ticketRenderFailed = "failed"
)

type ticketStore interface {
	FindByRegistrationID(ctx context.Context, registrationID string) (*models.Registration, error)
	UpdateTicket(ctx context.Context, registrationID string, status models.TicketStatus, path *string) error
	ListTicketBacklog(ctx context.Context, limit int) ([]models.Registration, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	Delete(filename string) error
}

type ticketRenderer interface {
	Render(t export.Ticket) ([]byte, error)
}

type urlSigner interface {
	Generate(registrationID, relPath string) (string, time.Time, error)
	Parse(token string) (registrationID, relPath string, expiresAt time.Time, err error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
	Pending() int
}

// TicketConfig tunes ticket links.
type TicketConfig struct {
	APIPrefix    string
	BacklogLimit int
}

// TicketDownload is a resolved ticket document.
type TicketDownload struct {
	Filename string
	Data     []byte
}

// TicketService renders registration tickets in the background and serves
// signed downloads. A registration is stored before its ticket exists.
type TicketService struct {
	regs     ticketStore
	events   eventCatalog
	storage  fileStorage
	renderer ticketRenderer
	signer   urlSigner
	audit    auditLogWriter
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      TicketConfig
	queue    jobDispatcher
}

// NewTicketService constructs the ticket pipeline. Call UseQueue before
// scheduling work.
func NewTicketService(regs ticketStore, events eventCatalog, storage fileStorage, renderer ticketRenderer, signer urlSigner, audit auditLogWriter, metrics *MetricsService, logger *zap.Logger, cfg TicketConfig) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewTicketRenderer("")
	}
	if cfg.BacklogLimit <= 0 {
		cfg.BacklogLimit = 500
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	return &TicketService{
		regs:     regs,
		events:   events,
		storage:  storage,
		renderer: renderer,
		signer:   signer,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// UseQueue attaches the dispatcher whose handler is HandleJob.
func (s *TicketService) UseQueue(queue jobDispatcher) {
	s.queue = queue
}

// Schedule enqueues a render for the registration.
func (s *TicketService) Schedule(ctx context.Context, registrationID string) error {
	if s.queue == nil {
		return fmt.Errorf("ticket queue not configured")
	}
	err := s.queue.Enqueue(jobs.Job{ID: registrationID, Type: TicketJobType, Payload: registrationID})
	s.metrics.SetTicketBacklog(s.queue.Pending())
	return err
}

// HandleJob renders one ticket. Returned errors are retried by the queue.
func (s *TicketService) HandleJob(ctx context.Context, job jobs.Job) error {
	registrationID, _ := job.Payload.(string)
	if registrationID == "" {
		registrationID = job.ID
	}
	if s.queue != nil {
		s.metrics.SetTicketBacklog(s.queue.Pending())
	}

	reg, err := s.regs.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("ticket job for unknown registration dropped", zap.String("registration_id", registrationID))
			return nil
		}
		return err
	}
	if err := s.Render(ctx, reg); err != nil {
		s.metrics.IncTicketRender(ticketRenderError)
		return err
	}
	s.metrics.IncTicketRender(ticketRenderOK)
	return nil
}

// Render draws the ticket, stores it and marks the registration READY.
func (s *TicketService) Render(ctx context.Context, reg *models.Registration) error {
	event, err := s.events.Get(ctx, reg.EventID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			return err
		}
		event = &models.Event{CustomID: reg.EventID}
	}

	data, err := s.renderer.Render(ticketDocument(reg, event))
	if err != nil {
		return fmt.Errorf("render ticket %s: %w", reg.RegistrationID, err)
	}
	path, err := s.storage.Save(reg.RegistrationID+".pdf", data)
	if err != nil {
		return fmt.Errorf("store ticket %s: %w", reg.RegistrationID, err)
	}
	if err := s.regs.UpdateTicket(ctx, reg.RegistrationID, models.TicketReady, &path); err != nil {
		return fmt.Errorf("mark ticket ready %s: %w", reg.RegistrationID, err)
	}
	s.logger.Info("ticket rendered", zap.String("registration_id", reg.RegistrationID), zap.Int("bytes", len(data)))
	return nil
}

// MarkFailed is the queue's exhaustion hook.
func (s *TicketService) MarkFailed(ctx context.Context, job jobs.Job, cause error) {
	registrationID, _ := job.Payload.(string)
	if registrationID == "" {
		registrationID = job.ID
	}
	s.metrics.IncTicketRender(ticketRenderFailed)
	if err := s.regs.UpdateTicket(context.WithoutCancel(ctx), registrationID, models.TicketFailed, nil); err != nil {
		s.logger.Error("failed to mark ticket failed", zap.String("registration_id", registrationID), zap.Error(err))
		return
	}
	s.logger.Warn("ticket rendering gave up", zap.String("registration_id", registrationID), zap.Error(cause))
}

// Link returns the ticket state and, once READY, a signed download URL.
func (s *TicketService) Link(ctx context.Context, reg *models.Registration) *dto.TicketLink {
	link := &dto.TicketLink{RegistrationID: reg.RegistrationID, TicketStatus: reg.TicketStatus}
	if reg.TicketStatus != models.TicketReady || reg.TicketPath == nil || s.signer == nil {
		return link
	}
	token, expiresAt, err := s.signer.Generate(reg.RegistrationID, *reg.TicketPath)
	if err != nil {
		s.logger.Warn("failed to sign ticket link", zap.String("registration_id", reg.RegistrationID), zap.Error(err))
		return link
	}
	link.DownloadURL = s.cfg.APIPrefix + "/tickets/" + token
	link.ExpiresAt = &expiresAt
	return link
}

// Download resolves a signed token to the stored ticket.
func (s *TicketService) Download(ctx context.Context, token string) (*TicketDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "tickets are disabled")
	}
	registrationID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}

	reg, err := s.regs.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, storeError(err, "failed to load registration")
	}
	if reg.TicketStatus != models.TicketReady || reg.TicketPath == nil || *reg.TicketPath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "ticket no longer available")
	}

	data, err := s.storage.Read(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read ticket")
	}
	return &TicketDownload{Filename: "gardenia-ticket-" + reg.RegistrationID + ".pdf", Data: data}, nil
}

// Requeue discards the current ticket and renders it again.
func (s *TicketService) Requeue(ctx context.Context, registrationID string, actor *models.JWTClaims) (*dto.TicketLink, error) {
	reg, err := s.regs.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, storeError(err, "failed to load registration")
	}
	previous := reg.TicketStatus
	if err := s.regs.UpdateTicket(ctx, reg.RegistrationID, models.TicketPending, nil); err != nil {
		return nil, storeError(err, "failed to reset ticket")
	}
	if reg.TicketPath != nil {
		if err := s.storage.Delete(*reg.TicketPath); err != nil {
			s.logger.Warn("failed to delete stale ticket", zap.String("registration_id", reg.RegistrationID), zap.Error(err))
		}
	}
	if err := s.Schedule(ctx, reg.RegistrationID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "ticket queue is busy, please retry")
	}

	if s.audit != nil {
		oldValues, _ := json.Marshal(map[string]string{"ticketStatus": string(previous)})
		newValues, _ := json.Marshal(map[string]string{"ticketStatus": string(models.TicketPending)})
		entry := &models.AuditLog{
			Action:     models.AuditActionTicketRequeue,
			Resource:   "registration",
			ResourceID: &reg.RegistrationID,
			OldValues:  oldValues,
			NewValues:  newValues,
		}
		if actor != nil {
			entry.UserID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record requeue audit log", zap.Error(err))
		}
	}
	return &dto.TicketLink{RegistrationID: reg.RegistrationID, TicketStatus: models.TicketPending}, nil
}

// ResumeBacklog re-enqueues tickets left PENDING by a previous process.
func (s *TicketService) ResumeBacklog(ctx context.Context) int {
	backlog, err := s.regs.ListTicketBacklog(ctx, s.cfg.BacklogLimit)
	if err != nil {
		s.logger.Warn("failed to load ticket backlog", zap.Error(err))
		return 0
	}
	scheduled := 0
	for _, reg := range backlog {
		if err := s.Schedule(ctx, reg.RegistrationID); err != nil {
			s.logger.Warn("failed to resume ticket", zap.String("registration_id", reg.RegistrationID), zap.Error(err))
			continue
		}
		scheduled++
	}
	if scheduled > 0 {
		s.logger.Info("ticket backlog resumed", zap.Int("count", scheduled))
	}
	return scheduled
}

func ticketDocument(reg *models.Registration, event *models.Event) export.Ticket {
	t := export.Ticket{
		RegistrationID: reg.RegistrationID,
		QRPayload:      reg.QRPayload,
		Status:         string(reg.Status),
		EventTitle:     event.Title,
		Category:       event.Category,
		Department:     event.Department,
		Date:           reg.FinalEventDate,
		Time:           event.Time,
		Location:       event.Location,
		Leader:         export.TicketPerson{Name: reg.Leader.Name, Identity: reg.Leader.IdentityLabel()},
		LeaderEmail:    reg.Leader.Email,
		LeaderPhone:    reg.Leader.Phone,
	}
	if t.EventTitle == "" {
		t.EventTitle = reg.EventID
	}
	if t.Date == "" {
		t.Date = event.Date
	}
	for _, m := range reg.TeamMembers {
		t.Members = append(t.Members, export.TicketPerson{Name: m.Name, Identity: m.IdentityLabel()})
	}
	return t
}
