package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/credential"
	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type registrationReader interface {
	FindByRegistrationID(ctx context.Context, registrationID string) (*models.Registration, error)
}

// CredentialService resolves scanned QR payloads to registrations. It never
// writes.
type CredentialService struct {
	regs    registrationReader
	events  eventCatalog
	metrics *MetricsService
	logger  *zap.Logger
	retry   RetryPolicy
	chain   []credential.Parser
}

// NewCredentialService constructs the verifier.
func NewCredentialService(regs registrationReader, events eventCatalog, metrics *MetricsService, logger *zap.Logger, retry RetryPolicy) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialService{
		regs:    regs,
		events:  events,
		metrics: metrics,
		logger:  logger,
		retry:   retry.normalised(),
		chain:   credential.DefaultChain,
	}
}

// Validate decodes the payload and returns the live registration view.
// Undecodable input is MALFORMED_PAYLOAD, an unknown id NOT_FOUND.
func (s *CredentialService) Validate(ctx context.Context, payload string) (*dto.RegistrationView, error) {
	regID, ok := credential.DecodeWith(s.chain, payload)
	if !ok {
		s.metrics.IncValidation(ValidationOutcomeMalformed)
		return nil, appErrors.Clone(appErrors.ErrMalformedPayload, "")
	}

	reg, err := s.Lookup(ctx, regID)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrNotFound):
			s.metrics.IncValidation(ValidationOutcomeNotFound)
		case errors.Is(err, appErrors.ErrUnavailable):
			s.metrics.IncValidation(ValidationOutcomeUnavailable)
		}
		return nil, err
	}

	event, err := s.events.Get(ctx, reg.EventID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("registration references unknown event", zap.String("registration_id", reg.RegistrationID), zap.String("event_id", reg.EventID))
		event = &models.Event{CustomID: reg.EventID}
	}

	s.metrics.IncValidation(ValidationOutcomeOK)
	view := buildView(reg, event)
	return &view, nil
}

// Lookup loads a registration by public id, retrying transient store failures.
func (s *CredentialService) Lookup(ctx context.Context, regID string) (*models.Registration, error) {
	var reg *models.Registration
	start := time.Now()
	err := retryRead(ctx, s.retry, s.logger, "find_registration", func(ctx context.Context) error {
		found, err := s.regs.FindByRegistrationID(ctx, regID)
		if err != nil {
			return err
		}
		reg = found
		return nil
	})
	s.metrics.ObserveDBQuery("find_registration", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "not a valid credential for this event")
		}
		return nil, storeError(err, "failed to load registration")
	}
	return reg, nil
}
