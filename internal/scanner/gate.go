package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
)

// ErrDebounced marks a decode ignored by the cooldown.
var ErrDebounced = errors.New("duplicate decode ignored")

// ErrBusy is returned when a scan arrives while a verification is outstanding.
var ErrBusy = errors.New("verification already in progress")

// API is the server surface the gate needs.
type API interface {
	Validate(ctx context.Context, payload string) (*dto.RegistrationView, error)
	RecordDecision(ctx context.Context, req dto.RecordDecisionRequest) (*models.EntryDecision, error)
}

// Gate drives a Session with operator input and server calls. Failures move
// the session to ERROR or leave it pending; nothing is retried on its own.
type Gate struct {
	api      API
	session  *Session
	cooldown *Cooldown
	logger   *zap.Logger
	now      func() time.Time

	// admit serialises the state check, cooldown and DECODE_SUCCESS of Scan.
	admit sync.Mutex

	mu        sync.Mutex
	current   *dto.RegistrationView
	scannedAt time.Time
	lastErr   error
}

// NewGate constructs a gate around api.
func NewGate(api API, cooldown *Cooldown, logger *zap.Logger) *Gate {
	if cooldown == nil {
		cooldown = NewCooldown(DefaultCooldown)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		api:      api,
		session:  NewSession(),
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// State exposes the session state.
func (g *Gate) State() State {
	return g.session.State()
}

// Current returns the verified registration awaiting a decision, if any.
func (g *Gate) Current() *dto.RegistrationView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// LastError returns the failure that put the session in ERROR.
func (g *Gate) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Start arms the scanner.
func (g *Gate) Start() error {
	_, err := g.session.Fire(EventStart)
	return err
}

// Scan verifies a decoded payload.
func (g *Gate) Scan(ctx context.Context, payload string) (*dto.RegistrationView, error) {
	payload = strings.TrimSpace(payload)
	scannedAt, err := g.admitScan()
	if err != nil {
		return nil, err
	}

	view, err := g.api.Validate(ctx, payload)
	if err != nil {
		g.fail(err)
		return nil, err
	}
	if _, err := g.session.Fire(EventVerified); err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.current = view
	g.scannedAt = scannedAt
	g.lastErr = nil
	g.mu.Unlock()

	g.logger.Info("credential verified",
		zap.String("registration_id", view.RegistrationID),
		zap.String("event_id", view.EventID),
		zap.String("status", string(view.Status)),
	)
	return view, nil
}

// admitScan moves SCANNING to PROCESSING for exactly one caller. Only the
// admitted decode is charged to the cooldown.
func (g *Gate) admitScan() (time.Time, error) {
	g.admit.Lock()
	defer g.admit.Unlock()

	switch g.session.State() {
	case StateProcessing:
		return time.Time{}, ErrBusy
	case StateScanning:
	default:
		return time.Time{}, ErrInvalidTransition
	}

	scannedAt := g.now()
	if !g.cooldown.Allow(scannedAt) {
		return time.Time{}, ErrDebounced
	}
	if _, err := g.session.Fire(EventDecodeSuccess); err != nil {
		return time.Time{}, err
	}
	return scannedAt, nil
}

// Allow records an ENTRY_ALLOWED decision for the verified registration.
func (g *Gate) Allow(ctx context.Context, reason string) (*models.EntryDecision, error) {
	return g.decide(ctx, EventOperatorAllows, "ALLOWED", reason)
}

// Deny records an ENTRY_DENIED decision for the verified registration.
func (g *Gate) Deny(ctx context.Context, reason string) (*models.EntryDecision, error) {
	return g.decide(ctx, EventOperatorDenies, "DENIED", reason)
}

func (g *Gate) decide(ctx context.Context, ev Event, action, reason string) (*models.EntryDecision, error) {
	if _, err := g.session.Fire(ev); err != nil {
		return nil, err
	}

	g.mu.Lock()
	view := g.current
	scannedAt := g.scannedAt
	g.mu.Unlock()
	if view == nil {
		return nil, ErrInvalidTransition
	}

	decision, err := g.api.RecordDecision(ctx, dto.RecordDecisionRequest{
		RegistrationID: view.RegistrationID,
		EventID:        view.EventID,
		Action:         action,
		Reason:         strings.TrimSpace(reason),
		ScannedAt:      &scannedAt,
	})
	if err != nil {
		g.mu.Lock()
		g.lastErr = err
		g.mu.Unlock()
		g.logger.Warn("decision not recorded", zap.String("registration_id", view.RegistrationID), zap.Error(err))
		return nil, err
	}

	if _, err := g.session.Fire(EventDecisionRecorded); err != nil {
		return nil, err
	}
	g.clear()
	return decision, nil
}

// Dismiss acknowledges an error and re-arms the scanner.
func (g *Gate) Dismiss() error {
	if _, err := g.session.Fire(EventDismiss); err != nil {
		return err
	}
	g.mu.Lock()
	g.lastErr = nil
	g.mu.Unlock()
	return nil
}

// Reset cancels whatever is in progress and returns to IDLE.
func (g *Gate) Reset() {
	_, _ = g.session.Fire(EventReset)
	g.cooldown.Reset()
	g.clear()
}

func (g *Gate) fail(err error) {
	_, _ = g.session.Fire(EventFailed)
	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()
	g.logger.Warn("credential rejected", zap.Error(err))
}

func (g *Gate) clear() {
	g.mu.Lock()
	g.current = nil
	g.scannedAt = time.Time{}
	g.lastErr = nil
	g.mu.Unlock()
}
