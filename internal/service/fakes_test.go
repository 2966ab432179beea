package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/pkg/jobs"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

// memRegistrations is an in-memory registration store with a real sequence.
type memRegistrations struct {
	mu        sync.Mutex
	seq       int64
	byID      map[string]*models.Registration
	createErr error
	findErrs  []error
	finds     int
	writes    int
}

func newMemRegistrations() *memRegistrations {
	return &memRegistrations{byID: make(map[string]*models.Registration)}
}

func (m *memRegistrations) Create(ctx context.Context, reg *models.Registration, ident func(seq int64) (string, string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	reg.ID = fmt.Sprintf("row-%d", m.seq)
	reg.RegistrationID, reg.QRPayload = ident(m.seq)
	reg.CreatedAt = time.Now().UTC()
	reg.UpdatedAt = reg.CreatedAt
	stored := *reg
	m.byID[reg.RegistrationID] = &stored
	m.writes++
	return nil
}

func (m *memRegistrations) FindByRegistrationID(ctx context.Context, registrationID string) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if len(m.findErrs) > 0 {
		err := m.findErrs[0]
		m.findErrs = m.findErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	reg, ok := m.byID[registrationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *reg
	return &copied, nil
}

func (m *memRegistrations) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Registration
	for _, reg := range m.byID {
		if filter.EventID != "" && reg.EventID != filter.EventID {
			continue
		}
		if filter.Status != nil && reg.Status != *filter.Status {
			continue
		}
		out = append(out, *reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationID < out[j].RegistrationID })
	return out, len(out), nil
}

func (m *memRegistrations) UpdateStatus(ctx context.Context, registrationID string, status models.RegistrationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.byID[registrationID]
	if !ok {
		return sql.ErrNoRows
	}
	reg.Status = status
	m.writes++
	return nil
}

func (m *memRegistrations) UpdateTicket(ctx context.Context, registrationID string, status models.TicketStatus, path *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.byID[registrationID]
	if !ok {
		return sql.ErrNoRows
	}
	reg.TicketStatus = status
	reg.TicketPath = path
	m.writes++
	return nil
}

func (m *memRegistrations) ListTicketBacklog(ctx context.Context, limit int) ([]models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Registration
	for _, reg := range m.byID {
		if reg.TicketStatus == models.TicketPending && len(out) < limit {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m *memRegistrations) get(registrationID string) *models.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg := m.byID[registrationID]
	if reg == nil {
		return nil
	}
	copied := *reg
	return &copied
}

func (m *memRegistrations) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// staticCatalog serves a fixed set of events.
type staticCatalog map[string]models.Event

func (c staticCatalog) Get(ctx context.Context, customID string) (*models.Event, error) {
	event, ok := c[customID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return &event, nil
}

func testCatalog() staticCatalog {
	return staticCatalog{
		"EVT-SOLO": {
			CustomID: "EVT-SOLO", Title: "Solo Singing", Category: "Music", Type: models.EventTypeIndividual,
			Department: "Performing Arts", Date: "2025-03-14", Time: "10:00", Location: "Main Stage", RegistrationOpen: true,
		},
		"EVT-TEAM": {
			CustomID: "EVT-TEAM", Title: "Treasure Hunt", Category: "Adventure", Type: models.EventTypeGroup,
			TeamSizeMin: 2, TeamSizeMax: 4, Department: "Sports", Date: "2025-03-14", ExternalDate: "2025-03-15",
			Time: "14:00", Location: "Campus Grounds", RegistrationOpen: true,
		},
		"EVT-PARADE": {
			CustomID: "EVT-PARADE", Title: "Flash Mob", Category: "Dance", Type: models.EventTypeGroup,
			TeamSizeMin: 10, TeamSizeMax: 30, Date: "2025-03-15", RegistrationOpen: true,
		},
		"EVT-CLOSED": {
			CustomID: "EVT-CLOSED", Title: "Quiz", Type: models.EventTypeIndividual, RegistrationOpen: false,
		},
	}
}

type recordingAudit struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (a *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

type stubScheduler struct {
	mu        sync.Mutex
	scheduled []string
	err       error
}

func (s *stubScheduler) Schedule(ctx context.Context, registrationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, registrationID)
	return nil
}

func (s *stubScheduler) Link(ctx context.Context, reg *models.Registration) *dto.TicketLink {
	return &dto.TicketLink{RegistrationID: reg.RegistrationID, TicketStatus: reg.TicketStatus}
}

// memDecisions is an append-only decision store.
type memDecisions struct {
	mu        sync.Mutex
	rows      []models.EntryDecision
	createErr error
	creates   int
}

func (m *memDecisions) Create(ctx context.Context, decision *models.EntryDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	decision.ID = fmt.Sprintf("dec-%d", len(m.rows)+1)
	m.rows = append(m.rows, *decision)
	return nil
}

func (m *memDecisions) ListByRegID(ctx context.Context, regID string) ([]models.EntryDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EntryDecision
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].RegID == regID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memDecisions) List(ctx context.Context, filter models.EntryDecisionFilter) ([]models.EntryDecision, int, error) {
	rows, err := m.ListForExport(ctx, filter)
	return rows, len(rows), err
}

func (m *memDecisions) ListForExport(ctx context.Context, filter models.EntryDecisionFilter) ([]models.EntryDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EntryDecision
	for _, row := range m.rows {
		if filter.EventID != "" && row.EventID != filter.EventID {
			continue
		}
		if filter.Action != nil && row.Action != *filter.Action {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (d *fakeDispatcher) Enqueue(job jobs.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *fakeDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jobs)
}

func solo(name string) dto.SubmitRegistrationRequest {
	return dto.SubmitRegistrationRequest{
		EventID:             "EVT-SOLO",
		IsGardenCityStudent: true,
		Leader:              dto.PersonInput{Name: name, Email: "leader@example.com", Phone: "9000000000", RegisterNumber: "GCU1001"},
	}
}
