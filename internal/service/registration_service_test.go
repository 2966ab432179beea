package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/credential"
	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/internal/repository"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

func newTestRegistrationService(repo *memRegistrations, tickets ticketScheduler, audit auditLogWriter) *RegistrationService {
	return NewRegistrationService(repo, testCatalog(), tickets, audit, nil, nil, zap.NewNop(), RegistrationConfig{})
}

func members(n int) []dto.PersonInput {
	out := make([]dto.PersonInput, n)
	for i := range out {
		out[i] = dto.PersonInput{Name: fmt.Sprintf("Member %d", i+1), RegisterNumber: fmt.Sprintf("GCU2%03d", i)}
	}
	return out
}

func TestSubmitIndividualIssuesFormattedID(t *testing.T) {
	repo := newMemRegistrations()
	tickets := &stubScheduler{}
	svc := newTestRegistrationService(repo, tickets, nil)

	receipt, err := svc.Submit(context.Background(), solo("Asha"))
	require.NoError(t, err)
	assert.Equal(t, "GDN2025-0001", receipt.RegistrationID)
	assert.Equal(t, models.RegistrationPending, receipt.Status)
	assert.Equal(t, models.TicketPending, receipt.TicketStatus)
	assert.Equal(t, []string{"GDN2025-0001"}, tickets.scheduled)

	id, ok := credential.Decode(receipt.QRPayload)
	require.True(t, ok)
	assert.Equal(t, receipt.RegistrationID, id)

	stored := repo.get("GDN2025-0001")
	require.NotNil(t, stored)
	assert.Equal(t, "2025-03-14", stored.FinalEventDate)
	assert.Equal(t, models.IdentityInternalStudent, stored.Leader.Identity.Kind())
	assert.Empty(t, stored.TeamMembers)
}

func TestSubmitExternalGroupUsesExternalDate(t *testing.T) {
	repo := newMemRegistrations()
	svc := newTestRegistrationService(repo, nil, nil)

	receipt, err := svc.Submit(context.Background(), dto.SubmitRegistrationRequest{
		EventID: "EVT-TEAM",
		Leader:  dto.PersonInput{Name: "Ravi", Email: "ravi@college.test", Phone: "9111111111", CollegeName: "City College", CollegeRegisterNumber: "CC-77"},
		TeamMembers: []dto.PersonInput{
			{Name: "Meera", CollegeName: "City College"},
		},
	})
	require.NoError(t, err)

	stored := repo.get(receipt.RegistrationID)
	require.NotNil(t, stored)
	assert.Equal(t, "2025-03-15", stored.FinalEventDate)
	assert.Equal(t, 2, stored.ParticipantCount())
	assert.Equal(t, models.IdentityExternalParticipant, stored.TeamMembers[0].Identity.Kind())
}

func TestSubmitConcurrentIDsAreUnique(t *testing.T) {
	repo := newMemRegistrations()
	svc := newTestRegistrationService(repo, nil, nil)

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			receipt, err := svc.Submit(context.Background(), solo(fmt.Sprintf("Runner %d", i)))
			if assert.NoError(t, err) {
				ids <- receipt.RegistrationID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestSubmitTeamSizeBounds(t *testing.T) {
	cases := []struct {
		name    string
		event   string
		members int
		ok      bool
	}{
		{"group below minimum", "EVT-TEAM", 0, false},
		{"group at minimum", "EVT-TEAM", 1, true},
		{"group at maximum", "EVT-TEAM", 3, true},
		{"group above maximum", "EVT-TEAM", 4, false},
		{"individual alone", "EVT-SOLO", 0, true},
		{"individual with member", "EVT-SOLO", 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRegistrations()
			svc := newTestRegistrationService(repo, nil, nil)
			req := solo("Lead")
			req.EventID = tc.event
			req.TeamMembers = members(tc.members)

			_, err := svc.Submit(context.Background(), req)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, 1, repo.writeCount())
				return
			}
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, "teamMembers", appErr.Field)
			assert.Zero(t, repo.writeCount())
		})
	}
}

func TestSubmitRejectsInvalidForms(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.SubmitRegistrationRequest)
		code   string
		field  string
	}{
		{"missing leader email", func(r *dto.SubmitRegistrationRequest) { r.Leader.Email = "" }, appErrors.ErrValidation.Code, "leader.email"},
		{"bad leader email", func(r *dto.SubmitRegistrationRequest) { r.Leader.Email = "nope" }, appErrors.ErrValidation.Code, "leader.email"},
		{"missing leader phone", func(r *dto.SubmitRegistrationRequest) { r.Leader.Phone = " " }, appErrors.ErrValidation.Code, "leader.phone"},
		{"student without register number", func(r *dto.SubmitRegistrationRequest) { r.Leader.RegisterNumber = "" }, appErrors.ErrValidation.Code, "leader.registerNumber"},
		{"external without college", func(r *dto.SubmitRegistrationRequest) {
			r.IsGardenCityStudent = false
			r.Leader.RegisterNumber = ""
		}, appErrors.ErrValidation.Code, "leader.collegeName"},
		{"student with college name", func(r *dto.SubmitRegistrationRequest) { r.Leader.CollegeName = "City College" }, appErrors.ErrValidation.Code, "leader.collegeName"},
		{"student with college register number", func(r *dto.SubmitRegistrationRequest) { r.Leader.CollegeRegisterNumber = "CC-77" }, appErrors.ErrValidation.Code, "leader.collegeRegisterNumber"},
		{"external with register number", func(r *dto.SubmitRegistrationRequest) {
			r.IsGardenCityStudent = false
			r.Leader.CollegeName = "City College"
			r.Leader.CollegeRegisterNumber = "CC-77"
		}, appErrors.ErrValidation.Code, "leader.registerNumber"},
		{"team member with both identities", func(r *dto.SubmitRegistrationRequest) {
			r.EventID = "EVT-TEAM"
			r.TeamMembers = []dto.PersonInput{{Name: "Meera", RegisterNumber: "GCU1002", CollegeName: "City College"}}
		}, appErrors.ErrValidation.Code, "teamMembers[0].collegeName"},
		{"closed event", func(r *dto.SubmitRegistrationRequest) { r.EventID = "EVT-CLOSED" }, appErrors.ErrValidation.Code, "eventId"},
		{"unknown event", func(r *dto.SubmitRegistrationRequest) { r.EventID = "EVT-NOPE" }, appErrors.ErrNotFound.Code, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRegistrations()
			svc := newTestRegistrationService(repo, nil, nil)
			req := solo("Lead")
			tc.mutate(&req)

			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, tc.field, appErr.Field)
			assert.Zero(t, repo.writeCount())
		})
	}
}

func TestSubmitLargeTeamUpToEventMaximum(t *testing.T) {
	repo := newMemRegistrations()
	svc := newTestRegistrationService(repo, nil, nil)

	team := func(n int) dto.SubmitRegistrationRequest {
		req := solo("Lead")
		req.EventID = "EVT-PARADE"
		for i := 0; i < n; i++ {
			req.TeamMembers = append(req.TeamMembers, dto.PersonInput{Name: fmt.Sprintf("Dancer %d", i+1), RegisterNumber: fmt.Sprintf("GCU2%03d", i)})
		}
		return req
	}

	receipt, err := svc.Submit(context.Background(), team(29))
	require.NoError(t, err)
	assert.Equal(t, 30, repo.get(receipt.RegistrationID).ParticipantCount())

	_, err = svc.Submit(context.Background(), team(30))
	require.Error(t, err)
	assert.Equal(t, "teamMembers", appErrors.FromError(err).Field)
}

func TestSubmitSurvivesSchedulingFailure(t *testing.T) {
	repo := newMemRegistrations()
	svc := newTestRegistrationService(repo, &stubScheduler{err: errors.New("queue full")}, nil)

	receipt, err := svc.Submit(context.Background(), solo("Asha"))
	require.NoError(t, err)
	assert.Equal(t, models.TicketPending, receipt.TicketStatus)
}

func TestSubmitDuplicateIDIsConflict(t *testing.T) {
	repo := newMemRegistrations()
	repo.createErr = fmt.Errorf("insert registration: %w", repository.ErrDuplicateRegistrationID)
	svc := newTestRegistrationService(repo, nil, nil)

	_, err := svc.Submit(context.Background(), solo("Asha"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusAuditsChange(t *testing.T) {
	repo := newMemRegistrations()
	audit := &recordingAudit{}
	svc := newTestRegistrationService(repo, &stubScheduler{}, audit)
	receipt, err := svc.Submit(context.Background(), solo("Asha"))
	require.NoError(t, err)

	actor := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	detail, err := svc.UpdateStatus(context.Background(), receipt.RegistrationID, dto.UpdateRegistrationStatusRequest{Status: "approved"}, actor)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationApproved, detail.Status)
	assert.Equal(t, receipt.RegistrationID, detail.RegistrationID)
	require.NotNil(t, detail.Ticket)
	require.Len(t, audit.logs, 1)
	assert.JSONEq(t, `{"status":"PENDING"}`, string(audit.logs[0].OldValues))
	assert.Equal(t, "admin-1", *audit.logs[0].UserID)

	_, err = svc.UpdateStatus(context.Background(), receipt.RegistrationID, dto.UpdateRegistrationStatusRequest{Status: "APPROVED"}, actor)
	require.NoError(t, err)
	assert.Len(t, audit.logs, 1)

	_, err = svc.UpdateStatus(context.Background(), receipt.RegistrationID, dto.UpdateRegistrationStatusRequest{Status: "ARCHIVED"}, actor)
	require.Error(t, err)
	assert.Equal(t, "status", appErrors.FromError(err).Field)

	_, err = svc.UpdateStatus(context.Background(), "GDN2025-9999", dto.UpdateRegistrationStatusRequest{Status: "APPROVED"}, actor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newTestRegistrationService(newMemRegistrations(), nil, nil)

	_, _, err := svc.List(context.Background(), dto.RegistrationQuery{Status: "LOST"})
	require.Error(t, err)
	assert.Equal(t, "status", appErrors.FromError(err).Field)

	regs, page, err := svc.List(context.Background(), dto.RegistrationQuery{})
	require.NoError(t, err)
	assert.NotNil(t, regs)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}
