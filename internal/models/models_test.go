package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTeamBounds(t *testing.T) {
	solo := Event{Type: EventTypeIndividual, TeamSizeMin: 2, TeamSizeMax: 5}
	min, max := solo.TeamBounds()
	assert.Equal(t, 1, min)
	assert.Equal(t, 1, max)

	group := Event{Type: EventTypeGroup, TeamSizeMin: 2, TeamSizeMax: 4}
	min, max = group.TeamBounds()
	assert.Equal(t, 2, min)
	assert.Equal(t, 4, max)
}

func TestEventFinalDate(t *testing.T) {
	ev := Event{Date: "2025-03-14", ExternalDate: "2025-03-15"}
	assert.Equal(t, "2025-03-14", ev.FinalDate(true))
	assert.Equal(t, "2025-03-15", ev.FinalDate(false))
	assert.Equal(t, "2025-03-14", Event{Date: "2025-03-14"}.FinalDate(false))
}

func TestPersonKeepsIdentityVariant(t *testing.T) {
	in := People{
		{Name: "Asha", Email: "asha@example.com", Phone: "999", Identity: InternalStudent{RegisterNumber: "22BCA001"}},
		{Name: "Ravi", Identity: ExternalParticipant{CollegeName: "St Joseph's"}},
	}
	raw, err := in.Value()
	require.NoError(t, err)

	var out People
	require.NoError(t, out.Scan(raw))
	require.Len(t, out, 2)
	assert.Equal(t, InternalStudent{RegisterNumber: "22BCA001"}, out[0].Identity)
	assert.Equal(t, ExternalParticipant{CollegeName: "St Joseph's"}, out[1].Identity)
	assert.Equal(t, "St Joseph's", out[1].IdentityLabel())
}

func TestPersonRejectsUnknownIdentity(t *testing.T) {
	var p Person
	err := json.Unmarshal([]byte(`{"name":"x","identityType":"ALIEN"}`), &p)
	assert.Error(t, err)
}

func TestPeopleValueNeverNull(t *testing.T) {
	var empty People
	raw, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw.([]byte)))
}

func TestParseDecisionAction(t *testing.T) {
	cases := map[string]DecisionAction{
		"ALLOWED":       ActionEntryAllowed,
		"denied":        ActionEntryDenied,
		"ENTRY_ALLOWED": ActionEntryAllowed,
		" entry_denied": ActionEntryDenied,
	}
	for raw, want := range cases {
		got, ok := ParseDecisionAction(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseDecisionAction("MAYBE")
	assert.False(t, ok)
}
