package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreLead(t *testing.T) {
	now := t0

	tests := []struct {
		name string
		lead Lead
		want int
	}{
		{
			name: "referral with trip, message and fresh",
			lead: Lead{Source: "referral", Trip: "bromo", Message: strings.Repeat("x", 120), CreatedAt: now.Add(-time.Minute)},
			want: 42,
		},
		{
			name: "whatsapp beats referral",
			lead: Lead{Source: "WhatsApp referral", CreatedAt: now.Add(-3 * time.Hour)},
			want: 25,
		},
		{name: "web", lead: Lead{Source: "website"}, want: 15},
		{name: "other source", lead: Lead{Source: "instagram"}, want: 13},
		{name: "bare", lead: Lead{}, want: 10},
		{
			name: "message bonus caps at ten",
			lead: Lead{Message: strings.Repeat("x", 5000)},
			want: 20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreLead(&tt.lead, now))
		})
	}
}

func TestLead_CurrentStageAndOverdue(t *testing.T) {
	l := Lead{}
	assert.Equal(t, StageNew, l.CurrentStage())
	assert.False(t, l.IsOverdue(t0))

	at := t0
	l.NextActionAt = &at
	assert.False(t, l.IsOverdue(t0), "due exactly now is not overdue")
	assert.True(t, l.IsOverdue(t0.Add(time.Second)))
}

func TestStage_Valid(t *testing.T) {
	for _, s := range Stages {
		assert.True(t, s.Valid())
	}
	assert.False(t, Stage("won").Valid())
	assert.False(t, Stage("").Valid())
}

func TestLeadPatch_MergeAndApply(t *testing.T) {
	at := t0.Add(time.Hour)
	stage := StageContacted
	reason := "too expensive"

	p := LeadPatch{NextActionAt: &at, LostReason: &reason}
	p = p.Merge(LeadPatch{Stage: &stage, ClearNextAction: true, ClearLostReason: true})

	assert.Nil(t, p.NextActionAt)
	assert.True(t, p.ClearNextAction)
	assert.Nil(t, p.LostReason)
	assert.False(t, p.IsEmpty())

	prev := t0
	l := p.Apply(Lead{Stage: StageLost, LostReason: "x", NextActionAt: &prev, Version: 7})
	assert.Equal(t, StageContacted, l.Stage)
	assert.Empty(t, l.LostReason)
	assert.Nil(t, l.NextActionAt)
	assert.Equal(t, 7, l.Version)

	assert.True(t, LeadPatch{}.IsEmpty())
}

func TestLeadPatch_ApplyCopiesPointers(t *testing.T) {
	score := 30
	p := LeadPatch{Score: &score}

	l := p.Apply(Lead{})
	score = 99

	require.NotNil(t, l.Score)
	assert.Equal(t, 30, *l.Score)
}
