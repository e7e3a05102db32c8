package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRules_ContactedFromAnyStage(t *testing.T) {
	rules := DefaultAutomationRules()

	for _, from := range Stages {
		p := EvaluateRules(rules, Lead{}, from, StageContacted, t0)
		require.NotNil(t, p.NextActionAt, "from %s", from)
		assert.WithinDuration(t, t0.Add(24*time.Hour), *p.NextActionAt, time.Second)
	}
}

func TestEvaluateRules_NoMatch(t *testing.T) {
	p := EvaluateRules(DefaultAutomationRules(), Lead{}, StageContacted, StageQualified, t0)
	assert.True(t, p.IsEmpty())
}

func TestEvaluateRules_LaterRuleWins(t *testing.T) {
	rules := []AutomationRule{
		{Name: "a", Trigger: TriggerStageChange, When: RuleMatch{To: StageBooked}, Actions: []RuleAction{ScheduleIn(time.Hour)}},
		{Name: "b", Trigger: TriggerStageChange, When: RuleMatch{From: StageQualified, To: StageBooked}, Actions: []RuleAction{ClearReminder(), SetProcessed(true)}},
	}

	p := EvaluateRules(rules, Lead{}, StageQualified, StageBooked, t0)
	assert.Nil(t, p.NextActionAt)
	assert.True(t, p.ClearNextAction)
	require.NotNil(t, p.Processed)
	assert.True(t, *p.Processed)

	p = EvaluateRules(rules, Lead{}, StageNew, StageBooked, t0)
	require.NotNil(t, p.NextActionAt)
	assert.Equal(t, t0.Add(time.Hour), *p.NextActionAt)
}

func TestAutomationRule_Matches(t *testing.T) {
	r := AutomationRule{Trigger: TriggerStageChange, When: RuleMatch{From: StageNew, To: StageContacted}}
	assert.True(t, r.Matches(StageNew, StageContacted))
	assert.False(t, r.Matches(StageQualified, StageContacted))

	r.Trigger = "created"
	assert.False(t, r.Matches(StageNew, StageContacted))
}
