package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/tripdesk/internal/core/domain"
)

const sampleRules = `
rules:
  - name: chase-contacted
    when: {to: contacted}
    schedule_in: 24h
  - name: close-booked
    trigger: stage_change
    when: {from: qualified, to: booked}
    clear_reminder: true
    set_processed: true
`

func TestLoadAutomationRules(t *testing.T) {
	rules, err := LoadAutomationRules(strings.NewReader(sampleRules))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "chase-contacted", rules[0].Name)
	assert.Equal(t, domain.TriggerStageChange, rules[0].Trigger)

	p := domain.EvaluateRules(rules, domain.Lead{}, domain.StageNew, domain.StageContacted, flowStart)
	require.NotNil(t, p.NextActionAt)
	assert.Equal(t, flowStart.Add(24*time.Hour), *p.NextActionAt)

	p = domain.EvaluateRules(rules, domain.Lead{}, domain.StageQualified, domain.StageBooked, flowStart)
	assert.True(t, p.ClearNextAction)
	require.NotNil(t, p.Processed)
	assert.True(t, *p.Processed)
}

func TestLoadAutomationRules_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown stage":   "rules:\n  - when: {to: won}\n    schedule_in: 1h\n",
		"unknown trigger": "rules:\n  - trigger: created\n    when: {to: new}\n    schedule_in: 1h\n",
		"bad duration":    "rules:\n  - when: {to: new}\n    schedule_in: soon\n",
		"no actions":      "rules:\n  - when: {to: new}\n",
		"unknown field":   "rules:\n  - when: {to: new}\n    schedule_in: 1h\n    notify: true\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAutomationRules(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadAutomationRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))

	rules, err := LoadAutomationRulesFile(path)

	require.NoError(t, err)
	assert.Len(t, rules, 2)

	_, err = LoadAutomationRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
