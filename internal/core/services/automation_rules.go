package services

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/srgjo27/tripdesk/internal/core/domain"
)

type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name    string `yaml:"name"`
	Trigger string `yaml:"trigger"`
	When    struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	} `yaml:"when"`
	ScheduleIn    string `yaml:"schedule_in"`
	ClearReminder bool   `yaml:"clear_reminder"`
	SetProcessed  *bool  `yaml:"set_processed"`
}

// LoadAutomationRules parses a YAML rule list:
//
//	rules:
//	  - name: chase-qualified
//	    when: {to: qualified}
//	    schedule_in: 48h
func LoadAutomationRules(r io.Reader) ([]domain.AutomationRule, error) {
	var file rulesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode automation rules: %w", err)
	}

	rules := make([]domain.AutomationRule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		rule, err := entry.compile()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, entry.Name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func LoadAutomationRulesFile(path string) ([]domain.AutomationRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadAutomationRules(f)
}

func (s ruleEntry) compile() (domain.AutomationRule, error) {
	trigger := domain.Trigger(s.Trigger)
	if trigger == "" {
		trigger = domain.TriggerStageChange
	}
	if trigger != domain.TriggerStageChange {
		return domain.AutomationRule{}, fmt.Errorf("unsupported trigger %q", s.Trigger)
	}

	to := domain.Stage(s.When.To)
	if !to.Valid() {
		return domain.AutomationRule{}, fmt.Errorf("when.to: %w", domain.ErrInvalidStage)
	}
	from := domain.Stage(s.When.From)
	if from != "" && !from.Valid() {
		return domain.AutomationRule{}, fmt.Errorf("when.from: %w", domain.ErrInvalidStage)
	}

	rule := domain.AutomationRule{
		Name:    s.Name,
		Trigger: trigger,
		When:    domain.RuleMatch{From: from, To: to},
	}
	if s.ScheduleIn != "" {
		d, err := time.ParseDuration(s.ScheduleIn)
		if err != nil || d <= 0 {
			return domain.AutomationRule{}, fmt.Errorf("schedule_in %q is not a positive duration", s.ScheduleIn)
		}
		rule.Actions = append(rule.Actions, domain.ScheduleIn(d))
	}
	if s.ClearReminder {
		rule.Actions = append(rule.Actions, domain.ClearReminder())
	}
	if s.SetProcessed != nil {
		rule.Actions = append(rule.Actions, domain.SetProcessed(*s.SetProcessed))
	}
	if len(rule.Actions) == 0 {
		return domain.AutomationRule{}, fmt.Errorf("rule has no actions")
	}
	return rule, nil
}
