package domain

import "time"

type Trigger string

const TriggerStageChange Trigger = "stage_change"

// RuleMatch restricts a rule to transitions. An empty From matches any
// prior stage.
type RuleMatch struct {
	From Stage
	To   Stage
}

// RuleAction produces a partial update for a lead that just moved stage.
type RuleAction func(lead Lead, now time.Time) LeadPatch

type AutomationRule struct {
	Name    string
	Trigger Trigger
	When    RuleMatch
	Actions []RuleAction
}

func (r AutomationRule) Matches(from, to Stage) bool {
	if r.Trigger != TriggerStageChange {
		return false
	}
	if r.When.To != to {
		return false
	}
	return r.When.From == "" || r.When.From == from
}

// ScheduleIn sets the next reminder d after the transition.
func ScheduleIn(d time.Duration) RuleAction {
	return func(_ Lead, now time.Time) LeadPatch {
		at := now.Add(d)
		return LeadPatch{NextActionAt: &at}
	}
}

func ClearReminder() RuleAction {
	return func(Lead, time.Time) LeadPatch {
		return LeadPatch{ClearNextAction: true}
	}
}

func SetProcessed(v bool) RuleAction {
	return func(Lead, time.Time) LeadPatch {
		return LeadPatch{Processed: &v}
	}
}

func DefaultAutomationRules() []AutomationRule {
	return []AutomationRule{
		{
			Name:    "follow-up-after-contact",
			Trigger: TriggerStageChange,
			When:    RuleMatch{To: StageContacted},
			Actions: []RuleAction{ScheduleIn(24 * time.Hour)},
		},
		{
			Name:    "first-touch-for-new",
			Trigger: TriggerStageChange,
			When:    RuleMatch{To: StageNew},
			Actions: []RuleAction{ScheduleIn(2 * time.Hour)},
		},
	}
}

// EvaluateRules merges the actions of every rule matching from→to, in rule
// order; later rules win on overlapping fields.
func EvaluateRules(rules []AutomationRule, lead Lead, from, to Stage, now time.Time) LeadPatch {
	var patch LeadPatch
	for _, r := range rules {
		if !r.Matches(from, to) {
			continue
		}
		for _, act := range r.Actions {
			patch = patch.Merge(act(lead, now))
		}
	}
	return patch
}
