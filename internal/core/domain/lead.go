package domain

import (
	"strings"
	"time"
)

type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageBooked    Stage = "booked"
	StageLost      Stage = "lost"
)

var Stages = []Stage{StageNew, StageContacted, StageQualified, StageBooked, StageLost}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Lead is a captured prospective-customer contact moving through the
// sales pipeline. Version increments on every write.
type Lead struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Message      string     `json:"message"`
	Source       string     `json:"source"`
	Trip         string     `json:"trip,omitempty"`
	IsWhatsApp   bool       `json:"is_whatsapp"`
	CreatedAt    time.Time  `json:"created_at"`
	Processed    bool       `json:"processed"`
	Stage        Stage      `json:"stage"`
	Score        *int       `json:"score,omitempty"`
	Owner        string     `json:"owner,omitempty"`
	NextActionAt *time.Time `json:"next_action_at,omitempty"`
	LostReason   string     `json:"lost_reason,omitempty"`
	Version      int        `json:"version"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CurrentStage treats a missing stage as new.
func (l *Lead) CurrentStage() Stage {
	if l.Stage == "" {
		return StageNew
	}
	return l.Stage
}

// IsOverdue reports whether the reminder is strictly in the past.
func (l *Lead) IsOverdue(now time.Time) bool {
	return l.NextActionAt != nil && l.NextActionAt.Before(now)
}

const freshLeadWindow = 2 * time.Hour

// ScoreLead computes the deterministic lead score used when a lead has no
// persisted score yet.
func ScoreLead(l *Lead, now time.Time) int {
	score := 10

	src := strings.ToLower(l.Source)
	switch {
	case strings.Contains(src, "whatsapp"):
		score += 15
	case strings.Contains(src, "referral"):
		score += 20
	case strings.Contains(src, "web"):
		score += 5
	case src != "":
		score += 3
	}

	if l.Trip != "" {
		score += 5
	}

	score += min(10, len(l.Message)/50)

	if !l.CreatedAt.IsZero() && now.Sub(l.CreatedAt) < freshLeadWindow {
		score += 5
	}
	return score
}

// LeadPatch is a partial update. Nil fields are left untouched; the Clear
// flags null a field out.
type LeadPatch struct {
	Stage           *Stage
	Score           *int
	Owner           *string
	NextActionAt    *time.Time
	ClearNextAction bool
	LostReason      *string
	ClearLostReason bool
	Processed       *bool
}

func (p LeadPatch) IsEmpty() bool {
	return p.Stage == nil && p.Score == nil && p.Owner == nil &&
		p.NextActionAt == nil && !p.ClearNextAction &&
		p.LostReason == nil && !p.ClearLostReason && p.Processed == nil
}

// Merge overlays other onto p; fields set in other win.
func (p LeadPatch) Merge(other LeadPatch) LeadPatch {
	if other.Stage != nil {
		p.Stage = other.Stage
	}
	if other.Score != nil {
		p.Score = other.Score
	}
	if other.Owner != nil {
		p.Owner = other.Owner
	}
	if other.NextActionAt != nil {
		p.NextActionAt = other.NextActionAt
		p.ClearNextAction = false
	}
	if other.ClearNextAction {
		p.NextActionAt = nil
		p.ClearNextAction = true
	}
	if other.LostReason != nil {
		p.LostReason = other.LostReason
		p.ClearLostReason = false
	}
	if other.ClearLostReason {
		p.LostReason = nil
		p.ClearLostReason = true
	}
	if other.Processed != nil {
		p.Processed = other.Processed
	}
	return p
}

// Apply returns a copy of l with the patch applied. Version and UpdatedAt
// are owned by the store.
func (p LeadPatch) Apply(l Lead) Lead {
	if p.Stage != nil {
		l.Stage = *p.Stage
	}
	if p.Score != nil {
		v := *p.Score
		l.Score = &v
	}
	if p.Owner != nil {
		l.Owner = *p.Owner
	}
	if p.NextActionAt != nil {
		t := *p.NextActionAt
		l.NextActionAt = &t
	}
	if p.ClearNextAction {
		l.NextActionAt = nil
	}
	if p.LostReason != nil {
		l.LostReason = *p.LostReason
	}
	if p.ClearLostReason {
		l.LostReason = ""
	}
	if p.Processed != nil {
		l.Processed = *p.Processed
	}
	return l
}

type LeadFilter struct {
	Stage         Stage
	Owner         string
	OnlyOverdue   bool
	WithProcessed bool
	Limit         int
}
