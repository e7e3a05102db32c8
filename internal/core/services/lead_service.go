package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
	"github.com/srgjo27/tripdesk/internal/platform/validate"
)

// ownerAssignBatch caps how many unowned leads one assignment pass takes.
const ownerAssignBatch = 3

type ReminderPreset string

const (
	ReminderIn4Hours ReminderPreset = "4h"
	ReminderIn1Day   ReminderPreset = "1d"
	ReminderClear    ReminderPreset = "clear"
)

type LeadInput struct {
	Name       string `json:"name" validate:"max=120"`
	Phone      string `json:"phone" validate:"required_without=Email,max=40"`
	Email      string `json:"email" validate:"omitempty,email"`
	Message    string `json:"message" validate:"max=4000"`
	Source     string `json:"source" validate:"max=80"`
	Trip       string `json:"trip" validate:"max=80"`
	IsWhatsApp bool   `json:"is_whatsapp"`
}

type LeadView struct {
	domain.Lead
	Overdue bool `json:"overdue"`
}

type LeadServiceConfig struct {
	Owners []string
	// Rules run after domain.DefaultAutomationRules, so they can override
	// a default on the same field.
	Rules  []domain.AutomationRule
	Clock  clock.Clock
	Logger *slog.Logger
}

type LeadService struct {
	repo   ports.LeadRepository
	cursor ports.OwnerCursor
	owners []string
	rules  []domain.AutomationRule
	clock  clock.Clock
	log    *slog.Logger
	board  *LeadBoard

	posMu sync.Mutex
	spare []int64
}

func NewLeadService(repo ports.LeadRepository, cursor ports.OwnerCursor, cfg LeadServiceConfig) *LeadService {
	s := &LeadService{
		repo:   repo,
		cursor: cursor,
		owners: cfg.Owners,
		rules:  append(domain.DefaultAutomationRules(), cfg.Rules...),
		clock:  cfg.Clock,
		log:    cfg.Logger,
		board:  NewLeadBoard(),
	}
	if s.clock == nil {
		s.clock = clock.NewSystem()
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

func (s *LeadService) Board() []LeadView {
	return s.views(s.board.Snapshot())
}

// Capture stores a lead from any capture surface as stage new.
func (s *LeadService) Capture(ctx context.Context, in LeadInput) (*domain.Lead, error) {
	if errs := validate.Struct(in); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	now := s.clock.Now()
	lead := domain.Lead{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Message:    in.Message,
		Source:     strings.TrimSpace(in.Source),
		Trip:       strings.TrimSpace(in.Trip),
		IsWhatsApp: in.IsWhatsApp,
		CreatedAt:  now,
		Stage:      domain.StageNew,
		Version:    1,
		UpdatedAt:  now,
	}
	score := domain.ScoreLead(&lead, now)
	lead.Score = &score
	lead = domain.EvaluateRules(s.rules, lead, "", domain.StageNew, now).Apply(lead)

	if err := s.repo.Create(ctx, &lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.board.Put(lead)

	s.log.Info("lead captured", "lead_id", lead.ID, "source", lead.Source, "score", score)
	return &lead, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*LeadView, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*lead)
	return &v, nil
}

func (s *LeadService) List(ctx context.Context, filter domain.LeadFilter) ([]LeadView, error) {
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, domain.ErrInvalidStage
	}
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter == (domain.LeadFilter{}) {
		s.board.Replace(leads)
	}

	views := s.views(leads)
	if !filter.OnlyOverdue {
		return views, nil
	}
	overdue := views[:0]
	for _, v := range views {
		if v.Overdue {
			overdue = append(overdue, v)
		}
	}
	return overdue, nil
}

// UpdateStage moves a lead to stage, scoring it once if it has no score.
// Every automation rule matching the transition is merged into the same
// write, so the stage and its follow-ups commit or fail together.
// expectedVersion 0 means the version just read.
func (s *LeadService) UpdateStage(ctx context.Context, id string, stage domain.Stage, expectedVersion int) (*domain.Lead, error) {
	if !stage.Valid() {
		return nil, domain.ErrInvalidStage
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	from := lead.CurrentStage()

	patch := domain.LeadPatch{Stage: &stage}
	if lead.Score == nil {
		score := domain.ScoreLead(lead, now)
		patch.Score = &score
	}
	if stage != domain.StageLost && lead.LostReason != "" {
		patch.ClearLostReason = true
	}
	patch = patch.Merge(domain.EvaluateRules(s.rules, patch.Apply(*lead), from, stage, now))

	updated, err := s.write(ctx, lead, expectedVersion, patch)
	if err != nil {
		return nil, err
	}
	s.board.Put(*updated)

	s.log.Info("lead stage changed", "lead_id", id, "from", from, "to", stage)
	return updated, nil
}

// MarkLost sets stage lost and the reason in a single write.
func (s *LeadService) MarkLost(ctx context.Context, id, reason string, expectedVersion int) (*domain.Lead, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lost := domain.StageLost
	patch := domain.LeadPatch{Stage: &lost, LostReason: &reason}
	if lead.Score == nil {
		score := domain.ScoreLead(lead, s.clock.Now())
		patch.Score = &score
	}

	updated, err := s.write(ctx, lead, expectedVersion, patch)
	if err != nil {
		return nil, err
	}
	s.board.Put(*updated)

	s.log.Info("lead marked lost", "lead_id", id, "reason", reason)
	return updated, nil
}

func (s *LeadService) SetReminder(ctx context.Context, id string, preset ReminderPreset, expectedVersion int) (*domain.Lead, error) {
	var patch domain.LeadPatch
	now := s.clock.Now()
	switch preset {
	case ReminderIn4Hours:
		at := now.Add(4 * time.Hour)
		patch.NextActionAt = &at
	case ReminderIn1Day:
		at := now.Add(24 * time.Hour)
		patch.NextActionAt = &at
	case ReminderClear:
		patch.ClearNextAction = true
	default:
		return nil, domain.ErrInvalidPreset
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *domain.Lead
	err = s.board.Execute(ctx, s.board.PatchCommand(id, patch), func(ctx context.Context) error {
		var werr error
		updated, werr = s.write(ctx, lead, expectedVersion, patch)
		return werr
	})
	if err != nil {
		return nil, err
	}
	s.board.Put(*updated)
	return updated, nil
}

// MarkProcessed flags a lead as processed. Leads are never deleted.
func (s *LeadService) MarkProcessed(ctx context.Context, id string, expectedVersion int) (*domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	processed := true
	var updated *domain.Lead
	err = s.board.Execute(ctx, s.board.RemoveCommand(id), func(ctx context.Context) error {
		var werr error
		updated, werr = s.write(ctx, lead, expectedVersion, domain.LeadPatch{Processed: &processed})
		return werr
	})
	if err != nil {
		s.log.Warn("lead processed flag not saved, board restored", "lead_id", id, "error", err)
		return nil, err
	}
	return updated, nil
}

// AssignOwners gives up to ownerAssignBatch unowned leads the next owner
// in the rotation. The rotation position comes from a shared counter so
// concurrent operators continue one sequence.
func (s *LeadService) AssignOwners(ctx context.Context) (int, error) {
	if len(s.owners) == 0 {
		return 0, domain.ErrNoOwners
	}

	leads, err := s.repo.ListUnowned(ctx, ownerAssignBatch)
	if err != nil {
		return 0, fmt.Errorf("list unowned leads: %w", err)
	}

	assigned := 0
	for _, lead := range leads {
		pos, err := s.takePosition(ctx)
		if err != nil {
			return assigned, fmt.Errorf("owner rotation: %w", err)
		}
		owner := s.ownerAt(pos)

		updated, err := s.repo.Update(ctx, lead.ID, lead.Version, domain.LeadPatch{Owner: &owner})
		if err != nil {
			s.putBackPosition(pos)
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.Info("lead changed during owner assignment, skipping", "lead_id", lead.ID)
			continue
		}
		if err != nil {
			return assigned, fmt.Errorf("assign owner to lead %s: %w", lead.ID, err)
		}
		s.board.Put(*updated)
		assigned++
		s.log.Info("lead owner assigned", "lead_id", lead.ID, "owner", owner)
	}
	return assigned, nil
}

func (s *LeadService) RunOwnerAssignment(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	s.log.Info("lead owner assignment started", "interval", every, "owners", len(s.owners))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("lead owner assignment stopped")
			return
		case <-ticker.C:
			if _, err := s.AssignOwners(ctx); err != nil {
				s.log.Error("lead owner assignment failed", "error", err)
			}
		}
	}
}

// takePosition returns a rotation position left unused by a failed
// assignment before drawing a new one from the shared cursor.
func (s *LeadService) takePosition(ctx context.Context) (int64, error) {
	s.posMu.Lock()
	defer s.posMu.Unlock()
	if n := len(s.spare); n > 0 {
		pos := s.spare[0]
		s.spare = s.spare[1:]
		return pos, nil
	}
	return s.cursor.Next(ctx)
}

func (s *LeadService) putBackPosition(pos int64) {
	s.posMu.Lock()
	defer s.posMu.Unlock()
	s.spare = append([]int64{pos}, s.spare...)
}

// ownerAt maps a 1-based counter value onto the roster.
func (s *LeadService) ownerAt(pos int64) string {
	n := int64(len(s.owners))
	i := (pos - 1) % n
	if i < 0 {
		i += n
	}
	return s.owners[i]
}

func (s *LeadService) write(ctx context.Context, lead *domain.Lead, expectedVersion int, patch domain.LeadPatch) (*domain.Lead, error) {
	if expectedVersion == 0 {
		expectedVersion = lead.Version
	}
	updated, err := s.repo.Update(ctx, lead.ID, expectedVersion, patch)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *LeadService) view(l domain.Lead) LeadView {
	return LeadView{Lead: l, Overdue: l.IsOverdue(s.clock.Now())}
}

func (s *LeadService) views(leads []domain.Lead) []LeadView {
	out := make([]LeadView, 0, len(leads))
	for _, l := range leads {
		out = append(out, s.view(l))
	}
	return out
}

// ValidationError lists offending input fields and the rule each broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, tag := range e.Fields {
		parts = append(parts, f+":"+tag)
	}
	sort.Strings(parts)
	return "invalid input: " + strings.Join(parts, ", ")
}
