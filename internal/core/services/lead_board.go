package services

import (
	"context"
	"sort"
	"sync"

	"github.com/srgjo27/tripdesk/internal/core/domain"
)

// LeadBoard is the in-memory pipeline view served to operators. Changes
// are applied to it before the store confirms them and rolled back when
// the store refuses.
type LeadBoard struct {
	mu    sync.RWMutex
	leads map[string]domain.Lead
}

func NewLeadBoard() *LeadBoard {
	return &LeadBoard{leads: make(map[string]domain.Lead)}
}

type BoardCommand struct {
	Name  string
	apply func()
	undo  func()
}

func (b *LeadBoard) Put(l domain.Lead) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l.Processed {
		delete(b.leads, l.ID)
		return
	}
	b.leads[l.ID] = l
}

func (b *LeadBoard) Replace(leads []domain.Lead) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leads = make(map[string]domain.Lead, len(leads))
	for _, l := range leads {
		if !l.Processed {
			b.leads[l.ID] = l
		}
	}
}

// Snapshot returns the board newest first.
func (b *LeadBoard) Snapshot() []domain.Lead {
	b.mu.RLock()
	out := make([]domain.Lead, 0, len(b.leads))
	for _, l := range b.leads {
		out = append(out, l)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// RemoveCommand drops a lead from the board, restoring its previous entry
// on undo.
func (b *LeadBoard) RemoveCommand(id string) BoardCommand {
	var prev domain.Lead
	var had bool
	return BoardCommand{
		Name: "remove",
		apply: func() {
			b.mu.Lock()
			prev, had = b.leads[id]
			delete(b.leads, id)
			b.mu.Unlock()
		},
		undo: func() {
			if !had {
				return
			}
			b.mu.Lock()
			b.leads[id] = prev
			b.mu.Unlock()
		},
	}
}

func (b *LeadBoard) PatchCommand(id string, patch domain.LeadPatch) BoardCommand {
	var prev domain.Lead
	var had bool
	return BoardCommand{
		Name: "patch",
		apply: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			prev, had = b.leads[id]
			if had {
				b.leads[id] = patch.Apply(prev)
			}
		},
		undo: func() {
			if !had {
				return
			}
			b.mu.Lock()
			b.leads[id] = prev
			b.mu.Unlock()
		},
	}
}

// Execute applies cmd, runs commit and undoes cmd if commit fails.
func (b *LeadBoard) Execute(ctx context.Context, cmd BoardCommand, commit func(context.Context) error) error {
	cmd.apply()
	if err := commit(ctx); err != nil {
		cmd.undo()
		return err
	}
	return nil
}
