package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
)

const leadColumns = `id, name, phone, email, message, source, trip, is_whatsapp, created_at,
	processed, stage, score, owner, next_action_at, lost_reason, version, updated_at`

const defaultListLimit = 200

var _ ports.LeadRepository = (*LeadRepository)(nil)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `
	INSERT INTO leads (id, name, phone, email, message, source, trip, is_whatsapp, created_at,
		processed, stage, score, owner, next_action_at, lost_reason, version, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	var score sql.NullInt64
	if lead.Score != nil {
		score = sql.NullInt64{Int64: int64(*lead.Score), Valid: true}
	}
	var nextAction sql.NullTime
	if lead.NextActionAt != nil {
		nextAction = sql.NullTime{Time: *lead.NextActionAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Message, lead.Source, lead.Trip,
		lead.IsWhatsApp, lead.CreatedAt, lead.Processed, string(lead.CurrentStage()), score,
		lead.Owner, nextAction, lead.LostReason, lead.Version, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", mapPQError(err))
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, mapPQError(err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.WithProcessed {
		where = append(where, "processed = FALSE")
	}
	if filter.Stage != "" {
		where = append(where, "stage = "+arg(string(filter.Stage)))
	}
	if filter.Owner != "" {
		where = append(where, "owner = "+arg(filter.Owner))
	}
	if filter.OnlyOverdue {
		where = append(where, "next_action_at < NOW()")
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ` + arg(limit)

	return r.query(ctx, query, args...)
}

func (r *LeadRepository) ListUnowned(ctx context.Context, limit int) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
	WHERE owner = '' AND processed = FALSE
	ORDER BY created_at ASC
	LIMIT $1`

	return r.query(ctx, query, limit)
}

// Update writes patch only when the row still carries expectedVersion,
// bumping the version. A miss is reported as ErrVersionConflict when the
// row exists and ErrLeadNotFound when it does not.
func (r *LeadRepository) Update(ctx context.Context, id string, expectedVersion int, patch domain.LeadPatch) (*domain.Lead, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Stage != nil {
		set("stage", string(*patch.Stage))
	}
	if patch.Score != nil {
		set("score", *patch.Score)
	}
	if patch.Owner != nil {
		set("owner", *patch.Owner)
	}
	if patch.NextActionAt != nil {
		set("next_action_at", *patch.NextActionAt)
	} else if patch.ClearNextAction {
		sets = append(sets, "next_action_at = NULL")
	}
	if patch.LostReason != nil {
		set("lost_reason", *patch.LostReason)
	} else if patch.ClearLostReason {
		sets = append(sets, "lost_reason = ''")
	}
	if patch.Processed != nil {
		set("processed", *patch.Processed)
	}
	sets = append(sets, "version = version + 1", "updated_at = NOW()")

	args = append(args, id, expectedVersion)
	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d AND version = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), leadColumns)

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, args...))
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update lead: %w", mapPQError(err))
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("update lead: %w", mapPQError(err))
	}
	if !exists {
		return nil, domain.ErrLeadNotFound
	}
	return nil, domain.ErrVersionConflict
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPQError(err)
	}
	return leads, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var lead domain.Lead
	var stage string
	var score sql.NullInt64
	var nextAction sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.Message,
		&lead.Source,
		&lead.Trip,
		&lead.IsWhatsApp,
		&lead.CreatedAt,
		&lead.Processed,
		&stage,
		&score,
		&lead.Owner,
		&nextAction,
		&lead.LostReason,
		&lead.Version,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Stage = domain.Stage(stage)
	if score.Valid {
		v := int(score.Int64)
		lead.Score = &v
	}
	if nextAction.Valid {
		t := nextAction.Time
		lead.NextActionAt = &t
	}
	return &lead, nil
}

// mapPQError turns connection failures and constraint violations into
// domain errors.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08":
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		case "23":
			if pqErr.Code == "23514" {
				return fmt.Errorf("%w: %s", domain.ErrInvalidStage, pqErr.Message)
			}
		}
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
