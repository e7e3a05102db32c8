package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/tripdesk/internal/core/domain"
)

var (
	created = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	updated = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
)

var leadCols = []string{"id", "name", "phone", "email", "message", "source", "trip", "is_whatsapp", "created_at",
	"processed", "stage", "score", "owner", "next_action_at", "lost_reason", "version", "updated_at"}

func leadRow(id, stage string, score any, version int) []driver.Value {
	return []driver.Value{id, "Rina", "0812", "rina@example.com", "hi", "web", "bromo", false, created,
		false, stage, score, "", nil, "", version, updated}
}

func newRepo(t *testing.T) (*LeadRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewLeadRepository(db), mock
}

func TestLeadRepository_GetByID(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE id = $1")).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows(leadCols).AddRow(leadRow("lead-1", "contacted", int64(27), 3)...))

	lead, err := repo.GetByID(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageContacted, lead.Stage)
	require.NotNil(t, lead.Score)
	assert.Equal(t, 27, *lead.Score)
	assert.Nil(t, lead.NextActionAt)
	assert.Equal(t, 3, lead.Version)
}

func TestLeadRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leads WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(leadCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
}

func TestLeadRepository_Update_CompareAndSwap(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE leads SET stage = $1, score = $2, lost_reason = '', version = version + 1, updated_at = NOW() WHERE id = $3 AND version = $4")).
		WithArgs("contacted", 30, "lead-1", 2).
		WillReturnRows(sqlmock.NewRows(leadCols).AddRow(leadRow("lead-1", "contacted", int64(30), 3)...))

	stage := domain.StageContacted
	score := 30
	lead, err := repo.Update(context.Background(), "lead-1", 2, domain.LeadPatch{Stage: &stage, Score: &score, ClearLostReason: true})
	require.NoError(t, err)
	assert.Equal(t, 3, lead.Version)
}

func TestLeadRepository_Update_ClearsReminder(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE leads SET next_action_at = NULL, version = version + 1, updated_at = NOW() WHERE id = $1 AND version = $2")).
		WithArgs("lead-1", 5).
		WillReturnRows(sqlmock.NewRows(leadCols).AddRow(leadRow("lead-1", "new", nil, 6)...))

	lead, err := repo.Update(context.Background(), "lead-1", 5, domain.LeadPatch{ClearNextAction: true})
	require.NoError(t, err)
	assert.Nil(t, lead.Score)
}

func TestLeadRepository_Update_StaleVersion(t *testing.T) {
	repo, mock := newRepo(t)

	owner := "ana"
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE leads SET owner = $1")).
		WithArgs("ana", "lead-1", 1).
		WillReturnRows(sqlmock.NewRows(leadCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)")).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.Update(context.Background(), "lead-1", 1, domain.LeadPatch{Owner: &owner})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestLeadRepository_Update_Missing(t *testing.T) {
	repo, mock := newRepo(t)

	processed := true
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE leads SET processed = $1")).
		WithArgs(true, "gone", 1).
		WillReturnRows(sqlmock.NewRows(leadCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.Update(context.Background(), "gone", 1, domain.LeadPatch{Processed: &processed})
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
}

func TestLeadRepository_Update_CheckViolation(t *testing.T) {
	repo, mock := newRepo(t)

	reason := "price"
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE leads SET lost_reason = $1")).
		WithArgs("price", "lead-1", 1).
		WillReturnError(&pq.Error{Code: "23514", Message: "leads_lost_reason_only_when_lost"})

	_, err := repo.Update(context.Background(), "lead-1", 1, domain.LeadPatch{LostReason: &reason})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestLeadRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)

	score := 20
	lead := &domain.Lead{
		ID: "lead-9", Name: "Budi", Phone: "0813", Source: "whatsapp", CreatedAt: created,
		Stage: domain.StageNew, Score: &score, Version: 1, UpdatedAt: created,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leads")).
		WithArgs("lead-9", "Budi", "0813", "", "", "whatsapp", "", false, created,
			false, "new", sqlmock.AnyArg(), "", sqlmock.AnyArg(), "", 1, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), lead))
}

func TestLeadRepository_Create_Unavailable(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	err := repo.Create(context.Background(), &domain.Lead{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLeadRepository_List(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM leads WHERE processed = FALSE AND stage = $1 AND next_action_at < NOW() ORDER BY created_at DESC LIMIT $2")).
		WithArgs("contacted", 50).
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow(leadRow("a", "contacted", nil, 1)...).
			AddRow(leadRow("b", "contacted", int64(12), 4)...))

	leads, err := repo.List(context.Background(), domain.LeadFilter{Stage: domain.StageContacted, OnlyOverdue: true, Limit: 50})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "b", leads[1].ID)
}

func TestLeadRepository_ListUnowned(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner = '' AND processed = FALSE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(leadCols).AddRow(leadRow("a", "new", nil, 1)...))

	leads, err := repo.ListUnowned(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}
