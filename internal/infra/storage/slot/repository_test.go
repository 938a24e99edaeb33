package slot

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// recordingExecutor запоминает последний запрос ExecContext и отдаёт заданный результат
type recordingExecutor struct {
	query        string
	args         []interface{}
	rowsAffected int64
	err          error
}

func (e *recordingExecutor) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	e.query = query
	e.args = args
	if e.err != nil {
		return nil, e.err
	}
	return driver.RowsAffected(e.rowsAffected), nil
}

func (e *recordingExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (e *recordingExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func TestRepository_ConditionalUpdate(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantOK       bool
		wantVersion  int64
	}{
		{name: "version matches", rowsAffected: 1, wantOK: true, wantVersion: 4},
		{name: "concurrent writer won", rowsAffected: 0, wantOK: false, wantVersion: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &recordingExecutor{rowsAffected: tt.rowsAffected}
			repo := NewRepository(exec)

			s := domain.NewSlot(uuid.New(), testDay, "08:00", "08:30", 2, testNow)
			s.BookingCount = 1
			s.Version = 3

			ok, err := repo.ConditionalUpdate(context.Background(), s, 3)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantVersion, s.Version)

			assert.Equal(t,
				"UPDATE slots SET booking_count = $1, status = $2, version = version + 1, updated_at = $3 WHERE id = $4 AND version = $5",
				exec.query)
			require.Len(t, exec.args, 5)
			assert.Equal(t, 1, exec.args[0])
			assert.Equal(t, s.ID.String(), exec.args[3])
			assert.Equal(t, int64(3), exec.args[4])
		})
	}
}

func TestRepository_ConditionalUpdateExecError(t *testing.T) {
	repo := NewRepository(&recordingExecutor{err: errors.New("connection reset")})
	s := domain.NewSlot(uuid.New(), testDay, "08:00", "08:30", 2, testNow)

	ok, err := repo.ConditionalUpdate(context.Background(), s, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.Equal(t, int64(0), s.Version)
}

func TestRepository_UpsertManySkipsExisting(t *testing.T) {
	exec := &recordingExecutor{rowsAffected: 1}
	repo := NewRepository(exec)
	branchID := uuid.New()

	inserted, err := repo.UpsertMany(context.Background(), []*domain.Slot{
		domain.NewSlot(branchID, testDay, "08:00", "08:30", 2, testNow),
		domain.NewSlot(branchID, testDay, "08:30", "09:00", 2, testNow),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	assert.Contains(t, exec.query, "INSERT INTO slots (id,branch_id,day,start_time,end_time,")
	assert.Contains(t, exec.query, "($12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)")
	assert.True(t, strings.HasSuffix(exec.query, "ON CONFLICT (branch_id, day, start_time) DO NOTHING"), exec.query)
	assert.Len(t, exec.args, 22)
}

func TestRepository_UpsertManyEmptyBatch(t *testing.T) {
	exec := &recordingExecutor{}
	repo := NewRepository(exec)

	inserted, err := repo.UpsertMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, exec.query)
}

func TestListElapsedQuery(t *testing.T) {
	before := time.Date(2026, 3, 5, 15, 30, 0, 0, time.UTC)
	cursorID := uuid.New()

	tests := []struct {
		name      string
		after     domain.SlotCursor
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "first page",
			after:     domain.SlotCursor{},
			wantQuery: "WHERE day < $1 AND status <> $2 ORDER BY day ASC, id ASC LIMIT 50",
			wantArgs:  []interface{}{domain.CivilDay(before), string(domain.SlotExpired)},
		},
		{
			name:      "after cursor",
			after:     domain.SlotCursor{Day: testDay, ID: cursorID},
			wantQuery: "WHERE day < $1 AND status <> $2 AND (day, id) > ($3, $4) ORDER BY day ASC, id ASC LIMIT 50",
			wantArgs:  []interface{}{domain.CivilDay(before), string(domain.SlotExpired), testDay, cursorID.String()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listElapsedQuery(before, tt.after, 50).ToSql()
			require.NoError(t, err)
			assert.Contains(t, query, "FROM slots "+tt.wantQuery)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
