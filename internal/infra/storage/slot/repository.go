package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/dbmetrics"
	"github.com/m04kA/SMC-BranchAppointments/pkg/psqlbuilder"
)

var slotColumns = []string{
	"id",
	"branch_id",
	"day",
	"start_time",
	"end_time",
	"max_booking_capacity",
	"booking_count",
	"status",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindByID получает слот по ID вместе с текущей версией
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindByID - scan slot: %v", ErrScanRow, err)
	}
	return s, nil
}

// FindByBranchAndDay получает слоты отделения на день, по времени начала
func (r *Repository) FindByBranchAndDay(ctx context.Context, branchID uuid.UUID, day time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"branch_id": branchID.String(), "day": domain.CivilDay(day)}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByBranchAndDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindByBranchAndDay - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// UpsertMany вставляет слоты, пропуская уже существующие по (branch_id, day, start_time).
// Существующие слоты не перезаписываются: счётчики и статусы сохраняются.
// Возвращает количество реально созданных слотов.
func (r *Repository) UpsertMany(ctx context.Context, slots []*domain.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("slots").
		Columns(
			"id",
			"branch_id",
			"day",
			"start_time",
			"end_time",
			"max_booking_capacity",
			"booking_count",
			"status",
			"version",
			"created_at",
			"updated_at",
		)
	for _, s := range slots {
		builder = builder.Values(
			s.ID,
			s.BranchID,
			domain.CivilDay(s.Day),
			s.StartTime,
			s.EndTime,
			s.MaxBookingCapacity,
			s.BookingCount,
			s.Status,
			s.Version,
			s.CreatedAt,
			s.UpdatedAt,
		)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (branch_id, day, start_time) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: UpsertMany - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: UpsertMany - execute insert: %v", ErrExecQuery, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: UpsertMany - get rows affected: %v", ErrExecQuery, err)
	}
	return int(inserted), nil
}

// ConditionalUpdate записывает новое состояние слота, только если версия в БД равна expectedVersion.
// Версия увеличивается атомарно. false означает, что конкурентный писатель успел раньше.
func (r *Repository) ConditionalUpdate(ctx context.Context, s *domain.Slot, expectedVersion int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("booking_count", s.BookingCount).
		Set("status", s.Status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID.String(), "version": expectedVersion}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ConditionalUpdate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: ConditionalUpdate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ConditionalUpdate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	s.Version = expectedVersion + 1
	return true, nil
}

// ListElapsed keyset-страница не истёкших слотов за дни строго раньше before,
// после позиции after в порядке (day, id). Нулевой after - первая страница.
func (r *Repository) ListElapsed(ctx context.Context, before time.Time, after domain.SlotCursor, limit int) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := listElapsedQuery(before, after, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListElapsed - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListElapsed - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

func listElapsedQuery(before time.Time, after domain.SlotCursor, limit int) squirrel.SelectBuilder {
	builder := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Lt{"day": domain.CivilDay(before)}).
		Where(squirrel.NotEq{"status": string(domain.SlotExpired)}).
		OrderBy("day ASC", "id ASC").
		Limit(uint64(limit))
	if !after.IsZero() {
		builder = builder.Where(squirrel.Expr("(day, id) > (?, ?)", domain.CivilDay(after.Day), after.ID.String()))
	}
	return builder
}

// CountByBranchAndRange количество слотов отделения в диапазоне дней [from, to]
func (r *Repository) CountByBranchAndRange(ctx context.Context, branchID uuid.UUID, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("slots").
		Where(squirrel.Eq{"branch_id": branchID.String()}).
		Where(squirrel.GtOrEq{"day": domain.CivilDay(from)}).
		Where(squirrel.LtOrEq{"day": domain.CivilDay(to)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountByBranchAndRange - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByBranchAndRange - scan count: %v", ErrScanRow, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var s domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.BranchID,
		&s.Day,
		&s.StartTime,
		&s.EndTime,
		&s.MaxBookingCapacity,
		&s.BookingCount,
		&s.Status,
		&s.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Day = domain.CivilDay(s.Day)
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}

func scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan slot: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrScanRow, err)
	}
	return slots, nil
}
