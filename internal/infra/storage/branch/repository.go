package branch

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
	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

// DBExecutor интерфейс для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository справочник отделений, их часов работы и мощности.
// Данные администрируются снаружи, здесь только чтение.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отделений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBranch получает отделение по ID
func (r *Repository) GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "country_code", "is_active", "created_at", "updated_at").
		From("branches").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBranch - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Branch
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.Name, &b.CountryCode, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBranch - scan branch: %v", ErrScanRow, err)
	}
	return &b, nil
}

// ListActive получает все активные отделения
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "country_code", "is_active", "created_at", "updated_at").
		From("branches").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	branches := make([]*domain.Branch, 0)
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.CountryCode, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan branch: %v", ErrScanRow, err)
		}
		branches = append(branches, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows error: %v", ErrScanRow, err)
	}
	return branches, nil
}

// GetOperatingHours получает часы работы с учетом иерархии приоритетов:
// 1. Переопределение на конкретную дату
// 2. Расписание по дню недели
//
// Если часы не найдены ни на одном уровне, возвращает ErrHoursNotFound
func (r *Repository) GetOperatingHours(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.OperatingHours, error) {
	// 1. Переопределение на дату
	hours, err := r.getHours(ctx, branchID, squirrel.Eq{"date": domain.CivilDay(date)})
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, ErrHoursNotFound) {
		return nil, fmt.Errorf("%w: GetOperatingHours - level 1 (date): %v", ErrExecQuery, err)
	}

	// 2. День недели
	hours, err = r.getHours(ctx, branchID, squirrel.Eq{"weekday": int(date.Weekday()), "date": nil})
	if err == nil {
		return hours, nil
	}
	if !errors.Is(err, ErrHoursNotFound) {
		return nil, fmt.Errorf("%w: GetOperatingHours - level 2 (weekday): %v", ErrExecQuery, err)
	}

	return nil, ErrHoursNotFound
}

func (r *Repository) getHours(ctx context.Context, branchID uuid.UUID, level squirrel.Eq) (*domain.OperatingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := hoursQuery(branchID, level).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getHours - build select query: %v", ErrBuildQuery, err)
	}

	var openTime, closeTime types.TimeString
	hours := domain.OperatingHours{BranchID: branchID}
	err = executor.QueryRowContext(ctx, query, args...).Scan(&openTime, &closeTime, &hours.IsClosed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getHours - scan hours: %v", ErrScanRow, err)
	}

	hours.OpenTime = openTime
	hours.CloseTime = closeTime
	return &hours, nil
}

// GetCapacity получает параметры мощности отделения для типа дня
func (r *Repository) GetCapacity(ctx context.Context, branchID uuid.UUID, dayType domain.DayType) (*domain.AppointmentCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := capacityQuery(branchID, dayType).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCapacity - build select query: %v", ErrBuildQuery, err)
	}

	capacity := domain.AppointmentCapacity{BranchID: branchID, DayType: dayType}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&capacity.StaffCount,
		&capacity.SlotDurationMinutes,
		&capacity.UtilizationFactor,
		&capacity.MaxBookingCapacity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCapacityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCapacity - scan capacity: %v", ErrScanRow, err)
	}
	return &capacity, nil
}

func hoursQuery(branchID uuid.UUID, level squirrel.Eq) squirrel.SelectBuilder {
	return psqlbuilder.Select("open_time", "close_time", "is_closed").
		From("branch_operating_hours").
		Where(squirrel.Eq{"branch_id": branchID.String()}).
		Where(level)
}

func capacityQuery(branchID uuid.UUID, dayType domain.DayType) squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"staff_count",
		"slot_duration_minutes",
		"utilization_factor",
		"max_booking_capacity",
	).
		From("branch_appointment_capacity").
		Where(squirrel.Eq{"branch_id": branchID.String(), "day_type": string(dayType)})
}
