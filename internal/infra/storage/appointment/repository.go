package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/dbmetrics"
	"github.com/m04kA/SMC-BranchAppointments/pkg/psqlbuilder"
)

var appointmentColumns = []string{
	"id",
	"slot_id",
	"previous_slot_id",
	"branch_id",
	"customer_id",
	"service_type",
	"status",
	"reference_code",
	"scheduled_at",
	"scheduled_day",
	"checked_in_at",
	"in_progress_at",
	"completed_at",
	"terminated_at",
	"termination_reason",
	"terminated_by",
	"termination_notes",
	"staff_id",
	"service_notes",
	"reschedule_count",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую запись.
// Нарушение уникального индекса активной записи клиента на день превращается в ErrActiveAppointmentExists.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"id",
			"slot_id",
			"branch_id",
			"customer_id",
			"service_type",
			"status",
			"reference_code",
			"scheduled_at",
			"scheduled_day",
			"reschedule_count",
			"version",
			"created_at",
			"updated_at",
		).
		Values(
			a.ID,
			a.SlotID,
			a.BranchID,
			a.CustomerID,
			a.ServiceType,
			a.Status,
			a.ReferenceCode,
			a.ScheduledAt,
			domain.CivilDay(a.ScheduledDay),
			a.RescheduleCount,
			a.Version,
			a.CreatedAt,
			a.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if isActiveDayViolation(err) {
			return ErrActiveAppointmentExists
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// FindByID получает запись по ID
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindByID - scan appointment: %v", ErrScanRow, err)
	}
	return a, nil
}

// FindActiveByCustomerAndDay получает активную запись клиента на день. nil, если её нет.
func (r *Repository) FindActiveByCustomerAndDay(ctx context.Context, customerID string, day time.Time) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{
			"customer_id":   customerID,
			"scheduled_day": domain.CivilDay(day),
			"status":        statusStrings(domain.ActiveStatuses),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveByCustomerAndDay - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveByCustomerAndDay - scan appointment: %v", ErrScanRow, err)
	}
	return a, nil
}

// FindUnattendedBefore keyset-страница записей в статусах BOOKED/CHECKED_IN
// с днём не позже day и id больше cursor, упорядоченная по id.
// uuid.Nil в качестве cursor означает первую страницу.
func (r *Repository) FindUnattendedBefore(ctx context.Context, day time.Time, cursor uuid.UUID, limit int) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := unattendedQuery(day, cursor, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindUnattendedBefore - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindUnattendedBefore - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

func unattendedQuery(day time.Time, cursor uuid.UUID, limit int) squirrel.SelectBuilder {
	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.LtOrEq{"scheduled_day": domain.CivilDay(day)}).
		Where(squirrel.Eq{"status": statusStrings(domain.UnattendedStatuses)}).
		OrderBy("id ASC").
		Limit(uint64(limit))
	if cursor != uuid.Nil {
		builder = builder.Where(squirrel.Gt{"id": cursor.String()})
	}
	return builder
}

// FindBySlot получает все записи слота, включая завершённые
func (r *Repository) FindBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"slot_id": slotID.String()}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ConditionalUpdate записывает новое состояние записи, только если версия в БД равна expectedVersion
func (r *Repository) ConditionalUpdate(ctx context.Context, a *domain.Appointment, expectedVersion int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("slot_id", a.SlotID).
		Set("previous_slot_id", a.PreviousSlotID).
		Set("branch_id", a.BranchID).
		Set("status", a.Status).
		Set("scheduled_at", a.ScheduledAt).
		Set("scheduled_day", domain.CivilDay(a.ScheduledDay)).
		Set("checked_in_at", a.CheckedInAt).
		Set("in_progress_at", a.InProgressAt).
		Set("completed_at", a.CompletedAt).
		Set("terminated_at", a.TerminatedAt).
		Set("termination_reason", a.TerminationReason).
		Set("terminated_by", a.TerminatedBy).
		Set("termination_notes", a.TerminationNotes).
		Set("staff_id", a.StaffID).
		Set("service_notes", a.ServiceNotes).
		Set("reschedule_count", a.RescheduleCount).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID.String(), "version": expectedVersion}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ConditionalUpdate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isActiveDayViolation(err) {
			return false, ErrActiveAppointmentExists
		}
		return false, fmt.Errorf("%w: ConditionalUpdate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ConditionalUpdate - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	a.Version = expectedVersion + 1
	return true, nil
}

// CountByStatus количество записей отделения по статусам за день
func (r *Repository) CountByStatus(ctx context.Context, branchID uuid.UUID, day time.Time) (map[domain.AppointmentStatus]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("status", "COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{"branch_id": branchID.String(), "scheduled_day": domain.CivilDay(day)}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[domain.AppointmentStatus]int)
	for rows.Next() {
		var status domain.AppointmentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%w: CountByStatus - scan row: %v", ErrScanRow, err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - rows error: %v", ErrScanRow, err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a                    domain.Appointment
		previousSlotID       uuid.NullUUID
		reason               sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&previousSlotID,
		&a.BranchID,
		&a.CustomerID,
		&a.ServiceType,
		&a.Status,
		&a.ReferenceCode,
		&a.ScheduledAt,
		&a.ScheduledDay,
		&a.CheckedInAt,
		&a.InProgressAt,
		&a.CompletedAt,
		&a.TerminatedAt,
		&reason,
		&a.TerminatedBy,
		&a.TerminationNotes,
		&a.StaffID,
		&a.ServiceNotes,
		&a.RescheduleCount,
		&a.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if previousSlotID.Valid {
		id := previousSlotID.UUID
		a.PreviousSlotID = &id
	}
	if reason.Valid {
		tr := domain.TerminationReason(reason.String)
		a.TerminationReason = &tr
	}
	a.ScheduledDay = domain.CivilDay(a.ScheduledDay)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan appointment: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrScanRow, err)
	}
	return appointments, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func isActiveDayViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == activeCustomerDayIndex
}
