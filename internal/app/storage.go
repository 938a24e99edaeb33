package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-BranchAppointments/internal/config"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/appointment"
	branchRepo "github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/branch"
	"github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/memory"
	slotRepo "github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/slot"
	"github.com/m04kA/SMC-BranchAppointments/pkg/dbmetrics"
	"github.com/m04kA/SMC-BranchAppointments/pkg/txmanager"
)

const pingTimeout = 5 * time.Second

// SlotStore все операции над слотами, которые нужны сервису
type SlotStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	FindByBranchAndDay(ctx context.Context, branchID uuid.UUID, day time.Time) ([]*domain.Slot, error)
	UpsertMany(ctx context.Context, slots []*domain.Slot) (int, error)
	ConditionalUpdate(ctx context.Context, s *domain.Slot, expectedVersion int64) (bool, error)
	ListElapsed(ctx context.Context, before time.Time, after domain.SlotCursor, limit int) ([]*domain.Slot, error)
}

// AppointmentStore все операции над записями
type AppointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	FindActiveByCustomerAndDay(ctx context.Context, customerID string, day time.Time) (*domain.Appointment, error)
	FindUnattendedBefore(ctx context.Context, day time.Time, cursor uuid.UUID, limit int) ([]*domain.Appointment, error)
	FindBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error)
	ConditionalUpdate(ctx context.Context, a *domain.Appointment, expectedVersion int64) (bool, error)
	CountByStatus(ctx context.Context, branchID uuid.UUID, day time.Time) (map[domain.AppointmentStatus]int, error)
}

// BranchDirectory справочник отделений
type BranchDirectory interface {
	GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	ListActive(ctx context.Context) ([]*domain.Branch, error)
	GetOperatingHours(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.OperatingHours, error)
	GetCapacity(ctx context.Context, branchID uuid.UUID, dayType domain.DayType) (*domain.AppointmentCapacity, error)
}

// TransactionManager единица работы поверх выбранного хранилища
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage хранилища и менеджер транзакций одного драйвера
type Storage struct {
	Driver       string
	Slots        SlotStore
	Appointments AppointmentStore
	Branches     BranchDirectory
	Tx           TransactionManager

	ping  func(ctx context.Context) error
	close func() error
}

// Ping проверка доступности хранилища для /healthz
func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenPostgres подключается к PostgreSQL. С ненулевым recorder запросы и пул соединений попадают в метрики.
func OpenPostgres(cfg config.DatabaseConfig, recorder dbmetrics.Recorder, stopCh <-chan struct{}) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("app: open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("app: ping database: %w", err)
	}

	var wrapped *dbmetrics.DB
	if recorder != nil {
		wrapped = dbmetrics.WrapWithDefault(db, recorder, stopCh)
	} else {
		wrapped = dbmetrics.Wrap(db, nil)
	}

	return &Storage{
		Driver:       config.DriverPostgres,
		Slots:        slotRepo.NewRepository(wrapped),
		Appointments: appointmentRepo.NewRepository(wrapped),
		Branches:     branchRepo.NewRepository(wrapped),
		Tx:           txmanager.NewTransactionManager(wrapped),
		ping:         wrapped.PingContext,
		close:        db.Close,
	}, nil
}

// OpenMemory создает хранилище в памяти процесса и заполняет справочник отделений из seed
func OpenMemory(seed config.SeedConfig, now time.Time) (*Storage, error) {
	store := memory.NewStore()
	if err := store.Branches().Seed(seed, now); err != nil {
		return nil, fmt.Errorf("app: seed memory store: %w", err)
	}

	return &Storage{
		Driver:       config.DriverMemory,
		Slots:        store.Slots(),
		Appointments: store.Appointments(),
		Branches:     store.Branches(),
		Tx:           store,
	}, nil
}
