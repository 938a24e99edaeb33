package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
)

// Service сервис жизненного цикла записи: отмена, посещение, чтение
type Service struct {
	appointmentRepo AppointmentRepository
	coordinator     SlotCoordinator
	events          EventSink
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
	graceMinutes    int
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	coordinator SlotCoordinator,
	events EventSink,
	txManager TransactionManager,
	metrics Metrics,
	graceMinutes int,
	logger Logger,
) *Service {
	if graceMinutes < 0 {
		graceMinutes = domain.DefaultCheckInGraceMinutes
	}
	return &Service{
		appointmentRepo: appointmentRepo,
		coordinator:     coordinator,
		events:          events,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		graceMinutes:    graceMinutes,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	appointment, err := s.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, err
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainAppointment(appointment), nil
}

// GetSlotAppointments записи слота в порядке создания
func (s *Service) GetSlotAppointments(ctx context.Context, slotID uuid.UUID) ([]*models.AppointmentResponse, error) {
	list, err := s.appointmentRepo.FindBySlot(ctx, slotID)
	if err != nil {
		s.logger.Error("GetSlotAppointments: repository error for slot id=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: GetSlotAppointments - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainAppointmentList(list), nil
}

// GetDaySummary количество записей отделения на день по статусам
func (s *Service) GetDaySummary(ctx context.Context, branchID uuid.UUID, day time.Time) (*models.DaySummaryResponse, error) {
	var counts map[domain.AppointmentStatus]int
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		counts, err = s.appointmentRepo.CountByStatus(txCtx, branchID, day)
		return err
	})
	if err != nil {
		s.logger.Error("GetDaySummary: repository error for branch=%s: %v", branchID, err)
		return nil, fmt.Errorf("%w: GetDaySummary - repository error: %v", ErrInternal, err)
	}
	return models.FromStatusCounts(branchID, domain.CivilDay(day), counts), nil
}

// CancelByCustomer отменяет запись по просьбе клиента и освобождает место в слоте.
// Освобождение слота и отмена записи выполняются в одной транзакции.
func (s *Service) CancelByCustomer(ctx context.Context, id uuid.UUID, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("CancelAppointment: appointment=%s, actor=%s", id, req.Actor)

	now := s.timeProvider.Now()
	var (
		result *domain.Appointment
		prior  domain.AppointmentStatus
	)

	err := s.coordinator.Retry(ctx, "CancelAppointment", func(ctx context.Context) error {
		return s.txManager.Do(ctx, func(txCtx context.Context) error {
			// 1. Получаем запись и проверяем версию клиента
			appointment, err := s.load(txCtx, id, req.ExpectedVersion)
			if err != nil {
				return err
			}
			prior = appointment.Status
			readVersion := appointment.Version

			// 2. Переход записи
			if err := appointment.CancelByCustomer(now, req.Actor, req.Reason); err != nil {
				return err
			}

			// 3. Освобождаем место в слоте
			if _, err := s.coordinator.ApplyInTx(txCtx, appointment.SlotID, domain.ReleaseSlot{Now: now}); err != nil {
				return err
			}

			// 4. Условная запись
			if err := s.save(txCtx, appointment, readVersion); err != nil {
				return err
			}
			result = appointment
			return nil
		})
	})

	s.metrics.IncAppointmentTransition("cancel_by_customer", domain.Outcome(err))
	if err != nil {
		s.logFailure("CancelAppointment", id, err)
		return nil, err
	}

	event := domain.NewLifecycleEvent(domain.EventCancelled, result, prior, req.Actor, now)
	event.Metadata["reason"] = string(domain.ReasonCustomerCancellation)
	event.Metadata["slot_id"] = result.SlotID.String()
	s.events.Publish(ctx, event)

	s.logger.Info("CancelAppointment: appointment=%s cancelled, slot=%s released", result.ID, result.SlotID)
	return models.FromDomainAppointment(result), nil
}

// CheckIn отмечает приход клиента в окне допуска после начала слота
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, expectedVersion *int64) (*models.AppointmentResponse, error) {
	now := s.timeProvider.Now()
	return s.attend(ctx, id, expectedVersion, domain.CheckInAction{Now: now, GraceMinutes: s.graceMinutes})
}

// StartService сотрудник берёт клиента в обслуживание
func (s *Service) StartService(ctx context.Context, id uuid.UUID, req *models.StartServiceRequest) (*models.AppointmentResponse, error) {
	now := s.timeProvider.Now()
	return s.attend(ctx, id, req.ExpectedVersion, domain.StartServiceAction{Now: now, StaffID: req.StaffID})
}

// Complete завершает обслуживание
func (s *Service) Complete(ctx context.Context, id uuid.UUID, req *models.CompleteRequest) (*models.AppointmentResponse, error) {
	now := s.timeProvider.Now()
	return s.attend(ctx, id, req.ExpectedVersion, domain.CompleteAction{Now: now, ServiceNotes: req.ServiceNotes})
}

// CancelByStaff отмена сотрудником. Меняет только запись, слот не трогает.
func (s *Service) CancelByStaff(ctx context.Context, id uuid.UUID, req *models.StaffCancelRequest) (*models.AppointmentResponse, error) {
	now := s.timeProvider.Now()
	return s.attend(ctx, id, req.ExpectedVersion, domain.CancelByStaffAction{Now: now, StaffID: req.StaffID, Reason: req.Reason})
}

// attend применяет действие посещения к записи без изменения слота
func (s *Service) attend(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion *int64,
	action domain.AttendanceAction,
) (*models.AppointmentResponse, error) {
	op := "Attendance(" + action.Name() + ")"
	s.logger.Info("%s: appointment=%s", op, id)

	var (
		result *domain.Appointment
		prior  domain.AppointmentStatus
	)

	err := s.coordinator.Retry(ctx, op, func(ctx context.Context) error {
		return s.txManager.Do(ctx, func(txCtx context.Context) error {
			appointment, err := s.load(txCtx, id, expectedVersion)
			if err != nil {
				return err
			}
			prior = appointment.Status
			readVersion := appointment.Version

			if err := appointment.ApplyAttendance(action); err != nil {
				return err
			}
			if err := s.save(txCtx, appointment, readVersion); err != nil {
				return err
			}
			result = appointment
			return nil
		})
	})

	s.metrics.IncAppointmentTransition(action.Name(), domain.Outcome(err))
	if err != nil {
		s.logFailure(op, id, err)
		return nil, err
	}

	eventType := domain.EventAttended
	if _, ok := action.(domain.CancelByStaffAction); ok {
		eventType = domain.EventCancelled
	}
	event := domain.NewLifecycleEvent(eventType, result, prior, domain.ActorOf(action, result), result.UpdatedAt)
	event.Metadata["action"] = action.Name()
	s.events.Publish(ctx, event)

	s.logger.Info("%s: appointment=%s %s -> %s", op, result.ID, prior, result.Status)
	return models.FromDomainAppointment(result), nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID, expectedVersion *int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}
	if expectedVersion != nil {
		if err := appointment.CheckVersion(*expectedVersion); err != nil {
			return nil, err
		}
	}
	return appointment, nil
}

func (s *Service) save(ctx context.Context, appointment *domain.Appointment, readVersion int64) error {
	ok, err := s.appointmentRepo.ConditionalUpdate(ctx, appointment, readVersion)
	if err != nil {
		return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
	}
	if !ok {
		return fmt.Errorf("%w: appointment %s version %d", domain.ErrVersionConflict, appointment.ID, readVersion)
	}
	return nil
}

func (s *Service) logFailure(op string, id uuid.UUID, err error) {
	if domain.Classify(err) == domain.ClassInfrastructure {
		s.logger.Error("%s: appointment=%s: %v", op, id, err)
		return
	}
	s.logger.Warn("%s: appointment=%s rejected: %v", op, id, err)
}
