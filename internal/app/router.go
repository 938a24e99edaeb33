package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendanceHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/attendance"
	blockSlotHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/block_slot"
	cancelBookingHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/create_booking"
	expireSlotsHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/expire_slots"
	generateSlotsHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/generate_slots"
	getAppointmentHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/get_available_slots"
	getDaySummaryHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/get_day_summary"
	getSlotAppointmentsHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/get_slot_appointments"
	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/healthz"
	noShowSweepHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/no_show_sweep"
	rescheduleBookingHandler "github.com/m04kA/SMC-BranchAppointments/internal/api/handlers/reschedule_booking"
	"github.com/m04kA/SMC-BranchAppointments/internal/api/middleware"
)

// Router служебный HTTP API: health, метрики, ручной запуск задач и внутренние операции над записями
func (a *App) Router() *mux.Router {
	// Инициализируем handlers
	checks := map[string]healthz.Check{
		"storage": a.storage.Ping,
	}
	if a.redis != nil {
		rdb := a.redis
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	health := healthz.NewHandler(checks, a.log)

	generateSlots := generateSlotsHandler.NewHandler(a.GenerateSlots, a.log)
	noShowSweep := noShowSweepHandler.NewHandler(a.NoShowSweep, a.log)
	expireSlots := expireSlotsHandler.NewHandler(a.ExpireSlots, a.log)

	getAvailableSlots := getAvailableSlotsHandler.NewHandler(a.AvailableSlots, a.log)
	getDaySummary := getDaySummaryHandler.NewHandler(a.Bookings, a.log)
	blockSlot := blockSlotHandler.NewHandler(a.Coordinator, a.log)
	getSlotAppointments := getSlotAppointmentsHandler.NewHandler(a.Bookings, a.log)

	createBooking := createBookingHandler.NewHandler(a.CreateBooking, a.log)
	getAppointment := getAppointmentHandler.NewHandler(a.Bookings, a.log)
	cancelBooking := cancelBookingHandler.NewHandler(a.Bookings, a.log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(a.Reschedule, a.log)
	attendance := attendanceHandler.NewHandler(a.Bookings, a.log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID(a.log))

	// Добавляем metrics middleware (если метрики включены)
	if a.metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(a.cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", health.Handle).Methods(http.MethodGet)

	internal := r.PathPrefix("/internal").Subrouter()

	// --- Фоновые задачи (ручной запуск) ---
	internal.HandleFunc("/jobs/generate-slots", generateSlots.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/jobs/no-show-sweep", noShowSweep.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/jobs/expire-slots", expireSlots.Handle).Methods(http.MethodPost)

	// --- Отделения и слоты ---
	internal.HandleFunc("/branches/{branchId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	internal.HandleFunc("/branches/{branchId}/summary", getDaySummary.Handle).Methods(http.MethodGet)
	internal.HandleFunc("/slots/{slotId}/block", blockSlot.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/slots/{slotId}/appointments", getSlotAppointments.Handle).Methods(http.MethodGet)

	// --- Записи ---
	internal.HandleFunc("/appointments", createBooking.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	internal.HandleFunc("/appointments/{appointmentId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/appointments/{appointmentId}/{action:"+attendanceHandler.RoutePattern+"}",
		attendance.Handle).Methods(http.MethodPost)

	return r
}
