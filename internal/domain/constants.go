package domain

// Default configuration values
const (
	DefaultCheckInGraceMinutes = 5
	DefaultDistributionFactor  = 2
	DefaultGenerationWindow    = 14 // days
	DefaultNoShowGraceDays     = 3
	DefaultSweepPageSize       = 500
	DefaultOCCMaxAttempts      = 3
	DefaultOCCBackoffMillis    = 50
)

// Business validation constants
const (
	MaxReschedules          = 3
	MinReasonLength         = 1
	MaxReasonLength         = 500
	MinServiceNotesLength   = 1
	MaxServiceNotesLength   = 1000
	MinStaffIDLength        = 2
	MinSlotDurationMinutes  = 5
	MaxSlotDurationMinutes  = 480 // 8 hours
	MaxGenerationWindowDays = 90
	MaxSweepPageSize        = 5000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, которые занимают место клиента на день.
// Используется для проверки "одна активная запись на клиента в день".
var ActiveStatuses = []AppointmentStatus{
	StatusBooked,
	StatusCheckedIn,
	StatusInProgress,
}

// TerminalStatuses статусы, из которых нет переходов
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// UnattendedStatuses статусы, которые обрабатывает no-show sweep
var UnattendedStatuses = []AppointmentStatus{
	StatusBooked,
	StatusCheckedIn,
}

// SystemActor актор для переходов, инициированных фоновыми задачами
const SystemActor = "system"
