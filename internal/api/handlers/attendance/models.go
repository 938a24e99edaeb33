package attendance

// Действия, доступные в пути запроса
const (
	ActionCheckIn     = "check-in"
	ActionStart       = "start"
	ActionComplete    = "complete"
	ActionStaffCancel = "staff-cancel"
)

// RoutePattern шаблон переменной {action} для mux
const RoutePattern = ActionCheckIn + "|" + ActionStart + "|" + ActionComplete + "|" + ActionStaffCancel

// AttendanceRequest HTTP request model. Набор обязательных полей зависит от действия.
type AttendanceRequest struct {
	StaffID         string `json:"staffId,omitempty"`
	Reason          string `json:"reason,omitempty"`
	ServiceNotes    string `json:"serviceNotes,omitempty"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}
