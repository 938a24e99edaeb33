package domain

import (
	"fmt"
	"time"
)

// AttendanceAction is one of CheckInAction, StartServiceAction,
// CompleteAction, CancelByStaffAction. These touch the appointment only.
type AttendanceAction interface {
	attendanceAction()
	Name() string
}

type CheckInAction struct {
	Now          time.Time
	GraceMinutes int
}

type StartServiceAction struct {
	Now     time.Time
	StaffID string
}

type CompleteAction struct {
	Now          time.Time
	ServiceNotes string
}

type CancelByStaffAction struct {
	Now     time.Time
	StaffID string
	Reason  string
}

func (CheckInAction) attendanceAction()       {}
func (StartServiceAction) attendanceAction()  {}
func (CompleteAction) attendanceAction()      {}
func (CancelByStaffAction) attendanceAction() {}

func (CheckInAction) Name() string       { return "check_in" }
func (StartServiceAction) Name() string  { return "start_service" }
func (CompleteAction) Name() string      { return "complete" }
func (CancelByStaffAction) Name() string { return "cancel_by_staff" }

// ApplyAttendance dispatches action to the matching transition
func (a *Appointment) ApplyAttendance(action AttendanceAction) error {
	switch act := action.(type) {
	case CheckInAction:
		return a.CheckIn(act.Now, act.GraceMinutes)
	case StartServiceAction:
		return a.StartService(act.Now, act.StaffID)
	case CompleteAction:
		return a.Complete(act.Now, act.ServiceNotes)
	case CancelByStaffAction:
		return a.CancelByStaff(act.Now, act.StaffID, act.Reason)
	default:
		return fmt.Errorf("%w: unknown attendance action %T", ErrIllegalState, action)
	}
}

// ActorOf returns who performed the action on a, for events and audit
func ActorOf(action AttendanceAction, a *Appointment) string {
	switch act := action.(type) {
	case CheckInAction:
		return a.CustomerID
	case StartServiceAction:
		return act.StaffID
	case CancelByStaffAction:
		return act.StaffID
	case CompleteAction:
		if a.StaffID != nil {
			return *a.StaffID
		}
	}
	return SystemActor
}
