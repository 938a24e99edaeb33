package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// CheckIn moves a BOOKED appointment to CHECKED_IN. Accepted only on the
// appointment's day and inside the grace window after the slot start.
func (a *Appointment) CheckIn(now time.Time, graceMinutes int) error {
	if err := a.guard(now, StatusBooked); err != nil {
		return err
	}
	if !SameDay(a.ScheduledAt, now) {
		return fmt.Errorf("%w: appointment %s is not scheduled for today", ErrOutsideGraceWindow, a.ReferenceCode)
	}
	if !IsWithinGraceWindow(now, a.ScheduledAt, graceMinutes) {
		return fmt.Errorf("%w: check-in allowed from %s to %s",
			ErrOutsideGraceWindow,
			a.ScheduledAt.Format(TimeFormat),
			a.ScheduledAt.Add(time.Duration(graceMinutes)*time.Minute).Format(TimeFormat))
	}

	a.Status = StatusCheckedIn
	a.CheckedInAt = &now
	a.UpdatedAt = now
	return nil
}

// StartService moves a CHECKED_IN appointment to IN_PROGRESS and assigns staff
func (a *Appointment) StartService(now time.Time, staffID string) error {
	if err := a.guard(now, StatusCheckedIn); err != nil {
		return err
	}
	staffID = strings.TrimSpace(staffID)
	if utf8.RuneCountInString(staffID) < MinStaffIDLength {
		return fmt.Errorf("%w: staff id must be at least %d characters", ErrValidation, MinStaffIDLength)
	}

	a.Status = StatusInProgress
	a.StaffID = &staffID
	a.InProgressAt = &now
	a.UpdatedAt = now
	return nil
}

// Complete moves an IN_PROGRESS appointment to COMPLETED
func (a *Appointment) Complete(now time.Time, serviceNotes string) error {
	if err := a.guard(now, StatusInProgress); err != nil {
		return err
	}
	if err := validateText("service notes", serviceNotes, MinServiceNotesLength, MaxServiceNotesLength); err != nil {
		return err
	}

	a.Status = StatusCompleted
	a.ServiceNotes = &serviceNotes
	a.CompletedAt = &now
	a.UpdatedAt = now
	return nil
}

// CancelByCustomer cancels the appointment on the customer's request
func (a *Appointment) CancelByCustomer(now time.Time, actor, reason string) error {
	return a.terminate(now, StatusCancelled, ReasonCustomerCancellation, actor, reason,
		StatusBooked, StatusCheckedIn, StatusInProgress)
}

// CancelByStaff cancels the appointment on behalf of the branch
func (a *Appointment) CancelByStaff(now time.Time, staffID, reason string) error {
	return a.terminate(now, StatusCancelled, ReasonStaffCancellation, staffID, reason,
		StatusBooked, StatusCheckedIn, StatusInProgress)
}

// MarkNoShow terminates an unattended appointment. Used by the sweep only.
func (a *Appointment) MarkNoShow(now time.Time) error {
	return a.terminate(now, StatusNoShow, ReasonCustomerNoShow, SystemActor, "",
		StatusBooked, StatusCheckedIn)
}

// Reschedule moves a BOOKED appointment to newSlot. The appointment passes
// through RESCHEDULED and re-enters BOOKED with the reschedule count bumped.
func (a *Appointment) Reschedule(now time.Time, newSlot *Slot) error {
	if err := a.guard(now, StatusBooked); err != nil {
		return err
	}
	if newSlot.ID == a.SlotID {
		return fmt.Errorf("%w: new slot must differ from the current one", ErrValidation)
	}
	if a.RescheduleCount >= MaxReschedules {
		return fmt.Errorf("%w: appointment %s was already rescheduled %d times",
			ErrRescheduleLimitReached, a.ReferenceCode, a.RescheduleCount)
	}

	previous := a.SlotID
	a.Status = StatusRescheduled
	a.PreviousSlotID = &previous
	a.SlotID = newSlot.ID
	a.BranchID = newSlot.BranchID
	a.ScheduledAt = newSlot.StartsAt()
	a.ScheduledDay = newSlot.Day
	a.RescheduleCount++
	a.Status = StatusBooked
	a.UpdatedAt = now
	return nil
}

func (a *Appointment) terminate(
	now time.Time,
	status AppointmentStatus,
	reason TerminationReason,
	actor, notes string,
	from ...AppointmentStatus,
) error {
	if err := a.guard(now, from...); err != nil {
		return err
	}
	if reason != ReasonCustomerNoShow {
		if err := validateText("reason", notes, MinReasonLength, MaxReasonLength); err != nil {
			return err
		}
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return fmt.Errorf("%w: termination actor is required", ErrValidation)
	}

	a.Status = status
	a.TerminationReason = &reason
	a.TerminatedBy = &actor
	if notes != "" {
		a.TerminationNotes = &notes
	}
	a.TerminatedAt = &now
	a.UpdatedAt = now
	return nil
}

// guard checks the common preconditions of every transition
func (a *Appointment) guard(now time.Time, from ...AppointmentStatus) error {
	if now.IsZero() {
		return fmt.Errorf("%w: current time is required", ErrValidation)
	}
	if a.IsTerminal() {
		return fmt.Errorf("%w: appointment %s is %s", ErrIllegalState, a.ReferenceCode, a.Status)
	}

	allowed := false
	for _, s := range from {
		if a.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: transition not allowed from %s", ErrIllegalState, a.Status)
	}

	if last := a.lastRecordedAt(); now.Before(last) {
		return fmt.Errorf("%w: time %s is before last recorded %s",
			ErrValidation, now.Format(time.RFC3339), last.Format(time.RFC3339))
	}
	return nil
}

func validateText(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < minLen {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrValidation, field, maxLen)
	}
	return nil
}
