package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// Request модели

// CancelRequest отмена записи клиентом
type CancelRequest struct {
	Actor           string `json:"actor"`
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// StartServiceRequest сотрудник начинает обслуживание
type StartServiceRequest struct {
	StaffID         string `json:"staffId"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// CompleteRequest завершение обслуживания
type CompleteRequest struct {
	ServiceNotes    string `json:"serviceNotes"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// StaffCancelRequest отмена записи сотрудником
type StaffCancelRequest struct {
	StaffID         string `json:"staffId"`
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                uuid.UUID  `json:"id"`
	ReferenceCode     string     `json:"referenceCode"`
	SlotID            uuid.UUID  `json:"slotId"`
	PreviousSlotID    *uuid.UUID `json:"previousSlotId,omitempty"`
	BranchID          uuid.UUID  `json:"branchId"`
	CustomerID        string     `json:"customerId"`
	ServiceType       string     `json:"serviceType"`
	Status            string     `json:"status"`
	ScheduledAt       time.Time  `json:"scheduledAt"`
	CheckedInAt       *time.Time `json:"checkedInAt,omitempty"`
	InProgressAt      *time.Time `json:"inProgressAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	TerminatedAt      *time.Time `json:"terminatedAt,omitempty"`
	TerminationReason *string    `json:"terminationReason,omitempty"`
	TerminatedBy      *string    `json:"terminatedBy,omitempty"`
	TerminationNotes  *string    `json:"terminationNotes,omitempty"`
	StaffID           *string    `json:"staffId,omitempty"`
	ServiceNotes      *string    `json:"serviceNotes,omitempty"`
	RescheduleCount   int        `json:"rescheduleCount"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// DaySummaryResponse количество записей отделения за день по статусам
type DaySummaryResponse struct {
	BranchID uuid.UUID      `json:"branchId"`
	Date     string         `json:"date"` // "2026-03-02"
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// Конвертеры

// FromDomainAppointment конвертирует domain.Appointment в AppointmentResponse
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:               a.ID,
		ReferenceCode:    a.ReferenceCode,
		SlotID:           a.SlotID,
		PreviousSlotID:   a.PreviousSlotID,
		BranchID:         a.BranchID,
		CustomerID:       a.CustomerID,
		ServiceType:      a.ServiceType,
		Status:           string(a.Status),
		ScheduledAt:      a.ScheduledAt,
		CheckedInAt:      a.CheckedInAt,
		InProgressAt:     a.InProgressAt,
		CompletedAt:      a.CompletedAt,
		TerminatedAt:     a.TerminatedAt,
		TerminatedBy:     a.TerminatedBy,
		TerminationNotes: a.TerminationNotes,
		StaffID:          a.StaffID,
		ServiceNotes:     a.ServiceNotes,
		RescheduleCount:  a.RescheduleCount,
		Version:          a.Version,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.TerminationReason != nil {
		reason := string(*a.TerminationReason)
		resp.TerminationReason = &reason
	}
	return resp
}

// FromDomainAppointmentList конвертирует список записей
func FromDomainAppointmentList(list []*domain.Appointment) []*AppointmentResponse {
	out := make([]*AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromDomainAppointment(a))
	}
	return out
}

// FromStatusCounts конвертирует счётчики статусов
func FromStatusCounts(branchID uuid.UUID, day time.Time, counts map[domain.AppointmentStatus]int) *DaySummaryResponse {
	resp := &DaySummaryResponse{
		BranchID: branchID,
		Date:     day.Format(domain.DateFormat),
		ByStatus: make(map[string]int, len(counts)),
	}
	for status, n := range counts {
		resp.ByStatus[string(status)] = n
		resp.Total += n
	}
	return resp
}
