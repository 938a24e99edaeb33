package get_available_slots

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BranchAppointments/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	BranchID uuid.UUID       `json:"branchId"`
	Date     string          `json:"date"`
	Slots    []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	ID             uuid.UUID `json:"id"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	AvailableSpots int       `json:"availableSpots"`
	TotalSpots     int       `json:"totalSpots"`
	Status         string    `json:"status"`
	Version        int64     `json:"version"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			ID:             slot.ID,
			StartTime:      slot.StartTime.String(),
			EndTime:        slot.EndTime.String(),
			AvailableSpots: slot.AvailableSpots,
			TotalSpots:     slot.TotalSpots,
			Status:         string(slot.Status),
			Version:        slot.Version,
		}
	}

	return &AvailableSlotsResponse{
		BranchID: resp.BranchID,
		Date:     resp.Date.Format(domain.DateFormat),
		Slots:    slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(branchID uuid.UUID, dateStr, allStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.Request{
		BranchID: branchID,
		Date:     date,
	}
	if allStr != "" {
		if req.IncludeUnavailable, err = strconv.ParseBool(allStr); err != nil {
			return nil, err
		}
	}
	return req, nil
}
