package generate_slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	generateSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model. Пустое тело - все отделения с сегодняшнего дня.
type GenerateSlotsRequest struct {
	BranchID   *uuid.UUID `json:"branchId,omitempty"`
	FromDate   string     `json:"fromDate,omitempty"` // "2026-03-02"
	WindowDays int        `json:"windowDays,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest(today time.Time) (*generateSlotsUC.Request, error) {
	from := today
	if r.FromDate != "" {
		parsed, err := time.Parse(domain.DateFormat, r.FromDate)
		if err != nil {
			return nil, fmt.Errorf("invalid fromDate %q: %w", r.FromDate, err)
		}
		from = parsed
	}
	return &generateSlotsUC.Request{
		BranchID:   r.BranchID,
		FromDate:   from,
		WindowDays: r.WindowDays,
	}, nil
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
	Branches      int    `json:"branches"`
	DaysProcessed int    `json:"daysProcessed"`
	DaysSkipped   int    `json:"daysSkipped"`
	DaysFailed    int    `json:"daysFailed"`
	SlotsCreated  int    `json:"slotsCreated"`
	SlotsExisting int    `json:"slotsExisting"`
	Error         string `json:"error,omitempty"`
}

func fromUseCaseResponse(resp *generateSlotsUC.Response) *GenerateSlotsResponse {
	return &GenerateSlotsResponse{
		FromDate:      resp.FromDate.Format(domain.DateFormat),
		ToDate:        resp.ToDate.Format(domain.DateFormat),
		Branches:      resp.Branches,
		DaysProcessed: resp.DaysProcessed,
		DaysSkipped:   resp.DaysSkipped,
		DaysFailed:    resp.DaysFailed,
		SlotsCreated:  resp.SlotsCreated,
		SlotsExisting: resp.SlotsExisting,
	}
}
