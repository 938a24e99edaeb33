package no_show_sweep

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	noShowSweepUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/no_show_sweep"
)

// SweepRequest HTTP request model
type SweepRequest struct {
	TargetDate string `json:"targetDate,omitempty"` // "2026-03-02", пусто - сегодня минус grace days
	PageSize   int    `json:"pageSize,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *SweepRequest) ToUseCaseRequest() (*noShowSweepUC.Request, error) {
	req := &noShowSweepUC.Request{PageSize: r.PageSize}
	if r.TargetDate != "" {
		parsed, err := time.Parse(domain.DateFormat, r.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("invalid targetDate %q: %w", r.TargetDate, err)
		}
		req.TargetDate = parsed
	}
	return req, nil
}

// SweepResponse HTTP response model
type SweepResponse struct {
	TargetDate  string `json:"targetDate"`
	Pages       int    `json:"pages"`
	Processed   int    `json:"processed"`
	Skipped     int    `json:"skipped"`
	FailedPages int    `json:"failedPages"`
	Error       string `json:"error,omitempty"`
}

func fromUseCaseResponse(resp *noShowSweepUC.Response) *SweepResponse {
	return &SweepResponse{
		TargetDate:  resp.TargetDate.Format(domain.DateFormat),
		Pages:       resp.Pages,
		Processed:   resp.Processed,
		Skipped:     resp.Skipped,
		FailedPages: resp.FailedPages,
	}
}
