package expire_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	expireSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/expire_slots"
)

// ExpireSlotsRequest HTTP request model
type ExpireSlotsRequest struct {
	Before string `json:"before,omitempty"` // "2026-03-02", пусто - сегодня
	Limit  int    `json:"limit,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *ExpireSlotsRequest) ToUseCaseRequest() (*expireSlotsUC.Request, error) {
	req := &expireSlotsUC.Request{Limit: r.Limit}
	if r.Before != "" {
		parsed, err := time.Parse(domain.DateFormat, r.Before)
		if err != nil {
			return nil, fmt.Errorf("invalid before %q: %w", r.Before, err)
		}
		req.Before = parsed
	}
	return req, nil
}

// ExpireSlotsResponse HTTP response model
type ExpireSlotsResponse struct {
	Before  string `json:"before"`
	Expired int    `json:"expired"`
	Failed  int    `json:"failed"`
}
