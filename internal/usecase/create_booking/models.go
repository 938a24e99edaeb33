package create_booking

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на создание записи
type Request struct {
	SlotID      uuid.UUID
	BranchID    uuid.UUID
	CustomerID  string
	ServiceType string
}

// Response модель ответа с созданной записью
type Response struct {
	ID            uuid.UUID
	ReferenceCode string
	SlotID        uuid.UUID
	BranchID      uuid.UUID
	CustomerID    string
	ServiceType   string
	Status        string
	ScheduledAt   time.Time
	Version       int64
	CreatedAt     time.Time
}
