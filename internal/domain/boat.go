package domain

import "time"

type BoatStatus string

const (
	BoatStatusActive   BoatStatus = "active"
	BoatStatusInactive BoatStatus = "inactive"
)

type Boat struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Capacity  int        `json:"capacity"`
	Status    BoatStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (b Boat) IsActive() bool {
	return b.Status == BoatStatusActive
}
