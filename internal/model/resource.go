package model

import "time"

type Resource struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	// AvailabilitySlots is the legacy denormalized column kept for older
	// frontend builds; the availability_slots table is authoritative.
	AvailabilitySlots string    `json:"availability_slots"`
	CreatedAt         time.Time `json:"created_at"`
}
