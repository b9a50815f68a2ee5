package model

// Slot is a bookable unit of time on a resource. The descriptor is opaque
// text, e.g. "Mon 9-10".
type Slot struct {
	ID         int64  `json:"id"`
	ResourceID int64  `json:"resource_id"`
	Slot       string `json:"slot"`
}

// SlotAvailability is a slot with its availability derived at read time.
// IsAvailable is 0/1 for frontend compatibility.
type SlotAvailability struct {
	ID          int64  `json:"id"`
	Slot        string `json:"slot"`
	IsAvailable int    `json:"isAvailable"`
}
