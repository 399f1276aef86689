package models

// AvailabilityQuery asks the salon for bookable slots. StylistID is empty for "any".
type AvailabilityQuery struct {
	Date       string   `json:"date"`
	ServiceIDs []string `json:"serviceIds"`
	StylistID  string   `json:"stylistId,omitempty"`
}

// StylistSlots are the slots one resolved stylist can take.
type StylistSlots struct {
	StylistName string   `json:"stylistName,omitempty"`
	Slots       []string `json:"slots"`
}

// AvailabilityResponse is keyed by resolved stylist id.
type AvailabilityResponse map[string]StylistSlots
