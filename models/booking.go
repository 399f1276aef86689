package models

import "time"

// Reservation is the submission payload built once at the confirm step.
// StylistID is nil when the customer picked "any".
type Reservation struct {
	ServiceIDs []string `json:"serviceIds"`
	StylistID  *string  `json:"stylistId"`
	Date       string   `json:"date"` // YYYY-MM-DD
	Time       string   `json:"time"` // slot token
}

// ReservationConfirmation is what the salon backend returns for an accepted reservation.
type ReservationConfirmation struct {
	ID              string    `json:"id" bson:"id"`
	Status          string    `json:"status" bson:"status"`
	StylistID       string    `json:"stylistId,omitempty" bson:"stylistId,omitempty"`
	Date            string    `json:"date" bson:"date"`
	Time            string    `json:"time" bson:"time"`
	DurationMinutes int       `json:"durationMinutes" bson:"durationMinutes"`
	TotalPrice      float64   `json:"totalPrice" bson:"totalPrice"`
	ConfirmedAt     time.Time `json:"confirmedAt" bson:"confirmedAt"`
}

// StartsAt resolves the confirmed date and time in loc.
func (c ReservationConfirmation) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", c.Date+" "+c.Time, loc)
}
