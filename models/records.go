// File: models/records.go
package models

import "time"

// ReservationRecord is the local receipt of a reservation accepted by the salon backend.
type ReservationRecord struct {
	ID           string                  `bson:"id" json:"id"`
	UserID       string                  `bson:"userId" json:"userId"`
	SessionID    string                  `bson:"sessionId" json:"sessionId"`
	ServiceIDs   []string                `bson:"serviceIds" json:"serviceIds"`
	ServiceNames []string                `bson:"serviceNames" json:"serviceNames"`
	Confirmation ReservationConfirmation `bson:"confirmation" json:"confirmation"`
	ReminderAt   *time.Time              `bson:"reminderAt,omitempty" json:"reminderAt,omitempty"`
	RemindedAt   *time.Time              `bson:"remindedAt,omitempty" json:"remindedAt,omitempty"`
	CreatedAt    time.Time               `bson:"createdAt" json:"createdAt"`
}
