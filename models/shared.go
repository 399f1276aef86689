package models

// ReminderPayload is the asynq payload of an appointment reminder.
type ReminderPayload struct {
	RecordID      string `json:"recordId"`
	UserID        string `json:"userId"`
	ReservationID string `json:"reservationId"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	FireDate      string `json:"fireDate"`
}
