package models

import "time"

// AnyStylist is the stylist choice that lets the salon assign whoever is free.
const AnyStylist = "any"

// WizardStep is a step of the booking wizard.
type WizardStep string

const (
	StepSelectCategory WizardStep = "selectCategory"
	StepSelectServices WizardStep = "selectServices"
	StepSelectStylist  WizardStep = "selectStylist"
	StepSelectDateTime WizardStep = "selectDateTime"
	StepConfirm        WizardStep = "confirm"
	StepBooked         WizardStep = "booked"
)

// BookingSelection is the wizard's mutable working state.
type BookingSelection struct {
	Category   string   `json:"category,omitempty"`
	ServiceIDs []string `json:"serviceIds"`
	StylistID  string   `json:"stylistId"`
	Date       string   `json:"date,omitempty"` // YYYY-MM-DD
	Time       string   `json:"time,omitempty"` // slot token, e.g. "14:00"
}

// AvailabilityState holds the slots fetched for one (date, services, stylist) tuple
// and the generation counter used to discard stale responses.
type AvailabilityState struct {
	Generation  uint64    `json:"generation"`
	Pending     bool      `json:"pending"`
	RequestedAt time.Time `json:"requestedAt"`
	Key         string    `json:"key,omitempty"`
	Slots       []string  `json:"slots,omitempty"`
}

// BookingSession holds the wizard state between user actions.
type BookingSession struct {
	SessionID         string                   `json:"sessionId"`
	UserID            string                   `json:"userId,omitempty"`
	Step              WizardStep               `json:"step"`
	CategoryStep      bool                     `json:"categoryStep"`
	Selection         BookingSelection         `json:"selection"`
	TimeKey           string                   `json:"timeKey,omitempty"`
	Catalog           CatalogSnapshot          `json:"catalog"`
	AvailableStylists []Stylist                `json:"availableStylists"`
	Availability      AvailabilityState        `json:"availability"`
	Submitting        bool                     `json:"submitting,omitempty"`
	Confirmation      *ReservationConfirmation `json:"confirmation,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// SessionWarning is a user-facing, non-fatal condition of the current selection.
type SessionWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BookingSessionView is what clients render for a session.
type BookingSessionView struct {
	SessionID         string                   `json:"sessionId"`
	Step              WizardStep               `json:"step"`
	StepNumber        int                      `json:"stepNumber"`
	StepCount         int                      `json:"stepCount"`
	Selection         BookingSelection         `json:"selection"`
	Categories        []ServiceCategory        `json:"categories,omitempty"`
	VisibleServices   []Service                `json:"visibleServices,omitempty"`
	AvailableStylists []Stylist                `json:"availableStylists,omitempty"`
	Slots             []string                 `json:"slots,omitempty"`
	AvailabilityReady bool                     `json:"availabilityReady"`
	TotalPrice        float64                  `json:"totalPrice"`
	TotalDuration     int                      `json:"totalDurationMinutes"`
	CanAdvance        bool                     `json:"canAdvance"`
	BlockedReason     string                   `json:"blockedReason,omitempty"`
	Warning           *SessionWarning          `json:"warning,omitempty"`
	Confirmation      *ReservationConfirmation `json:"confirmation,omitempty"`
}
