package booking

import (
	"context"
	"time"

	"glowapp/models"

	"go.uber.org/zap"
)

// CatalogProvider lists the read-only salon catalog.
type CatalogProvider interface {
	ListCategories(ctx context.Context) ([]models.ServiceCategory, error)
	ListServices(ctx context.Context, filter models.CatalogFilter) ([]models.Service, error)
	ListStylists(ctx context.Context, filter models.CatalogFilter) ([]models.Stylist, error)
}

// AvailabilityResolver returns bookable slots keyed by resolved stylist.
type AvailabilityResolver interface {
	GetAvailability(ctx context.Context, query models.AvailabilityQuery) (models.AvailabilityResponse, error)
}

// ReservationSink accepts a finalized reservation. Failures are *BookingError.
type ReservationSink interface {
	CreateReservation(ctx context.Context, reservation models.Reservation) (*models.ReservationConfirmation, error)
}

// AuthProvider exposes the signed-in user, if any.
type AuthProvider interface {
	CurrentUser(ctx context.Context) (*models.User, bool)
}

// ReservationRecorder keeps a local receipt of accepted reservations.
type ReservationRecorder interface {
	Create(ctx context.Context, record models.ReservationRecord) (string, error)
	GetByUserID(ctx context.Context, userID string) ([]models.ReservationRecord, error)
}

// ReminderScheduler schedules an appointment reminder for a receipt and
// returns when it will fire, or nil when the appointment is too close.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, record models.ReservationRecord) (*time.Time, error)
}

// SessionStore persists booking sessions between requests.
type SessionStore interface {
	Create(ctx context.Context, session *models.BookingSession) error
	Get(ctx context.Context, sessionID string) (*models.BookingSession, error)
	// Update loads the session, applies fn and saves it atomically. If the
	// session changes underneath, Update retries fn on the fresh copy.
	Update(ctx context.Context, sessionID string, fn func(*models.BookingSession) error) (*models.BookingSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// BookingSessionService drives server-held booking wizards.
type BookingSessionService interface {
	InitiateSession(ctx context.Context, opts SessionOptions) (*models.BookingSessionView, error)
	GetSession(ctx context.Context, sessionID string) (*models.BookingSessionView, error)
	SelectCategory(ctx context.Context, sessionID, category string) (*models.BookingSessionView, error)
	ToggleService(ctx context.Context, sessionID, serviceID string) (*models.BookingSessionView, error)
	SelectStylist(ctx context.Context, sessionID, stylistID string) (*models.BookingSessionView, error)
	SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSessionView, error)
	SelectTime(ctx context.Context, sessionID, slot string) (*models.BookingSessionView, error)
	RefreshAvailability(ctx context.Context, sessionID string) (*models.BookingSessionView, error)
	Advance(ctx context.Context, sessionID string) (*models.BookingSessionView, error)
	Retreat(ctx context.Context, sessionID string) (*models.BookingSessionView, error)
	CancelSession(ctx context.Context, sessionID string) error
	ListReservations(ctx context.Context, userID string) ([]models.ReservationRecord, error)
}

// SessionOptions configures a new booking session. A nil CategoryStep uses
// the service default.
type SessionOptions struct {
	CategoryStep *bool
}

// DefaultBookingSessionService keeps wizards in a SessionStore and talks to
// the salon through the catalog, availability and reservation collaborators.
// Recorder and Reminders are optional. DefaultCategoryStep applies to sessions
// that do not choose themselves.
type DefaultBookingSessionService struct {
	Catalog      CatalogProvider
	Availability AvailabilityResolver
	Sink         ReservationSink
	Auth         AuthProvider
	Store        SessionStore
	Recorder     ReservationRecorder
	Reminders    ReminderScheduler
	Options      WizardOptions
	Logger       *zap.Logger

	DefaultCategoryStep bool
}
