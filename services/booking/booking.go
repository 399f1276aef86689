package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glowapp/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingSessionService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultBookingSessionService) wizard(session *models.BookingSession) *Wizard {
	return NewWizard(session, s.Options)
}

// authorize binds an anonymous session to the signed-in user and hides
// sessions owned by someone else.
func (s *DefaultBookingSessionService) authorize(ctx context.Context, session *models.BookingSession) error {
	var user *models.User
	ok := false
	if s.Auth != nil {
		user, ok = s.Auth.CurrentUser(ctx)
	}
	if session.UserID == "" {
		if ok && user != nil {
			session.UserID = user.ID
		}
		return nil
	}
	if !ok || user == nil || user.ID != session.UserID {
		return ErrSessionNotFound
	}
	return nil
}

// update runs op on the stored session and then fetches availability if the
// wizard needs it.
func (s *DefaultBookingSessionService) update(ctx context.Context, sessionID string, op func(w *Wizard) error) (*models.BookingSessionView, error) {
	session, err := s.Store.Update(ctx, sessionID, func(session *models.BookingSession) error {
		if err := s.authorize(ctx, session); err != nil {
			return err
		}
		return op(s.wizard(session))
	})
	if err != nil {
		return nil, err
	}
	return s.syncAvailability(ctx, session, false)
}

// syncAvailability issues an availability fetch outside any transaction and
// applies the result only if no newer request superseded it.
func (s *DefaultBookingSessionService) syncAvailability(ctx context.Context, session *models.BookingSession, force bool) (*models.BookingSessionView, error) {
	var ticket AvailabilityTicket
	var issued bool
	if force || s.wizard(session).NeedsAvailability() {
		var err error
		session, err = s.Store.Update(ctx, session.SessionID, func(session *models.BookingSession) error {
			ticket, issued = s.wizard(session).BeginAvailabilityFetch(force)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if !issued {
		return s.wizard(session).View(), nil
	}

	resp, fetchErr := fetchAvailability(ctx, s.Availability, ticket.Query)

	pctx, cancel := detached(ctx)
	defer cancel()
	var stale bool
	updated, err := s.Store.Update(pctx, session.SessionID, func(session *models.BookingSession) error {
		stale = false
		w := s.wizard(session)
		if fetchErr != nil {
			w.FailAvailability(ticket)
			return nil
		}
		if err := w.ApplyAvailability(ticket, resp); err != nil {
			if errors.Is(err, ErrStaleAvailability) {
				stale = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fetchErr != nil {
		s.log().Warn("Availability fetch failed",
			zap.String("sessionId", session.SessionID), zap.Error(fetchErr))
		return nil, fetchErr
	}
	if stale {
		s.log().Debug("Discarded stale availability response",
			zap.String("sessionId", session.SessionID),
			zap.Uint64("generation", ticket.Generation))
	}
	return s.wizard(updated).View(), nil
}

// InitiateSession loads the catalog once, creates a session and stores it.
func (s *DefaultBookingSessionService) InitiateSession(ctx context.Context, opts SessionOptions) (*models.BookingSessionView, error) {
	catalog, err := LoadCatalog(ctx, s.Catalog)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if s.Options.Now != nil {
		now = s.Options.Now()
	}
	categoryStep := s.DefaultCategoryStep
	if opts.CategoryStep != nil {
		categoryStep = *opts.CategoryStep
	}
	session := NewSession(uuid.New().String(), catalog, categoryStep, now)
	if err := s.authorize(ctx, session); err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, session); err != nil {
		return nil, err
	}
	s.log().Info("Booking session started",
		zap.String("sessionId", session.SessionID),
		zap.String("userId", session.UserID),
		zap.Bool("categoryStep", session.CategoryStep))
	return s.wizard(session).View(), nil
}

// GetSession returns the current view, binding the session to the user who
// resumes it after signing in.
func (s *DefaultBookingSessionService) GetSession(ctx context.Context, sessionID string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(*Wizard) error { return nil })
}

func (s *DefaultBookingSessionService) SelectCategory(ctx context.Context, sessionID, category string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(w *Wizard) error { return w.SelectCategory(category) })
}

func (s *DefaultBookingSessionService) ToggleService(ctx context.Context, sessionID, serviceID string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(w *Wizard) error { return w.ToggleService(serviceID) })
}

func (s *DefaultBookingSessionService) SelectStylist(ctx context.Context, sessionID, stylistID string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(w *Wizard) error { return w.SelectStylist(stylistID) })
}

func (s *DefaultBookingSessionService) SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(w *Wizard) error { return w.SelectDate(date) })
}

func (s *DefaultBookingSessionService) SelectTime(ctx context.Context, sessionID, slot string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(w *Wizard) error { return w.SelectTime(slot) })
}

func (s *DefaultBookingSessionService) Retreat(ctx context.Context, sessionID string) (*models.BookingSessionView, error) {
	return s.update(ctx, sessionID, func(w *Wizard) error { return w.Retreat() })
}

// RefreshAvailability re-fetches slots for the current selection.
func (s *DefaultBookingSessionService) RefreshAvailability(ctx context.Context, sessionID string) (*models.BookingSessionView, error) {
	session, err := s.Store.Update(ctx, sessionID, func(session *models.BookingSession) error {
		if err := s.authorize(ctx, session); err != nil {
			return err
		}
		if session.Selection.Date == "" || len(session.Selection.ServiceIDs) == 0 {
			return ErrDateTimeRequired
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.syncAvailability(ctx, session, true)
}

// Advance completes the current step. At the confirm step it submits the
// reservation on behalf of the signed-in user.
func (s *DefaultBookingSessionService) Advance(ctx context.Context, sessionID string) (*models.BookingSessionView, error) {
	var (
		submit      bool
		reservation models.Reservation
		user        *models.User
	)
	session, err := s.Store.Update(ctx, sessionID, func(session *models.BookingSession) error {
		submit = false
		if err := s.authorize(ctx, session); err != nil {
			return err
		}
		w := s.wizard(session)
		ready, err := w.Advance()
		if err != nil || !ready {
			return err
		}
		u, err := requireUser(ctx, s.Auth)
		if err != nil {
			return err
		}
		res, err := w.BeginSubmission()
		if err != nil {
			return err
		}
		submit, reservation, user = true, res, u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !submit {
		return s.syncAvailability(ctx, session, false)
	}
	return s.submit(ctx, session, user, reservation)
}

func (s *DefaultBookingSessionService) submit(ctx context.Context, session *models.BookingSession, user *models.User, reservation models.Reservation) (*models.BookingSessionView, error) {
	logger := s.log().With(zap.String("sessionId", session.SessionID), zap.String("userId", user.ID))
	selection := session.Selection
	catalog := session.Catalog

	conf, subErr := createReservation(ctx, s.Sink, reservation)

	pctx, cancel := detached(ctx)
	defer cancel()
	updated, err := s.Store.Update(pctx, session.SessionID, func(session *models.BookingSession) error {
		w := s.wizard(session)
		if subErr != nil {
			w.FailSubmission(subErr)
			return nil
		}
		w.CompleteSubmission(conf)
		return nil
	})

	if subErr != nil {
		logger.Warn("Reservation was not accepted",
			zap.String("code", ErrorCode(subErr)), zap.Error(subErr))
		if err != nil {
			logger.Error("Failed to release submitting session", zap.Error(err))
			return nil, subErr
		}
		if IsCode(subErr, CodeValidationRejected) {
			if _, ferr := s.syncAvailability(ctx, updated, false); ferr != nil {
				logger.Warn("Failed to refresh availability after rejected booking", zap.Error(ferr))
			}
		}
		return nil, subErr
	}

	logger.Info("Reservation confirmed", zap.String("reservationId", conf.ID))
	if err != nil {
		// The salon accepted the booking; the confirmation still goes back to the client.
		logger.Warn("Failed to persist booked session", zap.Error(err))
		updated = session
		s.wizard(updated).CompleteSubmission(conf)
	}

	s.recordReceipt(pctx, logger, user, session.SessionID, selection, catalog, conf)
	return s.wizard(updated).View(), nil
}

// recordReceipt stores a local receipt and schedules its reminder. Failures
// are logged only; the reservation itself already succeeded.
func (s *DefaultBookingSessionService) recordReceipt(ctx context.Context, logger *zap.Logger, user *models.User, sessionID string, selection models.BookingSelection, catalog models.CatalogSnapshot, conf *models.ReservationConfirmation) {
	if s.Recorder == nil {
		return
	}
	record := models.ReservationRecord{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		SessionID:    sessionID,
		ServiceIDs:   selection.ServiceIDs,
		Confirmation: *conf,
		CreatedAt:    time.Now(),
	}
	for _, id := range selection.ServiceIDs {
		if svc, ok := catalog.ServiceByID(id); ok {
			record.ServiceNames = append(record.ServiceNames, svc.Name)
		}
	}
	if s.Reminders != nil {
		at, err := s.Reminders.ScheduleReminder(ctx, record)
		if err != nil {
			logger.Warn("Failed to schedule appointment reminder", zap.Error(err))
		}
		record.ReminderAt = at
	}
	if _, err := s.Recorder.Create(ctx, record); err != nil {
		logger.Error("Failed to record reservation receipt", zap.Error(err))
	}
}

// CancelSession discards a session.
func (s *DefaultBookingSessionService) CancelSession(ctx context.Context, sessionID string) error {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != "" {
		if err := s.authorize(ctx, session); err != nil {
			return err
		}
	}
	if session.Submitting {
		return ErrSubmissionInFlight
	}
	if err := s.Store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to cancel booking session: %w", err)
	}
	return nil
}

// ListReservations returns the receipts recorded for userID.
func (s *DefaultBookingSessionService) ListReservations(ctx context.Context, userID string) ([]models.ReservationRecord, error) {
	if s.Recorder == nil {
		return []models.ReservationRecord{}, nil
	}
	records, err := s.Recorder.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return records, nil
}
