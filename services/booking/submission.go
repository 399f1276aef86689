package booking

import (
	"context"
	"errors"
	"time"

	"glowapp/models"
)

// persistTimeout bounds session writes made after a salon call returned.
const persistTimeout = 5 * time.Second

// detached returns a context for recording the outcome of a salon call. It
// outlives the request so a client that disconnected mid-call can not leave
// the session flagged as pending or submitting.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

// requireUser returns the signed-in user or an Unauthenticated error. The
// session is left untouched so the user can resume after logging in.
func requireUser(ctx context.Context, auth AuthProvider) (*models.User, error) {
	if auth == nil {
		return nil, NewUnauthenticatedError("please sign in to complete your booking")
	}
	user, ok := auth.CurrentUser(ctx)
	if !ok || user == nil {
		return nil, NewUnauthenticatedError("please sign in to complete your booking")
	}
	return user, nil
}

// createReservation calls the sink and normalizes its failures so that every
// error carries a BookingError code.
func createReservation(ctx context.Context, sink ReservationSink, reservation models.Reservation) (*models.ReservationConfirmation, error) {
	conf, err := sink.CreateReservation(ctx, reservation)
	if err != nil {
		var be *BookingError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, NewTransientNetworkError("could not reach the salon, please try again", err)
	}
	if conf == nil {
		return nil, NewTransientNetworkError("the salon returned an empty confirmation", nil)
	}
	return conf, nil
}

// fetchAvailability asks the resolver for slots. Cancellations and deadlines
// surface as retryable network errors.
func fetchAvailability(ctx context.Context, resolver AvailabilityResolver, query models.AvailabilityQuery) (models.AvailabilityResponse, error) {
	resp, err := resolver.GetAvailability(ctx, query)
	if err == nil {
		return resp, nil
	}
	var be *BookingError
	if errors.As(err, &be) {
		return nil, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, NewTransientNetworkError("availability request was interrupted, please try again", err)
	}
	return nil, err
}
