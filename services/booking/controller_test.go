package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"glowapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	ctrl  *Controller
	avail *fakeAvailability
	sink  *fakeSink
	auth  *fakeAuth
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		avail: newFakeAvailability(map[string][]string{
			"2025-03-10": {"10:00", "09:00"},
			"2025-03-11": {"13:00"},
		}),
		sink: &fakeSink{},
		auth: &fakeAuth{user: &models.User{ID: "u1"}},
	}
	ctrl, err := StartController(context.Background(), &fakeCatalog{snapshot: testCatalog()}, "s1", false,
		ControllerDeps{Availability: f.avail, Sink: f.sink, Auth: f.auth}, testOptions())
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

// toConfirm drives the controller to the confirm step with service 1 on 2025-03-10 at 09:00.
func (f *controllerFixture) toConfirm(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.ctrl.ToggleService(ctx, "1"))
	require.NoError(t, f.ctrl.Advance(ctx))
	require.NoError(t, f.ctrl.Advance(ctx))
	require.NoError(t, f.ctrl.SelectDate(ctx, "2025-03-10"))
	require.NoError(t, f.ctrl.SelectTime("09:00"))
	require.NoError(t, f.ctrl.Advance(ctx))
	require.Equal(t, models.StepConfirm, f.ctrl.View().Step)
}

func TestStartControllerPropagatesCatalogErrors(t *testing.T) {
	_, err := StartController(context.Background(), &fakeCatalog{err: errors.New("down")}, "s1", false, ControllerDeps{}, testOptions())
	assert.ErrorContains(t, err, "failed to load categories")
}

func TestControllerChangingServicesRefetchesAvailability(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.ToggleService(ctx, "1"))
	require.NoError(t, f.ctrl.Advance(ctx))
	require.NoError(t, f.ctrl.Advance(ctx))
	require.NoError(t, f.ctrl.SelectDate(ctx, "2025-03-10"))
	assert.Equal(t, []string{"09:00", "10:00"}, f.ctrl.View().Slots)
	require.NoError(t, f.ctrl.SelectTime("09:00"))

	// Every fetch must see the time already cleared.
	f.avail.onCall = func(models.AvailabilityQuery) {
		assert.Empty(t, f.ctrl.View().Selection.Time)
	}
	require.NoError(t, f.ctrl.ToggleService(ctx, "1"))
	require.NoError(t, f.ctrl.ToggleService(ctx, "2"))

	view := f.ctrl.View()
	assert.Empty(t, view.Selection.Time)
	assert.False(t, view.CanAdvance)
	assert.ErrorIs(t, f.ctrl.Advance(ctx), ErrDateTimeRequired)

	calls := f.avail.calls()
	require.Len(t, calls, 2, "no fetch while no service is selected")
	assert.Equal(t, []string{"2"}, calls[1].ServiceIDs)
	assert.Empty(t, calls[1].StylistID)

	require.NoError(t, f.ctrl.SelectTime("10:00"))
	assert.NoError(t, f.ctrl.Advance(ctx))
}

func TestControllerLastRequestWins(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.ToggleService(ctx, "1"))
	require.NoError(t, f.ctrl.Advance(ctx))
	require.NoError(t, f.ctrl.Advance(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.avail.onCall = func(q models.AvailabilityQuery) {
		if q.Date == "2025-03-10" {
			once.Do(func() { close(entered) })
			<-release
		}
	}

	done := make(chan error, 1)
	go func() { done <- f.ctrl.SelectDate(ctx, "2025-03-10") }()
	<-entered

	require.NoError(t, f.ctrl.SelectDate(ctx, "2025-03-11"))
	close(release)
	require.NoError(t, <-done, "a superseded response is dropped silently")

	view := f.ctrl.View()
	assert.Equal(t, "2025-03-11", view.Selection.Date)
	assert.Equal(t, []string{"13:00"}, view.Slots)
}

func TestControllerSubmitRequiresUser(t *testing.T) {
	f := newControllerFixture(t)
	f.toConfirm(t)
	f.auth.user = nil

	err := f.ctrl.Advance(context.Background())
	assert.True(t, IsCode(err, CodeUnauthenticated))
	assert.Zero(t, f.sink.count())

	view := f.ctrl.View()
	assert.Equal(t, models.StepConfirm, view.Step)
	assert.Equal(t, "09:00", view.Selection.Time, "selection survives the login redirect")
}

func TestControllerSubmitSuccess(t *testing.T) {
	f := newControllerFixture(t)
	f.toConfirm(t)

	require.NoError(t, f.ctrl.Advance(context.Background()))
	view := f.ctrl.View()
	assert.Equal(t, models.StepBooked, view.Step)
	require.NotNil(t, view.Confirmation)
	assert.Equal(t, "res-1", view.Confirmation.ID)
	assert.Empty(t, view.Selection.ServiceIDs)

	require.Len(t, f.sink.reservations, 1)
	assert.Nil(t, f.sink.reservations[0].StylistID)
	assert.ErrorIs(t, f.ctrl.ToggleService(context.Background(), "1"), ErrAlreadyBooked)
}

func TestControllerSubmitValidationRejected(t *testing.T) {
	f := newControllerFixture(t)
	f.toConfirm(t)
	before := len(f.avail.calls())
	f.sink.err = NewValidationRejectedError("Stylist is already booked at this time.", nil)

	err := f.ctrl.Advance(context.Background())
	assert.True(t, IsCode(err, CodeValidationRejected))

	view := f.ctrl.View()
	assert.Equal(t, models.StepSelectDateTime, view.Step)
	assert.Equal(t, []string{"1"}, view.Selection.ServiceIDs)
	assert.Equal(t, models.AnyStylist, view.Selection.StylistID)
	assert.Empty(t, view.Selection.Time)
	assert.Len(t, f.avail.calls(), before+1, "fresh availability is fetched")
	assert.True(t, view.AvailabilityReady)
}

func TestControllerSubmitTransientKeepsState(t *testing.T) {
	f := newControllerFixture(t)
	f.toConfirm(t)
	f.sink.err = errors.New("connection reset")

	err := f.ctrl.Advance(context.Background())
	assert.True(t, IsCode(err, CodeTransientNetworkError))

	view := f.ctrl.View()
	assert.Equal(t, models.StepConfirm, view.Step)
	assert.Equal(t, "09:00", view.Selection.Time)
	assert.True(t, view.CanAdvance, "retry is allowed")

	f.sink.err = nil
	require.NoError(t, f.ctrl.Advance(context.Background()))
	assert.Equal(t, models.StepBooked, f.ctrl.View().Step)
}

func TestControllerBlocksMutationsWhileSubmitting(t *testing.T) {
	f := newControllerFixture(t)
	f.toConfirm(t)
	f.sink.entered = make(chan struct{})
	f.sink.block = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Advance(context.Background()) }()
	<-f.sink.entered

	assert.ErrorIs(t, f.ctrl.Retreat(context.Background()), ErrSubmissionInFlight)
	assert.ErrorIs(t, f.ctrl.SelectTime("10:00"), ErrSubmissionInFlight)
	assert.ErrorIs(t, f.ctrl.Advance(context.Background()), ErrSubmissionInFlight)

	close(f.sink.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.sink.count())
}
