package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"glowapp/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc       *DefaultBookingSessionService
	mr        *miniredis.Miniredis
	avail     *fakeAvailability
	sink      *fakeSink
	auth      *fakeAuth
	recorder  *fakeRecorder
	reminders *fakeReminders
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &serviceFixture{
		mr: mr,
		avail: newFakeAvailability(map[string][]string{
			"2025-03-10": {"09:00", "10:00"},
			"2025-03-11": {"13:00"},
		}),
		sink:      &fakeSink{},
		auth:      &fakeAuth{},
		recorder:  &fakeRecorder{},
		reminders: &fakeReminders{},
	}
	f.svc = &DefaultBookingSessionService{
		Catalog:      &fakeCatalog{snapshot: testCatalog()},
		Availability: f.avail,
		Sink:         f.sink,
		Auth:         f.auth,
		Store:        NewRedisSessionStore(client, 10*time.Minute),
		Recorder:     f.recorder,
		Reminders:    f.reminders,
		Options:      testOptions(),
	}
	return f
}

// toDateTime walks a new anonymous session to the date/time step with one service.
func (f *serviceFixture) toDateTime(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)
	_, err = f.svc.ToggleService(ctx, view.SessionID, "1")
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, view.SessionID)
	require.NoError(t, err)
	view, err = f.svc.Advance(ctx, view.SessionID)
	require.NoError(t, err)
	require.Equal(t, models.StepSelectDateTime, view.Step)
	return view.SessionID
}

// toConfirm walks a new anonymous session to the confirm step.
func (f *serviceFixture) toConfirm(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)
	id := view.SessionID

	_, err = f.svc.ToggleService(ctx, id, "1")
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, id)
	require.NoError(t, err)
	view, err = f.svc.SelectDate(ctx, id, "2025-03-10")
	require.NoError(t, err)
	require.Equal(t, []string{"09:00", "10:00"}, view.Slots)
	_, err = f.svc.SelectTime(ctx, id, "09:00")
	require.NoError(t, err)
	view, err = f.svc.Advance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.StepConfirm, view.Step)
	return id
}

func TestSessionLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	view, err := f.svc.InitiateSession(ctx, SessionOptions{CategoryStep: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectCategory, view.Step)
	assert.Len(t, view.Categories, 3)
	assert.True(t, f.mr.Exists(sessionKey(view.SessionID)))
	assert.Equal(t, 10*time.Minute, f.mr.TTL(sessionKey(view.SessionID)))

	view, err = f.svc.SelectCategory(ctx, view.SessionID, "nails")
	require.NoError(t, err)
	assert.Equal(t, "Nails", view.Selection.Category)

	got, err := f.svc.GetSession(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Nails", got.Selection.Category)

	require.NoError(t, f.svc.CancelSession(ctx, view.SessionID))
	_, err = f.svc.GetSession(ctx, view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionExpires(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)

	f.mr.FastForward(11 * time.Minute)
	_, err = f.svc.ToggleService(ctx, view.SessionID, "1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGuardErrorsDoNotPersist(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, view.SessionID)
	assert.ErrorIs(t, err, ErrServicesRequired)
	_, err = f.svc.ToggleService(ctx, view.SessionID, "nope")
	assert.ErrorIs(t, err, ErrUnknownService)

	got, err := f.svc.GetSession(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectServices, got.Step)
	assert.Empty(t, got.Selection.ServiceIDs)
}

func TestSubmitAfterLoginResumesSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.toConfirm(t)

	_, err := f.svc.Advance(ctx, id)
	assert.True(t, IsCode(err, CodeUnauthenticated))
	assert.Zero(t, f.sink.count())

	f.auth.user = &models.User{ID: "u1"}
	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirm, view.Step)
	assert.Equal(t, "09:00", view.Selection.Time)

	view, err = f.svc.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepBooked, view.Step)
	require.NotNil(t, view.Confirmation)

	require.Len(t, f.recorder.records, 1)
	record := f.recorder.records[0]
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, []string{"Haircut"}, record.ServiceNames)
	assert.NotNil(t, record.ReminderAt)
	assert.Equal(t, []string{record.ID}, f.reminders.scheduled)

	records, err := f.svc.ListReservations(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = f.svc.ToggleService(ctx, id, "1")
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestSessionIsHiddenFromOtherUsers(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.auth.user = &models.User{ID: "u1"}
	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)

	f.auth.user = &models.User{ID: "u2"}
	_, err = f.svc.GetSession(ctx, view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	f.auth.user = nil
	_, err = f.svc.GetSession(ctx, view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceSubmitValidationRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.auth.user = &models.User{ID: "u1"}
	id := f.toConfirm(t)
	f.sink.err = NewValidationRejectedError("Stylist is already booked at this time.", nil)

	_, err := f.svc.Advance(ctx, id)
	assert.True(t, IsCode(err, CodeValidationRejected))

	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectDateTime, view.Step)
	assert.Equal(t, []string{"1"}, view.Selection.ServiceIDs)
	assert.Empty(t, view.Selection.Time)
	assert.True(t, view.AvailabilityReady)
	assert.Empty(t, f.recorder.records)
}

func TestRefreshAvailability(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)

	_, err = f.svc.RefreshAvailability(ctx, view.SessionID)
	assert.ErrorIs(t, err, ErrDateTimeRequired)

	id := f.toConfirm(t)
	before := len(f.avail.calls())
	_, err = f.svc.RefreshAvailability(ctx, id)
	require.NoError(t, err)
	assert.Len(t, f.avail.calls(), before+1)
}

func TestRedisSessionStoreUpdateRetriesOnConflict(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, NewSession("s1", testCatalog(), false, fixedNow)))
	assert.Error(t, store.Create(ctx, NewSession("s1", testCatalog(), false, fixedNow)))

	attempts := 0
	updated, err := store.Update(ctx, "s1", func(s *models.BookingSession) error {
		attempts++
		if attempts == 1 {
			// Another writer commits between our read and our write.
			_, err := store.Update(ctx, "s1", func(s *models.BookingSession) error {
				s.Selection.Date = "2025-03-10"
				return nil
			})
			require.NoError(t, err)
		}
		s.Selection.ServiceIDs = append(s.Selection.ServiceIDs, "1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "2025-03-10", updated.Selection.Date)
	assert.Equal(t, []string{"1"}, updated.Selection.ServiceIDs)

	_, err = store.Update(ctx, "missing", func(*models.BookingSession) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInitiateSessionUsesDefaultCategoryStep(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.DefaultCategoryStep = true
	ctx := context.Background()

	view, err := f.svc.InitiateSession(ctx, SessionOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectCategory, view.Step)

	view, err = f.svc.InitiateSession(ctx, SessionOptions{CategoryStep: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.StepSelectServices, view.Step)
}

func TestServiceLatestDateWins(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.toDateTime(t)

	var nested *models.BookingSessionView
	var once sync.Once
	f.avail.onCall = func(q models.AvailabilityQuery) {
		if q.Date != "2025-03-10" {
			return
		}
		once.Do(func() {
			var err error
			nested, err = f.svc.SelectDate(ctx, id, "2025-03-11")
			require.NoError(t, err)
		})
	}

	view, err := f.svc.SelectDate(ctx, id, "2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, nested)
	assert.Equal(t, []string{"13:00"}, nested.Slots)
	assert.Equal(t, "2025-03-11", view.Selection.Date)
	assert.Equal(t, []string{"13:00"}, view.Slots)

	_, err = f.svc.SelectTime(ctx, id, "09:00")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, err = f.svc.SelectTime(ctx, id, "13:00")
	assert.NoError(t, err)
}

func TestCancelledAvailabilityFetchCanBeRetried(t *testing.T) {
	f := newServiceFixture(t)
	id := f.toDateTime(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.avail.onCall = func(models.AvailabilityQuery) { cancel() }

	_, err := f.svc.SelectDate(ctx, id, "2025-03-10")
	assert.True(t, IsCode(err, CodeTransientNetworkError), "got %v", err)

	session, err := f.svc.Store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, session.Availability.Pending)
	assert.Equal(t, "2025-03-10", session.Selection.Date)

	view, err := f.svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, view.AvailabilityReady)
	assert.Equal(t, []string{"09:00", "10:00"}, view.Slots)

	_, err = f.svc.SelectTime(context.Background(), id, "09:00")
	assert.NoError(t, err)
}

func TestCancelledSubmissionCanBeRetried(t *testing.T) {
	f := newServiceFixture(t)
	f.auth.user = &models.User{ID: "u1"}
	id := f.toConfirm(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.sink.onCall = cancel

	_, err := f.svc.Advance(ctx, id)
	assert.True(t, IsCode(err, CodeTransientNetworkError), "got %v", err)

	session, err := f.svc.Store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, session.Submitting)
	assert.Equal(t, models.StepConfirm, session.Step)

	view, err := f.svc.Advance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StepBooked, view.Step)
	assert.Len(t, f.recorder.records, 1)
}

func TestCancelAfterInterruptedSubmission(t *testing.T) {
	f := newServiceFixture(t)
	f.auth.user = &models.User{ID: "u1"}
	id := f.toConfirm(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.sink.onCall = cancel

	_, err := f.svc.Advance(ctx, id)
	require.Error(t, err)
	require.NoError(t, f.svc.CancelSession(context.Background(), id))
	assert.False(t, f.mr.Exists(sessionKey(id)))
}
