package booking

import (
	"context"
	"slices"
	"sync"
	"time"

	"glowapp/models"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testOptions() WizardOptions {
	return WizardOptions{
		BookingWindowDays: 60,
		Location:          time.UTC,
		Now:               func() time.Time { return fixedNow },
	}
}

func testCatalog() models.CatalogSnapshot {
	return models.CatalogSnapshot{
		Categories: []models.ServiceCategory{
			{ID: "c1", Name: "Hair"},
			{ID: "c2", Name: "Nails"},
			{ID: "c3", Name: "Makeup"},
		},
		Services: []models.Service{
			{ID: "1", Name: "Haircut", CategoryName: "Hair", Price: 75, DurationMinutes: 60},
			{ID: "2", Name: "Manicure", CategoryName: "Nails", Price: 50, DurationMinutes: 45},
			{ID: "3", Name: "Bridal makeup", CategoryName: "Makeup", Price: 120, DurationMinutes: 90},
		},
		Stylists: []models.Stylist{
			{ID: "A", DisplayName: "Ana", Specialties: []string{"Hair"}},
			{ID: "B", DisplayName: "Bea", Specialties: []string{"Hair", "Nails"}},
		},
	}
}

type fakeCatalog struct {
	snapshot models.CatalogSnapshot
	err      error
}

func (f *fakeCatalog) ListCategories(context.Context) ([]models.ServiceCategory, error) {
	return f.snapshot.Categories, f.err
}

func (f *fakeCatalog) ListServices(context.Context, models.CatalogFilter) ([]models.Service, error) {
	return f.snapshot.Services, f.err
}

func (f *fakeCatalog) ListStylists(context.Context, models.CatalogFilter) ([]models.Stylist, error) {
	return f.snapshot.Stylists, f.err
}

// fakeAvailability answers with slots per date and records every query.
type fakeAvailability struct {
	mu      sync.Mutex
	slots   map[string][]string
	err     error
	queries []models.AvailabilityQuery
	onCall  func(models.AvailabilityQuery)
}

func newFakeAvailability(slots map[string][]string) *fakeAvailability {
	return &fakeAvailability{slots: slots}
}

func (f *fakeAvailability) GetAvailability(ctx context.Context, q models.AvailabilityQuery) (models.AvailabilityResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	hook := f.onCall
	err := f.err
	slots := slices.Clone(f.slots[q.Date])
	f.mu.Unlock()

	if hook != nil {
		hook(q)
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	return models.AvailabilityResponse{"B": {StylistName: "Bea", Slots: slots}}, nil
}

func (f *fakeAvailability) calls() []models.AvailabilityQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queries)
}

type fakeSink struct {
	mu           sync.Mutex
	err          error
	reservations []models.Reservation
	block        chan struct{}
	entered      chan struct{}
	onCall       func()
}

func (f *fakeSink) CreateReservation(ctx context.Context, r models.Reservation) (*models.ReservationConfirmation, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	if f.onCall != nil {
		f.onCall()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations = append(f.reservations, r)
	if f.err != nil {
		return nil, f.err
	}
	stylist := ""
	if r.StylistID != nil {
		stylist = *r.StylistID
	}
	return &models.ReservationConfirmation{
		ID:          "res-1",
		Status:      "pending",
		StylistID:   stylist,
		Date:        r.Date,
		Time:        r.Time,
		ConfirmedAt: fixedNow,
	}, nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reservations)
}

type fakeAuth struct {
	user *models.User
}

func (f *fakeAuth) CurrentUser(context.Context) (*models.User, bool) {
	if f.user == nil {
		return nil, false
	}
	return f.user, true
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []models.ReservationRecord
}

func (f *fakeRecorder) Create(_ context.Context, r models.ReservationRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, r)
	return r.ID, nil
}

func (f *fakeRecorder) GetByUserID(_ context.Context, userID string) ([]models.ReservationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReservationRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeReminders struct {
	scheduled []string
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, r models.ReservationRecord) (*time.Time, error) {
	f.scheduled = append(f.scheduled, r.ID)
	at := fixedNow.Add(time.Hour)
	return &at, nil
}

func boolPtr(b bool) *bool { return &b }
