package booking

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"glowapp/models"
)

var (
	serviceFirstSteps = []models.WizardStep{
		models.StepSelectServices,
		models.StepSelectStylist,
		models.StepSelectDateTime,
		models.StepConfirm,
	}
	categoryFirstSteps = append([]models.WizardStep{models.StepSelectCategory}, serviceFirstSteps...)
)

// DefaultBookingWindowDays is how far ahead a date may be booked.
const DefaultBookingWindowDays = 60

// DefaultPendingTimeout is how long an unanswered availability fetch blocks a
// new one for the same tuple.
const DefaultPendingTimeout = 30 * time.Second

// WizardOptions tune date validation. Zero values fall back to defaults.
type WizardOptions struct {
	BookingWindowDays int
	Location          *time.Location
	Now               func() time.Time
	PendingTimeout    time.Duration
}

func (o WizardOptions) withDefaults() WizardOptions {
	if o.BookingWindowDays <= 0 {
		o.BookingWindowDays = DefaultBookingWindowDays
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.PendingTimeout <= 0 {
		o.PendingTimeout = DefaultPendingTimeout
	}
	return o
}

// AvailabilityTicket identifies one issued availability request. Only the
// ticket matching the session's latest generation may be applied.
type AvailabilityTicket struct {
	Generation uint64
	Key        string
	Query      models.AvailabilityQuery
}

// Wizard applies booking operations to a session. It performs no I/O and is
// not safe for concurrent use; Controller and DefaultBookingSessionService
// serialize access to it.
type Wizard struct {
	session *models.BookingSession
	opts    WizardOptions
}

// NewWizard wraps an existing session.
func NewWizard(session *models.BookingSession, opts WizardOptions) *Wizard {
	return &Wizard{session: session, opts: opts.withDefaults()}
}

// NewSession builds a fresh session over a catalog snapshot.
func NewSession(sessionID string, catalog models.CatalogSnapshot, categoryStep bool, now time.Time) *models.BookingSession {
	s := &models.BookingSession{
		SessionID:    sessionID,
		CategoryStep: categoryStep,
		Catalog:      catalog,
		Selection: models.BookingSelection{
			ServiceIDs: []string{},
			StylistID:  models.AnyStylist,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Step = stepsOf(s)[0]
	s.AvailableStylists = AvailableStylists(nil, catalog.Services, catalog.Stylists, "")
	return s
}

// Session returns the wrapped session.
func (w *Wizard) Session() *models.BookingSession {
	return w.session
}

func stepsOf(s *models.BookingSession) []models.WizardStep {
	if s.CategoryStep {
		return categoryFirstSteps
	}
	return serviceFirstSteps
}

func (w *Wizard) stepIndex() int {
	return slices.Index(stepsOf(w.session), w.session.Step)
}

// TupleKey identifies the (date, services, stylist) combination slots are valid for.
func TupleKey(sel models.BookingSelection) string {
	ids := slices.Clone(sel.ServiceIDs)
	sort.Strings(ids)
	return sel.Date + "|" + strings.Join(ids, ",") + "|" + sel.StylistID
}

func (w *Wizard) currentKey() string {
	return TupleKey(w.session.Selection)
}

func (w *Wizard) checkMutable() error {
	if w.session.Step == models.StepBooked {
		return ErrAlreadyBooked
	}
	if w.session.Submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

// recompute refreshes the derived stylist set and corrects a stylist choice
// that is no longer compatible. It reports whether the stylist was reset.
func (w *Wizard) recompute() bool {
	s := w.session
	s.AvailableStylists = AvailableStylists(s.Selection.ServiceIDs, s.Catalog.Services, s.Catalog.Stylists, s.Selection.Category)
	if s.Selection.StylistID == models.AnyStylist {
		return false
	}
	for _, st := range s.AvailableStylists {
		if st.ID == s.Selection.StylistID {
			return false
		}
	}
	s.Selection.StylistID = models.AnyStylist
	return true
}

// invalidateTime clears the chosen time and discards slots and any in-flight
// fetch for the previous tuple.
func (w *Wizard) invalidateTime() {
	s := w.session
	s.Selection.Time = ""
	s.TimeKey = ""
	s.Availability.Generation++
	s.Availability.Pending = false
	s.Availability.Key = ""
	s.Availability.Slots = nil
}

// SelectCategory sets the browsing category. Selected services outside it stay
// selected so one booking can span categories.
func (w *Wizard) SelectCategory(name string) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name != "" {
		found := false
		for _, c := range w.session.Catalog.Categories {
			if NormalizeCategory(c.Name) == NormalizeCategory(name) {
				name = c.Name
				found = true
				break
			}
		}
		if !found {
			return ErrUnknownCategory
		}
	}
	if w.session.Selection.Category == name {
		return nil
	}
	w.session.Selection.Category = name
	if w.recompute() {
		w.invalidateTime()
	}
	return nil
}

// ToggleService adds or removes a service from the selection.
func (w *Wizard) ToggleService(serviceID string) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	if _, ok := w.session.Catalog.ServiceByID(serviceID); !ok {
		return ErrUnknownService
	}
	sel := &w.session.Selection
	if i := slices.Index(sel.ServiceIDs, serviceID); i >= 0 {
		sel.ServiceIDs = slices.Delete(sel.ServiceIDs, i, i+1)
	} else {
		sel.ServiceIDs = append(sel.ServiceIDs, serviceID)
	}
	w.recompute()
	w.invalidateTime()
	return nil
}

// SelectStylist picks a compatible stylist or "any".
func (w *Wizard) SelectStylist(stylistID string) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	stylistID = strings.TrimSpace(stylistID)
	if stylistID == "" {
		stylistID = models.AnyStylist
	}
	if stylistID != models.AnyStylist {
		if _, ok := w.session.Catalog.StylistByID(stylistID); !ok {
			return ErrUnknownStylist
		}
		compatible := false
		for _, st := range w.session.AvailableStylists {
			if st.ID == stylistID {
				compatible = true
				break
			}
		}
		if !compatible {
			return ErrIncompatibleStylist
		}
	}
	if w.session.Selection.StylistID == stylistID {
		return nil
	}
	w.session.Selection.StylistID = stylistID
	w.invalidateTime()
	return nil
}

// SelectDate sets the appointment date (YYYY-MM-DD) within the booking window.
func (w *Wizard) SelectDate(date string) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	date = strings.TrimSpace(date)
	day, err := time.ParseInLocation("2006-01-02", date, w.opts.Location)
	if err != nil {
		return ErrInvalidDate
	}
	now := w.opts.Now().In(w.opts.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, w.opts.Location)
	last := today.AddDate(0, 0, w.opts.BookingWindowDays)
	if day.Before(today) || day.After(last) {
		return ErrDateOutOfRange
	}
	if w.session.Selection.Date == date {
		return nil
	}
	w.session.Selection.Date = date
	w.invalidateTime()
	return nil
}

// SelectTime picks one of the slots fetched for the current tuple.
func (w *Wizard) SelectTime(slot string) error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	s := w.session
	key := w.currentKey()
	if s.Availability.Key != key {
		if s.Availability.Pending {
			return ErrAvailabilityPending
		}
		return ErrSlotUnavailable
	}
	slot = strings.TrimSpace(slot)
	if !slices.Contains(s.Availability.Slots, slot) {
		return ErrSlotUnavailable
	}
	s.Selection.Time = slot
	s.TimeKey = key
	return nil
}

// timeValid reports whether the chosen time was fetched for the current tuple.
func (w *Wizard) timeValid() bool {
	s := w.session
	key := w.currentKey()
	return s.Selection.Time != "" &&
		s.TimeKey == key &&
		s.Availability.Key == key &&
		slices.Contains(s.Availability.Slots, s.Selection.Time)
}

// guard returns the completion guard failure for step, or nil.
func (w *Wizard) guard(step models.WizardStep) error {
	s := w.session
	switch step {
	case models.StepSelectCategory:
		if s.Selection.Category == "" {
			return ErrCategoryRequired
		}
	case models.StepSelectServices:
		if len(s.Selection.ServiceIDs) == 0 {
			return ErrServicesRequired
		}
	case models.StepSelectStylist:
		if len(s.Selection.ServiceIDs) > 0 && len(s.AvailableStylists) == 0 {
			return ErrEmptyCompatibilitySet
		}
	case models.StepSelectDateTime:
		if s.Selection.Date == "" || s.Selection.Time == "" {
			return ErrDateTimeRequired
		}
		if !w.timeValid() {
			return ErrStaleTime
		}
	}
	return nil
}

// Guard returns the completion guard failure of the current step, or nil.
func (w *Wizard) Guard() error {
	return w.guard(w.session.Step)
}

// Advance moves to the next step if the current step is complete. At the
// confirm step it reports readyToSubmit instead of moving; the caller then
// runs the submission.
func (w *Wizard) Advance() (readyToSubmit bool, err error) {
	if err := w.checkMutable(); err != nil {
		return false, err
	}
	if err := w.Guard(); err != nil {
		return false, err
	}
	steps := stepsOf(w.session)
	i := w.stepIndex()
	if i == len(steps)-1 {
		return true, nil
	}
	w.leaveStep()
	w.session.Step = steps[i+1]
	return false, nil
}

// Retreat moves to the previous step. Selections are kept.
func (w *Wizard) Retreat() error {
	if err := w.checkMutable(); err != nil {
		return err
	}
	i := w.stepIndex()
	if i <= 0 {
		return ErrAtFirstStep
	}
	w.leaveStep()
	w.session.Step = stepsOf(w.session)[i-1]
	return nil
}

// leaveStep marks a pending fetch discardable when navigating away from the
// date/time step.
func (w *Wizard) leaveStep() {
	a := &w.session.Availability
	if w.session.Step == models.StepSelectDateTime && a.Pending {
		a.Generation++
		a.Pending = false
	}
}

// NeedsAvailability reports whether slots must be fetched for the current tuple.
// Slots are only fetched while the date/time step is showing. A pending fetch
// older than the pending timeout is treated as lost.
func (w *Wizard) NeedsAvailability() bool {
	s := w.session
	if s.Step != models.StepSelectDateTime || s.Submitting {
		return false
	}
	if s.Selection.Date == "" || len(s.Selection.ServiceIDs) == 0 {
		return false
	}
	if s.Availability.Pending && !w.pendingExpired() {
		return false
	}
	return s.Availability.Pending || s.Availability.Key != w.currentKey()
}

func (w *Wizard) pendingExpired() bool {
	a := w.session.Availability
	return a.RequestedAt.IsZero() || w.opts.Now().Sub(a.RequestedAt) >= w.opts.PendingTimeout
}

// BeginAvailabilityFetch issues a new availability request for the current
// tuple when one is needed, or when force is set.
func (w *Wizard) BeginAvailabilityFetch(force bool) (AvailabilityTicket, bool) {
	s := w.session
	if !force && !w.NeedsAvailability() {
		return AvailabilityTicket{}, false
	}
	if s.Step == models.StepBooked || s.Submitting || s.Selection.Date == "" || len(s.Selection.ServiceIDs) == 0 {
		return AvailabilityTicket{}, false
	}
	s.Availability.Generation++
	s.Availability.Pending = true
	s.Availability.RequestedAt = w.opts.Now()
	key := w.currentKey()
	if s.Availability.Key != key {
		s.Availability.Key = ""
		s.Availability.Slots = nil
	}

	query := models.AvailabilityQuery{
		Date:       s.Selection.Date,
		ServiceIDs: slices.Clone(s.Selection.ServiceIDs),
	}
	if s.Selection.StylistID != models.AnyStylist {
		query.StylistID = s.Selection.StylistID
	}
	return AvailabilityTicket{Generation: s.Availability.Generation, Key: key, Query: query}, true
}

// ApplyAvailability stores the slots of a finished fetch. Responses for
// anything but the latest issued request are rejected with ErrStaleAvailability.
func (w *Wizard) ApplyAvailability(ticket AvailabilityTicket, resp models.AvailabilityResponse) error {
	s := w.session
	if ticket.Generation != s.Availability.Generation || ticket.Key != w.currentKey() {
		return ErrStaleAvailability
	}
	s.Availability.Pending = false
	s.Availability.Key = ticket.Key
	s.Availability.Slots = FlattenSlots(resp, s.Selection.StylistID)
	if s.Selection.Time != "" && !w.timeValid() {
		s.Selection.Time = ""
		s.TimeKey = ""
	}
	return nil
}

// FailAvailability clears the pending flag of a failed fetch if it is still the latest.
func (w *Wizard) FailAvailability(ticket AvailabilityTicket) {
	if ticket.Generation == w.session.Availability.Generation {
		w.session.Availability.Pending = false
	}
}

// FlattenSlots merges the per-stylist slot lists into one sorted, de-duplicated
// list. For a specific stylist only that stylist's slots count.
func FlattenSlots(resp models.AvailabilityResponse, stylistID string) []string {
	var slots []string
	if stylistID != "" && stylistID != models.AnyStylist {
		slots = slices.Clone(resp[stylistID].Slots)
	} else {
		for _, entry := range resp {
			slots = append(slots, entry.Slots...)
		}
	}
	sort.Strings(slots)
	return slices.Compact(slots)
}

// BeginSubmission checks every guard, builds the reservation payload and marks
// the session as submitting.
func (w *Wizard) BeginSubmission() (models.Reservation, error) {
	if err := w.checkMutable(); err != nil {
		return models.Reservation{}, err
	}
	if w.session.Step != models.StepConfirm {
		if err := w.Guard(); err != nil {
			return models.Reservation{}, err
		}
		return models.Reservation{}, ErrNotAtConfirm
	}
	for _, step := range stepsOf(w.session) {
		if err := w.guard(step); err != nil {
			return models.Reservation{}, err
		}
	}
	sel := w.session.Selection
	res := models.Reservation{
		ServiceIDs: slices.Clone(sel.ServiceIDs),
		Date:       sel.Date,
		Time:       sel.Time,
	}
	if sel.StylistID != models.AnyStylist {
		id := sel.StylistID
		res.StylistID = &id
	}
	w.session.Submitting = true
	return res, nil
}

// CompleteSubmission moves to the terminal booked state and discards the selection.
func (w *Wizard) CompleteSubmission(conf *models.ReservationConfirmation) {
	s := w.session
	s.Submitting = false
	s.Step = models.StepBooked
	s.Confirmation = conf
	s.Selection = models.BookingSelection{ServiceIDs: []string{}, StylistID: models.AnyStylist}
	s.TimeKey = ""
	s.AvailableStylists = nil
	s.Availability = models.AvailabilityState{Generation: s.Availability.Generation + 1}
}

// FailSubmission releases the submitting mark. A rejected reservation sends the
// wizard back to the date/time step with the stale time cleared so a fresh
// availability fetch is required.
func (w *Wizard) FailSubmission(err error) {
	s := w.session
	s.Submitting = false
	if IsCode(err, CodeValidationRejected) {
		s.Step = models.StepSelectDateTime
		w.invalidateTime()
	}
}

// Totals returns the price and duration of the selected services.
func (w *Wizard) Totals() (price float64, minutes int) {
	for _, id := range w.session.Selection.ServiceIDs {
		if svc, ok := w.session.Catalog.ServiceByID(id); ok {
			price += svc.Price
			minutes += svc.DurationMinutes
		}
	}
	return price, minutes
}

// View renders the session for clients.
func (w *Wizard) View() *models.BookingSessionView {
	s := w.session
	steps := stepsOf(s)
	v := &models.BookingSessionView{
		SessionID:    s.SessionID,
		Step:         s.Step,
		StepNumber:   w.stepIndex() + 1,
		StepCount:    len(steps),
		Selection:    s.Selection,
		Confirmation: s.Confirmation,
	}
	if s.Step == models.StepBooked {
		v.StepNumber = len(steps)
		return v
	}
	if s.CategoryStep {
		v.Categories = s.Catalog.Categories
	}
	v.VisibleServices = VisibleServices(s.Catalog.Services, s.Selection.Category)
	v.AvailableStylists = s.AvailableStylists
	if s.Availability.Key != "" && s.Availability.Key == w.currentKey() {
		v.Slots = s.Availability.Slots
		v.AvailabilityReady = true
	}
	v.TotalPrice, v.TotalDuration = w.Totals()
	if len(s.Selection.ServiceIDs) > 0 && len(s.AvailableStylists) == 0 {
		v.Warning = &models.SessionWarning{
			Code:    CodeEmptyCompatibilitySet,
			Message: ErrEmptyCompatibilitySet.(*BookingError).Message,
		}
	}
	if err := w.Guard(); err != nil {
		v.BlockedReason = UserMessage(err)
	} else if !s.Submitting {
		v.CanAdvance = true
	}
	return v
}

// UserMessage returns the message a client should show for err.
func UserMessage(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
