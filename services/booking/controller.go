package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"glowapp/models"

	"go.uber.org/zap"
)

// ControllerDeps are the collaborators of an in-process wizard.
type ControllerDeps struct {
	Availability AvailabilityResolver
	Sink         ReservationSink
	Auth         AuthProvider
	Logger       *zap.Logger
}

// Controller drives one booking wizard held in memory. It is safe for
// concurrent use: state changes happen under a mutex and network calls run
// outside it, with availability results applied only if still current.
type Controller struct {
	mu     sync.Mutex
	wizard *Wizard
	deps   ControllerDeps
}

// NewController wraps an existing session.
func NewController(session *models.BookingSession, deps ControllerDeps, opts WizardOptions) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{wizard: NewWizard(session, opts), deps: deps}
}

// StartController loads the catalog and returns a controller on a fresh session.
func StartController(ctx context.Context, catalog CatalogProvider, sessionID string, categoryStep bool, deps ControllerDeps, opts WizardOptions) (*Controller, error) {
	snapshot, err := LoadCatalog(ctx, catalog)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}
	return NewController(NewSession(sessionID, snapshot, categoryStep, now), deps, opts), nil
}

// LoadCatalog fetches the full catalog once for a new session.
func LoadCatalog(ctx context.Context, catalog CatalogProvider) (models.CatalogSnapshot, error) {
	var snapshot models.CatalogSnapshot
	var err error
	if snapshot.Categories, err = catalog.ListCategories(ctx); err != nil {
		return snapshot, fmt.Errorf("failed to load categories: %w", err)
	}
	if snapshot.Services, err = catalog.ListServices(ctx, models.CatalogFilter{}); err != nil {
		return snapshot, fmt.Errorf("failed to load services: %w", err)
	}
	if snapshot.Stylists, err = catalog.ListStylists(ctx, models.CatalogFilter{}); err != nil {
		return snapshot, fmt.Errorf("failed to load stylists: %w", err)
	}
	return snapshot, nil
}

func (c *Controller) mutate(ctx context.Context, op func(w *Wizard) error) error {
	c.mu.Lock()
	err := op(c.wizard)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.syncAvailability(ctx, false)
}

func (c *Controller) SelectCategory(ctx context.Context, name string) error {
	return c.mutate(ctx, func(w *Wizard) error { return w.SelectCategory(name) })
}

func (c *Controller) ToggleService(ctx context.Context, serviceID string) error {
	return c.mutate(ctx, func(w *Wizard) error { return w.ToggleService(serviceID) })
}

func (c *Controller) SelectStylist(ctx context.Context, stylistID string) error {
	return c.mutate(ctx, func(w *Wizard) error { return w.SelectStylist(stylistID) })
}

func (c *Controller) SelectDate(ctx context.Context, date string) error {
	return c.mutate(ctx, func(w *Wizard) error { return w.SelectDate(date) })
}

func (c *Controller) SelectTime(slot string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wizard.SelectTime(slot)
}

func (c *Controller) Retreat(ctx context.Context) error {
	return c.mutate(ctx, func(w *Wizard) error { return w.Retreat() })
}

// RefreshAvailability re-fetches slots for the current tuple even if some are cached.
func (c *Controller) RefreshAvailability(ctx context.Context) error {
	return c.syncAvailability(ctx, true)
}

// syncAvailability issues a fetch if the wizard needs one and applies the
// response unless a newer request superseded it.
func (c *Controller) syncAvailability(ctx context.Context, force bool) error {
	c.mu.Lock()
	ticket, ok := c.wizard.BeginAvailabilityFetch(force)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	resp, err := fetchAvailability(ctx, c.deps.Availability, ticket.Query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.wizard.FailAvailability(ticket)
		return err
	}
	if err := c.wizard.ApplyAvailability(ticket, resp); err != nil {
		if errors.Is(err, ErrStaleAvailability) {
			c.deps.Logger.Debug("Discarded stale availability response",
				zap.String("sessionId", c.wizard.Session().SessionID),
				zap.Uint64("generation", ticket.Generation))
			return nil
		}
		return err
	}
	return nil
}

// Advance completes the current step. At the confirm step it submits the
// reservation and returns its outcome.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	submit, err := c.wizard.Advance()
	if err != nil || !submit {
		c.mu.Unlock()
		if err != nil {
			return err
		}
		return c.syncAvailability(ctx, false)
	}
	if _, err := requireUser(ctx, c.deps.Auth); err != nil {
		c.mu.Unlock()
		return err
	}
	reservation, err := c.wizard.BeginSubmission()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	conf, err := createReservation(ctx, c.deps.Sink, reservation)

	c.mu.Lock()
	if err != nil {
		c.wizard.FailSubmission(err)
		c.mu.Unlock()
		if IsCode(err, CodeValidationRejected) {
			if ferr := c.syncAvailability(ctx, false); ferr != nil {
				c.deps.Logger.Warn("Failed to refresh availability after rejected booking", zap.Error(ferr))
			}
		}
		return err
	}
	c.wizard.CompleteSubmission(conf)
	c.mu.Unlock()
	return nil
}

// View returns the current read model.
func (c *Controller) View() *models.BookingSessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wizard.View()
}

// Confirmation returns the reservation confirmation once booked.
func (c *Controller) Confirmation() *models.ReservationConfirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wizard.Session().Confirmation
}
