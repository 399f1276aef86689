// Package salon is the REST client of the salon backend. It serves the
// catalog, availability and reservation needs of the booking wizard.
package salon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"glowapp/models"
	"glowapp/services/auth"
	"glowapp/services/booking"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Client talks to the salon REST API. Requests are never retried so that a
// reservation is not created twice.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// NewClient creates a client for the API rooted at baseURL, e.g. "http://localhost:8000/api".
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ booking.CatalogProvider      = (*Client)(nil)
	_ booking.AvailabilityResolver = (*Client)(nil)
	_ booking.ReservationSink      = (*Client)(nil)
)

// request prepares a call carrying the signed-in user's token, if any.
func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if user, ok := auth.UserFromContext(ctx); ok && user.Token != "" {
		req.SetAuthToken(user.Token)
	}
	return req
}

// classify maps transport failures and HTTP statuses onto booking error codes.
func (c *Client) classify(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return booking.NewTransientNetworkError(op+" was cancelled", err)
		}
		return booking.NewTransientNetworkError("could not reach the salon, please try again", fmt.Errorf("%s: %w", op, err))
	}
	if !resp.IsError() {
		return nil
	}

	status := resp.StatusCode()
	msg := errorMessage(resp.Body())
	cause := fmt.Errorf("%s: salon API returned %d", op, status)
	c.logger.Warn("Salon API request failed",
		zap.String("op", op), zap.Int("status", status), zap.String("message", msg))

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			msg = "please sign in again"
		}
		return &booking.BookingError{Code: booking.CodeUnauthenticated, Message: msg, Err: cause}
	case status == http.StatusBadRequest || status == http.StatusNotFound ||
		status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "the salon rejected this request"
		}
		return booking.NewValidationRejectedError(msg, cause)
	default:
		return booking.NewTransientNetworkError("the salon is temporarily unavailable, please try again", cause)
	}
}

func (c *Client) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	var out []categoryDTO
	resp, err := c.request(ctx).SetResult(&out).Get("/salon/categories/")
	if err := c.classify("list categories", resp, err); err != nil {
		return nil, err
	}
	categories := make([]models.ServiceCategory, 0, len(out))
	for _, cat := range out {
		categories = append(categories, cat.toModel())
	}
	return categories, nil
}

// categoryNames resolves category ids for payloads that only carry ids.
func (c *Client) categoryNames(ctx context.Context) (map[string]string, error) {
	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

func (c *Client) ListServices(ctx context.Context, filter models.CatalogFilter) ([]models.Service, error) {
	var out []serviceDTO
	req := c.request(ctx).SetResult(&out)
	if filter.CategoryName != "" {
		req.SetQueryParam("category", filter.CategoryName)
	}
	resp, err := req.Get("/salon/services/")
	if err := c.classify("list services", resp, err); err != nil {
		return nil, err
	}

	var names map[string]string
	for _, svc := range out {
		if svc.CategoryName == "" && svc.Category.Name == "" && svc.Category.ID != "" {
			if names, err = c.categoryNames(ctx); err != nil {
				return nil, err
			}
			break
		}
	}

	services := make([]models.Service, 0, len(out))
	for _, dto := range out {
		if dto.IsActive != nil && !*dto.IsActive {
			continue
		}
		svc := dto.toModel(names)
		if filter.CategoryName != "" && booking.NormalizeCategory(svc.CategoryName) != booking.NormalizeCategory(filter.CategoryName) {
			continue
		}
		services = append(services, svc)
	}
	return services, nil
}

func (c *Client) ListStylists(ctx context.Context, filter models.CatalogFilter) ([]models.Stylist, error) {
	var out []stylistDTO
	req := c.request(ctx).SetResult(&out)
	if filter.CategoryName != "" {
		req.SetQueryParam("category", filter.CategoryName)
	}
	resp, err := req.Get("/salon/stylists/")
	if err := c.classify("list stylists", resp, err); err != nil {
		return nil, err
	}

	var names map[string]string
	for _, st := range out {
		for _, sp := range st.Specialties {
			if sp.Name == "" && sp.ID != "" && names == nil {
				if names, err = c.categoryNames(ctx); err != nil {
					return nil, err
				}
			}
		}
	}

	var required map[string]struct{}
	if filter.CategoryName != "" {
		required = map[string]struct{}{booking.NormalizeCategory(filter.CategoryName): {}}
	}
	stylists := make([]models.Stylist, 0, len(out))
	for _, dto := range out {
		if dto.IsAvailable != nil && !*dto.IsAvailable {
			continue
		}
		st := dto.toModel(names)
		if !booking.CanPerform(st, required) {
			continue
		}
		stylists = append(stylists, st)
	}
	return stylists, nil
}

func (c *Client) GetAvailability(ctx context.Context, query models.AvailabilityQuery) (models.AvailabilityResponse, error) {
	out := map[string]availabilityEntryDTO{}
	req := c.request(ctx).
		SetResult(&out).
		SetQueryParam("date", query.Date).
		SetQueryParam("service_ids", strings.Join(query.ServiceIDs, ","))
	if query.StylistID != "" && query.StylistID != models.AnyStylist {
		req.SetQueryParam("stylist_id", query.StylistID)
	}
	resp, err := req.Get("/salon/appointments/availability/")
	if err := c.classify("get availability", resp, err); err != nil {
		return nil, err
	}

	result := make(models.AvailabilityResponse, len(out))
	for stylistID, entry := range out {
		slots := make([]string, 0, len(entry.Slots))
		for _, s := range entry.Slots {
			slots = append(slots, normalizeSlot(s))
		}
		result[stylistID] = models.StylistSlots{StylistName: entry.StylistName, Slots: slots}
	}
	return result, nil
}

func (c *Client) CreateReservation(ctx context.Context, reservation models.Reservation) (*models.ReservationConfirmation, error) {
	body := appointmentRequestDTO{
		ServiceIDs:      reservation.ServiceIDs,
		StylistID:       reservation.StylistID,
		AppointmentDate: reservation.Date,
		AppointmentTime: reservation.Time,
	}
	var out appointmentDTO
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post("/salon/appointments/")
	if err := c.classify("create reservation", resp, err); err != nil {
		return nil, err
	}
	conf := out.toModel(reservation)
	conf.ConfirmedAt = time.Now()
	return conf, nil
}
