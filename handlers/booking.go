package handlers

import (
	"context"
	"errors"
	"net/http"

	"glowapp/models"
	"glowapp/services/booking"
	"glowapp/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the server-held booking wizard.
type BookingHandler struct {
	BookingSvc booking.BookingSessionService
}

func NewBookingHandler(svc booking.BookingSessionService) *BookingHandler {
	return &BookingHandler{BookingSvc: svc}
}

var sentinelCodes = []struct {
	err    error
	code   string
	status int
}{
	{booking.ErrSessionNotFound, "sessionNotFound", http.StatusNotFound},
	{booking.ErrSessionConflict, "sessionConflict", http.StatusConflict},
	{booking.ErrSubmissionInFlight, "submissionInFlight", http.StatusConflict},
	{booking.ErrAlreadyBooked, "alreadyBooked", http.StatusConflict},
	{booking.ErrAvailabilityPending, "availabilityPending", http.StatusConflict},
	{booking.ErrNotAtConfirm, "notAtConfirm", http.StatusConflict},
	{booking.ErrCategoryRequired, "categoryRequired", http.StatusUnprocessableEntity},
	{booking.ErrServicesRequired, "servicesRequired", http.StatusUnprocessableEntity},
	{booking.ErrDateTimeRequired, "dateTimeRequired", http.StatusUnprocessableEntity},
	{booking.ErrStaleTime, "staleTime", http.StatusUnprocessableEntity},
	{booking.ErrAtFirstStep, "atFirstStep", http.StatusUnprocessableEntity},
	{booking.ErrIncompatibleStylist, "incompatibleStylist", http.StatusUnprocessableEntity},
	{booking.ErrSlotUnavailable, "slotUnavailable", http.StatusUnprocessableEntity},
	{booking.ErrDateOutOfRange, "dateOutOfRange", http.StatusUnprocessableEntity},
	{booking.ErrUnknownCategory, "unknownCategory", http.StatusBadRequest},
	{booking.ErrUnknownService, "unknownService", http.StatusBadRequest},
	{booking.ErrUnknownStylist, "unknownStylist", http.StatusBadRequest},
	{booking.ErrInvalidDate, "invalidDate", http.StatusBadRequest},
}

// bookingErrorStatus maps a booking failure to an HTTP status and client code.
func bookingErrorStatus(err error) (int, string) {
	switch booking.ErrorCode(err) {
	case booking.CodeUnauthenticated:
		return http.StatusUnauthorized, booking.CodeUnauthenticated
	case booking.CodeValidationRejected:
		return http.StatusUnprocessableEntity, booking.CodeValidationRejected
	case booking.CodeTransientNetworkError:
		return http.StatusServiceUnavailable, booking.CodeTransientNetworkError
	case booking.CodeEmptyCompatibilitySet:
		return http.StatusConflict, booking.CodeEmptyCompatibilitySet
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// renderBookingError writes {error, code}. Server errors hide their details.
func renderBookingError(c *gin.Context, err error) {
	status, code := bookingErrorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		getLogger(c).Error("Booking request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, status, "Booking request failed", "An unexpected error occurred. Please try again later.")
		return
	}
	c.JSON(status, gin.H{"error": booking.UserMessage(err), "code": code})
}

func (h *BookingHandler) InitiateSession(c *gin.Context) {
	var input struct {
		CategoryStep *bool `json:"categoryStep"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
	}
	view, err := h.BookingSvc.InitiateSession(c.Request.Context(), booking.SessionOptions{CategoryStep: input.CategoryStep})
	if err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *BookingHandler) GetSession(c *gin.Context) {
	view, err := h.BookingSvc.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) CancelSession(c *gin.Context) {
	if err := h.BookingSvc.CancelSession(c.Request.Context(), c.Param("sessionID")); err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking session cancelled"})
}

// applySelection binds one string field and applies it to the session.
func (h *BookingHandler) applySelection(c *gin.Context, field string, apply func(ctx context.Context, sessionID, value string) (*models.BookingSessionView, error)) {
	var input map[string]*string
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	value, ok := input[field]
	if !ok || value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": field + " is required"})
		return
	}
	view, err := apply(c.Request.Context(), c.Param("sessionID"), *value)
	if err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SelectCategory handles {"category": "..."}; an empty value clears it.
func (h *BookingHandler) SelectCategory(c *gin.Context) {
	h.applySelection(c, "category", h.BookingSvc.SelectCategory)
}

// ToggleService handles {"serviceId": "..."}.
func (h *BookingHandler) ToggleService(c *gin.Context) {
	h.applySelection(c, "serviceId", h.BookingSvc.ToggleService)
}

// SelectStylist handles {"stylistId": "..."}; "any" or "" means no preference.
func (h *BookingHandler) SelectStylist(c *gin.Context) {
	h.applySelection(c, "stylistId", h.BookingSvc.SelectStylist)
}

// SelectDate handles {"date": "YYYY-MM-DD"}.
func (h *BookingHandler) SelectDate(c *gin.Context) {
	h.applySelection(c, "date", h.BookingSvc.SelectDate)
}

// SelectTime handles {"time": "HH:MM"}.
func (h *BookingHandler) SelectTime(c *gin.Context) {
	h.applySelection(c, "time", h.BookingSvc.SelectTime)
}

func (h *BookingHandler) RefreshAvailability(c *gin.Context) {
	view, err := h.BookingSvc.RefreshAvailability(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Advance moves to the next step, or submits the reservation from the
// confirm step.
func (h *BookingHandler) Advance(c *gin.Context) {
	view, err := h.BookingSvc.Advance(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) Retreat(c *gin.Context) {
	view, err := h.BookingSvc.Retreat(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		renderBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListReservations returns the signed-in user's reservation receipts.
func (h *BookingHandler) ListReservations(c *gin.Context) {
	userID := c.GetString(utils.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": booking.CodeUnauthenticated})
		return
	}
	records, err := h.BookingSvc.ListReservations(c.Request.Context(), userID)
	if err != nil {
		getLogger(c).Error("Failed to list reservations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": records})
}
