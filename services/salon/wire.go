package salon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"glowapp/models"
)

// flexID accepts numeric and string ids.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "null" {
		s = ""
	}
	*id = flexID(s)
	return nil
}

// flexFloat accepts numbers and decimal strings such as "45.00".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// ref is a related object sent either as a bare id, a bare name or {id, name}.
type ref struct {
	ID   string
	Name string
}

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		return nil
	case b[0] == '{':
		var obj struct {
			ID   flexID `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		r.ID, r.Name = string(obj.ID), obj.Name
	case b[0] == '"':
		return json.Unmarshal(b, &r.Name)
	default:
		r.ID = string(b)
	}
	return nil
}

type categoryDTO struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type serviceDTO struct {
	ID              flexID    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           flexFloat `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	Category        ref       `json:"category"`
	CategoryName    string    `json:"category_name"`
	ImageURL        string    `json:"imageUrl"`
	IsActive        *bool     `json:"is_active"`
}

type stylistUserDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type stylistDTO struct {
	ID          flexID          `json:"id"`
	Name        string          `json:"name"`
	User        *stylistUserDTO `json:"user"`
	Specialties []ref           `json:"specialties"`
	Rating      flexFloat       `json:"rating"`
	ImageURL    string          `json:"imageUrl"`
	IsAvailable *bool           `json:"is_available"`
}

type availabilityEntryDTO struct {
	StylistName string   `json:"stylist_name"`
	Slots       []string `json:"slots"`
}

type appointmentRequestDTO struct {
	ServiceIDs      []string `json:"service_ids"`
	StylistID       *string  `json:"stylist_id"`
	AppointmentDate string   `json:"appointment_date"`
	AppointmentTime string   `json:"appointment_time"`
}

type appointmentDTO struct {
	ID              flexID    `json:"id"`
	Status          string    `json:"status"`
	Stylist         ref       `json:"stylist"`
	StylistID       flexID    `json:"stylist_id"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalPrice      flexFloat `json:"total_price"`
}

func (c categoryDTO) toModel() models.ServiceCategory {
	return models.ServiceCategory{ID: string(c.ID), Name: c.Name}
}

func (s serviceDTO) toModel(categoryNames map[string]string) models.Service {
	name := s.CategoryName
	if name == "" {
		name = s.Category.Name
	}
	if name == "" && s.Category.ID != "" {
		name = categoryNames[s.Category.ID]
	}
	return models.Service{
		ID:              string(s.ID),
		Name:            s.Name,
		Description:     s.Description,
		Price:           float64(s.Price),
		DurationMinutes: s.DurationMinutes,
		CategoryName:    name,
		ImageURL:        s.ImageURL,
	}
}

func (s stylistDTO) displayName() string {
	if s.User != nil {
		if full := strings.TrimSpace(s.User.FirstName + " " + s.User.LastName); full != "" {
			return full
		}
		if s.User.Email != "" {
			return s.User.Email
		}
	}
	return s.Name
}

func (s stylistDTO) toModel(categoryNames map[string]string) models.Stylist {
	specialties := make([]string, 0, len(s.Specialties))
	for _, sp := range s.Specialties {
		name := sp.Name
		if name == "" {
			name = categoryNames[sp.ID]
		}
		if name != "" {
			specialties = append(specialties, name)
		}
	}
	return models.Stylist{
		ID:          string(s.ID),
		DisplayName: s.displayName(),
		Specialties: specialties,
		Rating:      float64(s.Rating),
		ImageURL:    s.ImageURL,
	}
}

func (a appointmentDTO) toModel(req models.Reservation) *models.ReservationConfirmation {
	conf := &models.ReservationConfirmation{
		ID:              string(a.ID),
		Status:          a.Status,
		StylistID:       a.Stylist.ID,
		Date:            a.AppointmentDate,
		Time:            normalizeSlot(a.AppointmentTime),
		DurationMinutes: a.DurationMinutes,
		TotalPrice:      float64(a.TotalPrice),
	}
	if conf.StylistID == "" {
		conf.StylistID = string(a.StylistID)
	}
	if conf.Date == "" {
		conf.Date = req.Date
	}
	if conf.Time == "" {
		conf.Time = req.Time
	}
	if conf.Status == "" {
		conf.Status = "pending"
	}
	return conf
}

// normalizeSlot trims seconds from times like "14:00:00".
func normalizeSlot(t string) string {
	if len(t) == len("15:04:05") && strings.Count(t, ":") == 2 {
		return t[:5]
	}
	return t
}

// errorMessage extracts a readable message from an error body.
func errorMessage(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"error", "message", "detail"} {
		if raw, ok := obj[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		var msgs []string
		if json.Unmarshal(obj[k], &msgs) == nil && len(msgs) > 0 {
			parts = append(parts, k+": "+strings.Join(msgs, " "))
			continue
		}
		var s string
		if json.Unmarshal(obj[k], &s) == nil && s != "" {
			parts = append(parts, k+": "+s)
		}
	}
	return strings.Join(parts, "; ")
}
