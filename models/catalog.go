// models/catalog.go
package models

// ServiceCategory groups services and stylist specialties (e.g. "Hair", "Nails").
type ServiceCategory struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Service is a bookable salon service. Read-only within a booking session.
type Service struct {
	ID              string  `json:"id" bson:"id"`
	Name            string  `json:"name" bson:"name"`
	Description     string  `json:"description,omitempty" bson:"description,omitempty"`
	Price           float64 `json:"price" bson:"price"`
	DurationMinutes int     `json:"durationMinutes" bson:"durationMinutes"`
	CategoryName    string  `json:"categoryName" bson:"categoryName"`
	ImageURL        string  `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// Stylist is a salon specialist. Specialties hold category names.
type Stylist struct {
	ID          string   `json:"id" bson:"id"`
	DisplayName string   `json:"displayName" bson:"displayName"`
	Specialties []string `json:"specialties" bson:"specialties"`
	Rating      float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// CatalogFilter narrows catalog list queries. An empty CategoryName lists everything.
type CatalogFilter struct {
	CategoryName string `json:"categoryName,omitempty" form:"category"`
}

// CatalogSnapshot is the catalog fetched once per booking session.
type CatalogSnapshot struct {
	Categories []ServiceCategory `json:"categories"`
	Services   []Service         `json:"services"`
	Stylists   []Stylist         `json:"stylists"`
}

// ServiceByID looks a service up in the snapshot.
func (c CatalogSnapshot) ServiceByID(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// StylistByID looks a stylist up in the snapshot.
func (c CatalogSnapshot) StylistByID(id string) (Stylist, bool) {
	for _, s := range c.Stylists {
		if s.ID == id {
			return s, true
		}
	}
	return Stylist{}, false
}
