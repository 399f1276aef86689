package booking

import (
	"strings"

	"glowapp/models"

	"golang.org/x/text/cases"
)

// NormalizeCategory case-folds and trims a category name so that catalog
// entries like "Hair " and "hair" compare equal.
func NormalizeCategory(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// RequiredCategories returns the normalized categories of the selected services.
// Selected ids missing from services contribute nothing.
func RequiredCategories(selected []string, services []models.Service) map[string]struct{} {
	required := make(map[string]struct{}, len(selected))
	if len(selected) == 0 {
		return required
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		wanted[id] = struct{}{}
	}
	for _, svc := range services {
		if _, ok := wanted[svc.ID]; ok {
			required[NormalizeCategory(svc.CategoryName)] = struct{}{}
		}
	}
	return required
}

// CanPerform reports whether the stylist's specialties cover every required category.
func CanPerform(stylist models.Stylist, required map[string]struct{}) bool {
	if len(required) == 0 {
		return true
	}
	specialties := make(map[string]struct{}, len(stylist.Specialties))
	for _, s := range stylist.Specialties {
		specialties[NormalizeCategory(s)] = struct{}{}
	}
	for cat := range required {
		if _, ok := specialties[cat]; !ok {
			return false
		}
	}
	return true
}

// AvailableStylists returns the stylists able to perform all selected services,
// in catalog order. With nothing selected it returns every stylist, narrowed to
// the browsing category when one is given.
func AvailableStylists(selected []string, services []models.Service, stylists []models.Stylist, category string) []models.Stylist {
	required := RequiredCategories(selected, services)
	if len(selected) == 0 && strings.TrimSpace(category) != "" {
		required = map[string]struct{}{NormalizeCategory(category): {}}
	}

	available := make([]models.Stylist, 0, len(stylists))
	for _, st := range stylists {
		if CanPerform(st, required) {
			available = append(available, st)
		}
	}
	return available
}

// VisibleServices returns the services shown for the browsing category.
func VisibleServices(services []models.Service, category string) []models.Service {
	if strings.TrimSpace(category) == "" {
		return services
	}
	want := NormalizeCategory(category)
	visible := make([]models.Service, 0, len(services))
	for _, svc := range services {
		if NormalizeCategory(svc.CategoryName) == want {
			visible = append(visible, svc)
		}
	}
	return visible
}
