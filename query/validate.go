package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/wisdomairey/real-estate-listings-app/models"
)

type floatRule struct {
	key      string
	min, max float64
	message  string
}

var floatRules = []floatRule{
	{"minPrice", 0, math.MaxFloat64, "Minimum price must be non-negative"},
	{"maxPrice", 0, math.MaxFloat64, "Maximum price must be non-negative"},
	{"bathrooms", 0, math.MaxFloat64, "Bathrooms must be non-negative"},
	{"minArea", 0, math.MaxFloat64, "Minimum area must be non-negative"},
	{"maxArea", 0, math.MaxFloat64, "Maximum area must be non-negative"},
	{"latitude", -90, 90, "Latitude must be between -90 and 90"},
	{"longitude", -180, 180, "Longitude must be between -180 and 180"},
	{"radius", 0.1, 100, "Radius must be between 0.1 and 100 km"},
}

// ValidateValues checks the raw listing parameters and reports every
// malformed or out-of-range value. It runs before ParseParams so the builder
// never sees input the caller would consider an error.
func ValidateValues(values url.Values) error {
	var errs []models.FieldError
	add := func(field, msg string) {
		errs = append(errs, models.FieldError{Field: field, Message: msg})
	}

	if raw, ok := present(values, "page"); ok {
		if n, err := strconv.Atoi(raw); err != nil || n < 1 || n > MaxPage {
			add("page", "Page must be a positive integer")
		}
	}
	if raw, ok := present(values, "limit"); ok {
		if n, err := strconv.Atoi(raw); err != nil || n < 1 || n > MaxLimit {
			add("limit", "Limit must be between 1 and 100")
		}
	}
	if raw, ok := present(values, "bedrooms"); ok {
		if n, err := strconv.Atoi(raw); err != nil || n < 0 {
			add("bedrooms", "Bedrooms must be non-negative")
		}
	}
	for _, rule := range floatRules {
		raw, ok := present(values, rule.key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || f < rule.min || f > rule.max {
			add(rule.key, rule.message)
		}
	}
	if raw, ok := present(values, "type"); ok && !models.IsPropertyType(raw) {
		add("type", "Invalid property type")
	}
	if raw, ok := present(values, "status"); ok && raw != models.StatusAll && !models.IsPropertyStatus(raw) {
		add("status", "Invalid property status")
	}
	for _, key := range []string{"petFriendly", "furnished"} {
		if raw, ok := present(values, key); ok && optBool(raw) == nil {
			add(key, key+" must be a boolean")
		}
	}

	return models.NewValidationError(errs)
}

func present(values url.Values, key string) (string, bool) {
	raw := strings.TrimSpace(values.Get(key))
	return raw, raw != ""
}
