package models

import (
	"strings"
)

// PropertyInput is a write request where every nil field is "not supplied".
// Creation requires the core fields; updates replace only what is present.
type PropertyInput struct {
	Title         *string      `json:"title"`
	Description   *string      `json:"description"`
	Price         *float64     `json:"price"`
	Type          *string      `json:"type"`
	Status        *string      `json:"status"`
	Bedrooms      *int         `json:"bedrooms"`
	Bathrooms     *float64     `json:"bathrooms"`
	Area          *float64     `json:"area"`
	Address       *string      `json:"address"`
	Latitude      *float64     `json:"-"`
	Longitude     *float64     `json:"-"`
	Coordinates   *CoordsInput `json:"coordinates"`
	Images        []string     `json:"images"`
	Features      []string     `json:"features"`
	YearBuilt     *int         `json:"yearBuilt"`
	ParkingSpaces *int         `json:"parkingSpaces"`
	PetFriendly   *bool        `json:"petFriendly"`
	Furnished     *bool        `json:"furnished"`
	Utilities     *Utilities   `json:"utilities"`
	ContactInfo   *ContactInfo `json:"contactInfo"`
	ReplaceImages bool         `json:"replaceImages"`
}

type CoordsInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (in PropertyInput) latitude() *float64 {
	if in.Latitude != nil {
		return in.Latitude
	}
	if in.Coordinates != nil {
		return in.Coordinates.Latitude
	}
	return nil
}

func (in PropertyInput) longitude() *float64 {
	if in.Longitude != nil {
		return in.Longitude
	}
	if in.Coordinates != nil {
		return in.Coordinates.Longitude
	}
	return nil
}

// MissingForCreate lists the required fields absent from a creation request.
func (in PropertyInput) MissingForCreate() []FieldError {
	var missing []FieldError
	add := func(field string, absent bool) {
		if absent {
			missing = append(missing, FieldError{Field: field, Message: Property{}.FieldMessage(field, "required")})
		}
	}
	add("title", in.Title == nil)
	add("description", in.Description == nil)
	add("price", in.Price == nil)
	add("type", in.Type == nil)
	add("bedrooms", in.Bedrooms == nil)
	add("bathrooms", in.Bathrooms == nil)
	add("area", in.Area == nil)
	add("address", in.Address == nil)
	add("coordinates.latitude", in.latitude() == nil)
	add("coordinates.longitude", in.longitude() == nil)
	return missing
}

// ApplyTo copies every supplied field onto p. Images are handled by the caller
// because they depend on uploaded files and the replace flag.
func (in PropertyInput) ApplyTo(p *Property) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Type != nil {
		p.Type = PropertyType(*in.Type)
	}
	if in.Status != nil {
		p.Status = PropertyStatus(*in.Status)
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Area != nil {
		p.Area = *in.Area
	}
	if in.Address != nil {
		p.Address = strings.TrimSpace(*in.Address)
	}
	if lat := in.latitude(); lat != nil {
		p.Coordinates.Latitude = *lat
	}
	if lon := in.longitude(); lon != nil {
		p.Coordinates.Longitude = *lon
	}
	if in.Features != nil {
		p.Features = normalizeFeatures(in.Features)
	}
	if in.YearBuilt != nil {
		year := *in.YearBuilt
		p.YearBuilt = &year
	}
	if in.ParkingSpaces != nil {
		p.ParkingSpaces = *in.ParkingSpaces
	}
	if in.PetFriendly != nil {
		p.PetFriendly = *in.PetFriendly
	}
	if in.Furnished != nil {
		p.Furnished = *in.Furnished
	}
	if in.Utilities != nil {
		p.Utilities = *in.Utilities
	}
	if in.ContactInfo != nil {
		info := ContactInfo{
			AgentName:  strings.TrimSpace(in.ContactInfo.AgentName),
			AgentPhone: strings.TrimSpace(in.ContactInfo.AgentPhone),
			AgentEmail: strings.ToLower(strings.TrimSpace(in.ContactInfo.AgentEmail)),
		}
		p.ContactInfo = &info
	}
}

func normalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
