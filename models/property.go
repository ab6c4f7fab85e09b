package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	TypeHouse     PropertyType = "house"
	TypeApartment PropertyType = "apartment"
	TypeCondo     PropertyType = "condo"
	TypeTownhouse PropertyType = "townhouse"
	TypeVilla     PropertyType = "villa"
	TypeStudio    PropertyType = "studio"
)

type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
	StatusPending   PropertyStatus = "pending"
	StatusRented    PropertyStatus = "rented"
)

// StatusAll is accepted as a query value from admins only; it is never stored.
const StatusAll = "all"

var (
	PropertyTypes    = []PropertyType{TypeHouse, TypeApartment, TypeCondo, TypeTownhouse, TypeVilla, TypeStudio}
	PropertyStatuses = []PropertyStatus{StatusAvailable, StatusSold, StatusPending, StatusRented}
)

func IsPropertyType(s string) bool {
	for _, t := range PropertyTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

func IsPropertyStatus(s string) bool {
	for _, st := range PropertyStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `bson:"longitude" json:"longitude" validate:"gte=-180,lte=180"`
}

type Utilities struct {
	Heating     bool `bson:"heating" json:"heating"`
	Cooling     bool `bson:"cooling" json:"cooling"`
	Electricity bool `bson:"electricity" json:"electricity"`
	Water       bool `bson:"water" json:"water"`
	Internet    bool `bson:"internet" json:"internet"`
}

// DefaultUtilities mirrors the defaults of a freshly listed property.
func DefaultUtilities() Utilities {
	return Utilities{Electricity: true, Water: true}
}

type ContactInfo struct {
	AgentName  string `bson:"agentName,omitempty" json:"agentName,omitempty"`
	AgentPhone string `bson:"agentPhone,omitempty" json:"agentPhone,omitempty"`
	AgentEmail string `bson:"agentEmail,omitempty" json:"agentEmail,omitempty" validate:"omitempty,email"`
}

type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title         string             `bson:"title" json:"title" validate:"required,min=3,max=100"`
	Description   string             `bson:"description" json:"description" validate:"required,min=10,max=2000"`
	Price         float64            `bson:"price" json:"price" validate:"gte=0"`
	Type          PropertyType       `bson:"type" json:"type" validate:"required,oneof=house apartment condo townhouse villa studio"`
	Status        PropertyStatus     `bson:"status" json:"status" validate:"required,oneof=available sold pending rented"`
	Bedrooms      int                `bson:"bedrooms" json:"bedrooms" validate:"gte=0"`
	Bathrooms     float64            `bson:"bathrooms" json:"bathrooms" validate:"gte=0"`
	Area          float64            `bson:"area" json:"area" validate:"gte=1"`
	Address       string             `bson:"address" json:"address" validate:"required,min=5,max=200"`
	Coordinates   Coordinates        `bson:"coordinates" json:"coordinates"`
	Images        []string           `bson:"images" json:"images" validate:"dive,imageurl"`
	Features      []string           `bson:"features" json:"features"`
	YearBuilt     *int               `bson:"yearBuilt,omitempty" json:"yearBuilt,omitempty" validate:"omitempty,yearbuilt"`
	ParkingSpaces int                `bson:"parkingSpaces" json:"parkingSpaces" validate:"gte=0"`
	PetFriendly   bool               `bson:"petFriendly" json:"petFriendly"`
	Furnished     bool               `bson:"furnished" json:"furnished"`
	Utilities     Utilities          `bson:"utilities" json:"utilities"`
	ContactInfo   *ContactInfo       `bson:"contactInfo,omitempty" json:"contactInfo,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewProperty returns a listing carrying the schema defaults.
func NewProperty() Property {
	return Property{
		Status:    StatusAvailable,
		Images:    []string{},
		Features:  []string{},
		Utilities: DefaultUtilities(),
	}
}

func (p Property) IsAvailable() bool {
	return p.Status == StatusAvailable
}

func (p Property) HasImage(url string) bool {
	for _, img := range p.Images {
		if img == url {
			return true
		}
	}
	return false
}

func (p Property) PricePerSqFt() int64 {
	if p.Area == 0 {
		return 0
	}
	return int64(math.Round(p.Price / p.Area))
}

func (p Property) FormattedPrice() string {
	return "$" + humanize.Commaf(math.Round(p.Price*100)/100)
}

func (p Property) MarshalJSON() ([]byte, error) {
	type plain Property
	return json.Marshal(struct {
		plain
		PublicID       string `json:"id"`
		PricePerSqFt   int64  `json:"pricePerSqFt"`
		FormattedPrice string `json:"formattedPrice"`
	}{
		plain:          plain(p),
		PublicID:       p.ID.Hex(),
		PricePerSqFt:   p.PricePerSqFt(),
		FormattedPrice: p.FormattedPrice(),
	})
}

// FieldMessage returns the client-facing message for a failed constraint.
func (Property) FieldMessage(field, tag string) string {
	if tag == "required" {
		if msg, ok := propertyRequiredMessages[field]; ok {
			return msg
		}
	}
	if msg, ok := propertyFieldMessages[field]; ok {
		return msg
	}
	return "Invalid value"
}

var propertyRequiredMessages = map[string]string{
	"title":                 "Property title is required",
	"description":           "Property description is required",
	"price":                 "Property price is required",
	"type":                  "Property type is required",
	"bedrooms":              "Number of bedrooms is required",
	"bathrooms":             "Number of bathrooms is required",
	"area":                  "Property area is required",
	"address":               "Property address is required",
	"coordinates.latitude":  "Latitude is required",
	"coordinates.longitude": "Longitude is required",
}

var propertyFieldMessages = map[string]string{
	"title":                  "Title must be between 3 and 100 characters",
	"description":            "Description must be between 10 and 2000 characters",
	"price":                  "Price must be a positive number",
	"type":                   "Invalid property type",
	"status":                 "Invalid property status",
	"bedrooms":               "Bedrooms must be a non-negative integer",
	"bathrooms":              "Bathrooms must be a non-negative number",
	"area":                   "Area must be at least 1 square foot",
	"address":                "Address must be between 5 and 200 characters",
	"coordinates.latitude":   "Latitude must be between -90 and 90",
	"coordinates.longitude":  "Longitude must be between -180 and 180",
	"coordinates":            "Coordinates must be an object with latitude and longitude",
	"images":                 "Invalid image URL format",
	"features":               "Features must be an array",
	"yearBuilt":              "Year built must be valid",
	"parkingSpaces":          "Parking spaces must be non-negative",
	"petFriendly":            "Pet friendly must be a boolean",
	"furnished":              "Furnished must be a boolean",
	"utilities":              "Utilities must be an object of boolean flags",
	"contactInfo":            "Contact info must be an object",
	"contactInfo.agentEmail": "Agent email must be a valid email address",
}
