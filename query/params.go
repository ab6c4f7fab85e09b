// Package query turns catalog request parameters into MongoDB predicates,
// bounding boxes and page metadata.
package query

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultLimit    = 12
	MaxLimit        = 100
	MaxPage         = math.MaxInt32
	DefaultRadiusKm = 10.0
	DefaultSort     = "-createdAt"
)

// Params holds the optional listing filters. A nil pointer means the filter
// was not supplied; a non-nil zero value is a real filter value.
type Params struct {
	Page  int
	Limit int
	Sort  string

	Search      *string
	Type        *string
	Status      *string
	MinPrice    *float64
	MaxPrice    *float64
	Bedrooms    *int
	Bathrooms   *float64
	MinArea     *float64
	MaxArea     *float64
	Features    []string
	PetFriendly *bool
	Furnished   *bool
	Latitude    *float64
	Longitude   *float64
	Radius      *float64
}

// HasLocation is true only when both coordinates were supplied.
func (p Params) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

func (p Params) RadiusKm() float64 {
	if p.Radius != nil {
		return *p.Radius
	}
	return DefaultRadiusKm
}

// ParseParams reads the listing parameters. Values that do not parse are left
// absent rather than guessed at.
func ParseParams(values url.Values) Params {
	p := Params{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  DefaultSort,
	}

	if n, ok := parseInt(values.Get("page")); ok && n >= 1 && n <= MaxPage {
		p.Page = n
	}
	if n, ok := parseInt(values.Get("limit")); ok && n >= 1 {
		p.Limit = n
	}
	if s := strings.TrimSpace(values.Get("sort")); s != "" {
		p.Sort = s
	}

	p.Search = optString(values.Get("search"))
	p.Type = optString(values.Get("type"))
	p.Status = optString(values.Get("status"))
	p.MinPrice = optFloat(values.Get("minPrice"))
	p.MaxPrice = optFloat(values.Get("maxPrice"))
	if n, ok := parseInt(values.Get("bedrooms")); ok {
		p.Bedrooms = &n
	}
	p.Bathrooms = optFloat(values.Get("bathrooms"))
	p.MinArea = optFloat(values.Get("minArea"))
	p.MaxArea = optFloat(values.Get("maxArea"))
	p.Features = ParseList(values["features"])
	p.PetFriendly = optBool(values.Get("petFriendly"))
	p.Furnished = optBool(values.Get("furnished"))
	p.Latitude = optFloat(values.Get("latitude"))
	p.Longitude = optFloat(values.Get("longitude"))
	p.Radius = optFloat(values.Get("radius"))

	return p
}

// ParseList accepts repeated keys, a JSON array string or a comma separated list.
func ParseList(raw []string) []string {
	var out []string
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				for _, item := range arr {
					if item = strings.TrimSpace(item); item != "" {
						out = append(out, item)
					}
				}
				continue
			}
		}
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func optBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		b := true
		return &b
	case "false", "0":
		b := false
		return &b
	}
	return nil
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
