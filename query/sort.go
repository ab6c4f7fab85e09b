package query

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var sortableFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"price":     true,
	"bedrooms":  true,
	"bathrooms": true,
	"area":      true,
	"title":     true,
	"yearBuilt": true,
}

// ParseSort reads "-createdAt,price" style expressions. Unknown fields are
// dropped; an expression with no usable field falls back to newest first.
func ParseSort(expr string) bson.D {
	var d bson.D
	seen := map[string]bool{}
	for _, part := range strings.FieldsFunc(expr, func(r rune) bool { return r == ',' || r == ' ' }) {
		dir := 1
		switch {
		case strings.HasPrefix(part, "-"):
			dir = -1
			part = part[1:]
		case strings.HasPrefix(part, "+"):
			part = part[1:]
		}
		if !sortableFields[part] || seen[part] {
			continue
		}
		seen[part] = true
		d = append(d, bson.E{Key: part, Value: dir})
	}
	if len(d) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return d
}
