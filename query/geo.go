package query

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EarthRadiusKm is the mean radius used to turn kilometres into degrees.
const EarthRadiusKm = 6371.0

// Box is a latitude/longitude rectangle, bounds inclusive.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundingBoxAround approximates a circle of radiusKm around a point with a
// rectangle. The longitude span is widened by 1/cos(lat) and grows without
// bound towards the poles; callers rely on this exact formula.
func BoundingBoxAround(lat, lon, radiusKm float64) Box {
	radiusRad := radiusKm / EarthRadiusKm
	dLat := radiusRad * 180 / math.Pi
	dLon := dLat / math.Cos(lat*math.Pi/180)
	return Box{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
	}
}

// Filter returns the coordinate predicate for the box.
func (b Box) Filter() bson.M {
	return bson.M{
		"coordinates.latitude":  bson.M{"$gte": b.MinLat, "$lte": b.MaxLat},
		"coordinates.longitude": bson.M{"$gte": b.MinLon, "$lte": b.MaxLon},
	}
}

// GeoResolver finds the listings whose coordinates fall inside a box.
// An empty result is not an error.
type GeoResolver interface {
	IDsWithin(ctx context.Context, box Box) ([]primitive.ObjectID, error)
}
