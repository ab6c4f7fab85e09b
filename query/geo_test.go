package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBoundingBoxAround_Equator(t *testing.T) {
	box := BoundingBoxAround(0, 0, 111.19492664455873)
	// one degree of arc at the mean earth radius
	assert.InDelta(t, -1, box.MinLat, 1e-9)
	assert.InDelta(t, 1, box.MaxLat, 1e-9)
	assert.InDelta(t, -1, box.MinLon, 1e-9)
	assert.InDelta(t, 1, box.MaxLon, 1e-9)
}

func TestBoundingBoxAround_LongitudeWidensWithLatitude(t *testing.T) {
	box := BoundingBoxAround(60, 10, 10)
	dLat := box.MaxLat - 60
	dLon := box.MaxLon - 10
	assert.InDelta(t, dLat/math.Cos(60*math.Pi/180), dLon, 1e-9)
	assert.InDelta(t, 2*dLat, dLon, 1e-9)
}

func TestBoundingBoxAround_ZeroRadiusIsAPoint(t *testing.T) {
	box := BoundingBoxAround(40.7589, -73.9851, 0)
	assert.Equal(t, box.MinLat, box.MaxLat)
	assert.Equal(t, box.MinLon, box.MaxLon)
	assert.Less(t, box.MaxLat, 40.7590)
}

func TestBoundingBoxAround_PoleDiverges(t *testing.T) {
	box := BoundingBoxAround(90, 0, 10)
	assert.Greater(t, box.MaxLon-box.MinLon, 360.0)
}

func TestBox_Filter(t *testing.T) {
	box := Box{MinLat: 1, MaxLat: 2, MinLon: 3, MaxLon: 4}
	f := box.Filter()
	assert.Len(t, f, 2)
	assert.Equal(t, bson.M{"$gte": 1.0, "$lte": 2.0}, f["coordinates.latitude"])
	assert.Equal(t, bson.M{"$gte": 3.0, "$lte": 4.0}, f["coordinates.longitude"])
}
