package query

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/wisdomairey/real-estate-listings-app/models"
)

// Filter is the result of building a listing query. Empty means the geo
// step matched nothing and the caller must answer with zero results.
type Filter struct {
	Query bson.M
	Empty bool
}

type Builder struct {
	geo GeoResolver
}

func NewBuilder(geo GeoResolver) *Builder {
	return &Builder{geo: geo}
}

// Build ANDs one clause per supplied filter. Status visibility is applied
// first so a non-admin can never widen it.
func (b *Builder) Build(ctx context.Context, p Params, isAdmin bool) (Filter, error) {
	q := bson.M{}

	if isAdmin {
		switch {
		case p.Status == nil:
			q["status"] = string(models.StatusAvailable)
		case *p.Status != models.StatusAll:
			q["status"] = *p.Status
		}
	} else {
		q["status"] = string(models.StatusAvailable)
	}

	if p.Search != nil {
		pattern := regexp.QuoteMeta(*p.Search)
		q["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"address": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	if p.Type != nil {
		q["type"] = *p.Type
	}

	if r := rangeClause(p.MinPrice, p.MaxPrice); r != nil {
		q["price"] = r
	}

	if p.Bedrooms != nil {
		q["bedrooms"] = bson.M{"$gte": *p.Bedrooms}
	}

	if p.Bathrooms != nil {
		q["bathrooms"] = bson.M{"$gte": *p.Bathrooms}
	}

	if r := rangeClause(p.MinArea, p.MaxArea); r != nil {
		q["area"] = r
	}

	if len(p.Features) > 0 {
		q["features"] = bson.M{"$all": p.Features}
	}

	if p.PetFriendly != nil {
		q["petFriendly"] = *p.PetFriendly
	}

	if p.Furnished != nil {
		q["furnished"] = *p.Furnished
	}

	if p.HasLocation() && b.geo != nil {
		box := BoundingBoxAround(*p.Latitude, *p.Longitude, p.RadiusKm())
		ids, err := b.geo.IDsWithin(ctx, box)
		if err != nil {
			return Filter{}, fmt.Errorf("resolve nearby properties: %w", err)
		}
		if len(ids) == 0 {
			return Filter{Query: q, Empty: true}, nil
		}
		q["_id"] = bson.M{"$in": ids}
	}

	return Filter{Query: q}, nil
}

func rangeClause(lo, hi *float64) bson.M {
	if lo == nil && hi == nil {
		return nil
	}
	r := bson.M{}
	if lo != nil {
		r["$gte"] = *lo
	}
	if hi != nil {
		r["$lte"] = *hi
	}
	return r
}
