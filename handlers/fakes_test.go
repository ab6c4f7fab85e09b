package handlers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/query"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

// memoryStore is an in-memory PropertyStore that understands the subset of
// the Mongo filter language the query builder emits.
type memoryStore struct {
	mu    sync.Mutex
	items []models.Property
	clock time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memoryStore) Find(_ context.Context, filter bson.M, sortBy bson.D, skip, limit int64) ([]models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Property
	for _, p := range m.items {
		if matches(p, filter) {
			out = append(out, p)
		}
	}
	if len(sortBy) > 0 {
		key, dir := sortBy[0].Key, sortBy[0].Value.(int)
		sort.SliceStable(out, func(i, j int) bool {
			less := lessValue(fieldValue(out[i], key), fieldValue(out[j], key))
			if dir < 0 {
				return lessValue(fieldValue(out[j], key), fieldValue(out[i], key))
			}
			return less
		})
	}
	if skip >= int64(len(out)) {
		return []models.Property{}, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) Count(_ context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.items {
		if matches(p, filter) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) indexOf(id primitive.ObjectID) int {
	for i, p := range m.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (m *memoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	p := m.items[i]
	p.Images = append([]string{}, p.Images...)
	return &p, nil
}

func (m *memoryStore) Create(_ context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	p.ID = primitive.NewObjectID()
	p.CreatedAt = m.clock
	p.UpdatedAt = m.clock
	m.items = append(m.items, *p)
	return nil
}

func (m *memoryStore) Replace(_ context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(p.ID)
	if i < 0 {
		return models.ErrNotFound
	}
	m.items[i] = *p
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return models.ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memoryStore) RemoveImage(_ context.Context, id primitive.ObjectID, url string) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	if !m.items[i].HasImage(url) {
		return nil, models.ErrImageNotFound
	}
	kept := []string{}
	for _, img := range m.items[i].Images {
		if img != url {
			kept = append(kept, img)
		}
	}
	m.items[i].Images = kept
	p := m.items[i]
	return &p, nil
}

func (m *memoryStore) ImageInUse(_ context.Context, url string, exclude primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID != exclude && p.HasImage(url) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Stats(_ context.Context) (*models.PropertyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.PropertyStats{ByType: []models.TypeStats{}}
	byType := map[string]*models.TypeStats{}
	for i, p := range m.items {
		o := &stats.Overview
		o.TotalProperties++
		o.TotalValue += p.Price
		if i == 0 || p.Price < o.MinPrice {
			o.MinPrice = p.Price
		}
		if p.Price > o.MaxPrice {
			o.MaxPrice = p.Price
		}
		switch p.Status {
		case models.StatusAvailable:
			o.AvailableProperties++
		case models.StatusSold:
			o.SoldProperties++
		case models.StatusPending:
			o.PendingProperties++
		case models.StatusRented:
			o.RentedProperties++
		}
		ts, ok := byType[string(p.Type)]
		if !ok {
			ts = &models.TypeStats{Type: string(p.Type)}
			byType[string(p.Type)] = ts
		}
		ts.AveragePrice = (ts.AveragePrice*float64(ts.Count) + p.Price) / float64(ts.Count+1)
		ts.Count++
	}
	if stats.Overview.TotalProperties > 0 {
		stats.Overview.AveragePrice = stats.Overview.TotalValue / float64(stats.Overview.TotalProperties)
	}
	for _, ts := range byType {
		stats.ByType = append(stats.ByType, *ts)
	}
	return stats, nil
}

func (m *memoryStore) IDsWithin(_ context.Context, box query.Box) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []primitive.ObjectID{}
	for _, p := range m.items {
		if boxContains(box, p.Coordinates.Latitude, p.Coordinates.Longitude) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func boxContains(b query.Box, lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func fieldValue(p models.Property, key string) interface{} {
	switch key {
	case "_id":
		return p.ID
	case "title":
		return p.Title
	case "description":
		return p.Description
	case "address":
		return p.Address
	case "type":
		return string(p.Type)
	case "status":
		return string(p.Status)
	case "price":
		return p.Price
	case "bedrooms":
		return float64(p.Bedrooms)
	case "bathrooms":
		return p.Bathrooms
	case "area":
		return p.Area
	case "features":
		return p.Features
	case "petFriendly":
		return p.PetFriendly
	case "furnished":
		return p.Furnished
	case "createdAt":
		return p.CreatedAt
	case "coordinates.latitude":
		return p.Coordinates.Latitude
	case "coordinates.longitude":
		return p.Coordinates.Longitude
	}
	panic("fieldValue: unsupported field " + key)
}

func matches(p models.Property, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$or" {
			matched := false
			for _, alt := range cond.(bson.A) {
				if matches(p, alt.(bson.M)) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}

		val := fieldValue(p, key)
		ops, ok := cond.(bson.M)
		if !ok {
			if fmt.Sprint(val) != fmt.Sprint(cond) {
				return false
			}
			continue
		}
		for op, arg := range ops {
			if !matchOp(val, op, arg, ops) {
				return false
			}
		}
	}
	return true
}

func matchOp(val interface{}, op string, arg interface{}, ops bson.M) bool {
	switch op {
	case "$gte":
		return toFloat(val) >= toFloat(arg)
	case "$lte":
		return toFloat(val) <= toFloat(arg)
	case "$in":
		for _, id := range arg.([]primitive.ObjectID) {
			if id == val.(primitive.ObjectID) {
				return true
			}
		}
		return false
	case "$all":
		have := map[string]bool{}
		for _, f := range val.([]string) {
			have[f] = true
		}
		for _, want := range arg.([]string) {
			if !have[want] {
				return false
			}
		}
		return true
	case "$regex":
		pattern := arg.(string)
		if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
			pattern = "(?i)" + pattern
		}
		return regexp.MustCompile(pattern).MatchString(val.(string))
	case "$options":
		return true
	}
	panic("matchOp: unsupported operator " + op)
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	panic(fmt.Sprintf("toFloat: unsupported %T", v))
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		return av < b.(string)
	case time.Time:
		return av.Before(b.(time.Time))
	}
	return toFloat(a) < toFloat(b)
}

// fakeAuth maps fixed bearer tokens to users.
type fakeAuth struct {
	tokens map[string]*models.User
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (*models.User, *utils.JWTClaims, error) {
	user, ok := f.tokens[token]
	if !ok {
		return nil, nil, models.ErrUnauthorized
	}
	claims := &utils.JWTClaims{UserID: user.ID, Role: string(user.Role)}
	claims.ID = "jti-" + token
	return user, claims, nil
}
