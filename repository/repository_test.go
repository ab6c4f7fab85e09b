package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/query"
)

// testDB connects to MONGODB_TEST_URI and hands out a throwaway database.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set; skipping mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("listings_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func sampleProperty(title string, lat, lon float64, status models.PropertyStatus) *models.Property {
	p := models.NewProperty()
	p.Title = title
	p.Description = "A listing used in repository tests"
	p.Price = 100000
	p.Type = models.TypeHouse
	p.Status = status
	p.Area = 1000
	p.Address = "1 Test Street"
	p.Coordinates = models.Coordinates{Latitude: lat, Longitude: lon}
	return &p
}

func TestPropertyRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository(testDB(t))
	require.NoError(t, repo.EnsureIndexes(ctx))

	p := sampleProperty("First", 40.75, -73.98, models.StatusAvailable)
	p.Images = []string{"/uploads/properties/a.jpg", "/uploads/properties/b.jpg"}
	require.NoError(t, repo.Create(ctx, p))
	require.False(t, p.ID.IsZero())

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)

	got.Price = 120000
	require.NoError(t, repo.Replace(ctx, got))

	updated, err := repo.RemoveImage(ctx, p.ID, "/uploads/properties/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/properties/b.jpg"}, updated.Images)
	assert.Equal(t, float64(120000), updated.Price)

	_, err = repo.RemoveImage(ctx, p.ID, "/uploads/properties/a.jpg")
	assert.ErrorIs(t, err, models.ErrImageNotFound)
	_, err = repo.RemoveImage(ctx, primitive.NewObjectID(), "x")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), models.ErrNotFound)
}

func TestPropertyRepository_QueriesAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository(testDB(t))

	near := sampleProperty("Near", 40.76, -73.98, models.StatusAvailable)
	near.Images = []string{"/uploads/properties/shared.jpg"}
	far := sampleProperty("Far", 34.05, -118.24, models.StatusSold)
	far.Images = []string{"/uploads/properties/shared.jpg"}
	for _, p := range []*models.Property{near, far} {
		require.NoError(t, repo.Create(ctx, p))
	}

	ids, err := repo.IDsWithin(ctx, query.BoundingBoxAround(40.7589, -73.9851, 5))
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{near.ID}, ids)

	ids, err = repo.IDsWithin(ctx, query.BoundingBoxAround(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, ids)

	inUse, err := repo.ImageInUse(ctx, "/uploads/properties/shared.jpg", near.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	n, err := repo.Count(ctx, bson.M{"status": "available"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := repo.Find(ctx, bson.M{}, query.ParseSort("title"), 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Far", list[0].Title)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Overview.TotalProperties)
	assert.Equal(t, int64(1), stats.Overview.SoldProperties)
	require.Len(t, stats.ByType, 1)
	assert.Equal(t, "house", stats.ByType[0].Type)
}

func TestUserRepository_LoginCounters(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB(t))
	require.NoError(t, repo.EnsureIndexes(ctx))

	user := &models.User{Email: " Admin@Example.com ", Password: "hash", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Email: "admin@example.com"}), ErrDuplicateEmail)

	for want := 1; want <= 3; want++ {
		n, err := repo.IncrementLoginAttempts(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	first := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, repo.Lock(ctx, user.ID, first))
	require.NoError(t, repo.Lock(ctx, user.ID, first.Add(time.Hour)))

	got, err := repo.FindByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.LockUntil)
	assert.True(t, got.LockUntil.Equal(first))

	require.NoError(t, repo.RecordLogin(ctx, user.ID, time.Now()))
	got, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LoginAttempts)
	assert.Nil(t, got.LockUntil)
	assert.NotNil(t, got.LastLogin)
}
