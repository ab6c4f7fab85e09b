package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/query"
)

const PropertiesCollection = "properties"

type PropertyRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{
		collection: db.Collection(PropertiesCollection),
		now:        time.Now,
	}
}

func (r *PropertyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "coordinates.latitude", Value: 1}, {Key: "coordinates.longitude", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "bedrooms", Value: 1}, {Key: "bathrooms", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "images", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create property indexes: %w", err)
	}
	return nil
}

func (r *PropertyRepository) Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Property, error) {
	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := make([]models.Property, 0, limit)
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return properties, nil
}

func (r *PropertyRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property %s: %w", id.Hex(), err)
	}
	return &property, nil
}

func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	now := r.now().UTC()
	property.ID = primitive.NewObjectID()
	property.CreatedAt = now
	property.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, property); err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

// Replace writes the whole document back, keeping createdAt.
func (r *PropertyRepository) Replace(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = r.now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": property.ID}, property)
	if err != nil {
		return fmt.Errorf("replace property %s: %w", property.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete property %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RemoveImage pulls url from the listing and returns the updated document.
func (r *PropertyRepository) RemoveImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$pull": bson.M{"images": url},
		"$set":  bson.M{"updatedAt": r.now().UTC()},
	}

	var property models.Property
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "images": url}, update, opts).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, models.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("remove image from %s: %w", id.Hex(), err)
	}
	return &property, nil
}

// ImageInUse reports whether any listing other than exclude still references url.
func (r *PropertyRepository) ImageInUse(ctx context.Context, url string, exclude primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"images": url, "_id": bson.M{"$ne": exclude}},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count image references: %w", err)
	}
	return n > 0, nil
}

func (r *PropertyRepository) IDsWithin(ctx context.Context, box query.Box) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, box.Filter(), opts)
	if err != nil {
		return nil, fmt.Errorf("find properties in box: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode property id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *PropertyRepository) Stats(ctx context.Context) (*models.PropertyStats, error) {
	statusCount := func(status models.PropertyStatus) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
	}

	overviewPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                 nil,
			"totalProperties":     bson.M{"$sum": 1},
			"availableProperties": statusCount(models.StatusAvailable),
			"soldProperties":      statusCount(models.StatusSold),
			"pendingProperties":   statusCount(models.StatusPending),
			"rentedProperties":    statusCount(models.StatusRented),
			"averagePrice":        bson.M{"$avg": "$price"},
			"totalValue":          bson.M{"$sum": "$price"},
			"minPrice":            bson.M{"$min": "$price"},
			"maxPrice":            bson.M{"$max": "$price"},
		}}},
	}

	stats := &models.PropertyStats{ByType: []models.TypeStats{}}

	cursor, err := r.collection.Aggregate(ctx, overviewPipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate property overview: %w", err)
	}
	var overview []models.StatsOverview
	if err := cursor.All(ctx, &overview); err != nil {
		return nil, fmt.Errorf("decode property overview: %w", err)
	}
	if len(overview) > 0 {
		stats.Overview = overview[0]
	}

	byTypePipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          "$type",
			"count":        bson.M{"$sum": 1},
			"averagePrice": bson.M{"$avg": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err = r.collection.Aggregate(ctx, byTypePipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate properties by type: %w", err)
	}
	if err := cursor.All(ctx, &stats.ByType); err != nil {
		return nil, fmt.Errorf("decode properties by type: %w", err)
	}

	return stats, nil
}
