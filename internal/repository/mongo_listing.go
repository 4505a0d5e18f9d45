package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/utils"
)

const listingsCollection = "listings"

// mongoListingRepository stores listings in a MongoDB collection. Conditional
// updates ride on single-document FindOneAndUpdate with the precondition in
// the filter, so concurrent moderation cannot lose writes.
type mongoListingRepository struct {
	db *mongo.Database
}

// NewMongoListingRepository creates a listing repository over db.
func NewMongoListingRepository(db *mongo.Database) ListingRepository {
	return &mongoListingRepository{db: db}
}

func (r *mongoListingRepository) collection() *mongo.Collection {
	return r.db.Collection(listingsCollection)
}

func (r *mongoListingRepository) Insert(ctx context.Context, listing *models.Listing) error {
	_, err := r.collection().InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id utils.SixID) (*models.Listing, error) {
	var listing models.Listing
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) SetStatus(ctx context.Context, id utils.SixID, status models.Status, decidedBy string) (*models.Listing, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": now,
		"decided_by": decidedBy,
		"decided_at": now,
	}}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *mongoListingRepository) Resubmit(ctx context.Context, id utils.SixID, agentID string, input models.ListingInput) (*models.Listing, error) {
	filter := bson.M{
		"_id":      id,
		"agent_id": agentID,
		"status":   models.StatusRevision,
	}
	set := bson.M{
		"title":         input.Title,
		"price":         input.Price,
		"description":   input.Description,
		"location_url":  input.LocationURL,
		"city":          input.City,
		"district":      input.District,
		"rooms":         input.Rooms,
		"view":          input.View,
		"property_type": input.PropertyType,
		"pool":          input.Pool,
		"status":        models.StatusPending,
		"updated_at":    time.Now().UTC(),
	}
	if input.Photos != nil {
		set["photos"] = input.Photos
	}

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
}

func (r *mongoListingRepository) AppendPhoto(ctx context.Context, id utils.SixID, photoKey string, maxPhotos int) (*models.Listing, error) {
	// The size guard lives in the filter so the cap holds under concurrent
	// image worker callbacks.
	filter := bson.M{
		"_id":                            id,
		fmt.Sprintf("photos.%d", maxPhotos-1): bson.M{"$exists": false},
	}
	update := bson.M{
		"$push": bson.M{"photos": photoKey},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *mongoListingRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Listing, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err := r.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindByAgent(ctx context.Context, agentID string) ([]models.Listing, error) {
	return r.find(ctx, bson.M{"agent_id": agentID})
}

func (r *mongoListingRepository) FindByStatus(ctx context.Context, status models.Status) ([]models.Listing, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *mongoListingRepository) SearchApproved(ctx context.Context, filter models.CatalogFilter) ([]models.Listing, error) {
	query := bson.M{"status": models.StatusApproved}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Rooms != "" {
		query["rooms"] = filter.Rooms
	}
	if filter.PropertyType != "" {
		query["property_type"] = filter.PropertyType
	}
	return r.find(ctx, query)
}

// find runs a query sorted by created_at so results keep insertion order.
func (r *mongoListingRepository) find(ctx context.Context, filter bson.M) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Listing
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return results, nil
}

func (r *mongoListingRepository) DistinctApproved(ctx context.Context, field string) ([]string, error) {
	filter := bson.M{
		"status": models.StatusApproved,
		field:    bson.M{"$nin": bson.A{nil, ""}},
	}

	raw, err := r.collection().Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to collect distinct %s values: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}
