package mongo

import (
	"context"
	"errors"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const movementCollectionName = "movements"

// mongoMovementRepository implements repository.MovementRepository.
type mongoMovementRepository struct {
	collection *mongo.Collection
}

// NewMongoMovementRepository creates a new operational movement repository.
func NewMongoMovementRepository(db *mongo.Database) repository.MovementRepository {
	return &mongoMovementRepository{
		collection: db.Collection(movementCollectionName),
	}
}

// GetByID retrieves a single movement by its ID.
func (r *mongoMovementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	var movement domain.Movement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&movement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// GetBySlug retrieves a single movement by its natural key.
func (r *mongoMovementRepository) GetBySlug(ctx context.Context, slug string) (*domain.Movement, error) {
	var movement domain.Movement
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&movement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// GetIDSet loads the set of all operational movement ids, used for
// referential checks during program assignment.
func (r *mongoMovementRepository) GetIDSet(ctx context.Context) (map[primitive.ObjectID]struct{}, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := make(map[primitive.ObjectID]struct{})
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids[row.ID] = struct{}{}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Upsert writes a movement by its slug natural key, never by destructive
// replace. An unchanged row is left untouched (including updatedAt), so
// re-running a sync produces zero modifications. Existing rows absent from a
// later sync are retained, never deleted.
func (r *mongoMovementRepository) Upsert(ctx context.Context, movement *domain.Movement) (bool, error) {
	if movement.Slug == "" {
		return false, errors.New("movement slug is required for upsert")
	}

	existing, err := r.GetBySlug(ctx, movement.Slug)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if existing != nil && movementContentEqual(existing, movement) {
		movement.ID = existing.ID
		return false, nil
	}

	now := time.Now().UTC()
	filter := bson.M{"slug": movement.Slug}
	update := bson.M{
		"$set": bson.M{
			"name":              movement.Name,
			"patterns":          movement.Patterns,
			"tags":              movement.Tags,
			"contraindications": movement.Contraindications,
			"impact":            movement.Impact,
			"equipmentIds":      movement.EquipmentIDs,
			"videoUrl":          movement.VideoURL,
			"updatedAt":         now,
		},
		"$setOnInsert": bson.M{
			"slug":      movement.Slug,
			"createdAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	if result.UpsertedID != nil {
		if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
			movement.ID = id
		}
	} else if existing != nil {
		movement.ID = existing.ID
	}
	return true, nil
}

// Count returns the number of rows in the operational catalog.
func (r *mongoMovementRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// movementContentEqual compares the synced content of two movements,
// ignoring ids and timestamps.
func movementContentEqual(a, b *domain.Movement) bool {
	return a.Name == b.Name &&
		a.VideoURL == b.VideoURL &&
		stringSlicesEqual(a.Patterns, b.Patterns) &&
		stringSlicesEqual(a.Tags, b.Tags) &&
		stringSlicesEqual(a.Contraindications, b.Contraindications) &&
		int64SlicesEqual(a.EquipmentIDs, b.EquipmentIDs) &&
		floatMapsEqual(a.Impact, b.Impact)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func int64SlicesEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatMapsEqual(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// EnsureMovementIndexes creates necessary indexes. Call during startup.
func EnsureMovementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "patterns", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
