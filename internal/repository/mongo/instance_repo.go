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

// mongoWorkoutInstanceRepository implements repository.WorkoutInstanceRepository.
type mongoWorkoutInstanceRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutInstanceRepository creates a new workout instance repository.
func NewMongoWorkoutInstanceRepository(db *mongo.Database) repository.WorkoutInstanceRepository {
	return &mongoWorkoutInstanceRepository{
		collection: db.Collection(workoutInstanceCollection),
	}
}

// GetByID retrieves a single workout instance by its ID.
func (r *mongoWorkoutInstanceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutInstance, error) {
	var workout domain.WorkoutInstance
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByEnrollmentID retrieves all workout instances of an enrollment in
// schedule order.
func (r *mongoWorkoutInstanceRepository) GetByEnrollmentID(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.WorkoutInstance, error) {
	var workouts []domain.WorkoutInstance
	filter := bson.M{"enrollmentId": enrollmentID}
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetByDate retrieves the workout instance scheduled on the given calendar
// day, if any. The day is truncated to midnight UTC to match stored dates.
func (r *mongoWorkoutInstanceRepository) GetByDate(ctx context.Context, enrollmentID primitive.ObjectID, day time.Time) (*domain.WorkoutInstance, error) {
	dayUTC := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	var workout domain.WorkoutInstance
	filter := bson.M{"enrollmentId": enrollmentID, "scheduledDate": dayUTC}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// UpdateStatus sets the status and last-modified timestamp of one workout
// instance. Transition legality is checked by the service layer first.
func (r *mongoWorkoutInstanceRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.InstanceStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutInstanceIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutInstanceIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One workout per calendar day per enrollment.
			Keys:    bson.D{{Key: "enrollmentId", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "enrollmentId", Value: 1}, {Key: "weekIndex", Value: 1}, {Key: "dayIndex", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

// mongoBlockInstanceRepository implements repository.BlockInstanceRepository.
type mongoBlockInstanceRepository struct {
	collection *mongo.Collection
}

// NewMongoBlockInstanceRepository creates a new block instance repository.
func NewMongoBlockInstanceRepository(db *mongo.Database) repository.BlockInstanceRepository {
	return &mongoBlockInstanceRepository{
		collection: db.Collection(blockInstanceCollection),
	}
}

// GetByID retrieves a single block instance by its ID.
func (r *mongoBlockInstanceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BlockInstance, error) {
	var block domain.BlockInstance
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&block)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &block, nil
}

// GetByWorkoutInstanceID retrieves a workout's blocks in sequence order.
func (r *mongoBlockInstanceRepository) GetByWorkoutInstanceID(ctx context.Context, workoutInstanceID primitive.ObjectID) ([]domain.BlockInstance, error) {
	var blocks []domain.BlockInstance
	filter := bson.M{"workoutInstanceId": workoutInstanceID}
	findOptions := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// EnsureBlockInstanceIndexes creates necessary indexes. Call during startup.
func EnsureBlockInstanceIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutInstanceId", Value: 1}, {Key: "sequence", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

// mongoBlockItemInstanceRepository implements repository.BlockItemInstanceRepository.
type mongoBlockItemInstanceRepository struct {
	collection *mongo.Collection
}

// NewMongoBlockItemInstanceRepository creates a new block item instance repository.
func NewMongoBlockItemInstanceRepository(db *mongo.Database) repository.BlockItemInstanceRepository {
	return &mongoBlockItemInstanceRepository{
		collection: db.Collection(blockItemInstanceCollection),
	}
}

// GetByID retrieves a single block item instance by its ID.
func (r *mongoBlockItemInstanceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BlockItemInstance, error) {
	var item domain.BlockItemInstance
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetByBlockInstanceID retrieves a block's items in sequence order.
func (r *mongoBlockItemInstanceRepository) GetByBlockInstanceID(ctx context.Context, blockInstanceID primitive.ObjectID) ([]domain.BlockItemInstance, error) {
	var items []domain.BlockItemInstance
	filter := bson.M{"blockInstanceId": blockInstanceID}
	findOptions := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus sets the status and last-modified timestamp of one item.
func (r *mongoBlockItemInstanceRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.InstanceStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBlockItemInstanceIndexes creates necessary indexes. Call during startup.
func EnsureBlockItemInstanceIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "blockInstanceId", Value: 1}, {Key: "sequence", Value: 1}},
			Options: options.Index(),
		},
		{
			// Supports reference-retention checks in the catalog sync.
			Keys:    bson.D{{Key: "movementId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
