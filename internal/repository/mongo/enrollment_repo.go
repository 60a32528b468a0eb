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

const (
	enrollmentCollectionName    = "enrollments"
	workoutInstanceCollection   = "workout_instances"
	blockInstanceCollection     = "block_instances"
	blockItemInstanceCollection = "block_item_instances"
)

// mongoEnrollmentRepository implements repository.EnrollmentRepository. It
// holds the client (not just the database) because CreateTree runs a
// multi-document transaction across four collections.
type mongoEnrollmentRepository struct {
	client      *mongo.Client
	enrollments *mongo.Collection
	workouts    *mongo.Collection
	blocks      *mongo.Collection
	items       *mongo.Collection
}

// NewMongoEnrollmentRepository creates a new enrollment repository.
func NewMongoEnrollmentRepository(client *mongo.Client, db *mongo.Database) repository.EnrollmentRepository {
	return &mongoEnrollmentRepository{
		client:      client,
		enrollments: db.Collection(enrollmentCollectionName),
		workouts:    db.Collection(workoutInstanceCollection),
		blocks:      db.Collection(blockInstanceCollection),
		items:       db.Collection(blockItemInstanceCollection),
	}
}

// CreateTree persists an enrollment and its full workout/block/item expansion
// as one all-or-nothing transaction. The service layer pre-assigns every
// ObjectID and parent reference while expanding the template, so the rows
// arrive fully linked; this method only stamps timestamps and inserts.
func (r *mongoEnrollmentRepository) CreateTree(ctx context.Context, tree *repository.EnrollmentTree) (primitive.ObjectID, error) {
	if tree == nil || tree.Enrollment.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("enrollment tree requires a user id")
	}
	if tree.Enrollment.ID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("enrollment tree requires pre-assigned ids")
	}

	now := time.Now().UTC()
	tree.Enrollment.CreatedAt = now
	tree.Enrollment.UpdatedAt = now

	workoutDocs := make([]interface{}, 0, len(tree.Workouts))
	for i := range tree.Workouts {
		tree.Workouts[i].CreatedAt = now
		tree.Workouts[i].UpdatedAt = now
		workoutDocs = append(workoutDocs, tree.Workouts[i])
	}
	blockDocs := make([]interface{}, 0, len(tree.Blocks))
	for i := range tree.Blocks {
		blockDocs = append(blockDocs, tree.Blocks[i])
	}
	itemDocs := make([]interface{}, 0, len(tree.Items))
	for i := range tree.Items {
		tree.Items[i].UpdatedAt = now
		itemDocs = append(itemDocs, tree.Items[i])
	}

	err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.enrollments.InsertOne(sc, tree.Enrollment); err != nil {
			return err
		}
		if len(workoutDocs) > 0 {
			if _, err := r.workouts.InsertMany(sc, workoutDocs); err != nil {
				return err
			}
		}
		if len(blockDocs) > 0 {
			if _, err := r.blocks.InsertMany(sc, blockDocs); err != nil {
				return err
			}
		}
		if len(itemDocs) > 0 {
			if _, err := r.items.InsertMany(sc, itemDocs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return tree.Enrollment.ID, nil
}

// GetByID retrieves a single enrollment by its ID.
func (r *mongoEnrollmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	filter := bson.M{"_id": id}
	err := r.enrollments.FindOne(ctx, filter).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// GetActiveByUserID retrieves the user's active enrollment, if any.
func (r *mongoEnrollmentRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	filter := bson.M{"userId": userID, "status": domain.EnrollmentActive}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.enrollments.FindOne(ctx, filter, opts).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// EnsureEnrollmentIndexes creates necessary indexes. Call during startup.
func EnsureEnrollmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
