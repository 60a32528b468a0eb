package mongo

import (
	"context"
	"errors"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	templateCollectionName      = "program_templates"
	phaseCollectionName         = "template_phases"
	weekCollectionName          = "template_weeks"
	templateWorkoutCollection   = "template_workouts"
	templateBlockCollection     = "template_blocks"
	templateBlockItemCollection = "template_block_items"
)

// mongoTemplateRepository implements repository.TemplateRepository. The
// engine only reads templates; authoring happens out of band.
type mongoTemplateRepository struct {
	templates *mongo.Collection
	phases    *mongo.Collection
	weeks     *mongo.Collection
	workouts  *mongo.Collection
	blocks    *mongo.Collection
	items     *mongo.Collection
}

// NewMongoTemplateRepository creates a new template repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		templates: db.Collection(templateCollectionName),
		phases:    db.Collection(phaseCollectionName),
		weeks:     db.Collection(weekCollectionName),
		workouts:  db.Collection(templateWorkoutCollection),
		blocks:    db.Collection(templateBlockCollection),
		items:     db.Collection(templateBlockItemCollection),
	}
}

// GetLatestBySlug resolves the active (highest) version of a template slug.
func (r *mongoTemplateRepository) GetLatestBySlug(ctx context.Context, slug string) (*domain.ProgramTemplate, error) {
	var template domain.ProgramTemplate
	filter := bson.M{"slug": slug}
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	err := r.templates.FindOne(ctx, filter, opts).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetBySlugVersion resolves one pinned template version, used when reading
// structure for an enrollment that snapshotted that version.
func (r *mongoTemplateRepository) GetBySlugVersion(ctx context.Context, slug string, version int) (*domain.ProgramTemplate, error) {
	var template domain.ProgramTemplate
	filter := bson.M{"slug": slug, "version": version}
	err := r.templates.FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetPhases retrieves all phases of a template in phase-index order.
func (r *mongoTemplateRepository) GetPhases(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplatePhase, error) {
	var phases []domain.TemplatePhase
	filter := bson.M{"templateId": templateID}
	opts := options.Find().SetSort(bson.D{{Key: "phaseIndex", Value: 1}})
	if err := findAllDocs(ctx, r.phases, filter, opts, &phases); err != nil {
		return nil, err
	}
	return phases, nil
}

// GetWeeks retrieves all weeks of a template in global week-index order.
func (r *mongoTemplateRepository) GetWeeks(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateWeek, error) {
	var weeks []domain.TemplateWeek
	filter := bson.M{"templateId": templateID}
	opts := options.Find().SetSort(bson.D{{Key: "weekIndex", Value: 1}})
	if err := findAllDocs(ctx, r.weeks, filter, opts, &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

// GetWorkoutsByWeek retrieves a week's workouts in day-index order.
func (r *mongoTemplateRepository) GetWorkoutsByWeek(ctx context.Context, weekID primitive.ObjectID) ([]domain.TemplateWorkout, error) {
	var workouts []domain.TemplateWorkout
	filter := bson.M{"weekId": weekID}
	opts := options.Find().SetSort(bson.D{{Key: "dayIndex", Value: 1}})
	if err := findAllDocs(ctx, r.workouts, filter, opts, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetBlocksByWorkout retrieves a workout's blocks in sequence order.
func (r *mongoTemplateRepository) GetBlocksByWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.TemplateBlock, error) {
	var blocks []domain.TemplateBlock
	filter := bson.M{"workoutId": workoutID}
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	if err := findAllDocs(ctx, r.blocks, filter, opts, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// GetItemsByBlock retrieves a block's items in sequence order.
func (r *mongoTemplateRepository) GetItemsByBlock(ctx context.Context, blockID primitive.ObjectID) ([]domain.TemplateBlockItem, error) {
	var items []domain.TemplateBlockItem
	filter := bson.M{"blockId": blockID}
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	if err := findAllDocs(ctx, r.items, filter, opts, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// EnsureTemplateIndexes creates necessary indexes. Call during startup.
func EnsureTemplateIndexes(ctx context.Context, db *mongo.Database) {
	indexSets := map[string][]mongo.IndexModel{
		templateCollectionName: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}, {Key: "version", Value: -1}},
				Options: options.Index().SetUnique(true),
			},
		},
		phaseCollectionName: {
			{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "phaseIndex", Value: 1}}},
		},
		weekCollectionName: {
			{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "weekIndex", Value: 1}}},
		},
		templateWorkoutCollection: {
			{Keys: bson.D{{Key: "weekId", Value: 1}, {Key: "dayIndex", Value: 1}}},
		},
		templateBlockCollection: {
			{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "sequence", Value: 1}}},
		},
		templateBlockItemCollection: {
			{Keys: bson.D{{Key: "blockId", Value: 1}, {Key: "sequence", Value: 1}}},
		},
	}
	for name, indexes := range indexSets {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			// log.Printf("WARN: Failed to create indexes for collection %s: %v", name, err)
		}
	}
}
