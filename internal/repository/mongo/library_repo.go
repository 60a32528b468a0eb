package mongo

import (
	"context"
	"errors"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	libraryCollectionName          = "movement_library"
	patternCollectionName          = "movement_patterns"
	tagCollectionName              = "movement_tags"
	contraindicationCollectionName = "movement_contraindications"
	equipmentCollectionName        = "equipment_refs"
	viewCollectionName             = "movement_library_view"
)

// mongoMovementLibraryRepository implements repository.MovementLibraryRepository.
// The curated collections are the source of truth; the view collection is the
// rebuilt read-optimized projection.
type mongoMovementLibraryRepository struct {
	entries           *mongo.Collection
	patterns          *mongo.Collection
	tags              *mongo.Collection
	contraindications *mongo.Collection
	equipment         *mongo.Collection
	view              *mongo.Collection
}

// NewMongoMovementLibraryRepository creates a new movement library repository.
func NewMongoMovementLibraryRepository(db *mongo.Database) repository.MovementLibraryRepository {
	return &mongoMovementLibraryRepository{
		entries:           db.Collection(libraryCollectionName),
		patterns:          db.Collection(patternCollectionName),
		tags:              db.Collection(tagCollectionName),
		contraindications: db.Collection(contraindicationCollectionName),
		equipment:         db.Collection(equipmentCollectionName),
		view:              db.Collection(viewCollectionName),
	}
}

// GetEntries retrieves all curated library entries ordered by slug.
func (r *mongoMovementLibraryRepository) GetEntries(ctx context.Context) ([]domain.MovementLibraryEntry, error) {
	var entries []domain.MovementLibraryEntry
	opts := options.Find().SetSort(bson.D{{Key: "slug", Value: 1}})
	if err := findAllDocs(ctx, r.entries, bson.M{}, opts, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetPatterns retrieves all curated pattern reference rows.
func (r *mongoMovementLibraryRepository) GetPatterns(ctx context.Context) ([]domain.MovementPattern, error) {
	var patterns []domain.MovementPattern
	if err := findAllDocs(ctx, r.patterns, bson.M{}, nil, &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

// GetTags retrieves all curated tag reference rows.
func (r *mongoMovementLibraryRepository) GetTags(ctx context.Context) ([]domain.MovementTag, error) {
	var tags []domain.MovementTag
	if err := findAllDocs(ctx, r.tags, bson.M{}, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetContraindications retrieves all curated contraindication rows.
func (r *mongoMovementLibraryRepository) GetContraindications(ctx context.Context) ([]domain.MovementContraindication, error) {
	var rows []domain.MovementContraindication
	if err := findAllDocs(ctx, r.contraindications, bson.M{}, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetEquipment retrieves all curated equipment reference rows.
func (r *mongoMovementLibraryRepository) GetEquipment(ctx context.Context) ([]domain.EquipmentRef, error) {
	var rows []domain.EquipmentRef
	if err := findAllDocs(ctx, r.equipment, bson.M{}, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetView retrieves the rebuilt projection ordered by slug.
func (r *mongoMovementLibraryRepository) GetView(ctx context.Context) ([]domain.MovementView, error) {
	var rows []domain.MovementView
	opts := options.Find().SetSort(bson.D{{Key: "slug", Value: 1}})
	if err := findAllDocs(ctx, r.view, bson.M{}, opts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertView writes one projection row by slug. Rows whose content is
// unchanged are left untouched so repeated rebuilds produce no observable
// difference beyond freshness.
func (r *mongoMovementLibraryRepository) UpsertView(ctx context.Context, row *domain.MovementView) (bool, error) {
	if row.Slug == "" {
		return false, errors.New("view row slug is required for upsert")
	}

	var existing domain.MovementView
	err := r.view.FindOne(ctx, bson.M{"slug": row.Slug}).Decode(&existing)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}
	if err == nil && viewContentEqual(&existing, row) {
		row.ID = existing.ID
		return false, nil
	}

	update := bson.M{
		"$set": bson.M{
			"name":              row.Name,
			"patterns":          row.Patterns,
			"tags":              row.Tags,
			"contraindications": row.Contraindications,
			"impact":            row.Impact,
			"equipmentIds":      row.EquipmentIDs,
			"videoUrl":          row.VideoURL,
			"rebuiltAt":         time.Now().UTC(),
		},
		"$setOnInsert": bson.M{"slug": row.Slug},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.view.UpdateOne(ctx, bson.M{"slug": row.Slug}, update, opts); err != nil {
		return false, err
	}
	return true, nil
}

// viewContentEqual compares projection content, ignoring the rebuild stamp.
func viewContentEqual(a, b *domain.MovementView) bool {
	return a.Name == b.Name &&
		a.VideoURL == b.VideoURL &&
		stringSlicesEqual(a.Patterns, b.Patterns) &&
		stringSlicesEqual(a.Tags, b.Tags) &&
		stringSlicesEqual(a.Contraindications, b.Contraindications) &&
		int64SlicesEqual(a.EquipmentIDs, b.EquipmentIDs) &&
		floatMapsEqual(a.Impact, b.Impact)
}

// findAllDocs runs a Find and decodes every document into results.
func findAllDocs(ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions, results interface{}) error {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = collection.Find(ctx, filter, opts)
	} else {
		cursor, err = collection.Find(ctx, filter)
	}
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, results); err != nil {
		return err
	}
	return cursor.Err()
}

// EnsureLibraryIndexes creates necessary indexes. Call during startup.
func EnsureLibraryIndexes(ctx context.Context, db *mongo.Database) {
	uniqueSlug := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	uniqueRefID := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "refId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	for name, indexes := range map[string][]mongo.IndexModel{
		libraryCollectionName:          uniqueSlug,
		viewCollectionName:             uniqueSlug,
		patternCollectionName:          uniqueRefID,
		tagCollectionName:              uniqueRefID,
		contraindicationCollectionName: uniqueRefID,
		equipmentCollectionName:        uniqueRefID,
	} {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			// log.Printf("WARN: Failed to create indexes for collection %s: %v", name, err)
		}
	}
}
