package repository

import (
	"context"
	"time"

	"peakform/fitness-server/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// EnrollmentTree is the full materialized expansion of one template program
// for one user: the enrollment row plus every workout, block, and item
// snapshot. Persisted atomically as a single unit.
type EnrollmentTree struct {
	Enrollment domain.Enrollment
	Workouts   []domain.WorkoutInstance
	Blocks     []domain.BlockInstance
	Items      []domain.BlockItemInstance
}

// TemplateRepository reads versioned template definitions. Read-only to this
// engine; templates are authored and versioned out of band.
type TemplateRepository interface {
	GetLatestBySlug(ctx context.Context, slug string) (*domain.ProgramTemplate, error)
	GetBySlugVersion(ctx context.Context, slug string, version int) (*domain.ProgramTemplate, error)
	GetPhases(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplatePhase, error)
	GetWeeks(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateWeek, error)
	GetWorkoutsByWeek(ctx context.Context, weekID primitive.ObjectID) ([]domain.TemplateWorkout, error)
	GetBlocksByWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.TemplateBlock, error)
	GetItemsByBlock(ctx context.Context, blockID primitive.ObjectID) ([]domain.TemplateBlockItem, error)
}

// EnrollmentRepository owns the instance rows produced by program assignment.
// CreateTree persists the whole expansion atomically: on any error no row of
// the tree is visible.
type EnrollmentRepository interface {
	CreateTree(ctx context.Context, tree *EnrollmentTree) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Enrollment, error)
}

// WorkoutInstanceRepository reads and mutates workout instance rows.
// Status is the only mutable field after materialization.
type WorkoutInstanceRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutInstance, error)
	GetByEnrollmentID(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.WorkoutInstance, error)
	GetByDate(ctx context.Context, enrollmentID primitive.ObjectID, day time.Time) (*domain.WorkoutInstance, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.InstanceStatus) error
}

// BlockInstanceRepository reads block instance rows.
type BlockInstanceRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BlockInstance, error)
	GetByWorkoutInstanceID(ctx context.Context, workoutInstanceID primitive.ObjectID) ([]domain.BlockInstance, error)
}

// BlockItemInstanceRepository reads and mutates block item instance rows.
type BlockItemInstanceRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BlockItemInstance, error)
	GetByBlockInstanceID(ctx context.Context, blockInstanceID primitive.ObjectID) ([]domain.BlockItemInstance, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.InstanceStatus) error
}

// MovementRepository is the operational movement catalog. Upsert writes by
// slug; rows are never deleted by the sync.
type MovementRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Movement, error)
	GetIDSet(ctx context.Context) (map[primitive.ObjectID]struct{}, error)
	Upsert(ctx context.Context, movement *domain.Movement) (changed bool, err error)
	Count(ctx context.Context) (int64, error)
}

// MovementLibraryRepository reads the curated movement-library source tables
// and owns the rebuilt read-optimized view.
type MovementLibraryRepository interface {
	GetEntries(ctx context.Context) ([]domain.MovementLibraryEntry, error)
	GetPatterns(ctx context.Context) ([]domain.MovementPattern, error)
	GetTags(ctx context.Context) ([]domain.MovementTag, error)
	GetContraindications(ctx context.Context) ([]domain.MovementContraindication, error)
	GetEquipment(ctx context.Context) ([]domain.EquipmentRef, error)

	GetView(ctx context.Context) ([]domain.MovementView, error)
	UpsertView(ctx context.Context, row *domain.MovementView) (changed bool, err error)
}
