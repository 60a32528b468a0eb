package service

import (
	"context"
	"errors"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrNoActiveEnrollment = errors.New("user has no active enrollment")
	ErrNoWorkoutToday     = errors.New("no workout scheduled for this day")
	ErrBlockNotFound      = errors.New("block instance not found")
)

// ProgramStructure is the full shape of one enrollment: the phase layout of
// the pinned template version plus every materialized workout grouped by week.
type ProgramStructure struct {
	Enrollment domain.Enrollment      `json:"enrollment"`
	Phases     []domain.TemplatePhase `json:"phases"`
	Weeks      []WeekStructure        `json:"weeks"`
}

// WeekStructure groups an enrollment's workouts for one program week.
type WeekStructure struct {
	WeekIndex int                      `json:"weekIndex"`
	Workouts  []domain.WorkoutInstance `json:"workouts"`
}

// --- Service Interface ---

// ProgramService is the consumer-facing read surface over materialized
// enrollments.
type ProgramService interface {
	FetchActiveEnrollment(ctx context.Context, userID primitive.ObjectID) (*domain.Enrollment, error)
	FetchTodayWorkout(ctx context.Context, userID primitive.ObjectID, today time.Time) (*domain.WorkoutInstance, error)
	FetchProgramStructure(ctx context.Context, enrollmentID primitive.ObjectID) (*ProgramStructure, error)
	FetchWorkoutBlocks(ctx context.Context, workoutInstanceID primitive.ObjectID) ([]domain.BlockInstance, error)
	FetchBlockItems(ctx context.Context, blockInstanceID primitive.ObjectID) ([]domain.BlockItemInstance, error)
}

// --- Service Implementation ---

// programService implements the ProgramService interface.
type programService struct {
	enrollmentRepo repository.EnrollmentRepository
	workoutRepo    repository.WorkoutInstanceRepository
	blockRepo      repository.BlockInstanceRepository
	itemRepo       repository.BlockItemInstanceRepository
	templateRepo   repository.TemplateRepository
}

// NewProgramService creates a new instance of programService.
func NewProgramService(
	enrollmentRepo repository.EnrollmentRepository,
	workoutRepo repository.WorkoutInstanceRepository,
	blockRepo repository.BlockInstanceRepository,
	itemRepo repository.BlockItemInstanceRepository,
	templateRepo repository.TemplateRepository,
) ProgramService {
	return &programService{
		enrollmentRepo: enrollmentRepo,
		workoutRepo:    workoutRepo,
		blockRepo:      blockRepo,
		itemRepo:       itemRepo,
		templateRepo:   templateRepo,
	}
}

// FetchActiveEnrollment retrieves the user's active enrollment.
func (s *programService) FetchActiveEnrollment(ctx context.Context, userID primitive.ObjectID) (*domain.Enrollment, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	enrollment, err := s.enrollmentRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveEnrollment
		}
		return nil, err
	}
	return enrollment, nil
}

// FetchTodayWorkout retrieves the workout instance scheduled on the given
// calendar day for the user's active enrollment, if any.
func (s *programService) FetchTodayWorkout(ctx context.Context, userID primitive.ObjectID, today time.Time) (*domain.WorkoutInstance, error) {
	enrollment, err := s.FetchActiveEnrollment(ctx, userID)
	if err != nil {
		return nil, err
	}
	workout, err := s.workoutRepo.GetByDate(ctx, enrollment.ID, today)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoWorkoutToday
		}
		return nil, err
	}
	return workout, nil
}

// FetchProgramStructure returns the enrollment, the phase layout of the
// template version the enrollment snapshotted, and the materialized workouts
// grouped by week index. Workout rows come from instance collections only;
// the template is consulted just for the read-only phase labels of the
// pinned version.
func (s *programService) FetchProgramStructure(ctx context.Context, enrollmentID primitive.ObjectID) (*ProgramStructure, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	var phases []domain.TemplatePhase
	template, err := s.templateRepo.GetBySlugVersion(ctx, enrollment.TemplateSlug, enrollment.TemplateVersion)
	if err == nil {
		phases, err = s.templateRepo.GetPhases(ctx, template.ID)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	// A deleted template version leaves phases empty; the materialized
	// workouts below are unaffected.

	workouts, err := s.workoutRepo.GetByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	structure := &ProgramStructure{
		Enrollment: *enrollment,
		Phases:     phases,
	}
	byWeek := make(map[int]int) // week index -> position in structure.Weeks
	for _, w := range workouts {
		pos, ok := byWeek[w.WeekIndex]
		if !ok {
			structure.Weeks = append(structure.Weeks, WeekStructure{WeekIndex: w.WeekIndex})
			pos = len(structure.Weeks) - 1
			byWeek[w.WeekIndex] = pos
		}
		structure.Weeks[pos].Workouts = append(structure.Weeks[pos].Workouts, w)
	}
	return structure, nil
}

// FetchWorkoutBlocks retrieves a workout instance's blocks in sequence order.
func (s *programService) FetchWorkoutBlocks(ctx context.Context, workoutInstanceID primitive.ObjectID) ([]domain.BlockInstance, error) {
	if workoutInstanceID == primitive.NilObjectID {
		return nil, errors.New("workout instance ID is required")
	}
	if _, err := s.workoutRepo.GetByID(ctx, workoutInstanceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.blockRepo.GetByWorkoutInstanceID(ctx, workoutInstanceID)
}

// FetchBlockItems retrieves a block instance's items in sequence order.
func (s *programService) FetchBlockItems(ctx context.Context, blockInstanceID primitive.ObjectID) ([]domain.BlockItemInstance, error) {
	if blockInstanceID == primitive.NilObjectID {
		return nil, errors.New("block instance ID is required")
	}
	if _, err := s.blockRepo.GetByID(ctx, blockInstanceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return s.itemRepo.GetByBlockInstanceID(ctx, blockInstanceID)
}
