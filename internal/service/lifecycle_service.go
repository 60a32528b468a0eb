package service

import (
	"context"
	"errors"
	"fmt"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound   = errors.New("workout instance not found")
	ErrBlockItemNotFound = errors.New("block item instance not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrUnknownStatus     = errors.New("unknown instance status")
)

// --- Service Interface ---

// LifecycleService mutates completion state on previously materialized
// instance rows. Transitions follow planned -> in_progress -> completed with
// skipped reachable from planned or in_progress; completed and skipped are
// terminal. Updates are independent single-row, last-write-wins mutations.
type LifecycleService interface {
	SetWorkoutStatus(ctx context.Context, workoutInstanceID primitive.ObjectID, status domain.InstanceStatus) error
	SetMovementStatus(ctx context.Context, blockItemInstanceID primitive.ObjectID, status domain.InstanceStatus) error
}

// --- Service Implementation ---

// lifecycleService implements the LifecycleService interface.
type lifecycleService struct {
	workoutRepo repository.WorkoutInstanceRepository
	itemRepo    repository.BlockItemInstanceRepository
}

// NewLifecycleService creates a new instance of lifecycleService.
func NewLifecycleService(
	workoutRepo repository.WorkoutInstanceRepository,
	itemRepo repository.BlockItemInstanceRepository,
) LifecycleService {
	return &lifecycleService{
		workoutRepo: workoutRepo,
		itemRepo:    itemRepo,
	}
}

// SetWorkoutStatus transitions one workout instance. An illegal transition
// fails with no mutation performed.
func (s *lifecycleService) SetWorkoutStatus(ctx context.Context, workoutInstanceID primitive.ObjectID, status domain.InstanceStatus) error {
	if workoutInstanceID == primitive.NilObjectID {
		return errors.New("workout instance ID is required")
	}
	if err := validStatus(status); err != nil {
		return err
	}

	workout, err := s.workoutRepo.GetByID(ctx, workoutInstanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	if !workout.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, workout.Status, status)
	}

	return s.workoutRepo.UpdateStatus(ctx, workoutInstanceID, status)
}

// SetMovementStatus transitions one block item instance under the same state
// machine as workouts.
func (s *lifecycleService) SetMovementStatus(ctx context.Context, blockItemInstanceID primitive.ObjectID, status domain.InstanceStatus) error {
	if blockItemInstanceID == primitive.NilObjectID {
		return errors.New("block item instance ID is required")
	}
	if err := validStatus(status); err != nil {
		return err
	}

	item, err := s.itemRepo.GetByID(ctx, blockItemInstanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBlockItemNotFound
		}
		return err
	}
	if !item.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, item.Status, status)
	}

	return s.itemRepo.UpdateStatus(ctx, blockItemInstanceID, status)
}

// validStatus rejects status values outside the instance state machine.
func validStatus(status domain.InstanceStatus) error {
	switch status {
	case domain.StatusPlanned, domain.StatusInProgress, domain.StatusCompleted, domain.StatusSkipped:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
}
