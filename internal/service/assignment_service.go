package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/progression"
	"peakform/fitness-server/internal/repository"
	"peakform/fitness-server/internal/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound   = errors.New("program template not found")
	ErrSchedulingConflict = errors.New("scheduling conflict")
	ErrEnrollmentActive   = errors.New("user already has an active enrollment")
	ErrValidationFailed   = errors.New("instance validation failed")
)

// AssignmentPolicy holds the scheduling policy knobs read from config.
type AssignmentPolicy struct {
	// MaxPastStartDays bounds how far in the past a start date may lie.
	MaxPastStartDays int
	// DefaultTimezone is snapshotted onto enrollments, e.g. "UTC".
	DefaultTimezone string
}

// --- Service Interface ---

// AssignmentService expands a chosen template program into a personalized,
// calendar-scheduled, immutable enrollment for one user.
type AssignmentService interface {
	AssignProgram(ctx context.Context, userID primitive.ObjectID, templateSlug string, startDate time.Time, weekdays []time.Weekday) (primitive.ObjectID, error)
}

// --- Service Implementation ---

// assignmentService implements the AssignmentService interface.
type assignmentService struct {
	templateRepo   repository.TemplateRepository
	enrollmentRepo repository.EnrollmentRepository
	movementRepo   repository.MovementRepository
	policy         AssignmentPolicy
	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	templateRepo repository.TemplateRepository,
	enrollmentRepo repository.EnrollmentRepository,
	movementRepo repository.MovementRepository,
	policy AssignmentPolicy,
) AssignmentService {
	return &assignmentService{
		templateRepo:   templateRepo,
		enrollmentRepo: enrollmentRepo,
		movementRepo:   movementRepo,
		policy:         policy,
		now:            time.Now,
	}
}

// AssignProgram materializes the latest version of the template identified by
// slug into a full enrollment tree for the user: one dated workout instance
// per template workout, block and item snapshots underneath, and a progressed
// planned dose per item. The whole expansion is built and validated in memory
// first, then persisted as one all-or-nothing unit; no partial enrollment is
// ever visible.
func (s *assignmentService) AssignProgram(ctx context.Context, userID primitive.ObjectID, templateSlug string, startDate time.Time, weekdays []time.Weekday) (primitive.ObjectID, error) {
	if userID == primitive.NilObjectID || templateSlug == "" {
		return primitive.NilObjectID, errors.New("user ID and template slug are required")
	}

	// 1. Resolve the active template version.
	template, err := s.templateRepo.GetLatestBySlug(ctx, templateSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrTemplateNotFound
		}
		return primitive.NilObjectID, err
	}

	// 2. Precondition checks. All of these fail before any write occurs.
	start := midnightUTC(startDate)
	offsets, err := s.weekdayOffsets(start, weekdays, template.WorkoutsPerWeek)
	if err != nil {
		return primitive.NilObjectID, err
	}
	earliest := midnightUTC(s.now()).AddDate(0, 0, -s.policy.MaxPastStartDays)
	if start.Before(earliest) {
		return primitive.NilObjectID, fmt.Errorf("%w: start date %s is too far in the past", ErrSchedulingConflict, start.Format("2006-01-02"))
	}

	// 3. One active enrollment per user. Reassignment-while-active semantics
	// are deliberately not implemented; the caller must resolve the existing
	// enrollment first.
	if _, err := s.enrollmentRepo.GetActiveByUserID(ctx, userID); err == nil {
		return primitive.NilObjectID, ErrEnrollmentActive
	} else if !errors.Is(err, repository.ErrNotFound) {
		return primitive.NilObjectID, err
	}

	// 4. Load the operational movement catalog for referential checks and
	// name snapshots.
	movementIDs, err := s.movementRepo.GetIDSet(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}
	movementNames := make(map[primitive.ObjectID]string, len(movementIDs))

	// 5. Expand the template hierarchy into the enrollment tree.
	tree := &repository.EnrollmentTree{
		Enrollment: domain.Enrollment{
			ID:              primitive.NewObjectID(),
			UserID:          userID,
			Reference:       uuid.NewString(),
			TemplateSlug:    template.Slug,
			TemplateVersion: template.Version,
			TemplateName:    template.Name,
			StartDate:       start,
			WorkoutsPerWeek: template.WorkoutsPerWeek,
			Timezone:        s.policy.DefaultTimezone,
			Status:          domain.EnrollmentActive,
		},
	}

	weeks, err := s.templateRepo.GetWeeks(ctx, template.ID)
	if err != nil {
		return primitive.NilObjectID, err
	}

	for _, week := range weeks {
		workouts, err := s.templateRepo.GetWorkoutsByWeek(ctx, week.ID)
		if err != nil {
			return primitive.NilObjectID, err
		}

		// Template day indexes map positionally onto this week's dates, both
		// in chronological order.
		for i, tw := range workouts {
			if i >= len(offsets) {
				break
			}
			scheduled := start.AddDate(0, 0, 7*(week.WeekIndex-1)+offsets[i])
			workout := domain.WorkoutInstance{
				ID:            primitive.NewObjectID(),
				EnrollmentID:  tree.Enrollment.ID,
				WeekIndex:     week.WeekIndex,
				DayIndex:      i + 1,
				Title:         tw.Title,
				ScheduledDate: scheduled,
				Status:        domain.StatusPlanned,
			}
			tree.Workouts = append(tree.Workouts, workout)

			if err := s.expandBlocks(ctx, tree, &workout, tw.ID, week.WeekIndex, movementIDs, movementNames); err != nil {
				return primitive.NilObjectID, err
			}
		}
	}

	// 6. Persist the whole tree in one transaction.
	return s.enrollmentRepo.CreateTree(ctx, tree)
}

// expandBlocks snapshots one template workout's blocks and items into the
// tree, computing and validating each item's planned dose.
func (s *assignmentService) expandBlocks(
	ctx context.Context,
	tree *repository.EnrollmentTree,
	workout *domain.WorkoutInstance,
	templateWorkoutID primitive.ObjectID,
	weekIndex int,
	movementIDs map[primitive.ObjectID]struct{},
	movementNames map[primitive.ObjectID]string,
) error {
	blocks, err := s.templateRepo.GetBlocksByWorkout(ctx, templateWorkoutID)
	if err != nil {
		return err
	}
	for _, tb := range blocks {
		block := domain.BlockInstance{
			ID:                primitive.NewObjectID(),
			WorkoutInstanceID: workout.ID,
			EnrollmentID:      tree.Enrollment.ID,
			Sequence:          tb.Sequence,
			Name:              tb.Name,
			Category:          tb.Category,
		}
		tree.Blocks = append(tree.Blocks, block)

		items, err := s.templateRepo.GetItemsByBlock(ctx, tb.ID)
		if err != nil {
			return err
		}
		for _, ti := range items {
			if err := validation.ValidateMovementRefs([]primitive.ObjectID{ti.MovementID}, movementIDs); err != nil {
				return fmt.Errorf("%w: %v", ErrValidationFailed, err)
			}
			name, err := s.movementName(ctx, ti.MovementID, movementNames)
			if err != nil {
				return err
			}

			planned := progression.ComputeDose(weekIndex, tb.Category, ti.BaseDose)
			if err := validation.ValidateDose(ti.BaseDose); err != nil {
				return fmt.Errorf("%w: base dose: %v", ErrValidationFailed, err)
			}
			if err := validation.ValidateDose(planned); err != nil {
				return fmt.Errorf("%w: planned dose: %v", ErrValidationFailed, err)
			}

			tree.Items = append(tree.Items, domain.BlockItemInstance{
				ID:              primitive.NewObjectID(),
				BlockInstanceID: block.ID,
				EnrollmentID:    tree.Enrollment.ID,
				Sequence:        ti.Sequence,
				MovementID:      ti.MovementID,
				MovementName:    name,
				BaseDose:        ti.BaseDose.Clone(),
				PlannedDose:     planned,
				Status:          domain.StatusPlanned,
			})
		}
	}
	return nil
}

// movementName resolves a movement's display name, memoizing per assignment.
func (s *assignmentService) movementName(ctx context.Context, id primitive.ObjectID, cache map[primitive.ObjectID]string) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}
	movement, err := s.movementRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	cache[id] = movement.Name
	return movement.Name, nil
}

// weekdayOffsets converts the requested weekdays into day offsets relative to
// the start date, sorted chronologically within the week. The offset count
// must match the template's cadence and contain no duplicates.
func (s *assignmentService) weekdayOffsets(start time.Time, weekdays []time.Weekday, workoutsPerWeek int) ([]int, error) {
	if len(weekdays) != workoutsPerWeek {
		return nil, fmt.Errorf("%w: template needs %d weekdays, got %d", ErrSchedulingConflict, workoutsPerWeek, len(weekdays))
	}
	seen := make(map[time.Weekday]struct{}, len(weekdays))
	offsets := make([]int, 0, len(weekdays))
	for _, wd := range weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("%w: invalid weekday %d", ErrSchedulingConflict, wd)
		}
		if _, dup := seen[wd]; dup {
			return nil, fmt.Errorf("%w: duplicate weekday %s", ErrSchedulingConflict, wd)
		}
		seen[wd] = struct{}{}
		offsets = append(offsets, int(wd-start.Weekday()+7)%7)
	}
	sort.Ints(offsets)
	return offsets, nil
}

// midnightUTC truncates t to midnight UTC of its calendar day.
func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
