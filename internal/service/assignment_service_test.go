package service

import (
	"context"
	"testing"
	"time"

	"peakform/fitness-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assignmentFixture wires an AssignmentService over in-memory repositories
// with one seeded template and movement catalog.
type assignmentFixture struct {
	templateRepo *memTemplateRepo
	store        *memInstanceStore
	movementRepo *memMovementRepo
	service      *assignmentService
	template     domain.ProgramTemplate
	movementID   primitive.ObjectID
}

// newAssignmentFixture seeds a template with the given dimensions: one
// strength block per workout, one squat item per block with a 3x8@60kg base.
func newAssignmentFixture(t *testing.T, durationWeeks, workoutsPerWeek int) *assignmentFixture {
	t.Helper()

	templateRepo := &memTemplateRepo{}
	store := &memInstanceStore{}
	movementRepo := &memMovementRepo{}
	movementID := movementRepo.add("Back Squat", "back-squat")

	template := domain.ProgramTemplate{
		ID:              primitive.NewObjectID(),
		Slug:            "foundation-12wk",
		Version:         1,
		Name:            "Foundation",
		DurationWeeks:   durationWeeks,
		WorkoutsPerWeek: workoutsPerWeek,
	}
	templateRepo.templates = append(templateRepo.templates, template)

	for weekIndex := 1; weekIndex <= durationWeeks; weekIndex++ {
		week := domain.TemplateWeek{
			ID:         primitive.NewObjectID(),
			TemplateID: template.ID,
			WeekIndex:  weekIndex,
		}
		templateRepo.weeks = append(templateRepo.weeks, week)

		for day := 1; day <= workoutsPerWeek; day++ {
			workout := domain.TemplateWorkout{
				ID:       primitive.NewObjectID(),
				WeekID:   week.ID,
				DayIndex: day,
				Title:    "Full Body",
			}
			templateRepo.workouts = append(templateRepo.workouts, workout)

			block := domain.TemplateBlock{
				ID:        primitive.NewObjectID(),
				WorkoutID: workout.ID,
				Sequence:  1,
				Name:      "Main Lift",
				Category:  domain.CategoryStrength,
			}
			templateRepo.blocks = append(templateRepo.blocks, block)

			templateRepo.items = append(templateRepo.items, domain.TemplateBlockItem{
				ID:         primitive.NewObjectID(),
				BlockID:    block.ID,
				Sequence:   1,
				MovementID: movementID,
				BaseDose: domain.Dose{
					domain.MetricSets:   3,
					domain.MetricReps:   8,
					domain.MetricLoadKg: 60,
				},
			})
		}
	}

	svc := NewAssignmentService(templateRepo, store, movementRepo, AssignmentPolicy{
		MaxPastStartDays: 7,
		DefaultTimezone:  "UTC",
	}).(*assignmentService)
	// Pin "now" so past-date policy checks are reproducible.
	svc.now = func() time.Time { return time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC) }

	return &assignmentFixture{
		templateRepo: templateRepo,
		store:        store,
		movementRepo: movementRepo,
		service:      svc,
		template:     template,
		movementID:   movementID,
	}
}

var monWedFri = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

// 2026-01-05 is a Monday.
var mondayStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestAssignProgram_MaterializesFullSchedule(t *testing.T) {
	f := newAssignmentFixture(t, 12, 3)
	userID := primitive.NewObjectID()

	enrollmentID, err := f.service.AssignProgram(context.Background(), userID, "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)
	require.NotEqual(t, primitive.NilObjectID, enrollmentID)

	require.Len(t, f.store.enrollments, 1)
	enrollment := f.store.enrollments[0]
	assert.Equal(t, userID, enrollment.UserID)
	assert.Equal(t, "foundation-12wk", enrollment.TemplateSlug)
	assert.Equal(t, 1, enrollment.TemplateVersion)
	assert.Equal(t, "Foundation", enrollment.TemplateName)
	assert.Equal(t, domain.EnrollmentActive, enrollment.Status)
	assert.NotEmpty(t, enrollment.Reference)

	// 12 weeks x 3 workouts.
	require.Len(t, f.store.workouts, 36)
	require.Len(t, f.store.blocks, 36)
	require.Len(t, f.store.items, 36)

	allowed := map[time.Weekday]struct{}{
		time.Monday:    {},
		time.Wednesday: {},
		time.Friday:    {},
	}
	seen := make(map[time.Time]struct{}, len(f.store.workouts))
	var prev time.Time
	for _, w := range f.store.workouts {
		assert.Equal(t, enrollmentID, w.EnrollmentID)
		assert.Equal(t, domain.StatusPlanned, w.Status)
		assert.Contains(t, allowed, w.ScheduledDate.Weekday())
		assert.False(t, w.ScheduledDate.Before(mondayStart))
		// Dates are unique and strictly increasing in store order.
		_, dup := seen[w.ScheduledDate]
		assert.False(t, dup, "duplicate date %s", w.ScheduledDate)
		seen[w.ScheduledDate] = struct{}{}
		assert.True(t, w.ScheduledDate.After(prev))
		prev = w.ScheduledDate
	}
}

func TestAssignProgram_SchedulesRequestedWeekdays(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)

	byWeekDay := make(map[int]map[int]time.Time)
	for _, w := range f.store.workouts {
		if byWeekDay[w.WeekIndex] == nil {
			byWeekDay[w.WeekIndex] = make(map[int]time.Time)
		}
		byWeekDay[w.WeekIndex][w.DayIndex] = w.ScheduledDate
	}

	// Week 1: Mon Jan 5, Wed Jan 7, Fri Jan 9.
	assert.Equal(t, mondayStart, byWeekDay[1][1])
	assert.Equal(t, mondayStart.AddDate(0, 0, 2), byWeekDay[1][2])
	assert.Equal(t, mondayStart.AddDate(0, 0, 4), byWeekDay[1][3])

	// Week 2 shifts by exactly seven days.
	assert.Equal(t, mondayStart.AddDate(0, 0, 7), byWeekDay[2][1])
	assert.Equal(t, mondayStart.AddDate(0, 0, 9), byWeekDay[2][2])
	assert.Equal(t, mondayStart.AddDate(0, 0, 11), byWeekDay[2][3])

	// Every date is midnight UTC of its calendar day.
	for _, w := range f.store.workouts {
		assert.Equal(t, time.UTC, w.ScheduledDate.Location())
		assert.Zero(t, w.ScheduledDate.Hour())
		assert.Zero(t, w.ScheduledDate.Minute())
	}
}

func TestAssignProgram_MidweekStartWrapsWeekdays(t *testing.T) {
	f := newAssignmentFixture(t, 1, 3)

	// 2026-01-07 is a Wednesday; Monday wraps to the following week's Monday.
	wednesday := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)
	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", wednesday, monWedFri)
	require.NoError(t, err)

	dates := make([]time.Time, 0, 3)
	for _, w := range f.store.workouts {
		dates = append(dates, w.ScheduledDate)
	}
	// Wed at offset 0, Fri at 2, Mon wrapped to 5.
	assert.ElementsMatch(t, []time.Time{
		wednesday,
		wednesday.AddDate(0, 0, 2),
		wednesday.AddDate(0, 0, 5),
	}, dates)
}

func TestAssignProgram_ProgressesPlannedDose(t *testing.T) {
	f := newAssignmentFixture(t, 12, 1)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, []time.Weekday{time.Monday})
	require.NoError(t, err)
	require.Len(t, f.store.items, 12)

	itemsByWeek := make(map[int]domain.BlockItemInstance)
	workoutWeek := make(map[primitive.ObjectID]int)
	for _, w := range f.store.workouts {
		workoutWeek[w.ID] = w.WeekIndex
	}
	blockWeek := make(map[primitive.ObjectID]int)
	for _, b := range f.store.blocks {
		blockWeek[b.ID] = workoutWeek[b.WorkoutInstanceID]
	}
	for _, it := range f.store.items {
		itemsByWeek[blockWeek[it.BlockInstanceID]] = it
	}

	// Week 1 planned dose matches the base; later weeks load up.
	assert.Equal(t, itemsByWeek[1].BaseDose, itemsByWeek[1].PlannedDose)
	assert.Greater(t, itemsByWeek[12].PlannedDose[domain.MetricLoadKg], itemsByWeek[1].PlannedDose[domain.MetricLoadKg])
	// The base snapshot never changes across weeks.
	assert.Equal(t, itemsByWeek[1].BaseDose, itemsByWeek[12].BaseDose)
	// Movement name was snapshotted from the catalog.
	assert.Equal(t, "Back Squat", itemsByWeek[5].MovementName)
}

func TestAssignProgram_UnknownTemplate(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "no-such-program", mondayStart, monWedFri)

	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Empty(t, f.store.enrollments)
}

func TestAssignProgram_WeekdayCountMismatch(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, []time.Weekday{time.Monday, time.Friday})

	assert.ErrorIs(t, err, ErrSchedulingConflict)
	assert.Empty(t, f.store.enrollments)
	assert.Empty(t, f.store.workouts)
}

func TestAssignProgram_DuplicateWeekday(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, []time.Weekday{time.Monday, time.Monday, time.Friday})

	assert.ErrorIs(t, err, ErrSchedulingConflict)
	assert.Empty(t, f.store.workouts)
}

func TestAssignProgram_StartDateTooFarPast(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	// Policy allows 7 days back from the pinned now (2026-01-05).
	tooOld := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", tooOld, monWedFri)

	assert.ErrorIs(t, err, ErrSchedulingConflict)
	assert.Empty(t, f.store.enrollments)
}

func TestAssignProgram_StartDateWithinPolicyWindow(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	recent := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC) // exactly 7 days back, a Monday
	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", recent, monWedFri)

	assert.NoError(t, err)
}

func TestAssignProgram_SecondActiveEnrollmentRejected(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)
	userID := primitive.NewObjectID()

	_, err := f.service.AssignProgram(context.Background(), userID, "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)

	_, err = f.service.AssignProgram(context.Background(), userID, "foundation-12wk", mondayStart.AddDate(0, 0, 7), monWedFri)
	assert.ErrorIs(t, err, ErrEnrollmentActive)
	assert.Len(t, f.store.enrollments, 1)
}

func TestAssignProgram_CancelledEnrollmentDoesNotBlock(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)
	userID := primitive.NewObjectID()

	_, err := f.service.AssignProgram(context.Background(), userID, "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)
	f.store.enrollments[0].Status = domain.EnrollmentCancelled

	_, err = f.service.AssignProgram(context.Background(), userID, "foundation-12wk", mondayStart.AddDate(0, 0, 7), monWedFri)
	assert.NoError(t, err)
	assert.Len(t, f.store.enrollments, 2)
}

func TestAssignProgram_UnknownMovementLeavesNoRows(t *testing.T) {
	f := newAssignmentFixture(t, 2, 3)

	// Point one template item at a movement absent from the catalog.
	f.templateRepo.items[3].MovementID = primitive.NewObjectID()

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, monWedFri)

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.store.enrollments)
	assert.Empty(t, f.store.workouts)
	assert.Empty(t, f.store.items)
}

func TestAssignProgram_BaseDoseOutOfBoundsRejected(t *testing.T) {
	f := newAssignmentFixture(t, 1, 1)

	f.templateRepo.items[0].BaseDose = domain.Dose{domain.MetricSets: 11}

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, []time.Weekday{time.Monday})

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.store.enrollments)
}

func TestAssignProgram_PicksLatestTemplateVersion(t *testing.T) {
	f := newAssignmentFixture(t, 1, 3)

	v2 := f.template
	v2.ID = primitive.NewObjectID()
	v2.Version = 2
	v2.Name = "Foundation v2"
	f.templateRepo.templates = append(f.templateRepo.templates, v2)
	week := domain.TemplateWeek{ID: primitive.NewObjectID(), TemplateID: v2.ID, WeekIndex: 1}
	f.templateRepo.weeks = append(f.templateRepo.weeks, week)
	for day := 1; day <= 3; day++ {
		f.templateRepo.workouts = append(f.templateRepo.workouts, domain.TemplateWorkout{
			ID:       primitive.NewObjectID(),
			WeekID:   week.ID,
			DayIndex: day,
			Title:    "V2 Session",
		})
	}

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)

	assert.Equal(t, 2, f.store.enrollments[0].TemplateVersion)
	assert.Equal(t, "Foundation v2", f.store.enrollments[0].TemplateName)
	for _, w := range f.store.workouts {
		assert.Equal(t, "V2 Session", w.Title)
	}
}

func TestAssignProgram_SnapshotSurvivesTemplateEdit(t *testing.T) {
	f := newAssignmentFixture(t, 1, 1)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, []time.Weekday{time.Monday})
	require.NoError(t, err)

	// Editing the template after assignment must not leak into the instances.
	f.templateRepo.workouts[0].Title = "Renamed Session"
	f.templateRepo.items[0].BaseDose[domain.MetricLoadKg] = 999

	assert.Equal(t, "Full Body", f.store.workouts[0].Title)
	assert.Equal(t, 60.0, f.store.items[0].BaseDose[domain.MetricLoadKg])
}

func TestAssignProgram_UniqueReferencePerEnrollment(t *testing.T) {
	f := newAssignmentFixture(t, 1, 3)

	_, err := f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)
	_, err = f.service.AssignProgram(context.Background(), primitive.NewObjectID(), "foundation-12wk", mondayStart, monWedFri)
	require.NoError(t, err)

	assert.NotEqual(t, f.store.enrollments[0].Reference, f.store.enrollments[1].Reference)
}
