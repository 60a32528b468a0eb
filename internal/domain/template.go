package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramTemplate is a versioned, reusable program definition. Templates are
// authored out of band; this engine only reads them by ordering keys.
type ProgramTemplate struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug            string             `bson:"slug" json:"slug"` // Stable across versions, e.g. "foundation-12wk"
	Version         int                `bson:"version" json:"version"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	DurationWeeks   int                `bson:"durationWeeks" json:"durationWeeks"`
	WorkoutsPerWeek int                `bson:"workoutsPerWeek" json:"workoutsPerWeek"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplatePhase groups consecutive template weeks, e.g. "Base", "Build", "Peak".
type TemplatePhase struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID primitive.ObjectID `bson:"templateId" json:"templateId"`
	PhaseIndex int                `bson:"phaseIndex" json:"phaseIndex"` // 1-based order within the template
	Name       string             `bson:"name" json:"name"`
	WeekCount  int                `bson:"weekCount" json:"weekCount"`
}

// TemplateWeek is a single week of a template program.
type TemplateWeek struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID     primitive.ObjectID `bson:"templateId" json:"templateId"`
	PhaseID        primitive.ObjectID `bson:"phaseId" json:"phaseId"`
	WeekIndex      int                `bson:"weekIndex" json:"weekIndex"`           // 1-based, global across the template
	PhaseWeekIndex int                `bson:"phaseWeekIndex" json:"phaseWeekIndex"` // 1-based, relative to the phase
}

// TemplateWorkout is a single authored workout within a template week.
type TemplateWorkout struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WeekID   primitive.ObjectID `bson:"weekId" json:"weekId"`
	DayIndex int                `bson:"dayIndex" json:"dayIndex"` // 1..workoutsPerWeek, positional within the week
	Title    string             `bson:"title" json:"title"`
}

// TemplateBlock is a grouping of movement items within a workout, labeled by
// training category (strength, mobility, aerobic, ...).
type TemplateBlock struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	Sequence  int                `bson:"sequence" json:"sequence"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category" json:"category"`
}

// TemplateBlockItem prescribes one movement inside a block, with its base dose.
type TemplateBlockItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BlockID    primitive.ObjectID `bson:"blockId" json:"blockId"`
	Sequence   int                `bson:"sequence" json:"sequence"`
	MovementID primitive.ObjectID `bson:"movementId" json:"movementId"`
	BaseDose   Dose               `bson:"baseDose" json:"baseDose"`
}
