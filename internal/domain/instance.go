package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstanceStatus type for workout and movement instance lifecycles.
type InstanceStatus string

const (
	StatusPlanned    InstanceStatus = "planned"
	StatusInProgress InstanceStatus = "in_progress"
	StatusCompleted  InstanceStatus = "completed"
	StatusSkipped    InstanceStatus = "skipped"
)

// IsTerminal reports whether no further transition is permitted out of s.
func (s InstanceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next: planned -> in_progress -> completed, with skipped reachable from
// planned or in_progress. Completed and skipped are terminal.
func (s InstanceStatus) CanTransitionTo(next InstanceStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusInProgress:
		return s == StatusPlanned
	case StatusCompleted:
		return s == StatusPlanned || s == StatusInProgress
	case StatusSkipped:
		return s == StatusPlanned || s == StatusInProgress
	default:
		return false
	}
}

// WorkoutInstance is one scheduled, dated workout inside an enrollment.
// Title is a snapshot of the template workout's title.
type WorkoutInstance struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EnrollmentID  primitive.ObjectID `bson:"enrollmentId" json:"enrollmentId"`
	WeekIndex     int                `bson:"weekIndex" json:"weekIndex"`
	DayIndex      int                `bson:"dayIndex" json:"dayIndex"`
	Title         string             `bson:"title" json:"title"`
	ScheduledDate time.Time          `bson:"scheduledDate" json:"scheduledDate"` // Midnight UTC of the calendar day
	Status        InstanceStatus     `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BlockInstance is a snapshot of a template block within a workout instance.
type BlockInstance struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutInstanceID primitive.ObjectID `bson:"workoutInstanceId" json:"workoutInstanceId"`
	EnrollmentID      primitive.ObjectID `bson:"enrollmentId" json:"enrollmentId"`
	Sequence          int                `bson:"sequence" json:"sequence"`
	Name              string             `bson:"name" json:"name"`
	Category          string             `bson:"category" json:"category"`
}

// BlockItemInstance is one prescribed movement inside a block instance. The
// movement name and base dose are snapshots; PlannedDose is the progressed
// dose computed for the instance's week.
type BlockItemInstance struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BlockInstanceID primitive.ObjectID `bson:"blockInstanceId" json:"blockInstanceId"`
	EnrollmentID    primitive.ObjectID `bson:"enrollmentId" json:"enrollmentId"`
	Sequence        int                `bson:"sequence" json:"sequence"`
	MovementID      primitive.ObjectID `bson:"movementId" json:"movementId"`
	MovementName    string             `bson:"movementName" json:"movementName"`
	BaseDose        Dose               `bson:"baseDose" json:"baseDose"`
	PlannedDose     Dose               `bson:"plannedDose" json:"plannedDose"`
	Status          InstanceStatus     `bson:"status" json:"status"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
