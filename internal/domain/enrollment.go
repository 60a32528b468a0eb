package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentStatus type for the enrollment lifecycle.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment is the personalized, calendar-scheduled copy of a template
// program produced for one user. Template-derived fields (name, version,
// cadence) are snapshotted at creation time and never re-read, so later
// template edits cannot alter a user's history.
type Enrollment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Reference       string             `bson:"reference" json:"reference"` // Opaque external reference, safe to expose in URLs/receipts
	TemplateSlug    string             `bson:"templateSlug" json:"templateSlug"`
	TemplateVersion int                `bson:"templateVersion" json:"templateVersion"`
	TemplateName    string             `bson:"templateName" json:"templateName"`
	StartDate       time.Time          `bson:"startDate" json:"startDate"`
	WorkoutsPerWeek int                `bson:"workoutsPerWeek" json:"workoutsPerWeek"`
	Timezone        string             `bson:"timezone" json:"timezone"`
	Status          EnrollmentStatus   `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
