package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movement is a row in the operational movement catalog, the table that
// BlockItemInstance rows reference by id. Rows are created and updated only
// by the catalog sync; they are never deleted while referenced.
type Movement struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug              string             `bson:"slug" json:"slug"` // Natural key, stable across syncs
	Name              string             `bson:"name" json:"name"`
	Patterns          []string           `bson:"patterns,omitempty" json:"patterns,omitempty"`
	Tags              []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Contraindications []string           `bson:"contraindications,omitempty" json:"contraindications,omitempty"`
	Impact            map[string]float64 `bson:"impact,omitempty" json:"impact,omitempty"` // Per-category impact, normalized to [0,1]
	EquipmentIDs      []int64            `bson:"equipmentIds,omitempty" json:"equipmentIds,omitempty"`
	VideoURL          string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MovementLibraryEntry is the curated source of truth for one movement.
// It references pattern/tag/contraindication rows by numeric id; the derived
// view denormalizes those into names.
type MovementLibraryEntry struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug                string             `bson:"slug" json:"slug"`
	Name                string             `bson:"name" json:"name"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	PatternIDs          []*int64           `bson:"patternIds,omitempty" json:"patternIds,omitempty"`
	TagIDs              []*int64           `bson:"tagIds,omitempty" json:"tagIds,omitempty"`
	ContraindicationIDs []*int64           `bson:"contraindicationIds,omitempty" json:"contraindicationIds,omitempty"`
	EquipmentIDs        []*int64           `bson:"equipmentIds,omitempty" json:"equipmentIds,omitempty"`
	Impact              map[string]float64 `bson:"impact,omitempty" json:"impact,omitempty"`
	VideoURL            string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MovementPattern is a curated movement-pattern reference row (e.g. "hinge").
type MovementPattern struct {
	RefID int64  `bson:"refId" json:"refId"`
	Name  string `bson:"name" json:"name"`
}

// MovementTag is a curated free-form classification row (e.g. "unilateral").
type MovementTag struct {
	RefID int64  `bson:"refId" json:"refId"`
	Name  string `bson:"name" json:"name"`
}

// MovementContraindication is a curated contraindication reference row
// (e.g. "acute lower-back pain").
type MovementContraindication struct {
	RefID int64  `bson:"refId" json:"refId"`
	Name  string `bson:"name" json:"name"`
}

// EquipmentRef is a curated equipment reference row. Library entries point at
// these by id; the sync validates membership before writing.
type EquipmentRef struct {
	RefID int64  `bson:"refId" json:"refId"`
	Name  string `bson:"name" json:"name"`
}

// MovementView is one row of the read-optimized projection rebuilt from the
// curated library: reference ids resolved to names, impact vector validated.
// The operational catalog is synced from this view by slug.
type MovementView struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug              string             `bson:"slug" json:"slug"`
	Name              string             `bson:"name" json:"name"`
	Patterns          []string           `bson:"patterns,omitempty" json:"patterns,omitempty"`
	Tags              []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Contraindications []string           `bson:"contraindications,omitempty" json:"contraindications,omitempty"`
	Impact            map[string]float64 `bson:"impact,omitempty" json:"impact,omitempty"`
	EquipmentIDs      []int64            `bson:"equipmentIds,omitempty" json:"equipmentIds,omitempty"`
	VideoURL          string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	RebuiltAt         time.Time          `bson:"rebuiltAt" json:"rebuiltAt"`
}
