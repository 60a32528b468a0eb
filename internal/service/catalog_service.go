package service

import (
	"context"
	"errors"
	"fmt"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"
	"peakform/fitness-server/internal/validation"

	"github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrLibraryInvalid = errors.New("movement library entry failed validation")
)

// SyncResult summarizes one idempotent catalog maintenance run.
type SyncResult struct {
	Total     int `json:"total"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}

// --- Service Interface ---

// CatalogService keeps the operational movement catalog consistent with the
// curated movement library. Both operations are idempotent and safe to run
// concurrently with program assignment: writes are upsert-only by natural
// key, and existing rows are never deleted, so instance rows that already
// reference a movement can never be invalidated mid-assignment.
type CatalogService interface {
	RebuildDerivedView(ctx context.Context) (*SyncResult, error)
	SyncToOperationalCatalog(ctx context.Context) (*SyncResult, error)
}

// --- Service Implementation ---

// catalogService implements the CatalogService interface.
type catalogService struct {
	libraryRepo  repository.MovementLibraryRepository
	movementRepo repository.MovementRepository
	log          *logrus.Entry
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	libraryRepo repository.MovementLibraryRepository,
	movementRepo repository.MovementRepository,
) CatalogService {
	return &catalogService{
		libraryRepo:  libraryRepo,
		movementRepo: movementRepo,
		log:          logrus.WithField("component", "catalog"),
	}
}

// RebuildDerivedView recomputes the read-optimized movement projection from
// the curated source tables: reference ids are normalized and resolved to
// names, impact vectors validated, and the result upserted into the view by
// slug. Repeated runs produce no observable difference beyond freshness; the
// operational catalog is untouched.
func (s *catalogService) RebuildDerivedView(ctx context.Context) (*SyncResult, error) {
	entries, err := s.libraryRepo.GetEntries(ctx)
	if err != nil {
		return nil, err
	}

	patterns, err := s.libraryRepo.GetPatterns(ctx)
	if err != nil {
		return nil, err
	}
	patternNames := make(map[int64]string, len(patterns))
	for _, p := range patterns {
		patternNames[p.RefID] = p.Name
	}

	tags, err := s.libraryRepo.GetTags(ctx)
	if err != nil {
		return nil, err
	}
	tagNames := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagNames[t.RefID] = t.Name
	}

	contraindications, err := s.libraryRepo.GetContraindications(ctx)
	if err != nil {
		return nil, err
	}
	contraNames := make(map[int64]string, len(contraindications))
	for _, c := range contraindications {
		contraNames[c.RefID] = c.Name
	}
	equipment, err := s.libraryRepo.GetEquipment(ctx)
	if err != nil {
		return nil, err
	}
	equipmentSet := make(map[int64]struct{}, len(equipment))
	for _, e := range equipment {
		equipmentSet[e.RefID] = struct{}{}
	}

	result := &SyncResult{}
	for _, entry := range entries {
		row, err := s.projectEntry(&entry, patternNames, tagNames, contraNames, equipmentSet)
		if err != nil {
			return nil, err
		}
		changed, err := s.libraryRepo.UpsertView(ctx, row)
		if err != nil {
			return nil, err
		}
		result.Total++
		if changed {
			result.Changed++
		} else {
			result.Unchanged++
		}
	}

	s.log.WithFields(logrus.Fields{
		"total":   result.Total,
		"changed": result.Changed,
	}).Info("movement library view rebuilt")
	return result, nil
}

// projectEntry joins one curated entry with the reference tables into a view
// row, validating everything a later write would depend on.
func (s *catalogService) projectEntry(
	entry *domain.MovementLibraryEntry,
	patternNames, tagNames, contraNames map[int64]string,
	equipmentSet map[int64]struct{},
) (*domain.MovementView, error) {
	if entry.Slug == "" || entry.Name == "" {
		return nil, fmt.Errorf("%w: entry %s missing slug or name", ErrLibraryInvalid, entry.ID.Hex())
	}
	if err := validation.ValidateImpactVector(entry.Impact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLibraryInvalid, entry.Slug, err)
	}

	patterns, err := resolveRefs(entry.PatternIDs, patternNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %s patterns: %v", ErrLibraryInvalid, entry.Slug, err)
	}
	tags, err := resolveRefs(entry.TagIDs, tagNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %s tags: %v", ErrLibraryInvalid, entry.Slug, err)
	}
	contraindications, err := resolveRefs(entry.ContraindicationIDs, contraNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %s contraindications: %v", ErrLibraryInvalid, entry.Slug, err)
	}

	equipmentIDs := validation.NormalizeIDSet(entry.EquipmentIDs)
	if err := validation.ValidateReferences(equipmentIDs, equipmentSet); err != nil {
		return nil, fmt.Errorf("%w: %s equipment: %v", ErrLibraryInvalid, entry.Slug, err)
	}

	return &domain.MovementView{
		Slug:              entry.Slug,
		Name:              entry.Name,
		Patterns:          patterns,
		Tags:              tags,
		Contraindications: contraindications,
		Impact:            entry.Impact,
		EquipmentIDs:      equipmentIDs,
		VideoURL:          entry.VideoURL,
	}, nil
}

// SyncToOperationalCatalog merges the rebuilt projection into the operational
// movement catalog by slug. Upsert-only: rows absent from the view are
// retained, never deleted, so existing BlockItemInstance references stay
// valid. Re-running after a no-op rebuild changes nothing.
func (s *catalogService) SyncToOperationalCatalog(ctx context.Context) (*SyncResult, error) {
	view, err := s.libraryRepo.GetView(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, row := range view {
		movement := &domain.Movement{
			Slug:              row.Slug,
			Name:              row.Name,
			Patterns:          row.Patterns,
			Tags:              row.Tags,
			Contraindications: row.Contraindications,
			Impact:            row.Impact,
			EquipmentIDs:      row.EquipmentIDs,
			VideoURL:          row.VideoURL,
		}
		changed, err := s.movementRepo.Upsert(ctx, movement)
		if err != nil {
			return nil, err
		}
		result.Total++
		if changed {
			result.Changed++
		} else {
			result.Unchanged++
		}
	}

	s.log.WithFields(logrus.Fields{
		"total":   result.Total,
		"changed": result.Changed,
	}).Info("operational movement catalog synced")
	return result, nil
}

// resolveRefs normalizes an id set and resolves each id to its curated name,
// in ascending id order.
func resolveRefs(ids []*int64, names map[int64]string) ([]string, error) {
	normalized := validation.NormalizeIDSet(ids)
	set := make(map[int64]struct{}, len(names))
	for id := range names {
		set[id] = struct{}{}
	}
	if err := validation.ValidateReferences(normalized, set); err != nil {
		return nil, err
	}
	resolved := make([]string, 0, len(normalized))
	for _, id := range normalized {
		resolved = append(resolved, names[id])
	}
	return resolved, nil
}
