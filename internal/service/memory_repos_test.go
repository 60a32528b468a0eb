package service

// In-memory repository implementations backing the service tests. They mirror
// the Mongo repositories' observable behavior: ErrNotFound on misses, ordered
// reads, and all-or-nothing CreateTree.

import (
	"context"
	"reflect"
	"sort"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Template repository ---

type memTemplateRepo struct {
	templates []domain.ProgramTemplate
	phases    []domain.TemplatePhase
	weeks     []domain.TemplateWeek
	workouts  []domain.TemplateWorkout
	blocks    []domain.TemplateBlock
	items     []domain.TemplateBlockItem
}

func (r *memTemplateRepo) GetLatestBySlug(_ context.Context, slug string) (*domain.ProgramTemplate, error) {
	var latest *domain.ProgramTemplate
	for i := range r.templates {
		t := &r.templates[i]
		if t.Slug != slug {
			continue
		}
		if latest == nil || t.Version > latest.Version {
			latest = t
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *memTemplateRepo) GetBySlugVersion(_ context.Context, slug string, version int) (*domain.ProgramTemplate, error) {
	for i := range r.templates {
		t := r.templates[i]
		if t.Slug == slug && t.Version == version {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTemplateRepo) GetPhases(_ context.Context, templateID primitive.ObjectID) ([]domain.TemplatePhase, error) {
	var out []domain.TemplatePhase
	for _, p := range r.phases {
		if p.TemplateID == templateID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhaseIndex < out[j].PhaseIndex })
	return out, nil
}

func (r *memTemplateRepo) GetWeeks(_ context.Context, templateID primitive.ObjectID) ([]domain.TemplateWeek, error) {
	var out []domain.TemplateWeek
	for _, w := range r.weeks {
		if w.TemplateID == templateID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekIndex < out[j].WeekIndex })
	return out, nil
}

func (r *memTemplateRepo) GetWorkoutsByWeek(_ context.Context, weekID primitive.ObjectID) ([]domain.TemplateWorkout, error) {
	var out []domain.TemplateWorkout
	for _, w := range r.workouts {
		if w.WeekID == weekID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayIndex < out[j].DayIndex })
	return out, nil
}

func (r *memTemplateRepo) GetBlocksByWorkout(_ context.Context, workoutID primitive.ObjectID) ([]domain.TemplateBlock, error) {
	var out []domain.TemplateBlock
	for _, b := range r.blocks {
		if b.WorkoutID == workoutID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memTemplateRepo) GetItemsByBlock(_ context.Context, blockID primitive.ObjectID) ([]domain.TemplateBlockItem, error) {
	var out []domain.TemplateBlockItem
	for _, it := range r.items {
		if it.BlockID == blockID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// --- Instance store (enrollment + workout + block + item repositories) ---

type memInstanceStore struct {
	enrollments []domain.Enrollment
	workouts    []domain.WorkoutInstance
	blocks      []domain.BlockInstance
	items       []domain.BlockItemInstance
}

func (s *memInstanceStore) CreateTree(_ context.Context, tree *repository.EnrollmentTree) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	enrollment := tree.Enrollment
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	s.enrollments = append(s.enrollments, enrollment)
	for _, w := range tree.Workouts {
		w.CreatedAt = now
		w.UpdatedAt = now
		s.workouts = append(s.workouts, w)
	}
	s.blocks = append(s.blocks, tree.Blocks...)
	for _, it := range tree.Items {
		it.UpdatedAt = now
		s.items = append(s.items, it)
	}
	return enrollment.ID, nil
}

func (s *memInstanceStore) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	for i := range s.enrollments {
		if s.enrollments[i].ID == id {
			e := s.enrollments[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memInstanceStore) GetActiveByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Enrollment, error) {
	for i := range s.enrollments {
		e := s.enrollments[i]
		if e.UserID == userID && e.Status == domain.EnrollmentActive {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

// workoutRepo exposes the store as a WorkoutInstanceRepository. Enrollment
// and workout GetByID differ only in return type, hence the small adapters.
type memWorkoutRepo struct{ store *memInstanceStore }

func (r *memWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutInstance, error) {
	for i := range r.store.workouts {
		if r.store.workouts[i].ID == id {
			w := r.store.workouts[i]
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memWorkoutRepo) GetByEnrollmentID(_ context.Context, enrollmentID primitive.ObjectID) ([]domain.WorkoutInstance, error) {
	var out []domain.WorkoutInstance
	for _, w := range r.store.workouts {
		if w.EnrollmentID == enrollmentID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (r *memWorkoutRepo) GetByDate(_ context.Context, enrollmentID primitive.ObjectID, day time.Time) (*domain.WorkoutInstance, error) {
	target := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	for i := range r.store.workouts {
		w := r.store.workouts[i]
		if w.EnrollmentID == enrollmentID && w.ScheduledDate.Equal(target) {
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memWorkoutRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.InstanceStatus) error {
	for i := range r.store.workouts {
		if r.store.workouts[i].ID == id {
			r.store.workouts[i].Status = status
			r.store.workouts[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

type memBlockRepo struct{ store *memInstanceStore }

func (r *memBlockRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.BlockInstance, error) {
	for i := range r.store.blocks {
		if r.store.blocks[i].ID == id {
			b := r.store.blocks[i]
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memBlockRepo) GetByWorkoutInstanceID(_ context.Context, workoutInstanceID primitive.ObjectID) ([]domain.BlockInstance, error) {
	var out []domain.BlockInstance
	for _, b := range r.store.blocks {
		if b.WorkoutInstanceID == workoutInstanceID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type memItemRepo struct{ store *memInstanceStore }

func (r *memItemRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.BlockItemInstance, error) {
	for i := range r.store.items {
		if r.store.items[i].ID == id {
			it := r.store.items[i]
			return &it, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memItemRepo) GetByBlockInstanceID(_ context.Context, blockInstanceID primitive.ObjectID) ([]domain.BlockItemInstance, error) {
	var out []domain.BlockItemInstance
	for _, it := range r.store.items {
		if it.BlockInstanceID == blockInstanceID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memItemRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.InstanceStatus) error {
	for i := range r.store.items {
		if r.store.items[i].ID == id {
			r.store.items[i].Status = status
			r.store.items[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- Movement catalog repository ---

type memMovementRepo struct {
	movements []domain.Movement
}

func (r *memMovementRepo) add(name, slug string) primitive.ObjectID {
	m := domain.Movement{
		ID:   primitive.NewObjectID(),
		Slug: slug,
		Name: name,
	}
	r.movements = append(r.movements, m)
	return m.ID
}

func (r *memMovementRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	for i := range r.movements {
		if r.movements[i].ID == id {
			m := r.movements[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memMovementRepo) GetBySlug(_ context.Context, slug string) (*domain.Movement, error) {
	for i := range r.movements {
		if r.movements[i].Slug == slug {
			m := r.movements[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memMovementRepo) GetIDSet(_ context.Context) (map[primitive.ObjectID]struct{}, error) {
	out := make(map[primitive.ObjectID]struct{}, len(r.movements))
	for _, m := range r.movements {
		out[m.ID] = struct{}{}
	}
	return out, nil
}

func (r *memMovementRepo) Upsert(_ context.Context, movement *domain.Movement) (bool, error) {
	for i := range r.movements {
		existing := &r.movements[i]
		if existing.Slug != movement.Slug {
			continue
		}
		if movementContentEqualTest(existing, movement) {
			return false, nil
		}
		id, createdAt := existing.ID, existing.CreatedAt
		*existing = *movement
		existing.ID = id
		existing.CreatedAt = createdAt
		existing.UpdatedAt = time.Now().UTC()
		return true, nil
	}
	created := *movement
	created.ID = primitive.NewObjectID()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	r.movements = append(r.movements, created)
	return true, nil
}

func (r *memMovementRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.movements)), nil
}

func movementContentEqualTest(a, b *domain.Movement) bool {
	return a.Name == b.Name &&
		reflect.DeepEqual(a.Patterns, b.Patterns) &&
		reflect.DeepEqual(a.Tags, b.Tags) &&
		reflect.DeepEqual(a.Contraindications, b.Contraindications) &&
		reflect.DeepEqual(a.Impact, b.Impact) &&
		reflect.DeepEqual(a.EquipmentIDs, b.EquipmentIDs) &&
		a.VideoURL == b.VideoURL
}

// --- Movement library repository ---

type memLibraryRepo struct {
	entries           []domain.MovementLibraryEntry
	patterns          []domain.MovementPattern
	tags              []domain.MovementTag
	contraindications []domain.MovementContraindication
	equipment         []domain.EquipmentRef
	view              []domain.MovementView
}

func (r *memLibraryRepo) GetEntries(_ context.Context) ([]domain.MovementLibraryEntry, error) {
	return append([]domain.MovementLibraryEntry(nil), r.entries...), nil
}

func (r *memLibraryRepo) GetPatterns(_ context.Context) ([]domain.MovementPattern, error) {
	return append([]domain.MovementPattern(nil), r.patterns...), nil
}

func (r *memLibraryRepo) GetTags(_ context.Context) ([]domain.MovementTag, error) {
	return append([]domain.MovementTag(nil), r.tags...), nil
}

func (r *memLibraryRepo) GetContraindications(_ context.Context) ([]domain.MovementContraindication, error) {
	return append([]domain.MovementContraindication(nil), r.contraindications...), nil
}

func (r *memLibraryRepo) GetEquipment(_ context.Context) ([]domain.EquipmentRef, error) {
	return append([]domain.EquipmentRef(nil), r.equipment...), nil
}

func (r *memLibraryRepo) GetView(_ context.Context) ([]domain.MovementView, error) {
	return append([]domain.MovementView(nil), r.view...), nil
}

func (r *memLibraryRepo) UpsertView(_ context.Context, row *domain.MovementView) (bool, error) {
	for i := range r.view {
		existing := &r.view[i]
		if existing.Slug != row.Slug {
			continue
		}
		if viewContentEqualTest(existing, row) {
			return false, nil
		}
		id := existing.ID
		*existing = *row
		existing.ID = id
		existing.RebuiltAt = time.Now().UTC()
		return true, nil
	}
	created := *row
	created.ID = primitive.NewObjectID()
	created.RebuiltAt = time.Now().UTC()
	r.view = append(r.view, created)
	return true, nil
}

func viewContentEqualTest(a, b *domain.MovementView) bool {
	return a.Name == b.Name &&
		reflect.DeepEqual(a.Patterns, b.Patterns) &&
		reflect.DeepEqual(a.Tags, b.Tags) &&
		reflect.DeepEqual(a.Contraindications, b.Contraindications) &&
		reflect.DeepEqual(a.Impact, b.Impact) &&
		reflect.DeepEqual(a.EquipmentIDs, b.EquipmentIDs) &&
		a.VideoURL == b.VideoURL
}
