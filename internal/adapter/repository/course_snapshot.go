package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eslsoft/gradebook/internal/adapter/mapping"
	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
)

// CourseSnapshotKey is the single key the local store writes the tree under.
const CourseSnapshotKey = "gradebook:course"

const snapshotVersion = 1

type snapshotEnvelope struct {
	Version int                `json:"version"`
	SavedAt time.Time          `json:"saved_at"`
	Course  *mapping.CourseDTO `json:"course"`
}

// CourseSnapshotRepository serializes the whole tree as one JSON document.
type CourseSnapshotRepository struct {
	store repository.KeyValueStore
	key   string
}

func NewCourseSnapshotRepository(store repository.KeyValueStore) repository.CourseSnapshotRepository {
	return &CourseSnapshotRepository{store: store, key: CourseSnapshotKey}
}

func (r *CourseSnapshotRepository) Load(ctx context.Context) (*entity.Course, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", env.Version, snapshotVersion)
	}
	if env.Course == nil {
		return nil, nil
	}
	return mapping.FromCourseDTO(env.Course), nil
}

func (r *CourseSnapshotRepository) Save(ctx context.Context, course *entity.Course) error {
	if course == nil {
		return r.Delete(ctx)
	}
	raw, err := json.Marshal(snapshotEnvelope{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Course:  mapping.ToCourseDTO(course),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.store.Set(ctx, r.key, raw)
}

func (r *CourseSnapshotRepository) Delete(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}
