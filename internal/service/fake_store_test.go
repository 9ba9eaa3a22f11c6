package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/repository"
)

// fakeStore is an in-memory Store. Transactions stage writes on a copy that
// is only published when fn succeeds.
type fakeStore struct {
	mu         sync.Mutex
	dimensions []domain.Dimension
	ratings    []domain.Rating
	conditions []domain.ConditionReport
	now        func() time.Time
	txCount    int

	failRatingsFor map[domain.CourseID]error
	failDimensions error
	failAppend     error
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{now: now, failRatingsFor: map[domain.CourseID]error{}}
}

func (f *fakeStore) seed(specs ...domain.DimensionSpec) {
	for _, spec := range specs {
		_ = f.EnsureDimension(context.Background(), spec)
	}
}

func (f *fakeStore) addCondition(courseID domain.CourseID, rating int, description string, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conditions = append(f.conditions, domain.ConditionReport{
		ID:          int64(len(f.conditions) + 1),
		CourseID:    courseID,
		Rating:      rating,
		Description: description,
		CreatedAt:   createdAt,
	})
}

func (f *fakeStore) ListConditionReports(_ context.Context, courseID domain.CourseID, limit int) ([]domain.ConditionReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.ConditionReport, 0)
	for _, c := range f.conditions {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListRatings(_ context.Context, courseID domain.CourseID) ([]domain.DimensionValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failRatingsFor[courseID]; err != nil {
		return nil, err
	}
	out := make([]domain.DimensionValue, 0)
	for _, r := range f.ratings {
		if r.CourseID == courseID {
			out = append(out, domain.DimensionValue{DimensionName: r.DimensionName, Value: r.Value})
		}
	}
	return out, nil
}

func (f *fakeStore) ListDimensions(context.Context) ([]domain.Dimension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDimensions != nil {
		return nil, f.failDimensions
	}
	return append([]domain.Dimension(nil), f.dimensions...), nil
}

func (f *fakeStore) EnsureDimension(_ context.Context, spec domain.DimensionSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, d := range f.dimensions {
		if d.Name == spec.Name {
			return nil
		}
	}
	dim := domain.Dimension{
		ID:       len(f.dimensions) + 1,
		Name:     spec.Name,
		MinValue: spec.MinValue,
		MaxValue: spec.MaxValue,
	}
	if spec.Description != "" {
		desc := spec.Description
		dim.Description = &desc
	}
	f.dimensions = append(f.dimensions, dim)
	return nil
}

func (f *fakeStore) WithTx(_ context.Context, fn func(repository.Writer) error) error {
	f.mu.Lock()
	f.txCount++
	tx := &fakeTx{
		store:      f,
		dimensions: append([]domain.Dimension(nil), f.dimensions...),
		ratings:    append([]domain.Rating(nil), f.ratings...),
		conditions: append([]domain.ConditionReport(nil), f.conditions...),
	}
	f.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings = tx.ratings
	f.conditions = tx.conditions
	return nil
}

func (f *fakeStore) ratingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ratings)
}

func (f *fakeStore) conditionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conditions)
}

type fakeTx struct {
	store      *fakeStore
	dimensions []domain.Dimension
	ratings    []domain.Rating
	conditions []domain.ConditionReport
}

func (t *fakeTx) ResolveDimension(_ context.Context, name string) (domain.Dimension, error) {
	for _, d := range t.dimensions {
		if d.Name == name {
			return d, nil
		}
	}
	return domain.Dimension{}, repository.ErrNotFound
}

func (t *fakeTx) AppendRating(_ context.Context, courseID domain.CourseID, userID string, dimensionID, value int) error {
	if t.store.failAppend != nil {
		return t.store.failAppend
	}
	name := ""
	for _, d := range t.dimensions {
		if d.ID == dimensionID {
			name = d.Name
		}
	}
	t.ratings = append(t.ratings, domain.Rating{
		ID:            int64(len(t.ratings) + 1),
		CourseID:      courseID,
		UserID:        userID,
		DimensionID:   dimensionID,
		DimensionName: name,
		Value:         value,
		CreatedAt:     t.store.now(),
	})
	return nil
}

func (t *fakeTx) AppendCondition(_ context.Context, courseID domain.CourseID, userID string, rating int, description string) error {
	if t.store.failAppend != nil {
		return t.store.failAppend
	}
	t.conditions = append(t.conditions, domain.ConditionReport{
		ID:          int64(len(t.conditions) + 1),
		CourseID:    courseID,
		UserID:      userID,
		Rating:      rating,
		Description: description,
		CreatedAt:   t.store.now(),
	})
	return nil
}
