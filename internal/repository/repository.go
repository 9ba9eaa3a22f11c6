package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Writer is the write side available inside a submission transaction.
type Writer interface {
	ResolveDimension(ctx context.Context, name string) (domain.Dimension, error)
	AppendRating(ctx context.Context, courseID domain.CourseID, userID string, dimensionID, value int) error
	AppendCondition(ctx context.Context, courseID domain.CourseID, userID string, rating int, description string) error
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Dimensions *DimensionsRepository
	Ratings    *RatingsRepository
	Conditions *ConditionsRepository
	Admin      *AdminRepository

	pool *pgxpool.Pool
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	r := newWithQuerier(pool)
	r.pool = pool
	return r
}

func newWithQuerier(q querier) *Repository {
	return &Repository{
		Dimensions: &DimensionsRepository{q: q},
		Ratings:    &RatingsRepository{q: q},
		Conditions: &ConditionsRepository{q: q},
		Admin:      &AdminRepository{q: q},
	}
}

// WithTx runs fn inside a single transaction. Returning an error from fn rolls
// back every write issued through the Writer.
func (r *Repository) WithTx(ctx context.Context, fn func(Writer) error) error {
	if r.pool == nil {
		// Already inside a transaction.
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(newWithQuerier(tx))
	})
}

// ListConditionReports returns up to limit reports for a course, newest first.
func (r *Repository) ListConditionReports(ctx context.Context, courseID domain.CourseID, limit int) ([]domain.ConditionReport, error) {
	return r.Conditions.ListRecent(ctx, courseID, limit)
}

// ListRatings returns every rating of a course joined with its dimension name.
func (r *Repository) ListRatings(ctx context.Context, courseID domain.CourseID) ([]domain.DimensionValue, error) {
	return r.Ratings.ListByCourse(ctx, courseID)
}

// ListDimensions returns all rating dimensions ordered by id.
func (r *Repository) ListDimensions(ctx context.Context) ([]domain.Dimension, error) {
	return r.Dimensions.List(ctx)
}

// EnsureDimension creates the dimension if no dimension with its name exists.
func (r *Repository) EnsureDimension(ctx context.Context, spec domain.DimensionSpec) error {
	return r.Dimensions.Ensure(ctx, spec)
}

// ResolveDimension looks a dimension up by name.
func (r *Repository) ResolveDimension(ctx context.Context, name string) (domain.Dimension, error) {
	return r.Dimensions.GetByName(ctx, name)
}

// AppendRating stores one rating row.
func (r *Repository) AppendRating(ctx context.Context, courseID domain.CourseID, userID string, dimensionID, value int) error {
	return r.Ratings.Append(ctx, courseID, userID, dimensionID, value)
}

// AppendCondition stores one condition report.
func (r *Repository) AppendCondition(ctx context.Context, courseID domain.CourseID, userID string, rating int, description string) error {
	return r.Conditions.Append(ctx, courseID, userID, rating, description)
}
