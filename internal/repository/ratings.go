package repository

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

// RatingsRepository provides helpers for per-dimension course ratings.
type RatingsRepository struct {
	q querier
}

// Append inserts a rating row. Ratings are never updated in place.
func (r *RatingsRepository) Append(ctx context.Context, courseID domain.CourseID, userID string, dimensionID, value int) error {
	const query = `
        INSERT INTO course_ratings (course_id, user_id, dimension_id, rating)
        VALUES ($1, $2, $3, $4)
    `
	if _, err := r.q.Exec(ctx, query, int32(courseID), userID, dimensionID, value); err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// ListByCourse returns all rating values of a course with their dimension name.
func (r *RatingsRepository) ListByCourse(ctx context.Context, courseID domain.CourseID) ([]domain.DimensionValue, error) {
	const query = `
        SELECT rd.name, cr.rating
        FROM course_ratings cr
        JOIN rating_dimensions rd ON cr.dimension_id = rd.id
        WHERE cr.course_id = $1
    `
	rows, err := r.q.Query(ctx, query, int32(courseID))
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	values := make([]domain.DimensionValue, 0)
	for rows.Next() {
		var v domain.DimensionValue
		if err := rows.Scan(&v.DimensionName, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListPage returns raw rating rows, newest first, for the admin views.
func (r *RatingsRepository) ListPage(ctx context.Context, params PageParams) (Page[domain.Rating], error) {
	params = params.Normalize()

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM course_ratings`).Scan(&total); err != nil {
		return Page[domain.Rating]{}, fmt.Errorf("count ratings: %w", err)
	}

	const query = `
        SELECT cr.id, cr.course_id, cr.user_id, cr.dimension_id, rd.name, cr.rating, cr.created_at
        FROM course_ratings cr
        JOIN rating_dimensions rd ON cr.dimension_id = rd.id
        ORDER BY cr.created_at DESC, cr.id DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := r.q.Query(ctx, query, params.Limit, params.offset())
	if err != nil {
		return Page[domain.Rating]{}, fmt.Errorf("list rating page: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Rating, 0, params.Limit)
	for rows.Next() {
		var (
			rating   domain.Rating
			courseID int32
		)
		if err := rows.Scan(&rating.ID, &courseID, &rating.UserID, &rating.DimensionID, &rating.DimensionName, &rating.Value, &rating.CreatedAt); err != nil {
			return Page[domain.Rating]{}, err
		}
		rating.CourseID = domain.CourseID(courseID)
		items = append(items, rating)
	}
	if err := rows.Err(); err != nil {
		return Page[domain.Rating]{}, err
	}
	return newPage(items, params, total), nil
}
