package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

// ConditionsRepository provides helpers for course condition reports.
type ConditionsRepository struct {
	q querier
}

const conditionColumns = `id, course_id, user_id, rating, description, created_at`

// Append inserts a condition report.
func (r *ConditionsRepository) Append(ctx context.Context, courseID domain.CourseID, userID string, rating int, description string) error {
	const query = `
        INSERT INTO course_conditions (course_id, user_id, rating, description)
        VALUES ($1, $2, $3, $4)
    `
	if _, err := r.q.Exec(ctx, query, int32(courseID), userID, rating, description); err != nil {
		return fmt.Errorf("insert condition: %w", err)
	}
	return nil
}

// ListRecent returns at most limit reports for a course, newest first.
func (r *ConditionsRepository) ListRecent(ctx context.Context, courseID domain.CourseID, limit int) ([]domain.ConditionReport, error) {
	if limit <= 0 {
		return []domain.ConditionReport{}, nil
	}
	query := `SELECT ` + conditionColumns + `
        FROM course_conditions
        WHERE course_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`
	rows, err := r.q.Query(ctx, query, int32(courseID), limit)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	return collectConditions(rows, limit)
}

// ListPage returns raw condition rows, newest first, for the admin views.
func (r *ConditionsRepository) ListPage(ctx context.Context, params PageParams) (Page[domain.ConditionReport], error) {
	params = params.Normalize()

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM course_conditions`).Scan(&total); err != nil {
		return Page[domain.ConditionReport]{}, fmt.Errorf("count conditions: %w", err)
	}

	query := `SELECT ` + conditionColumns + `
        FROM course_conditions
        ORDER BY created_at DESC, id DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, params.Limit, params.offset())
	if err != nil {
		return Page[domain.ConditionReport]{}, fmt.Errorf("list condition page: %w", err)
	}
	items, err := collectConditions(rows, params.Limit)
	if err != nil {
		return Page[domain.ConditionReport]{}, err
	}
	return newPage(items, params, total), nil
}

func collectConditions(rows pgx.Rows, capacity int) ([]domain.ConditionReport, error) {
	defer rows.Close()

	reports := make([]domain.ConditionReport, 0, capacity)
	for rows.Next() {
		var (
			report   domain.ConditionReport
			courseID int32
		)
		if err := rows.Scan(&report.ID, &courseID, &report.UserID, &report.Rating, &report.Description, &report.CreatedAt); err != nil {
			return nil, err
		}
		report.CourseID = domain.CourseID(courseID)
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
