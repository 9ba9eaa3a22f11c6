package repository

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

const (
	// DefaultPageLimit is used when the caller does not specify a limit.
	DefaultPageLimit = 50
	// MaxPageLimit caps the size of any admin page.
	MaxPageLimit = 500
)

// PageParams selects a 1-based page of a table dump.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize clamps page to at least 1 and limit to [1, MaxPageLimit].
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	} else if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageParams) offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Page is one page of rows together with the totals needed to navigate.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	TotalCount int64
	TotalPages int64
}

func newPage[T any](items []T, params PageParams, total int64) Page[T] {
	limit := int64(params.Limit)
	return Page[T]{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
		TotalPages: (total + limit - 1) / limit,
	}
}

// TableStats is the row count of one table.
type TableStats struct {
	TableName string
	RowCount  int64
}

// AdminRepository exposes pass-through projections for operators.
type AdminRepository struct {
	q querier
}

var overviewTables = []string{"rating_dimensions", "course_ratings", "course_conditions"}

// Overview returns the row count of every table the service owns.
func (r *AdminRepository) Overview(ctx context.Context) ([]TableStats, error) {
	stats := make([]TableStats, 0, len(overviewTables))
	for _, table := range overviewTables {
		var count int64
		// Table names come from the fixed list above.
		if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats = append(stats, TableStats{TableName: table, RowCount: count})
	}
	return stats, nil
}

// DimensionsPage returns a page of rating dimensions ordered by id.
func (r *AdminRepository) DimensionsPage(ctx context.Context, params PageParams) (Page[domain.Dimension], error) {
	params = params.Normalize()

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM rating_dimensions`).Scan(&total); err != nil {
		return Page[domain.Dimension]{}, fmt.Errorf("count dimensions: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT `+dimensionColumns+` FROM rating_dimensions ORDER BY id LIMIT $1 OFFSET $2`,
		params.Limit, params.offset())
	if err != nil {
		return Page[domain.Dimension]{}, fmt.Errorf("list dimension page: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Dimension, 0)
	for rows.Next() {
		dim, err := scanDimension(rows)
		if err != nil {
			return Page[domain.Dimension]{}, err
		}
		items = append(items, dim)
	}
	if err := rows.Err(); err != nil {
		return Page[domain.Dimension]{}, err
	}
	return newPage(items, params, total), nil
}

// RatingsPage returns a page of raw rating rows.
func (r *AdminRepository) RatingsPage(ctx context.Context, params PageParams) (Page[domain.Rating], error) {
	return (&RatingsRepository{q: r.q}).ListPage(ctx, params)
}

// ConditionsPage returns a page of raw condition rows.
func (r *AdminRepository) ConditionsPage(ctx context.Context, params PageParams) (Page[domain.ConditionReport], error) {
	return (&ConditionsRepository{q: r.q}).ListPage(ctx, params)
}
