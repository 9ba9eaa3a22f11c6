package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

// DimensionsRepository provides access to rating dimension reference data.
type DimensionsRepository struct {
	q querier
}

const dimensionColumns = `id, name, description, min_value, max_value`

// Ensure inserts a dimension unless one with the same name already exists.
func (r *DimensionsRepository) Ensure(ctx context.Context, spec domain.DimensionSpec) error {
	const query = `
        INSERT INTO rating_dimensions (name, description, min_value, max_value)
        VALUES ($1, NULLIF($2, ''), $3, $4)
        ON CONFLICT (name) DO NOTHING
    `
	if _, err := r.q.Exec(ctx, query, spec.Name, spec.Description, spec.MinValue, spec.MaxValue); err != nil {
		return fmt.Errorf("ensure dimension %q: %w", spec.Name, err)
	}
	return nil
}

// List returns every dimension ordered by id.
func (r *DimensionsRepository) List(ctx context.Context) ([]domain.Dimension, error) {
	rows, err := r.q.Query(ctx, `SELECT `+dimensionColumns+` FROM rating_dimensions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	defer rows.Close()

	dims := make([]domain.Dimension, 0)
	for rows.Next() {
		dim, err := scanDimension(rows)
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	return dims, rows.Err()
}

// GetByName resolves a dimension by its unique name.
func (r *DimensionsRepository) GetByName(ctx context.Context, name string) (domain.Dimension, error) {
	row := r.q.QueryRow(ctx, `SELECT `+dimensionColumns+` FROM rating_dimensions WHERE name = $1`, name)
	dim, err := scanDimension(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Dimension{}, ErrNotFound
		}
		return domain.Dimension{}, err
	}
	return dim, nil
}

func scanDimension(row pgx.Row) (domain.Dimension, error) {
	var dim domain.Dimension
	err := row.Scan(&dim.ID, &dim.Name, &dim.Description, &dim.MinValue, &dim.MaxValue)
	return dim, err
}
