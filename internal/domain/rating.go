package domain

import "time"

// Dimension is a named, bounded axis that courses are rated on.
type Dimension struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MinValue    int     `json:"min_value"`
	MaxValue    int     `json:"max_value"`
}

// Allows reports whether value lies within the dimension's inclusive bounds.
func (d Dimension) Allows(value int) bool {
	return value >= d.MinValue && value <= d.MaxValue
}

// DimensionSpec describes a dimension to be seeded at startup.
type DimensionSpec struct {
	Name        string `yaml:"name" validate:"required,max=64"`
	Description string `yaml:"description" validate:"max=255"`
	MinValue    int    `yaml:"min_value"`
	MaxValue    int    `yaml:"max_value" validate:"gtefield=MinValue"`
}

// Rating represents a single user's rating of a course on one dimension.
type Rating struct {
	ID            int64
	CourseID      CourseID
	UserID        string
	DimensionID   int
	DimensionName string
	Value         int
	CreatedAt     time.Time
}

// DimensionValue is a rating value joined with its dimension name.
type DimensionValue struct {
	DimensionName string
	Value         int
}
