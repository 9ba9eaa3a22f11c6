// Package service validates submissions and builds course summaries on top of
// the repository layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Clark-Hu/course-conditions/internal/aggregate"
	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/metrics"
	"github.com/Clark-Hu/course-conditions/internal/repository"
)

// DefaultBulkConcurrency bounds the bulk fan-out when Options leaves it unset.
const DefaultBulkConcurrency = 8

// Store is the persistence surface the service relies on.
// *repository.Repository satisfies it.
type Store interface {
	ListConditionReports(ctx context.Context, courseID domain.CourseID, limit int) ([]domain.ConditionReport, error)
	ListRatings(ctx context.Context, courseID domain.CourseID) ([]domain.DimensionValue, error)
	ListDimensions(ctx context.Context) ([]domain.Dimension, error)
	EnsureDimension(ctx context.Context, spec domain.DimensionSpec) error
	WithTx(ctx context.Context, fn func(repository.Writer) error) error
}

// Options configures a Service. The zero value uses the default weights.
type Options struct {
	Weights         aggregate.WeightConfig
	BulkConcurrency int
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	// Now is the evaluation clock for condition weighting.
	Now func() time.Time
}

// Service is safe for concurrent use; it holds no mutable state.
type Service struct {
	store           Store
	weights         aggregate.WeightConfig
	bulkConcurrency int
	logger          *slog.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

// New builds a Service after validating the weight configuration.
func New(store Store, opts Options) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service: store is required")
	}
	weights := opts.Weights
	if weights == (aggregate.WeightConfig{}) {
		weights = aggregate.DefaultWeightConfig()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	concurrency := opts.BulkConcurrency
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:           store,
		weights:         weights,
		bulkConcurrency: concurrency,
		logger:          logger.With("component", "service"),
		metrics:         opts.Metrics,
		now:             now,
	}, nil
}

// Weights returns the active condition weighting configuration.
func (s *Service) Weights() aggregate.WeightConfig {
	return s.weights
}
