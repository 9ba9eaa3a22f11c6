package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/course-conditions/internal/aggregate"
	"github.com/Clark-Hu/course-conditions/internal/domain"
)

// CourseSummary returns the rating means and the weighted condition of one
// course. A course without data yields the empty summary.
func (s *Service) CourseSummary(ctx context.Context, courseID domain.CourseID) (domain.CourseSummary, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAggregation("course", time.Since(start)) }()

	return s.summarize(ctx, courseID)
}

// BulkSummaries computes summaries for every distinct id concurrently. Any
// store failure fails the whole call.
func (s *Service) BulkSummaries(ctx context.Context, ids []domain.CourseID) (map[domain.CourseID]domain.CourseSummary, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAggregation("bulk", time.Since(start)) }()
	s.metrics.ObserveBulkSize(len(ids))

	unique := make([]domain.CourseID, 0, len(ids))
	seen := make(map[domain.CourseID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	summaries := make([]domain.CourseSummary, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)
	for i, id := range unique {
		i, id := i, id
		g.Go(func() error {
			summary, err := s.summarize(gctx, id)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("bulk summaries failed", "courses", len(unique), "error", err)
		return nil, err
	}

	out := make(map[domain.CourseID]domain.CourseSummary, len(unique))
	for i, id := range unique {
		out[id] = summaries[i]
	}
	return out, nil
}

func (s *Service) summarize(ctx context.Context, courseID domain.CourseID) (domain.CourseSummary, error) {
	values, err := s.store.ListRatings(ctx, courseID)
	if err != nil {
		return domain.CourseSummary{}, processing("list ratings", err)
	}
	reports, err := s.store.ListConditionReports(ctx, courseID, s.weights.MaxReports)
	if err != nil {
		return domain.CourseSummary{}, processing("list conditions", err)
	}
	return domain.CourseSummary{
		Ratings:    aggregate.Ratings(values),
		Conditions: aggregate.Conditions(reports, s.now(), s.weights),
	}, nil
}

// Dimensions lists every rating dimension ordered by id.
func (s *Service) Dimensions(ctx context.Context) ([]domain.Dimension, error) {
	dims, err := s.store.ListDimensions(ctx)
	if err != nil {
		return nil, processing("list dimensions", err)
	}
	return dims, nil
}

// EnsureDimensions seeds the given dimensions. Existing names are left
// untouched, so calling it on every start is safe.
func (s *Service) EnsureDimensions(ctx context.Context, specs []domain.DimensionSpec) error {
	for _, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return &ValidationError{Field: "dimensions." + spec.Name, Message: err.Error()}
		}
	}
	for _, spec := range specs {
		if err := s.store.EnsureDimension(ctx, spec); err != nil {
			return processing("ensure dimension", err)
		}
	}
	s.logger.Info("rating dimensions ensured", "count", len(specs))
	return nil
}

// ParseCourseIDs parses a comma-separated id list. Blank and unparsable
// tokens, including values outside the 32-bit range, are skipped.
func ParseCourseIDs(raw string) []domain.CourseID {
	ids := make([]domain.CourseID, 0)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		n, err := strconv.ParseInt(token, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, domain.CourseID(n))
	}
	return ids
}
