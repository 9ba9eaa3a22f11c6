package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/metrics"
	"github.com/Clark-Hu/course-conditions/internal/repository"
)

// MaxDescriptionLength is the longest condition description accepted, in characters.
const MaxDescriptionLength = 128

var validate = validator.New()

type submissionInput struct {
	UserID      string `validate:"required"`
	Description string `validate:"max=128"`
}

// Submit validates a submission and writes its ratings and condition report
// in one transaction. An empty submission is accepted without touching the
// store.
func (s *Service) Submit(ctx context.Context, courseID domain.CourseID, sub domain.Submission) error {
	if err := validateSubmission(sub); err != nil {
		s.metrics.RecordSubmission(metrics.OutcomeInvalid)
		return err
	}
	if !sub.HasRatings() && !sub.HasCondition() {
		s.metrics.RecordSubmission(metrics.OutcomeNoop)
		return nil
	}

	err := s.store.WithTx(ctx, func(w repository.Writer) error {
		return s.write(ctx, w, courseID, sub)
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.RecordSubmission(metrics.OutcomeInvalid)
			return verr
		}
		s.metrics.RecordSubmission(metrics.OutcomeFailed)
		s.logger.Error("submission failed", "course_id", courseID, "user_id", sub.UserID, "error", err)
		return processing("submit", err)
	}

	s.metrics.RecordSubmission(metrics.OutcomeAccepted)
	s.logger.Debug("submission accepted",
		"course_id", courseID,
		"ratings", len(sub.Ratings),
		"condition", sub.HasCondition())
	return nil
}

func (s *Service) write(ctx context.Context, w repository.Writer, courseID domain.CourseID, sub domain.Submission) error {
	names := make([]string, 0, len(sub.Ratings))
	for name := range sub.Ratings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := sub.Ratings[name]
		dim, err := w.ResolveDimension(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &ProcessingError{Op: "resolve dimension", Err: fmt.Errorf("%w: %q", ErrUnknownDimension, name)}
			}
			return &ProcessingError{Op: "resolve dimension", Err: err}
		}
		if !dim.Allows(value) {
			return &ValidationError{
				Field:   "ratings." + name,
				Message: fmt.Sprintf("must be between %d and %d", dim.MinValue, dim.MaxValue),
			}
		}
		if err := w.AppendRating(ctx, courseID, sub.UserID, dim.ID, value); err != nil {
			return &ProcessingError{Op: "append rating", Err: err}
		}
	}

	if sub.HasCondition() {
		if err := w.AppendCondition(ctx, courseID, sub.UserID, *sub.ConditionRating, description(sub)); err != nil {
			return &ProcessingError{Op: "append condition", Err: err}
		}
	}
	return nil
}

func validateSubmission(sub domain.Submission) error {
	input := submissionInput{UserID: strings.TrimSpace(sub.UserID)}
	if sub.HasCondition() {
		input.Description = description(sub)
	}
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "submission", Message: err.Error()}
	}
	switch fieldErrs[0].Field() {
	case "UserID":
		return &ValidationError{Field: "user_id", Message: "is required"}
	default:
		return &ValidationError{
			Field:   "conditions_description",
			Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength),
		}
	}
}

func description(sub domain.Submission) string {
	if sub.ConditionDescription == nil {
		return ""
	}
	return *sub.ConditionDescription
}
