package domain

import (
	"strconv"
	"time"
)

// CourseID is the opaque key of a course. Courses have no row of their own;
// they exist through the ratings and condition reports filed against them.
type CourseID int32

func (id CourseID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ConditionReport is a single time-stamped condition note for a course.
type ConditionReport struct {
	ID          int64
	CourseID    CourseID
	UserID      string
	Rating      int
	Description string
	CreatedAt   time.Time
}

// Condition is the weighted summary of the most recent condition reports.
type Condition struct {
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

// CourseSummary combines the per-dimension means with the condition summary.
// Conditions is nil when no recent report survives weighting.
type CourseSummary struct {
	Ratings    map[string]float64 `json:"ratings"`
	Conditions *Condition         `json:"conditions"`
}

// EmptySummary is the zero-state returned for courses without data.
func EmptySummary() CourseSummary {
	return CourseSummary{Ratings: map[string]float64{}}
}

// Submission is a combined ratings and/or condition report from one user.
type Submission struct {
	UserID               string
	Ratings              map[string]int
	ConditionRating      *int
	ConditionDescription *string
}

// HasRatings reports whether the submission carries at least one rating.
func (s Submission) HasRatings() bool {
	return len(s.Ratings) > 0
}

// HasCondition reports whether the submission carries a condition report.
func (s Submission) HasCondition() bool {
	return s.ConditionRating != nil
}
