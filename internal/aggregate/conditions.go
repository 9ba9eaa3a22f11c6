package aggregate

import (
	"math"
	"time"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

const day = 24 * time.Hour

// AgeDays returns the number of whole days between createdAt and now.
// Timestamps in the future count as age 0.
func AgeDays(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d <= 0 {
		return 0
	}
	return int(d / day)
}

// Conditions combines the newest condition reports of one course into a
// single weighted rating. reports must be ordered newest first; only the
// first cfg.MaxReports entries are considered. The description is taken from
// the newest report that still carries weight.
//
// Returns nil when no report survives weighting.
func Conditions(reports []domain.ConditionReport, now time.Time, cfg WeightConfig) *domain.Condition {
	if cfg.MaxReports > 0 && len(reports) > cfg.MaxReports {
		reports = reports[:cfg.MaxReports]
	}

	var (
		totalWeight float64
		weighted    float64
		description string
		found       bool
	)
	for _, report := range reports {
		w := Weight(AgeDays(report.CreatedAt, now), cfg)
		if w <= 0 {
			continue
		}
		if !found {
			description = report.Description
			found = true
		}
		totalWeight += w
		weighted += float64(report.Rating) * w
	}
	if !found {
		return nil
	}

	return &domain.Condition{
		Rating:      int(math.Round(weighted / totalWeight)),
		Description: description,
	}
}
