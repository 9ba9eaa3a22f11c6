package aggregate

import "github.com/Clark-Hu/course-conditions/internal/domain"

// Ratings computes the arithmetic mean per dimension name. Dimensions without
// values are absent from the result; the map is never nil.
func Ratings(values []domain.DimensionValue) map[string]float64 {
	type acc struct {
		sum   int64
		count int64
	}
	groups := make(map[string]*acc)
	for _, v := range values {
		g, ok := groups[v.DimensionName]
		if !ok {
			g = &acc{}
			groups[v.DimensionName] = g
		}
		g.sum += int64(v.Value)
		g.count++
	}

	means := make(map[string]float64, len(groups))
	for name, g := range groups {
		means[name] = float64(g.sum) / float64(g.count)
	}
	return means
}
