package httpserver

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/repository"
)

type tableInfo struct {
	TableName string `json:"table_name"`
	RowCount  int64  `json:"row_count"`
}

type tablesResponse struct {
	Tables []tableInfo `json:"tables"`
}

type paginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
}

type ratingRow struct {
	ID            int64     `json:"id"`
	CourseID      int32     `json:"course_id"`
	UserID        string    `json:"user_id"`
	DimensionID   int       `json:"dimension_id"`
	DimensionName string    `json:"dimension_name"`
	Rating        int       `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
}

type conditionRow struct {
	ID          int64     `json:"id"`
	CourseID    int32     `json:"course_id"`
	UserID      string    `json:"user_id"`
	Rating      int       `json:"rating"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleAdminTables(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.Admin.Overview(r.Context())
	if err != nil {
		s.respondServiceError(w, "load table overview", err)
		return
	}
	resp := tablesResponse{Tables: make([]tableInfo, 0, len(stats))}
	for _, st := range stats {
		resp.Tables = append(resp.Tables, tableInfo{TableName: st.TableName, RowCount: st.RowCount})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminDimensions(w http.ResponseWriter, r *http.Request) {
	page, err := s.repo.Admin.DimensionsPage(r.Context(), parsePageParams(r.URL.Query()))
	if err != nil {
		s.respondServiceError(w, "list rating dimensions", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toPaginated(page, func(d domain.Dimension) domain.Dimension { return d }))
}

func (s *Server) handleAdminRatings(w http.ResponseWriter, r *http.Request) {
	page, err := s.repo.Admin.RatingsPage(r.Context(), parsePageParams(r.URL.Query()))
	if err != nil {
		s.respondServiceError(w, "list course ratings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toPaginated(page, func(rt domain.Rating) ratingRow {
		return ratingRow{
			ID:            rt.ID,
			CourseID:      int32(rt.CourseID),
			UserID:        rt.UserID,
			DimensionID:   rt.DimensionID,
			DimensionName: rt.DimensionName,
			Rating:        rt.Value,
			CreatedAt:     rt.CreatedAt,
		}
	}))
}

func (s *Server) handleAdminConditions(w http.ResponseWriter, r *http.Request) {
	page, err := s.repo.Admin.ConditionsPage(r.Context(), parsePageParams(r.URL.Query()))
	if err != nil {
		s.respondServiceError(w, "list course conditions", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toPaginated(page, func(c domain.ConditionReport) conditionRow {
		return conditionRow{
			ID:          c.ID,
			CourseID:    int32(c.CourseID),
			UserID:      c.UserID,
			Rating:      c.Rating,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		}
	}))
}

// parsePageParams reads page and limit. Missing or non-numeric values fall
// back to the defaults; the result is always within bounds.
func parsePageParams(query url.Values) repository.PageParams {
	params := repository.PageParams{Page: 1, Limit: repository.DefaultPageLimit}
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		if page, err := strconv.Atoi(val); err == nil {
			params.Page = page
		}
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		if limit, err := strconv.Atoi(val); err == nil {
			params.Limit = limit
		}
	}
	return params.Normalize()
}

func toPaginated[T, R any](page repository.Page[T], convert func(T) R) paginatedResponse[R] {
	data := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		data = append(data, convert(item))
	}
	return paginatedResponse[R]{
		Data:       data,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
}
