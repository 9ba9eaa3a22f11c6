package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/service"
)

type submitRequest struct {
	UserID                string         `json:"user_id"`
	Ratings               map[string]int `json:"ratings"`
	ConditionsRating      *int           `json:"conditions_rating"`
	ConditionsDescription *string        `json:"conditions_description"`
}

func (req submitRequest) toSubmission() domain.Submission {
	return domain.Submission{
		UserID:               strings.TrimSpace(req.UserID),
		Ratings:              req.Ratings,
		ConditionRating:      req.ConditionsRating,
		ConditionDescription: req.ConditionsDescription,
	}
}

func (s *Server) handleCourseData(w http.ResponseWriter, r *http.Request) {
	courseID, err := courseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	summary, err := s.svc.CourseSummary(r.Context(), courseID)
	if err != nil {
		s.respondServiceError(w, "fetch course data", err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBulkCourseData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("ids") {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "ids query parameter is required")
		return
	}

	ids := service.ParseCourseIDs(query.Get("ids"))
	summaries, err := s.svc.BulkSummaries(r.Context(), ids)
	if err != nil {
		s.respondServiceError(w, "fetch bulk course data", err)
		return
	}
	s.respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	courseID, err := courseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req submitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if s.cfg.Verbose {
		s.logger.Info("submission received",
			"course_id", courseID,
			"user_id", req.UserID,
			"ratings", req.Ratings,
			"conditions_rating", req.ConditionsRating)
	}

	if err := s.svc.Submit(r.Context(), courseID, req.toSubmission()); err != nil {
		s.respondServiceError(w, "process submission", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListDimensions(w http.ResponseWriter, r *http.Request) {
	dims, err := s.svc.Dimensions(r.Context())
	if err != nil {
		s.respondServiceError(w, "list rating dimensions", err)
		return
	}
	s.respondJSON(w, http.StatusOK, dims)
}

func courseIDParam(r *http.Request) (domain.CourseID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, fmt.Errorf("missing course id")
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid course id")
	}
	return domain.CourseID(id), nil
}
