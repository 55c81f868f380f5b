package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/server/middleware"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// maxBodyBytes caps upsert request bodies.
const maxBodyBytes = 1 << 20

// ExistsResponse is the body of GET /api/candidates/{memberId}.
type ExistsResponse struct {
	Exists    bool             `json:"exists"`
	Candidate *types.Candidate `json:"candidate,omitempty"`
	Message   string           `json:"message"`
}

// CandidateResponse is the body of successful upserts and deletes.
type CandidateResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Candidate *types.Candidate `json:"candidate"`
}

// ListResponse is the body of GET /api/candidates.
type ListResponse struct {
	Success    bool              `json:"success"`
	Data       []types.Candidate `json:"data"`
	Pagination types.Pagination  `json:"pagination"`
}

// handleGetCandidate reports whether a candidate has been processed.
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	memberID := strings.TrimSpace(r.PathValue("memberId"))
	c, err := s.repo.GetCandidate(r.Context(), memberID)
	if errors.Is(err, db.ErrNotFound) {
		s.jsonResponse(w, http.StatusNotFound, ExistsResponse{Message: "Candidate not found in database"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ExistsResponse{
		Exists:    true,
		Candidate: c,
		Message:   "Candidate already processed",
	})
}

// handleUpsertCandidate inserts a candidate or merges into the stored row.
func (s *Server) handleUpsertCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.UpsertCandidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, &ValidationError{Message: "invalid JSON body"})
		return
	}
	req.MemberID = strings.TrimSpace(req.MemberID)
	if err := req.Validate(); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}
	if req.ProcessedBy == nil {
		if recruiter, err := middleware.GetRecruiter(r); err == nil {
			req.ProcessedBy = &recruiter
		}
	}

	c, err := s.repo.UpsertCandidate(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("candidate saved", "member_id", c.MemberID, "name", c.FullName)
	s.jsonResponse(w, http.StatusCreated, CandidateResponse{
		Success:   true,
		Message:   "Candidate added successfully",
		Candidate: c,
	})
}

// handleListCandidates returns one page of candidates, newest first.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	page, limit := db.NormalizePage(
		parseQueryInt(r, "page", 1),
		parseQueryInt(r, "limit", db.DefaultPageLimit),
	)
	rows, total, err := s.repo.ListCandidates(r.Context(), page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ListResponse{
		Success:    true,
		Data:       rows,
		Pagination: types.NewPagination(page, limit, total),
	})
}

// handleDeleteCandidate removes a candidate.
func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	memberID := strings.TrimSpace(r.PathValue("memberId"))
	c, err := s.repo.DeleteCandidate(r.Context(), memberID)
	if errors.Is(err, db.ErrNotFound) {
		err = &NotFoundError{MemberID: memberID}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("candidate deleted", "member_id", memberID)
	s.jsonResponse(w, http.StatusOK, CandidateResponse{
		Success:   true,
		Message:   "Candidate deleted successfully",
		Candidate: c,
	})
}

// parseQueryInt reads a positive integer query parameter, falling back to def.
func parseQueryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// validationError turns validator failures into a readable message.
func validationError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error()}
	}
	var missing, invalid []string
	for _, fe := range fieldErrs {
		name := jsonFieldName(fe)
		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s failed '%s'", name, fe.Tag()))
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing required fields: " + strings.Join(missing, ", ")}
	}
	return &ValidationError{Message: "Invalid fields: " + strings.Join(invalid, ", ")}
}

var requestFieldNames = map[string]string{
	"MemberID":    "member_id",
	"FullName":    "full_name",
	"ProfileURL":  "profile_url",
	"TopSkills":   "top_skills",
	"ProcessedBy": "processed_by",
	"Status":      "status",
}

func jsonFieldName(fe validator.FieldError) string {
	if name, ok := requestFieldNames[fe.StructField()]; ok {
		return name
	}
	return fe.Field()
}
