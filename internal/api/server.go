// Package api exposes the pipeline over HTTP: kick off a run for a job ID and
// list recently processed jobs.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"resume-ranker/internal/history"
	"resume-ranker/internal/models"
	"resume-ranker/internal/pipeline"
	"resume-ranker/internal/sink"
)

// Runner executes one ranking run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, jobID string) (*models.Report, error)
}

// Server handles HTTP requests.
type Server struct {
	runner Runner
	recent *history.RecentJobs
}

// NewServer creates a new API server.
func NewServer(runner Runner, recent *history.RecentJobs) *Server {
	return &Server{runner: runner, recent: recent}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /recent-jobs", s.handleRecentJobs)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Resume Ranker",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /process":    "Run resume ranking for a job ID",
			"GET /recent-jobs": "List recently processed job IDs",
			"GET /health":      "Health check",
		},
	})
}

// handleHealth provides a health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type processRequest struct {
	JobID string `json:"job_id"`
}

// handleProcess validates the job ID, runs the pipeline, and responds with
// the ranked table in column/row form.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	jobID := s.jobIDFromRequest(r)
	if err := pipeline.ValidateJobID(jobID); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.runner.Run(r.Context(), jobID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recent.Add(report.JobID)

	tableData := make([][]string, 0, len(report.Candidates))
	for _, c := range report.Candidates {
		tableData = append(tableData, sink.RecordRow(c, report.JobDescription))
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":          report.JobID,
		"job_role":        report.JobDescription.JobRole,
		"subject_skills":  report.JobDescription.SubjectSkills,
		"scenario":        report.Scenario,
		"columns":         models.ReportColumns,
		"table_data":      tableData,
		"candidate_count": len(report.Candidates),
	})
}

// jobIDFromRequest accepts the job ID as a form value or a JSON body.
func (s *Server) jobIDFromRequest(r *http.Request) string {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			return strings.TrimSpace(req.JobID)
		}
		return ""
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return strings.TrimSpace(r.FormValue("job_id"))
}

// handleRecentJobs returns recently processed job IDs, most recent first.
func (s *Server) handleRecentJobs(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"recent_job_ids": s.recent.List(),
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
