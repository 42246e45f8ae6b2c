package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"resume-ranker/internal/history"
	"resume-ranker/internal/models"
)

type fakeRunner struct {
	report *models.Report
	err    error
	jobID  string
}

func (f *fakeRunner) Run(_ context.Context, jobID string) (*models.Report, error) {
	f.jobID = jobID
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func sampleReport() *models.Report {
	return &models.Report{
		RunID: "run-1",
		JobID: "ABC123",
		JobDescription: &models.JobDescription{
			JobRole:       "SAP ABAP Developer",
			SubjectSkills: []string{"ABAP", "Fiori"},
			JDSkills:      "Strong ABAP",
		},
		Scenario: "Government (Primary) > Skills (Secondary) > Experience (Tertiary)",
		Candidates: []*models.CandidateRecord{
			{Name: "Jane Doe", Rank: 1, MatchingSkillsCount: 3},
		},
	}
}

func newTestServer(runner Runner) *Server {
	return NewServer(runner, history.New(history.DefaultLimit))
}

func TestHandleProcessForm(t *testing.T) {
	runner := &fakeRunner{report: sampleReport()}
	srv := newTestServer(runner)

	form := url.Values{"job_id": {"ABC123"}}
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if runner.jobID != "ABC123" {
		t.Errorf("runner received job ID %q", runner.jobID)
	}

	var resp struct {
		JobID          string     `json:"job_id"`
		JobRole        string     `json:"job_role"`
		Columns        []string   `json:"columns"`
		TableData      [][]string `json:"table_data"`
		CandidateCount int        `json:"candidate_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.JobID != "ABC123" || resp.JobRole != "SAP ABAP Developer" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Columns) != len(models.ReportColumns) {
		t.Errorf("columns = %d, want %d", len(resp.Columns), len(models.ReportColumns))
	}
	if resp.CandidateCount != 1 || len(resp.TableData) != 1 {
		t.Errorf("candidate_count = %d, rows = %d", resp.CandidateCount, len(resp.TableData))
	}
}

func TestHandleProcessJSON(t *testing.T) {
	runner := &fakeRunner{report: sampleReport()}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"job_id": "ABC123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestHandleProcessInvalidJobID(t *testing.T) {
	runner := &fakeRunner{report: sampleReport()}
	srv := newTestServer(runner)

	form := url.Values{"job_id": {"no-digits-here"}}
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if runner.jobID != "" {
		t.Error("runner should not run for an invalid job ID")
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Error("error body should carry a message")
	}
}

func TestHandleProcessPipelineError(t *testing.T) {
	srv := newTestServer(&fakeRunner{err: errors.New("no emails found")})

	form := url.Values{"job_id": {"ABC123"}}
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHandleRecentJobs(t *testing.T) {
	recent := history.New(history.DefaultLimit)
	srv := NewServer(&fakeRunner{report: sampleReport()}, recent)

	// A successful run records the job ID.
	form := url.Values{"job_id": {"ABC123"}}
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recent-jobs", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		RecentJobIDs []string `json:"recent_job_ids"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.RecentJobIDs) != 1 || resp.RecentJobIDs[0] != "ABC123" {
		t.Errorf("recent_job_ids = %v", resp.RecentJobIDs)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("body = %s", w.Body.String())
	}
}
