package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-ranker/internal/llm"
	"resume-ranker/internal/match"
	"resume-ranker/internal/models"
	"resume-ranker/internal/rank"
)

func TestValidateJobID(t *testing.T) {
	tests := []struct {
		name    string
		jobID   string
		wantErr bool
	}{
		{"Letters and digits", "ABC123", false},
		{"With hyphen", "NYC-42x", false},
		{"Empty", "", true},
		{"Whitespace only", "   ", true},
		{"Letters only", "ABCDEF", true},
		{"Digits only", "123456", true},
		{"Illegal characters", "ABC 123", true},
		{"Injection attempt", "ABC123; rm -rf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobID(tt.jobID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateJobID(%q) error = %v, wantErr %v", tt.jobID, err, tt.wantErr)
			}
		})
	}
}

type fakeSource struct {
	messages    []*models.EmailMessage
	attachments map[string][]byte
	listErr     error
	listCalls   int
}

func (f *fakeSource) ListMessageIDs(_ context.Context, _ string) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var ids []string
	for _, m := range f.messages {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (f *fakeSource) GetMessage(_ context.Context, id string) (*models.EmailMessage, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("message not found")
}

func (f *fakeSource) GetAttachment(_ context.Context, messageID, attachmentID string) ([]byte, error) {
	data, ok := f.attachments[messageID+"/"+attachmentID]
	if !ok {
		return nil, errors.New("attachment not found")
	}
	return data, nil
}

// fakeTextExtractor treats attachment bytes as already-extracted text.
type fakeTextExtractor struct{}

func (fakeTextExtractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	return string(data), nil
}

// fakeGenerator keys canned JSON responses by a substring of the resume text
// embedded in the prompt.
type fakeGenerator struct {
	responses map[string]string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	for key, resp := range f.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return "", errors.New("no canned response")
}

const resumeBody = "Professional Summary\nWork Experience\nEducation\nSkills\nDeveloped ABAP reports"

func janeResponse(name string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"current_location": "Austin, TX",
		"total_experience": 7.5,
		"certification_count": 1,
		"government_work": {"worked_with_govt": false, "govt_entities": []},
		"skills": ["ABAP", "Fiori"]
	}`, name)
}

func newTestPipeline(t *testing.T, source *fakeSource) *Pipeline {
	t.Helper()
	gen := &fakeGenerator{responses: map[string]string{
		"Developed ABAP reports": janeResponse("Jane Doe"),
	}}
	return &Pipeline{
		Source:     source,
		Extractor:  fakeTextExtractor{},
		Attributes: llm.NewExtractor(gen),
		Match:      match.DefaultConfig(),
		Rank:       rank.DefaultConfig(),
		OutputDir:  t.TempDir(),
	}
}

func TestRunInvalidJobIDSkipsNetwork(t *testing.T) {
	source := &fakeSource{}
	p := newTestPipeline(t, source)

	if _, err := p.Run(context.Background(), "no-digits"); err == nil {
		t.Fatal("expected validation error")
	}
	if source.listCalls != 0 {
		t.Errorf("listing was called %d times for an invalid job ID", source.listCalls)
	}
}

func TestRunListErrorIsFatal(t *testing.T) {
	source := &fakeSource{listErr: errors.New("gmail down")}
	p := newTestPipeline(t, source)

	if _, err := p.Run(context.Background(), "ABC123"); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestRunNoMessagesIsFatal(t *testing.T) {
	source := &fakeSource{}
	p := newTestPipeline(t, source)

	if _, err := p.Run(context.Background(), "ABC123"); err == nil {
		t.Fatal("expected error when no emails match")
	}
}

func TestRunEndToEnd(t *testing.T) {
	source := &fakeSource{
		messages: []*models.EmailMessage{
			{
				ID:      "msg-jd",
				Subject: "SAP ABAP Developer with ABAP, Fiori",
				Body:    "Job Description\nSkills:\nStrong ABAP experience\nQualifications: degree",
			},
			{
				ID:      "msg-jane",
				Subject: "Candidate Jane for ABC123",
				Body:    "Please find attached.\nYear of Birth: 1990\nVisa Status: H1B",
				Attachments: []models.Attachment{
					{Filename: "Jane_Resume.pdf", ID: "att-1"},
				},
			},
			{
				ID:      "msg-noise",
				Subject: "Candidate with nothing attached",
				Body:    "",
			},
		},
		attachments: map[string][]byte{
			"msg-jane/att-1": []byte(resumeBody),
		},
	}
	p := newTestPipeline(t, source)

	report, err := p.Run(context.Background(), "ABC123")
	if err != nil {
		t.Fatal(err)
	}

	if report.JobID != "ABC123" {
		t.Errorf("JobID = %q", report.JobID)
	}
	if report.RunID == "" {
		t.Error("RunID should be set")
	}
	if report.JobDescription.JobRole != "SAP ABAP Developer" {
		t.Errorf("JobRole = %q", report.JobDescription.JobRole)
	}
	if report.Scenario != rank.ScenarioPriority {
		t.Errorf("Scenario = %q", report.Scenario)
	}

	if len(report.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (noise message dropped)", len(report.Candidates))
	}
	c := report.Candidates[0]
	if c.Name != "Jane Doe" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.Rank != 1 {
		t.Errorf("Rank = %d", c.Rank)
	}
	if c.YearOfBirth != "1990" {
		t.Errorf("YearOfBirth = %q", c.YearOfBirth)
	}
	if c.VisaStatus != "H1B" {
		t.Errorf("VisaStatus = %q", c.VisaStatus)
	}
	if c.ResumeFilename != "Jane_Resume.pdf" {
		t.Errorf("ResumeFilename = %q", c.ResumeFilename)
	}
	if c.MatchingSkillsCount == 0 {
		t.Error("expected matching skills against the JD")
	}

	jobDir := filepath.Join(p.OutputDir, "Job_ABC123")
	if _, err := os.Stat(filepath.Join(jobDir, CSVFilename)); err != nil {
		t.Errorf("CSV report not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(jobDir, "Jane_Resume.pdf")); err != nil {
		t.Errorf("resume not archived: %v", err)
	}
}

func TestRunDeduplicatesCandidates(t *testing.T) {
	dup := []models.Attachment{{Filename: "Jane_Resume.pdf", ID: "att-1"}}
	source := &fakeSource{
		messages: []*models.EmailMessage{
			{ID: "msg-1", Subject: "Candidate Jane", Body: "attached", Attachments: dup},
			{ID: "msg-2", Subject: "Candidate Jane again", Body: "attached", Attachments: dup},
		},
		attachments: map[string][]byte{
			"msg-1/att-1": []byte(resumeBody),
			"msg-2/att-1": []byte(resumeBody),
		},
	}
	p := newTestPipeline(t, source)

	report, err := p.Run(context.Background(), "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 after deduplication", len(report.Candidates))
	}
	if report.Candidates[0].EmailSubject != "Candidate Jane" {
		t.Errorf("kept %q, want the first occurrence", report.Candidates[0].EmailSubject)
	}
}

func TestExtractYearOfBirth(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{"Year of Birth: 1985", "1985"},
		{"DOB - 1992", "1992"},
		{"YOB (1978)", "1978"},
		{"born sometime", models.NotAvailable},
		{"call 1985550123 now", models.NotAvailable},
	}
	for _, tt := range tests {
		if got := extractYearOfBirth(tt.body); got != tt.expected {
			t.Errorf("extractYearOfBirth(%q) = %q, want %q", tt.body, got, tt.expected)
		}
	}
}

func TestExtractVisaStatus(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{"Visa Status: H1B", "H1B"},
		{"Visa type - GC", "GC"},
		{"Work Authorization: USC", "USC"},
		{"Visa Status: Permanent Resident", "Permanent Resident"},
		{"visa status: h1b", "h1b"},
		{"no details here", models.NotAvailable},
	}
	for _, tt := range tests {
		if got := extractVisaStatus(tt.body); got != tt.expected {
			t.Errorf("extractVisaStatus(%q) = %q, want %q", tt.body, got, tt.expected)
		}
	}
}

func TestIsEmptyRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   *models.CandidateRecord
		expected bool
	}{
		{
			name: "All sentinel",
			record: &models.CandidateRecord{
				Name:            models.NotAvailable,
				CurrentLocation: models.NotAvailable,
			},
			expected: true,
		},
		{
			name: "Body fields alone do not rescue the row",
			record: &models.CandidateRecord{
				Name:            models.NotAvailable,
				CurrentLocation: models.NotAvailable,
				YearOfBirth:     "1990",
				VisaStatus:      "H1B",
				ResumeFilename:  "resume.pdf",
			},
			expected: true,
		},
		{
			name: "Name extracted",
			record: &models.CandidateRecord{
				Name:            "Jane Doe",
				CurrentLocation: models.NotAvailable,
			},
			expected: false,
		},
		{
			name: "Experience extracted",
			record: &models.CandidateRecord{
				Name:            models.NotAvailable,
				CurrentLocation: models.NotAvailable,
				ExperienceYears: 3,
			},
			expected: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmptyRecord(tt.record); got != tt.expected {
				t.Errorf("isEmptyRecord() = %v, want %v", got, tt.expected)
			}
		})
	}
}
