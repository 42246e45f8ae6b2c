package models

// Attachment is one email attachment reference as returned by the email source.
type Attachment struct {
	Filename string `json:"filename"`
	ID       string `json:"id"`
}

// EmailMessage is the decoded form of one message from the email source.
type EmailMessage struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
}

// JobDescription holds everything extracted from the job-description email.
// There is at most one per pipeline run; it is read-only after extraction.
type JobDescription struct {
	JobRole       string   `json:"job_role"`
	SubjectSkills []string `json:"subject_skills"`
	JDSkills      string   `json:"jd_skills"` // comma-joined requirements from the body
	FullBody      string   `json:"full_body"`
}

// CandidateRecord is one candidate derived from one non-JD email message.
// It is built once by the orchestrator, then enriched in place by the skill
// matcher (MatchingSkills, MatchingSkillsCount) and the ranker (CompositeScore,
// Rank). GovernmentWork is "No" or "Yes: entity, entity".
type CandidateRecord struct {
	Name                string   `json:"name"`
	CurrentLocation     string   `json:"current_location"`
	ExperienceYears     float64  `json:"experience_years"`
	CertificationCount  int      `json:"certification_count"`
	GovernmentWork      string   `json:"government_work"`
	Skills              []string `json:"skills"`
	YearOfBirth         string   `json:"year_of_birth"`
	VisaStatus          string   `json:"visa_status"`
	ResumeFilename      string   `json:"resume_file"`
	EmailSubject        string   `json:"candidate_email_subject"`
	MatchingSkills      []string `json:"matching_skills"`
	MatchingSkillsCount int      `json:"matching_skills_count"`
	CompositeScore      float64  `json:"-"`
	Rank                int      `json:"rank"`
}

// Report is the final result of one pipeline run for a job ID.
type Report struct {
	RunID          string             `json:"run_id"`
	JobID          string             `json:"job_id"`
	JobDescription *JobDescription    `json:"job_description"`
	Scenario       string             `json:"scenario"`
	Candidates     []*CandidateRecord `json:"candidates"`
}

// ReportColumns is the fixed column set of the tabular output, in order.
var ReportColumns = []string{
	"Rank", "Name", "Current Location", "Year of Birth", "Visa Status",
	"Experience", "Certification Count", "Government Work", "Job Role",
	"Subject Skills", "JD Skills", "Matching Skills", "Matching Skills Count",
	"Resume File", "Candidate Email Subject",
}

// NotAvailable is the sentinel used wherever extraction produced nothing.
const NotAvailable = "N/A"
