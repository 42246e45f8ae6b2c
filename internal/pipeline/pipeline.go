// Package pipeline orchestrates one ranking run for a job ID: list the
// matching emails, pick the job-description message, turn every other message
// into a candidate record, then match, score, rank, deduplicate, and persist.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-ranker/internal/email"
	"resume-ranker/internal/extract"
	"resume-ranker/internal/identify"
	"resume-ranker/internal/jd"
	"resume-ranker/internal/llm"
	"resume-ranker/internal/match"
	"resume-ranker/internal/models"
	"resume-ranker/internal/rank"
	"resume-ranker/internal/sink"
	"resume-ranker/internal/textutil"
)

// CSVFilename is the per-job report file written under the job's output dir.
const CSVFilename = "resume_analysis.csv"

// ExcelFilename is the per-job workbook written alongside the CSV.
const ExcelFilename = "resume_analysis.xlsx"

var (
	jobIDCharsRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	hasLetterRe  = regexp.MustCompile(`[A-Za-z]`)
	hasDigitRe   = regexp.MustCompile(`[0-9]`)

	yearOfBirthRe = regexp.MustCompile(`(?i)(?:Year of Birth|Date of Birth|DOB|YOB)\s*[:\-]?\s*\(?\s*(19\d{2})\s*\)?`)
	visaStatusRe  = regexp.MustCompile(`(?i)(?:Visa\s*(?:type|status)?|Work\s*Authorization)\s*[:\-]?\s*(USC|H-?1B|GC|OPT|CPT|L-?1|L-?2|TN|EAD|Green\s*Card|Citizen|Permanent\s*Resident)`)
)

// ValidateJobID checks the job identifier before any network call: only
// letters, digits, and hyphens, with at least one letter and one digit.
func ValidateJobID(jobID string) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if !jobIDCharsRe.MatchString(jobID) {
		return fmt.Errorf("job ID may only contain letters, digits, and hyphens")
	}
	if !hasLetterRe.MatchString(jobID) || !hasDigitRe.MatchString(jobID) {
		return fmt.Errorf("job ID must contain at least one letter and one digit")
	}
	return nil
}

// Pipeline wires the collaborators for a run. The database sink is optional.
type Pipeline struct {
	Source     email.Source
	Extractor  extract.Extractor
	Attributes *llm.Extractor
	Match      match.Config
	Rank       rank.Config
	OutputDir  string
	DB         *sink.Postgres
}

// New builds a Pipeline with the default matching and ranking constants.
func New(source email.Source, extractor extract.Extractor, attributes *llm.Extractor, outputDir string, db *sink.Postgres) *Pipeline {
	return &Pipeline{
		Source:     source,
		Extractor:  extractor,
		Attributes: attributes,
		Match:      match.DefaultConfig(),
		Rank:       rank.DefaultConfig(),
		OutputDir:  outputDir,
		DB:         db,
	}
}

// Run executes the full pipeline for one job ID and returns the ranked report.
// Per-message and per-sink failures are logged and skipped; only an invalid
// job ID, a listing failure, or an empty mailbox aborts the run.
func (p *Pipeline) Run(ctx context.Context, jobID string) (*models.Report, error) {
	jobID = strings.TrimSpace(jobID)
	if err := ValidateJobID(jobID); err != nil {
		return nil, err
	}

	query := email.JobQuery(jobID, time.Now())
	log.Printf("searching emails: %s", query)

	ids, err := p.Source.ListMessageIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for job %s: %w", jobID, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no emails found for job ID %s in the last 30 days", jobID)
	}
	log.Printf("found %d messages for job %s", len(ids), jobID)

	messages := make([]*models.EmailMessage, 0, len(ids))
	for _, id := range ids {
		msg, err := p.Source.GetMessage(ctx, id)
		if err != nil {
			log.Printf("skipping message %s: %v", id, err)
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages could be fetched for job ID %s", jobID)
	}

	jdIndex := jd.SelectMessage(messages)
	var details *models.JobDescription
	if jdIndex >= 0 {
		details = jd.ExtractDetails(messages[jdIndex])
		log.Printf("job description found: %q", details.JobRole)
	} else {
		log.Printf("no job description message found, using defaults")
		details = &models.JobDescription{
			JobRole:  models.NotAvailable,
			JDSkills: models.NotAvailable,
		}
	}

	jobDir := filepath.Join(p.OutputDir, "Job_"+jobID)
	var records []*models.CandidateRecord
	for i, msg := range messages {
		if i == jdIndex {
			continue
		}
		record := p.buildRecord(ctx, msg, jobDir)
		if isEmptyRecord(record) {
			log.Printf("dropping empty record from message %s", msg.ID)
			continue
		}
		records = append(records, record)
	}

	for _, r := range records {
		counts, total := p.Match.CountAgainstJD(r.Skills, details.SubjectSkills, details.JDSkills)
		r.MatchingSkills = match.FormatMatches(r.Skills, counts)
		r.MatchingSkillsCount = total
	}

	scenario := p.Rank.Apply(records)
	records = rank.Deduplicate(records)

	report := &models.Report{
		RunID:          uuid.NewString(),
		JobID:          jobID,
		JobDescription: details,
		Scenario:       scenario,
		Candidates:     records,
	}
	p.persist(ctx, report, jobDir)
	return report, nil
}

// buildRecord converts one candidate email into a record. Every stage is
// best-effort: a failed fetch, extraction, or model call leaves sentinel
// values rather than dropping the message.
func (p *Pipeline) buildRecord(ctx context.Context, msg *models.EmailMessage, jobDir string) *models.CandidateRecord {
	record := &models.CandidateRecord{
		Name:            models.NotAvailable,
		CurrentLocation: models.NotAvailable,
		GovernmentWork:  "No",
		YearOfBirth:     extractYearOfBirth(msg.Body),
		VisaStatus:      extractVisaStatus(msg.Body),
		ResumeFilename:  models.NotAvailable,
		EmailSubject:    msg.Subject,
	}

	fetch := func(ctx context.Context, att models.Attachment) ([]byte, error) {
		return p.Source.GetAttachment(ctx, msg.ID, att.ID)
	}
	identifier := identify.New(fetch, p.Extractor.Extract)
	filename := identifier.Identify(ctx, msg.Attachments)
	if filename == models.NotAvailable {
		return record
	}
	record.ResumeFilename = filename

	var attachmentID string
	for _, att := range msg.Attachments {
		if att.Filename == filename {
			attachmentID = att.ID
			break
		}
	}

	data, err := p.Source.GetAttachment(ctx, msg.ID, attachmentID)
	if err != nil {
		log.Printf("fetching resume %s: %v", filename, err)
		return record
	}
	archiveResume(jobDir, filename, data)

	text, err := p.Extractor.Extract(ctx, data, filename)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Printf("extracting resume text from %s: %v", filename, err)
		return record
	}

	attrs, err := p.Attributes.Extract(ctx, text)
	if err != nil {
		log.Printf("extracting attributes from %s: %v", filename, err)
		return record
	}

	record.Name = attrs.Name
	record.CurrentLocation = attrs.CurrentLocation
	record.ExperienceYears = attrs.TotalExperience
	record.CertificationCount = attrs.CertificationCount
	record.GovernmentWork = llm.FormatGovernmentWork(attrs.GovernmentWork)
	record.Skills = attrs.Skills
	return record
}

// persist writes every configured sink; sink failures are logged, never fatal.
func (p *Pipeline) persist(ctx context.Context, report *models.Report, jobDir string) {
	csvPath := filepath.Join(jobDir, CSVFilename)
	if err := sink.WriteCSV(csvPath, report.Candidates, report.JobDescription); err != nil {
		log.Printf("writing CSV report: %v", err)
	} else {
		log.Printf("wrote CSV report: %s", csvPath)
	}

	excelPath := filepath.Join(jobDir, ExcelFilename)
	if err := sink.WriteExcel(excelPath, report.Candidates, report.JobDescription, report.JobID); err != nil {
		log.Printf("writing Excel report: %v", err)
	} else {
		log.Printf("wrote Excel report: %s", excelPath)
	}

	if p.DB != nil {
		if _, err := p.DB.StoreResults(ctx, report.RunID, report.JobID, report.Candidates, report.JobDescription); err != nil {
			log.Printf("storing results in database: %v", err)
		}
	}
}

// archiveResume saves the original resume bytes under the job's directory so
// a reviewer can open what the pipeline ranked.
func archiveResume(jobDir, filename string, data []byte) {
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		log.Printf("creating archive directory %s: %v", jobDir, err)
		return
	}
	path := filepath.Join(jobDir, textutil.SafeFilename(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("archiving resume %s: %v", filename, err)
	}
}

func extractYearOfBirth(body string) string {
	if m := yearOfBirthRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return models.NotAvailable
}

func extractVisaStatus(body string) string {
	if m := visaStatusRe.FindStringSubmatch(body); m != nil {
		return textutil.CollapseWhitespace(m[1])
	}
	return models.NotAvailable
}

// isEmptyRecord reports whether extraction produced nothing usable: name and
// location are both the sentinel and no experience was found. Body-derived
// fields like year of birth never rescue a row the extractor gave up on.
func isEmptyRecord(r *models.CandidateRecord) bool {
	return r.Name == models.NotAvailable &&
		r.CurrentLocation == models.NotAvailable &&
		r.ExperienceYears == 0
}
