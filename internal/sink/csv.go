// Package sink persists a run's ranked table: CSV on disk, Postgres rows, and
// an Excel workbook. Each writer is independent; a failure in one never
// blocks the others.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"resume-ranker/internal/models"
)

// FormatExperience renders experience years in the report form.
func FormatExperience(years float64) string {
	return fmt.Sprintf("%.2f years", years)
}

// RecordRow flattens one candidate plus the run's job description into the
// fixed report columns (models.ReportColumns order).
func RecordRow(r *models.CandidateRecord, jd *models.JobDescription) []string {
	subjectSkills := models.NotAvailable
	jdSkills := models.NotAvailable
	jobRole := models.NotAvailable
	if jd != nil {
		if len(jd.SubjectSkills) > 0 {
			subjectSkills = strings.Join(jd.SubjectSkills, ", ")
		}
		if jd.JDSkills != "" {
			jdSkills = jd.JDSkills
		}
		if jd.JobRole != "" {
			jobRole = jd.JobRole
		}
	}
	return []string{
		strconv.Itoa(r.Rank),
		r.Name,
		r.CurrentLocation,
		r.YearOfBirth,
		r.VisaStatus,
		FormatExperience(r.ExperienceYears),
		strconv.Itoa(r.CertificationCount),
		r.GovernmentWork,
		jobRole,
		subjectSkills,
		jdSkills,
		strings.Join(r.MatchingSkills, ", "),
		strconv.Itoa(r.MatchingSkillsCount),
		r.ResumeFilename,
		r.EmailSubject,
	}
}

// WriteCSV writes the ranked table to path, creating parent directories.
func WriteCSV(path string, records []*models.CandidateRecord, jd *models.JobDescription) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.ReportColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(RecordRow(r, jd)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
