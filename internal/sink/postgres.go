package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"resume-ranker/internal/models"
)

// BatchSize is how many rows go into one insert batch.
const BatchSize = 50

// Postgres stores run results in a relational table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens and verifies a connection pool.
func NewPostgres(dataSourceName string) (*Postgres, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	if err := p.db.Close(); err != nil {
		log.Printf("error closing database connection: %v", err)
	}
}

// Failure records one row that could not be written and why.
type Failure struct {
	Name   string
	Reason string
}

// WriteOutcome is the typed result of a store operation: how many rows landed
// and which did not. Failures never abort the whole write.
type WriteOutcome struct {
	Written  int
	Failures []Failure
}

const insertSQL = `INSERT INTO resume_analysis
	(run_id, job_id, rank, name, current_location, year_of_birth, visa_status,
	 experience, certification_count, government_work, job_role, subject_skills,
	 jd_skills, matching_skills, matching_skills_count, resume_file,
	 candidate_email_subject, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// StoreResults inserts the ranked table in batches; a failed batch is retried
// record by record so one bad row cannot sink its batch.
func (p *Postgres) StoreResults(ctx context.Context, runID, jobID string, records []*models.CandidateRecord, jd *models.JobDescription) (WriteOutcome, error) {
	outcome := WriteOutcome{}
	now := time.Now().UTC()

	for start := 0; start < len(records); start += BatchSize {
		end := start + BatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		if err := p.insertBatch(ctx, runID, jobID, batch, jd, now); err != nil {
			log.Printf("batch insert failed (%d-%d), retrying per record: %v", start, end, err)
			for _, r := range batch {
				if err := p.insertOne(ctx, runID, jobID, r, jd, now); err != nil {
					outcome.Failures = append(outcome.Failures, Failure{Name: r.Name, Reason: err.Error()})
					continue
				}
				outcome.Written++
			}
			continue
		}
		outcome.Written += len(batch)
	}

	if len(outcome.Failures) > 0 {
		log.Printf("stored %d records for job %s with %d failures", outcome.Written, jobID, len(outcome.Failures))
	} else {
		log.Printf("stored %d records for job %s", outcome.Written, jobID)
	}
	return outcome, nil
}

func (p *Postgres) insertBatch(ctx context.Context, runID, jobID string, batch []*models.CandidateRecord, jd *models.JobDescription, now time.Time) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, r := range batch {
		if _, err := tx.ExecContext(ctx, insertSQL, rowArgs(runID, jobID, r, jd, now)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (p *Postgres) insertOne(ctx context.Context, runID, jobID string, r *models.CandidateRecord, jd *models.JobDescription, now time.Time) error {
	_, err := p.db.ExecContext(ctx, insertSQL, rowArgs(runID, jobID, r, jd, now)...)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

func rowArgs(runID, jobID string, r *models.CandidateRecord, jd *models.JobDescription, now time.Time) []interface{} {
	row := RecordRow(r, jd)
	return []interface{}{
		runID,
		jobID,
		r.Rank,
		orNA(r.Name),
		orNA(r.CurrentLocation),
		orNA(r.YearOfBirth),
		orNA(r.VisaStatus),
		FormatExperience(r.ExperienceYears),
		r.CertificationCount,
		orNA(r.GovernmentWork),
		row[8],  // job role
		row[9],  // subject skills
		row[10], // jd skills
		strings.Join(r.MatchingSkills, ", "),
		r.MatchingSkillsCount,
		orNA(r.ResumeFilename),
		orNA(r.EmailSubject),
		now,
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NotAvailable
	}
	return s
}
