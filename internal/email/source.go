// Package email provides the message source the pipeline consumes. The core
// only sees the Source interface; the Gmail implementation lives alongside it.
package email

import (
	"context"
	"time"

	"resume-ranker/internal/models"
)

// RecencyWindow is how far back the job-ID query reaches.
const RecencyWindow = 30 * 24 * time.Hour

// PageDelay is the fixed pause between listing pages, respecting the
// provider's rate limits.
const PageDelay = time.Second

// Source lists and fetches messages for a query. Implementations block on
// network I/O; all methods honor ctx cancellation at page boundaries.
type Source interface {
	// ListMessageIDs returns the IDs of every message matching the query,
	// following pagination until the provider reports no further pages.
	ListMessageIDs(ctx context.Context, query string) ([]string, error)

	// GetMessage returns one decoded message: subject, body text, and
	// attachment references.
	GetMessage(ctx context.Context, id string) (*models.EmailMessage, error)

	// GetAttachment returns the raw bytes of one attachment.
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}

// JobQuery builds the provider query for a job identifier: the ID anywhere in
// the message, restricted to the recency window.
func JobQuery(jobID string, now time.Time) string {
	since := now.Add(-RecencyWindow).Format("2006/01/02")
	return "after:" + since + " " + jobID
}
