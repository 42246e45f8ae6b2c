// Package identify picks the most plausible resume attachment out of an email
// message's attachment list. Filename heuristics run first; content validation
// settles everything the filename cannot.
package identify

import (
	"context"
	"log"
	"regexp"
	"strings"

	"resume-ranker/internal/models"
	"resume-ranker/internal/textutil"
)

// FetchFunc returns the raw bytes of one attachment.
type FetchFunc func(ctx context.Context, att models.Attachment) ([]byte, error)

// ExtractFunc converts attachment bytes into plain text.
type ExtractFunc func(ctx context.Context, data []byte, filename string) (string, error)

// FileClass is the filename-level verdict for an attachment.
type FileClass int

const (
	// ClassRejected means the file can never be a resume (bad extension or an
	// excluded keyword such as visa/ID/legal paperwork).
	ClassRejected FileClass = iota
	// ClassPriority means the filename carries a strong resume signal.
	ClassPriority
	// ClassOther means a valid document with no filename signal either way.
	ClassOther
)

// excludedKeyphrases can never appear in a resume filename. Immigration
// paperwork, ID scans, and compliance forms routinely travel in the same
// email as the resume.
var excludedKeyphrases = []string{
	"dl", "visa", "h1", "gc", "i-129", "approval", "sm", "skill matrix", "rtr", "innosoul",
	"reference", "patibandla", "check form", "sow", "ead", "70125071", "scanned",
	"driver license", "driving license", "passport", "i9", "w2", "paystub", "offer letter",
	"contract", "background check", "ssn", "social security", "id card", "certification form",
	"self-certification", "authorization form", "approval form", "clearance form",
	"verification form", "compliance form", "disclosure form", "attestation form",
	"acknowledgment form", "agreement form", "consent form", "declaration form",
	"enrollment form", "registration form", "application form", "submission form",
	"request form", "clearance certificate", "security clearance",
	"background form", "screening form",
}

var (
	camelNameRe      = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\.(pdf|docx|doc)$`)
	underscoreNameRe = regexp.MustCompile(`^[A-Z][a-z]+_[A-Z][a-z]+\.(pdf|docx|doc)$`)
)

// shortExcludedRes are the short codes from excludedKeyphrases compiled with
// word boundaries: "sm" must reject "SM_form.pdf" but not "JohnSmith.pdf".
var shortExcludedRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0)
	for _, term := range excludedKeyphrases {
		if len(term) <= 3 {
			res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(term)+`\b`))
		}
	}
	return res
}()

// matchesExclusion reports whether a lower-cased filename hits the exclusion
// vocabulary, and which term it hit. Underscores count as separators so
// "sm_form.pdf" hits "sm" while "johnsmith.pdf" does not.
func matchesExclusion(lower string) (bool, string) {
	lower = strings.ReplaceAll(lower, "_", " ")
	for _, term := range excludedKeyphrases {
		if len(term) <= 3 {
			continue
		}
		if strings.Contains(lower, term) {
			return true, term
		}
	}
	for _, re := range shortExcludedRes {
		if re.MatchString(lower) {
			return true, re.String()
		}
	}
	return false, ""
}

// nonResumePatterns disqualify content outright no matter how many resume
// sections it also happens to contain.
var nonResumePatterns = []*regexp.Regexp{
	regexp.MustCompile(`reference\s*check`),
	regexp.MustCompile(`visa\s*status`),
	regexp.MustCompile(`IMG_\d{8}_\d{4}`),
	regexp.MustCompile(`approval\s*notice`),
	regexp.MustCompile(`skill\s*matrix`),
	regexp.MustCompile(`return\s*to\s*recruiter`),
	regexp.MustCompile(`form\s*[0-9]{3}`),
	regexp.MustCompile(`government\s*issued`),
	regexp.MustCompile(`validity\s*date`),
	regexp.MustCompile(`solicitation\s*number`),
	regexp.MustCompile(`candidate\s*reference`),
}

// resumeSections are structural headers; each hit is worth two points because
// keyword-stuffed non-resumes rarely fake section structure.
var resumeSections = []*regexp.Regexp{
	regexp.MustCompile(`work\s*experience`),
	regexp.MustCompile(`professional\s*(history|experience|summary)`),
	regexp.MustCompile(`skills?`),
	regexp.MustCompile(`education`),
	regexp.MustCompile(`projects?`),
	regexp.MustCompile(`certifications?`),
	regexp.MustCompile(`technical\s*(skills|proficiencies)`),
	regexp.MustCompile(`employment\s*history`),
	regexp.MustCompile(`key\s*skills`),
	regexp.MustCompile(`executive\s*summary`),
	regexp.MustCompile(`work\s*history`),
	regexp.MustCompile(`technical\s*summary`),
	regexp.MustCompile(`professional\s*overview`),
}

// positiveKeywords are weak one-point signals.
var positiveKeywords = []*regexp.Regexp{
	regexp.MustCompile(`\d+\+?\s*years?\s*of\s*experience`),
	regexp.MustCompile(`developed`),
	regexp.MustCompile(`implemented`),
	regexp.MustCompile(`power\s*apps`),
	regexp.MustCompile(`power\s*automate`),
	regexp.MustCompile(`power\s*bi`),
	regexp.MustCompile(`azure`),
	regexp.MustCompile(`dataverse`),
	regexp.MustCompile(`microsoft\s*365`),
	regexp.MustCompile(`dynamics\s*365`),
	regexp.MustCompile(`sharepoint`),
	regexp.MustCompile(`certified`),
	regexp.MustCompile(`bachelor`),
	regexp.MustCompile(`master`),
	regexp.MustCompile(`engineer`),
	regexp.MustCompile(`developer`),
	regexp.MustCompile(`architect`),
	regexp.MustCompile(`solution`),
	regexp.MustCompile(`automation`),
	regexp.MustCompile(`integration`),
}

// tieBreakSections is the slightly different section list used only to score
// multiple content-validated candidates against each other.
var tieBreakSections = []*regexp.Regexp{
	regexp.MustCompile(`(?i)work\s*experience`),
	regexp.MustCompile(`(?i)professional\s*(history|experience|summary)`),
	regexp.MustCompile(`(?i)skills?`),
	regexp.MustCompile(`(?i)education`),
	regexp.MustCompile(`(?i)projects?`),
	regexp.MustCompile(`(?i)certifications?`),
	regexp.MustCompile(`(?i)technical\s*(skills|proficiencies)`),
	regexp.MustCompile(`(?i)employment\s*history`),
	regexp.MustCompile(`(?i)summary\s*of\s*qualifications`),
	regexp.MustCompile(`(?i)career\s*objective`),
}

func hasAllowedExtension(lower string) bool {
	return strings.HasSuffix(lower, ".pdf") ||
		strings.HasSuffix(lower, ".docx") ||
		strings.HasSuffix(lower, ".doc")
}

// ClassifyFilename returns the filename-level verdict plus the signal that
// produced it.
func ClassifyFilename(filename string) (FileClass, string) {
	lower := strings.ToLower(filename)
	if !hasAllowedExtension(lower) {
		return ClassRejected, "extension"
	}
	if hit, term := matchesExclusion(lower); hit {
		return ClassRejected, term
	}
	switch {
	case strings.Contains(lower, "resume"),
		strings.Contains(lower, "cv"),
		strings.Contains(lower, "curriculum vitae"),
		strings.Contains(lower, "bio data"):
		return ClassPriority, "resume keyword"
	case camelNameRe.MatchString(filename), underscoreNameRe.MatchString(filename):
		return ClassPriority, "name pattern"
	case strings.Contains(lower, "profile"), strings.Contains(lower, "portfolio"):
		return ClassPriority, "profile keyword"
	}
	return ClassOther, ""
}

// ContentVerdict is the result of content validation, carrying the signal
// that decided it so callers can log why a file was accepted or rejected.
type ContentVerdict struct {
	IsResume bool
	Signal   string
	Score    int
}

// IsResumeContent decides whether extracted text looks like a resume.
// Structural section headers are worth double a keyword hit; the acceptance
// threshold is three points.
func IsResumeContent(text string) ContentVerdict {
	if text == "" {
		return ContentVerdict{Signal: "empty"}
	}
	norm := textutil.NormalizeLower(text)
	for _, p := range nonResumePatterns {
		if p.MatchString(norm) {
			return ContentVerdict{Signal: p.String()}
		}
	}
	sections := 0
	for _, p := range resumeSections {
		if p.MatchString(norm) {
			sections++
		}
	}
	keywords := 0
	for _, p := range positiveKeywords {
		if p.MatchString(norm) {
			keywords++
		}
	}
	score := sections*2 + keywords
	return ContentVerdict{
		IsResume: score >= 3,
		Signal:   "score",
		Score:    score,
	}
}

// SectionScore counts how many tie-break section headers appear in text.
func SectionScore(text string) int {
	score := 0
	for _, p := range tieBreakSections {
		if p.MatchString(text) {
			score++
		}
	}
	return score
}

// Identifier resolves the best resume attachment for a message using the
// injected fetch and extract collaborators.
type Identifier struct {
	fetch   FetchFunc
	extract ExtractFunc
}

// New creates an Identifier.
func New(fetch FetchFunc, extract ExtractFunc) *Identifier {
	return &Identifier{fetch: fetch, extract: extract}
}

// Identify returns the filename of the best resume attachment, or
// models.NotAvailable when the message has no usable candidate.
func (id *Identifier) Identify(ctx context.Context, attachments []models.Attachment) string {
	var priority, other []models.Attachment
	for _, att := range attachments {
		switch class, _ := ClassifyFilename(att.Filename); class {
		case ClassPriority:
			priority = append(priority, att)
		case ClassOther:
			other = append(other, att)
		}
	}

	for _, att := range priority {
		if id.validate(ctx, att) {
			log.Printf("identified resume by filename: %s", att.Filename)
			return att.Filename
		}
	}

	var validated []models.Attachment
	for _, att := range other {
		if id.validate(ctx, att) {
			validated = append(validated, att)
		}
	}

	switch {
	case len(validated) == 1:
		log.Printf("identified resume by content: %s", validated[0].Filename)
		return validated[0].Filename
	case len(validated) > 1:
		best := id.bestBySections(ctx, validated)
		log.Printf("selected best resume from %d validated: %s", len(validated), best)
		return best
	}

	if len(other) > 0 {
		// Best-effort: a document without extractable text is still better
		// than nothing.
		log.Printf("no clear resume found, returning first candidate: %s", other[0].Filename)
		return other[0].Filename
	}

	log.Printf("no valid resume found in attachments")
	return models.NotAvailable
}

func (id *Identifier) validate(ctx context.Context, att models.Attachment) bool {
	text, ok := id.text(ctx, att)
	if !ok {
		return false
	}
	return IsResumeContent(text).IsResume
}

// bestBySections scores each validated candidate by counting resume section
// headers; the first highest-scoring file wins ties, and the first candidate
// is returned when no file scores at all.
func (id *Identifier) bestBySections(ctx context.Context, validated []models.Attachment) string {
	best := ""
	highest := 0
	for _, att := range validated {
		text, ok := id.text(ctx, att)
		if !ok {
			continue
		}
		if score := SectionScore(text); score > highest {
			highest = score
			best = att.Filename
		}
	}
	if best == "" {
		return validated[0].Filename
	}
	return best
}

func (id *Identifier) text(ctx context.Context, att models.Attachment) (string, bool) {
	data, err := id.fetch(ctx, att)
	if err != nil || len(data) == 0 {
		if err != nil {
			log.Printf("fetching attachment %s: %v", att.Filename, err)
		}
		return "", false
	}
	text, err := id.extract(ctx, data, att.Filename)
	if err != nil || text == "" {
		if err != nil {
			log.Printf("extracting text from %s: %v", att.Filename, err)
		}
		return "", false
	}
	return text, true
}
