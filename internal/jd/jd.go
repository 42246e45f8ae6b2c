// Package jd extracts the job description for a run: which message is the
// posting, what role it is for, and which skills the subject line and body
// require. All functions are pure over already-decoded subject/body text.
package jd

import (
	"regexp"
	"strings"

	"resume-ranker/internal/models"
	"resume-ranker/internal/textutil"
)

// indicators mark a message body as a job posting. First match wins.
var indicators = []string{
	"job description", "job posting", "job id", "position overview",
	"required skills", "required experience", "skills required",
	"qualifications", "responsibilities", "job requirements",
}

var (
	fwdRe        = regexp.MustCompile(`(?i)^\s*Fwd:\s*`)
	locationRe   = regexp.MustCompile(`(?i)\b(Hybrid|Local|Remote|Onsite)\b[\s/]*`)
	withRe       = regexp.MustCompile(`(?i)\bwith\b`)
	expAnnotRe   = regexp.MustCompile(`\(\d+\+\)`)
	compoundRe   = regexp.MustCompile(`^[A-Za-z0-9]+/[A-Za-z0-9]+$`)
	skillsBodyRe = regexp.MustCompile(`(?is)Skills?:\s*(.*?)\s*(?:Responsibilities:|Qualifications:|Description:|Job ID:|$)`)
	bulletItemRe = regexp.MustCompile(`\n\s*[-•*]\s*(.+)`)
)

// sectionedSkillsRes are the fallback patterns for skills blocks that carry
// experience-year requirements; each is terminated by the next capitalized
// section header.
var sectionedSkillsRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Skills?:\s*(.*?)(?:\n\s*[A-Z][a-z]+:|$)`),
	regexp.MustCompile(`(?is)Skills?\s*&\s*Qualifications?:\s*(.*?)(?:\n\s*[A-Z][a-z]+:|$)`),
	regexp.MustCompile(`(?is)Technical\s*Skills?:\s*(.*?)(?:\n\s*[A-Z][a-z]+:|$)`),
	regexp.MustCompile(`(?is)Required\s*Skills?:\s*(.*?)(?:\n\s*[A-Z][a-z]+:|$)`),
}

// IsCandidateSubject reports whether a subject line belongs to a candidate
// submission rather than a posting.
func IsCandidateSubject(subject string) bool {
	lower := strings.ToLower(subject)
	return strings.Contains(lower, "resume") || strings.Contains(lower, "candidate")
}

// IsJobPostingBody reports whether a body contains any job-posting indicator,
// and returns the indicator that matched.
func IsJobPostingBody(body string) (bool, string) {
	lower := strings.ToLower(body)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true, ind
		}
	}
	return false, ""
}

// SelectMessage scans messages in their given order and returns the index of
// the job-description message, or -1. Candidate submissions are skipped by
// subject; the first body with a posting indicator wins, no scoring.
func SelectMessage(messages []*models.EmailMessage) int {
	for i, msg := range messages {
		if msg == nil || IsCandidateSubject(msg.Subject) {
			continue
		}
		if msg.Body == "" {
			continue
		}
		if ok, _ := IsJobPostingBody(msg.Body); ok {
			return i
		}
	}
	return -1
}

// RoleFromSubject derives the job role: the subject text before the first
// case-insensitive "with", minus location qualifiers and parenthetical
// experience annotations such as "(12+)".
func RoleFromSubject(subject string) string {
	subject = fwdRe.ReplaceAllString(subject, "")
	role := subject
	if loc := withRe.FindStringIndex(subject); loc != nil {
		role = subject[:loc[0]]
	}
	role = locationRe.ReplaceAllString(role, "")
	role = expAnnotRe.ReplaceAllString(role, "")
	return textutil.TidyLine(strings.TrimSpace(role))
}

// SkillsFromSubject splits the subject line into its skill list. The segment
// after "with" is comma-split, then each piece is slash-split unless it is a
// two-token slash compound (Z/OS, CI/CD) which is preserved verbatim. The
// role segment before "with" leads the returned list.
func SkillsFromSubject(subject string) []string {
	subject = fwdRe.ReplaceAllString(subject, "")
	subject = locationRe.ReplaceAllString(subject, "")
	subject = textutil.TidyLine(strings.TrimSpace(subject))

	loc := withRe.FindStringIndex(subject)
	if loc == nil {
		return splitSkillSegments(textutil.SplitAndTrim(subject, ","))
	}

	before := strings.TrimSpace(subject[:loc[0]])
	after := strings.TrimSpace(subject[loc[1]:])

	skills := []string{}
	if before != "" {
		skills = append(skills, before)
	}
	return append(skills, splitSkillSegments(textutil.SplitAndTrim(after, ","))...)
}

// splitSkillSegments slash-splits each comma segment, preserving two-token
// slash compounds verbatim.
func splitSkillSegments(parts []string) []string {
	skills := []string{}
	for _, part := range parts {
		if compoundRe.MatchString(part) {
			skills = append(skills, part)
			continue
		}
		skills = append(skills, textutil.SplitAndTrim(part, "/")...)
	}
	return skills
}

// SkillsFromBody locates the "Skills:" section of a posting body and returns
// its requirements comma-joined. When no delimited section exists it falls
// back to bulleted list items, then to the sectioned patterns that keep
// "Required X Years" text.
func SkillsFromBody(body string) string {
	if m := skillsBodyRe.FindStringSubmatch(body); m != nil {
		if skills := textutil.SplitSkillLines(strings.TrimSpace(m[1])); len(skills) > 0 {
			return strings.Join(skills, ", ")
		}
	}

	if items := bulletItems(body); len(items) > 0 {
		if skills := textutil.SplitSkillLines(strings.Join(items, "\n")); len(skills) > 0 {
			return strings.Join(skills, ", ")
		}
	}

	for _, re := range sectionedSkillsRes {
		if m := re.FindStringSubmatch(body); m != nil {
			block := textutil.StripBullets(m[1])
			if cleaned := textutil.CollapseWhitespace(block); cleaned != "" {
				return cleaned
			}
		}
	}
	return ""
}

func bulletItems(body string) []string {
	var items []string
	for _, m := range bulletItemRe.FindAllStringSubmatch(body, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			items = append(items, t)
		}
	}
	return items
}

// ExtractDetails builds the JobDescription from the selected message.
func ExtractDetails(msg *models.EmailMessage) *models.JobDescription {
	if msg == nil {
		return nil
	}
	details := &models.JobDescription{
		JobRole:       RoleFromSubject(msg.Subject),
		SubjectSkills: SkillsFromSubject(msg.Subject),
		JDSkills:      SkillsFromBody(msg.Body),
		FullBody:      msg.Body,
	}
	if details.JobRole == "" {
		details.JobRole = models.NotAvailable
	}
	if details.JDSkills == "" {
		details.JDSkills = models.NotAvailable
	}
	return details
}
