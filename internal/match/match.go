// Package match counts how well a candidate's extracted skills cover the job
// description's required skills using exact, containment, and fuzzy
// comparison. Counts per skill are retained because the report shows
// "skill (count)"; the total is the ranker's skill signal.
package match

import (
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"resume-ranker/internal/textutil"
)

// DefaultFuzzyThreshold is the similarity ratio (out of 100) above which two
// skill strings are considered a match. Empirical constant carried from the
// production tuning; override via Config.
const DefaultFuzzyThreshold = 80

// protectedCompounds are SAP-adjacent terms that must survive slash-splitting
// of JD skill segments.
var protectedCompounds = []string{
	"sap fiori", "ui5", "odata", "cds views",
	"gateway service", "web dynpro", "hana",
}

// Config carries the tunable matching constants.
type Config struct {
	FuzzyThreshold     int
	ProtectedCompounds []string
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold:     DefaultFuzzyThreshold,
		ProtectedCompounds: protectedCompounds,
	}
}

// SplitJDSkills normalizes a comma-joined JD skill string into individual
// lower-cased skills. A comma is a split point only when no slash-bearing
// segment follows it, so slash compounds keep their surrounding context.
// Protected compound terms keep their slashes; every other slash-joined
// segment is split into its components.
func (c Config) SplitJDSkills(jdSkills string) []string {
	var out []string
	for _, segment := range splitCommasAfterSlashes(jdSkills) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		lower := strings.ToLower(segment)
		if c.isProtected(lower) {
			out = append(out, lower)
			continue
		}
		out = append(out, textutil.SplitAndTrim(lower, "/")...)
	}
	return out
}

// splitCommasAfterSlashes splits at a comma only when no "/" occurs anywhere
// after it, which is exactly when every comma up to the last slash is
// protected.
func splitCommasAfterSlashes(s string) []string {
	lastSlash := strings.LastIndex(s, "/")
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' && i > lastSlash {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func (c Config) isProtected(lower string) bool {
	for _, term := range c.ProtectedCompounds {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// CountMatches compares each candidate skill against every JD skill. A pair
// matches on exact equality, containment in either direction, or a fuzzy
// ratio above the threshold; each matching JD skill adds one to the candidate
// skill's count. Zero-count skills are dropped. The second return value is
// the sum of all retained counts.
func (c Config) CountMatches(candidateSkills, jdSkills []string) (map[string]int, int) {
	if len(candidateSkills) == 0 || len(jdSkills) == 0 {
		return map[string]int{}, 0
	}

	normalizedJD := make([]string, 0, len(jdSkills))
	for _, s := range jdSkills {
		if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
			normalizedJD = append(normalizedJD, t)
		}
	}

	counts := map[string]int{}
	total := 0
	for _, raw := range candidateSkills {
		skill := strings.ToLower(strings.TrimSpace(raw))
		if skill == "" {
			continue
		}
		count := 0
		for _, jdSkill := range normalizedJD {
			switch {
			case skill == jdSkill:
				count++
			case strings.Contains(jdSkill, skill) || strings.Contains(skill, jdSkill):
				count++
			case fuzzy.Ratio(skill, jdSkill) > c.FuzzyThreshold:
				count++
			}
		}
		if count > 0 {
			counts[skill] += count
			total += count
		}
	}
	return counts, total
}

// CountAgainstJD matches candidate skills against both the subject skill list
// and the comma-joined body skills, which is what the pipeline feeds the
// ranker. Either side may be empty or the "N/A" sentinel.
func (c Config) CountAgainstJD(candidateSkills []string, subjectSkills []string, jdSkills string) (map[string]int, int) {
	var pool []string
	for _, s := range subjectSkills {
		if s != "" && s != "N/A" {
			pool = append(pool, s)
		}
	}
	if jdSkills != "" && jdSkills != "N/A" {
		pool = append(pool, c.SplitJDSkills(jdSkills)...)
	}
	return c.CountMatches(candidateSkills, pool)
}

// FormatMatches renders the per-skill counts as "skill (count)" entries in
// the order the candidate listed the skills.
func FormatMatches(candidateSkills []string, counts map[string]int) []string {
	formatted := make([]string, 0, len(counts))
	seen := map[string]bool{}
	for _, raw := range candidateSkills {
		skill := strings.ToLower(strings.TrimSpace(raw))
		if seen[skill] {
			continue
		}
		seen[skill] = true
		if n, ok := counts[skill]; ok {
			formatted = append(formatted, fmt.Sprintf("%s (%d)", skill, n))
		}
	}
	return formatted
}
