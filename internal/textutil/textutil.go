// Package textutil provides the shared string-cleaning primitives used by the
// identification, job-description, and matching heuristics. Every function is
// pure; the heuristic vocabulary lives in package-level tables so it can be
// inspected and tested directly.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	bulletRe      = regexp.MustCompile(`(\n\s*[-•*]\s*\d+\.?\s*|\n\s*[-•*]\s*)`)
	numberingRe   = regexp.MustCompile(`(?m)^\d+\.\s*`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
	edgePunctRe   = regexp.MustCompile(`^[,\s]+|[,\s]+$`)
	unsafeCharsRe = regexp.MustCompile(`[^\w\s.-]`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// skillLeadRe marks the start of a new requirement line inside a skills block.
var skillLeadRe = regexp.MustCompile(`(?i)^(Ability|Understanding|Strong|Experience|Knowledge|Excellent)`)

// CollapseWhitespace lower-cases nothing; it only folds all runs of whitespace
// into single spaces and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeLower is the canonical form used by the content heuristics:
// lower-cased with collapsed whitespace.
func NormalizeLower(s string) string {
	return CollapseWhitespace(strings.ToLower(s))
}

// StripBullets removes bullet and numbering noise from a multi-line block
// while preserving the text of each item.
func StripBullets(s string) string {
	s = bulletRe.ReplaceAllString(s, "\n")
	return numberingRe.ReplaceAllString(s, "")
}

// TidyLine removes doubled spaces and stray leading/trailing commas left
// behind by keyword removal.
func TidyLine(s string) string {
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return edgePunctRe.ReplaceAllString(s, "")
}

// SplitSkillLines splits a skills block into individual requirement strings.
// Bullets are stripped first; a new requirement starts at every line led by a
// requirement keyword ("Ability to...", "Strong...", ...), and continuation
// lines are folded into the current one.
func SplitSkillLines(block string) []string {
	if block == "" {
		return nil
	}
	block = StripBullets(block)

	var skills []string
	var current string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if skillLeadRe.MatchString(line) {
			if current != "" {
				skills = append(skills, strings.TrimSpace(current))
			}
			current = line
		} else if current == "" {
			current = line
		} else {
			current += " " + line
		}
	}
	if current != "" {
		skills = append(skills, strings.TrimSpace(current))
	}
	return skills
}

// SplitAndTrim splits on sep and drops empty segments.
func SplitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SafeFilename replaces characters that are unsafe in a filesystem name.
func SafeFilename(name string) string {
	name = unsafeCharsRe.ReplaceAllString(name, "_")
	return spacesRe.ReplaceAllString(name, "_")
}
