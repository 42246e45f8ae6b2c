// Package rank turns enriched candidate records into a deterministically
// ordered list. Ranking is a single numeric sort key with strict tiers:
// government work dominates skill overlap, which dominates experience.
package rank

import (
	"crypto/md5"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"resume-ranker/internal/models"
)

// ScenarioPriority is the label reported when the tiered scoring ran.
const ScenarioPriority = "Government (Primary) > Skills (Secondary) > Experience (Tertiary)"

// ScenarioFallback is reported when scoring degraded to input-order ranks.
const ScenarioFallback = "Simple Ranking (Fallback)"

// Config carries the tunable scoring constants.
type Config struct {
	// GovernmentWeight is multiplied by the number of listed government
	// entities (minimum one). Empirical constant: large enough that any
	// government record outranks any non-government record, since the skill
	// and experience components together stay below 101.
	GovernmentWeight float64
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{GovernmentWeight: 1000}
}

var experienceRe = regexp.MustCompile(`^(\d+\.?\d*)\s*years?`)

// ParseExperience reads "12.5 years" style strings; anything unparseable is
// zero experience rather than an error.
func ParseExperience(s string) float64 {
	m := experienceRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// GovernmentScore maps the formatted government-work field to its score tier.
// "No" is zero; "Yes" with listed entities scales with the entity count so
// the count acts as a tiebreaker strictly inside the government tier.
func (c Config) GovernmentScore(governmentWork string) float64 {
	if governmentWork == "" || governmentWork == "No" {
		return 0
	}
	if _, entities, found := strings.Cut(governmentWork, "Yes:"); found {
		n := len(strings.Split(entities, ","))
		if n < 1 {
			n = 1
		}
		return float64(n) * c.GovernmentWeight
	}
	if strings.HasPrefix(governmentWork, "Yes") {
		return c.GovernmentWeight
	}
	return 0
}

// Apply computes composite scores and dense minimum ranks in place, sorts the
// records (rank ascending, matching-skill count descending), and returns the
// scenario label. Invalid numeric inputs degrade the whole batch to
// input-order ranking instead of failing the pipeline.
func (c Config) Apply(records []*models.CandidateRecord) string {
	if len(records) == 0 {
		return ScenarioPriority
	}

	if !validNumbers(records) {
		log.Printf("scoring degraded: malformed numeric fields, assigning input-order ranks")
		for i, r := range records {
			r.CompositeScore = 0
			r.Rank = i + 1
		}
		return ScenarioFallback
	}

	maxExp := 0.0
	maxSkills := 0
	for _, r := range records {
		if r.ExperienceYears > maxExp {
			maxExp = r.ExperienceYears
		}
		if r.MatchingSkillsCount > maxSkills {
			maxSkills = r.MatchingSkillsCount
		}
	}
	// Zero maxima are treated as one so empty batches never divide by zero.
	if maxExp == 0 {
		maxExp = 1
	}
	if maxSkills == 0 {
		maxSkills = 1
	}

	for _, r := range records {
		r.CompositeScore = c.GovernmentScore(r.GovernmentWork) +
			float64(r.MatchingSkillsCount)/float64(maxSkills)*100 +
			r.ExperienceYears/maxExp
	}

	AssignRanks(records)
	SortByRank(records)
	return ScenarioPriority
}

// AssignRanks gives each record its dense minimum rank over CompositeScore
// descending: tied scores share a rank, and the rank after a tied group is
// one plus the number of strictly higher-scoring records.
func AssignRanks(records []*models.CandidateRecord) {
	for _, r := range records {
		higher := 0
		for _, other := range records {
			if other.CompositeScore > r.CompositeScore {
				higher++
			}
		}
		r.Rank = higher + 1
	}
}

// SortByRank orders records by rank ascending with matching-skill count
// descending as a visual tie-break; the tie-break never changes Rank values.
func SortByRank(records []*models.CandidateRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Rank != records[j].Rank {
			return records[i].Rank < records[j].Rank
		}
		return records[i].MatchingSkillsCount > records[j].MatchingSkillsCount
	})
}

// IdentityHash collapses records describing the same physical candidate:
// identical name, location, experience, and birth year hash identically even
// when the resume arrived under different filenames.
func IdentityHash(r *models.CandidateRecord) string {
	key := fmt.Sprintf("%s%s%.2f years%s", r.Name, r.CurrentLocation, r.ExperienceYears, r.YearOfBirth)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

// Deduplicate keeps the first occurrence per identity hash (input order is
// message arrival order) and recomputes dense ranks over the survivors.
// It is idempotent.
func Deduplicate(records []*models.CandidateRecord) []*models.CandidateRecord {
	seen := map[string]bool{}
	out := records[:0:0]
	for _, r := range records {
		h := IdentityHash(r)
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, r)
	}
	if len(out) != len(records) {
		AssignRanks(out)
		SortByRank(out)
	}
	return out
}

func validNumbers(records []*models.CandidateRecord) bool {
	for _, r := range records {
		if math.IsNaN(r.ExperienceYears) || math.IsInf(r.ExperienceYears, 0) || r.ExperienceYears < 0 {
			return false
		}
		if r.MatchingSkillsCount < 0 {
			return false
		}
	}
	return true
}
