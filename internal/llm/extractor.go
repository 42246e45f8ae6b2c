// Package llm turns raw resume text into structured candidate attributes via
// a generative model. The model's output is never trusted: it is parsed into
// a fixed schema with explicit defaults and validated field by field, so a
// malformed response degrades to an extraction error instead of bad data.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Generator is the minimal text-generation capability the extractor needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MaxResumeLength bounds the resume text submitted to the model; longer text
// is truncated with a visible marker.
const MaxResumeLength = 10000

// TruncationMarker is appended to resume text cut at MaxResumeLength.
const TruncationMarker = "... [truncated]"

// MaxSkills caps the skill list carried on a candidate record.
const MaxSkills = 20

// GovernmentWork is the structured government-experience field. Entities are
// restricted to "Department of ..." / "State of ..." names; everything else
// government-adjacent is deliberately ignored (precision over recall).
type GovernmentWork struct {
	WorkedWithGovt bool     `json:"worked_with_govt"`
	GovtEntities   []string `json:"govt_entities"`
}

// CandidateAttributes is the fixed schema the extractor produces.
type CandidateAttributes struct {
	Name               string         `json:"name"`
	CurrentLocation    string         `json:"current_location"`
	TotalExperience    float64        `json:"total_experience"`
	CertificationCount int            `json:"certification_count"`
	GovernmentWork     GovernmentWork `json:"government_work"`
	Skills             []string       `json:"skills"`
}

// Extractor drives the generator and parses its output.
type Extractor struct {
	gen Generator
}

// NewExtractor creates an Extractor over any Generator backend.
func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract submits resume text to the model and returns validated attributes.
// Any malformed model output is an error; callers convert that into an
// all-sentinel record rather than aborting the batch.
func (e *Extractor) Extract(ctx context.Context, resumeText string) (*CandidateAttributes, error) {
	if len(resumeText) > MaxResumeLength {
		cut := MaxResumeLength
		// Back up so the cut never lands inside a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(resumeText[cut]) {
			cut--
		}
		resumeText = resumeText[:cut] + TruncationMarker
	}

	response, err := e.gen.Generate(ctx, buildPrompt(resumeText))
	if err != nil {
		return nil, fmt.Errorf("attribute extraction failed: %w", err)
	}

	attrs, err := ParseAttributes(response)
	if err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}
	return attrs, nil
}

func buildPrompt(resumeText string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the following resume text and extract the requested details.\n")
	sb.WriteString("Return ONLY a JSON object with the following structure:\n\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "name": "Full Name (combine first, middle if available, and last names)",` + "\n")
	sb.WriteString(`  "current_location": "Current location (city, state or country)",` + "\n")
	sb.WriteString(`  "total_experience": float (total years of experience as a decimal),` + "\n")
	sb.WriteString(`  "certification_count": integer (count of certifications),` + "\n")
	sb.WriteString(`  "government_work": {` + "\n")
	sb.WriteString(`    "worked_with_govt": boolean,` + "\n")
	sb.WriteString(`    "govt_entities": ["list of government entities if any"]` + "\n")
	sb.WriteString("  },\n")
	sb.WriteString(`  "skills": ["list of technical skills mentioned"]` + "\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Special Instructions for Government Work Detection:\n")
	sb.WriteString("1. ONLY identify government entities that start with 'Department of' or 'State of'\n")
	sb.WriteString("2. Ignore all other government-related terms like Federal, City of, County of, etc.\n")
	sb.WriteString("3. Mark worked_with_govt as true only if 'Department of' or 'State of' entities are found\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Calculate total_experience by summing all work experience durations\n")
	sb.WriteString("2. Count all certifications mentioned in education/certifications sections\n")
	sb.WriteString("3. Include only technical/professional skills, not soft skills\n\n")
	sb.WriteString("Resume Text:\n")
	sb.WriteString(resumeText)
	return sb.String()
}

// looseAttributes tolerates the type drift LLMs produce: numbers as strings,
// skills as a comma-joined string, missing objects.
type looseAttributes struct {
	Name            interface{} `json:"name"`
	CurrentLocation interface{} `json:"current_location"`
	TotalExperience interface{} `json:"total_experience"`
	CertCount       interface{} `json:"certification_count"`
	GovernmentWork  struct {
		WorkedWithGovt bool        `json:"worked_with_govt"`
		GovtEntities   interface{} `json:"govt_entities"`
	} `json:"government_work"`
	Skills interface{} `json:"skills"`
}

// ParseAttributes parses a model response into the fixed schema. The JSON
// window is located inside any surrounding prose or code fencing; every field
// gets an explicit default and a type check before use.
func ParseAttributes(response string) (*CandidateAttributes, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var loose looseAttributes
	if err := json.Unmarshal([]byte(response[start:end+1]), &loose); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	attrs := &CandidateAttributes{
		Name:            coerceString(loose.Name, "N/A"),
		CurrentLocation: coerceString(loose.CurrentLocation, "N/A"),
		TotalExperience: coerceFloat(loose.TotalExperience),
	}
	attrs.CertificationCount = int(coerceFloat(loose.CertCount))
	if attrs.TotalExperience < 0 {
		attrs.TotalExperience = 0
	}
	if attrs.CertificationCount < 0 {
		attrs.CertificationCount = 0
	}

	entities := filterGovtEntities(coerceStringList(loose.GovernmentWork.GovtEntities))
	attrs.GovernmentWork = GovernmentWork{
		// The model's boolean is advisory only; the entity filter is the
		// source of truth for the precision-over-recall policy.
		WorkedWithGovt: len(entities) > 0,
		GovtEntities:   entities,
	}

	skills := coerceStringList(loose.Skills)
	if len(skills) > MaxSkills {
		skills = skills[:MaxSkills]
	}
	attrs.Skills = skills
	return attrs, nil
}

// filterGovtEntities keeps only entities beginning with the two accepted
// prefixes.
func filterGovtEntities(entities []string) []string {
	var out []string
	for _, e := range entities {
		t := strings.TrimSpace(e)
		if strings.HasPrefix(t, "Department of") || strings.HasPrefix(t, "State of") {
			out = append(out, t)
		}
	}
	return out
}

// FormatGovernmentWork renders the structured field into the report form:
// "No", or "Yes: entity, entity".
func FormatGovernmentWork(gw GovernmentWork) string {
	if !gw.WorkedWithGovt || len(gw.GovtEntities) == 0 {
		return "No"
	}
	return "Yes: " + strings.Join(gw.GovtEntities, ", ")
}

func coerceString(v interface{}, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func coerceFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(n, "years")), 64); err == nil {
			return f
		}
	}
	return 0
}

func coerceStringList(v interface{}) []string {
	switch list := v.(type) {
	case []interface{}:
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok {
				if t := strings.TrimSpace(s); t != "" {
					out = append(out, t)
				}
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(list, ",") {
			if t := strings.TrimSpace(s); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return nil
}
