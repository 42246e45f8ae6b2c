package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeLower(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Mixed case with extra whitespace",
			input:    "  Work   Experience\n\tEducation ",
			expected: "work experience education",
		},
		{
			name:     "Already normalized",
			input:    "skills",
			expected: "skills",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLower(tt.input); got != tt.expected {
				t.Errorf("NormalizeLower(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitSkillLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:  "Requirement keywords start new items",
			input: "Ability to design REST APIs\nStrong SQL background\nKnowledge of Kubernetes",
			expected: []string{
				"Ability to design REST APIs",
				"Strong SQL background",
				"Knowledge of Kubernetes",
			},
		},
		{
			name:  "Continuation lines fold into the current item",
			input: "Experience with distributed systems\nand message queues\nStrong Go skills",
			expected: []string{
				"Experience with distributed systems and message queues",
				"Strong Go skills",
			},
		},
		{
			name:  "Bulleted items",
			input: "intro\n- Ability to lead teams\n- Understanding of CI/CD",
			expected: []string{
				"intro",
				"Ability to lead teams",
				"Understanding of CI/CD",
			},
		},
		{
			name:     "Empty block",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSkillLines(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitSkillLines(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" a , , b ,c ", ",")
	expected := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("SplitAndTrim = %v, want %v", got, expected)
	}
}

func TestTidyLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"SAP ABAP Developer ,", "SAP ABAP Developer"},
		{", Java  Developer", "Java Developer"},
		{"clean", "clean"},
	}
	for _, tt := range tests {
		if got := TidyLine(tt.input); got != tt.expected {
			t.Errorf("TidyLine(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"John Smith Resume.pdf", "John_Smith_Resume.pdf"},
		{"resume(final)?.docx", "resume_final__.docx"},
		{"plain-name.doc", "plain-name.doc"},
	}
	for _, tt := range tests {
		if got := SafeFilename(tt.input); got != tt.expected {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
