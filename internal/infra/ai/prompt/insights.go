package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/assessment-intake/internal/domain/insights"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a patient-intake assistant for a wellness clinic. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Base every statement on the answers given. Never diagnose; describe and suggest next steps only.
- highlights is an array of short strings, at most five.
- next_step is one sentence addressed to clinic staff.

Schema (example with empty values):
{
  "assessment_type": "<string>",
  "summary": "<string>",
  "highlights": ["<string>"],
  "next_step": "<string>"
}`
}

// Narrative matches the schema used by the system prompt.
type Narrative struct {
	AssessmentType string   `json:"assessment_type"`
	Summary        string   `json:"summary"`
	Highlights     []string `json:"highlights"`
	NextStep       string   `json:"next_step"`
}

// GetUserPrompt builds the user message. Only the assessment definition
// and the answers are sent; contact fields stay out of the prompt.
func GetUserPrompt(req insights.Request) (string, error) {
	payload := struct {
		AssessmentType string            `json:"assessment_type"`
		Title          string            `json:"title"`
		Questions      int               `json:"questions"`
		Answers        map[string]string `json:"answers"`
	}{
		AssessmentType: req.Definition.Name,
		Title:          req.Definition.Title,
		Questions:      req.Definition.Questions,
		Answers:        req.Record.Answers,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt payload: %w", err)
	}
	return fmt.Sprintf("Summarize these assessment answers and respond with the JSON per schema. Answers: %s", b), nil
}
