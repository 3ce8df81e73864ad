package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSummaryPrompt creates the prompt for a resume summary. Only the
// computed facts go into the prompt, never the resume text.
func (pb *PromptBuilder) BuildSummaryPrompt(facts SummaryFacts) string {
	role := facts.Category
	if facts.Generic {
		role = "general professional position (no specific category matched)"
	}

	return fmt.Sprintf(`You are an experienced career coach giving feedback on a resume for a %s role.

ANALYSIS RESULTS (already computed, do not change them):
- Match score: %d%%
- Skills demonstrated: %s
- Skills partially shown: %s
- Missing skills: %s
- Other strengths: %s

Write a short summary (2-4 sentences) for the candidate that:
1. States the match score exactly as given
2. Mentions the most important strengths
3. Names the most important gaps to address

Do not mention any other percentage or score. Do not invent skills that are not listed above.

Return your response in the following JSON format:
{
  "summary": "<the summary text>"
}`,
		role, facts.Score,
		formatFactList(facts.Matched),
		formatFactList(facts.Partial),
		formatFactList(facts.Missing),
		formatFactList(facts.Signals))
}

func formatFactList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// CleanJSONBlock strips markdown code fences around a JSON response.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
