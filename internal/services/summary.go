package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const (
	StrongMatchScore   = 70
	ModerateMatchScore = 40

	maxSummaryHighlights = 2
)

// SummaryFacts are the computed results a summary is written from.
type SummaryFacts struct {
	Category string
	Generic  bool
	Score    int
	Matched  []string
	Partial  []string
	Missing  []string
	Signals  []string
}

// SummaryWriter turns analysis facts into a short narrative.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, facts SummaryFacts) (string, error)
}

type templateSummary struct{}

// NewTemplateSummary returns a deterministic SummaryWriter.
func NewTemplateSummary() SummaryWriter {
	return &templateSummary{}
}

// WriteSummary implements SummaryWriter.
func (t *templateSummary) WriteSummary(_ context.Context, facts SummaryFacts) (string, error) {
	var b strings.Builder

	if facts.Generic {
		fmt.Fprintf(&b, "No specific category matched, so your resume was assessed against general professional skills and is a %s match with a score of %d%%.",
			scoreBand(facts.Score), facts.Score)
	} else {
		fmt.Fprintf(&b, "Your resume is a %s match for the %s role with a score of %d%%.",
			scoreBand(facts.Score), facts.Category, facts.Score)
	}

	highlights := facts.Matched
	if len(highlights) == 0 {
		highlights = facts.Partial
	}
	if len(highlights) > 0 {
		fmt.Fprintf(&b, " Key strengths include %s.", joinList(firstN(highlights, maxSummaryHighlights)))
	}

	if len(facts.Missing) > 0 {
		fmt.Fprintf(&b, " Focus on adding %s to improve your fit.", joinList(firstN(facts.Missing, maxSummaryHighlights)))
	} else {
		b.WriteString(" It covers all of the expected skills for this role.")
	}

	return b.String(), nil
}

func scoreBand(score int) string {
	switch {
	case score >= StrongMatchScore:
		return "strong"
	case score >= ModerateMatchScore:
		return "moderate"
	default:
		return "limited"
	}
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

const summaryResponseSchema = `{
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary": {"type": "string", "minLength": 20, "maxLength": 1200}
  }
}`

var percentClaimPattern = regexp.MustCompile(`(\d{1,3})\s?(?:%|percent\b)`)

type GeneratedSummaryOptions struct {
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	Temperature float32
}

type generatedSummary struct {
	generator TextGenerator
	prompts   *PromptBuilder
	fallback  SummaryWriter
	schema    *gojsonschema.Schema
	opts      GeneratedSummaryOptions
}

// NewGeneratedSummary returns a SummaryWriter backed by a language model. Any
// failure of the model falls back to the template summary.
func NewGeneratedSummary(generator TextGenerator, opts GeneratedSummaryOptions) (SummaryWriter, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(summaryResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load summary schema: %w", err)
	}

	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &generatedSummary{
		generator: generator,
		prompts:   NewPromptBuilder(),
		fallback:  NewTemplateSummary(),
		schema:    schema,
		opts:      opts,
	}, nil
}

// WriteSummary implements SummaryWriter.
func (g *generatedSummary) WriteSummary(ctx context.Context, facts SummaryFacts) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	prompt := g.prompts.BuildSummaryPrompt(facts)
	summary, err := retry(ctx, g.opts.MaxRetries+1, g.opts.Backoff, func() (string, error) {
		response, err := g.generator.GenerateText(ctx, prompt, g.opts.Temperature)
		if err != nil {
			return "", err
		}
		return g.parse(response, facts.Score)
	})
	if err != nil {
		log.Printf("⚠️ Using template summary: %v", newError(KindExternalCapabilityUnavailable, err))
		return g.fallback.WriteSummary(ctx, facts)
	}

	return summary, nil
}

func (g *generatedSummary) parse(response string, score int) (string, error) {
	response = CleanJSONBlock(response)

	result, err := g.schema.Validate(gojsonschema.NewStringLoader(response))
	if err != nil {
		return "", fmt.Errorf("summary response is not JSON: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return "", fmt.Errorf("summary response does not match schema: %s", strings.Join(problems, "; "))
	}

	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if err := checkScoreClaims(summary, score); err != nil {
		return "", err
	}
	return summary, nil
}

// checkScoreClaims rejects text quoting a percentage other than the computed
// score.
func checkScoreClaims(summary string, score int) error {
	for _, m := range percentClaimPattern.FindAllStringSubmatch(summary, -1) {
		claimed, err := strconv.Atoi(m[1])
		if err != nil || claimed != score {
			return fmt.Errorf("summary claims %s%% but the score is %d%%", m[1], score)
		}
	}
	return nil
}
