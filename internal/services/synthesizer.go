package services

import (
	"context"
	"fmt"
	"log"
)

type SynthesizerOptions struct {
	MaxSuggestions     int
	HighScoreThreshold int
	HighWeightRatio    float64
}

func DefaultSynthesizerOptions() SynthesizerOptions {
	return SynthesizerOptions{
		MaxSuggestions:     DefaultMaxSuggestions,
		HighScoreThreshold: DefaultHighScoreThreshold,
		HighWeightRatio:    DefaultHighWeightRatio,
	}
}

// FeedbackSynthesizer turns match outcomes and a score into the result shown
// to the candidate.
type FeedbackSynthesizer interface {
	Synthesize(ctx context.Context, profile CategoryProfile, match MatchResult, score int, text NormalizedText) AnalysisResult
}

type feedbackSynthesizer struct {
	summary  SummaryWriter
	template SummaryWriter
	opts     SynthesizerOptions
}

func NewFeedbackSynthesizer(summary SummaryWriter, opts SynthesizerOptions) FeedbackSynthesizer {
	template := NewTemplateSummary()
	if summary == nil {
		summary = template
	}

	defaults := DefaultSynthesizerOptions()
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = defaults.MaxSuggestions
	}
	if opts.HighScoreThreshold <= 0 {
		opts.HighScoreThreshold = defaults.HighScoreThreshold
	}
	if opts.HighWeightRatio <= 0 {
		opts.HighWeightRatio = defaults.HighWeightRatio
	}

	return &feedbackSynthesizer{
		summary:  summary,
		template: template,
		opts:     opts,
	}
}

// Synthesize implements FeedbackSynthesizer.
func (s *feedbackSynthesizer) Synthesize(ctx context.Context, profile CategoryProfile, match MatchResult, score int, text NormalizedText) AnalysisResult {
	signals := DetectSignals(text)

	result := AnalysisResult{
		MatchPercentage: score,
		Strengths:       []string{},
		MissingKeywords: []string{},
		Suggestions:     []string{},
	}

	facts := SummaryFacts{
		Category: profile.Name,
		Generic:  profile.Generic,
		Score:    score,
	}

	for _, m := range match.WithOutcome(OutcomeMatched) {
		result.Strengths = append(result.Strengths, fmt.Sprintf("Demonstrated experience with %s", m.Keyword.Term))
		facts.Matched = append(facts.Matched, m.Keyword.Term)
	}
	for _, m := range match.WithOutcome(OutcomePartial) {
		result.Strengths = append(result.Strengths, fmt.Sprintf("Some exposure to %s", m.Keyword.Term))
		facts.Partial = append(facts.Partial, m.Keyword.Term)
	}
	for _, signal := range signals.Present() {
		result.Strengths = append(result.Strengths, signal.Strength())
		facts.Signals = append(facts.Signals, signal.Strength())
	}

	for _, m := range absentByWeight(match) {
		result.MissingKeywords = append(result.MissingKeywords, m.Keyword.Term)
	}
	facts.Missing = result.MissingKeywords

	in := suggestionInput{
		profile:  profile,
		match:    match,
		signals:  signals,
		score:    score,
		minHeavy: profile.MaxWeight() * s.opts.HighWeightRatio,
	}
	for _, suggestion := range buildSuggestions(in, s.opts.MaxSuggestions, s.opts.HighScoreThreshold) {
		result.Suggestions = append(result.Suggestions, suggestion.Text)
	}

	summary, err := s.summary.WriteSummary(ctx, facts)
	if err != nil || summary == "" {
		log.Printf("⚠️ Summary writer failed, using template: %v", err)
		summary, _ = s.template.WriteSummary(ctx, facts)
	}
	result.Summary = summary

	return result
}
