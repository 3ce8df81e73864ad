package services

import (
	"fmt"
	"sort"
)

const (
	DefaultMaxSuggestions     = 8
	DefaultHighScoreThreshold = 85
	DefaultHighWeightRatio    = 0.75
)

type SuggestionKind int

const (
	SuggestAddKeyword SuggestionKind = iota
	SuggestMentionKeyword
	SuggestClarifyKeyword
	SuggestQuantify
	SuggestSkillsSection
	SuggestExperienceSection
	SuggestContactInfo
	SuggestExpand
	SuggestCondense
	SuggestTailor
)

type Suggestion struct {
	Kind SuggestionKind
	Text string
}

type suggestionInput struct {
	profile  CategoryProfile
	match    MatchResult
	signals  SignalSet
	score    int
	minHeavy float64
}

type suggestionRule struct {
	kind  SuggestionKind
	apply func(in suggestionInput) []string
}

// Rules run in order; earlier rules win when the list is capped.
var suggestionRules = []suggestionRule{
	{
		kind: SuggestAddKeyword,
		apply: func(in suggestionInput) []string {
			var out []string
			for _, m := range absentByWeight(in.match) {
				if m.Keyword.Weight >= in.minHeavy {
					out = append(out, fmt.Sprintf("Add experience with %s", m.Keyword.Term))
				}
			}
			return out
		},
	},
	{
		kind: SuggestClarifyKeyword,
		apply: func(in suggestionInput) []string {
			var out []string
			for _, m := range in.match.WithOutcome(OutcomePartial) {
				out = append(out, fmt.Sprintf("Make your %s experience explicit", m.Keyword.Term))
			}
			return out
		},
	},
	{
		kind: SuggestMentionKeyword,
		apply: func(in suggestionInput) []string {
			var out []string
			for _, m := range absentByWeight(in.match) {
				if m.Keyword.Weight < in.minHeavy {
					out = append(out, fmt.Sprintf("Consider mentioning %s if you have worked with it", m.Keyword.Term))
				}
			}
			return out
		},
	},
	{
		kind: SuggestQuantify,
		apply: func(in suggestionInput) []string {
			if in.signals.Has(SignalQuantifiedAchievements) {
				return nil
			}
			return []string{"Quantify your achievements with numbers, percentages or other measurable results"}
		},
	},
	{
		kind: SuggestSkillsSection,
		apply: func(in suggestionInput) []string {
			if in.signals.Has(SignalSkillsSection) {
				return nil
			}
			return []string{"Add a dedicated skills section listing your key technologies"}
		},
	},
	{
		kind: SuggestExperienceSection,
		apply: func(in suggestionInput) []string {
			if in.signals.Has(SignalExperienceSection) {
				return nil
			}
			return []string{"Organize your work history under a clear experience section"}
		},
	},
	{
		kind: SuggestContactInfo,
		apply: func(in suggestionInput) []string {
			if in.signals.Has(SignalContactInfo) {
				return nil
			}
			return []string{"Include contact information such as an email address or phone number"}
		},
	},
	{
		kind: SuggestExpand,
		apply: func(in suggestionInput) []string {
			if !in.signals.TooShort() {
				return nil
			}
			return []string{"Expand your resume with more detail about your projects and responsibilities"}
		},
	},
	{
		kind: SuggestCondense,
		apply: func(in suggestionInput) []string {
			if !in.signals.TooLong() {
				return nil
			}
			return []string{"Condense your resume to focus on the most relevant experience"}
		},
	},
}

// buildSuggestions applies the rule table and caps the result at limit. When
// no rule fires and the score is below highScore, a tailoring suggestion is
// returned instead so weak results always carry advice.
func buildSuggestions(in suggestionInput, limit, highScore int) []Suggestion {
	suggestions := []Suggestion{}
	for _, rule := range suggestionRules {
		for _, text := range rule.apply(in) {
			if limit > 0 && len(suggestions) >= limit {
				return suggestions
			}
			suggestions = append(suggestions, Suggestion{Kind: rule.kind, Text: text})
		}
	}

	if len(suggestions) == 0 && in.score < highScore {
		suggestions = append(suggestions, Suggestion{
			Kind: SuggestTailor,
			Text: fmt.Sprintf("Tailor your resume to the %s role by highlighting your most relevant projects", in.profile.Name),
		})
	}

	return suggestions
}

// absentByWeight returns absent keywords by descending weight, keeping
// profile order among equal weights.
func absentByWeight(result MatchResult) []KeywordMatch {
	absent := result.WithOutcome(OutcomeAbsent)
	sort.SliceStable(absent, func(i, j int) bool {
		return absent[i].Keyword.Weight > absent[j].Keyword.Weight
	})
	return absent
}
