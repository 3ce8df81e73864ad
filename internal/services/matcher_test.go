package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reactProfile() CategoryProfile {
	return CategoryProfile{
		Name: "React Developer",
		Keywords: []Keyword{
			{Term: "React", Weight: 1},
			{Term: "JavaScript", Weight: 1},
			{Term: "REST API", Weight: 1},
			{Term: "Node.js", Weight: 1},
			{Term: "testing", Weight: 1},
		},
	}
}

const reactResume = `Jane Doe
Frontend engineer building React applications with JavaScript.
Integrated a REST API for internal dashboards.`

func outcomes(result MatchResult) map[string]MatchOutcome {
	out := make(map[string]MatchOutcome, len(result.Matches))
	for _, m := range result.Matches {
		out[m.Keyword.Term] = m.Outcome
	}
	return out
}

func TestKeywordMatcher_Scenario(t *testing.T) {
	profile := reactProfile()
	result := NewKeywordMatcher().Match(profile, NewNormalizedText(reactResume))

	require.Len(t, result.Matches, len(profile.Keywords))
	for i, m := range result.Matches {
		assert.Equal(t, profile.Keywords[i].Term, m.Keyword.Term)
	}

	assert.Equal(t, map[string]MatchOutcome{
		"React":      OutcomeMatched,
		"JavaScript": OutcomeMatched,
		"REST API":   OutcomeMatched,
		"Node.js":    OutcomeAbsent,
		"testing":    OutcomeAbsent,
	}, outcomes(result))

	matched, partial, absent := result.Counts()
	assert.Equal(t, 3, matched)
	assert.Zero(t, partial)
	assert.Equal(t, 2, absent)

	assert.Equal(t, "Integrated a REST API for internal dashboards.", result.Matches[2].Evidence)
	assert.Empty(t, result.Matches[3].Evidence)
}

func TestKeywordMatcher_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		keyword Keyword
		resume  string
		want    MatchOutcome
	}{
		{"case insensitive", Keyword{Term: "JavaScript"}, "Expert in JAVASCRIPT", OutcomeMatched},
		{"dotted name", Keyword{Term: "Node.js"}, "Services written in node.js", OutcomeMatched},
		{"dotted name without dot", Keyword{Term: "Node.js"}, "Services written in NodeJS", OutcomeMatched},
		{"dotted name split", Keyword{Term: "Node.js"}, "Services written in Node JS", OutcomeMatched},
		{"hyphenated phrase", Keyword{Term: "CI/CD"}, "Maintained CI-CD pipelines", OutcomeMatched},
		{"plus signs", Keyword{Term: "C++"}, "Skilled in C++ and Rust", OutcomeMatched},
		{"hash sign", Keyword{Term: "C#"}, "Built tools in C#.", OutcomeMatched},
		{"plus signs not in plain c", Keyword{Term: "C++"}, "Skilled in C and Rust", OutcomeAbsent},
		{"synonym", Keyword{Term: "Kubernetes", Synonyms: []string{"k8s"}}, "Deployed services on k8s", OutcomeMatched},
		{"shared stem", Keyword{Term: "testing"}, "Wrote unit tests for every feature", OutcomePartial},
		{"shared stems in phrase", Keyword{Term: "problem solving"}, "Solved hard problems", OutcomePartial},
		{"embedded in longer token", Keyword{Term: "Spring"}, "Built services with SpringBoot", OutcomePartial},
		{"related term", Keyword{Term: "React", Related: []string{"jsx"}}, "Built components in JSX", OutcomePartial},
		{"plural of short acronym", Keyword{Term: "API"}, "Designed and shipped public REST APIs", OutcomePartial},
		{"plural of acronym phrase", Keyword{Term: "REST API"}, "Designed and shipped public REST APIs", OutcomePartial},
		{"plural of three letter term", Keyword{Term: "SDK"}, "Shipped SDKs for partners", OutcomePartial},
		{"double s is not a plural", Keyword{Term: "CS"}, "Styled pages with CSS", OutcomeAbsent},
		{"short term not embedded", Keyword{Term: "Go"}, "Google Cloud certified", OutcomeAbsent},
		{"absent", Keyword{Term: "GraphQL"}, "Built REST services", OutcomeAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := CategoryProfile{Name: "Test", Keywords: []Keyword{tt.keyword}}
			result := NewKeywordMatcher().Match(profile, NewNormalizedText(tt.resume))

			require.Len(t, result.Matches, 1)
			assert.Equal(t, tt.want, result.Matches[0].Outcome, result.Matches[0].Outcome.String())
		})
	}
}

func TestKeywordMatcher_EmptyText(t *testing.T) {
	profile := reactProfile()
	result := NewKeywordMatcher().Match(profile, NormalizedText{})

	require.Len(t, result.Matches, len(profile.Keywords))
	for _, m := range result.Matches {
		assert.Equal(t, OutcomeAbsent, m.Outcome)
	}
}

func TestKeywordMatcher_EvidenceIsTruncated(t *testing.T) {
	line := "Ran Kubernetes clusters " + strings.Repeat("across many regions ", 20)
	profile := CategoryProfile{Name: "Test", Keywords: []Keyword{{Term: "Kubernetes", Weight: 1}}}

	result := NewKeywordMatcher().Match(profile, NewNormalizedText(line))

	require.Equal(t, OutcomeMatched, result.Matches[0].Outcome)
	assert.Equal(t, maxEvidenceRunes, utf8.RuneCountInString(result.Matches[0].Evidence))
	assert.True(t, strings.HasPrefix(result.Matches[0].Evidence, "Ran Kubernetes clusters"))
}
