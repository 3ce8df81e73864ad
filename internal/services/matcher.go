package services

import (
	"strings"
	"unicode/utf8"
)

const (
	maxEvidenceRunes   = 120
	minSubstringLength = 4
	maxJoinedTokens    = 3
)

// KeywordMatcher decides, for every keyword of a profile, whether a resume
// demonstrates it.
type KeywordMatcher interface {
	Match(profile CategoryProfile, text NormalizedText) MatchResult
}

type keywordMatcher struct{}

func NewKeywordMatcher() KeywordMatcher {
	return &keywordMatcher{}
}

type indexedLine struct {
	text   string
	tokens []string
}

type resumeIndex struct {
	lines []indexedLine
	// first line on which a stem appears
	stems map[string]int
}

func newResumeIndex(text NormalizedText) *resumeIndex {
	idx := &resumeIndex{stems: make(map[string]int)}
	for i, line := range text.Lines {
		tokens := compactPhrase(line)
		idx.lines = append(idx.lines, indexedLine{text: line, tokens: tokens})
		for _, token := range tokens {
			s := stem(token)
			if _, seen := idx.stems[s]; !seen {
				idx.stems[s] = i
			}
		}
	}
	return idx
}

// Match implements KeywordMatcher. Exact phrases and synonyms count as
// matched; shared stems, containing tokens and related terms count as
// partially matched.
func (m *keywordMatcher) Match(profile CategoryProfile, text NormalizedText) MatchResult {
	idx := newResumeIndex(text)
	result := MatchResult{Matches: make([]KeywordMatch, 0, len(profile.Keywords))}

	for _, kw := range profile.Keywords {
		result.Matches = append(result.Matches, idx.match(kw))
	}

	return result
}

func (idx *resumeIndex) match(kw Keyword) KeywordMatch {
	match := KeywordMatch{Keyword: kw, Outcome: OutcomeAbsent}

	for _, term := range append([]string{kw.Term}, kw.Synonyms...) {
		if line, ok := idx.findPhrase(compactPhrase(term)); ok {
			match.Outcome = OutcomeMatched
			match.Evidence = idx.evidence(line)
			return match
		}
	}

	if line, ok := idx.findPartial(compactPhrase(kw.Term)); ok {
		match.Outcome = OutcomePartial
		match.Evidence = idx.evidence(line)
		return match
	}

	for _, related := range kw.Related {
		if line, ok := idx.findPhrase(compactPhrase(related)); ok {
			match.Outcome = OutcomePartial
			match.Evidence = idx.evidence(line)
			return match
		}
	}

	return match
}

// findPhrase looks for phrase as a contiguous token run, or as up to three
// adjacent tokens that spell it without separators ("node js", "nodejs").
func (idx *resumeIndex) findPhrase(phrase []string) (int, bool) {
	if len(phrase) == 0 {
		return 0, false
	}
	joined := strings.Join(phrase, "")

	for i, line := range idx.lines {
		if containsPhrase(line.tokens, phrase) {
			return i, true
		}
		for start := range line.tokens {
			var b strings.Builder
			for n := 0; n < maxJoinedTokens && start+n < len(line.tokens); n++ {
				b.WriteString(line.tokens[start+n])
				if b.Len() > len(joined) {
					break
				}
				if b.String() == joined {
					return i, true
				}
			}
		}
	}
	return 0, false
}

func (idx *resumeIndex) findPartial(phrase []string) (int, bool) {
	if len(phrase) == 0 {
		return 0, false
	}

	// Every stem of the term appears somewhere.
	first, all := -1, true
	for _, token := range phrase {
		line, ok := idx.stems[stem(token)]
		if !ok {
			all = false
			break
		}
		if first < 0 || line < first {
			first = line
		}
	}
	if all {
		return first, true
	}

	// The term is embedded in a longer token ("reactnative", "postgresql").
	joined := strings.Join(phrase, "")
	if utf8.RuneCountInString(joined) < minSubstringLength {
		return 0, false
	}
	for i, line := range idx.lines {
		for _, token := range line.tokens {
			if len(token) > len(joined) && strings.Contains(token, joined) {
				return i, true
			}
		}
	}
	return 0, false
}

func (idx *resumeIndex) evidence(line int) string {
	if line < 0 || line >= len(idx.lines) {
		return ""
	}
	text := strings.TrimSpace(idx.lines[line].text)
	if utf8.RuneCountInString(text) <= maxEvidenceRunes {
		return text
	}
	return string([]rune(text)[:maxEvidenceRunes])
}
