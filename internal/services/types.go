package services

// ResumeDocument is an uploaded resume as received from the caller. It is
// never persisted.
type ResumeDocument struct {
	Data      []byte
	MediaType string
	Size      int64
}

// Keyword is one expected skill of a category profile.
type Keyword struct {
	Term     string   `json:"term" yaml:"term" validate:"required"`
	Weight   float64  `json:"weight" yaml:"weight" validate:"gte=0"`
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Related  []string `json:"related,omitempty" yaml:"related,omitempty"`
}

// CategoryProfile is the expectation model for a job category.
type CategoryProfile struct {
	Name     string    `json:"name" yaml:"name" validate:"required"`
	Aliases  []string  `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Keywords []Keyword `json:"keywords" yaml:"keywords" validate:"min=1,dive"`
	Generic  bool      `json:"generic" yaml:"-"`
}

// TotalWeight sums the weights of all keywords.
func (p CategoryProfile) TotalWeight() float64 {
	total := 0.0
	for _, kw := range p.Keywords {
		total += kw.Weight
	}
	return total
}

// MaxWeight returns the largest keyword weight.
func (p CategoryProfile) MaxWeight() float64 {
	maxWeight := 0.0
	for _, kw := range p.Keywords {
		maxWeight = max(maxWeight, kw.Weight)
	}
	return maxWeight
}

func (p CategoryProfile) clone() CategoryProfile {
	out := CategoryProfile{
		Name:     p.Name,
		Aliases:  append([]string(nil), p.Aliases...),
		Keywords: make([]Keyword, len(p.Keywords)),
		Generic:  p.Generic,
	}
	for i, kw := range p.Keywords {
		out.Keywords[i] = Keyword{
			Term:     kw.Term,
			Weight:   kw.Weight,
			Synonyms: append([]string(nil), kw.Synonyms...),
			Related:  append([]string(nil), kw.Related...),
		}
	}
	return out
}

// MatchOutcome is the presence of one keyword in a resume.
type MatchOutcome int

const (
	OutcomeAbsent MatchOutcome = iota
	OutcomePartial
	OutcomeMatched
)

func (o MatchOutcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomePartial:
		return "partially-matched"
	default:
		return "absent"
	}
}

// Credit is the share of a keyword's weight earned by the outcome.
func (o MatchOutcome) Credit() float64 {
	switch o {
	case OutcomeMatched:
		return 1.0
	case OutcomePartial:
		return 0.5
	default:
		return 0.0
	}
}

type KeywordMatch struct {
	Keyword  Keyword
	Outcome  MatchOutcome
	Evidence string
}

// MatchResult holds exactly one KeywordMatch per profile keyword, in profile
// order.
type MatchResult struct {
	Matches []KeywordMatch
}

// Counts returns the number of matched, partially matched and absent keywords.
func (m MatchResult) Counts() (matched, partial, absent int) {
	for _, match := range m.Matches {
		switch match.Outcome {
		case OutcomeMatched:
			matched++
		case OutcomePartial:
			partial++
		default:
			absent++
		}
	}
	return matched, partial, absent
}

// WithOutcome returns the matches having the given outcome, in profile order.
func (m MatchResult) WithOutcome(outcome MatchOutcome) []KeywordMatch {
	var out []KeywordMatch
	for _, match := range m.Matches {
		if match.Outcome == outcome {
			out = append(out, match)
		}
	}
	return out
}

// AnalysisResult is the only artifact the analyzer exposes.
type AnalysisResult struct {
	MatchPercentage int      `json:"matchPercentage"`
	Strengths       []string `json:"strengths"`
	MissingKeywords []string `json:"missingKeywords"`
	Suggestions     []string `json:"suggestions"`
	Summary         string   `json:"summary"`
}

type AnalysisRequest struct {
	Document ResumeDocument
	Category string
}
