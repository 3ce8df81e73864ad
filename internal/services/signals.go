package services

import (
	"regexp"
	"strings"
)

// Signal is a structural quality of a resume, independent of the category.
type Signal int

const (
	SignalQuantifiedAchievements Signal = iota
	SignalSkillsSection
	SignalExperienceSection
	SignalEducationSection
	SignalContactInfo
	SignalActionVerbs
	SignalReasonableLength
	signalCount
)

const (
	MinResumeWords = 150
	MaxResumeWords = 1200

	minActionVerbs = 3
	maxHeaderWords = 4
)

var signalStrengths = [signalCount]string{
	SignalQuantifiedAchievements: "Quantifies achievements with concrete numbers",
	SignalSkillsSection:          "Includes a dedicated skills section",
	SignalExperienceSection:      "Presents work experience in a clear section",
	SignalEducationSection:       "Lists education background",
	SignalContactInfo:            "Provides contact information",
	SignalActionVerbs:            "Describes work with strong action verbs",
	SignalReasonableLength:       "Keeps the resume to an appropriate length",
}

func (s Signal) Strength() string {
	if s < 0 || s >= signalCount {
		return ""
	}
	return signalStrengths[s]
}

var (
	percentPattern  = regexp.MustCompile(`\d+(?:\.\d+)?\s?(?:%|percent\b)`)
	currencyPattern = regexp.MustCompile(`[$€£]\s?\d`)
	multiplePattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:x|k|m)\b`)
	countPattern    = regexp.MustCompile(`(?i)\b\d[\d,]*\+?\s+(?:users|customers|clients|requests|projects|people|engineers|developers|members|downloads|teams|services|applications|apps|countries|stores|transactions)\b`)
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\(?\d{1,4}\)?[\s.-]?\d{2,4}[\s.-]?\d{3,4}[\s.-]?\d{0,4}`)

	skillsHeaderPattern     = regexp.MustCompile(`(?i)^(?:technical\s+|core\s+|key\s+)?(?:skills|competencies|technologies|tech stack|skills\s*(?:&|and)\s*tools)\s*:?$`)
	experienceHeaderPattern = regexp.MustCompile(`(?i)^(?:professional\s+|work\s+|relevant\s+)?(?:experience|employment(?:\s+history)?|work history)\s*:?$`)
	educationHeaderPattern  = regexp.MustCompile(`(?i)^(?:education|academic background|qualifications|education\s*(?:&|and)\s*certifications)\s*:?$`)
)

var actionVerbs = map[string]bool{
	"led": true, "built": true, "developed": true, "designed": true,
	"implemented": true, "improved": true, "increased": true, "reduced": true,
	"launched": true, "managed": true, "created": true, "delivered": true,
	"optimized": true, "automated": true, "architected": true, "migrated": true,
	"mentored": true, "shipped": true, "owned": true, "drove": true,
	"streamlined": true, "established": true, "spearheaded": true, "scaled": true,
}

// SignalSet records which structural signals a resume shows.
type SignalSet struct {
	present   [signalCount]bool
	WordCount int
}

func (s SignalSet) Has(signal Signal) bool {
	if signal < 0 || signal >= signalCount {
		return false
	}
	return s.present[signal]
}

// Present returns the detected signals in declaration order.
func (s SignalSet) Present() []Signal {
	var out []Signal
	for signal := Signal(0); signal < signalCount; signal++ {
		if s.present[signal] {
			out = append(out, signal)
		}
	}
	return out
}

func (s SignalSet) TooShort() bool {
	return s.WordCount < MinResumeWords
}

func (s SignalSet) TooLong() bool {
	return s.WordCount > MaxResumeWords
}

func DetectSignals(text NormalizedText) SignalSet {
	set := SignalSet{WordCount: text.WordCount()}

	set.present[SignalQuantifiedAchievements] = percentPattern.MatchString(text.Text) ||
		currencyPattern.MatchString(text.Text) ||
		multiplePattern.MatchString(text.Text) ||
		countPattern.MatchString(text.Text)

	for _, line := range text.Lines {
		line = strings.TrimSpace(line)
		if len(strings.Fields(line)) > maxHeaderWords {
			continue
		}
		switch {
		case skillsHeaderPattern.MatchString(line):
			set.present[SignalSkillsSection] = true
		case experienceHeaderPattern.MatchString(line):
			set.present[SignalExperienceSection] = true
		case educationHeaderPattern.MatchString(line):
			set.present[SignalEducationSection] = true
		}
	}

	set.present[SignalContactInfo] = emailPattern.MatchString(text.Text) || hasPhoneNumber(text.Text)

	verbs := map[string]bool{}
	for _, token := range text.Tokens {
		if actionVerbs[token] {
			verbs[token] = true
		}
	}
	set.present[SignalActionVerbs] = len(verbs) >= minActionVerbs

	set.present[SignalReasonableLength] = !set.TooShort() && !set.TooLong()

	return set
}

func hasPhoneNumber(text string) bool {
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range candidate {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		// Years and version numbers are shorter than any phone number.
		if digits >= 9 && digits <= 15 {
			return true
		}
	}
	return false
}
