package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const fullResume = `
Jane Doe
jane.doe@example.com | +1 415 555 0134
Summary
Frontend engineer with seven years of experience shipping React applications for retail and fintech companies.
Experience
Senior Frontend Engineer, Acme Corp, 2019 - 2024
Led a team of 5 engineers building React and TypeScript applications for online shopping.
Improved page load time by 40% across the checkout flow by splitting bundles and caching assets.
Built a shared component library in JavaScript used by 12 teams across the company.
Designed accessible forms with HTML and CSS that raised conversion for returning customers.
Migrated legacy pages to a modern single page architecture with Redux for state management.
Frontend Engineer, Northwind Labs, 2016 - 2019
Developed dashboards in React and JavaScript that helped analysts explore sales data every day.
Delivered a design system with reusable CSS tokens and documented every component for other developers.
Mentored junior engineers through code reviews, pairing sessions and weekly knowledge sharing talks.
Automated release steps with continuous integration so the team could ship small changes safely.
Skills
React, JavaScript, TypeScript, HTML, CSS, Redux, Webpack, Git, accessibility, performance tuning
Education
B.Sc. Computer Science, State University, 2016
`

func TestDetectSignals_FullResume(t *testing.T) {
	signals := DetectSignals(NewNormalizedText(fullResume))

	assert.Equal(t, []Signal{
		SignalQuantifiedAchievements,
		SignalSkillsSection,
		SignalExperienceSection,
		SignalEducationSection,
		SignalContactInfo,
		SignalActionVerbs,
		SignalReasonableLength,
	}, signals.Present())
	assert.GreaterOrEqual(t, signals.WordCount, MinResumeWords)
	assert.False(t, signals.TooShort())
	assert.False(t, signals.TooLong())
}

func TestDetectSignals_ShortResume(t *testing.T) {
	signals := DetectSignals(NewNormalizedText(reactResume))

	assert.Empty(t, signals.Present())
	assert.True(t, signals.TooShort())
}

func TestDetectSignals_TooLong(t *testing.T) {
	text := strings.Repeat("Built reliable frontend features for customers. ", 220)
	signals := DetectSignals(NewNormalizedText(text))

	assert.True(t, signals.TooLong())
	assert.False(t, signals.Has(SignalReasonableLength))
}

func TestDetectSignals_Quantified(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Improved conversion by 25 percent", true},
		{"Cut hosting costs by 30%", true},
		{"Saved $20k in licensing", true},
		{"Grew throughput 3x", true},
		{"Served 10,000 users every day", true},
		{"Worked at Acme since 2019", false},
		{"Built many things", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			signals := DetectSignals(NewNormalizedText(tt.text))
			assert.Equal(t, tt.want, signals.Has(SignalQuantifiedAchievements))
		})
	}
}

func TestDetectSignals_Contact(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Reach me at jane@example.com", true},
		{"Phone: (415) 555-0134", true},
		{"Call +62 812 3456 7890", true},
		{"Version 1.2.3 released in 2020", false},
		{"No details here", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			signals := DetectSignals(NewNormalizedText(tt.text))
			assert.Equal(t, tt.want, signals.Has(SignalContactInfo))
		})
	}
}

func TestDetectSignals_SectionHeaders(t *testing.T) {
	tests := []struct {
		line   string
		signal Signal
		want   bool
	}{
		{"Technical Skills:", SignalSkillsSection, true},
		{"SKILLS", SignalSkillsSection, true},
		{"My skills include React and Go", SignalSkillsSection, false},
		{"Work Experience", SignalExperienceSection, true},
		{"Employment History", SignalExperienceSection, true},
		{"Education & Certifications", SignalEducationSection, true},
		{"Education", SignalEducationSection, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			signals := DetectSignals(NewNormalizedText("Jane Doe\n" + tt.line + "\nSomething else"))
			assert.Equal(t, tt.want, signals.Has(tt.signal))
		})
	}
}

func TestDetectSignals_ActionVerbs(t *testing.T) {
	few := DetectSignals(NewNormalizedText("Led the team and built the app"))
	assert.False(t, few.Has(SignalActionVerbs))

	enough := DetectSignals(NewNormalizedText("Led the team, built the app and shipped it twice. Led again."))
	assert.True(t, enough.Has(SignalActionVerbs))
}

func TestSignal_Strength(t *testing.T) {
	assert.Equal(t, "Provides contact information", SignalContactInfo.Strength())
	assert.Empty(t, Signal(-1).Strength())
	assert.Empty(t, signalCount.Strength())
}
