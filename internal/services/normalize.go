package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizedText is the cleaned reading-order text of a resume together with
// its lowercase tokens.
type NormalizedText struct {
	Text   string
	Lines  []string
	Tokens []string
}

var (
	whitespacePattern = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2000}-\x{200B}\x{3000}]+`)
	pageNumberPattern = regexp.MustCompile(`(?i)^(?:-\s*\d{1,3}\s*-|(?:page\s*)?\d{1,3}(?:\s*(?:of|/)\s*\d{1,3})?)$`)
)

// NewNormalizedText cleans a single block of text.
func NewNormalizedText(raw string) NormalizedText {
	return normalizePages([]string{raw})
}

// normalizePages cleans text extracted page by page, dropping page numbers and
// running headers or footers repeated across pages.
func normalizePages(pages []string) NormalizedText {
	pageLines := make([][]string, 0, len(pages))
	for _, page := range pages {
		pageLines = append(pageLines, cleanLines(page))
	}

	lines := stripLayoutArtifacts(pageLines)

	var tokens []string
	for _, line := range lines {
		tokens = append(tokens, Tokenize(line)...)
	}

	return NormalizedText{
		Text:   strings.Join(lines, "\n"),
		Lines:  lines,
		Tokens: tokens,
	}
}

// HasWords reports whether the text contains at least one token with a letter.
func (n NormalizedText) HasWords() bool {
	return n.WordCount() > 0
}

// WordCount counts tokens that contain at least one letter.
func (n NormalizedText) WordCount() int {
	count := 0
	for _, token := range n.Tokens {
		if strings.IndexFunc(token, unicode.IsLetter) >= 0 {
			count++
		}
	}
	return count
}

// CleanText normalizes line endings and whitespace and removes blank lines.
func CleanText(text string) string {
	return strings.Join(cleanLines(text), "\n")
}

func cleanLines(text string) []string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && r != '\t' {
				return -1
			}
			return r
		}, line)
		line = strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func stripLayoutArtifacts(pages [][]string) []string {
	repeated := map[string]bool{}
	if len(pages) >= 2 {
		seen := map[string]int{}
		for _, lines := range pages {
			edges := map[string]bool{}
			if len(lines) > 0 {
				edges[strings.ToLower(lines[0])] = true
				edges[strings.ToLower(lines[len(lines)-1])] = true
			}
			for line := range edges {
				seen[line]++
			}
		}
		for line, count := range seen {
			if count >= 2 {
				repeated[line] = true
			}
		}
	}

	var out []string
	for _, lines := range pages {
		for i, line := range lines {
			if pageNumberPattern.MatchString(line) {
				continue
			}
			isEdge := i == 0 || i == len(lines)-1
			if isEdge && repeated[strings.ToLower(line)] {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

// Tokenize splits text into lowercase tokens. Characters common inside
// technology names (+ # .) are kept so "c++", "c#" and "node.js" survive.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		token := strings.Trim(word.String(), ".")
		word.Reset()
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// compactToken drops punctuation that varies between spellings, so "node.js",
// "nodejs" and "Node.JS" compare equal.
func compactToken(token string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' {
			return r
		}
		return -1
	}, token)
}

// compactPhrase tokenizes and compacts a keyword or phrase.
func compactPhrase(text string) []string {
	var forms []string
	for _, token := range Tokenize(text) {
		if form := compactToken(token); form != "" {
			forms = append(forms, form)
		}
	}
	return forms
}

var stemSuffixes = []struct {
	suffix      string
	replacement string
}{
	{"ments", ""},
	{"ment", ""},
	{"ings", ""},
	{"ing", ""},
	{"ions", ""},
	{"ion", ""},
	{"ies", "y"},
	{"ers", ""},
	{"er", ""},
	{"es", ""},
	{"ed", ""},
	{"s", ""},
}

const (
	minStemLength = 4
	// Plurals of short acronyms such as apis or sdks still reduce.
	minPluralStemLength = 3
)

// stem strips one common English suffix.
func stem(token string) string {
	for _, s := range stemSuffixes {
		if !strings.HasSuffix(token, s.suffix) {
			continue
		}
		base := strings.TrimSuffix(token, s.suffix) + s.replacement
		if utf8.RuneCountInString(base) >= minStemLength {
			return base
		}
	}

	if strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		base := strings.TrimSuffix(token, "s")
		if utf8.RuneCountInString(base) >= minPluralStemLength {
			return base
		}
	}
	return token
}
