package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	minNumber = -32768
	maxNumber = 32767
)

var (
	numberRE = regexp.MustCompile(`^-?[0-9]+$`)
	timeRE   = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})$`)
)

func tokenise(line string) []Token {
	var (
		out     []Token
		word    strings.Builder
		quoted  strings.Builder
		inQuote bool
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		// A run with no letter or digit (";", "-", "...;") is punctuation.
		if w := word.String(); strings.IndexFunc(w, isWordRune) >= 0 {
			out = append(out, wordToken(w))
		}
		word.Reset()
	}
	for _, r := range line {
		if inQuote {
			if r == '"' {
				out = append(out, Token{Text: quoted.String(), Raw: quoted.String(), Literal: true})
				quoted.Reset()
				inQuote = false
				continue
			}
			quoted.WriteRune(r)
			continue
		}
		switch {
		case r == '"':
			flush()
			inQuote = true
		case unicode.IsSpace(r) || r == '!' || r == '?':
			flush()
		case r == '.' || r == ',':
			flush()
			out = append(out, Token{Text: string(r), Raw: string(r)})
		default:
			word.WriteRune(r)
		}
	}
	if inQuote {
		// An unterminated quote runs to the end of the line.
		out = append(out, Token{Text: quoted.String(), Raw: quoted.String(), Literal: true})
	}
	flush()
	return out
}

func wordToken(raw string) Token {
	t := Token{Raw: raw, Text: strings.ToLower(raw)}
	if n, ok := parseNumber(raw); ok {
		t.Number = true
		t.Value = n
		return t
	}
	if n, ok := parseClock(raw); ok {
		t.Number = true
		t.Value = n
	}
	return t
}

func parseNumber(s string) (int, bool) {
	if !numberRE.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minNumber || n > maxNumber {
		return 0, false
	}
	return n, true
}

// parseClock turns hh:mm into minutes after midnight; 24:mm is past midnight.
func parseClock(s string) (int, bool) {
	m := timeRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 24 || minute > 59 {
		return 0, false
	}
	return (hour%24)*60 + minute, true
}

func isPunctuation(t Token) bool {
	return !t.Literal && (t.Text == "." || t.Text == ",")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// onlyPunctuation also treats empty or whitespace-only quoted strings as
// blank.
func onlyPunctuation(tokens []Token) bool {
	for _, t := range tokens {
		if t.Literal && strings.TrimSpace(t.Text) == "" {
			continue
		}
		if !isPunctuation(t) {
			return false
		}
	}
	return true
}

func cloneTokens(tokens []Token) []Token {
	return append([]Token(nil), tokens...)
}

func joinWords(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.word())
	}
	return strings.Join(parts, " ")
}
