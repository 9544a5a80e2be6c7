package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// fuzzyMinLength is the shortest typed word that may fall back to a
// prefix match.
const fuzzyMinLength = 6

// Dictionary holds every spelling the story knows. Ids are dense and start
// at 1; WordNone is never a valid entry.
type Dictionary struct {
	words []string
	ids   map[string]WordID
}

func NewDictionary() *Dictionary {
	return &Dictionary{
		words: []string{""},
		ids:   make(map[string]WordID),
	}
}

func foldWord(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (d *Dictionary) Add(word string) WordID {
	key := foldWord(word)
	if key == "" {
		return WordNone
	}
	if id, ok := d.ids[key]; ok {
		return id
	}
	id := WordID(len(d.words))
	d.words = append(d.words, key)
	d.ids[key] = id
	return id
}

func (d *Dictionary) ID(word string) WordID {
	return d.ids[foldWord(word)]
}

func (d *Dictionary) Word(id WordID) string {
	if id <= WordNone || int(id) >= len(d.words) {
		return ""
	}
	return d.words[id]
}

func (d *Dictionary) Len() int {
	return len(d.words) - 1
}

// Lookup resolves a typed word. An exact match wins; otherwise words of at
// least fuzzyMinLength runes accept a single candidate that shares the first
// character and either prefixes the word or is prefixed by it.
func (d *Dictionary) Lookup(word string) WordID {
	key := foldWord(word)
	if id, ok := d.ids[key]; ok {
		return id
	}
	if utf8.RuneCountInString(key) < fuzzyMinLength {
		return WordUnknown
	}
	first, _ := utf8.DecodeRuneInString(key)
	found := WordUnknown
	for id := 1; id < len(d.words); id++ {
		cand := d.words[id]
		if strings.ContainsRune(cand, ' ') {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(cand); r != first {
			continue
		}
		if !strings.HasPrefix(key, cand) && !strings.HasPrefix(cand, key) {
			continue
		}
		if found != WordUnknown {
			return WordUnknown
		}
		found = WordID(id)
	}
	return found
}

// Suggest returns the closest spelling by edit distance, or "" when nothing
// is near enough to be worth offering.
func (d *Dictionary) Suggest(word string) string {
	key := foldWord(word)
	if len(key) < 3 {
		return ""
	}
	best := ""
	bestDist := levenshteinLimit(len(key)) + 1
	for id := 1; id < len(d.words); id++ {
		cand := d.words[id]
		if strings.ContainsRune(cand, ' ') {
			continue
		}
		dist := levenshtein.ComputeDistance(key, cand)
		if dist < bestDist || (dist == bestDist && best != "" && cand < best) {
			best = cand
			bestDist = dist
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
