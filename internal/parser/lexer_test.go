package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenise(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Take   LAMP  ", want: "take lamp"},
		{in: "take lamp!! look?", want: "take lamp look"},
		{in: "take lamp, key. look", want: "take lamp , key . look"},
		{in: `say "Hello, World" to bob.`, want: `say "Hello, World" to bob .`},
		{in: `say "unterminated to bob`, want: `say "unterminated to bob"`},
		{in: "take lamp; look - wait", want: "take lamp look wait"},
		{in: "don't -5", want: "don't -5"},
	}
	for _, tc := range tests {
		got := joinWords(tokenise(tc.in))
		if got != tc.want {
			t.Fatalf("tokenise(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestTokeniseNumbers(t *testing.T) {
	tests := []struct {
		in     string
		number bool
		value  int
	}{
		{in: "42", number: true, value: 42},
		{in: "-7", number: true, value: -7},
		{in: "32767", number: true, value: 32767},
		{in: "40000", number: false},
		{in: "12:30", number: true, value: 750},
		{in: "1:05", number: true, value: 65},
		{in: "24:00", number: true, value: 0},
		{in: "25:00", number: false},
		{in: "0:30", number: false},
		{in: "12:75", number: false},
		{in: "4a", number: false},
	}
	for _, tc := range tests {
		toks := tokenise(tc.in)
		require.Len(t, toks, 1, tc.in)
		assert.Equal(t, tc.number, toks[0].Number, tc.in)
		if tc.number {
			assert.Equal(t, tc.value, toks[0].Value, tc.in)
		}
	}
}

func testDictionary(words ...string) *Dictionary {
	d := NewDictionary()
	for _, w := range words {
		d.Add(w)
	}
	return d
}

func TestDictionaryLookup(t *testing.T) {
	d := testDictionary("inventory", "examine", "examiner", "lamp", "north", "lamp post")
	tests := []struct {
		in   string
		want string
	}{
		{in: "lamp", want: "lamp"},
		{in: "LAMP", want: "lamp"},
		{in: "invent", want: "inventory"},
		{in: "inventoryx", want: "inventory"},
		{in: "northern", want: "north"},
		{in: "examin", want: ""},
		{in: "inv", want: ""},
		{in: "lampposts", want: "lamp"},
	}
	for _, tc := range tests {
		id := d.Lookup(tc.in)
		if tc.want == "" {
			assert.Equal(t, WordUnknown, id, tc.in)
			continue
		}
		assert.Equal(t, tc.want, d.Word(id), tc.in)
	}
	assert.Equal(t, WordNone, d.Add("   "))
	assert.Equal(t, 6, d.Len())
}

func TestDictionarySuggest(t *testing.T) {
	d := testDictionary("inventory", "lamp", "north", "examine")
	assert.Equal(t, "lamp", d.Suggest("lampp"))
	assert.Equal(t, "inventory", d.Suggest("invetnory"))
	assert.Equal(t, "", d.Suggest("zz"))
	assert.Equal(t, "", d.Suggest("banana"))
}

func normalised(t *testing.T, p *Parser, line string) []Token {
	t.Helper()
	toks := tokenise(line)
	require.Equal(t, -1, resolveWords(toks, p.Tables().Dictionary), line)
	return normaliseTokens(toks, p.Tables())
}

func TestNormaliseIsIdempotent(t *testing.T) {
	p, _ := newFixture(t, standardObjects())
	lines := []string{
		"pick up the lamp, key and coin. then look",
		"grab the brass lamp",
		"take lamp, and key",
		`say "pick up" then wait 10`,
		"bob, pick up a coin",
	}
	for _, line := range lines {
		once := normalised(t, p, line)
		twice := normaliseTokens(cloneTokens(once), p.Tables())
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("second pass changed %q (-once +twice):\n%s", line, diff)
		}
	}
}

func TestNormaliseRewrites(t *testing.T) {
	p, _ := newFixture(t, standardObjects())
	tests := []struct {
		in   string
		want string
	}{
		{in: "grab the lamp", want: "take lamp"},
		{in: "pick up a key", want: "take key"},
		{in: "take lamp, key", want: "take lamp , key"},
		{in: "take lamp, and key", want: "take lamp and key"},
		{in: "take lamp then look", want: "take lamp then look"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, joinWords(normalised(t, p, tc.in)), tc.in)
	}

	sentence, rest := splitSentence(normalised(t, p, ". take lamp then look"))
	assert.Equal(t, "take lamp", joinWords(sentence))
	assert.Equal(t, "look", joinWords(rest))
}
