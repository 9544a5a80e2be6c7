package story

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/storyparse/internal/parser"
)

func TestCompilePattern(t *testing.T) {
	obj := func(kind parser.PhraseKind) parser.GrammarToken {
		return parser.GrammarToken{Kind: parser.GrammarObject, Phrase: kind}
	}
	tests := []struct {
		pattern string
		want    []compiledToken
	}{
		{pattern: "", want: nil},
		{pattern: "anything", want: []compiledToken{{GrammarToken: obj(parser.PhraseAnything)}}},
		{
			pattern: "multiheld in/into x:object(container)",
			want: []compiledToken{
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarObject, Phrase: parser.PhraseHeld, Multi: true}},
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarWord, Literals: []string{"in", "into"}}},
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarObject, Indirect: true, Attribute: "container"}},
			},
		},
		{
			pattern: "notheld(~fixed)",
			want: []compiledToken{
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarObject, Phrase: parser.PhraseNotHeld, Attribute: "fixed", Negate: true}},
			},
		},
		{
			pattern: "x:object{is_character} held",
			want: []compiledToken{
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarObject, Indirect: true, Routine: "is_character"}},
				{GrammarToken: obj(parser.PhraseHeld)},
			},
		},
		{
			pattern: "multi+ from x:parent",
			want: []compiledToken{
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarObject, Multi: true, Deep: true}},
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarWord, Literals: []string{"from"}}},
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarObject, Phrase: parser.PhraseParent, Indirect: true}},
			},
		},
		{
			pattern: "object=lamp",
			want:    []compiledToken{{GrammarToken: obj(parser.PhraseObject), identity: "lamp"}},
		},
		{
			pattern: "string to number",
			want: []compiledToken{
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarString}},
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarWord, Literals: []string{"to"}}},
				{GrammarToken: parser.GrammarToken{Kind: parser.GrammarNumber}},
			},
		},
	}
	for _, tc := range tests {
		got, err := compilePattern(tc.pattern)
		require.NoError(t, err, tc.pattern)
		if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(compiledToken{})); diff != "" {
			t.Fatalf("compilePattern(%q) mismatch (-want +got):\n%s", tc.pattern, diff)
		}
	}
}

func TestCompilePatternErrors(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{pattern: "object $", want: "unexpected"},
		{pattern: "object(container", want: "unexpected"},
		{pattern: "y:object", want: "unknown role"},
		{pattern: "thing(container)", want: "unknown object kind"},
		{pattern: "number(big)", want: "takes no role"},
		{pattern: "in//into", want: "empty alternative"},
	}
	for _, tc := range tests {
		_, err := compilePattern(tc.pattern)
		require.Error(t, err, tc.pattern)
		assert.Contains(t, err.Error(), tc.want, tc.pattern)
	}
}
