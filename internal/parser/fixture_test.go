package parser

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	name       string
	nouns      []string
	adjectives []string
	parent     string
	attrs      []string
	character  bool
	unknown    bool
}

// fakeWorld resolves objects by list position: objects[i] is ObjectRef(i+1).
type fakeWorld struct {
	dict     *Dictionary
	objects  []fakeObject
	refs     map[string]ObjectRef
	actor    ObjectRef
	routines map[string]func(ObjectRef) bool
}

func (w *fakeWorld) obj(ref ObjectRef) *fakeObject {
	if ref <= Nothing || int(ref) > len(w.objects) {
		return &fakeObject{}
	}
	return &w.objects[ref-1]
}

func (w *fakeWorld) ref(name string) ObjectRef { return w.refs[name] }

func (w *fakeWorld) Objects() []ObjectRef {
	out := make([]ObjectRef, len(w.objects))
	for i := range w.objects {
		out[i] = ObjectRef(i + 1)
	}
	return out
}

func (w *fakeWorld) Actor() ObjectRef { return w.actor }

func (w *fakeWorld) Name(obj ObjectRef) string { return w.obj(obj).name }

func (w *fakeWorld) HasWord(obj ObjectRef, word WordID, kind MatchKind) bool {
	o := w.obj(obj)
	list := o.nouns
	if kind == MatchAdjective {
		list = o.adjectives
	}
	return slices.Contains(list, w.dict.Word(word))
}

func (w *fakeWorld) Parent(obj ObjectRef) ObjectRef { return w.refs[w.obj(obj).parent] }

func (w *fakeWorld) Children(obj ObjectRef) []ObjectRef {
	var out []ObjectRef
	for _, ref := range w.Objects() {
		if w.Parent(ref) == obj && obj != Nothing {
			out = append(out, ref)
		}
	}
	return out
}

func (w *fakeWorld) has(obj ObjectRef, attr string) bool {
	return slices.Contains(w.obj(obj).attrs, attr)
}

func (w *fakeWorld) IsAvailable(obj ObjectRef, _ Domain) bool {
	room := w.Parent(w.actor)
	for cur := obj; cur != Nothing; cur = w.Parent(cur) {
		if cur == room {
			return true
		}
		if cur != obj && w.has(cur, "container") && !w.has(cur, "open") {
			return false
		}
	}
	return false
}

func (w *fakeWorld) IsKnown(obj ObjectRef) bool { return !w.obj(obj).unknown }

func (w *fakeWorld) IsCharacter(obj ObjectRef) bool { return w.obj(obj).character }

func (w *fakeWorld) TestAttribute(obj ObjectRef, attr string, negate bool) bool {
	return w.has(obj, attr) != negate
}

func (w *fakeWorld) RunPredicate(routine string, obj ObjectRef) bool {
	fn := w.routines[routine]
	return fn != nil && fn(obj)
}

func objectPhrase(kind PhraseKind, multi bool) GrammarToken {
	return GrammarToken{Kind: GrammarObject, Phrase: kind, Multi: multi}
}

func literal(words ...string) GrammarToken {
	return GrammarToken{Kind: GrammarWord, Literals: words}
}

func testVerbs() []VerbDef {
	character := GrammarToken{Kind: GrammarObject, Indirect: true, Routine: "is_character"}
	return []VerbDef{
		{Words: []string{"look", "l"}, Syntaxes: []SyntaxDef{{Action: "look"}}},
		{Words: []string{"take", "get"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{objectPhrase(PhraseNotHeld, true)}, Action: "take"},
			{Tokens: []GrammarToken{
				objectPhrase(PhraseObject, true),
				literal("from", "off"),
				{Kind: GrammarObject, Phrase: PhraseParent, Indirect: true},
			}, Action: "take_from"},
		}},
		{Words: []string{"drop"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{objectPhrase(PhraseHeld, true)}, Action: "drop"},
		}},
		{Words: []string{"empty"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{{Kind: GrammarObject, Phrase: PhraseHeld, Multi: true, Deep: true}}, Action: "empty"},
		}},
		{Words: []string{"put"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{
				objectPhrase(PhraseHeld, true),
				literal("in", "into"),
				{Kind: GrammarObject, Indirect: true, Attribute: "container"},
			}, Action: "put_in"},
		}},
		{Words: []string{"give"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{objectPhrase(PhraseHeld, false), literal("to"), character}, Action: "give"},
			{Tokens: []GrammarToken{character, objectPhrase(PhraseHeld, false)}, Action: "give"},
		}},
		{Words: []string{"examine", "x"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{objectPhrase(PhraseAnything, false)}, Action: "examine"},
		}},
		{Words: []string{"open"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{{Kind: GrammarObject, Attribute: "openable"}}, Action: "open"},
		}},
		{Words: []string{"quit"}, Meta: true, Syntaxes: []SyntaxDef{{Action: "quit"}}},
		{Words: []string{"wait"}, Syntaxes: []SyntaxDef{
			{Action: "wait"},
			{Tokens: []GrammarToken{{Kind: GrammarNumber}}, Action: "wait_for"},
		}},
		{Words: []string{"say"}, Syntaxes: []SyntaxDef{
			{Tokens: []GrammarToken{{Kind: GrammarString}}, Action: "say"},
		}},
	}
}

func standardObjects() []fakeObject {
	return []fakeObject{
		{name: "cellar", nouns: []string{"cellar"}},
		{name: "yourself", nouns: []string{"me", "myself"}, parent: "cellar"},
		{name: "brass lamp", nouns: []string{"lamp"}, adjectives: []string{"brass"}, parent: "cellar"},
		{name: "brass key", nouns: []string{"key"}, adjectives: []string{"brass"}, parent: "cellar"},
		{name: "iron key", nouns: []string{"key"}, adjectives: []string{"iron"}, parent: "cellar"},
		{name: "gold coin", nouns: []string{"coin"}, adjectives: []string{"gold"}, parent: "yourself"},
		{name: "wooden box", nouns: []string{"box"}, adjectives: []string{"wooden"}, parent: "cellar",
			attrs: []string{"container", "openable", "open"}},
		{name: "red gem", nouns: []string{"gem"}, adjectives: []string{"red"}, parent: "wooden box"},
		{name: "bob", nouns: []string{"bob"}, parent: "cellar", character: true},
		{name: "sword", nouns: []string{"sword"}},
		{name: "statue", nouns: []string{"statue"}, unknown: true},
	}
}

// newFixture builds tables for the test grammar and a world holding objs.
// The actor is the object named "yourself".
func newFixture(t *testing.T, objs []fakeObject, opts ...Option) (*Parser, *fakeWorld) {
	t.Helper()
	reg := NewRegistry(DefaultHousekeeping())
	for _, v := range testVerbs() {
		reg.RegisterVerb(v)
	}
	reg.Synonym("grab", "take")
	reg.Remove("the", "a")
	reg.Compound(CompoundDef{First: "pick", Second: "up", Result: "take"})
	for _, o := range objs {
		for _, w := range append(slices.Clone(o.nouns), o.adjectives...) {
			reg.Word(w)
		}
	}
	tables, err := reg.Tables()
	require.NoError(t, err)

	w := &fakeWorld{
		dict:    tables.Dictionary,
		objects: objs,
		refs:    make(map[string]ObjectRef),
	}
	for i, o := range objs {
		w.refs[o.name] = ObjectRef(i + 1)
	}
	w.actor = w.refs["yourself"]
	w.routines = map[string]func(ObjectRef) bool{
		"is_character": w.IsCharacter,
	}
	return New(tables, w, opts...), w
}

// scriptedPrompter answers questions from a fixed list and records them.
type scriptedPrompter struct {
	replies   []string
	questions []string
}

func (s *scriptedPrompter) Ask(_ context.Context, question string) (string, error) {
	s.questions = append(s.questions, question)
	if len(s.replies) == 0 {
		return "", nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}
