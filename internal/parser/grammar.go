package parser

import "slices"

type GrammarKind int

const (
	GrammarWord GrammarKind = iota
	GrammarNumber
	GrammarString
	GrammarObject
)

type PhraseKind int

const (
	PhraseObject PhraseKind = iota
	PhraseHeld
	PhraseNotHeld
	PhraseAnything
	PhraseParent
)

var phraseKindNames = map[PhraseKind]string{
	PhraseObject:   "object",
	PhraseHeld:     "held",
	PhraseNotHeld:  "notheld",
	PhraseAnything: "anything",
	PhraseParent:   "parent",
}

func (k PhraseKind) String() string {
	return phraseKindNames[k]
}

// GrammarToken is one element of a syntax alternative. Literals carries the
// source spellings of a word element; Words holds their ids once registered.
type GrammarToken struct {
	Kind      GrammarKind
	Literals  []string
	Words     []WordID
	Phrase    PhraseKind
	Multi     bool
	Deep      bool
	Indirect  bool
	Attribute string
	Negate    bool
	Routine   string
	Object    ObjectRef
}

func (g *GrammarToken) filtered() bool {
	return g.Object != Nothing || g.Attribute != "" || g.Routine != ""
}

type Syntax struct {
	Tokens []GrammarToken
	Action string
}

type Verb struct {
	Words    []WordID
	Meta     bool
	Syntaxes []Syntax
}

type Grammar struct {
	Verbs []Verb
}

func (g *Grammar) isVerbWord(id WordID) bool {
	for i := range g.Verbs {
		if slices.Contains(g.Verbs[i].Words, id) {
			return true
		}
	}
	return false
}

// Housekeeping lists the structural words that organise object phrases and
// sentences rather than naming anything.
type Housekeeping struct {
	And    []WordID
	All    []WordID
	Except []WordID
	Then   []WordID
	It     []WordID
	Them   []WordID
	Oops   []string
}

func (h *Housekeeping) isAnd(id WordID) bool    { return slices.Contains(h.And, id) }
func (h *Housekeeping) isAll(id WordID) bool    { return slices.Contains(h.All, id) }
func (h *Housekeeping) isExcept(id WordID) bool { return slices.Contains(h.Except, id) }
func (h *Housekeeping) isThen(id WordID) bool   { return slices.Contains(h.Then, id) }

func (h *Housekeeping) isPronoun(id WordID) bool {
	return slices.Contains(h.It, id) || slices.Contains(h.Them, id)
}

func (h *Housekeeping) structural(id WordID) bool {
	return h.isAnd(id) || h.isAll(id) || h.isExcept(id)
}

func (h *Housekeeping) isOops(t Token) bool {
	if t.Literal || t.Number {
		return false
	}
	return slices.Contains(h.Oops, foldWord(t.Raw))
}

// Tables is the immutable set of story tables handed to the parser.
type Tables struct {
	Dictionary *Dictionary
	Synonyms   *Synonyms
	Grammar    *Grammar
	Words      Housekeeping
}
