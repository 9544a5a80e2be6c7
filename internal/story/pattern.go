package story

import (
	"fmt"
	"strings"
	"unicode"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/appengine-ltd/storyparse/internal/parser"
)

// A syntax pattern is a space separated list of elements:
//
//	multinotheld{portable}        object phrase kinds, with a routine filter
//	in/into                       literal word alternatives
//	x:object(container)           x: marks the indirect object; (attr) or (~attr)
//	object=lamp                   only the object with story id lamp
//	multi+                        "all" also reaches into containers
//	number, string                a number or a quoted string

type lexKind int

const (
	lexWord lexKind = iota
	lexColon
	lexOpenParen
	lexCloseParen
	lexOpenBrace
	lexCloseBrace
	lexTilde
	lexEquals
	lexPlus
)

type lexeme struct {
	kind lexKind
	text string
	col  int
}

// element is one parsed pattern element before it is checked and turned
// into a parser.GrammarToken.
type element struct {
	parts []lexeme
}

type patternToken struct {
	lex  lexeme
	elem *element
}

var objectKinds = map[string]struct {
	phrase parser.PhraseKind
	multi  bool
}{
	"object":       {parser.PhraseObject, false},
	"held":         {parser.PhraseHeld, false},
	"notheld":      {parser.PhraseNotHeld, false},
	"multi":        {parser.PhraseObject, true},
	"multiheld":    {parser.PhraseHeld, true},
	"multinotheld": {parser.PhraseNotHeld, true},
	"anything":     {parser.PhraseAnything, false},
	"parent":       {parser.PhraseParent, false},
}

func lexPattern(pattern string) ([]pc.Token[patternToken], error) {
	var out []pc.Token[patternToken]
	runes := []rune(pattern)
	emit := func(kind lexKind, text string, col int) {
		out = append(out, pc.Token[patternToken]{
			Type: "lexeme",
			Pos:  &pc.Pos{Line: 1, Col: col + 1, Index: len(out)},
			Val:  patternToken{lex: lexeme{kind: kind, text: text, col: col + 1}},
			Raw:  text,
		})
	}
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
			continue
		case isWordRune(r):
			start := i
			for i < len(runes) && isWordRune(runes[i]) {
				i++
			}
			emit(lexWord, string(runes[start:i]), start)
			continue
		}
		kind, ok := map[rune]lexKind{
			':': lexColon, '(': lexOpenParen, ')': lexCloseParen,
			'{': lexOpenBrace, '}': lexCloseBrace, '~': lexTilde,
			'=': lexEquals, '+': lexPlus,
		}[r]
		if !ok {
			return nil, fmt.Errorf("unexpected %q at column %d", r, i+1)
		}
		emit(kind, string(r), i)
		i++
	}
	return out, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '_' || r == '-' || r == '\''
}

func lex(name string, kind lexKind) pc.Parser[patternToken] {
	return func(pctx *pc.ParseContext[patternToken], tokens []pc.Token[patternToken]) (int, []pc.Token[patternToken], error) {
		if len(tokens) > 0 && tokens[0].Val.elem == nil && tokens[0].Val.lex.kind == kind {
			return 1, tokens[:1], nil
		}
		return 0, nil, pc.ErrNotMatch
	}
}

var (
	word       = lex("word", lexWord)
	colon      = lex("colon", lexColon)
	openParen  = lex("(", lexOpenParen)
	closeParen = lex(")", lexCloseParen)
	openBrace  = lex("{", lexOpenBrace)
	closeBrace = lex("}", lexCloseBrace)
	tilde      = lex("~", lexTilde)
	equals     = lex("=", lexEquals)
	plus       = lex("+", lexPlus)

	filter = pc.Or(
		pc.Seq(openParen, pc.Optional(tilde), word, closeParen),
		pc.Seq(openBrace, word, closeBrace),
		pc.Seq(equals, word),
	)

	patternElement = pc.Trans(
		pc.Seq(pc.Optional(pc.Seq(word, colon)), word, pc.Optional(filter), pc.Optional(plus)),
		func(pctx *pc.ParseContext[patternToken], src []pc.Token[patternToken]) ([]pc.Token[patternToken], error) {
			elem := &element{}
			for _, t := range src {
				elem.parts = append(elem.parts, t.Val.lex)
			}
			tok := pc.Token[patternToken]{Type: "element", Val: patternToken{elem: elem}}
			if len(src) > 0 {
				tok.Pos = src[0].Pos
			}
			return []pc.Token[patternToken]{tok}, nil
		},
	)

	patternElements = pc.ZeroOrMore("pattern elements", patternElement)
)

// compiledToken is a grammar token still waiting for its identity object to
// be looked up in the world.
type compiledToken struct {
	parser.GrammarToken
	identity string
}

// compilePattern turns a pattern string into grammar tokens.
func compilePattern(pattern string) ([]compiledToken, error) {
	tokens, err := lexPattern(pattern)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	pctx := pc.NewParseContext[patternToken]()
	consumed, parsed, err := patternElements(pctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("unexpected pattern syntax: %w", err)
	}
	if consumed < len(tokens) {
		t := tokens[consumed].Val.lex
		return nil, fmt.Errorf("unexpected %q at column %d", t.text, t.col)
	}
	var out []compiledToken
	for _, t := range parsed {
		if t.Val.elem == nil {
			continue
		}
		ct, err := t.Val.elem.compile()
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}

func (e *element) compile() (compiledToken, error) {
	parts := e.parts
	var ct compiledToken
	indirect := false
	if len(parts) >= 2 && parts[1].kind == lexColon {
		if parts[0].text != "x" {
			return ct, fmt.Errorf("unknown role %q at column %d", parts[0].text, parts[0].col)
		}
		indirect = true
		parts = parts[2:]
	}
	if len(parts) == 0 || parts[0].kind != lexWord {
		return ct, fmt.Errorf("malformed element")
	}
	head := parts[0]
	mods := parts[1:]
	name := strings.ToLower(head.text)

	switch name {
	case "number", "string":
		if indirect || len(mods) > 0 {
			return ct, fmt.Errorf("%s at column %d takes no role or modifier", name, head.col)
		}
		ct.Kind = parser.GrammarNumber
		if name == "string" {
			ct.Kind = parser.GrammarString
		}
		return ct, nil
	}

	kind, isObject := objectKinds[name]
	if !isObject {
		if indirect || len(mods) > 0 {
			return ct, fmt.Errorf("unknown object kind %q at column %d", head.text, head.col)
		}
		for _, alt := range strings.Split(head.text, "/") {
			if alt == "" {
				return ct, fmt.Errorf("empty alternative in %q at column %d", head.text, head.col)
			}
			ct.Literals = append(ct.Literals, alt)
		}
		ct.Kind = parser.GrammarWord
		return ct, nil
	}

	ct.Kind = parser.GrammarObject
	ct.Phrase = kind.phrase
	ct.Multi = kind.multi
	ct.Indirect = indirect
	for i := 0; i < len(mods); i++ {
		m := mods[i]
		switch m.kind {
		case lexOpenParen:
			i++
			if mods[i].kind == lexTilde {
				ct.Negate = true
				i++
			}
			ct.Attribute = mods[i].text
			i++
		case lexOpenBrace:
			ct.Routine = mods[i+1].text
			i += 2
		case lexEquals:
			ct.identity = mods[i+1].text
			i++
		case lexPlus:
			ct.Deep = true
		}
	}
	return ct, nil
}
