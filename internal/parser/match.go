package parser

import (
	"slices"

	"go.uber.org/zap"
)

type phraseSpan struct {
	tok   *GrammarToken
	words []Token
}

type syntaxMatch struct {
	syntax  *Syntax
	phrases []phraseSpan
	numbers []int
	text    string
}

type matchMark struct {
	phrases, numbers int
	text             string
}

func (m *syntaxMatch) mark() matchMark {
	return matchMark{phrases: len(m.phrases), numbers: len(m.numbers), text: m.text}
}

func (m *syntaxMatch) reset(mk matchMark) {
	m.phrases = m.phrases[:mk.phrases]
	m.numbers = m.numbers[:mk.numbers]
	m.text = mk.text
}

// matchVerb finds the verb entry for the sentence. When the first word is no
// verb, the sentence may be addressed to a character ("bob, take lamp"); the
// name is stripped and matching runs once more on the rest.
func (p *Parser) matchVerb(s *session) (Command, error) {
	if cmd, matched, err := p.tryVerbs(s); matched {
		return cmd, err
	}
	if n, actor, ok := p.addressedCharacter(s); ok {
		s.log.Debug("addressing character", zap.Int("actor", int(actor)), zap.String("name", p.world.Name(actor)))
		s.prefix = s.tokens[:n]
		s.tokens = s.tokens[n:]
		s.actor = actor
		if len(s.tokens) > 0 {
			if cmd, matched, err := p.tryVerbs(s); matched {
				return cmd, err
			}
		}
	}
	for _, part := range [][]Token{s.prefix, s.tokens} {
		for _, t := range part {
			if p.tables.Grammar.isVerbWord(t.ID) {
				return Command{}, fail(Nonsensical)
			}
		}
	}
	return Command{}, fail(NeedsVerb)
}

// tryVerbs walks every verb entry carrying the first word, in table order,
// so homonymous verbs with different syntaxes are all tried.
func (p *Parser) tryVerbs(s *session) (Command, bool, error) {
	first := s.tokens[0]
	if first.ID <= WordNone {
		return Command{}, false, nil
	}
	matched := false
	s.missingObject = false
	verbs := p.tables.Grammar.Verbs
	for vi := range verbs {
		v := &verbs[vi]
		if !slices.Contains(v.Words, first.ID) {
			continue
		}
		matched = true
		s.gotVerb(v, first.Text)
		for si := range v.Syntaxes {
			m := syntaxMatch{syntax: &v.Syntaxes[si]}
			if !p.matchFrom(s, &m, 0, s.tokens[1:], 0) {
				continue
			}
			s.log.Debug("syntax matched",
				zap.Int("entry", vi),
				zap.Int("syntax", si),
				zap.String("action", m.syntax.Action))
			cmd, err := p.matchObjects(s, &m)
			return cmd, true, err
		}
	}
	if !matched {
		return Command{}, false, nil
	}
	if s.missingObject {
		return Command{}, true, &Failure{Kind: NothingToVerb, Verb: first.Text}
	}
	return Command{}, true, fail(Nonsensical)
}

// matchFrom matches grammar tokens from g against input from i. Object
// phrases take the longest plausible run first and give words back when
// the rest of the alternative does not fit.
func (p *Parser) matchFrom(s *session, m *syntaxMatch, g int, input []Token, i int) bool {
	toks := m.syntax.Tokens
	if g == len(toks) {
		return i == len(input)
	}
	gt := &toks[g]
	if gt.Kind != GrammarObject {
		if i >= len(input) || !matchToken(gt, input[i]) {
			return false
		}
		mk := m.mark()
		switch gt.Kind {
		case GrammarNumber:
			m.numbers = append(m.numbers, input[i].Value)
		case GrammarString:
			m.text = input[i].Raw
		}
		if p.matchFrom(s, m, g+1, input, i+1) {
			return true
		}
		m.reset(mk)
		return false
	}

	var next *GrammarToken
	if g+1 < len(toks) {
		next = &toks[g+1]
	}
	end := i
	for end < len(input) && !bounds(next, input[end]) && p.plausible(s, input[end]) {
		end++
	}
	if end == i {
		if i >= len(input) {
			s.missingObject = true
		}
		return false
	}
	adjacent := next != nil && next.Kind == GrammarObject
	for j := end; j > i; j-- {
		if adjacent && !p.namesSomething(input[i:j]) {
			continue
		}
		mk := m.mark()
		m.phrases = append(m.phrases, phraseSpan{tok: gt, words: input[i:j]})
		if p.matchFrom(s, m, g+1, input, j) {
			return true
		}
		m.reset(mk)
	}
	return false
}

// namesSomething reports whether a run of words could stand on its own as
// an object phrase. Used to split two adjacent phrases ("give bob coin").
func (p *Parser) namesSomething(tokens []Token) bool {
	words := &p.tables.Words
	for _, t := range tokens {
		if words.structural(t.ID) || words.isPronoun(t.ID) {
			return true
		}
	}
	return len(p.candidates(tokens)) > 0
}

func matchToken(gt *GrammarToken, t Token) bool {
	switch gt.Kind {
	case GrammarWord:
		return !t.Literal && !t.Number && slices.Contains(gt.Words, t.ID)
	case GrammarNumber:
		return t.Number
	case GrammarString:
		return t.Literal
	}
	return false
}

// bounds reports whether t is where the grammar token after an object
// phrase starts, which ends the phrase.
func bounds(next *GrammarToken, t Token) bool {
	if next == nil || next.Kind == GrammarObject {
		return false
	}
	return matchToken(next, t)
}

// addressedCharacter looks for a leading character name. It returns the
// number of tokens the name (and a following comma) covers.
func (p *Parser) addressedCharacter(s *session) (int, ObjectRef, bool) {
	run := 0
	for run < len(s.tokens) {
		t := s.tokens[run]
		if t.Literal || t.Number || t.Comma || !p.isObjectWord(s, t.ID) {
			break
		}
		run++
	}
	for n := run; n > 0; n-- {
		var found []ObjectRef
		for _, c := range p.candidates(s.tokens[:n]) {
			if p.world.IsCharacter(c.obj) && p.world.IsAvailable(c.obj, Domain{}) {
				found = append(found, c.obj)
			}
		}
		if len(found) != 1 {
			continue
		}
		used := n
		if used < len(s.tokens) && s.tokens[used].Comma {
			used++
		}
		return used, found[0], true
	}
	return 0, Nothing, false
}

// matchObjects resolves the object phrases of a matched syntax. The indirect
// object goes first when it comes first, when it names the container the
// direct objects are taken from, or when the direct phrase says "all".
func (p *Parser) matchObjects(s *session, m *syntaxMatch) (Command, error) {
	var direct, indirect *phraseSpan
	indirectFirst := false
	for i := range m.phrases {
		ph := &m.phrases[i]
		if ph.tok.Indirect {
			indirect = ph
			if direct == nil {
				indirectFirst = true
			}
			continue
		}
		direct = ph
	}
	if indirect != nil && direct != nil {
		indirectFirst = indirectFirst || indirect.tok.Phrase == PhraseParent || p.usesAll(direct.words)
	}

	cmd := Command{
		Actor:    s.actor,
		Verb:     s.tokens[0].ID,
		VerbWord: s.verbWord,
		Action:   m.syntax.Action,
		Numbers:  m.numbers,
		Text:     m.text,
		Meta:     s.verb.Meta,
	}

	resolveIndirect := func() error {
		objs, err := p.resolvePhrase(s, indirect)
		if err != nil {
			return err
		}
		s.indirect = objs[0]
		cmd.Indirect = objs[0]
		if indirect.tok.Phrase == PhraseParent {
			s.container = s.indirect
		}
		return nil
	}
	resolveDirect := func() error {
		objs, err := p.resolvePhrase(s, direct)
		if err != nil {
			return err
		}
		cmd.Objects = objs
		return nil
	}

	steps := []func() error{}
	if indirect != nil && indirectFirst {
		steps = append(steps, resolveIndirect)
	}
	if direct != nil {
		steps = append(steps, resolveDirect)
	}
	if indirect != nil && !indirectFirst {
		steps = append(steps, resolveIndirect)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Command{}, err
		}
	}

	for _, t := range s.prefix {
		cmd.Words = append(cmd.Words, t.word())
	}
	for _, t := range s.tokens {
		cmd.Words = append(cmd.Words, t.word())
	}
	for _, t := range s.rest {
		cmd.Remaining = append(cmd.Remaining, t.word())
	}
	return cmd, nil
}

func (p *Parser) usesAll(words []Token) bool {
	for _, t := range words {
		if p.tables.Words.isAll(t.ID) {
			return true
		}
	}
	return false
}
