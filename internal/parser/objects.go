package parser

import (
	"strings"

	"go.uber.org/zap"
)

type candidate struct {
	obj  ObjectRef
	kind MatchKind
}

func candidateRefs(cands []candidate) []ObjectRef {
	out := make([]ObjectRef, len(cands))
	for i, c := range cands {
		out[i] = c.obj
	}
	return out
}

// objectSet keeps insertion order and unique membership.
type objectSet struct {
	refs []ObjectRef
	seen map[ObjectRef]bool
}

func newObjectSet() *objectSet {
	return &objectSet{seen: make(map[ObjectRef]bool)}
}

func (o *objectSet) add(refs ...ObjectRef) {
	for _, r := range refs {
		if o.seen[r] {
			continue
		}
		o.seen[r] = true
		o.refs = append(o.refs, r)
	}
}

func (o *objectSet) remove(refs ...ObjectRef) {
	for _, r := range refs {
		if !o.seen[r] {
			continue
		}
		delete(o.seen, r)
		for i, have := range o.refs {
			if have == r {
				o.refs = append(o.refs[:i], o.refs[i+1:]...)
				break
			}
		}
	}
}

func (o *objectSet) has(r ObjectRef) bool {
	return o.seen[r]
}

type phraseItem struct {
	all   bool
	words []Token
}

// splitPhrase breaks an object phrase at "and" (and commas) into items, and
// at "except" into the part to add and the part to take away.
func (p *Parser) splitPhrase(tokens []Token) (include, except []phraseItem) {
	words := &p.tables.Words
	cur := &include
	var item phraseItem
	flush := func() {
		if item.all || len(item.words) > 0 {
			*cur = append(*cur, item)
		}
		item = phraseItem{}
	}
	for _, t := range tokens {
		switch {
		case words.isAnd(t.ID):
			flush()
		case words.isExcept(t.ID):
			flush()
			cur = &except
		case words.isAll(t.ID):
			item.all = true
		default:
			item.words = append(item.words, t)
		}
	}
	flush()
	return include, except
}

func (p *Parser) phraseDomain(s *session, gt *GrammarToken) Domain {
	actor := p.world.Actor()
	switch {
	case !gt.Indirect && s.container != Nothing:
		return Domain{Kind: DomainContainer, Object: s.container}
	case gt.Phrase == PhraseHeld:
		return Domain{Kind: DomainHeld, Object: actor}
	default:
		return Domain{}
	}
}

func (p *Parser) resolvePhrase(s *session, ph *phraseSpan) ([]ObjectRef, error) {
	gt := ph.tok
	s.domain = p.phraseDomain(s, gt)
	include, except := p.splitPhrase(ph.words)

	set := newObjectSet()
	for _, item := range include {
		objs, err := p.resolveItem(s, gt, item)
		if err != nil {
			return nil, err
		}
		set.add(objs...)
	}
	for _, item := range except {
		objs, err := p.resolveExcept(item, set)
		if err != nil {
			return nil, err
		}
		set.remove(objs...)
	}
	s.log.Debug("phrase resolved",
		zap.String("phrase", phraseText(ph.words)),
		zap.String("kind", gt.Phrase.String()),
		zap.Ints("objects", refsToInts(set.refs)))

	switch {
	case len(set.refs) == 0:
		return nil, &Failure{Kind: NothingToVerb, Verb: s.verbWord}
	case len(set.refs) > 1 && !gt.Multi:
		return nil, &Failure{Kind: NoMultiple, Verb: s.verbWord}
	}
	return set.refs, nil
}

func (p *Parser) resolveItem(s *session, gt *GrammarToken, item phraseItem) ([]ObjectRef, error) {
	if item.all {
		return p.expandAll(s, gt, item.words), nil
	}
	words := &p.tables.Words

	var cands []candidate
	if len(item.words) == 1 && words.isPronoun(item.words[0].ID) {
		for _, obj := range p.pronoun(item.words[0].ID) {
			cands = append(cands, candidate{obj: obj, kind: MatchNoun})
		}
	} else {
		cands = p.candidates(item.words)
	}
	if len(cands) == 0 {
		return nil, &Failure{Kind: NoSuchThing, Word: phraseText(item.words)}
	}

	kept, err := p.inScope(s, gt, cands)
	if err != nil {
		return nil, err
	}
	if len(item.words) == 1 && words.isPronoun(item.words[0].ID) {
		refs := candidateRefs(kept)
		return refs, p.checkValid(s, gt, refs)
	}

	kept = p.prefer(s, gt, kept)
	if len(kept) > 1 {
		kept, err = p.disambiguate(s, gt, kept, p.nounFor(item.words, kept))
		if err != nil {
			return nil, err
		}
	}
	refs := candidateRefs(kept)
	return refs, p.checkValid(s, gt, refs)
}

func (p *Parser) pronoun(id WordID) []ObjectRef {
	words := &p.tables.Words
	if len(p.lastObjects) == 0 {
		return nil
	}
	for _, them := range words.Them {
		if them == id {
			return p.lastObjects
		}
	}
	return p.lastObjects[:1]
}

// candidates returns every object that carries all content words of the
// item as a noun or adjective.
func (p *Parser) candidates(tokens []Token) []candidate {
	words := &p.tables.Words
	var content []Token
	for _, t := range tokens {
		if t.ID <= WordNone || words.structural(t.ID) {
			continue
		}
		content = append(content, t)
	}
	if len(content) == 0 {
		return nil
	}
	var out []candidate
	for _, obj := range p.world.Objects() {
		kind := MatchAdjective
		ok := true
		for _, t := range content {
			noun := p.world.HasWord(obj, t.ID, MatchNoun)
			if !noun && !p.world.HasWord(obj, t.ID, MatchAdjective) {
				ok = false
				break
			}
			if noun {
				kind = MatchNoun
			}
		}
		if ok {
			out = append(out, candidate{obj: obj, kind: kind})
		}
	}
	return out
}

func (p *Parser) hasAllWords(obj ObjectRef, tokens []Token) bool {
	for _, t := range tokens {
		if !p.world.HasWord(obj, t.ID, MatchNoun) && !p.world.HasWord(obj, t.ID, MatchAdjective) {
			return false
		}
	}
	return true
}

const (
	scopeUnavailable = iota
	scopeOutside
	scopeOK
)

func (p *Parser) scopeStage(s *session, gt *GrammarToken, obj ObjectRef) int {
	if gt.Phrase != PhraseAnything && !p.world.IsAvailable(obj, s.domain) {
		return scopeUnavailable
	}
	if !p.inDomain(s.domain, obj, gt.Deep) {
		return scopeOutside
	}
	return scopeOK
}

// inDomain checks obj against d. A deep phrase also reaches one level
// further down, into the contents of held things or of the container's
// contents, matching what a deep "all" expands to.
func (p *Parser) inDomain(d Domain, obj ObjectRef, deep bool) bool {
	switch d.Kind {
	case DomainHeld, DomainContainer:
		parent := p.world.Parent(obj)
		if parent == d.Object {
			return true
		}
		return deep && parent != Nothing && p.world.Parent(parent) == d.Object
	case DomainParentOf:
		return p.world.Parent(obj) == p.world.Parent(d.Object)
	default:
		return true
	}
}

// inScope drops candidates that are out of reach. When none survive, the
// failure describes the candidate that got furthest.
func (p *Parser) inScope(s *session, gt *GrammarToken, cands []candidate) ([]candidate, error) {
	var kept []candidate
	best, bestObj := -1, Nothing
	for _, c := range cands {
		stage := p.scopeStage(s, gt, c.obj)
		if stage == scopeOK {
			kept = append(kept, c)
			continue
		}
		if stage > best {
			best, bestObj = stage, c.obj
		}
	}
	if len(kept) > 0 {
		return kept, nil
	}
	f := &Failure{Object: bestObj, ObjectName: p.world.Name(bestObj)}
	switch {
	case best == scopeOutside && s.domain.Kind == DomainHeld:
		f.Kind = DontHave
	case best == scopeOutside && s.domain.Kind == DomainContainer:
		f.Kind = DontSeeThere
	case best == scopeOutside:
		f.Kind = DontSee
	case p.world.IsKnown(bestObj):
		f.Kind = DontSee
	default:
		f.Kind = HaventSeen
	}
	return nil, f
}

// prefer narrows an ambiguous candidate list. Each rule applies only when
// it leaves at least one candidate, in this order: passes the syntax's
// validity filter, matched a noun rather than only adjectives, is available
// (open-ended phrases only), is not already held (notheld phrases only).
func (p *Parser) prefer(s *session, gt *GrammarToken, cands []candidate) []candidate {
	narrow := func(keep func(candidate) bool) {
		if len(cands) < 2 {
			return
		}
		var out []candidate
		for _, c := range cands {
			if keep(c) {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			cands = out
		}
	}
	actor := p.world.Actor()
	if gt.filtered() {
		narrow(func(c candidate) bool { return p.validObject(gt, c.obj) })
	}
	narrow(func(c candidate) bool { return c.kind == MatchNoun })
	if gt.Phrase == PhraseAnything {
		narrow(func(c candidate) bool { return p.world.IsAvailable(c.obj, s.domain) })
	}
	if gt.Phrase == PhraseNotHeld {
		narrow(func(c candidate) bool { return p.world.Parent(c.obj) != actor })
	}
	return cands
}

// expandAll lists what "all" covers under the current domain. Without a
// domain that is everything around the actor. Objects the syntax would
// reject are left out silently.
func (p *Parser) expandAll(s *session, gt *GrammarToken, words []Token) []ObjectRef {
	actor := p.world.Actor()
	var pool []ObjectRef
	switch s.domain.Kind {
	case DomainContainer, DomainHeld:
		pool = p.world.Children(s.domain.Object)
	default:
		pool = p.world.Children(p.world.Parent(actor))
	}
	if gt.Deep {
		// One level only: range works on the original pool.
		for _, obj := range pool {
			pool = append(pool, p.world.Children(obj)...)
		}
	}

	var content []Token
	for _, t := range words {
		if t.ID > WordNone && !p.tables.Words.structural(t.ID) {
			content = append(content, t)
		}
	}
	var out []ObjectRef
	for _, obj := range pool {
		switch {
		case obj == actor || obj == s.indirect:
			continue
		case gt.Phrase == PhraseNotHeld && p.world.Parent(obj) == actor:
			continue
		case !p.world.IsAvailable(obj, s.domain):
			continue
		case !p.inDomain(s.domain, obj, gt.Deep):
			continue
		case len(content) > 0 && !p.hasAllWords(obj, content):
			continue
		case !p.validObject(gt, obj):
			continue
		}
		out = append(out, obj)
	}
	return out
}

// resolveExcept finds the members of set an "except" item names.
func (p *Parser) resolveExcept(item phraseItem, set *objectSet) ([]ObjectRef, error) {
	if item.all {
		return append([]ObjectRef(nil), set.refs...), nil
	}
	var cands []candidate
	if len(item.words) == 1 && p.tables.Words.isPronoun(item.words[0].ID) {
		for _, obj := range p.pronoun(item.words[0].ID) {
			cands = append(cands, candidate{obj: obj})
		}
	} else {
		cands = p.candidates(item.words)
	}
	if len(cands) == 0 {
		return nil, &Failure{Kind: NoSuchThing, Word: phraseText(item.words)}
	}
	var out []ObjectRef
	for _, c := range cands {
		if set.has(c.obj) {
			out = append(out, c.obj)
		}
	}
	return out, nil
}

// nounFor picks the word to use in "Which ... do you mean".
func (p *Parser) nounFor(words []Token, cands []candidate) string {
	if len(words) == 0 {
		return ""
	}
	for i := len(words) - 1; i >= 0; i-- {
		if p.world.HasWord(cands[0].obj, words[i].ID, MatchNoun) {
			return words[i].Text
		}
	}
	return words[len(words)-1].Text
}

func phraseText(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}
