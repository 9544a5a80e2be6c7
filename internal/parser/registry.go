package parser

import (
	"errors"
	"fmt"
	"strings"
)

type SyntaxDef struct {
	Tokens []GrammarToken
	Action string
}

type VerbDef struct {
	Words    []string
	Meta     bool
	Syntaxes []SyntaxDef
}

type CompoundDef struct {
	First, Second, Result string
}

// HousekeepingDef names the structural words by spelling. Empty roles fall
// back to the English defaults.
type HousekeepingDef struct {
	And    []string
	All    []string
	Except []string
	Then   []string
	It     []string
	Them   []string
	Oops   []string
}

func DefaultHousekeeping() HousekeepingDef {
	return HousekeepingDef{
		And:    []string{"and"},
		All:    []string{"all", "everything", "both"},
		Except: []string{"except", "but"},
		Then:   []string{"then"},
		It:     []string{"it"},
		Them:   []string{"them"},
		Oops:   []string{"oops"},
	}
}

// Registry collects story definitions and builds the immutable Tables.
type Registry struct {
	dict      *Dictionary
	replace   map[WordID]WordID
	remove    map[WordID]bool
	compounds []CompoundDef
	words     Housekeeping
	verbs     []Verb
	errs      []error
}

func NewRegistry(hk HousekeepingDef) *Registry {
	def := DefaultHousekeeping()
	pick := func(v, fallback []string) []string {
		if len(v) == 0 {
			return fallback
		}
		return v
	}
	r := &Registry{
		dict:    NewDictionary(),
		replace: make(map[WordID]WordID),
		remove:  make(map[WordID]bool),
	}
	r.words = Housekeeping{
		And:    r.wordIDs(pick(hk.And, def.And)),
		All:    r.wordIDs(pick(hk.All, def.All)),
		Except: r.wordIDs(pick(hk.Except, def.Except)),
		Then:   r.wordIDs(pick(hk.Then, def.Then)),
		It:     r.wordIDs(pick(hk.It, def.It)),
		Them:   r.wordIDs(pick(hk.Them, def.Them)),
	}
	for _, w := range pick(hk.Oops, def.Oops) {
		if k := foldWord(w); k != "" {
			r.words.Oops = append(r.words.Oops, k)
		}
	}
	return r
}

func (r *Registry) wordIDs(words []string) []WordID {
	out := make([]WordID, 0, len(words))
	for _, w := range words {
		if id := r.dict.Add(w); id != WordNone {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) Dictionary() *Dictionary {
	return r.dict
}

func (r *Registry) Word(word string) WordID {
	id := r.dict.Add(word)
	if id == WordNone {
		r.errs = append(r.errs, fmt.Errorf("empty word"))
	}
	return id
}

func (r *Registry) Synonym(from, to string) {
	f, t := r.Word(from), r.Word(to)
	if f == t {
		return
	}
	r.replace[f] = t
}

func (r *Registry) Remove(words ...string) {
	for _, w := range words {
		r.remove[r.Word(w)] = true
	}
}

func (r *Registry) Compound(c CompoundDef) {
	r.Word(c.First)
	r.Word(c.Second)
	r.Word(c.Result)
	r.compounds = append(r.compounds, c)
}

func (r *Registry) RegisterVerb(v VerbDef) {
	verb := Verb{Meta: v.Meta}
	for _, w := range v.Words {
		verb.Words = append(verb.Words, r.Word(w))
	}
	name := strings.Join(v.Words, "/")
	if len(verb.Words) == 0 {
		r.errs = append(r.errs, errors.New("verb without words"))
		return
	}
	for i, sd := range v.Syntaxes {
		syn, err := r.syntax(sd)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("verb %s syntax %d: %w", name, i+1, err))
			continue
		}
		verb.Syntaxes = append(verb.Syntaxes, syn)
	}
	r.verbs = append(r.verbs, verb)
}

func (r *Registry) syntax(sd SyntaxDef) (Syntax, error) {
	syn := Syntax{Action: sd.Action, Tokens: make([]GrammarToken, len(sd.Tokens))}
	var phrases []int
	marked := 0
	for i, gt := range sd.Tokens {
		switch gt.Kind {
		case GrammarWord:
			if len(gt.Literals) == 0 {
				return Syntax{}, errors.New("word element without spellings")
			}
			gt.Words = r.wordIDs(gt.Literals)
		case GrammarObject:
			phrases = append(phrases, i)
			if gt.Indirect {
				marked++
			}
		}
		syn.Tokens[i] = gt
	}
	switch {
	case len(phrases) > 2:
		return Syntax{}, fmt.Errorf("%d object phrases, at most 2 allowed", len(phrases))
	case marked > 1:
		return Syntax{}, errors.New("more than one indirect object phrase")
	case len(phrases) == 2 && marked == 0:
		syn.Tokens[phrases[1]].Indirect = true
	case len(phrases) == 1 && marked == 1:
		return Syntax{}, errors.New("indirect object phrase without a direct one")
	}
	for _, i := range phrases {
		gt := &syn.Tokens[i]
		if gt.Indirect && gt.Multi {
			return Syntax{}, errors.New("indirect object phrase cannot take multiple objects")
		}
		if gt.Phrase == PhraseParent && !gt.Indirect {
			return Syntax{}, errors.New("parent phrase must be the indirect object")
		}
	}
	return syn, nil
}

// Tables resolves synonym chains and reports every definition error at once.
func (r *Registry) Tables() (*Tables, error) {
	syn := NewSynonyms()
	for from := range r.replace {
		to, err := r.terminal(from)
		if err != nil {
			r.errs = append(r.errs, err)
			continue
		}
		if r.remove[to] {
			r.errs = append(r.errs, fmt.Errorf("synonym %q points at removed word %q", r.dict.Word(from), r.dict.Word(to)))
			continue
		}
		syn.replace[from] = to
	}
	for id := range r.remove {
		if _, ok := r.replace[id]; ok {
			r.errs = append(r.errs, fmt.Errorf("word %q is both a synonym and removed", r.dict.Word(id)))
			continue
		}
		syn.remove[id] = true
	}
	for _, c := range r.compounds {
		first, second, result := r.dict.ID(c.First), r.dict.ID(c.Second), r.dict.ID(c.Result)
		if to, ok := syn.replace[first]; ok {
			first = to
		}
		if to, ok := syn.replace[second]; ok {
			second = to
		}
		if to, ok := syn.replace[result]; ok {
			result = to
		}
		syn.compounds[compoundKey{first, second}] = result
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	// Input is normalised before matching, so grammar words must be the
	// spellings that survive normalisation.
	canon := func(ids []WordID) {
		for i, id := range ids {
			if to, ok := syn.replace[id]; ok {
				ids[i] = to
			}
		}
	}
	for vi := range r.verbs {
		canon(r.verbs[vi].Words)
		for si := range r.verbs[vi].Syntaxes {
			for ti := range r.verbs[vi].Syntaxes[si].Tokens {
				canon(r.verbs[vi].Syntaxes[si].Tokens[ti].Words)
			}
		}
	}
	return &Tables{
		Dictionary: r.dict,
		Synonyms:   syn,
		Grammar:    &Grammar{Verbs: r.verbs},
		Words:      r.words,
	}, nil
}

func (r *Registry) terminal(from WordID) (WordID, error) {
	seen := map[WordID]bool{from: true}
	cur := from
	for {
		next, ok := r.replace[cur]
		if !ok {
			return cur, nil
		}
		if seen[next] {
			return WordNone, fmt.Errorf("synonym cycle through %q", r.dict.Word(from))
		}
		seen[next] = true
		cur = next
	}
}
