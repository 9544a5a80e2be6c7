package parser

type compoundKey struct {
	first, second WordID
}

// Synonyms is the lexical rewrite table. Replacement targets are always
// terminal (never themselves replaced or removed), which keeps a normalised
// sequence stable under a second pass.
type Synonyms struct {
	replace   map[WordID]WordID
	remove    map[WordID]bool
	compounds map[compoundKey]WordID
}

func NewSynonyms() *Synonyms {
	return &Synonyms{
		replace:   make(map[WordID]WordID),
		remove:    make(map[WordID]bool),
		compounds: make(map[compoundKey]WordID),
	}
}

func (s *Synonyms) Replacement(id WordID) (WordID, bool) {
	to, ok := s.replace[id]
	return to, ok
}

func (s *Synonyms) Removed(id WordID) bool {
	return s.remove[id]
}

func (s *Synonyms) Compound(first, second WordID) (WordID, bool) {
	id, ok := s.compounds[compoundKey{first, second}]
	return id, ok
}

// resolveWords looks every token up. It returns the index of the first
// unknown word, or -1.
func resolveWords(tokens []Token, dict *Dictionary) int {
	for i := range tokens {
		t := &tokens[i]
		if t.Literal || t.Number || isPunctuation(*t) {
			continue
		}
		id := dict.Lookup(t.Text)
		if id == WordUnknown {
			t.ID = WordUnknown
			return i
		}
		t.ID = id
		t.Text = dict.Word(id)
	}
	return -1
}

// normaliseTokens applies synonym, removal and compound rules until nothing
// changes, then settles sentence punctuation.
func normaliseTokens(tokens []Token, tables *Tables) []Token {
	syn := tables.Synonyms
	dict := tables.Dictionary
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(tokens); i++ {
			t := &tokens[i]
			if t.Literal || t.Number || t.ID <= WordNone {
				continue
			}
			if to, ok := syn.Replacement(t.ID); ok && to != t.ID {
				t.ID = to
				t.Text = dict.Word(to)
				changed = true
			}
			if syn.Removed(t.ID) {
				tokens = append(tokens[:i], tokens[i+1:]...)
				i--
				changed = true
				continue
			}
			if i+1 < len(tokens) {
				next := tokens[i+1]
				if next.Literal || next.Number {
					continue
				}
				if id, ok := syn.Compound(t.ID, next.ID); ok {
					t.ID = id
					t.Text = dict.Word(id)
					t.Raw = t.Raw + " " + next.Raw
					tokens = append(tokens[:i+1], tokens[i+2:]...)
					i--
					changed = true
				}
			}
		}
	}
	return settlePunctuation(tokens, tables)
}

func settlePunctuation(tokens []Token, tables *Tables) []Token {
	words := &tables.Words
	out := tokens[:0]
	for i, t := range tokens {
		if t.Literal || t.Number {
			out = append(out, t)
			continue
		}
		switch {
		case t.Text == "," && t.ID == WordNone:
			if i+1 < len(tokens) && words.isAnd(tokens[i+1].ID) {
				continue
			}
			if len(words.And) == 0 {
				t.Text = "."
				out = append(out, t)
				continue
			}
			t.ID = words.And[0]
			t.Text = tables.Dictionary.Word(t.ID)
			t.Comma = true
		case t.Text == ".":
			t.ID = WordNone
		case words.isThen(t.ID):
			t.ID = WordNone
		}
		out = append(out, t)
	}
	return out
}

// splitSentence returns the first sentence of a normalised line and the
// tokens after its terminator. Terminators around either part are dropped.
func splitSentence(tokens []Token) ([]Token, []Token) {
	tokens = trimBlank(tokens)
	for i, t := range tokens {
		if t.blank() {
			return tokens[:i], trimBlank(tokens[i+1:])
		}
	}
	return tokens, nil
}

func trimBlank(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[0].blank() {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].blank() {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
