package parser

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// session is the scratch state of one Parse or CorrectLastWord call.
type session struct {
	ctx context.Context
	id  string
	log *zap.Logger

	tokens []Token
	rest   []Token
	prefix []Token

	actor ObjectRef

	verb          *Verb
	verbWord      string
	domain        Domain
	indirect      ObjectRef
	container     ObjectRef
	missingObject bool

	objectWords map[WordID]bool
}

func (p *Parser) newSession(ctx context.Context) *session {
	if ctx == nil {
		ctx = context.Background()
	}
	id := uuid.NewString()
	return &session{
		ctx:         ctx,
		id:          id,
		log:         p.log.With(zap.String("session", id)),
		objectWords: make(map[WordID]bool),
	}
}

func (s *session) gotVerb(v *Verb, word string) {
	s.verb = v
	s.verbWord = word
	s.domain = Domain{}
	s.indirect = Nothing
	s.container = Nothing
}

// isObjectWord reports whether any object carries id as a noun or
// adjective. Answers are cached for the session.
func (p *Parser) isObjectWord(s *session, id WordID) bool {
	if known, ok := s.objectWords[id]; ok {
		return known
	}
	found := false
	for _, obj := range p.world.Objects() {
		if p.world.HasWord(obj, id, MatchNoun) || p.world.HasWord(obj, id, MatchAdjective) {
			found = true
			break
		}
	}
	s.objectWords[id] = found
	return found
}

// plausible reports whether t could belong to an object phrase.
func (p *Parser) plausible(s *session, t Token) bool {
	if t.Literal || t.Number || t.ID <= WordNone {
		return false
	}
	words := &p.tables.Words
	if words.structural(t.ID) || words.isPronoun(t.ID) {
		return true
	}
	return p.isObjectWord(s, t.ID)
}
