package parser

import (
	"fmt"

	"go.uber.org/zap"
)

// disambiguate asks the player to choose between cands. Each answer may only
// shrink the set; an answer that does not is the end of it.
func (p *Parser) disambiguate(s *session, gt *GrammarToken, cands []candidate, noun string) ([]candidate, error) {
	if p.prompter == nil {
		return nil, p.ambiguous(cands, noun, false)
	}
	p.prompting = true
	defer func() { p.prompting = false }()

	for round := 1; len(cands) > 1; round++ {
		if p.maxRounds > 0 && round > p.maxRounds {
			return nil, p.ambiguous(cands, noun, true)
		}
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		question := p.ambiguous(cands, noun, false).Error()
		reply, err := p.prompter.Ask(s.ctx, question)
		if err != nil {
			return nil, fmt.Errorf("disambiguation prompt: %w", err)
		}
		narrowed, all, err := p.narrow(s, gt, cands, reply)
		if err != nil {
			return nil, err
		}
		s.log.Debug("disambiguation round",
			zap.Int("round", round),
			zap.String("reply", reply),
			zap.Int("before", len(cands)),
			zap.Int("after", len(narrowed)))
		if all {
			return cands, nil
		}
		if len(narrowed) == 0 || len(narrowed) >= len(cands) {
			return nil, p.ambiguous(cands, noun, true)
		}
		cands = narrowed
	}
	return cands, nil
}

func (p *Parser) ambiguous(cands []candidate, noun string, asked bool) *Failure {
	f := &Failure{Kind: AmbiguousChoice, Word: noun, Asked: asked}
	for _, c := range cands {
		f.Candidates = append(f.Candidates, c.obj)
		f.Names = append(f.Names, p.world.Name(c.obj))
	}
	return f
}

// narrow applies one reply to the candidate list. The reply is tokenised and
// looked up on its own; it never starts a new command.
func (p *Parser) narrow(s *session, gt *GrammarToken, cands []candidate, reply string) ([]candidate, bool, error) {
	tokens := tokenise(reply)
	if len(tokens) > 0 && p.tables.Words.isOops(tokens[0]) {
		return nil, false, fail(CorrectionNotAllowed)
	}
	if i := resolveWords(tokens, p.tables.Dictionary); i >= 0 {
		return nil, false, &Failure{
			Kind:       UnknownWord,
			Word:       tokens[i].Raw,
			Suggestion: p.tables.Dictionary.Suggest(tokens[i].Text),
		}
	}
	tokens = normaliseTokens(tokens, p.tables)

	words := &p.tables.Words
	var content []Token
	for _, t := range tokens {
		switch {
		case t.ID <= WordNone:
		case words.isAll(t.ID):
			if gt.Multi {
				return cands, true, nil
			}
		case words.structural(t.ID):
		default:
			content = append(content, t)
		}
	}
	if len(content) == 0 {
		return nil, false, nil
	}

	var out []candidate
	for _, c := range cands {
		if p.hasAllWords(c.obj, content) {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out, false, nil
	}
	// Replies like "the brass one" carry words no candidate has; fall back to
	// the last word that singles one out.
	for i := len(content) - 1; i >= 0; i-- {
		var hit []candidate
		for _, c := range cands {
			if p.hasAllWords(c.obj, content[i:i+1]) {
				hit = append(hit, c)
			}
		}
		if len(hit) == 1 {
			return hit, false, nil
		}
	}
	return nil, false, nil
}
