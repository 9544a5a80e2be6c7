package parser

import (
	"context"

	"go.uber.org/zap"
)

// Parser turns player input into commands against one set of story tables.
// It keeps the state that outlives a single line (the line an oops would
// correct, the objects "it" refers to), so a Parser belongs to one player
// and is not safe for concurrent use.
type Parser struct {
	tables    *Tables
	world     World
	prompter  Prompter
	log       *zap.Logger
	maxRounds int

	lastLine    []Token
	oopsAt      int
	lastObjects []ObjectRef
	correcting  bool
	prompting   bool
}

type Option func(*Parser)

func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// WithPrompter enables interactive disambiguation. Without one, an
// ambiguous phrase fails with AmbiguousChoice.
func WithPrompter(pr Prompter) Option {
	return func(p *Parser) {
		p.prompter = pr
	}
}

// WithMaxPromptRounds caps the number of disambiguation questions per
// phrase. Zero means ask for as long as each answer narrows the choice.
func WithMaxPromptRounds(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.maxRounds = n
		}
	}
}

func New(tables *Tables, world World, opts ...Option) *Parser {
	p := &Parser{
		tables: tables,
		world:  world,
		log:    zap.NewNop(),
		oopsAt: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Tables() *Tables {
	return p.tables
}

// Parse resolves one line. A line starting with an oops word is treated as
// a correction of the previous line's unknown word.
func (p *Parser) Parse(ctx context.Context, line string) (Command, error) {
	tokens := tokenise(line)
	if len(tokens) > 0 && p.tables.Words.isOops(tokens[0]) {
		return p.correct(ctx, tokens[1:])
	}
	return p.parseTokens(ctx, tokens)
}

// CorrectLastWord replaces the unknown word of the previous line and parses
// that line again from scratch.
func (p *Parser) CorrectLastWord(ctx context.Context, word string) (Command, error) {
	return p.correct(ctx, tokenise(word))
}

func (p *Parser) correct(ctx context.Context, words []Token) (Command, error) {
	if p.correcting || p.prompting {
		return Command{}, fail(CorrectionNotAllowed)
	}
	if p.oopsAt < 0 || p.oopsAt >= len(p.lastLine) {
		return Command{}, fail(MustCorrectFirst)
	}
	if len(words) != 1 {
		return Command{}, fail(OneWordAtATime)
	}
	line := cloneTokens(p.lastLine)
	p.log.Debug("correcting word",
		zap.String("from", line[p.oopsAt].Raw),
		zap.String("to", words[0].Raw))
	line[p.oopsAt] = words[0]

	p.correcting = true
	defer func() { p.correcting = false }()
	return p.parseTokens(ctx, line)
}

func (p *Parser) parseTokens(ctx context.Context, tokens []Token) (Command, error) {
	if len(tokens) == 0 || onlyPunctuation(tokens) {
		return Command{}, fail(Empty)
	}
	s := p.newSession(ctx)

	pristine := cloneTokens(tokens)
	if i := resolveWords(tokens, p.tables.Dictionary); i >= 0 {
		p.lastLine = pristine
		p.oopsAt = i
		f := &Failure{
			Kind:       UnknownWord,
			Word:       tokens[i].Raw,
			Suggestion: p.tables.Dictionary.Suggest(tokens[i].Text),
		}
		s.log.Debug("unknown word", zap.String("word", f.Word), zap.String("suggestion", f.Suggestion))
		return Command{}, f
	}
	p.oopsAt = -1

	tokens = normaliseTokens(tokens, p.tables)
	sentence, rest := splitSentence(tokens)
	if len(sentence) == 0 {
		return Command{}, fail(Empty)
	}
	s.tokens = sentence
	s.rest = rest
	s.log.Debug("normalised", zap.String("sentence", joinWords(sentence)), zap.Int("remaining", len(rest)))

	cmd, err := p.matchVerb(s)
	if err != nil {
		s.log.Debug("parse failed", zap.Error(err))
		return Command{}, err
	}
	if len(cmd.Objects) > 0 {
		p.lastObjects = append([]ObjectRef(nil), cmd.Objects...)
	}
	s.log.Debug("resolved",
		zap.String("verb", cmd.VerbWord),
		zap.String("action", cmd.Action),
		zap.Ints("objects", refsToInts(cmd.Objects)),
		zap.Int("indirect", int(cmd.Indirect)))
	return cmd, nil
}

func refsToInts(refs []ObjectRef) []int {
	out := make([]int, len(refs))
	for i, r := range refs {
		out[i] = int(r)
	}
	return out
}
