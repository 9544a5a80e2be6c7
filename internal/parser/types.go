package parser

import (
	"context"
	"strings"
)

// WordID identifies one dictionary spelling.
type WordID int

const (
	WordNone    WordID = 0
	WordUnknown WordID = -1
)

// ObjectRef identifies an in-world object. The parser never looks inside it.
type ObjectRef int

const Nothing ObjectRef = 0

type MatchKind int

const (
	MatchNoun MatchKind = iota
	MatchAdjective
)

type DomainKind int

const (
	DomainNone DomainKind = iota
	DomainHeld
	DomainParentOf
	DomainContainer
)

// Domain restricts which objects an object phrase may resolve to.
// DomainHeld and DomainParentOf are relative to Object (normally the actor);
// DomainContainer admits only direct children of Object.
type Domain struct {
	Kind   DomainKind
	Object ObjectRef
}

type Token struct {
	Text    string
	Raw     string
	ID      WordID
	Value   int
	Number  bool
	Literal bool
	Comma   bool
}

func (t Token) blank() bool {
	return t.ID == WordNone && !t.Number && !t.Literal
}

// word renders the token so that tokenising it again yields the same token.
func (t Token) word() string {
	switch {
	case t.Literal:
		return `"` + t.Raw + `"`
	case t.Comma:
		return ","
	case t.Number:
		return t.Raw
	default:
		return t.Text
	}
}

// Command is a resolved sentence. Actor is Nothing unless the player
// addressed a character ("bob, take lamp").
type Command struct {
	Actor     ObjectRef   `json:"actor,omitempty"`
	Verb      WordID      `json:"verb"`
	VerbWord  string      `json:"verb_word"`
	Action    string      `json:"action"`
	Objects   []ObjectRef `json:"objects,omitempty"`
	Indirect  ObjectRef   `json:"indirect,omitempty"`
	Numbers   []int       `json:"numbers,omitempty"`
	Text      string      `json:"text,omitempty"`
	Words     []string    `json:"words"`
	Remaining []string    `json:"remaining,omitempty"`
	Meta      bool        `json:"meta,omitempty"`
}

func (c Command) String() string {
	return strings.Join(c.Words, " ")
}

// RemainingLine rebuilds the text left after the first sentence, ready to be
// handed back to Parse.
func (c Command) RemainingLine() string {
	return strings.Join(c.Remaining, " ")
}

// World is the game-state collaborator. Implementations answer from the
// story's object tree; the parser only reads through it.
type World interface {
	Objects() []ObjectRef
	Actor() ObjectRef
	Name(obj ObjectRef) string
	HasWord(obj ObjectRef, word WordID, kind MatchKind) bool
	Parent(obj ObjectRef) ObjectRef
	Children(obj ObjectRef) []ObjectRef
	IsAvailable(obj ObjectRef, domain Domain) bool
	IsKnown(obj ObjectRef) bool
	IsCharacter(obj ObjectRef) bool
	TestAttribute(obj ObjectRef, attr string, negate bool) bool
	RunPredicate(routine string, obj ObjectRef) bool
}

// Prompter asks the player a question and blocks for one line of reply.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

type PromptFunc func(ctx context.Context, question string) (string, error)

func (f PromptFunc) Ask(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}
