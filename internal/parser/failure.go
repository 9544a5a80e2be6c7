package parser

import (
	"errors"
	"fmt"
	"strings"
)

type FailureKind int

const (
	Empty FailureKind = iota
	UnknownWord
	NeedsVerb
	NoMultiple
	Nonsensical
	NoSuchThing
	NothingToVerb
	HaventSeen
	DontSee
	DontSeeThere
	DontHave
	WrongObject
	MustCorrectFirst
	OneWordAtATime
	CorrectionNotAllowed
	AmbiguousChoice
)

var failureKindNames = [...]string{
	Empty:                "empty",
	UnknownWord:          "unknown_word",
	NeedsVerb:            "needs_verb",
	NoMultiple:           "no_multiple",
	Nonsensical:          "nonsensical",
	NoSuchThing:          "no_such_thing",
	NothingToVerb:        "nothing_to_verb",
	HaventSeen:           "havent_seen",
	DontSee:              "dont_see",
	DontSeeThere:         "dont_see_there",
	DontHave:             "dont_have",
	WrongObject:          "wrong_object",
	MustCorrectFirst:     "must_correct_first",
	OneWordAtATime:       "one_word_at_a_time",
	CorrectionNotAllowed: "correction_not_allowed",
	AmbiguousChoice:      "ambiguous_choice",
}

func (k FailureKind) String() string {
	if k < 0 || int(k) >= len(failureKindNames) {
		return fmt.Sprintf("failure(%d)", int(k))
	}
	return failureKindNames[k]
}

func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Failure is the typed result of a line that did not become a command.
// Which fields are set depends on Kind; Error renders the player message.
type Failure struct {
	Kind       FailureKind `json:"kind"`
	Word       string      `json:"word,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
	Verb       string      `json:"verb,omitempty"`
	Object     ObjectRef   `json:"object,omitempty"`
	ObjectName string      `json:"object_name,omitempty"`
	Candidates []ObjectRef `json:"candidates,omitempty"`
	Names      []string    `json:"names,omitempty"`
	Asked      bool        `json:"asked,omitempty"`
}

func (f *Failure) Error() string {
	switch f.Kind {
	case Empty:
		return "What?"
	case UnknownWord:
		return fmt.Sprintf("You can't use the word %q.", f.Word)
	case NeedsVerb:
		return "Better start with a verb."
	case NoMultiple:
		return fmt.Sprintf("You can't %s multiple objects.", f.Verb)
	case Nonsensical:
		return "That doesn't make any sense."
	case NoSuchThing:
		return fmt.Sprintf("You haven't seen any %q, nor are you likely to in the near future even if such a thing exists.", f.Word)
	case NothingToVerb:
		return fmt.Sprintf("Nothing to %s.", f.Verb)
	case HaventSeen:
		return "You haven't seen anything like that."
	case DontSee:
		return "You don't see that."
	case DontSeeThere:
		return "You don't see that there."
	case DontHave:
		return "You don't have that."
	case WrongObject:
		return fmt.Sprintf("You can't do that with %s.", theName(f.ObjectName))
	case MustCorrectFirst:
		return "You'll have to make a mistake first."
	case OneWordAtATime:
		return "You can only correct one word at a time."
	case CorrectionNotAllowed:
		return "You can't correct that now."
	case AmbiguousChoice:
		if f.Asked {
			return "You'll have to be a little more specific."
		}
		return whichQuestion(f.Word, f.Names)
	default:
		return f.Kind.String()
	}
}

func whichQuestion(noun string, names []string) string {
	if noun == "" {
		noun = "one"
	}
	the := make([]string, 0, len(names))
	for _, n := range names {
		the = append(the, theName(n))
	}
	return fmt.Sprintf("Which %s do you mean, %s?", noun, orList(the))
}

func theName(name string) string {
	if name == "" {
		return "that"
	}
	return "the " + name
}

func orList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}
}

func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsEmpty reports whether err is the blank-line failure, which callers
// usually answer by prompting again without a message.
func IsEmpty(err error) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == Empty
}

func fail(kind FailureKind) *Failure {
	return &Failure{Kind: kind}
}
