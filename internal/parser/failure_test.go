package parser

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		f    Failure
		want string
	}{
		{f: Failure{Kind: Empty}, want: "What?"},
		{f: Failure{Kind: NeedsVerb}, want: "Better start with a verb."},
		{f: Failure{Kind: NoMultiple, Verb: "examine"}, want: "You can't examine multiple objects."},
		{f: Failure{Kind: NothingToVerb, Verb: "take"}, want: "Nothing to take."},
		{f: Failure{Kind: DontHave, ObjectName: "lamp"}, want: "You don't have that."},
		{f: Failure{Kind: WrongObject, ObjectName: "brass lamp"}, want: "You can't do that with the brass lamp."},
		{f: Failure{Kind: MustCorrectFirst}, want: "You'll have to make a mistake first."},
		{
			f:    Failure{Kind: AmbiguousChoice, Word: "key", Names: []string{"brass key", "iron key", "rusty key"}},
			want: "Which key do you mean, the brass key, the iron key, or the rusty key?",
		},
		{f: Failure{Kind: AmbiguousChoice, Asked: true}, want: "You'll have to be a little more specific."},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.f.Error(), tc.f.Kind.String())
	}
}

func TestFailureHelpers(t *testing.T) {
	wrapped := fmt.Errorf("turn 3: %w", &Failure{Kind: DontSee})
	f, ok := AsFailure(wrapped)
	require.True(t, ok)
	assert.Equal(t, DontSee, f.Kind)

	assert.True(t, IsEmpty(fail(Empty)))
	assert.False(t, IsEmpty(fail(NeedsVerb)))
	assert.False(t, IsEmpty(nil))
	assert.Equal(t, "failure(99)", FailureKind(99).String())
}

func TestFailureJSON(t *testing.T) {
	b, err := json.Marshal(&Failure{Kind: NoSuchThing, Word: "brass coin"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"no_such_thing","word":"brass coin"}`, string(b))
}
