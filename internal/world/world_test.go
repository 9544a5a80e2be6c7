package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/storyparse/internal/parser"
)

func testWorld(t *testing.T, routines map[string]string) (*World, *parser.Dictionary) {
	t.Helper()
	dict := parser.NewDictionary()
	words := func(ws ...string) []parser.WordID {
		out := make([]parser.WordID, 0, len(ws))
		for _, w := range ws {
			out = append(out, dict.Add(w))
		}
		return out
	}
	r, err := NewRoutines()
	require.NoError(t, err)
	require.NoError(t, r.Compile(routines))

	specs := []ObjectSpec{
		{ID: "player", Name: "yourself", Nouns: words("me"), Parent: "hall", Known: true},
		{ID: "hall", Name: "hall", Nouns: words("hall"), Known: true},
		{ID: "lamp", Name: "brass lamp", Nouns: words("lamp"), Adjectives: words("brass"), Parent: "hall", Known: true},
		{ID: "chest", Name: "oak chest", Nouns: words("chest"), Parent: "hall", Attributes: []string{AttrContainer}, Known: true},
		{ID: "gold", Name: "gold", Nouns: words("gold"), Parent: "chest", Known: true},
		{ID: "jar", Name: "glass jar", Nouns: words("jar"), Parent: "hall", Attributes: []string{AttrContainer, AttrTransparent}, Known: true},
		{ID: "fly", Name: "fly", Nouns: words("fly"), Parent: "jar"},
		{ID: "apple", Name: "apple", Nouns: words("apple"), Parent: "player", Attributes: []string{"edible"}, Known: true},
		{ID: "ghost", Name: "ghost", Nouns: words("ghost"), Parent: "hall", Attributes: []string{AttrHidden}, Character: true},
		{ID: "cellar", Name: "cellar", Nouns: words("cellar")},
		{ID: "rat", Name: "rat", Nouns: words("rat"), Parent: "cellar", Character: true},
	}
	w, err := Build(specs, "player", WithRoutines(r))
	require.NoError(t, err)
	return w, dict
}

func TestBuildResolvesParents(t *testing.T) {
	w, dict := testWorld(t, nil)
	player, hall := w.Ref("player"), w.Ref("hall")

	assert.Equal(t, player, w.Actor())
	assert.Equal(t, hall, w.Parent(player))
	assert.Equal(t, hall, w.Location())
	assert.Equal(t, []parser.ObjectRef{w.Ref("apple")}, w.Children(player))
	assert.Equal(t, "brass lamp", w.Name(w.Ref("lamp")))
	assert.True(t, w.HasWord(w.Ref("lamp"), dict.ID("lamp"), parser.MatchNoun))
	assert.True(t, w.HasWord(w.Ref("lamp"), dict.ID("brass"), parser.MatchAdjective))
	assert.False(t, w.HasWord(w.Ref("lamp"), dict.ID("brass"), parser.MatchNoun))
	assert.Len(t, w.Objects(), 11)
}

func TestBuildReportsEveryProblem(t *testing.T) {
	_, err := Build([]ObjectSpec{
		{ID: "a", Parent: "b"},
		{ID: "b", Parent: "a"},
		{ID: "c", Parent: "nowhere"},
		{ID: "c"},
		{Name: "nameless"},
	}, "player")
	require.Error(t, err)
	for _, want := range []string{"parent chain loops", "unknown parent", "duplicate id", "missing id", "actor"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestAvailability(t *testing.T) {
	w, _ := testWorld(t, nil)
	tests := []struct {
		id   string
		want bool
	}{
		{id: "hall", want: true},
		{id: "lamp", want: true},
		{id: "apple", want: true},
		{id: "chest", want: true},
		{id: "gold", want: false},
		{id: "fly", want: true},
		{id: "ghost", want: false},
		{id: "rat", want: false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, w.IsAvailable(w.Ref(tc.id), parser.Domain{}), tc.id)
	}

	w.SetAttribute(w.Ref("chest"), AttrOpen, true)
	assert.True(t, w.IsAvailable(w.Ref("gold"), parser.Domain{}))
	w.SetAttribute(w.Ref("chest"), AttrOpen, false)
	assert.False(t, w.IsAvailable(w.Ref("gold"), parser.Domain{}))
}

func TestLocationFromInsideAnObject(t *testing.T) {
	w, _ := testWorld(t, nil)
	player, hall, jar := w.Ref("player"), w.Ref("hall"), w.Ref("jar")
	w.SetAttribute(jar, AttrOpen, true)

	require.NoError(t, w.Move(player, jar))
	assert.Equal(t, jar, w.Parent(player))
	assert.Equal(t, hall, w.Location())
	assert.True(t, w.IsAvailable(w.Ref("lamp"), parser.Domain{}))
	assert.True(t, w.IsAvailable(w.Ref("apple"), parser.Domain{}))

	require.NoError(t, w.Move(player, parser.Nothing))
	assert.Equal(t, player, w.Location())
}

func TestMove(t *testing.T) {
	w, _ := testWorld(t, nil)
	lamp, player, chest := w.Ref("lamp"), w.Ref("player"), w.Ref("chest")

	require.NoError(t, w.Move(lamp, player))
	assert.Equal(t, player, w.Parent(lamp))
	assert.Contains(t, w.Children(player), lamp)

	require.NoError(t, w.Move(lamp, chest))
	assert.False(t, w.IsAvailable(lamp, parser.Domain{}))

	assert.Error(t, w.Move(w.Ref("hall"), chest))
	assert.Error(t, w.Move(parser.ObjectRef(99), chest))
}

func TestRoutines(t *testing.T) {
	w, _ := testWorld(t, map[string]string{
		"is_edible":  "'edible' in obj.attrs",
		"is_held":    "obj.held",
		"in_hall":    "obj.parent == 'hall'",
		"can_talk":   "obj.character && !obj.actor",
		"not_player": "obj.id != 'player'",
	})
	apple, lamp, rat := w.Ref("apple"), w.Ref("lamp"), w.Ref("rat")

	assert.True(t, w.RunPredicate("is_edible", apple))
	assert.False(t, w.RunPredicate("is_edible", lamp))
	assert.True(t, w.RunPredicate("is_held", apple))
	assert.True(t, w.RunPredicate("in_hall", lamp))
	assert.True(t, w.RunPredicate("can_talk", rat))
	assert.False(t, w.RunPredicate("can_talk", w.Ref("player")))
	assert.False(t, w.RunPredicate("missing", apple))
	assert.True(t, w.TestAttribute(apple, "edible", false))
	assert.True(t, w.TestAttribute(lamp, "edible", true))
}

func TestAvailabilityRoutine(t *testing.T) {
	w, _ := testWorld(t, map[string]string{
		AvailabilityRoutine: "obj.id != 'lamp'",
	})
	assert.False(t, w.IsAvailable(w.Ref("lamp"), parser.Domain{}))
	assert.True(t, w.IsAvailable(w.Ref("apple"), parser.Domain{}))
}

func TestRoutineCompileErrors(t *testing.T) {
	r, err := NewRoutines()
	require.NoError(t, err)
	err = r.Compile(map[string]string{
		"broken": "obj.(",
		"number": "1 + 2",
		"fine":   "obj.held",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routine broken")
	assert.Contains(t, err.Error(), "routine number")
	assert.True(t, r.Has("fine"))
}
