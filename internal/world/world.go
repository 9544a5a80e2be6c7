package world

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/appengine-ltd/storyparse/internal/parser"
)

// Attributes with a meaning to the world itself.
const (
	AttrContainer   = "container"
	AttrOpen        = "open"
	AttrTransparent = "transparent"
	AttrHidden      = "hidden"
)

// AvailabilityRoutine, when a story defines it, must also hold for an object
// to be available.
const AvailabilityRoutine = "available"

type ObjectSpec struct {
	ID         string
	Name       string
	Nouns      []parser.WordID
	Adjectives []parser.WordID
	Parent     string
	Attributes []string
	Character  bool
	Known      bool
}

type Object struct {
	Ref        parser.ObjectRef `json:"ref"`
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Parent     parser.ObjectRef `json:"parent,omitempty"`
	Attributes []string         `json:"attributes,omitempty"`
	Character  bool             `json:"character,omitempty"`
	Known      bool             `json:"known"`

	nouns      map[parser.WordID]bool
	adjectives map[parser.WordID]bool
}

func (o *Object) Has(attr string) bool {
	return slices.Contains(o.Attributes, attr)
}

// World is an in-memory object tree. Refs are dense, starting at 1 in the
// order objects were declared.
type World struct {
	objects  []*Object
	byID     map[string]parser.ObjectRef
	actor    parser.ObjectRef
	routines *Routines
	log      *zap.Logger
}

type Option func(*World)

func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

func WithRoutines(r *Routines) Option {
	return func(w *World) {
		w.routines = r
	}
}

// Build creates the tree from specs. Parents may be declared after their
// children. Every problem is reported in the returned error.
func Build(specs []ObjectSpec, actor string, opts ...Option) (*World, error) {
	w := &World{
		byID: make(map[string]parser.ObjectRef, len(specs)),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	var errs []error
	for _, spec := range specs {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("object %q: missing id", spec.Name))
			continue
		}
		if _, dup := w.byID[id]; dup {
			errs = append(errs, fmt.Errorf("object %q: duplicate id", id))
			continue
		}
		name := spec.Name
		if name == "" {
			name = id
		}
		o := &Object{
			Ref:        parser.ObjectRef(len(w.objects) + 1),
			ID:         id,
			Name:       name,
			Attributes: slices.Clone(spec.Attributes),
			Character:  spec.Character,
			Known:      spec.Known,
			nouns:      make(map[parser.WordID]bool, len(spec.Nouns)),
			adjectives: make(map[parser.WordID]bool, len(spec.Adjectives)),
		}
		for _, n := range spec.Nouns {
			o.nouns[n] = true
		}
		for _, a := range spec.Adjectives {
			o.adjectives[a] = true
		}
		w.objects = append(w.objects, o)
		w.byID[id] = o.Ref
	}
	for _, spec := range specs {
		ref, ok := w.byID[strings.TrimSpace(spec.ID)]
		if !ok || spec.Parent == "" {
			continue
		}
		parent, ok := w.byID[spec.Parent]
		if !ok {
			errs = append(errs, fmt.Errorf("object %q: unknown parent %q", spec.ID, spec.Parent))
			continue
		}
		w.obj(ref).Parent = parent
	}
	for _, o := range w.objects {
		if w.cyclic(o.Ref) {
			errs = append(errs, fmt.Errorf("object %q: parent chain loops", o.ID))
		}
	}
	w.actor = w.byID[actor]
	if w.actor == parser.Nothing {
		errs = append(errs, fmt.Errorf("actor %q is not an object", actor))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) cyclic(ref parser.ObjectRef) bool {
	seen := map[parser.ObjectRef]bool{}
	for cur := ref; cur != parser.Nothing; cur = w.Parent(cur) {
		if seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}

func (w *World) obj(ref parser.ObjectRef) *Object {
	if ref <= parser.Nothing || int(ref) > len(w.objects) {
		return nil
	}
	return w.objects[ref-1]
}

// Canonicalise maps object vocabulary through the synonym table, so objects
// answer to the spellings input is normalised to.
func (w *World) Canonicalise(syn *parser.Synonyms) {
	remap := func(words map[parser.WordID]bool) map[parser.WordID]bool {
		out := make(map[parser.WordID]bool, len(words))
		for id := range words {
			if to, ok := syn.Replacement(id); ok {
				id = to
			}
			out[id] = true
		}
		return out
	}
	for _, o := range w.objects {
		o.nouns = remap(o.nouns)
		o.adjectives = remap(o.adjectives)
	}
}

// Object returns the object behind ref, or nil.
func (w *World) Object(ref parser.ObjectRef) *Object {
	return w.obj(ref)
}

// Ref looks an object up by its story id.
func (w *World) Ref(id string) parser.ObjectRef {
	return w.byID[id]
}

// Move reparents obj. Moving an object into itself or its own contents is
// refused.
func (w *World) Move(obj, to parser.ObjectRef) error {
	o := w.obj(obj)
	if o == nil {
		return fmt.Errorf("move: no object %d", obj)
	}
	if to != parser.Nothing && w.obj(to) == nil {
		return fmt.Errorf("move %s: no destination %d", o.ID, to)
	}
	for cur := to; cur != parser.Nothing; cur = w.Parent(cur) {
		if cur == obj {
			return fmt.Errorf("move %s: destination is inside it", o.ID)
		}
	}
	w.log.Debug("move", zap.String("object", o.ID), zap.Int("to", int(to)))
	o.Parent = to
	return nil
}

// SetAttribute turns attr on or off for obj.
func (w *World) SetAttribute(obj parser.ObjectRef, attr string, on bool) {
	o := w.obj(obj)
	if o == nil {
		return
	}
	has := o.Has(attr)
	switch {
	case on && !has:
		o.Attributes = append(o.Attributes, attr)
	case !on && has:
		o.Attributes = slices.DeleteFunc(o.Attributes, func(a string) bool { return a == attr })
	}
}

func (w *World) Objects() []parser.ObjectRef {
	out := make([]parser.ObjectRef, len(w.objects))
	for i, o := range w.objects {
		out[i] = o.Ref
	}
	return out
}

func (w *World) Actor() parser.ObjectRef { return w.actor }

func (w *World) Name(obj parser.ObjectRef) string {
	if o := w.obj(obj); o != nil {
		return o.Name
	}
	return ""
}

func (w *World) HasWord(obj parser.ObjectRef, word parser.WordID, kind parser.MatchKind) bool {
	o := w.obj(obj)
	if o == nil {
		return false
	}
	if kind == parser.MatchAdjective {
		return o.adjectives[word]
	}
	return o.nouns[word]
}

func (w *World) Parent(obj parser.ObjectRef) parser.ObjectRef {
	if o := w.obj(obj); o != nil {
		return o.Parent
	}
	return parser.Nothing
}

func (w *World) Children(obj parser.ObjectRef) []parser.ObjectRef {
	if obj == parser.Nothing {
		return nil
	}
	var out []parser.ObjectRef
	for _, o := range w.objects {
		if o.Parent == obj {
			out = append(out, o.Ref)
		}
	}
	return out
}

// Location is the outermost ancestor of the actor.
func (w *World) Location() parser.ObjectRef {
	loc := w.actor
	for p := w.Parent(loc); p != parser.Nothing; p = w.Parent(p) {
		loc = p
	}
	return loc
}

// IsAvailable reports whether obj can be reached from where the actor is.
// Closed, opaque containers hide what is inside them.
func (w *World) IsAvailable(obj parser.ObjectRef, _ parser.Domain) bool {
	o := w.obj(obj)
	if o == nil || o.Has(AttrHidden) {
		return false
	}
	loc := w.Location()
	reached := false
	for cur := obj; cur != parser.Nothing; cur = w.Parent(cur) {
		if cur == loc {
			reached = true
			break
		}
		if cur != obj && w.closed(cur) {
			return false
		}
	}
	if !reached {
		return false
	}
	if w.routines != nil && w.routines.Has(AvailabilityRoutine) {
		return w.RunPredicate(AvailabilityRoutine, obj)
	}
	return true
}

func (w *World) closed(ref parser.ObjectRef) bool {
	o := w.obj(ref)
	return o.Has(AttrContainer) && !o.Has(AttrOpen) && !o.Has(AttrTransparent)
}

func (w *World) IsKnown(obj parser.ObjectRef) bool {
	o := w.obj(obj)
	return o != nil && o.Known
}

func (w *World) IsCharacter(obj parser.ObjectRef) bool {
	o := w.obj(obj)
	return o != nil && o.Character
}

func (w *World) TestAttribute(obj parser.ObjectRef, attr string, negate bool) bool {
	o := w.obj(obj)
	if o == nil {
		return false
	}
	return o.Has(attr) != negate
}

func (w *World) RunPredicate(routine string, obj parser.ObjectRef) bool {
	o := w.obj(obj)
	if o == nil || w.routines == nil {
		return false
	}
	ok, err := w.routines.Eval(routine, w.celObject(o))
	if err != nil {
		w.log.Warn("routine failed", zap.String("routine", routine), zap.String("object", o.ID), zap.Error(err))
		return false
	}
	return ok
}

func (w *World) celObject(o *Object) map[string]any {
	parent := ""
	if p := w.obj(o.Parent); p != nil {
		parent = p.ID
	}
	attrs := o.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	return map[string]any{
		"id":        o.ID,
		"name":      o.Name,
		"attrs":     attrs,
		"parent":    parent,
		"held":      o.Parent == w.actor,
		"character": o.Character,
		"actor":     o.Ref == w.actor,
	}
}
