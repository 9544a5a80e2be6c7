package story

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/appengine-ltd/storyparse/internal/parser"
	"github.com/appengine-ltd/storyparse/internal/world"
)

//go:embed default.yaml
var defaultStory []byte

// Story is a loaded, validated story: parser tables plus the object tree.
type Story struct {
	Title  string
	Tables *parser.Tables
	World  *world.World
}

type Stats struct {
	Words    int `json:"words"`
	Verbs    int `json:"verbs"`
	Syntaxes int `json:"syntaxes"`
	Objects  int `json:"objects"`
}

func (s *Story) Stats() Stats {
	st := Stats{
		Words:   s.Tables.Dictionary.Len(),
		Verbs:   len(s.Tables.Grammar.Verbs),
		Objects: len(s.World.Objects()),
	}
	for _, v := range s.Tables.Grammar.Verbs {
		st.Syntaxes += len(v.Syntaxes)
	}
	return st
}

var builtinAttributes = []string{
	world.AttrContainer,
	world.AttrOpen,
	world.AttrTransparent,
	world.AttrHidden,
}

// Load reads and builds the story at path. An empty path loads the built-in
// story.
func Load(path string, log *zap.Logger) (*Story, error) {
	if path == "" {
		return Default(log)
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	st, err := Build(f, log)
	if err != nil {
		return nil, fmt.Errorf("story %s: %w", path, err)
	}
	return st, nil
}

func Default(log *zap.Logger) (*Story, error) {
	f, err := Decode(bytes.NewReader(defaultStory))
	if err != nil {
		return nil, fmt.Errorf("built-in story: %w", err)
	}
	return Build(f, log)
}

// Build validates f and compiles it. All problems found are reported
// together.
func Build(f *File, log *zap.Logger) (*Story, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var errs []error
	reg := parser.NewRegistry(parser.HousekeepingDef(f.Housekeeping))

	for _, w := range f.Words {
		reg.Word(w)
	}
	froms := make([]string, 0, len(f.Synonyms))
	for from := range f.Synonyms {
		froms = append(froms, from)
	}
	slices.Sort(froms)
	for _, from := range froms {
		reg.Synonym(from, f.Synonyms[from])
	}
	reg.Remove(f.Removals...)
	for _, c := range f.Compounds {
		reg.Compound(parser.CompoundDef(c))
	}

	attrs := append(slices.Clone(builtinAttributes), f.Attributes...)
	checkAttr := func(owner, attr string) {
		if !slices.Contains(attrs, attr) {
			errs = append(errs, fmt.Errorf("%s: undeclared attribute %q", owner, attr))
		}
	}

	routines, err := world.NewRoutines()
	if err != nil {
		return nil, err
	}
	if err := routines.Compile(f.Routines); err != nil {
		errs = append(errs, err)
	}

	specs := make([]world.ObjectSpec, 0, len(f.Objects))
	for _, o := range f.Objects {
		spec := world.ObjectSpec{
			ID:         o.ID,
			Name:       o.Name,
			Parent:     o.Parent,
			Attributes: o.Attributes,
			Character:  o.Character,
			Known:      o.Known == nil || *o.Known,
		}
		for _, n := range o.Nouns {
			spec.Nouns = append(spec.Nouns, reg.Word(n))
		}
		for _, a := range o.Adjectives {
			spec.Adjectives = append(spec.Adjectives, reg.Word(a))
		}
		for _, a := range o.Attributes {
			checkAttr("object "+o.ID, a)
		}
		if len(o.Nouns) == 0 {
			errs = append(errs, fmt.Errorf("object %s: no nouns", o.ID))
		}
		specs = append(specs, spec)
	}
	w, err := world.Build(specs, f.Actor, world.WithRoutines(routines), world.WithLogger(log.Named("world")))
	if err != nil {
		errs = append(errs, err)
	}

	for vi, v := range f.Verbs {
		def := parser.VerbDef{Words: v.Words, Meta: v.Meta}
		for si, s := range v.Syntaxes {
			owner := fmt.Sprintf("verb %d (%v) syntax %d", vi+1, v.Words, si+1)
			toks, err := compilePattern(s.Pattern)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: pattern %q: %w", owner, s.Pattern, err))
				continue
			}
			if s.Action == "" {
				errs = append(errs, fmt.Errorf("%s: missing action", owner))
			}
			sd := parser.SyntaxDef{Action: s.Action}
			for _, ct := range toks {
				if ct.Attribute != "" {
					checkAttr(owner, ct.Attribute)
				}
				if ct.Routine != "" && !routines.Has(ct.Routine) {
					errs = append(errs, fmt.Errorf("%s: unknown routine %q", owner, ct.Routine))
				}
				if ct.identity != "" && w != nil {
					ct.Object = w.Ref(ct.identity)
					if ct.Object == parser.Nothing {
						errs = append(errs, fmt.Errorf("%s: unknown object %q", owner, ct.identity))
					}
				}
				sd.Tokens = append(sd.Tokens, ct.GrammarToken)
			}
			def.Syntaxes = append(def.Syntaxes, sd)
		}
		reg.RegisterVerb(def)
	}

	tables, err := reg.Tables()
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	w.Canonicalise(tables.Synonyms)

	st := &Story{Title: f.Title, Tables: tables, World: w}
	stats := st.Stats()
	log.Debug("story built",
		zap.String("title", st.Title),
		zap.Int("words", stats.Words),
		zap.Int("verbs", stats.Verbs),
		zap.Int("objects", stats.Objects))
	return st, nil
}
