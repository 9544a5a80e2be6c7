package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
)

// Routines holds compiled story predicates. Each is a CEL expression over a
// single variable, obj, and must evaluate to a bool:
//
//	obj.character && !obj.actor
//	'edible' in obj.attrs
//	obj.parent == 'kitchen'
type Routines struct {
	env      *cel.Env
	programs map[string]cel.Program
}

func NewRoutines() (*Routines, error) {
	env, err := cel.NewEnv(cel.Variable("obj", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Routines{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile adds every routine in defs, reporting all that fail to compile.
func (r *Routines) Compile(defs map[string]string) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := r.Add(name, defs[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Routines) Add(name, expr string) error {
	ast, issues := r.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("routine %s: %w", name, issues.Err())
	}
	if out := ast.OutputType().String(); out != "bool" && out != "dyn" {
		return fmt.Errorf("routine %s: must be a bool expression, got %s", name, out)
	}
	prg, err := r.env.Program(ast)
	if err != nil {
		return fmt.Errorf("routine %s: %w", name, err)
	}
	r.programs[name] = prg
	return nil
}

func (r *Routines) Has(name string) bool {
	_, ok := r.programs[name]
	return ok
}

func (r *Routines) Eval(name string, obj map[string]any) (bool, error) {
	prg, ok := r.programs[name]
	if !ok {
		return false, fmt.Errorf("unknown routine %q", name)
	}
	out, _, err := prg.Eval(map[string]any{"obj": obj})
	if err != nil {
		return false, fmt.Errorf("routine %s: %w", name, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("routine %s: result %v is not a bool", name, out.Value())
	}
	return b, nil
}
