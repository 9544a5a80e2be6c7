package ui

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/appengine-ltd/storyparse/internal/parser"
	"github.com/appengine-ltd/storyparse/internal/world"
)

var titleCase = cases.Title(language.English)

// perform carries out the few actions the REPL understands on the built-in
// world and echoes any other command. It reports whether the player asked
// to quit.
func (a *App) perform(cmd parser.Command) bool {
	w := a.story.World
	a.log.Debug("perform", zap.String("action", cmd.Action), zap.String("command", cmd.String()))

	if cmd.Actor != parser.Nothing {
		a.println(a.st.green.Render(fmt.Sprintf("%s has better things to do.", w.Name(cmd.Actor))))
		return false
	}

	switch cmd.Action {
	case "quit":
		a.println(a.st.green.Render("Goodbye."))
		return true
	case "look":
		a.look()
	case "inventory":
		a.inventory()
	case "take", "take_from":
		a.moveEach(cmd.Objects, w.Actor(), "Taken.")
	case "drop":
		a.moveEach(cmd.Objects, w.Location(), "Dropped.")
	case "put_in":
		a.moveEach(cmd.Objects, cmd.Indirect, "Done.")
	case "open", "close":
		for _, obj := range cmd.Objects {
			w.SetAttribute(obj, world.AttrOpen, cmd.Action == "open")
			a.println(a.st.green.Render(fmt.Sprintf("You %s the %s.", cmd.Action, w.Name(obj))))
		}
	default:
		a.println(a.st.dimGreen.Render(describe(w, cmd)))
	}
	return false
}

func (a *App) moveEach(objs []parser.ObjectRef, to parser.ObjectRef, done string) {
	w := a.story.World
	for _, obj := range objs {
		msg := done
		if err := w.Move(obj, to); err != nil {
			a.log.Warn("move failed", zap.Error(err))
			msg = "You can't."
		}
		if len(objs) > 1 {
			msg = w.Name(obj) + ": " + msg
		}
		a.println(a.st.green.Render(msg))
	}
}

func (a *App) look() {
	w := a.story.World
	loc := w.Location()
	a.println(a.st.brightGreen.Render(titleCase.String(w.Name(loc))))

	var seen []string
	for _, obj := range w.Children(loc) {
		if obj == w.Actor() || !w.IsAvailable(obj, parser.Domain{}) {
			continue
		}
		seen = append(seen, a.describeObject(obj))
	}
	if len(seen) == 0 {
		a.println(a.st.green.Render("You see nothing of interest."))
		return
	}
	a.println(a.st.green.Render("You can see " + strings.Join(seen, ", ") + "."))
}

func (a *App) describeObject(obj parser.ObjectRef) string {
	w := a.story.World
	name := w.Name(obj)
	var inside []string
	for _, c := range w.Children(obj) {
		if w.IsAvailable(c, parser.Domain{}) {
			inside = append(inside, w.Name(c))
		}
	}
	if len(inside) == 0 {
		return name
	}
	return name + " (holding " + strings.Join(inside, ", ") + ")"
}

func (a *App) inventory() {
	w := a.story.World
	var held []string
	for _, obj := range w.Children(w.Actor()) {
		held = append(held, w.Name(obj))
	}
	if len(held) == 0 {
		a.println(a.st.green.Render("You are empty-handed."))
		return
	}
	a.println(a.st.green.Render("You are carrying " + strings.Join(held, ", ") + "."))
}

// describe renders a command the REPL has no behaviour for, e.g.
// "[give: green apple -> Bob]".
func describe(w *world.World, cmd parser.Command) string {
	var parts []string
	for _, obj := range cmd.Objects {
		parts = append(parts, w.Name(obj))
	}
	s := cmd.Action
	if len(parts) > 0 {
		s += ": " + strings.Join(parts, ", ")
	}
	if cmd.Indirect != parser.Nothing {
		s += " -> " + w.Name(cmd.Indirect)
	}
	for _, n := range cmd.Numbers {
		s += " " + strconv.Itoa(n)
	}
	if cmd.Text != "" {
		s += " " + strconv.Quote(cmd.Text)
	}
	return "[" + s + "]"
}
