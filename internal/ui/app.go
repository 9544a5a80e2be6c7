package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/appengine-ltd/storyparse/internal/parser"
	"github.com/appengine-ltd/storyparse/internal/story"
)

type AppConfig struct {
	Version   string
	Commit    string
	BuildDate string

	// StoryPath is the story file to play. Empty plays the built-in story.
	StoryPath       string
	Watch           bool
	Color           bool
	Prompt          string
	MaxPromptRounds int

	Logger *zap.Logger
	In     io.Reader
	Out    io.Writer
}

type App struct {
	cfg AppConfig
	log *zap.Logger
	out io.Writer
	st  styles

	lines  <-chan string
	story  *story.Story
	parser *parser.Parser
}

func NewApp(cfg AppConfig) *App {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}
	return &App{
		cfg: cfg,
		log: cfg.Logger,
		out: cfg.Out,
		st:  newStyles(cfg.Out, cfg.Color),
	}
}

// --- Styles (retro green) ---

type styles struct {
	green, brightGreen, dimGreen, border, alert lipgloss.Style
}

func newStyles(out io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(out)
	if !color {
		plain := r.NewStyle()
		return styles{plain, plain, plain, plain, plain}
	}
	return styles{
		green:       r.NewStyle().Foreground(lipgloss.Color("2")),
		brightGreen: r.NewStyle().Foreground(lipgloss.Color("10")),
		dimGreen:    r.NewStyle().Foreground(lipgloss.Color("22")),
		border:      r.NewStyle().Foreground(lipgloss.Color("2")),
		alert:       r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

const rule = "----------------------------------------"

// Run plays the story until the player quits, input ends or ctx is done.
func (a *App) Run(ctx context.Context) error {
	st, err := story.Load(a.cfg.StoryPath, a.log)
	if err != nil {
		return err
	}
	a.setStory(st)

	done := make(chan struct{})
	defer close(done)
	a.lines = readLines(a.cfg.In, done)

	var changes <-chan struct{}
	if a.cfg.Watch && a.cfg.StoryPath != "" {
		w, err := newStoryWatcher(a.cfg.StoryPath, a.log)
		if err != nil {
			return fmt.Errorf("watch story: %w", err)
		}
		defer w.Stop()
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch story: %w", err)
		}
		changes = w.Changes()
	}

	a.banner()
	for {
		a.printf("%s", a.st.brightGreen.Render(a.cfg.Prompt))
		select {
		case <-ctx.Done():
			a.printf("\n")
			return nil
		case <-changes:
			a.printf("\n")
			a.reload()
		case line, ok := <-a.lines:
			if !ok {
				a.printf("\n")
				return nil
			}
			if a.handleLine(ctx, line) {
				return nil
			}
		}
	}
}

func (a *App) setStory(st *story.Story) {
	a.story = st
	a.parser = parser.New(st.Tables, st.World,
		parser.WithLogger(a.log),
		parser.WithPrompter(parser.PromptFunc(a.ask)),
		parser.WithMaxPromptRounds(a.cfg.MaxPromptRounds),
	)
}

func (a *App) reload() {
	st, err := story.Load(a.cfg.StoryPath, a.log)
	if err != nil {
		a.log.Warn("story reload failed", zap.Error(err))
		a.println(a.st.alert.Render("Reload failed, keeping the current story:"))
		a.println(a.st.alert.Render(err.Error()))
		return
	}
	a.setStory(st)
	a.log.Info("story reloaded", zap.String("path", a.cfg.StoryPath))
	a.println(a.st.dimGreen.Render("Story reloaded: " + st.Title))
}

func (a *App) banner() {
	title := a.st.brightGreen.Render(strings.ToUpper(a.story.Title))
	a.println(title)
	if a.cfg.Version != "" {
		a.println(a.st.dimGreen.Render(fmt.Sprintf("storyparse v%s  (%s)  %s", a.cfg.Version, a.cfg.Commit, a.cfg.BuildDate)))
	}
	a.println(a.st.border.Render(rule))
	a.println("")
	a.look()
}

// handleLine parses a line and performs each sentence in it. It reports
// whether the player asked to quit.
func (a *App) handleLine(ctx context.Context, line string) bool {
	cmd, err := a.parser.Parse(ctx, line)
	for {
		if err != nil {
			if parser.IsEmpty(err) {
				return false
			}
			a.println(a.st.alert.Render(err.Error()))
			return false
		}
		if a.perform(cmd) {
			return true
		}
		rest := cmd.RemainingLine()
		if rest == "" {
			return false
		}
		cmd, err = a.parser.Parse(ctx, rest)
	}
}

// ask is the disambiguation prompter: it prints the question and waits for
// the next input line.
func (a *App) ask(ctx context.Context, question string) (string, error) {
	a.println(a.st.green.Render(question))
	a.printf("%s", a.st.brightGreen.Render(a.cfg.Prompt))
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-done:
				return
			}
		}
	}()
	return out
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(s string) {
	_, _ = fmt.Fprintln(a.out, s)
}
