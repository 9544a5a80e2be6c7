package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/appengine-ltd/storyparse/internal/config"
	"github.com/appengine-ltd/storyparse/internal/ui"
)

// version, commit, date are injected at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	cfgFile   string
	storyPath string
	verbose   bool
	noColor   bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "storyparse",
		Short: "Parse interactive fiction commands against a story",
		Long: `storyparse reads player commands such as "take all except the lamp" or
"give the apple to bob" and resolves them against a story's vocabulary and
object tree.

Run without arguments to play the story interactively.`,
		Version:           fmt.Sprintf("%s (%s) %s", version, commit, date),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
		RunE: c.play,
	}
	root.SetVersionTemplate("storyparse {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default: <user config dir>/storyparse/config.toml)")
	pf.StringVar(&c.storyPath, "story", "", "story file (default: the built-in story)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&c.noColor, "no-color", false, "plain output")

	root.AddCommand(c.playCmd(), c.parseCmd(), c.checkCmd(), c.configCmd())
	return root
}

// setup loads .env, the config file and the flags, in increasing order of
// precedence, then builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	if c.storyPath != "" {
		cfg.Story = c.storyPath
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	if c.noColor {
		cfg.Color = false
	}
	c.cfg = cfg

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	c.log, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.log.Debug("config loaded", zap.String("story", cfg.Story), zap.String("command", cmd.Name()))
	return nil
}

func (c *cli) playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the story interactively",
		Args:  cobra.NoArgs,
		RunE:  c.play,
	}
}

func (c *cli) play(cmd *cobra.Command, _ []string) error {
	app := ui.NewApp(ui.AppConfig{
		Version:         version,
		Commit:          commit,
		BuildDate:       date,
		StoryPath:       c.cfg.Story,
		Watch:           c.cfg.Watch,
		Color:           c.cfg.Color,
		Prompt:          c.cfg.Prompt,
		MaxPromptRounds: c.cfg.MaxPromptRounds,
		Logger:          c.log,
		In:              cmd.InOrStdin(),
		Out:             cmd.OutOrStdout(),
	})
	return app.Run(cmd.Context())
}
