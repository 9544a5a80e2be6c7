package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/appengine-ltd/storyparse/internal/config"
	"github.com/appengine-ltd/storyparse/internal/parser"
	"github.com/appengine-ltd/storyparse/internal/story"
)

// parseResult is one sentence of parse output. Objects and Indirect repeat
// the command's object refs as story ids.
type parseResult struct {
	Input    string          `json:"input"`
	Command  *parser.Command `json:"command,omitempty"`
	Objects  []string        `json:"objects,omitempty"`
	Indirect string          `json:"indirect,omitempty"`
	Failure  *parser.Failure `json:"failure,omitempty"`
	Message  string          `json:"message,omitempty"`
}

func (c *cli) parseCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "parse [line]",
		Short: "Parse one line, or each line of stdin, and print the result as JSON",
		Long: `Parses input against the story without playing it: the world never
changes between lines. Each sentence produces one JSON object holding
either the resolved command or the failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := story.Load(c.cfg.Story, c.log)
			if err != nil {
				return err
			}
			p := parser.New(st.Tables, st.World, parser.WithLogger(c.log))
			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}

			emit := func(line string) error {
				results, err := parseLine(cmd, p, st, line)
				if err != nil {
					return err
				}
				for _, r := range results {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
				return nil
			}

			if len(args) > 0 {
				return emit(strings.Join(args, " "))
			}
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				if err := emit(sc.Text()); err != nil {
					return err
				}
			}
			return sc.Err()
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

// parseLine resolves every sentence of line. Parser failures become results;
// any other error stops the run.
func parseLine(cmd *cobra.Command, p *parser.Parser, st *story.Story, line string) ([]parseResult, error) {
	var out []parseResult
	for {
		res := parseResult{Input: line}
		command, err := p.Parse(cmd.Context(), line)
		if err != nil && len(out) > 0 && parser.IsEmpty(err) {
			return out, nil
		}
		if err != nil {
			f, ok := parser.AsFailure(err)
			if !ok {
				return nil, err
			}
			res.Failure = f
			res.Message = f.Error()
			return append(out, res), nil
		}
		res.Command = &command
		for _, ref := range command.Objects {
			res.Objects = append(res.Objects, st.World.Object(ref).ID)
		}
		if o := st.World.Object(command.Indirect); o != nil {
			res.Indirect = o.ID
		}
		out = append(out, res)

		line = command.RemainingLine()
		if line == "" {
			return out, nil
		}
	}
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [story]",
		Short: "Validate a story file and print its size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.Story
			if len(args) == 1 {
				path = args[0]
			}
			st, err := story.Load(path, c.log)
			if err != nil {
				return err
			}
			s := st.Stats()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d objects, %d verbs, %d syntaxes, %d words\n",
				st.Title, s.Objects, s.Verbs, s.Syntaxes, s.Words)
			return err
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.cfgFile
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			out := cmd.OutOrStdout()
			if save {
				if err := config.Save(path, c.cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				_, err := fmt.Fprintf(out, "# saved to %s\n", path)
				if err != nil {
					return err
				}
			} else if _, err := fmt.Fprintf(out, "# %s\n", path); err != nil {
				return err
			}
			return writeTOML(out, c.cfg)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the effective configuration to the config file")
	return cmd
}

func writeTOML(w io.Writer, cfg config.Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
