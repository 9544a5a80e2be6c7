package story

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk story format.
type File struct {
	Title        string            `yaml:"title"`
	Actor        string            `yaml:"actor"`
	Housekeeping Housekeeping      `yaml:"housekeeping"`
	Words        []string          `yaml:"words"`
	Synonyms     map[string]string `yaml:"synonyms"`
	Removals     []string          `yaml:"removals"`
	Compounds    []Compound        `yaml:"compounds"`
	Attributes   []string          `yaml:"attributes"`
	Routines     map[string]string `yaml:"routines"`
	Objects      []Object          `yaml:"objects"`
	Verbs        []Verb            `yaml:"verbs"`
}

type Housekeeping struct {
	And    []string `yaml:"and"`
	All    []string `yaml:"all"`
	Except []string `yaml:"except"`
	Then   []string `yaml:"then"`
	It     []string `yaml:"it"`
	Them   []string `yaml:"them"`
	Oops   []string `yaml:"oops"`
}

type Compound struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
	Result string `yaml:"result"`
}

type Object struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Nouns      []string `yaml:"nouns"`
	Adjectives []string `yaml:"adjectives"`
	Parent     string   `yaml:"parent"`
	Attributes []string `yaml:"attributes"`
	Character  bool     `yaml:"character"`
	Known      *bool    `yaml:"known"`
}

type Verb struct {
	Words    []string `yaml:"words"`
	Meta     bool     `yaml:"meta"`
	Syntaxes []Syntax `yaml:"syntaxes"`
}

type Syntax struct {
	Pattern string `yaml:"pattern"`
	Action  string `yaml:"action"`
}

// Decode reads a story file. Unknown keys are an error so typos in a story
// do not pass silently.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty story file")
		}
		return nil, fmt.Errorf("failed to decode story: %w", err)
	}
	return &f, nil
}

func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
