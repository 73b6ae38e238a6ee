package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Question is one entry of a quiz definition.
type Question struct {
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Answers []string `yaml:"answers" json:"answers"`
	// Options turns the question into multiple choice. Answers must then
	// name one or more of the options.
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
	Points  int      `yaml:"points,omitempty" json:"points,omitempty"`
	Wager   bool     `yaml:"wager,omitempty" json:"wager,omitempty"`
}

// Timing overrides the default phase lengths, in seconds. Zero keeps the default.
type Timing struct {
	Cooldown int `yaml:"cooldown,omitempty" json:"cooldown,omitempty"`
	Wager    int `yaml:"wager,omitempty" json:"wager,omitempty"`
	Answer   int `yaml:"answer,omitempty" json:"answer,omitempty"`
	Read     int `yaml:"read,omitempty" json:"read,omitempty"`
	Vote     int `yaml:"vote,omitempty" json:"vote,omitempty"`
	Results  int `yaml:"results,omitempty" json:"results,omitempty"`
}

// Definition is a parsed quiz. It is not modified after loading.
type Definition struct {
	Title     string     `yaml:"title" json:"title"`
	Timing    Timing     `yaml:"timing,omitempty" json:"timing,omitempty"`
	Points    int        `yaml:"points,omitempty" json:"points,omitempty"`
	MaxWager  int        `yaml:"max_wager,omitempty" json:"maxWager,omitempty"`
	Questions []Question `yaml:"questions" json:"questions"`
}

var errNoQuestions = errors.New("quiz has no questions")

// Validate checks that every question can be asked and answered.
func (d *Definition) Validate() error {
	if len(d.Questions) == 0 {
		return errNoQuestions
	}
	if d.Points < 0 || d.MaxWager < 0 {
		return errors.New("points and max_wager must not be negative")
	}
	for i, q := range d.Questions {
		n := i + 1
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("question %d: prompt is required", n)
		}
		if len(q.Answers) == 0 {
			return fmt.Errorf("question %d: at least one answer is required", n)
		}
		for _, a := range q.Answers {
			if normalizeAnswer(a) == "" {
				return fmt.Errorf("question %d: empty answer", n)
			}
		}
		if q.Points < 0 {
			return fmt.Errorf("question %d: points must not be negative", n)
		}
		if len(q.Options) == 0 {
			continue
		}
		if len(q.Options) > maxOptions {
			return fmt.Errorf("question %d: at most %d options are allowed", n, maxOptions)
		}
		for _, a := range q.Answers {
			if q.optionIndex(a) < 0 {
				return fmt.Errorf("question %d: answer %q is not one of the options", n, a)
			}
		}
	}
	return nil
}

// Format names an encoding of a quiz definition.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromExt maps a file extension to a Format.
func FormatFromExt(ext string) (Format, bool) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// Parse decodes and validates a definition. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Definition, error) {
	var d Definition
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Definition) clone() *Definition {
	c := *d
	c.Questions = make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		q.Answers = slices.Clone(q.Answers)
		q.Options = slices.Clone(q.Options)
		c.Questions[i] = q
	}
	return &c
}
