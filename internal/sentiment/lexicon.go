package sentiment

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is a named group of trigger substrings.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Lexicon is the word-list configuration the analyzer scores against.
// NewAnalyzer takes its own normalized copy, so a Lexicon can be
// reused or modified by the caller afterwards without affecting analysis.
type Lexicon struct {
	Topics         []Category `yaml:"topics"`
	Emotions       []Category `yaml:"emotions"`
	Positive       []string   `yaml:"positive"`
	Negative       []string   `yaml:"negative"`
	Crisis         []string   `yaml:"crisis"`
	StressTopics   []string   `yaml:"stress_topics"`
	AnxietyMarkers []string   `yaml:"anxiety_markers"`
}

var ErrEmptyLexicon = errors.New("lexicon has no crisis phrases")

// LoadLexicon reads a YAML lexicon file. Sections missing from the file
// are taken from the default lexicon.
func LoadLexicon(path string) (Lexicon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("[Lexicon] failed to read %s: %w", path, err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(raw, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("[Lexicon] failed to parse %s: %w", path, err)
	}

	def := DefaultLexicon()
	if len(lex.Topics) == 0 {
		lex.Topics = def.Topics
	}
	if len(lex.Emotions) == 0 {
		lex.Emotions = def.Emotions
	}
	if len(lex.Positive) == 0 {
		lex.Positive = def.Positive
	}
	if len(lex.Negative) == 0 {
		lex.Negative = def.Negative
	}
	if len(lex.Crisis) == 0 {
		lex.Crisis = def.Crisis
	}
	if lex.StressTopics == nil {
		lex.StressTopics = def.StressTopics
	}
	if lex.AnxietyMarkers == nil {
		lex.AnxietyMarkers = def.AnxietyMarkers
	}

	if err := lex.Validate(); err != nil {
		return Lexicon{}, fmt.Errorf("[Lexicon] invalid lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Validate checks that category names are present and unique.
func (l Lexicon) Validate() error {
	if len(normalizeTerms(l.Crisis)) == 0 {
		return ErrEmptyLexicon
	}
	if err := validateCategories("topic", l.Topics); err != nil {
		return err
	}
	return validateCategories("emotion", l.Emotions)
}

func validateCategories(kind string, categories []Category) error {
	seen := make(map[string]struct{}, len(categories))
	for i, c := range categories {
		name := Normalize(c.Name)
		if name == "" {
			return fmt.Errorf("%s category #%d has no name", kind, i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate %s category %q", kind, c.Name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// normalized returns a deep copy with every term passed through Normalize,
// empty terms dropped and duplicates removed.
func (l Lexicon) normalized() Lexicon {
	return Lexicon{
		Topics:         normalizeCategories(l.Topics),
		Emotions:       normalizeCategories(l.Emotions),
		Positive:       normalizeTerms(l.Positive),
		Negative:       normalizeTerms(l.Negative),
		Crisis:         normalizeTerms(l.Crisis),
		StressTopics:   normalizeTerms(l.StressTopics),
		AnxietyMarkers: normalizeTerms(l.AnxietyMarkers),
	}
}

func normalizeCategories(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		name := Normalize(c.Name)
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Category{Name: name, Keywords: normalizeTerms(c.Keywords)})
	}
	return out
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
