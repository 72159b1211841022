package sentiment

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/mindmate/internal/models"
)

const (
	minTextLength         = 3
	maxTopics             = 5
	topicConfidenceStep   = 0.3
	emotionConfidenceStep = 0.2
)

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)

// Analyzer classifies text against an immutable lexicon. It holds no
// mutable state and is safe for concurrent use.
type Analyzer struct {
	lexicon      Lexicon
	stressTopics map[string]struct{}
	polarity     PolarityScorer
}

type Option func(*Analyzer)

// WithPolarityScorer replaces the VADER scorer. A nil scorer disables
// polarity scores.
func WithPolarityScorer(p PolarityScorer) Option {
	return func(a *Analyzer) {
		a.polarity = p
	}
}

func NewAnalyzer(lexicon Lexicon, opts ...Option) *Analyzer {
	lex := lexicon.normalized()
	stressTopics := make(map[string]struct{}, len(lex.StressTopics))
	for _, t := range lex.StressTopics {
		stressTopics[t] = struct{}{}
	}

	a := &Analyzer{
		lexicon:      lex,
		stressTopics: stressTopics,
		polarity:     NewVADERScorer(),
	}
	for _, opt := range opts {
		opt(a)
	}

	slog.Info("[Analyzer] Lexicon loaded",
		slog.Int("topics", len(lex.Topics)),
		slog.Int("positive", len(lex.Positive)),
		slog.Int("negative", len(lex.Negative)),
		slog.Int("crisis", len(lex.Crisis)))
	return a
}

// Analyze never fails: short input yields EmptyAnalysis and any panic
// while scoring yields ErrorAnalysis.
func (a *Analyzer) Analyze(text string) (result models.Analysis) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLength {
		return EmptyAnalysis()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Analyzer] Analysis failed",
				slog.Any("panic", r))
			result = ErrorAnalysis(fmt.Errorf("%v", r))
		}
	}()

	return a.analyze(text)
}

func (a *Analyzer) analyze(text string) models.Analysis {
	cleaned := Normalize(text)

	sentiment := a.sentiment(cleaned)
	topics := a.topics(cleaned)
	crisisWords := a.crisisWords(cleaned)
	isCrisis := len(crisisWords) > 0
	stress := a.stressLevel(cleaned, sentiment, topics, isCrisis)

	result := models.Analysis{
		TextOriginal: text,
		TextCleaned:  cleaned,
		Sentiment:    sentiment,
		Topics:       topics,
		Emotions:     a.emotions(cleaned),
		StressLevel:  stress,
		IsCrisis:     isCrisis,
		CrisisWords:  crisisWords,
		Metrics: models.TextMetrics{
			WordCount:   len(strings.Fields(cleaned)),
			Readability: readability(cleaned),
		},
		Recommendations: Recommendations(sentiment.Label, topics, stress, isCrisis),
	}

	slog.Debug("[Analyzer] Analysis complete",
		slog.String("sentiment", string(result.Sentiment.Label)),
		slog.Int("stress_level", result.StressLevel),
		slog.Bool("crisis", result.IsCrisis))
	return result
}

func (a *Analyzer) sentiment(text string) models.Sentiment {
	s := models.Sentiment{
		PositiveHits: countOccurrences(text, a.lexicon.Positive),
		NegativeHits: countOccurrences(text, a.lexicon.Negative),
	}

	switch {
	case s.PositiveHits > s.NegativeHits:
		s.Label = models.SentimentPositive
	case s.NegativeHits > s.PositiveHits:
		s.Label = models.SentimentNegative
	default:
		s.Label = models.SentimentNeutral
	}

	if a.polarity != nil {
		s.Polarity = toPolarity(a.polarity.PolarityScores(text))
	}
	return s
}

func (a *Analyzer) topics(text string) []models.KeywordMatch {
	topics := matchCategories(text, a.lexicon.Topics, topicConfidenceStep)

	// ties keep lexicon order
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Confidence > topics[j].Confidence
	})

	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}

func (a *Analyzer) emotions(text string) []models.KeywordMatch {
	return matchCategories(text, a.lexicon.Emotions, emotionConfidenceStep)
}

func (a *Analyzer) crisisWords(text string) []string {
	found := []string{}
	for _, phrase := range a.lexicon.Crisis {
		if strings.Contains(text, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

func matchCategories(text string, categories []Category, step float64) []models.KeywordMatch {
	matches := []models.KeywordMatch{}
	for _, c := range categories {
		var found []string
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				found = append(found, kw)
			}
		}
		if len(found) == 0 {
			continue
		}
		matches = append(matches, models.KeywordMatch{
			Name:          c.Name,
			KeywordsFound: found,
			Confidence:    round(math.Min(1.0, float64(len(found))*step), 2),
		})
	}
	return matches
}

func countOccurrences(text string, terms []string) int {
	total := 0
	for _, t := range terms {
		total += strings.Count(text, t)
	}
	return total
}

func readability(text string) float64 {
	var sentences int
	for _, s := range sentenceSplitPattern.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	words := strings.Fields(text)
	if sentences == 0 || len(words) == 0 {
		return 0
	}

	letters := 0
	for _, w := range words {
		letters += utf8.RuneCountInString(w)
	}

	avgSentenceLength := float64(len(words)) / float64(sentences)
	avgWordLength := float64(letters) / float64(len(words))

	score := 100 - (avgSentenceLength*1.5 + avgWordLength*10)
	return round(math.Max(0, math.Min(100, score)), 2)
}

// EmptyAnalysis is returned for text too short to analyze.
func EmptyAnalysis() models.Analysis {
	return models.Analysis{
		Sentiment:       models.Sentiment{Label: models.SentimentNeutral},
		Topics:          []models.KeywordMatch{},
		Emotions:        []models.KeywordMatch{},
		StressLevel:     baselineStress,
		CrisisWords:     []string{},
		Recommendations: []string{"Текст слишком короткий для анализа"},
	}
}

// ErrorAnalysis is the degraded result substituted when scoring fails.
func ErrorAnalysis(err error) models.Analysis {
	result := EmptyAnalysis()
	result.Sentiment.Label = models.SentimentError
	result.Recommendations = []string{"Произошла ошибка при анализе"}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
