package sentiment

import (
	"strings"
	"testing"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingScorer struct{}

func (panickingScorer) PolarityScores(string) govader.Sentiment {
	panic("scorer exploded")
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultLexicon())
}

func TestAnalyze_ShortInputReturnsEmptyResult(t *testing.T) {
	a := newTestAnalyzer()

	for _, input := range []string{"", " ", "ab", "  ok  ", "я", "\n\tда\n"} {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, EmptyAnalysis(), a.Analyze(input))
		})
	}
}

func TestAnalyze_Examples(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("negative mood", func(t *testing.T) {
		res := a.Analyze("мне плохо, ничего не хочется")
		assert.Equal(t, models.SentimentNegative, res.Sentiment.Label)
		assert.GreaterOrEqual(t, res.StressLevel, 7)
		assert.False(t, res.IsCrisis)
		assert.Empty(t, res.CrisisWords)
	})

	t.Run("positive mood", func(t *testing.T) {
		res := a.Analyze("все отлично, я счастлив!")
		assert.Equal(t, models.SentimentPositive, res.Sentiment.Label)
		assert.LessOrEqual(t, res.StressLevel, 5)
		assert.False(t, res.IsCrisis)
	})

	t.Run("crisis phrase", func(t *testing.T) {
		res := a.Analyze("Я больше не хочу жить")
		assert.True(t, res.IsCrisis)
		assert.Contains(t, res.CrisisWords, "не хочу жить")
		assert.GreaterOrEqual(t, res.StressLevel, 8)
		assert.Equal(t, recCrisis, res.Recommendations[0])
	})
}

func TestAnalyze_SentimentTiesAreNeutral(t *testing.T) {
	a := newTestAnalyzer()

	res := a.Analyze("сегодня хорошо, но вчера было плохо")
	assert.Equal(t, 1, res.Sentiment.PositiveHits)
	assert.Equal(t, 1, res.Sentiment.NegativeHits)
	assert.Equal(t, models.SentimentNeutral, res.Sentiment.Label)

	res = a.Analyze("обычный вторник")
	assert.Equal(t, models.SentimentNeutral, res.Sentiment.Label)
}

func TestAnalyze_StressAlwaysInRange(t *testing.T) {
	a := newTestAnalyzer()

	inputs := []string{
		"!!!!!!!!!!!!!!!!!!!!!",
		"...,,,;;;:::",
		"😀😀😀😀",
		strings.Repeat("плохо тревога паника страх нервы стресс одиночество долг депрессия! ", 300),
		strings.Repeat("счастлив отлично прекрасно ", 500),
		strings.Repeat("a", 100000),
		"не хочу жить, все плохо, нет выхода!!!!!!",
		"http://example.com test@example.com #тег",
	}

	for _, input := range inputs {
		res := a.Analyze(input)
		assert.GreaterOrEqual(t, res.StressLevel, 1)
		assert.LessOrEqual(t, res.StressLevel, 10)
	}
}

func TestAnalyze_CrisisFlagMatchesSubstringScan(t *testing.T) {
	a := newTestAnalyzer()
	phrases := DefaultLexicon().normalized().Crisis

	inputs := []string{
		"Я НЕ хочу жить",
		"наконец-то выходные",
		"I want to END IT ALL",
		"всё плохо, совсем",
		"мне просто грустно",
		"я думал про суицид",
		"нет, выхода я не нашел",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			normalized := Normalize(input)
			expected := false
			for _, p := range phrases {
				if strings.Contains(normalized, p) {
					expected = true
				}
			}

			res := a.Analyze(input)
			assert.Equal(t, expected, res.IsCrisis)
			assert.Equal(t, expected, len(res.CrisisWords) > 0)
		})
	}
}

func TestAnalyze_NegatedCrisisPhraseStillMatches(t *testing.T) {
	res := newTestAnalyzer().Analyze("I do NOT want to commit suicide")
	assert.True(t, res.IsCrisis)
	assert.Equal(t, []string{"suicide"}, res.CrisisWords)
}

func TestAnalyze_TopicConfidence(t *testing.T) {
	a := newTestAnalyzer()

	res := a.Analyze("мой начальник опять недоволен")
	require.Len(t, res.Topics, 1)
	assert.Equal(t, TopicWork, res.Topics[0].Name)
	assert.Equal(t, 0.3, res.Topics[0].Confidence)
	assert.Equal(t, []string{"начальник"}, res.Topics[0].KeywordsFound)

	res = a.Analyze("работа, начальник, дедлайн и проект")
	require.NotEmpty(t, res.Topics)
	assert.Equal(t, TopicWork, res.Topics[0].Name)
	assert.Equal(t, 1.0, res.Topics[0].Confidence)
}

func TestAnalyze_TopicsSortedAndTruncated(t *testing.T) {
	a := newTestAnalyzer()

	res := a.Analyze("работа семья здоровье деньги экзамен тревога, паника и страх")
	require.Len(t, res.Topics, maxTopics)

	assert.Equal(t, TopicAnxiety, res.Topics[0].Name)
	assert.Equal(t, 0.9, res.Topics[0].Confidence)

	seen := map[string]bool{}
	for i, topic := range res.Topics {
		assert.False(t, seen[topic.Name], "duplicate topic %s", topic.Name)
		seen[topic.Name] = true
		if i > 0 {
			assert.LessOrEqual(t, topic.Confidence, res.Topics[i-1].Confidence)
		}
	}

	// ties keep lexicon order
	assert.Equal(t, []string{TopicAnxiety, TopicWork, TopicFamily, TopicHealth, TopicFinance}, res.TopicNames())
}

func TestAnalyze_StressContributions(t *testing.T) {
	a := NewAnalyzer(DefaultLexicon(), WithPolarityScorer(nil))

	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"neutral short", "обычный день прошел", 6},
		{"neutral medium", "сегодня я сходил в магазин купил хлеб молоко сыр и вернулся домой", 5},
		{"exclamations", "сегодня я сходил в магазин купил хлеб молоко сыр и вернулся домой!!!!", 6},
		{"anxiety markers capped", "меня тревожит паника, страх и нервы, стресс сегодня весь день подряд", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Analyze(tt.input).StressLevel)
		})
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := newTestAnalyzer()
	input := "Работа достала, начальник кричит, денег нет и мне очень тревожно!!!!"

	assert.Equal(t, a.Analyze(input), a.Analyze(input))
}

func TestAnalyze_RecoversFromPanics(t *testing.T) {
	a := NewAnalyzer(DefaultLexicon(), WithPolarityScorer(panickingScorer{}))

	res := a.Analyze("любой нормальный текст")
	assert.Equal(t, models.SentimentError, res.Sentiment.Label)
	assert.Equal(t, 5, res.StressLevel)
	assert.Equal(t, []string{"Произошла ошибка при анализе"}, res.Recommendations)
	assert.Equal(t, "scorer exploded", res.Error)
	assert.False(t, res.IsCrisis)
}

func TestAnalyze_LexiconIsCopied(t *testing.T) {
	lex := DefaultLexicon()
	a := NewAnalyzer(lex)

	lex.Crisis[0] = "обычный"
	lex.Topics[0].Keywords[0] = "обычный"

	res := a.Analyze("обычный день")
	assert.False(t, res.IsCrisis)
	assert.Empty(t, res.Topics)
}

func TestAnalyze_EmotionsAndMetrics(t *testing.T) {
	res := newTestAnalyzer().Analyze("Ура! Я так рад. Всё прекрасно")

	require.NotEmpty(t, res.Emotions)
	assert.Equal(t, "радость", res.Emotions[0].Name)
	assert.Equal(t, 0.6, res.Emotions[0].Confidence)
	assert.Equal(t, 6, res.Metrics.WordCount)
	assert.GreaterOrEqual(t, res.Metrics.Readability, 0.0)
	assert.LessOrEqual(t, res.Metrics.Readability, 100.0)
	assert.Equal(t, "ура! я так рад. все прекрасно", res.TextCleaned)
}

func TestAnalyze_CalmEmotionIgnoresEmbeddedWords(t *testing.T) {
	res := newTestAnalyzer().Analyze("Я умираю от усталости, примирения не будет")

	for _, e := range res.Emotions {
		assert.NotEqual(t, "спокойствие", e.Name)
	}
}
