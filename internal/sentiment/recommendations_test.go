package sentiment

import (
	"errors"
	"testing"

	"github.com/spacesedan/mindmate/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRecommendations(t *testing.T) {
	work := []models.KeywordMatch{{Name: TopicWork, Confidence: 0.3}}
	lonely := []models.KeywordMatch{{Name: TopicLoneliness, Confidence: 0.3}}

	tests := []struct {
		name     string
		label    models.SentimentLabel
		topics   []models.KeywordMatch
		stress   int
		crisis   bool
		expected []string
	}{
		{"calm", models.SentimentNeutral, nil, 5, false, []string{recDefault}},
		{"crisis", models.SentimentNegative, nil, 9, true, []string{recCrisis, recBreathing, recJournaling}},
		{"elevated", models.SentimentNeutral, nil, 6, false, []string{recJournaling}},
		{"negative work", models.SentimentNegative, work, 7, false, []string{recJournaling, recSplitTasks}},
		{"positive work", models.SentimentPositive, work, 4, false, []string{recDefault}},
		{"lonely", models.SentimentNeutral, lonely, 5, false, []string{recLoneliness}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Recommendations(tt.label, tt.topics, tt.stress, tt.crisis))
		})
	}
}

func TestSummary(t *testing.T) {
	a := models.Analysis{
		Sentiment:   models.Sentiment{Label: models.SentimentNegative},
		StressLevel: 8,
		Topics: []models.KeywordMatch{
			{Name: "работа"}, {Name: "финансы"}, {Name: "семья"}, {Name: "учеба"},
		},
		IsCrisis: true,
	}

	expected := "📉 **Негативный настрой**\n" +
		"🔴 **Высокий стресс:** 8/10\n" +
		"🏷️ **Основные темы:** работа, финансы, семья\n" +
		"🚨 **Обнаружены тревожные сигналы**"
	assert.Equal(t, expected, Summary(a))

	assert.Equal(t, "📊 **Нейтральный настрой**\n⚪ **Средний стресс:** 5/10", Summary(EmptyAnalysis()))
	assert.Equal(t, "Анализ недоступен.", Summary(ErrorAnalysis(errors.New("boom"))))
}
