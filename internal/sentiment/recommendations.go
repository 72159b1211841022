package sentiment

import (
	"fmt"
	"strings"

	"github.com/spacesedan/mindmate/internal/models"
)

const (
	recCrisis     = "⚠️ **Обнаружены тревожные слова.** Рекомендуется обратиться за профессиональной помощью."
	recBreathing  = "🧘 **Высокий уровень стресса.** Попробуйте технику дыхания 4-7-8."
	recJournaling = "📝 **Записывайте мысли.** Ведение дневника помогает структурировать переживания."
	recSplitTasks = "💼 **Проблемы на работе/с финансами.** Попробуйте технику 'разделение проблемы на части'."
	recLoneliness = "👥 **Чувство одиночества.** Рассмотрите возможность присоединиться к тематическим группам по интересам."
	recDefault    = "👍 **Продолжайте самонаблюдение.** Регулярная практика ведет к лучшему пониманию себя."
)

// Recommendations picks static advice by threshold rules, in a fixed order.
func Recommendations(label models.SentimentLabel, topics []models.KeywordMatch, stress int, isCrisis bool) []string {
	var recs []string

	if isCrisis {
		recs = append(recs, recCrisis)
	}
	if stress >= 8 {
		recs = append(recs, recBreathing)
	}
	if stress >= 6 {
		recs = append(recs, recJournaling)
	}
	if label == models.SentimentNegative && hasTopic(topics, TopicWork, TopicFinance) {
		recs = append(recs, recSplitTasks)
	}
	if hasTopic(topics, TopicLoneliness) {
		recs = append(recs, recLoneliness)
	}
	if len(recs) == 0 {
		recs = append(recs, recDefault)
	}
	return recs
}

func hasTopic(topics []models.KeywordMatch, names ...string) bool {
	for _, t := range topics {
		for _, n := range names {
			if t.Name == n {
				return true
			}
		}
	}
	return false
}

// Summary renders a short markdown overview of an analysis.
func Summary(a models.Analysis) string {
	if a.Sentiment.Label == "" || a.Sentiment.Label == models.SentimentError {
		return "Анализ недоступен."
	}

	var parts []string
	switch a.Sentiment.Label {
	case models.SentimentPositive:
		parts = append(parts, "📈 **Позитивный настрой**")
	case models.SentimentNegative:
		parts = append(parts, "📉 **Негативный настрой**")
	default:
		parts = append(parts, "📊 **Нейтральный настрой**")
	}

	switch stress := a.StressLevel; {
	case stress >= 8:
		parts = append(parts, fmt.Sprintf("🔴 **Высокий стресс:** %d/10", stress))
	case stress >= 6:
		parts = append(parts, fmt.Sprintf("🟡 **Повышенный стресс:** %d/10", stress))
	case stress <= 4:
		parts = append(parts, fmt.Sprintf("🟢 **Низкий стресс:** %d/10", stress))
	default:
		parts = append(parts, fmt.Sprintf("⚪ **Средний стресс:** %d/10", stress))
	}

	if names := a.TopicNames(); len(names) > 0 {
		if len(names) > 3 {
			names = names[:3]
		}
		parts = append(parts, "🏷️ **Основные темы:** "+strings.Join(names, ", "))
	}

	if a.IsCrisis {
		parts = append(parts, "🚨 **Обнаружены тревожные сигналы**")
	}

	return strings.Join(parts, "\n")
}
