package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/spacesedan/mindmate/internal/chat"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/spacesedan/mindmate/internal/sentiment"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"~", `\~`,
	"#", `\#`,
)

// escapeMarkdown keeps user supplied text literal inside markdown replies.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func moodEmoji(score int) string {
	switch {
	case score >= 9:
		return "😍"
	case score >= 8:
		return "😊"
	case score >= 7:
		return "🙂"
	case score >= 5:
		return "😐"
	case score >= 4:
		return "😕"
	case score >= 3:
		return "😔"
	case score >= 2:
		return "😢"
	default:
		return "😭"
	}
}

func moodSavedReply(score int) string {
	var feedback string
	switch {
	case score >= 8:
		feedback = "Отлично! Запишите, что именно вызвало позитивные эмоции."
	case score >= 5:
		feedback = "Спасибо, что отмечаете свое состояние."
	default:
		feedback = "Похоже, вам нелегко. Попробуйте /exercises или поговорите с ИИ через /chat."
	}
	return fmt.Sprintf("%s **Настроение %d/10 записано.**\n\n%s", moodEmoji(score), score, feedback)
}

func analysisReply(a models.Analysis) string {
	var b strings.Builder
	b.WriteString(sentiment.Summary(a))

	if len(a.Recommendations) > 0 {
		b.WriteString("\n\n**💡 Рекомендации:**\n\n")
		for _, rec := range a.Recommendations {
			b.WriteString("- " + rec + "\n")
		}
	}
	return b.String()
}

func statsReply(stats models.UserStats, loc *time.Location) string {
	if stats.TotalRecords == 0 {
		return emptyStatsText
	}

	var b strings.Builder
	b.WriteString("📊 **Ваша статистика**\n\n")
	fmt.Fprintf(&b, "- Записей: %d\n", stats.TotalRecords)
	if stats.AvgMood != nil {
		fmt.Fprintf(&b, "- Среднее настроение: %.1f/10 %s\n", *stats.AvgMood, moodEmoji(int(*stats.AvgMood+0.5)))
	}
	if stats.AvgStress != nil {
		fmt.Fprintf(&b, "- Средний стресс: %.1f/10\n", *stats.AvgStress)
	}
	if stats.CrisisCount > 0 {
		fmt.Fprintf(&b, "- Тревожных сигналов: %d\n", stats.CrisisCount)
	}

	if len(stats.RecentLogs) > 0 {
		b.WriteString("\n**Последние записи:**\n\n")
		for _, l := range stats.RecentLogs {
			line := l.CreatedAt.In(loc).Format("02.01 15:04")
			if l.MoodScore != nil {
				line += fmt.Sprintf(" · %d/10 %s", *l.MoodScore, moodEmoji(*l.MoodScore))
			}
			if l.Message != "" {
				line += " · " + escapeMarkdown(l.Message)
			}
			b.WriteString("- " + line + "\n")
		}
	}
	return b.String()
}

func chatStartedReply(mode models.ChatMode) string {
	return fmt.Sprintf("💬 **Диалог с ИИ начат** (%s)\n\n"+
		"Напишите, что у вас на душе. Чтобы завершить диалог, используйте /stop.\n\n"+
		"*ИИ не заменяет специалиста. В кризисной ситуации используйте /crisis.*",
		chat.ModeTitle(mode))
}

func chatEndedReply(session models.ChatSession) string {
	return fmt.Sprintf("✅ **Диалог завершен.**\n\nСообщений: %d", session.MessageCount)
}
