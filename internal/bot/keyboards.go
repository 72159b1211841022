package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnMood       = "📊 Настроение"
	btnChat       = "💬 Чат с ИИ"
	btnExercises  = "🧘 Упражнения"
	btnStats      = "📈 Статистика"
	btnReminders  = "🔔 Напоминания"
	btnHelp       = "❓ Помощь"
	btnCrisis     = "🆘 Экстренная помощь"
	btnBack       = "↩️ Назад в меню"
	btnLeaveChat  = "↩️ Выйти из чата"
	btnPsychology = "🧠 Психолог"
	btnCoach      = "🎯 Коуч"
	btnFriend     = "👥 Друг"

	btnBreathing  = "🌬 Дыхание 4-7-8"
	btnGrounding  = "🌿 Заземление 5-4-3-2-1"
	btnRelaxation = "💪 Релаксация"
	btnGratitude  = "📝 Благодарность"
)

// menuCommands maps reply keyboard buttons onto the commands they stand for.
var menuCommands = map[string]string{
	btnMood:       "/mood",
	btnChat:       "/chat",
	btnExercises:  "/exercises",
	btnStats:      "/stats",
	btnReminders:  "/reminders",
	btnHelp:       "/help",
	btnCrisis:     "/crisis",
	btnBack:       "/menu",
	btnLeaveChat:  "/stop",
	btnPsychology: "/chat psychologist",
	btnCoach:      "/chat coach",
	btnFriend:     "/chat friend",

	"Главное меню": "/menu",
	"Меню":         "/menu",
	"Назад":        "/menu",
}

func keyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			r = append(r, tgbotapi.NewKeyboardButton(text))
		}
		buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(r...))
	}

	kb := tgbotapi.NewReplyKeyboard(buttons...)
	kb.ResizeKeyboard = true
	return kb
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(
		[]string{btnMood, btnChat},
		[]string{btnExercises, btnStats},
		[]string{btnReminders, btnHelp},
		[]string{btnCrisis},
	)
}

func moodKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(
		[]string{"1 😭", "2 😢", "3 😔", "4 😕", "5 😐"},
		[]string{"6 🙂", "7 👍", "8 😊", "9 🤩", "10 😍"},
		[]string{btnBack},
	)
}

func exercisesKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(
		[]string{btnBreathing, btnGrounding},
		[]string{btnRelaxation, btnGratitude},
		[]string{btnBack},
	)
}

func chatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(
		[]string{btnPsychology, btnCoach, btnFriend},
		[]string{btnLeaveChat},
	)
}
