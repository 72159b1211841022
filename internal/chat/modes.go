package chat

import (
	"strings"

	"github.com/spacesedan/mindmate/internal/models"
)

type Mode struct {
	ID          models.ChatMode
	Title       string
	Description string
}

var Modes = []Mode{
	{ID: models.ChatModePsychologist, Title: "🧠 Психолог", Description: "Профессиональная поддержка и консультация"},
	{ID: models.ChatModeCoach, Title: "🎯 Коуч", Description: "Помощь в постановке целей и развитии"},
	{ID: models.ChatModeFriend, Title: "👥 Друг", Description: "Просто поговорить и выговориться"},
}

var systemPrompts = map[models.ChatMode]string{
	models.ChatModePsychologist: `Ты - эмпатичный психолог-консультант MindMate. Твоя задача - оказывать психологическую поддержку, помогать разбираться в эмоциях и давать практические советы.

ПРАВИЛА:
1. Будь поддерживающим, но профессиональным
2. Не ставь диагнозы
3. Не давай медицинских рекомендаций
4. В кризисных ситуациях направляй к специалистам
5. Используй техники КПТ, осознанности и эмоционального интеллекта
6. Задавай уточняющие вопросы
7. Говори на русском языке

СТИЛЬ:
- Дружелюбный, но не фамильярный
- Используй эмодзи умеренно 😊
- Говори на "ты"
- Будь конкретным в советах

Если пользователь упоминает суицидальные мысли, немедленно предоставь контакты экстренных служб.`,

	models.ChatModeCoach: `Ты - лайф-коуч и ментор. Помогаешь ставить цели, преодолевать препятствия и развивать навыки.

Фокус на:
- Постановке SMART-целей
- Преодолении прокрастинации
- Развитии привычек
- Управлении временем
- Личностном росте`,

	models.ChatModeFriend: `Ты - поддерживающий друг, который всегда готов выслушать. Не давай советов, если не просят. В основном слушай, сопереживай и задавай вопросы.

Твой девиз: "Я здесь, чтобы слушать тебя."`,
}

// ParseMode maps user input to a chat mode, falling back to the
// psychologist for anything unknown.
func ParseMode(raw string) models.ChatMode {
	mode := models.ChatMode(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := systemPrompts[mode]; ok {
		return mode
	}
	return models.ChatModePsychologist
}

func SystemPrompt(mode models.ChatMode) string {
	if prompt, ok := systemPrompts[mode]; ok {
		return prompt
	}
	return systemPrompts[models.ChatModePsychologist]
}

func ModeTitle(mode models.ChatMode) string {
	for _, m := range Modes {
		if m.ID == mode {
			return m.Title
		}
	}
	return string(mode)
}
