package bot

const welcomeText = `🧠 **Добро пожаловать в MindMate, %s!**

Я ваш психологический помощник.

**Что я умею:**

- Анализировать ваше настроение
- Давать рекомендации
- Вести статистику
- Общаться в чате с ИИ

Просто напишите, как дела! 😊 Список команд: /help`

const helpText = `**🆘 Помощь по MindMate Bot**

**Как работать с ботом:**

1. Напишите сообщение о вашем настроении
2. Используйте команды для разных функций
3. Получайте рекомендации и анализ

**Доступные команды:**

- /start - Перезапустить бота
- /help - Эта справка
- /mood - Записать настроение (1-10)
- /stats - Показать статистику
- /chat - Начать диалог с ИИ (режимы: psychologist, coach, friend)
- /stop - Завершить диалог с ИИ
- /exercises - Упражнения для снятия стресса
- /reminders - Ежедневные напоминания (on/off)
- /crisis - Экстренная помощь

**📞 Телефон доверия:** 8-800-2000-122`

const crisisText = `🚨 **ЭКСТРЕННАЯ ПОМОЩЬ**

**📞 Телефоны доверия (бесплатно):**

- 8-800-2000-122 - Единый телефон доверия
- 112 - Единый номер экстренных служб

**🏥 Если нужна срочная помощь:**

1. Вызовите скорую помощь (103)
2. Обратитесь к близким

**Вы не одни! Помощь доступна 24/7.**`

const unknownCommandText = `🤔 **Я не понял эту команду.**

Используйте /help для списка команд или просто напишите сообщение о вашем настроении.`

const errorText = `⚠️ **Произошла ошибка**

Пожалуйста, попробуйте еще раз или используйте команду /start.`

const menuText = "Главное меню MindMate. Выберите действие или напишите сообщение."

const moodPromptText = `📊 **Оцените ваше настроение от 1 до 10:**

1 - Очень плохо 😭
5 - Нормально 😐
10 - Отлично! 😍

Нажмите кнопку или напишите цифру, например: 7`

const moodInvalidText = "Пожалуйста, отправьте число от 1 до 10."

const reminderText = `🔔 **Время для check-in!**

Как прошел ваш день? Оцените настроение от 1 до 10.

Отключить напоминания: /reminders off`

const (
	chatUnavailableText = "⚠️ Чат с ИИ сейчас недоступен. Попробуйте позже или используйте другие функции бота."
	chatNoSessionText   = "Диалог с ИИ не начат. Используйте /chat, чтобы начать."
	chatFailedText      = "⚠️ Не удалось получить ответ. Попробуйте позже или используйте другие функции бота."
	rateLimitedText     = "⏳ Слишком много сообщений. Подождите минуту и попробуйте снова."
	emptyStatsText      = "📊 **Ваша статистика**\n\nСтатистика появится после нескольких записей настроения. Используйте /mood или просто напишите, как вы себя чувствуете."
)

const (
	remindersUsageText = "Используйте /reminders on или /reminders off."
	remindersOnText    = "🔔 Ежедневные напоминания включены."
	remindersOffText   = "🔕 Ежедневные напоминания выключены."
)

const exercisesIntroText = "🧘 **Упражнения**\n\nВыберите упражнение на клавиатуре."

// exercises maps exercise buttons to their instructions.
var exercises = map[string]string{
	btnBreathing: `🌬 **Дыхание 4-7-8**

1. Вдохните через нос на 4 счета
2. Задержите дыхание на 7 счетов
3. Медленно выдохните через рот на 8 счетов
4. Повторите 4 цикла`,

	btnGrounding: `🌿 **Заземление 5-4-3-2-1**

Назовите про себя:

- 5 вещей, которые вы видите
- 4 вещи, которые можете потрогать
- 3 звука, которые слышите
- 2 запаха, которые чувствуете
- 1 вкус

Это помогает вернуться в настоящий момент при тревоге.`,

	btnRelaxation: `💪 **Прогрессивная мышечная релаксация**

1. Сядьте или лягте удобно
2. Напрягите мышцы стоп на 5 секунд, затем расслабьте
3. Поднимайтесь выше: икры, бедра, живот, руки, плечи, лицо
4. Замечайте разницу между напряжением и расслаблением`,

	btnGratitude: `📝 **Список благодарности**

Запишите три вещи, за которые вы благодарны сегодня. Они могут быть совсем небольшими: вкусный чай, теплое сообщение, солнечная погода.

Можно написать их прямо сюда, и я проанализирую ваше настроение.`,
}
