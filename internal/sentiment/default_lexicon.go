package sentiment

const (
	TopicWork       = "работа"
	TopicFamily     = "семья"
	TopicHealth     = "здоровье"
	TopicFinance    = "финансы"
	TopicStudy      = "учеба"
	TopicLoneliness = "одиночество"
	TopicAnxiety    = "тревога"
	TopicDepression = "депрессия"
)

// DefaultLexicon returns a fresh copy of the built-in Russian lexicon
// (with a handful of English crisis and sentiment terms).
func DefaultLexicon() Lexicon {
	return Lexicon{
		Topics: []Category{
			{Name: TopicWork, Keywords: []string{
				"работа", "начальник", "коллега", "дедлайн", "проект", "офис", "зарплата",
				"совещание", "задача", "увольнение", "карьера",
			}},
			{Name: TopicFamily, Keywords: []string{
				"семья", "родители", "дети", "муж", "жена", "брат", "сестра", "родственники",
				"отношения", "развод", "брак", "семейный",
			}},
			{Name: TopicHealth, Keywords: []string{
				"здоровье", "болезнь", "боль", "врач", "больница", "лекарство", "симптом",
				"усталость", "сон", "бессонница", "диета", "спорт",
			}},
			{Name: TopicFinance, Keywords: []string{
				"деньги", "финансы", "долг", "кредит", "зарплата", "экономия", "траты",
				"бюджет", "накопления", "инвестиции", "бедность",
			}},
			{Name: TopicStudy, Keywords: []string{
				"учеба", "экзамен", "сессия", "преподаватель", "студент", "зачет", "курсовая",
				"диплом", "лекция", "образование", "университет",
			}},
			{Name: TopicLoneliness, Keywords: []string{
				"одиночество", "одинокий", "покинутый", "изоляция", "отвергнутый",
				"покидать", "бросить", "нелюбимый", "lonely",
			}},
			{Name: TopicAnxiety, Keywords: []string{
				"тревога", "паника", "страх", "беспокойство", "нервы", "стресс", "напряжение",
				"волнение", "испуг", "фобия", "anxiety", "panic",
			}},
			{Name: TopicDepression, Keywords: []string{
				"депрессия", "апатия", "тоска", "грусть", "безнадежность", "отчаяние",
				"печаль", "меланхолия", "подавленность", "суицид", "depression",
			}},
		},
		Emotions: []Category{
			{Name: "радость", Keywords: []string{"рад", "счастлив", "ура", "отлично", "прекрасно", "замечательно", "восторг"}},
			{Name: "грусть", Keywords: []string{"грустно", "печально", "тоскливо", "плакать", "слезы", "уныние"}},
			{Name: "гнев", Keywords: []string{"злой", "сердит", "раздражен", "бесит", "ненавижу", "ярость", "возмущен"}},
			{Name: "страх", Keywords: []string{"боюсь", "страшно", "испуг", "ужас", "паника", "тревога"}},
			{Name: "удивление", Keywords: []string{"удивлен", "неожиданно", "ого", "вау", "невероятно", "потрясающе"}},
			{Name: "спокойствие", Keywords: []string{"спокоен", "умиротворен", "тишина", "расслаблен", "гармония"}},
		},
		Positive: []string{
			"хорошо", "отлично", "прекрасно", "замечательно", "счастлив", "рад", "доволен",
			"спокойн", "люблю", "весело", "здорово", "супер", "вдохнов", "благодар", "улыбаюсь",
			"happy", "great", "glad", "calm",
		},
		Negative: []string{
			"плохо", "грустно", "тоскливо", "печаль", "устал", "одиноко", "тяжело", "больно",
			"страшно", "тревожно", "не хочется", "ничего не хочу", "ненавижу", "бесит", "злюсь",
			"обидно", "плачу", "слезы", "депресс", "отчаян", "безнадеж", "раздраж", "нет сил",
			"пусто", "ужасно",
			"sad", "tired", "hopeless", "depressed", "anxious", "awful", "terrible",
		},
		Crisis: []string{
			"суицид", "самоубийство", "покончить", "свести счеты", "не хочу жить",
			"все бессмысленно", "надоело жить", "устал от жизни", "лучше умереть",
			"не вижу смысла", "все плохо", "нет выхода",
			"suicide", "kill myself", "end it all", "want to die",
		},
		StressTopics:   []string{TopicAnxiety, TopicDepression, TopicLoneliness, TopicFinance},
		AnxietyMarkers: []string{"тревож", "паник", "страх", "боюсь", "нерв", "стресс"},
	}
}
