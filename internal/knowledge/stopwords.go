package knowledge

// russianStopwords is the nltk "russian" stopword list plus the two extra
// entries the original knowledge base added by hand (original_source's
// knowledge_base.py: russian_stopwords.extend(['это', 'нею'])).
var russianStopwords = map[string]bool{
	"и": true, "в": true, "во": true, "не": true, "что": true, "он": true,
	"на": true, "я": true, "с": true, "со": true, "как": true, "а": true,
	"то": true, "все": true, "она": true, "так": true, "его": true, "но": true,
	"да": true, "ты": true, "к": true, "у": true, "же": true, "вы": true,
	"за": true, "бы": true, "по": true, "только": true, "ее": true, "мне": true,
	"было": true, "вот": true, "от": true, "меня": true, "еще": true, "нет": true,
	"о": true, "из": true, "ему": true, "теперь": true, "когда": true, "даже": true,
	"ну": true, "вдруг": true, "ли": true, "если": true, "уже": true, "или": true,
	"ни": true, "быть": true, "был": true, "него": true, "до": true, "вас": true,
	"нибудь": true, "опять": true, "уж": true, "вам": true, "ведь": true, "там": true,
	"потом": true, "себя": true, "ничего": true, "ей": true, "может": true, "они": true,
	"тут": true, "где": true, "есть": true, "надо": true, "ней": true, "для": true,
	"мы": true, "тебя": true, "их": true, "чем": true, "была": true, "сам": true,
	"чтоб": true, "без": true, "будто": true, "чего": true, "раз": true, "тоже": true,
	"себе": true, "под": true, "будет": true, "ж": true, "тогда": true, "кто": true,
	"этот": true, "того": true, "потому": true, "этого": true, "какой": true, "совсем": true,
	"ним": true, "здесь": true, "этом": true, "один": true, "почти": true, "мой": true,
	"тем": true, "чтобы": true, "нее": true, "сейчас": true, "были": true, "куда": true,
	"зачем": true, "всех": true, "никогда": true, "можно": true, "при": true, "наконец": true,
	"два": true, "об": true, "другой": true, "хоть": true, "после": true, "над": true,
	"больше": true, "тот": true, "через": true, "эти": true, "нас": true, "про": true,
	"всего": true, "них": true, "какая": true, "много": true, "разве": true, "три": true,
	"эту": true, "моя": true, "впрочем": true, "хорошо": true, "свою": true, "этой": true,
	"перед": true, "иногда": true, "лучше": true, "чуть": true, "том": true, "нельзя": true,
	"такой": true, "им": true, "более": true, "всегда": true, "конечно": true, "всю": true,
	"между": true,
	// hand-added extras from the original knowledge base
	"это": true, "нею": true,
}
