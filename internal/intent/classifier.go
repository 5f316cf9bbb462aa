package intent

import "strings"

// Intent тип обращения пользователя
type Intent string

const (
	IntentPrice   Intent = "price"   // цены и анализы
	IntentBooking Intent = "booking" // запись на приём
	IntentHours   Intent = "hours"   // режим работы
	IntentPrep    Intent = "prep"    // подготовка к анализам
	IntentUnknown Intent = "unknown"
)

// Classifier определяет тип обращения по свободному тексту.
// Интерфейс позволяет заменить ключевые слова на что-то умнее,
// не трогая обработчики.
type Classifier interface {
	Classify(text string) Intent
}

// KeywordClassifier простая маршрутизация по ключевым словам
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return IntentUnknown
	}

	switch {
	case containsAny(t, "цена", "стоит", "прайс", "стоимост"):
		return IntentPrice
	case strings.Contains(t, "запис"):
		return IntentBooking
	case containsAny(t, "режим", "график", "часы"):
		return IntentHours
	case containsAny(t, "подготов", "натощак"):
		return IntentPrep
	}

	return IntentUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
