package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		text string
		want Intent
	}{
		{"Сколько стоит анализ крови?", IntentPrice},
		{"ПРАЙС пришлите пожалуйста", IntentPrice},
		{"какая стоимость узи", IntentPrice},
		{"Хочу записаться к кардиологу", IntentBooking},
		{"запись на завтра", IntentBooking},
		{"какой у вас график работы", IntentHours},
		{"до скольки часов открыто", IntentHours},
		{"нужно ли сдавать натощак", IntentPrep},
		{"как подготовиться к УЗИ", IntentPrep},
		{"привет", IntentUnknown},
		{"", IntentUnknown},
		{"   ", IntentUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.text), "text: %q", tt.text)
	}
}

func TestClassifyPriceBeatsBooking(t *testing.T) {
	// Вопрос про цену записи - это вопрос про цену
	c := NewKeywordClassifier()
	assert.Equal(t, IntentPrice, c.Classify("сколько стоит запись к врачу"))
}
