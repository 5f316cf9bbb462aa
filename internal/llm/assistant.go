package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = `Ты — МедНавигатор, справочный помощник медицинской клиники "РГ Клиник".
Отвечай кратко и по-русски. Помогаешь с услугами, ценами, подготовкой к анализам и записью.
Никогда не давай медицинских консультаций, диагнозов и назначений — только справочную
информацию и совет обратиться к врачу. Если вопрос не про клинику, вежливо верни
разговор к услугам клиники.`

// Assistant запасной ответчик на свободные вопросы, когда ключевые слова
// не сработали. Без ключа API молча выключен.
type Assistant struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewAssistant(apiKey string, logger *zap.Logger) *Assistant {
	a := &Assistant{
		model:  openai.GPT4oMini,
		logger: logger,
	}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

// Enabled проверяет, настроен ли ответчик
func (a *Assistant) Enabled() bool {
	return a.client != nil
}

// Answer отвечает на свободный вопрос пользователя
func (a *Assistant) Answer(ctx context.Context, question string) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("llm assistant is not configured")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		MaxTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
