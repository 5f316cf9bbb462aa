package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// OperatorNotifier шлёт администратору клиники сообщение о новой записи.
// Быстрые повторы при сбое Telegram API; итоговая неудача - забота вызывающего
// (запись при этом остаётся подтверждённой).
type OperatorNotifier struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

func NewOperatorNotifier(b *bot.Bot, chatID int64, logger *zap.Logger) *OperatorNotifier {
	return &OperatorNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}
}

// Notify отправляет текст администратору
func (n *OperatorNotifier) Notify(ctx context.Context, text string) error {
	if n.chatID == 0 {
		n.logger.Warn("ADMIN_CHAT_ID is not set, skipping operator notification")
		return nil
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: n.chatID,
			Text:   text,
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
