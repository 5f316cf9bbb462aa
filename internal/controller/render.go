package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rgclinic/mednavigator-bot/internal/controller/keyboard"
	"github.com/rgclinic/mednavigator-bot/internal/dialog"
	"go.uber.org/zap"
)

// sendReplies отправляет ответы диалога пользователю,
// переводя кнопки действий в inline клавиатуру
func (c *BotController) sendReplies(ctx context.Context, b *bot.Bot, chatID int64, replies []dialog.Reply) {
	for _, reply := range replies {
		params := &bot.SendMessageParams{
			ChatID: chatID,
			Text:   reply.Text,
		}

		if len(reply.Keyboard) > 0 {
			kb := keyboard.NewBuilder()
			for _, row := range reply.Keyboard {
				buttons := make([]models.InlineKeyboardButton, 0, len(row))
				for _, btn := range row {
					buttons = append(buttons, keyboard.Button(btn.Label, btn.Action.Encode()))
				}
				kb.Row(buttons...)
			}
			params.ReplyMarkup = kb.Build()
		}

		if _, err := b.SendMessage(ctx, params); err != nil {
			c.logger.Error("Failed to send reply",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}
}

// sendText отправляет простой текст, опционально с главным меню
func (c *BotController) sendText(ctx context.Context, b *bot.Bot, chatID int64, text string, withMenu bool) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if withMenu {
		params.ReplyMarkup = mainMenu()
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		c.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// mainMenu главное меню бота, как в исходной версии МедНавигатора
func mainMenu() *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.Button("📅 Запись на приём", menuRecord)).
		Row(keyboard.Button("🧾 Цены и анализы", menuPrices)).
		Row(keyboard.Button("ℹ️ Подготовка", menuPrep)).
		Row(keyboard.Button("📍 Контакты", menuContacts)).
		Build()
}
