package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rgclinic/mednavigator-bot/internal/dialog"
	"github.com/rgclinic/mednavigator-bot/internal/intent"
	"github.com/rgclinic/mednavigator-bot/internal/metrics"
	"go.uber.org/zap"
)

const welcome = "👋 Здравствуйте! Я — МедНавигатор РГ Клиник.\n" +
	"Помогаю узнать цены и сроки анализов, подготовку, режим работы и оформить запись.\n" +
	"Отправьте сообщение или голос — подскажу 😊"

const helpText = "Я умею:\n" +
	"📅 /record — запись на приём\n" +
	"🧾 назвать цену анализа (напишите название или код)\n" +
	"ℹ️ прислать памятку по подготовке\n" +
	"📍 подсказать контакты и режим работы\n\n" +
	"Все ответы справочные, медицинских консультаций не даю."

// Callback data пунктов главного меню
const (
	menuRecord   = "menu:record"
	menuPrices   = "menu:prices"
	menuPrep     = "menu:prep"
	menuContacts = "menu:contacts"
)

// HandleStart приветствие и главное меню
func (c *BotController) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	c.sendText(ctx, b, update.Message.Chat.ID, welcome, true)
}

// HandleHelp справка по возможностям
func (c *BotController) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	c.sendText(ctx, b, update.Message.Chat.ID, helpText, true)
}

// HandleRecord начинает диалог записи на приём
func (c *BotController) HandleRecord(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	c.sendReplies(ctx, b, chatID, c.machine.Start(ctx, chatID))
}

// HandleCancel прерывает текущий диалог записи
func (c *BotController) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	c.sendReplies(ctx, b, chatID, c.machine.Cancel(ctx, chatID))
}

// HandleTextMessage обрабатывает свободный текст: продолжение диалога
// записи либо справочный вопрос
func (c *BotController) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		// Команды обрабатываются своими хэндлерами
		return
	}

	chatID := update.Message.Chat.ID

	if c.machine.Store().Active(chatID) {
		c.sendReplies(ctx, b, chatID, c.machine.Handle(ctx, chatID, dialog.TextEvent{Text: text}))
		return
	}

	c.routeFreeText(ctx, b, chatID, text)
}

// HandleCallbackQuery разбирает нажатия inline кнопок
func (c *BotController) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	// Подтверждаем callback, чтобы у пользователя пропали "часики"
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	msg := callback.Message.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	c.logger.Info("Routing callback",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID))

	switch callback.Data {
	case menuRecord:
		c.sendReplies(ctx, b, chatID, c.machine.Start(ctx, chatID))
		return
	case menuPrices:
		c.sendText(ctx, b, chatID, "🧾 Напишите название анализа или код — попробую найти в базе (справочно).", false)
		return
	case menuPrep:
		c.sendText(ctx, b, chatID, "ℹ️ Напишите название анализа — пришлю памятку по подготовке (справочно).", false)
		return
	case menuContacts:
		contacts, err := c.catalog.Contacts(ctx)
		if err != nil {
			c.logger.Error("Failed to load contacts", zap.Error(err))
			contacts = "Не получилось загрузить контакты, попробуйте позже."
		}
		c.sendText(ctx, b, chatID, contacts, true)
		return
	}

	if action, ok := dialog.ParseAction(callback.Data); ok {
		c.sendReplies(ctx, b, chatID, c.machine.Handle(ctx, chatID, dialog.ActionEvent{Action: action}))
		return
	}

	c.sendText(ctx, b, chatID, "Выберите раздел ниже 👇", true)
}

// routeFreeText маршрутизирует справочный вопрос по типу обращения
func (c *BotController) routeFreeText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	it := c.classifier.Classify(text)
	metrics.IntentRequests.WithLabelValues(string(it)).Inc()

	if it == intent.IntentBooking {
		c.sendReplies(ctx, b, chatID, c.machine.Start(ctx, chatID))
		return
	}

	c.sendText(ctx, b, chatID, c.infoAnswer(ctx, text, it), true)
}

// infoAnswer собирает текст справочного ответа (общий путь для текста и голоса)
func (c *BotController) infoAnswer(ctx context.Context, text string, it intent.Intent) string {
	switch it {
	case intent.IntentPrice:
		answer, err := c.catalog.PriceAnswer(ctx, text)
		if err != nil {
			c.logger.Error("Price lookup failed", zap.Error(err))
			return "Не получилось заглянуть в прайс, попробуйте чуть позже."
		}
		return answer

	case intent.IntentPrep:
		answer, err := c.catalog.PrepAnswer(ctx, text)
		if err != nil {
			c.logger.Error("Prep lookup failed", zap.Error(err))
			return "Не получилось найти памятку, попробуйте чуть позже."
		}
		return answer

	case intent.IntentHours:
		answer, err := c.catalog.Hours(ctx)
		if err != nil {
			c.logger.Error("Hours lookup failed", zap.Error(err))
			return "Не получилось уточнить режим работы, попробуйте чуть позже."
		}
		return answer
	}

	if c.assistant != nil && c.assistant.Enabled() {
		answer, err := c.assistant.Answer(ctx, text)
		if err == nil {
			return answer
		}
		c.logger.Error("LLM fallback failed", zap.Error(err))
	}

	return "Я помогу с услугами, ценами и записью. Сформулируйте запрос в одном предложении."
}

// HandleVoice голосовое сообщение: распознаём, отвечаем голосом
func (c *BotController) HandleVoice(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	metrics.VoiceMessages.Inc()

	if c.speech == nil || !c.speech.Enabled() {
		c.sendText(ctx, b, chatID, "Голосовые сообщения пока не настроены. Напишите, пожалуйста, текстом.", true)
		return
	}

	ogg, err := c.downloadVoice(ctx, b, update.Message.Voice.FileID)
	if err != nil {
		c.logger.Error("Failed to download voice", zap.Error(err))
		c.sendText(ctx, b, chatID, "Тех. ошибка при обработке голосового.", false)
		return
	}
	c.logger.Info("Voice message received", zap.Int("bytes", len(ogg)))

	userText, err := c.speech.Recognize(ctx, ogg)
	if err != nil {
		c.logger.Error("STT failed", zap.Error(err))
		c.sendText(ctx, b, chatID, "Тех. ошибка при обработке голосового.", false)
		return
	}
	if userText == "" {
		c.sendText(ctx, b, chatID, "Не удалось распознать речь. Повторите, пожалуйста 🙏", false)
		return
	}

	// Диалог записи ведём текстом и кнопками, даже если вопрос пришёл голосом
	it := c.classifier.Classify(userText)
	if c.machine.Store().Active(chatID) || it == intent.IntentBooking {
		c.sendText(ctx, b, chatID, fmt.Sprintf("Вы сказали: «%s»", userText), false)
		if c.machine.Store().Active(chatID) {
			c.sendReplies(ctx, b, chatID, c.machine.Handle(ctx, chatID, dialog.TextEvent{Text: userText}))
		} else {
			c.sendReplies(ctx, b, chatID, c.machine.Start(ctx, chatID))
		}
		return
	}

	metrics.IntentRequests.WithLabelValues(string(it)).Inc()
	answer := c.infoAnswer(ctx, userText, it)
	caption := fmt.Sprintf("Вы сказали: «%s»\n\n%s", userText, answer)

	speech, err := c.speech.Synthesize(ctx, answer)
	if err != nil {
		c.logger.Warn("TTS failed, falling back to text", zap.Error(err))
		c.sendText(ctx, b, chatID, caption, true)
		return
	}

	_, err = b.SendVoice(ctx, &bot.SendVoiceParams{
		ChatID:  chatID,
		Voice:   &models.InputFileUpload{Filename: "reply.ogg", Data: bytes.NewReader(speech)},
		Caption: caption,
	})
	if err != nil {
		c.logger.Error("Failed to send voice reply", zap.Error(err))
		c.sendText(ctx, b, chatID, caption, true)
	}
}

// downloadVoice скачивает файл голосового сообщения через Bot API
func (c *BotController) downloadVoice(ctx context.Context, b *bot.Bot, fileID string) ([]byte, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	return c.fetch(ctx, b.FileDownloadLink(file))
}
