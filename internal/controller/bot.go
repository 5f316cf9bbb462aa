package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rgclinic/mednavigator-bot/internal/dialog"
	"github.com/rgclinic/mednavigator-bot/internal/intent"
	"github.com/rgclinic/mednavigator-bot/internal/llm"
	"github.com/rgclinic/mednavigator-bot/internal/service"
	"github.com/rgclinic/mednavigator-bot/internal/voice"
	"go.uber.org/zap"
)

type BotController struct {
	bot        *bot.Bot
	machine    *dialog.Machine
	catalog    *service.CatalogService
	classifier intent.Classifier
	speech     *voice.SpeechKit
	assistant  *llm.Assistant
	httpClient *http.Client
	logger     *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	machine *dialog.Machine,
	catalogService *service.CatalogService,
	classifier intent.Classifier,
	speech *voice.SpeechKit,
	assistant *llm.Assistant,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:        botInstance,
		machine:    machine,
		catalog:    catalogService,
		classifier: classifier,
		speech:     speech,
		assistant:  assistant,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/record", bot.MatchTypeExact, c.HandleRecord)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.HandleCancel)

	// Голосовые сообщения
	c.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil && update.Message.Voice != nil
	}, c.HandleVoice)

	// Обработчик текстовых сообщений (диалоги и свободные вопросы)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "record", Description: "📅 Запись на приём"},
		{Command: "cancel", Description: "❌ Отменить текущую запись"},
		{Command: "help", Description: "❓ Справка"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота (long polling)
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
