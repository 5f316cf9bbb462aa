package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rgclinic/mednavigator-bot/internal/app"
	"github.com/rgclinic/mednavigator-bot/internal/config"
	"github.com/rgclinic/mednavigator-bot/internal/controller"
	"github.com/rgclinic/mednavigator-bot/internal/dialog"
	"github.com/rgclinic/mednavigator-bot/internal/intent"
	"github.com/rgclinic/mednavigator-bot/internal/llm"
	"github.com/rgclinic/mednavigator-bot/internal/repository"
	"github.com/rgclinic/mednavigator-bot/internal/service"
	"github.com/rgclinic/mednavigator-bot/internal/voice"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting МедНавигатор",
		zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключаемся к базе
	poolCtx, cancelPool := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pgxpool.New(poolCtx, cfg.DBDSN)
	if err != nil {
		cancelPool()
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	if err := pool.Ping(poolCtx); err != nil {
		cancelPool()
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	cancelPool()
	defer pool.Close()

	// Применяем миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	// Создаём бота
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Репозитории
	slotRepo := repository.NewSlotRepository(pool)
	intakeRepo := repository.NewIntakeRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)

	// Сервисы
	notifier := controller.NewOperatorNotifier(b, cfg.AdminChatID, logger)
	bookingService := service.NewBookingService(slotRepo, intakeRepo, notifier, logger)
	catalogService := service.NewCatalogService(catalogRepo, logger)

	// Диалог записи
	sessions := dialog.NewStore()
	machine := dialog.NewMachine(bookingService, sessions, logger)

	// Внешние помощники (могут быть выключены, бот работает без них)
	speech := voice.NewSpeechKit(cfg.YandexAPIKey, cfg.YandexFolderID, logger)
	assistant := llm.NewAssistant(cfg.OpenAIAPIKey, logger)

	botController := controller.NewBotController(b, machine, catalogService, intent.NewKeywordClassifier(), speech, assistant, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	// Фоновая уборка удержаний и сессий
	janitor := app.NewJanitor(bookingService, sessions, cfg.HoldTTL, cfg.SessionTTL, cfg.JanitorInterval, logger)
	janitor.Start(ctx)
	defer janitor.Stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	botController.Start(ctx)

	logger.Info("МедНавигатор stopped")
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", zap.Error(err))
	}
}
