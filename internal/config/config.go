package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string

	// Чат администратора для уведомлений о новых записях
	AdminChatID int64

	// Yandex SpeechKit (голосовые сообщения), опционально
	YandexAPIKey   string
	YandexFolderID string

	// OpenAI (свободные вопросы), опционально
	OpenAIAPIKey string

	MigrationsPath string
	MetricsAddr    string

	// Сколько живёт удержание слота до автоснятия
	HoldTTL time.Duration
	// Сколько живёт неактивная сессия диалога
	SessionTTL time.Duration
	// Период фоновой уборки
	JanitorInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		YandexAPIKey:   os.Getenv("YANDEX_API_KEY"),
		YandexFolderID: os.Getenv("YANDEX_FOLDER_ID"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	cfg.HoldTTL = durationEnv("HOLD_TTL", 15*time.Minute)
	cfg.SessionTTL = durationEnv("SESSION_TTL", 30*time.Minute)
	cfg.JanitorInterval = durationEnv("JANITOR_INTERVAL", time.Minute)

	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_CHAT_ID must be a number: %w", err)
		}
		cfg.AdminChatID = id
	}

	// Проверяем обязательные поля
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return d
}
