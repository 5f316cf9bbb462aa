package app

import (
	"context"
	"time"

	"github.com/rgclinic/mednavigator-bot/internal/dialog"
	"github.com/rgclinic/mednavigator-bot/internal/service"
	"go.uber.org/zap"
)

// Janitor фоновая уборка: снимает просроченные удержания слотов
// и выбрасывает заброшенные сессии диалога (вместе с их удержаниями)
type Janitor struct {
	bookingService *service.BookingService
	sessions       *dialog.Store
	holdTTL        time.Duration
	sessionTTL     time.Duration
	interval       time.Duration
	logger         *zap.Logger
	stopChan       chan struct{}
}

// NewJanitor создаёт новую фоновую уборку
func NewJanitor(
	bookingService *service.BookingService,
	sessions *dialog.Store,
	holdTTL, sessionTTL, interval time.Duration,
	logger *zap.Logger,
) *Janitor {
	return &Janitor{
		bookingService: bookingService,
		sessions:       sessions,
		holdTTL:        holdTTL,
		sessionTTL:     sessionTTL,
		interval:       interval,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновую уборку
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("Starting hold janitor",
		zap.Duration("hold_ttl", j.holdTTL),
		zap.Duration("session_ttl", j.sessionTTL),
		zap.Duration("interval", j.interval))

	go j.run(ctx)
}

// Stop останавливает фоновую уборку
func (j *Janitor) Stop() {
	j.logger.Info("Stopping hold janitor")
	close(j.stopChan)
}

func (j *Janitor) run(ctx context.Context) {
	// Первый проход сразу при старте: подбираем удержания,
	// повисшие после рестарта процесса
	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-j.stopChan:
			j.logger.Info("Hold janitor stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Hold janitor cancelled")
			return
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	// Сначала заброшенные сессии: у их владельцев могут быть живые удержания
	for _, sess := range j.sessions.Sweep(j.sessionTTL) {
		if sess.HeldSlotID == "" {
			continue
		}
		if err := j.bookingService.Release(sweepCtx, sess.HeldSlotID); err != nil {
			j.logger.Warn("Failed to release slot of expired session",
				zap.Int64("chat_id", sess.ChatID),
				zap.String("slot_id", sess.HeldSlotID),
				zap.Error(err))
		}
	}

	// Затем страховочный проход по таблице: снимаем все просроченные
	// удержания независимо от того, чья сессия их оставила
	if _, err := j.bookingService.ReleaseExpiredHolds(sweepCtx, j.holdTTL); err != nil {
		j.logger.Error("Failed to release expired holds", zap.Error(err))
	}
}
