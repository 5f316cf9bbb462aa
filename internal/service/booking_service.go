package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rgclinic/mednavigator-bot/internal/metrics"
	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository"
	"go.uber.org/zap"
)

// PageSize размер страницы при показе свободных слотов
const PageSize = 3

// SlotStore операции над таблицей слотов, нужные сервису записи
type SlotStore interface {
	GetByID(ctx context.Context, slotID string) (*model.Slot, error)
	FindFree(ctx context.Context, query string, dateFilter *time.Time, limit, offset int) ([]model.SlotSummary, error)
	Hold(ctx context.Context, slotID string) error
	Book(ctx context.Context, slotID, fullName, phone string) error
	Cancel(ctx context.Context, slotID string) error
	Release(ctx context.Context, slotID string) error
	ReleaseExpiredHolds(ctx context.Context, olderThan time.Time) (int64, error)
}

// IntakeLedger журнал подтверждённых записей (только добавление)
type IntakeLedger interface {
	Append(ctx context.Context, entry *model.IntakeRequest) error
}

// OperatorNotifier уведомляет администратора клиники о новой записи.
// Ошибки уведомления не влияют на судьбу записи.
type OperatorNotifier interface {
	Notify(ctx context.Context, text string) error
}

type BookingService struct {
	slots    SlotStore
	ledger   IntakeLedger
	notifier OperatorNotifier
	logger   *zap.Logger
}

func NewBookingService(slots SlotStore, ledger IntakeLedger, notifier OperatorNotifier, logger *zap.Logger) *BookingService {
	return &BookingService{
		slots:    slots,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
	}
}

// Search возвращает страницу свободных слотов по фильтру.
// Пустой результат - нормальная ситуация, не ошибка.
func (s *BookingService) Search(ctx context.Context, query string, dateFilter *time.Time, page int) ([]model.SlotSummary, error) {
	if page < 0 {
		page = 0
	}

	slots, err := s.slots.FindFree(ctx, query, dateFilter, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("search slots: %w", err)
	}

	return slots, nil
}

// Hold удерживает слот на время диалога записи
func (s *BookingService) Hold(ctx context.Context, slotID string) error {
	err := s.slots.Hold(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) || errors.Is(err, repository.ErrSlotNotFound) {
			metrics.SlotConflicts.Inc()
		}
		return err
	}

	metrics.SlotHolds.Inc()
	s.logger.Info("Slot held", zap.String("slot_id", slotID))
	return nil
}

// Release снимает удержание слота (отмена диалога пользователем)
func (s *BookingService) Release(ctx context.Context, slotID string) error {
	err := s.slots.Release(ctx, slotID)
	if err != nil {
		return err
	}

	s.logger.Info("Slot released", zap.String("slot_id", slotID))
	return nil
}

// Confirm подтверждает запись: переводит удержанный слот в booked,
// добавляет заявку в журнал и уведомляет оператора.
// Сбой журнала или уведомления не откатывает уже подтверждённую запись.
func (s *BookingService) Confirm(ctx context.Context, slotID, fullName, phone string) (*model.IntakeRequest, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	err = s.slots.Book(ctx, slotID, fullName, phone)
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) || errors.Is(err, repository.ErrSlotNotFound) {
			metrics.SlotConflicts.Inc()
		}
		return nil, err
	}

	metrics.BookingsConfirmed.Inc()

	entry := &model.IntakeRequest{
		AppointmentID:   newAppointmentID(),
		PatientFullName: fullName,
		PatientPhone:    phone,
		DoctorFullName:  slot.DoctorName,
		Specialty:       slot.Specialty,
		VisitDate:       slot.VisitDate,
		VisitTime:       slot.VisitTime,
		VisitDateTime:   visitDateTimeISO(slot),
		WorkflowStatus:  model.IntakeStatusNew,
	}

	if err := s.ledger.Append(ctx, entry); err != nil {
		// Запись уже подтверждена в таблице слотов, журнал догонят вручную
		s.logger.Error("Failed to append intake ledger",
			zap.String("slot_id", slotID),
			zap.String("appointment_id", entry.AppointmentID),
			zap.Error(err))
	}

	s.notifyOperator(ctx, entry)

	s.logger.Info("Booking confirmed",
		zap.String("slot_id", slotID),
		zap.String("appointment_id", entry.AppointmentID),
		zap.String("doctor", slot.DoctorName))

	return entry, nil
}

// CancelBooking отменяет подтверждённую запись, слот снова свободен
func (s *BookingService) CancelBooking(ctx context.Context, slotID string) error {
	err := s.slots.Cancel(ctx, slotID)
	if err != nil {
		return err
	}

	metrics.BookingsCancelled.Inc()
	s.logger.Info("Booking cancelled", zap.String("slot_id", slotID))
	return nil
}

// ReleaseExpiredHolds снимает просроченные удержания (вызывается janitor-ом)
func (s *BookingService) ReleaseExpiredHolds(ctx context.Context, ttl time.Duration) (int64, error) {
	released, err := s.slots.ReleaseExpiredHolds(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	if released > 0 {
		metrics.HoldsExpired.Add(float64(released))
		s.logger.Info("Expired holds released", zap.Int64("count", released))
	}

	return released, nil
}

func (s *BookingService) notifyOperator(ctx context.Context, entry *model.IntakeRequest) {
	if s.notifier == nil {
		return
	}

	text := fmt.Sprintf(
		"🆕 Новая запись %s\n👤 %s\n📞 %s\n👨‍⚕️ %s (%s)\n📅 %s в %s",
		entry.AppointmentID,
		entry.PatientFullName,
		entry.PatientPhone,
		entry.DoctorFullName,
		entry.Specialty,
		entry.VisitDate.Format("02.01.2006"),
		entry.VisitTime,
	)

	if err := s.notifier.Notify(ctx, text); err != nil {
		metrics.NotifyFailures.Inc()
		s.logger.Error("Failed to notify operator",
			zap.String("appointment_id", entry.AppointmentID),
			zap.Error(err))
	}
}

// newAppointmentID собирает идентификатор заявки из метки времени и короткого суффикса
func newAppointmentID() string {
	return fmt.Sprintf("A-%s-%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}

// visitDateTimeISO собирает дату и время приёма в ISO 8601 с учётом зоны клиники
func visitDateTimeISO(slot *model.Slot) string {
	loc, err := time.LoadLocation(slot.Timezone)
	if err != nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", slot.VisitDate.Format("2006-01-02")+" "+slot.VisitTime, loc)
	if err != nil {
		return slot.VisitDate.Format("2006-01-02") + "T" + slot.VisitTime
	}

	return t.Format(time.RFC3339)
}
