package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository/base"
)

var (
	// ErrSlotNotFound слот с таким slot_id отсутствует в таблице
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotConflict слот существует, но его статус уже не тот, что требовался для перехода
	ErrSlotConflict = errors.New("slot is not in the expected status")
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.Querier) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новый слот (используется персоналом и cmd/seed)
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (slot_id, doctor_id, doctor_name, specialty, visit_date, visit_time, timezone, status)
		VALUES ($1, $2, $3, $4, $5, $6::time, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		slot.SlotID,
		slot.DoctorID,
		slot.DoctorName,
		slot.Specialty,
		slot.VisitDate,
		slot.VisitTime,
		slot.Timezone,
		slot.Status,
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по идентификатору
func (r *SlotRepository) GetByID(ctx context.Context, slotID string) (*model.Slot, error) {
	query := `
		SELECT slot_id, doctor_id, doctor_name, specialty, visit_date, to_char(visit_time, 'HH24:MI'),
		       timezone, status, patient_full_name, patient_phone, held_at, created_at, updated_at
		FROM slots
		WHERE slot_id = $1
	`

	var slot model.Slot
	err := r.DB().QueryRow(ctx, query, slotID).Scan(
		&slot.SlotID,
		&slot.DoctorID,
		&slot.DoctorName,
		&slot.Specialty,
		&slot.VisitDate,
		&slot.VisitTime,
		&slot.Timezone,
		&slot.Status,
		&slot.PatientFullName,
		&slot.PatientPhone,
		&slot.HeldAt,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// FindFree возвращает страницу свободных слотов по текстовому фильтру.
// query сопоставляется подстрокой без учёта регистра с именем врача ИЛИ специальностью,
// dateFilter (если задан) требует точного совпадения даты приёма.
// Слоты, чьё локальное время уже прошло, не возвращаются.
func (r *SlotRepository) FindFree(ctx context.Context, query string, dateFilter *time.Time, limit, offset int) ([]model.SlotSummary, error) {
	sql := `
		SELECT slot_id, doctor_name, specialty, visit_date, to_char(visit_time, 'HH24:MI')
		FROM slots
		WHERE status = 'free'
		  AND ($1 = '' OR doctor_name ILIKE '%' || $1 || '%' OR specialty ILIKE '%' || $1 || '%')
		  AND ($2::date IS NULL OR visit_date = $2::date)
		  AND (visit_date + visit_time) > (now() AT TIME ZONE timezone)
		ORDER BY visit_date, visit_time, slot_id
		LIMIT $3 OFFSET $4
	`

	rows, err := r.DB().Query(ctx, sql, query, dateFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("find free slots: %w", err)
	}
	defer rows.Close()

	var slots []model.SlotSummary
	for rows.Next() {
		var s model.SlotSummary
		err := rows.Scan(
			&s.SlotID,
			&s.DoctorName,
			&s.Specialty,
			&s.VisitDate,
			&s.VisitTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot summary: %w", err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate free slots: %w", err)
	}

	return slots, nil
}

// Hold удерживает свободный слот на время диалога записи.
// Переход выполняется условным UPDATE по ожидаемому статусу: два конкурирующих
// Hold на один слот не могут пройти оба - проигравший получит ErrSlotConflict.
func (r *SlotRepository) Hold(ctx context.Context, slotID string) error {
	query := `
		UPDATE slots
		SET status = 'hold', held_at = now(), updated_at = now(),
		    patient_full_name = '', patient_phone = ''
		WHERE slot_id = $1 AND status = 'free'
	`

	affected, err := r.ExecAffected(ctx, query, slotID)
	if err != nil {
		return fmt.Errorf("hold slot: %w", err)
	}

	if affected == 0 {
		return r.classifyMiss(ctx, slotID)
	}

	return nil
}

// Book подтверждает запись: переход разрешён только из статуса hold,
// запись "мимо" удержания отклоняется как конфликт
func (r *SlotRepository) Book(ctx context.Context, slotID, fullName, phone string) error {
	query := `
		UPDATE slots
		SET status = 'booked', patient_full_name = $2, patient_phone = $3,
		    held_at = NULL, updated_at = now()
		WHERE slot_id = $1 AND status = 'hold'
	`

	affected, err := r.ExecAffected(ctx, query, slotID, fullName, phone)
	if err != nil {
		return fmt.Errorf("book slot: %w", err)
	}

	if affected == 0 {
		return r.classifyMiss(ctx, slotID)
	}

	return nil
}

// Cancel отменяет подтверждённую запись и освобождает слот
func (r *SlotRepository) Cancel(ctx context.Context, slotID string) error {
	query := `
		UPDATE slots
		SET status = 'free', patient_full_name = '', patient_phone = '',
		    held_at = NULL, updated_at = now()
		WHERE slot_id = $1 AND status = 'booked'
	`

	affected, err := r.ExecAffected(ctx, query, slotID)
	if err != nil {
		return fmt.Errorf("cancel slot: %w", err)
	}

	if affected == 0 {
		return r.classifyMiss(ctx, slotID)
	}

	return nil
}

// Release возвращает удержанный слот в свободные (отмена диалога, таймаут)
func (r *SlotRepository) Release(ctx context.Context, slotID string) error {
	query := `
		UPDATE slots
		SET status = 'free', patient_full_name = '', patient_phone = '',
		    held_at = NULL, updated_at = now()
		WHERE slot_id = $1 AND status = 'hold'
	`

	affected, err := r.ExecAffected(ctx, query, slotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	if affected == 0 {
		return r.classifyMiss(ctx, slotID)
	}

	return nil
}

// ReleaseExpiredHolds освобождает слоты, удержание которых не было
// подтверждено записью в отведённый срок
func (r *SlotRepository) ReleaseExpiredHolds(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE slots
		SET status = 'free', patient_full_name = '', patient_phone = '',
		    held_at = NULL, updated_at = now()
		WHERE status = 'hold' AND held_at < $1
	`

	affected, err := r.ExecAffected(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("release expired holds: %w", err)
	}

	return affected, nil
}

// classifyMiss различает "слот не найден" и "статус уже изменился",
// когда условный UPDATE не затронул ни одной строки
func (r *SlotRepository) classifyMiss(ctx context.Context, slotID string) error {
	var exists bool
	err := r.DB().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM slots WHERE slot_id = $1)`, slotID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check slot exists: %w", err)
	}

	if !exists {
		return ErrSlotNotFound
	}
	return ErrSlotConflict
}
