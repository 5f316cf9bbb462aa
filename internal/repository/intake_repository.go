package repository

import (
	"context"
	"fmt"

	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository/base"
)

// IntakeRepository журнал подтверждённых записей. Только добавление:
// бот не читает и не изменяет журнал, статусы заявок ведут администраторы.
type IntakeRepository struct {
	*base.Repository
}

func NewIntakeRepository(db base.Querier) *IntakeRepository {
	return &IntakeRepository{Repository: base.NewRepository(db)}
}

// Append добавляет одну запись в журнал
func (r *IntakeRepository) Append(ctx context.Context, entry *model.IntakeRequest) error {
	query := `
		INSERT INTO intake_requests
			(appointment_id, patient_full_name, patient_phone, doctor_full_name,
			 specialty, visit_date, visit_time, visit_datetime, workflow_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7::time, $8, $9)
		RETURNING created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		entry.AppointmentID,
		entry.PatientFullName,
		entry.PatientPhone,
		entry.DoctorFullName,
		entry.Specialty,
		entry.VisitDate,
		entry.VisitTime,
		entry.VisitDateTime,
		entry.WorkflowStatus,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append intake request: %w", err)
	}

	return nil
}
