package model

import "time"

// IntakeStatus начальный статус заявки в журнале.
// Дальше статус меняют администраторы вручную, бот его не трогает.
const IntakeStatusNew = "Новая"

// IntakeRequest неизменяемая запись журнала о подтверждённой записи на приём
type IntakeRequest struct {
	AppointmentID   string    `json:"appointment_id"`
	PatientFullName string    `json:"patient_full_name"`
	PatientPhone    string    `json:"patient_phone"`
	DoctorFullName  string    `json:"doctor_full_name"`
	Specialty       string    `json:"specialty"`
	VisitDate       time.Time `json:"visit_date"`
	VisitTime       string    `json:"visit_time"`
	VisitDateTime   string    `json:"visit_datetime"` // ISO 8601, для выгрузок
	WorkflowStatus  string    `json:"workflow_status"`
	CreatedAt       time.Time `json:"created_at"`
}
