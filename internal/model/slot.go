package model

import "time"

type SlotStatus string

const (
	SlotStatusFree   SlotStatus = "free"
	SlotStatusHold   SlotStatus = "hold"   // Временно удержан во время диалога записи
	SlotStatusBooked SlotStatus = "booked" // Подтверждённая запись
)

// Slot представляет одну единицу расписания: врач + дата + время.
// Слоты создаются персоналом клиники (cmd/seed для dev-окружения),
// бот только переводит их между статусами.
type Slot struct {
	SlotID          string     `json:"slot_id"`
	DoctorID        string     `json:"doctor_id"`
	DoctorName      string     `json:"doctor_name"`
	Specialty       string     `json:"specialty"`
	VisitDate       time.Time  `json:"visit_date"`
	VisitTime       string     `json:"visit_time"` // формат "15:04"
	Timezone        string     `json:"timezone"`
	Status          SlotStatus `json:"status"`
	PatientFullName string     `json:"patient_full_name"`
	PatientPhone    string     `json:"patient_phone"`
	HeldAt          *time.Time `json:"held_at"` // указатель - может быть nil
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SlotSummary лёгкое представление слота для списков выбора в диалоге
type SlotSummary struct {
	SlotID     string    `json:"slot_id"`
	DoctorName string    `json:"doctor_name"`
	Specialty  string    `json:"specialty"`
	VisitDate  time.Time `json:"visit_date"`
	VisitTime  string    `json:"visit_time"`
}
