package model

import "time"

// Service позиция прайс-листа: анализ или услуга клиники
type Service struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	PriceRub  int       `json:"price_rub"`
	PrepNotes string    `json:"prep_notes"` // памятка по подготовке, может быть пустой
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
