package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgclinic/mednavigator-bot/internal/repository"
	"go.uber.org/zap"
)

const maxServiceMatches = 5

// CatalogService справочные ответы: цены, подготовка к анализам, контакты.
// Все ответы носят справочный характер, медицинских консультаций бот не даёт.
type CatalogService struct {
	catalog *repository.CatalogRepository
	logger  *zap.Logger
}

func NewCatalogService(catalog *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: logger}
}

// PriceAnswer ищет услуги по тексту пользователя и собирает ответ с ценами
func (s *CatalogService) PriceAnswer(ctx context.Context, text string) (string, error) {
	services, err := s.catalog.SearchServices(ctx, strings.TrimSpace(text), maxServiceMatches)
	if err != nil {
		return "", err
	}

	if len(services) == 0 {
		return "Не нашёл такой услуги. Скажите название или код анализа — подскажу ориентировочную стоимость (справочно).", nil
	}

	var b strings.Builder
	b.WriteString("🧾 Нашёл (цены справочные):\n")
	for _, svc := range services {
		fmt.Fprintf(&b, "• %s [%s] — %d ₽\n", svc.Name, svc.Code, svc.PriceRub)
	}
	return b.String(), nil
}

// PrepAnswer возвращает памятку по подготовке к анализу
func (s *CatalogService) PrepAnswer(ctx context.Context, text string) (string, error) {
	services, err := s.catalog.SearchServices(ctx, strings.TrimSpace(text), maxServiceMatches)
	if err != nil {
		return "", err
	}

	for _, svc := range services {
		if svc.PrepNotes != "" {
			return fmt.Sprintf("ℹ️ %s — подготовка (справочно):\n%s", svc.Name, svc.PrepNotes), nil
		}
	}

	return "Напишите название анализа — пришлю памятку по подготовке (справочно).", nil
}

// Contacts собирает карточку клиники из справочника
func (s *CatalogService) Contacts(ctx context.Context) (string, error) {
	hours, err := s.catalog.GetInfo(ctx, "clinic_hours", "пн–пт 08:00–20:00, сб–вс 09:00–18:00")
	if err != nil {
		return "", err
	}
	addr, err := s.catalog.GetInfo(ctx, "clinic_address", "Адрес уточняется")
	if err != nil {
		return "", err
	}
	phone, err := s.catalog.GetInfo(ctx, "clinic_phone", "+7 (000) 000-00-00")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("📍 РГ Клиник\nАдрес: %s\nТел.: %s\nРежим работы: %s", addr, phone, hours), nil
}

// Hours возвращает режим работы клиники
func (s *CatalogService) Hours(ctx context.Context) (string, error) {
	hours, err := s.catalog.GetInfo(ctx, "clinic_hours", "пн–пт 08:00–20:00, сб–вс 09:00–18:00")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Режим работы (справочно): %s. Уточните филиал, если их несколько.", hours), nil
}
