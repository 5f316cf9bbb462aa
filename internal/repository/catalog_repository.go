package repository

import (
	"context"
	"fmt"

	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository/base"
)

// CatalogRepository справочные данные клиники: прайс-лист и контактная информация
type CatalogRepository struct {
	*base.Repository
}

func NewCatalogRepository(db base.Querier) *CatalogRepository {
	return &CatalogRepository{Repository: base.NewRepository(db)}
}

// GetInfo возвращает справочное значение из clinic_info по ключу,
// либо default при отсутствии ключа
func (r *CatalogRepository) GetInfo(ctx context.Context, key, def string) (string, error) {
	var value string
	err := r.DB().QueryRow(ctx, `SELECT value FROM clinic_info WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if base.IsNotFound(err) {
			return def, nil
		}
		return def, fmt.Errorf("get clinic info: %w", err)
	}
	return value, nil
}

// SearchServices ищет активные услуги по коду или подстроке названия
func (r *CatalogRepository) SearchServices(ctx context.Context, query string, limit int) ([]model.Service, error) {
	sql := `
		SELECT code, name, price_rub, prep_notes, is_active, created_at
		FROM services
		WHERE is_active
		  AND (code ILIKE $1 OR name ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2
	`

	rows, err := r.DB().Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		err := rows.Scan(&s.Code, &s.Name, &s.PriceRub, &s.PrepNotes, &s.IsActive, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}
