package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfoFallsBackToDefault(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT value FROM clinic_info").
		WithArgs("clinic_phone").
		WillReturnError(pgx.ErrNoRows)

	value, err := repo.GetInfo(context.Background(), "clinic_phone", "+7 (000) 000-00-00")
	require.NoError(t, err)
	assert.Equal(t, "+7 (000) 000-00-00", value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchServices(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewCatalogRepository(mock)

	rows := pgxmock.NewRows([]string{"code", "name", "price_rub", "prep_notes", "is_active", "created_at"}).
		AddRow("LAB-001", "Общий анализ крови", 450, "Сдавать натощак", true, time.Now())

	mock.ExpectQuery("FROM services").
		WithArgs("кров", 5).
		WillReturnRows(rows)

	services, err := repo.SearchServices(context.Background(), "кров", 5)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "LAB-001", services[0].Code)
	assert.Equal(t, 450, services[0].PriceRub)
	assert.Equal(t, "Сдавать натощак", services[0].PrepNotes)
	require.NoError(t, mock.ExpectationsWereMet())
}
