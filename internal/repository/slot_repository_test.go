package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlotRepo(t *testing.T) (*SlotRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewSlotRepository(mock), mock
}

func TestHoldSuccess(t *testing.T) {
	repo, mock := newSlotRepo(t)

	mock.ExpectExec("SET status = 'hold'").
		WithArgs("S1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Hold(context.Background(), "S1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldConflictWhenAlreadyTaken(t *testing.T) {
	repo, mock := newSlotRepo(t)

	// Условный UPDATE не зацепил строку: слот уже не free
	mock.ExpectExec("SET status = 'hold'").
		WithArgs("S1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("S1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Hold(context.Background(), "S1")
	require.ErrorIs(t, err, ErrSlotConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldUnknownSlot(t *testing.T) {
	repo, mock := newSlotRepo(t)

	mock.ExpectExec("SET status = 'hold'").
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.Hold(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSlotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSuccess(t *testing.T) {
	repo, mock := newSlotRepo(t)

	mock.ExpectExec("SET status = 'booked'").
		WithArgs("S1", "Петрова Анна", "+79001234567").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Book(context.Background(), "S1", "Петрова Анна", "+79001234567")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRequiresHold(t *testing.T) {
	repo, mock := newSlotRepo(t)

	// Слот есть, но он free: записи мимо удержания быть не должно
	mock.ExpectExec("SET status = 'booked'").
		WithArgs("S1", "Петрова Анна", "+79001234567").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("S1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Book(context.Background(), "S1", "Петрова Анна", "+79001234567")
	require.ErrorIs(t, err, ErrSlotConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRepeatIsConflict(t *testing.T) {
	repo, mock := newSlotRepo(t)

	mock.ExpectExec("SET status = 'free'").
		WithArgs("S1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("S1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Cancel(context.Background(), "S1")
	require.ErrorIs(t, err, ErrSlotConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseExpiredHolds(t *testing.T) {
	repo, mock := newSlotRepo(t)

	cutoff := time.Date(2030, 11, 1, 9, 45, 0, 0, time.UTC)
	mock.ExpectExec("WHERE status = 'hold' AND held_at").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	released, err := repo.ReleaseExpiredHolds(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), released)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFree(t *testing.T) {
	repo, mock := newSlotRepo(t)

	date := time.Date(2030, 11, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"slot_id", "doctor_name", "specialty", "visit_date", "visit_time"}).
		AddRow("S1", "Иванова И.И.", "Кардиолог", date, "09:00").
		AddRow("S2", "Иванова И.И.", "Кардиолог", date, "10:00")

	mock.ExpectQuery("FROM slots").
		WithArgs("кардиолог", (*time.Time)(nil), 3, 0).
		WillReturnRows(rows)

	slots, err := repo.FindFree(context.Background(), "кардиолог", nil, 3, 0)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "S1", slots[0].SlotID)
	assert.Equal(t, "09:00", slots[0].VisitTime)
	assert.Equal(t, "Кардиолог", slots[1].Specialty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newSlotRepo(t)

	mock.ExpectQuery("FROM slots").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSlotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newSlotRepo(t)

	now := time.Now()
	date := time.Date(2030, 11, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"slot_id", "doctor_id", "doctor_name", "specialty", "visit_date", "visit_time",
		"timezone", "status", "patient_full_name", "patient_phone", "held_at", "created_at", "updated_at",
	}).AddRow("S1", "D01", "Иванова И.И.", "Кардиолог", date, "10:00",
		"Europe/Moscow", "free", "", "", (*time.Time)(nil), now, now)

	mock.ExpectQuery("FROM slots").
		WithArgs("S1").
		WillReturnRows(rows)

	slot, err := repo.GetByID(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Иванова И.И.", slot.DoctorName)
	assert.Equal(t, model.SlotStatusFree, slot.Status)
	assert.Nil(t, slot.HeldAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
