package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSlotStore struct {
	slot *model.Slot

	bookErr    error
	findResult []model.SlotSummary
	findErr    error

	bookedWith  []string // fullName, phone
	cancelled   []string
	released    []string
	expiredCut  time.Time
	expiredHits int64

	lastQuery  string
	lastDate   *time.Time
	lastLimit  int
	lastOffset int
}

func (f *fakeSlotStore) GetByID(_ context.Context, slotID string) (*model.Slot, error) {
	if f.slot == nil || f.slot.SlotID != slotID {
		return nil, repository.ErrSlotNotFound
	}
	cp := *f.slot
	return &cp, nil
}

func (f *fakeSlotStore) FindFree(_ context.Context, query string, dateFilter *time.Time, limit, offset int) ([]model.SlotSummary, error) {
	f.lastQuery = query
	f.lastDate = dateFilter
	f.lastLimit = limit
	f.lastOffset = offset
	return f.findResult, f.findErr
}

func (f *fakeSlotStore) Hold(_ context.Context, slotID string) error {
	if f.slot == nil || f.slot.SlotID != slotID {
		return repository.ErrSlotNotFound
	}
	if f.slot.Status != model.SlotStatusFree {
		return repository.ErrSlotConflict
	}
	f.slot.Status = model.SlotStatusHold
	return nil
}

func (f *fakeSlotStore) Book(_ context.Context, slotID, fullName, phone string) error {
	if f.bookErr != nil {
		return f.bookErr
	}
	if f.slot == nil || f.slot.SlotID != slotID {
		return repository.ErrSlotNotFound
	}
	if f.slot.Status != model.SlotStatusHold {
		return repository.ErrSlotConflict
	}
	f.slot.Status = model.SlotStatusBooked
	f.bookedWith = []string{fullName, phone}
	return nil
}

func (f *fakeSlotStore) Cancel(_ context.Context, slotID string) error {
	if f.slot == nil || f.slot.SlotID != slotID {
		return repository.ErrSlotNotFound
	}
	if f.slot.Status != model.SlotStatusBooked {
		return repository.ErrSlotConflict
	}
	f.slot.Status = model.SlotStatusFree
	f.cancelled = append(f.cancelled, slotID)
	return nil
}

func (f *fakeSlotStore) Release(_ context.Context, slotID string) error {
	f.released = append(f.released, slotID)
	return nil
}

func (f *fakeSlotStore) ReleaseExpiredHolds(_ context.Context, olderThan time.Time) (int64, error) {
	f.expiredCut = olderThan
	return f.expiredHits, nil
}

type fakeLedger struct {
	entries []*model.IntakeRequest
	err     error
}

func (f *fakeLedger) Append(_ context.Context, entry *model.IntakeRequest) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotifier struct {
	texts []string
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

func heldSlot() *model.Slot {
	return &model.Slot{
		SlotID:     "D01-20301101-1000",
		DoctorID:   "D01",
		DoctorName: "Иванова И.И.",
		Specialty:  "Кардиолог",
		VisitDate:  time.Date(2030, 11, 1, 0, 0, 0, 0, time.UTC),
		VisitTime:  "10:00",
		Timezone:   "Europe/Moscow",
		Status:     model.SlotStatusHold,
	}
}

func TestConfirmAppendsLedgerAndNotifies(t *testing.T) {
	store := &fakeSlotStore{slot: heldSlot()}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	svc := NewBookingService(store, ledger, notifier, zap.NewNop())

	entry, err := svc.Confirm(context.Background(), "D01-20301101-1000", "Петрова Анна", "+79001234567")
	require.NoError(t, err)

	assert.Equal(t, model.SlotStatusBooked, store.slot.Status)
	assert.Equal(t, []string{"Петрова Анна", "+79001234567"}, store.bookedWith)

	require.Len(t, ledger.entries, 1)
	assert.Equal(t, entry, ledger.entries[0])
	assert.Equal(t, "Иванова И.И.", entry.DoctorFullName)
	assert.Equal(t, model.IntakeStatusNew, entry.WorkflowStatus)
	assert.NotEmpty(t, entry.AppointmentID)
	assert.Contains(t, entry.VisitDateTime, "2030-11-01T10:00")

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "Петрова Анна")
	assert.Contains(t, notifier.texts[0], entry.AppointmentID)
}

func TestConfirmFailsWithoutHold(t *testing.T) {
	slot := heldSlot()
	slot.Status = model.SlotStatusFree // удержания не было
	store := &fakeSlotStore{slot: slot}
	ledger := &fakeLedger{}
	svc := NewBookingService(store, ledger, &fakeNotifier{}, zap.NewNop())

	_, err := svc.Confirm(context.Background(), slot.SlotID, "Петрова Анна", "+79001234567")
	require.ErrorIs(t, err, repository.ErrSlotConflict)

	assert.Equal(t, model.SlotStatusFree, store.slot.Status)
	assert.Empty(t, ledger.entries)
}

func TestConfirmNotifyFailureDoesNotFail(t *testing.T) {
	store := &fakeSlotStore{slot: heldSlot()}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	svc := NewBookingService(store, ledger, notifier, zap.NewNop())

	entry, err := svc.Confirm(context.Background(), "D01-20301101-1000", "Петрова Анна", "+79001234567")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.SlotStatusBooked, store.slot.Status)
	require.Len(t, ledger.entries, 1)
}

func TestConfirmLedgerFailureDoesNotFail(t *testing.T) {
	store := &fakeSlotStore{slot: heldSlot()}
	ledger := &fakeLedger{err: errors.New("db down")}
	notifier := &fakeNotifier{}
	svc := NewBookingService(store, ledger, notifier, zap.NewNop())

	entry, err := svc.Confirm(context.Background(), "D01-20301101-1000", "Петрова Анна", "+79001234567")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.SlotStatusBooked, store.slot.Status)
	// Оператора всё равно уведомляем
	require.Len(t, notifier.texts, 1)
}

func TestSearchClampsNegativePage(t *testing.T) {
	store := &fakeSlotStore{}
	svc := NewBookingService(store, &fakeLedger{}, &fakeNotifier{}, zap.NewNop())

	_, err := svc.Search(context.Background(), "терапевт", nil, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, store.lastOffset)
	assert.Equal(t, PageSize, store.lastLimit)
}

func TestSearchOffsetFollowsPage(t *testing.T) {
	store := &fakeSlotStore{}
	svc := NewBookingService(store, &fakeLedger{}, &fakeNotifier{}, zap.NewNop())

	date := time.Date(2030, 11, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Search(context.Background(), "кардиолог", &date, 2)
	require.NoError(t, err)
	assert.Equal(t, "кардиолог", store.lastQuery)
	require.NotNil(t, store.lastDate)
	assert.Equal(t, date, *store.lastDate)
	assert.Equal(t, 2*PageSize, store.lastOffset)
}

func TestCancelBookingIdempotentConflict(t *testing.T) {
	store := &fakeSlotStore{slot: heldSlot()}
	store.slot.Status = model.SlotStatusBooked
	svc := NewBookingService(store, &fakeLedger{}, &fakeNotifier{}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.CancelBooking(ctx, store.slot.SlotID))
	assert.Equal(t, model.SlotStatusFree, store.slot.Status)

	// Повторная отмена различима: слот уже не booked
	err := svc.CancelBooking(ctx, store.slot.SlotID)
	require.ErrorIs(t, err, repository.ErrSlotConflict)
}

func TestReleaseExpiredHoldsCutoff(t *testing.T) {
	store := &fakeSlotStore{expiredHits: 2}
	svc := NewBookingService(store, &fakeLedger{}, &fakeNotifier{}, zap.NewNop())

	released, err := svc.ReleaseExpiredHolds(context.Background(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	wantCut := time.Now().Add(-15 * time.Minute)
	assert.WithinDuration(t, wantCut, store.expiredCut, 2*time.Second)
}
