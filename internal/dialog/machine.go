package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rgclinic/mednavigator-bot/internal/model"
	"github.com/rgclinic/mednavigator-bot/internal/repository"
	"go.uber.org/zap"
)

// Booking операции сервиса записи, нужные диалогу
type Booking interface {
	Search(ctx context.Context, query string, dateFilter *time.Time, page int) ([]model.SlotSummary, error)
	Hold(ctx context.Context, slotID string) error
	Release(ctx context.Context, slotID string) error
	Confirm(ctx context.Context, slotID, fullName, phone string) (*model.IntakeRequest, error)
}

// Machine конечный автомат диалога записи на приём:
// специальность → выбор слота (→ фильтр по дате) → ФИО → телефон → подтверждение.
// Не знает про Telegram: принимает события, возвращает ответы.
type Machine struct {
	booking Booking
	store   *Store
	logger  *zap.Logger
}

func NewMachine(booking Booking, store *Store, logger *zap.Logger) *Machine {
	return &Machine{
		booking: booking,
		store:   store,
		logger:  logger,
	}
}

// Store возвращает хранилище сессий (для janitor-а и фронтенда)
func (m *Machine) Store() *Store {
	return m.store
}

// Start начинает диалог записи. Уже идущий диалог отменяется,
// его удержание снимается.
func (m *Machine) Start(ctx context.Context, chatID int64) []Reply {
	if sess, ok := m.store.Get(chatID); ok {
		m.releaseHeld(ctx, sess)
	}

	m.store.Begin(chatID)

	return []Reply{{
		Text: "📅 Запись на приём.\n\nНапишите специальность или фамилию врача, например: кардиолог.\n\nДля отмены используйте /cancel",
	}}
}

// Handle обрабатывает одно событие диалога и возвращает ответы пользователю
func (m *Machine) Handle(ctx context.Context, chatID int64, ev Event) []Reply {
	sess, ok := m.store.Get(chatID)
	if !ok {
		return []Reply{{Text: "Диалог записи не начат. Нажмите «Запись на приём» в меню."}}
	}

	// Отмена доступна из любого состояния
	if act, ok := ev.(ActionEvent); ok {
		if _, isCancel := act.Action.(CancelFlow); isCancel {
			return m.cancel(ctx, sess)
		}
	}

	switch sess.State {
	case StateAskSpecialty:
		return m.handleAskSpecialty(ctx, sess, ev)
	case StateAskSlot:
		return m.handleAskSlot(ctx, sess, ev)
	case StateAskDate:
		return m.handleAskDate(ctx, sess, ev)
	case StateAskName:
		return m.handleAskName(sess, ev)
	case StateAskPhone:
		return m.handleAskPhone(ctx, sess, ev)
	}

	m.logger.Warn("Session in unknown state, dropping",
		zap.Int64("chat_id", chatID),
		zap.String("state", string(sess.State)))
	m.store.End(chatID)
	return []Reply{{Text: "Что-то пошло не так, начните запись заново."}}
}

// Cancel прерывает диалог по команде /cancel
func (m *Machine) Cancel(ctx context.Context, chatID int64) []Reply {
	sess, ok := m.store.Get(chatID)
	if !ok {
		return []Reply{{Text: "Нет активного диалога записи."}}
	}
	return m.cancel(ctx, sess)
}

func (m *Machine) handleAskSpecialty(ctx context.Context, sess Session, ev Event) []Reply {
	text, ok := ev.(TextEvent)
	if !ok {
		return []Reply{{Text: "Напишите специальность или фамилию врача текстом."}}
	}

	query := strings.TrimSpace(text.Text)
	if query == "" {
		return []Reply{{Text: "Напишите специальность или фамилию врача, например: терапевт."}}
	}

	sess.Query = query
	sess.Page = 0
	sess.DateFilter = nil

	slots, err := m.booking.Search(ctx, sess.Query, nil, 0)
	if err != nil {
		return m.backendTrouble(sess, err)
	}

	if len(slots) == 0 {
		m.store.End(sess.ChatID)
		return []Reply{{Text: fmt.Sprintf("К сожалению, по запросу «%s» свободного времени нет. Попробуйте другую специальность или загляните позже.", query)}}
	}

	sess.State = StateAskSlot
	m.store.Put(sess)

	return []Reply{m.renderSlotsPage(sess, slots)}
}

func (m *Machine) handleAskSlot(ctx context.Context, sess Session, ev Event) []Reply {
	act, ok := ev.(ActionEvent)
	if !ok {
		return []Reply{{Text: "Выберите время кнопкой под сообщением, либо /cancel для отмены."}}
	}

	switch a := act.Action.(type) {
	case SelectSlot:
		return m.trySelect(ctx, sess, a.SlotID)

	case NextPage:
		slots, err := m.booking.Search(ctx, sess.Query, sess.DateFilter, sess.Page+1)
		if err != nil {
			return m.backendTrouble(sess, err)
		}
		if len(slots) == 0 {
			// Дальше пусто, остаёмся на текущей странице
			return []Reply{{Text: "Дальше свободного времени нет, это всё."}}
		}
		sess.Page++
		m.store.Put(sess)
		return []Reply{m.renderSlotsPage(sess, slots)}

	case ChangeDate:
		sess.State = StateAskDate
		m.store.Put(sess)
		return []Reply{{Text: "Введите дату в формате ДД.ММ.ГГГГ, например 01.11.2025."}}
	}

	return []Reply{{Text: "Выберите время кнопкой под сообщением."}}
}

func (m *Machine) trySelect(ctx context.Context, sess Session, slotID string) []Reply {
	err := m.booking.Hold(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) || errors.Is(err, repository.ErrSlotNotFound) {
			// Проиграли гонку: слот успели занять, показываем страницу заново
			slots, qerr := m.booking.Search(ctx, sess.Query, sess.DateFilter, sess.Page)
			if qerr != nil {
				return m.backendTrouble(sess, qerr)
			}
			replies := []Reply{{Text: "Увы, это время только что заняли. Выберите другое:"}}
			if len(slots) > 0 {
				replies = append(replies, m.renderSlotsPage(sess, slots))
			}
			return replies
		}
		return m.backendTrouble(sess, err)
	}

	sess.HeldSlotID = slotID
	sess.State = StateAskName
	m.store.Put(sess)

	return []Reply{{Text: "Время удержано за вами на несколько минут.\n\nНазовите, пожалуйста, ФИО пациента."}}
}

func (m *Machine) handleAskDate(ctx context.Context, sess Session, ev Event) []Reply {
	text, ok := ev.(TextEvent)
	if !ok {
		return []Reply{{Text: "Введите дату текстом в формате ДД.ММ.ГГГГ."}}
	}

	date, err := parseVisitDate(strings.TrimSpace(text.Text))
	if err != nil {
		return []Reply{{Text: "Не понял дату. Введите в формате ДД.ММ.ГГГГ, например 01.11.2025."}}
	}

	sess.DateFilter = &date
	sess.Page = 0

	slots, err := m.booking.Search(ctx, sess.Query, sess.DateFilter, 0)
	if err != nil {
		return m.backendTrouble(sess, err)
	}

	if len(slots) == 0 {
		m.store.End(sess.ChatID)
		return []Reply{{Text: fmt.Sprintf("На %s свободного времени нет. Начните запись заново и попробуйте другую дату.", date.Format("02.01.2006"))}}
	}

	sess.State = StateAskSlot
	m.store.Put(sess)

	return []Reply{m.renderSlotsPage(sess, slots)}
}

func (m *Machine) handleAskName(sess Session, ev Event) []Reply {
	text, ok := ev.(TextEvent)
	if !ok {
		return []Reply{{Text: "Напишите ФИО пациента текстом."}}
	}

	name := strings.TrimSpace(text.Text)
	if name == "" {
		return []Reply{{Text: "ФИО не может быть пустым. Напишите, пожалуйста, ещё раз."}}
	}

	sess.PatientName = name
	sess.State = StateAskPhone
	m.store.Put(sess)

	return []Reply{{Text: "Отлично. Теперь контактный телефон:"}}
}

func (m *Machine) handleAskPhone(ctx context.Context, sess Session, ev Event) []Reply {
	text, ok := ev.(TextEvent)
	if !ok {
		return []Reply{{Text: "Напишите телефон текстом."}}
	}

	phone := strings.TrimSpace(text.Text)
	if phone == "" {
		return []Reply{{Text: "Телефон не может быть пустым. Напишите, пожалуйста, ещё раз."}}
	}

	entry, err := m.booking.Confirm(ctx, sess.HeldSlotID, sess.PatientName, phone)
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) || errors.Is(err, repository.ErrSlotNotFound) {
			// Удержание истекло или слот пропал: диалог завершается
			m.store.End(sess.ChatID)
			return []Reply{{Text: "К сожалению, это время уже недоступно. Начните запись заново."}}
		}
		return m.backendTrouble(sess, err)
	}

	m.store.End(sess.ChatID)

	return []Reply{{
		Text: fmt.Sprintf(
			"✅ Вы записаны!\n\n👨‍⚕️ %s (%s)\n📅 %s в %s\n👤 %s\n\nНомер заявки: %s\nАдминистратор свяжется с вами для подтверждения.",
			entry.DoctorFullName,
			entry.Specialty,
			entry.VisitDate.Format("02.01.2006"),
			entry.VisitTime,
			entry.PatientFullName,
			entry.AppointmentID,
		),
	}}
}

func (m *Machine) cancel(ctx context.Context, sess Session) []Reply {
	m.releaseHeld(ctx, sess)
	m.store.End(sess.ChatID)
	return []Reply{{Text: "Запись отменена. Если что — я рядом 😊"}}
}

// releaseHeld снимает удержание слота сессии, если оно было
func (m *Machine) releaseHeld(ctx context.Context, sess Session) {
	if sess.HeldSlotID == "" {
		return
	}

	if err := m.booking.Release(ctx, sess.HeldSlotID); err != nil {
		// Конфликт здесь не страшен: слот уже перехватили или снял janitor
		m.logger.Warn("Failed to release held slot",
			zap.Int64("chat_id", sess.ChatID),
			zap.String("slot_id", sess.HeldSlotID),
			zap.Error(err))
	}
}

// backendTrouble хранилище недоступно: сообщаем и оставляем сессию как есть,
// пользователь может повторить действие
func (m *Machine) backendTrouble(sess Session, err error) []Reply {
	m.logger.Error("Booking backend unavailable",
		zap.Int64("chat_id", sess.ChatID),
		zap.String("state", string(sess.State)),
		zap.Error(err))

	return []Reply{{Text: "⚠️ Сервис записи временно недоступен. Попробуйте ещё раз через минуту."}}
}

func (m *Machine) renderSlotsPage(sess Session, slots []model.SlotSummary) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Свободное время по запросу «%s»", sess.Query)
	if sess.DateFilter != nil {
		fmt.Fprintf(&b, " на %s", sess.DateFilter.Format("02.01.2006"))
	}
	fmt.Fprintf(&b, " (стр. %d):\n", sess.Page+1)

	keyboard := make([][]Button, 0, len(slots)+1)
	for _, s := range slots {
		fmt.Fprintf(&b, "\n👨‍⚕️ %s (%s)\n📅 %s в %s\n", s.DoctorName, s.Specialty, s.VisitDate.Format("02.01.2006"), s.VisitTime)
		keyboard = append(keyboard, []Button{{
			Label:  fmt.Sprintf("%s %s — %s", s.VisitDate.Format("02.01"), s.VisitTime, s.DoctorName),
			Action: SelectSlot{SlotID: s.SlotID},
		}})
	}

	keyboard = append(keyboard, []Button{
		{Label: "➡️ Ещё", Action: NextPage{}},
		{Label: "📅 Другая дата", Action: ChangeDate{}},
		{Label: "❌ Отмена", Action: CancelFlow{}},
	})

	return Reply{Text: b.String(), Keyboard: keyboard}
}

// parseVisitDate понимает ДД.ММ.ГГГГ, ДД.ММ (текущий год) и ГГГГ-ММ-ДД
func parseVisitDate(s string) (time.Time, error) {
	for _, layout := range []string{"02.01.2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse("02.01", s); err == nil {
		return t.AddDate(time.Now().Year(), 0, 0), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
