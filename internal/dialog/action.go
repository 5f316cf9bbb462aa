package dialog

import "strings"

// ActionPrefix общий префикс callback data действий диалога записи
const ActionPrefix = "bk:"

const (
	actionSelect = ActionPrefix + "slot:"
	actionNext   = ActionPrefix + "next"
	actionDate   = ActionPrefix + "date"
	actionCancel = ActionPrefix + "cancel"
)

// Action типизированное действие пользователя из inline кнопки.
// Callback data разбирается один раз на границе, дальше по коду
// ходят только варианты этого типа.
type Action interface {
	Encode() string
	isAction()
}

// SelectSlot выбор конкретного слота
type SelectSlot struct {
	SlotID string
}

// NextPage следующая страница той же выдачи
type NextPage struct{}

// ChangeDate перейти к вводу фильтра по дате
type ChangeDate struct{}

// CancelFlow прервать диалог записи
type CancelFlow struct{}

func (a SelectSlot) Encode() string { return actionSelect + a.SlotID }
func (NextPage) Encode() string     { return actionNext }
func (ChangeDate) Encode() string   { return actionDate }
func (CancelFlow) Encode() string   { return actionCancel }

func (SelectSlot) isAction() {}
func (NextPage) isAction()   {}
func (ChangeDate) isAction() {}
func (CancelFlow) isAction() {}

// ParseAction разбирает callback data в действие диалога
func ParseAction(data string) (Action, bool) {
	switch {
	case strings.HasPrefix(data, actionSelect):
		slotID := strings.TrimPrefix(data, actionSelect)
		if slotID == "" {
			return nil, false
		}
		return SelectSlot{SlotID: slotID}, true
	case data == actionNext:
		return NextPage{}, true
	case data == actionDate:
		return ChangeDate{}, true
	case data == actionCancel:
		return CancelFlow{}, true
	}
	return nil, false
}

// Event входное событие диалога: текст пользователя или нажатие кнопки
type Event interface {
	isEvent()
}

// TextEvent обычное текстовое сообщение (либо распознанный голос)
type TextEvent struct {
	Text string
}

// ActionEvent нажатие inline кнопки
type ActionEvent struct {
	Action Action
}

func (TextEvent) isEvent()   {}
func (ActionEvent) isEvent() {}

// Button кнопка ответа с привязанным действием
type Button struct {
	Label  string
	Action Action
}

// Reply исходящее сообщение диалога: текст плюс необязательная клавиатура
type Reply struct {
	Text     string
	Keyboard [][]Button
}
