package dialog

import (
	"sync"
	"time"
)

// State текущий шаг диалога записи на приём
type State string

const (
	StateAskSpecialty State = "ask_specialty" // ждём специальность или имя врача
	StateAskSlot      State = "ask_slot"      // показали страницу слотов, ждём выбор
	StateAskDate      State = "ask_date"      // ждём дату для фильтра
	StateAskName      State = "ask_name"      // слот удержан, ждём ФИО
	StateAskPhone     State = "ask_phone"     // ждём телефон
)

// Session состояние одного пользователя в диалоге записи.
// Живёт только в памяти: рестарт процесса теряет незавершённые диалоги,
// повисшие удержания снимает janitor.
type Session struct {
	ChatID      int64
	State       State
	Query       string     // текстовый фильтр: специальность или врач
	Page        int        // номер текущей страницы выдачи
	DateFilter  *time.Time // необязательный фильтр по дате приёма
	HeldSlotID  string     // слот, удержанный для этого пользователя
	PatientName string
	TouchedAt   time.Time
}

// Store хранилище сессий, ключ - chat id пользователя.
// Get возвращает копию, изменения фиксируются через Put: при последовательной
// обработке сообщений одного пользователя этого достаточно.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]Session),
	}
}

// Get возвращает копию сессии пользователя
func (s *Store) Get(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	return sess, ok
}

// Begin создаёт новую сессию с начальным состоянием диалога
func (s *Store) Begin(chatID int64) Session {
	sess := Session{
		ChatID:    chatID,
		State:     StateAskSpecialty,
		TouchedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[chatID] = sess
	s.mu.Unlock()

	return sess
}

// Put сохраняет изменённую сессию
func (s *Store) Put(sess Session) {
	sess.TouchedAt = time.Now()

	s.mu.Lock()
	s.sessions[sess.ChatID] = sess
	s.mu.Unlock()
}

// End удаляет сессию пользователя
func (s *Store) End(chatID int64) {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
}

// Active проверяет, есть ли у пользователя незавершённый диалог
func (s *Store) Active(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[chatID]
	return ok
}

// Sweep удаляет сессии, к которым не притрагивались дольше ttl,
// и возвращает их копии, чтобы вызывающий снял повисшие удержания
func (s *Store) Sweep(ttl time.Duration) []Session {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []Session
	for chatID, sess := range s.sessions {
		if sess.TouchedAt.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, chatID)
		}
	}

	return expired
}
