package bot

import "sync"

// Sessions хранит состояния диалогов по chat_id. Создание, изменение и
// очистка состояния проходят только через этот тип.
type Sessions struct {
	mu     sync.RWMutex
	states map[int64]*UserState
}

func NewSessions() *Sessions {
	return &Sessions{
		states: make(map[int64]*UserState),
	}
}

// Get возвращает состояние диалога или nil, если диалог не начат.
func (s *Sessions) Get(chatID int64) *UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.states[chatID]
}

func (s *Sessions) Set(chatID int64, state *UserState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[chatID] = state
}

func (s *Sessions) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, chatID)
}
