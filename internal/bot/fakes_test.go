package bot

import (
	"errors"
	"sort"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/compliment_bot/internal/db"
)

// fakeStore - in-memory реализация complimentStore с той же
// семантикой ошибок, что у ComplimentRepository.
type fakeStore struct {
	mu        sync.Mutex
	items     map[string]*db.Compliment
	createErr error
	listErr   error
	randomErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string]*db.Compliment)}
}

func (s *fakeStore) add(c db.Compliment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = &c
}

func (s *fakeStore) get(id string) *db.Compliment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.items[id]; ok {
		cp := *c
		return &cp
	}
	return nil
}

func (s *fakeStore) Create(c *db.Compliment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.items[c.ID]; ok {
		return db.ErrAlreadyExists
	}

	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(id string) (*db.Compliment, error) {
	return s.get(id), nil
}

func (s *fakeStore) Exists(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *fakeStore) UpdateText(id string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return db.ErrNotFound
	}
	c.Text = text
	return nil
}

func (s *fakeStore) Approve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return db.ErrNotFound
	}
	c.Approved = true
	return nil
}

func (s *fakeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeStore) ApproveAll(ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, id := range ids {
		if c, ok := s.items[id]; ok {
			c.Approved = true
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) DeleteAll(ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) ListPending(limit int) ([]db.Compliment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	var pending []db.Compliment
	for _, c := range s.items {
		if !c.Approved {
			pending = append(pending, *c)
		}
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *fakeStore) GetRandomApproved(targetAudience string) (*db.Compliment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.randomErr != nil {
		return nil, s.randomErr
	}

	var matches []*db.Compliment
	for _, c := range s.items {
		if c.Approved && c.TargetAudience == targetAudience {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// Детерминизм в тестах важнее случайности
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	cp := *matches[0]
	return &cp, nil
}

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failEdits bool
	lastMsgID int
	updates   chan tgbotapi.Update
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failEdits {
		if _, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			return tgbotapi.Message{}, errors.New("Bad Request: message can't be edited")
		}
	}

	f.sent = append(f.sent, c)
	f.lastMsgID++
	return tgbotapi.Message{MessageID: f.lastMsgID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.sent) == 0 {
		return ""
	}
	return chattableText(f.sent[len(f.sent)-1])
}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(f.sent))
	for _, c := range f.sent {
		texts = append(texts, chattableText(c))
	}
	return texts
}

func (f *fakeAPI) lastCallbackText() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		if cb, ok := f.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb.Text
		}
	}
	return ""
}

func chattableText(c tgbotapi.Chattable) string {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.Text
	case tgbotapi.EditMessageTextConfig:
		return v.Text
	default:
		return ""
	}
}

func commandUpdate(chatID int64, userID int64, command string) tgbotapi.Update {
	text := "/" + command
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(text)},
			},
		},
	}
}

func newCallback(chatID int64, userID int64, messageID int, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "callback-1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}
