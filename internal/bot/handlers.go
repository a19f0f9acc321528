package bot

import (
	"errors"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/compliment_bot/internal/db"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type complimentStore interface {
	Create(c *db.Compliment) error
	GetByID(id string) (*db.Compliment, error)
	Exists(id string) (bool, error)
	UpdateText(id string, text string) error
	Approve(id string) error
	Delete(id string) error
	ApproveAll(ids []string) (int64, error)
	DeleteAll(ids []string) (int64, error)
	ListPending(limit int) ([]db.Compliment, error)
	GetRandomApproved(targetAudience string) (*db.Compliment, error)
}

type BotService struct {
	api         telegramAPI
	compliments complimentStore
	sessions    *Sessions
	adminIDs    map[int64]bool
}

func New(api telegramAPI, compliments complimentStore, adminIDs []int64) *BotService {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	return &BotService{
		api:         api,
		compliments: compliments,
		sessions:    NewSessions(),
		adminIDs:    admins,
	}
}

func (b *BotService) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		b.handleUpdate(update)
	}
}

func (b *BotService) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			b.handleStart(chatID, userID)
		case "moderate":
			b.handleModerate(chatID, userID)
		}
		return
	}

	b.handleText(chatID, userID, update.Message.Text)
}

func (b *BotService) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	notice := b.dispatchCallback(cb)

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, notice)); err != nil {
		log.Printf("Error answering callback %s: %v", cb.ID, err)
	}
}

func (b *BotService) dispatchCallback(cb *tgbotapi.CallbackQuery) string {
	data := cb.Data

	switch {
	case data == "edit_last":
		return b.handleEditLast(cb)
	case strings.HasPrefix(data, "gender_"):
		b.handleUserAudience(cb)
	case strings.HasPrefix(data, "target_"):
		b.handleTargetAudience(cb)
	default:
		if verb, id, ok := ParseModerationAction(data); ok {
			return b.handleModerationAction(cb, verb, id)
		}
	}

	return ""
}

func (b *BotService) handleStart(chatID int64, userID int64) {
	exists, err := b.compliments.Exists(strconv.FormatInt(userID, 10))
	if err != nil {
		log.Printf("Error checking compliment for chatID %d: %v", chatID, err)
		b.send(tgbotapi.NewMessage(chatID, "Произошла ошибка. Попробуйте позже"))
		return
	}

	if exists {
		b.send(tgbotapi.NewMessage(chatID, "Вы уже отправили комплимент. Пожалуйста, подождите до следующего раза."))
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Выберите ваш пол:")
	msg.ReplyMarkup = UserAudienceKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending start prompt to chatID %d: %v", chatID, err)
		return
	}

	b.sessions.Set(chatID, &UserState{Step: StateChoosingUserAudience})
}

func (b *BotService) handleUserAudience(cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	state := b.sessions.Get(chatID)
	if state == nil || state.Step != StateChoosingUserAudience {
		return
	}

	state.UserAudience = audienceFromCallback(cb.Data)
	state.Step = StateChoosingTargetAudience

	keyboard := TargetAudienceKeyboard()
	b.editOrSend(chatID, cb.Message.MessageID, "Для кого будет комплимент?", &keyboard)
}

func (b *BotService) handleTargetAudience(cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	state := b.sessions.Get(chatID)
	if state == nil || state.Step != StateChoosingTargetAudience {
		return
	}

	state.TargetAudience = audienceFromCallback(cb.Data)
	state.Step = StateEnteringText

	b.editOrSend(chatID, cb.Message.MessageID, "Напишите комплимент:", nil)
}

// handleEditLast входит в шаг ввода текста напрямую: обе аудитории
// берутся из сохранённого комплимента, заново не спрашиваем.
func (b *BotService) handleEditLast(cb *tgbotapi.CallbackQuery) string {
	chatID := cb.Message.Chat.ID
	id := strconv.FormatInt(cb.From.ID, 10)

	c, err := b.compliments.GetByID(id)
	if err != nil {
		log.Printf("Error loading compliment %s: %v", id, err)
		return "Произошла ошибка. Попробуйте позже"
	}

	if c == nil {
		return "❌ Не найдено комплиментов для редактирования"
	}

	b.sessions.Set(chatID, &UserState{
		Step:             StateEnteringText,
		EditComplimentID: c.ID,
		UserAudience:     c.TargetAudience,
		TargetAudience:   c.TargetAudience,
	})

	b.editOrSend(chatID, cb.Message.MessageID, "Текущий текст: "+c.Text+"\nВведите новый текст:", nil)

	return ""
}

func (b *BotService) handleText(chatID int64, userID int64, text string) {
	state := b.sessions.Get(chatID)
	if state == nil || state.Step != StateEnteringText {
		// Свободный текст вне диалога игнорируем
		return
	}

	if strings.TrimSpace(text) == "" {
		b.send(tgbotapi.NewMessage(chatID, "Комплимент не может быть пустым. Введите текст:"))
		return
	}

	if state.EditComplimentID != "" {
		err := b.compliments.UpdateText(state.EditComplimentID, text)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Printf("Error updating compliment %s: %v", state.EditComplimentID, err)
			b.send(tgbotapi.NewMessage(chatID, "Произошла ошибка при сохранении. Попробуйте позже"))
			return
		}
	} else {
		if state.TargetAudience == "" {
			b.send(tgbotapi.NewMessage(chatID, "Пожалуйста, укажите целевую аудиторию для комплимента."))
			return
		}

		err := b.compliments.Create(&db.Compliment{
			ID:             strconv.FormatInt(userID, 10),
			Text:           text,
			TargetAudience: state.TargetAudience,
		})
		if err != nil {
			if errors.Is(err, db.ErrAlreadyExists) {
				b.sessions.Clear(chatID)
				b.send(tgbotapi.NewMessage(chatID, "Вы уже отправили комплимент. Пожалуйста, подождите до следующего раза."))
				return
			}

			log.Printf("Error creating compliment for chatID %d: %v", chatID, err)
			b.send(tgbotapi.NewMessage(chatID, "Произошла ошибка при сохранении. Попробуйте позже"))
			return
		}
	}

	b.sendFinalMessage(chatID, text, state.UserAudience)
	b.sessions.Clear(chatID)
}

// sendFinalMessage подтверждает сохранение и добавляет ответный
// случайный комплимент для аудитории самого отправителя, если есть.
func (b *BotService) sendFinalMessage(chatID int64, complimentText string, userAudience string) {
	finalText := "✅ Комплимент сохранен!\n\nВаш комплимент:\n" + complimentText

	reciprocal, err := b.compliments.GetRandomApproved(userAudience)
	if err != nil {
		log.Printf("Error picking random compliment for chatID %d: %v", chatID, err)
	} else if reciprocal != nil {
		finalText += "\n\nСлучайный комплимент для вас:\n" + reciprocal.Text
	}

	msg := tgbotapi.NewMessage(chatID, finalText)
	msg.ReplyMarkup = EditLastKeyboard()
	b.send(msg)
}

// editOrSend правит сообщение на месте, а при неудаче (или без
// известного message_id) отправляет новое. Возвращает id сообщения,
// в котором в итоге оказался текст.
func (b *BotService) editOrSend(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) int {
	if messageID != 0 {
		var edit tgbotapi.Chattable
		if markup != nil {
			edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
		} else {
			edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
		}

		_, err := b.api.Send(edit)
		if err == nil {
			return messageID
		}
		log.Printf("Error editing message %d for chatID %d: %v", messageID, chatID, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Error sending message to chatID %d: %v", chatID, err)
		return 0
	}

	return sent.MessageID
}

func (b *BotService) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chatID %d: %v", msg.ChatID, err)
	}
}

func (b *BotService) isAdmin(userID int64) bool {
	return b.adminIDs[userID]
}
