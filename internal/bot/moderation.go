package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/compliment_bot/internal/db"
)

const moderationPageSize = 10

const accessDeniedText = "❌ У вас нет доступа к этой команде"

func (b *BotService) handleModerate(chatID int64, userID int64) {
	if !b.isAdmin(userID) {
		b.send(tgbotapi.NewMessage(chatID, accessDeniedText))
		return
	}

	state := b.sessions.Get(chatID)
	if state == nil || state.Step != StateModerating {
		state = &UserState{Step: StateModerating}
		b.sessions.Set(chatID, state)
	}

	b.showModerationPage(chatID, state)
}

func (b *BotService) handleModerationAction(cb *tgbotapi.CallbackQuery, verb string, id string) string {
	if !b.isAdmin(cb.From.ID) {
		return accessDeniedText
	}

	chatID := cb.Message.Chat.ID

	state := b.sessions.Get(chatID)
	if state == nil || state.Step != StateModerating {
		// Callback пережил состояние (например, после рестарта) -
		// продолжаем модерацию с сообщения, на котором нажали кнопку.
		state = &UserState{Step: StateModerating}
		b.sessions.Set(chatID, state)
	}
	if state.ModerationMessageID == 0 {
		state.ModerationMessageID = cb.Message.MessageID
	}

	switch {
	case id == "all" && verb == "approve":
		count, err := b.compliments.ApproveAll(state.PendingIDs)
		if err != nil {
			log.Printf("Error approving compliments for chatID %d: %v", chatID, err)
		} else {
			log.Printf("Approved %d compliments for chatID %d", count, chatID)
		}

	case id == "all" && verb == "delete":
		count, err := b.compliments.DeleteAll(state.PendingIDs)
		if err != nil {
			log.Printf("Error deleting compliments for chatID %d: %v", chatID, err)
		} else {
			log.Printf("Deleted %d compliments for chatID %d", count, chatID)
		}

	case verb == "approve":
		if err := b.compliments.Approve(id); err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Printf("Error approving compliment %s: %v", id, err)
		}

	case verb == "delete":
		if err := b.compliments.Delete(id); err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Printf("Error deleting compliment %s: %v", id, err)
		}
	}

	state.PendingIDs = nil
	b.showModerationPage(chatID, state)

	return ""
}

// showModerationPage перерисовывает страницу модерации на месте.
// Показанные id запоминаются в состоянии: массовые действия применяются
// именно к этому снимку, а не к свежей выборке.
func (b *BotService) showModerationPage(chatID int64, state *UserState) {
	compliments, err := b.compliments.ListPending(moderationPageSize)
	if err != nil {
		log.Printf("Error loading pending compliments: %v", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка при получении комплиментов."))
		return
	}

	if len(compliments) == 0 {
		b.editOrSend(chatID, state.ModerationMessageID, "✅ Все комплименты проверены!", nil)
		b.sessions.Clear(chatID)
		return
	}

	var sb strings.Builder
	sb.WriteString("Список на модерацию:\n\n")

	ids := make([]string, 0, len(compliments))
	for idx, c := range compliments {
		fmt.Fprintf(&sb, "%d. %s\n", idx+1, c.Text)
		ids = append(ids, c.ID)
	}

	keyboard := ModerationKeyboard(compliments)
	messageID := b.editOrSend(chatID, state.ModerationMessageID, sb.String(), &keyboard)

	state.PendingIDs = ids
	state.ModerationMessageID = messageID
}
