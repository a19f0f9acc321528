package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/compliment_bot/internal/db"
)

func UserAudienceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Мужской", "gender_male"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Женский", "gender_female"),
		),
	)
}

func TargetAudienceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Мужской", "target_male"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Женский", "target_female"),
		),
	)
}

func EditLastKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Редактировать комплимент", "edit_last"),
		),
	)
}

// ModerationKeyboard строит по паре кнопок на каждый показанный
// комплимент плюс массовые действия для всей страницы.
func ModerationKeyboard(compliments []db.Compliment) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for idx, c := range compliments {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ Одобрить %d", idx+1), "approve_"+c.ID),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ Удалить %d", idx+1), "delete_"+c.ID),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Одобрить все", "approve_all"),
		tgbotapi.NewInlineKeyboardButtonData("Отклонить все", "delete_all"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ParseModerationAction разбирает payload вида "<verb>_<id>", где verb —
// approve или delete, а id — либо id комплимента, либо литерал "all".
func ParseModerationAction(data string) (verb string, id string, ok bool) {
	parts := strings.SplitN(data, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", false
	}

	if parts[0] != "approve" && parts[0] != "delete" {
		return "", "", false
	}

	return parts[0], parts[1], true
}

func audienceFromCallback(data string) string {
	if strings.HasSuffix(data, "_male") {
		return db.AudienceMale
	}

	return db.AudienceFemale
}
