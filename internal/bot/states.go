package bot

const (
	StateChoosingUserAudience   = "choosing_user_audience"
	StateChoosingTargetAudience = "choosing_target_audience"
	StateEnteringText           = "entering_text"

	StateModerating = "moderating"
)

// UserState — шаг диалога и накопленные ответы. Отсутствие состояния
// в Sessions означает, что диалог не начат.
type UserState struct {
	Step             string
	UserAudience     string
	TargetAudience   string
	EditComplimentID string

	// Снимок id, показанных на текущей странице модерации:
	// массовые действия применяются ровно к нему.
	PendingIDs          []string
	ModerationMessageID int
}
