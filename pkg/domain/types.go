package domain

import "time"

// Stage is the conversation phase.
type Stage string

const (
	// StageCollecting means the assistant is still gathering preference slots.
	StageCollecting Stage = "collecting"
	// StageRecommend means all slots are filled and a search filter was emitted.
	StageRecommend Stage = "recommend"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Preferences is the five-slot dining preference record. A nil field is the
// only "unset" marker; a pointer to zero is a legitimate answer.
type Preferences struct {
	Budget   *int    `json:"budget"`
	People   *int    `json:"people"`
	Area     *string `json:"area"`
	Cuisine  *string `json:"cuisine"`
	Occasion *string `json:"occasion"`
}

// ChatSession owns one Preferences record and an append-only turn log.
type ChatSession struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Turn is a single utterance in a session. Ordering is insertion order and is
// semantically significant: replaying the log reconstructs the conversation.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
