package db

import (
	"time"

	"gorm.io/datatypes"
)

// Swipe directions.
const (
	DirectionLike = "like"
	DirectionSkip = "skip"
)

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Name         string `gorm:"size:128"`
	Age          *int   `gorm:"index"`
	Bio          string `gorm:"type:text"`
	PhotoURL     string `gorm:"size:512"`
	Hobbies      datatypes.JSONSlice[string]
	Personality  datatypes.JSONSlice[string]
	Goal         string    `gorm:"size:64"`
	IdealDate    string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Swipe represents a directed like/skip decision.
//
// Composite PK: (FromID, ToID)
//   - Ensures a single row per ordered pair (overwrite guarantee).
//
// Indexes:
//   - idx_to_direction_updated_from(to_id, direction, updated_at DESC, from_id)
//     Serves "who liked me" lists with pagination.
type Swipe struct {
	FromID    uint64    `gorm:"primaryKey"`
	ToID      uint64    `gorm:"primaryKey;index:idx_to_direction_updated_from,priority:1"`
	Direction string    `gorm:"size:8;not null;index:idx_to_direction_updated_from,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_to_direction_updated_from,priority:3,sort:desc"`
}

// Match is a mutual like stored as a canonical pair, UserAID < UserBID.
type Match struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserAID   uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1" json:"userAId"`
	UserBID   uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index" json:"userBId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	UserA *User `gorm:"foreignKey:UserAID" json:"-"`
	UserB *User `gorm:"foreignKey:UserBID" json:"-"`
}

// Unmatch is a tombstone. Rows are written for both (A, B) and (B, A), so
// a lookup on either column finds the pair.
type Unmatch struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserAID   uint64    `gorm:"not null;uniqueIndex:idx_unmatch_pair,priority:1"`
	UserBID   uint64    `gorm:"not null;uniqueIndex:idx_unmatch_pair,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChatSession binds a match to its message log. One per match.
type ChatSession struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID   uint64    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Match *Match `gorm:"constraint:OnDelete:CASCADE"`
}

// ChatMessage is immutable once written. Replay order is (sent_at, id).
type ChatMessage struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement"`
	ChatID   uint64    `gorm:"not null;index:idx_chat_sent,priority:1"`
	SenderID uint64    `gorm:"not null"`
	Content  string    `gorm:"type:text;not null"`
	SentAt   time.Time `gorm:"not null;index:idx_chat_sent,priority:2"`

	Chat *ChatSession `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

// All lists every model for AutoMigrate, parents first.
func All() []any {
	return []any{&User{}, &Swipe{}, &Match{}, &Unmatch{}, &ChatSession{}, &ChatMessage{}}
}
