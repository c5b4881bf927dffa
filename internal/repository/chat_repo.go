package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-match/internal/db"
)

// ChatRepository stores chat sessions and their append-only message log.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *ChatRepository) WithTx(tx *gorm.DB) *ChatRepository {
	return &ChatRepository{db: tx}
}

// GetOrCreateSession returns the session of matchID, creating it on first use.
// Concurrent first writers converge on one row through the unique match_id.
func (r *ChatRepository) GetOrCreateSession(ctx context.Context, matchID uint64) (*db.ChatSession, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&db.ChatSession{MatchID: matchID}).Error; err != nil {
		return nil, err
	}
	return r.GetSession(ctx, matchID)
}

// GetSession returns gorm.ErrRecordNotFound while no message was ever written.
func (r *ChatRepository) GetSession(ctx context.Context, matchID uint64) (*db.ChatSession, error) {
	var s db.ChatSession
	if err := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertMessages appends msgs in slice order.
func (r *ChatRepository) InsertMessages(ctx context.Context, msgs []db.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(&msgs, 100).Error
}

// ListMessages returns up to limit messages of chatID ordered by (sent_at, id).
func (r *ChatRepository) ListMessages(ctx context.Context, chatID uint64, limit int) ([]db.ChatMessage, error) {
	var msgs []db.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("sent_at ASC, id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}
