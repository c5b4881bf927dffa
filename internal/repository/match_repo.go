package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-match/internal/db"
	"github.com/oggyb/spark-match/internal/utils/pair"
)

// MatchRepository owns match rows and the unmatch tombstones that replace them.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Upsert makes sure exactly one match row exists for {x, y} and returns it.
//
// The pair is stored canonically (lower id in user_a_id). Concurrent callers
// racing on the same pair both end up reading the single surviving row.
func (r *MatchRepository) Upsert(ctx context.Context, x, y uint64) (*db.Match, bool, error) {
	low, high := pair.Canonical(x, y)

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&db.Match{UserAID: low, UserBID: high})
	if res.Error != nil {
		return nil, false, res.Error
	}

	// the inserted id is not reliable when the insert was skipped; re-read
	var m db.Match
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", low, high).
		First(&m).Error; err != nil {
		return nil, false, err
	}
	return &m, res.RowsAffected > 0, nil
}

// GetByID returns gorm.ErrRecordNotFound when the match does not exist.
func (r *MatchRepository) GetByID(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetWithUsers is GetByID with both participants preloaded.
func (r *MatchRepository) GetWithUsers(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists reports whether x and y are currently matched.
func (r *MatchRepository) Exists(ctx context.Context, x, y uint64) (bool, error) {
	low, high := pair.Canonical(x, y)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_a_id = ? AND user_b_id = ?", low, high).
		Count(&count).Error
	return count > 0, err
}

// ListForUser returns every match userID participates in, newest first,
// with both participants preloaded.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// Remove dissolves m and everything hanging off it. Must run inside a
// transaction (see WithTx); the steps are:
//
//  1. delete chat messages and the chat session of the match
//  2. delete both swipe edges between the participants
//  3. write unmatch tombstones in both directions
//  4. delete the match row
//
// Returns gorm.ErrRecordNotFound when the match row was already gone.
func (r *MatchRepository) Remove(ctx context.Context, m *db.Match) error {
	tx := r.db.WithContext(ctx)

	sessions := tx.Model(&db.ChatSession{}).Select("id").Where("match_id = ?", m.ID)
	if err := tx.Where("chat_id IN (?)", sessions).Delete(&db.ChatMessage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("match_id = ?", m.ID).Delete(&db.ChatSession{}).Error; err != nil {
		return err
	}

	if err := NewSwipeRepository(tx).DeletePair(ctx, m.UserAID, m.UserBID); err != nil {
		return err
	}

	tombstones := []db.Unmatch{
		{UserAID: m.UserAID, UserBID: m.UserBID},
		{UserAID: m.UserBID, UserBID: m.UserAID},
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(&tombstones).Error; err != nil {
		return err
	}

	res := tx.Where("id = ?", m.ID).Delete(&db.Match{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsUnmatched reports whether a tombstone exists between x and y.
func (r *MatchRepository) IsUnmatched(ctx context.Context, x, y uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Unmatch{}).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)", x, y, y, x).
		Count(&count).Error
	return count > 0, err
}
