package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-match/internal/db"
	"github.com/oggyb/spark-match/internal/utils/pagination"
)

// SwipeRepository is the swipe ledger: one row per directed (from, to) pair.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *SwipeRepository) WithTx(tx *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: tx}
}

// Upsert inserts or overwrites the decision made by from -> to.
//
// Behavior:
//   - If (from_id, to_id) exists → direction and updated_at are overwritten.
//   - If it doesn’t exist → a new row is inserted.
//
// Example:
//
//	repo.Upsert(ctx, 1, 2, db.DirectionLike) // user 1 liked user 2
func (r *SwipeRepository) Upsert(ctx context.Context, fromID, toID uint64, direction string) error {
	swipe := db.Swipe{
		FromID:    fromID,
		ToID:      toID,
		Direction: direction,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_id"}, {Name: "to_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
		}).
		Create(&swipe).Error
}

// Get returns the (from, to) swipe, or nil when none was recorded.
func (r *SwipeRepository) Get(ctx context.Context, fromID, toID uint64) (*db.Swipe, error) {
	var s db.Swipe
	err := r.db.WithContext(ctx).
		Where("from_id = ? AND to_id = ?", fromID, toID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HasLiked checks whether from has a `like` on record for to.
// Used for the reciprocal check when evaluating a swipe.
func (r *SwipeRepository) HasLiked(ctx context.Context, fromID, toID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("from_id = ? AND to_id = ? AND direction = ?", fromID, toID, db.DirectionLike).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns the like swipes targeting the recipient.
//
// Behavior:
//   - Only swipes where to_id = X and direction = like are returned.
//   - Excludes likers already matched with the recipient.
//   - Ordered by updated_at DESC, from_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//   - limit <= 0 returns every remaining row and no next token.
//
// Example:
//
//	repo.GetLikers(ctx, 42, "", 20) // first 20 people who liked user 42
//	repo.GetLikers(ctx, 42, "", 0)  // everyone who liked user 42
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	recipientID uint64,
	paginationToken string,
	limit int,
) ([]db.Swipe, string, error) {
	var swipes []db.Swipe

	// decode cursor if provided
	cursor, err := pagination.Decode(paginationToken)
	if err != nil {
		return nil, "", err
	}

	query := r.likersQuery(ctx, recipientID).
		Order("s.updated_at DESC, s.from_id DESC")
	if limit > 0 {
		query = query.Limit(limit + 1)
	}

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.from_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, "", err
	}

	// pagination: build next cursor if needed
	var nextToken string
	if limit > 0 && len(swipes) > limit {
		last := swipes[limit-1]
		nextToken, _ = pagination.Encode(pagination.At(last.FromID, last.UpdatedAt))
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountLikers returns how many users liked the recipient and are not yet matched with them.
// Used in conjunction with Redis cache (DB is fallback).
func (r *SwipeRepository) CountLikers(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	if err := r.likersQuery(ctx, recipientID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeletePair removes both directed edges between a and b.
func (r *SwipeRepository) DeletePair(ctx context.Context, a, b uint64) error {
	return r.db.WithContext(ctx).
		Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)", a, b, b, a).
		Delete(&db.Swipe{}).Error
}

func (r *SwipeRepository) likersQuery(ctx context.Context, recipientID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.to_id = ? AND s.direction = ?", recipientID, db.DirectionLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM matches m
				WHERE (m.user_a_id = s.from_id AND m.user_b_id = s.to_id)
				   OR (m.user_a_id = s.to_id AND m.user_b_id = s.from_id)
			)`)
}
