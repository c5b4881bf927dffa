package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/spark-match/internal/db"
)

// AgeRange is an inclusive age filter. Nil bounds are open.
type AgeRange struct {
	Min *int
	Max *int
}

// Active reports whether any bound is set.
func (a AgeRange) Active() bool { return a.Min != nil || a.Max != nil }

// UserRepository reads and writes user rows (identity + profile).
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// GetByID returns gorm.ErrRecordNotFound when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns gorm.ErrRecordNotFound when no user has that email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads users keyed by id. Missing ids are simply absent.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]db.User, error) {
	out := make(map[uint64]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// Exists reports whether a user row with id exists.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateProfile applies column → value updates and returns the fresh row.
// An empty update is a plain read.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint64, updates map[string]any) (*db.User, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetByID(ctx, id)
}

// NextCandidate returns the lowest-id user that userID may still be shown,
// or nil when none is left.
//
// Excluded:
//   - userID itself
//   - everyone userID already swiped on, in either direction
//   - everyone sharing an unmatch tombstone with userID
//   - when ages is active, users outside the range and users without an age
func (r *UserRepository) NextCandidate(ctx context.Context, userID uint64, ages AgeRange) (*db.User, error) {
	swiped := r.db.Model(&db.Swipe{}).Select("to_id").Where("from_id = ?", userID)
	unmatchedOut := r.db.Model(&db.Unmatch{}).Select("user_b_id").Where("user_a_id = ?", userID)
	unmatchedIn := r.db.Model(&db.Unmatch{}).Select("user_a_id").Where("user_b_id = ?", userID)

	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", swiped).
		Where("id NOT IN (?)", unmatchedOut).
		Where("id NOT IN (?)", unmatchedIn)

	if ages.Min != nil {
		query = query.Where("age IS NOT NULL AND age >= ?", *ages.Min)
	}
	if ages.Max != nil {
		query = query.Where("age IS NOT NULL AND age <= ?", *ages.Max)
	}

	var users []db.User
	if err := query.Order("id ASC").Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
