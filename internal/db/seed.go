package db

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spark-match/internal/utils/pair"
)

var (
	seedNames = []string{
		"Amira", "Bilal", "Chloe", "Daniyal", "Elif", "Farah", "Gabriel", "Hana", "Idris", "Jana",
		"Karim", "Layla", "Musa", "Nadia", "Omar", "Priya", "Rami", "Sara", "Tariq", "Yasmin",
	}
	seedHobbies     = []string{"hiking", "cooking", "reading", "football", "travel", "photography", "gaming", "yoga"}
	seedPersonality = []string{"introvert", "extrovert", "creative", "analytical", "adventurous", "calm"}
	seedGoals       = []string{"long-term", "marriage", "friendship", "not-sure"}
)

// SeedTestData resets the database and populates it with demo users, swipes and matches.
//
// Behavior:
//  1. Clears chat, match, unmatch, swipe and user tables.
//  2. Creates 20 users (password "password") with ages 21-40 and random profile tags.
//  3. Generates ~200 swipes with ~70% likes; every 3rd like is made mutual and
//     materialized as a canonical match row.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	if err := Reset(db); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Seed Users ---
	users := make([]User, 0, len(seedNames))
	for i, name := range seedNames {
		age := 21 + r.Intn(20)
		users = append(users, User{
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			PasswordHash: string(hash),
			Name:         name,
			Age:          &age,
			Bio:          fmt.Sprintf("Hi, I'm %s.", name),
			Hobbies:      pick(r, seedHobbies, 3),
			Personality:  pick(r, seedPersonality, 2),
			Goal:         seedGoals[r.Intn(len(seedGoals))],
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	// --- Seed Swipes (~200) ---
	counter := 0
	for _, actor := range users {
		for j := 0; j < 10; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == actor.ID {
				continue
			}

			direction := DirectionSkip
			if r.Intn(100) < 70 {
				direction = DirectionLike
			}
			if err := upsertSwipe(db, actor.ID, target.ID, direction); err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			// guarantee mutual likes every 3rd like
			if direction == DirectionLike {
				if counter%3 == 0 {
					if err := upsertSwipe(db, target.ID, actor.ID, DirectionLike); err != nil {
						return fmt.Errorf("failed to seed swipe: %w", err)
					}
					a, b := pair.Canonical(actor.ID, target.ID)
					if err := db.Clauses(clause.OnConflict{DoNothing: true}).
						Create(&Match{UserAID: a, UserBID: b}).Error; err != nil {
						return fmt.Errorf("failed to seed match: %w", err)
					}
				}
				counter++
			}
		}
	}

	return nil
}

// SeedMinimalTestData inserts a small deterministic dataset:
//
//   - users 1 (age 30), 2 (age 25), 3 (age 41), 4 (no age)
//   - 1 → 2 like, 3 → 1 like, 1 → 3 skip
//
// Nothing is matched yet; 2 liking 1 back produces the first match.
func SeedMinimalTestData(db *gorm.DB) error {
	if err := Reset(db); err != nil {
		return err
	}

	age := func(n int) *int { return &n }
	users := []User{
		{ID: 1, Email: "u1@test.com", PasswordHash: "x", Name: "User1", Age: age(30)},
		{ID: 2, Email: "u2@test.com", PasswordHash: "x", Name: "User2", Age: age(25)},
		{ID: 3, Email: "u3@test.com", PasswordHash: "x", Name: "User3", Age: age(41)},
		{ID: 4, Email: "u4@test.com", PasswordHash: "x", Name: "User4"},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	swipes := []Swipe{
		{FromID: 1, ToID: 2, Direction: DirectionLike}, // user1 → user2 (like)
		{FromID: 3, ToID: 1, Direction: DirectionLike}, // user3 → user1 (like, not mutual)
		{FromID: 1, ToID: 3, Direction: DirectionSkip}, // user1 → user3 (skip)
	}
	return db.Create(&swipes).Error
}

// Reset clears every table, children first.
func Reset(db *gorm.DB) error {
	for _, table := range []string{"chat_messages", "chat_sessions", "matches", "unmatches", "swipes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence")
	}
	return nil
}

func upsertSwipe(db *gorm.DB, from, to uint64, direction string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_id"}, {Name: "to_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(&Swipe{FromID: from, ToID: to, Direction: direction}).Error
}

func pick(r *rand.Rand, from []string, n int) []string {
	idx := r.Perm(len(from))
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, from[i])
	}
	return out
}
