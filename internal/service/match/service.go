package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/db"
	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/realtime"
	"github.com/oggyb/spark-match/internal/repository"
	"github.com/oggyb/spark-match/internal/utils/pair"
)

// Service is the match engine: it turns reciprocal likes into canonical
// match rows, lists them and dissolves them on unmatch.
type Service struct {
	appCtx  *app.AppContext
	log     *slog.Logger
	swipes  *repository.SwipeRepository
	matches *repository.MatchRepository
}

// NewMatchService creates a new match engine with dependencies from AppContext.
func NewMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		log:     appCtx.Logger.With("service", "MatchService"),
		swipes:  repository.NewSwipeRepository(appCtx.DB),
		matches: repository.NewMatchRepository(appCtx.DB),
	}
}

// Result is the outcome of a swipe.
type Result struct {
	Match  bool      `json:"match"`
	Record *db.Match `json:"matchRecord"`
}

// Summary describes one match from the point of view of one participant:
// the fields belong to the other party.
type Summary struct {
	ID        uint64    `json:"id"`
	MatchID   uint64    `json:"matchId"`
	MatchedAt time.Time `json:"matchedAt"`
	Name      string    `json:"name"`
	Age       *int      `json:"age"`
	Bio       string    `json:"bio"`
	PhotoURL  string    `json:"photoUrl"`
	UserID    uint64    `json:"userId"`
}

// EvaluateSwipe records from -> to and reports whether the pair is matched.
//
// Behavior:
//   - The swipe is upserted; a later decision overwrites an earlier one.
//   - Only a like can match: the reciprocal edge (to -> from) must be a like.
//   - The match row is upserted on the canonical pair, so a redundant like
//     from either side still reports match:true and never adds a row.
//
// Each step commits on its own. Two users liking each other at the same
// moment then always see at least one of the two likes when they look for
// the reciprocal edge.
//
// Example:
//
//	svc.EvaluateSwipe(ctx, 1, 2, db.DirectionLike)
func (s *Service) EvaluateSwipe(ctx context.Context, fromID, toID uint64, direction string) (*Result, error) {
	if err := s.swipes.Upsert(ctx, fromID, toID, direction); err != nil {
		s.log.Error("swipe upsert failed", "from", fromID, "to", toID, "err", err)
		return nil, svcErr.Map(err)
	}
	s.invalidateLikedMe(ctx, toID)

	res := &Result{}
	if direction != db.DirectionLike {
		return res, nil
	}

	reciprocal, err := s.swipes.HasLiked(ctx, toID, fromID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !reciprocal {
		return res, nil
	}

	record, created, err := s.matches.Upsert(ctx, fromID, toID)
	if err != nil {
		s.log.Error("match upsert failed", "from", fromID, "to", toID, "err", err)
		return nil, svcErr.Map(err)
	}
	res.Match = true
	res.Record = record

	if created {
		s.log.Info("match created", "match_id", record.ID, "user_a", record.UserAID, "user_b", record.UserBID)
		s.invalidateLikedMe(ctx, record.UserAID, record.UserBID)
		realtime.PublishBestEffort(ctx, s.appCtx.Events, s.log, realtime.Event{
			Type:    realtime.EventMatchCreated,
			MatchID: record.ID,
			UserIDs: []uint64{record.UserAID, record.UserBID},
		})
	}
	return res, nil
}

// ListMatches returns every match of userID, newest first.
func (s *Service) ListMatches(ctx context.Context, userID uint64) ([]Summary, error) {
	rows, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	out := make([]Summary, 0, len(rows))
	for _, m := range rows {
		other := m.UserA
		if m.UserAID == userID {
			other = m.UserB
		}
		sum := Summary{
			ID:        m.ID,
			MatchID:   m.ID,
			MatchedAt: m.CreatedAt,
			UserID:    pair.Other(m.UserAID, m.UserBID, userID),
		}
		if other != nil {
			sum.Name = other.Name
			sum.Age = other.Age
			sum.Bio = other.Bio
			sum.PhotoURL = other.PhotoURL
		}
		out = append(out, sum)
	}
	return out, nil
}

// Unmatch dissolves matchID on behalf of userID.
//
// Behavior:
//   - Missing match → NotFound; caller not a participant → Forbidden.
//   - Messages, chat session, both swipe edges and the match row are removed
//     and both unmatch tombstones written, all in one transaction.
//   - Retrying after success reports NotFound and changes nothing.
func (s *Service) Unmatch(ctx context.Context, matchID, userID uint64) error {
	m, err := s.matches.GetByID(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("Match not found")
	}
	if err != nil {
		return svcErr.Map(err)
	}
	if !pair.Contains(m.UserAID, m.UserBID, userID) {
		return svcErr.Forbidden("Forbidden")
	}

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.matches.WithTx(tx).Remove(ctx, m)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("Match not found")
	}
	if err != nil {
		s.log.Error("unmatch failed", "match_id", matchID, "err", err)
		return svcErr.Map(err)
	}

	s.log.Info("match removed", "match_id", m.ID, "by", userID)
	s.invalidateLikedMe(ctx, m.UserAID, m.UserBID)
	realtime.PublishBestEffort(ctx, s.appCtx.Events, s.log, realtime.Event{
		Type:    realtime.EventMatchRemoved,
		MatchID: m.ID,
		UserIDs: []uint64{m.UserAID, m.UserBID},
	})
	return nil
}

func (s *Service) invalidateLikedMe(ctx context.Context, userIDs ...uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateLikedMeCount(ctx, userIDs...); err != nil {
		s.log.Warn("liked-me count invalidation failed", "users", userIDs, "err", err)
	}
}
