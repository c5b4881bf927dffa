package swipe

import (
	"context"
	"log/slog"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/db"
	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/repository"
	"github.com/oggyb/spark-match/internal/service/match"
	"github.com/oggyb/spark-match/internal/utils/pagination"
)

const (
	DefaultLikedMeLimit = 50
	MaxLikedMeLimit     = 200
)

// Service implements swiping, candidate discovery and the liked-me views.
// Match detection itself is delegated to the match engine.
type Service struct {
	appCtx *app.AppContext
	log    *slog.Logger
	users  *repository.UserRepository
	swipes *repository.SwipeRepository
	engine *match.Service
}

// NewSwipeService creates a new swipe service with dependencies from AppContext.
func NewSwipeService(appCtx *app.AppContext, engine *match.Service) *Service {
	return &Service{
		appCtx: appCtx,
		log:    appCtx.Logger.With("service", "SwipeService"),
		users:  repository.NewUserRepository(appCtx.DB),
		swipes: repository.NewSwipeRepository(appCtx.DB),
		engine: engine,
	}
}

// Profile is the public card shown for candidates and likers.
type Profile struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Age      *int   `json:"age"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photoUrl"`
}

func profileOf(u db.User) Profile {
	return Profile{ID: u.ID, Name: u.Name, Age: u.Age, Bio: u.Bio, PhotoURL: u.PhotoURL}
}

// AgeFilter bounds candidate age inclusively. Nil bounds are open.
type AgeFilter struct {
	Min *int
	Max *int
}

// Next is the candidate selector's answer: either a Candidate, or done.
// FilteredOut tells a done caller that relaxing the age filter would
// surface someone.
type Next struct {
	Candidate   *Profile
	FilteredOut bool
}

// LikedMePage is one page of likers, newest like first.
type LikedMePage struct {
	Users      []Profile
	NextCursor string
}

// RecordSwipe validates and records from -> to, then lets the match engine
// decide whether the pair is now matched.
//
// Behavior:
//   - direction must be like or skip; swiping on yourself is invalid.
//   - the target must exist.
func (s *Service) RecordSwipe(ctx context.Context, fromID, toID uint64, direction string) (*match.Result, error) {
	s.log.Debug("RecordSwipe called", "from", fromID, "to", toID, "direction", direction)

	if direction != db.DirectionLike && direction != db.DirectionSkip {
		return nil, svcErr.InvalidArgument("Invalid input")
	}
	if fromID == toID {
		return nil, svcErr.InvalidArgument("Cannot swipe on yourself")
	}

	exists, err := s.users.Exists(ctx, toID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !exists {
		return nil, svcErr.NotFound("User not found")
	}

	return s.engine.EvaluateSwipe(ctx, fromID, toID, direction)
}

// NextCandidate returns the next profile userID has not swiped on and is
// not separated from by an unmatch.
//
// Candidates come in ascending id order. With an active age filter, users
// without an age never qualify.
func (s *Service) NextCandidate(ctx context.Context, userID uint64, filter AgeFilter) (*Next, error) {
	ages := repository.AgeRange{Min: filter.Min, Max: filter.Max}

	u, err := s.users.NextCandidate(ctx, userID, ages)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if u != nil {
		p := profileOf(*u)
		return &Next{Candidate: &p}, nil
	}
	if !ages.Active() {
		return &Next{}, nil
	}

	unfiltered, err := s.users.NextCandidate(ctx, userID, repository.AgeRange{})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &Next{FilteredOut: unfiltered != nil}, nil
}

// LikedMe lists users whose swipe on userID is a like, excluding users
// already matched with them.
//
// Behavior:
//   - Ordered by the time of the like, newest first.
//   - Without cursor and limit, every liker is returned in one page.
//   - Paging starts once either is given: limit <= 0 then falls back to
//     DefaultLikedMeLimit, and limit is capped at MaxLikedMeLimit.
//   - cursor is the opaque NextCursor of the previous page.
func (s *Service) LikedMe(ctx context.Context, userID uint64, cursor string, limit int) (*LikedMePage, error) {
	s.log.Debug("LikedMe called", "user", userID, "cursor", cursor, "limit", limit)

	if _, err := pagination.Decode(cursor); err != nil {
		return nil, svcErr.InvalidArgument("Invalid cursor")
	}
	switch {
	case limit <= 0 && cursor == "":
		limit = 0
	case limit <= 0:
		limit = DefaultLikedMeLimit
	case limit > MaxLikedMeLimit:
		limit = MaxLikedMeLimit
	}

	likes, next, err := s.swipes.GetLikers(ctx, userID, cursor, limit)
	if err != nil {
		s.log.Error("GetLikers failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	ids := make([]uint64, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.FromID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	page := &LikedMePage{Users: make([]Profile, 0, len(ids)), NextCursor: next}
	for _, id := range ids {
		if u, ok := users[id]; ok {
			page.Users = append(page.Users, profileOf(u))
		}
	}
	return page, nil
}

// CountLikedMe returns how many users like userID without being matched.
// Cache-first strategy:
//  1. Attempts to read from Redis (likedme:count:userID), refreshing the TTL.
//  2. On miss or cache failure, counts in the DB.
//  3. Stores the DB count in Redis for an hour.
func (s *Service) CountLikedMe(ctx context.Context, userID uint64) (int64, error) {
	rc := s.appCtx.RedisCache
	if rc != nil {
		n, ok, err := rc.GetLikedMeCount(ctx, userID)
		if err != nil {
			s.log.Warn("liked-me cache read failed", "user", userID, "err", err)
		}
		if ok {
			return n, nil
		}
	}

	count, err := s.swipes.CountLikers(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if rc != nil {
		if err := rc.SetLikedMeCount(ctx, userID, count); err != nil {
			s.log.Warn("liked-me cache write failed", "user", userID, "err", err)
		}
	}
	return count, nil
}
