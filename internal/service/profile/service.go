package profile

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/db"
	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/repository"
)

type Service struct {
	appCtx *app.AppContext
	log    *slog.Logger
	users  *repository.UserRepository
}

func NewProfileService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		log:    appCtx.Logger.With("service", "ProfileService"),
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// Profile is the caller's own profile, including private fields.
type Profile struct {
	ID          uint64   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Age         *int     `json:"age"`
	Bio         string   `json:"bio"`
	PhotoURL    string   `json:"photoUrl"`
	Hobbies     []string `json:"hobbies"`
	Personality []string `json:"personality"`
	Goal        string   `json:"goal"`
	IdealDate   string   `json:"idealDate"`
}

// Update lists the editable fields. Nil fields are left untouched.
type Update struct {
	Name        *string
	Age         *int
	Bio         *string
	PhotoURL    *string
	Hobbies     []string
	Personality []string
	Goal        *string
	IdealDate   *string
}

func (u Update) columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Age != nil {
		cols["age"] = *u.Age
	}
	if u.Bio != nil {
		cols["bio"] = *u.Bio
	}
	if u.PhotoURL != nil {
		cols["photo_url"] = *u.PhotoURL
	}
	if u.Hobbies != nil {
		cols["hobbies"] = datatypes.NewJSONSlice(u.Hobbies)
	}
	if u.Personality != nil {
		cols["personality"] = datatypes.NewJSONSlice(u.Personality)
	}
	if u.Goal != nil {
		cols["goal"] = *u.Goal
	}
	if u.IdealDate != nil {
		cols["ideal_date"] = *u.IdealDate
	}
	return cols
}

func (s *Service) GetProfile(ctx context.Context, userID uint64) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("User not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return profileOf(u), nil
}

// UpdateProfile applies the set fields of upd and returns the stored result.
func (s *Service) UpdateProfile(ctx context.Context, userID uint64, upd Update) (*Profile, error) {
	u, err := s.users.UpdateProfile(ctx, userID, upd.columns())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("User not found")
	}
	if err != nil {
		s.log.Error("profile update failed", "user_id", userID, "err", err)
		return nil, svcErr.Internal("Failed to update profile", err)
	}
	return profileOf(u), nil
}

func profileOf(u *db.User) *Profile {
	p := &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Age:         u.Age,
		Bio:         u.Bio,
		PhotoURL:    u.PhotoURL,
		Hobbies:     []string(u.Hobbies),
		Personality: []string(u.Personality),
		Goal:        u.Goal,
		IdealDate:   u.IdealDate,
	}
	if p.Hobbies == nil {
		p.Hobbies = []string{}
	}
	if p.Personality == nil {
		p.Personality = []string{}
	}
	return p
}
