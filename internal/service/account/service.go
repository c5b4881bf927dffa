package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/db"
	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/repository"
)

var hashCost = bcrypt.DefaultCost

// Service handles signup and login and hands out bearer tokens.
type Service struct {
	appCtx *app.AppContext
	log    *slog.Logger
	users  *repository.UserRepository
}

func NewAccountService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		log:    appCtx.Logger.With("service", "AccountService"),
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

type User struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Signup creates an account and logs it in.
func (s *Service) Signup(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, svcErr.InvalidArgument("Email and password required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, svcErr.InvalidArgument("Email already in use")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, svcErr.Map(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, svcErr.Internal("failed to hash password", err)
	}

	u := &db.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		// lost a race against a concurrent signup with the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, svcErr.InvalidArgument("Email already in use")
		}
		s.log.Error("signup failed", "err", err)
		return nil, svcErr.Map(err)
	}

	s.log.Info("user signed up", "user_id", u.ID)
	return s.session(u)
}

// Login checks the password and issues a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, svcErr.InvalidArgument("Email and password required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, svcErr.Unauthenticated("Invalid credentials")
	}
	return s.session(u)
}

func (s *Service) session(u *db.User) (*Session, error) {
	token, err := s.appCtx.Tokens.Issue(u.ID)
	if err != nil {
		return nil, svcErr.Internal("failed to issue token", err)
	}
	return &Session{
		AccessToken: token,
		User:        User{ID: u.ID, Email: u.Email, Name: u.Name},
	}, nil
}
