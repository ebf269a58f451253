package users

import (
	"context"
	"time"

	"github.com/aaa123456yg/music-platform/internal/auth"
	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, email, password, displayName string) (models.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (models.User, error)
	Profile(ctx context.Context, id int64, includePrivate bool) (models.Profile, error)
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	UserIDBySession(ctx context.Context, token string) (int64, error)
}

// Tokens signs and verifies user-realm tokens.
type Tokens interface {
	Issue(accountID int64) (token string, expiresAt time.Time, err error)
	Verify(token string) (*auth.Claims, error)
}

// Session is a logged-in user's credential bundle.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Service exposes account workflows.
type Service interface {
	Register(ctx context.Context, email, password, displayName string) (Session, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (int64, error)
	Profile(ctx context.Context, requesterID, userID int64) (models.Profile, error)
}

type service struct {
	store  Store
	tokens Tokens
}

// New wires a Service backed by the provided Store and token manager.
func New(store Store, tokens Tokens) Service {
	return &service{store: store, tokens: tokens}
}

// Register creates an account and signs the new user straight in.
func (s *service) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	user, err := s.store.CreateUser(ctx, email, password, displayName)
	if err != nil {
		return Session{}, err
	}
	return s.openSession(ctx, user)
}

func (s *service) Login(ctx context.Context, email, password string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	user, err := s.store.VerifyCredentials(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.openSession(ctx, user)
}

func (s *service) openSession(ctx context.Context, user models.User) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.CreateSession(ctx, token, user.ID, expiresAt); err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to a user ID. The signature proves the
// token belongs to this realm; the session row proves it was not revoked.
func (s *service) Authenticate(ctx context.Context, token string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := s.tokens.Verify(token); err != nil {
		return 0, err
	}
	return s.store.UserIDBySession(ctx, token)
}

// Profile returns a user's public profile. Owners also see their private
// playlists.
func (s *service) Profile(ctx context.Context, requesterID, userID int64) (models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return models.Profile{}, err
	}
	return s.store.Profile(ctx, userID, requesterID == userID)
}
