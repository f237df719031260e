package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"medmcq/internal/domain"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = domain.NewError(domain.ErrNotAuthorized, "Username or password is invalid")

const minPasswordLength = 6

// Claims is the JWT payload stored in the user cookie.
type Claims struct {
	UserID int64       `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now, log: log}
}

// SignupInput is the registration form.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a regular user. Usernames are unique.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", domain.ErrModelValidation)
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrModelValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, domain.User{
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("user signed up", zap.Int64("user_id", u.ID))
	return u, nil
}

// Login checks the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}
	token, err := s.Issue(u)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, u, nil
}

// Issue signs a token for u.
func (s *AuthService) Issue(u domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies a token and returns the viewer it identifies.
func (s *AuthService) ParseToken(raw string) (*domain.Viewer, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAuthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrNotAuthorized)
	}
	return &domain.Viewer{UserID: claims.UserID, Role: claims.Role}, nil
}

// Current returns the user behind viewer.
func (s *AuthService) Current(ctx context.Context, viewer *domain.Viewer) (domain.User, error) {
	if !viewer.Authenticated() {
		return domain.User{}, domain.ErrNotAuthorized
	}
	return s.users.UserByID(ctx, viewer.UserID)
}
