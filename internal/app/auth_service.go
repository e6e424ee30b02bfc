package app

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"docqa/internal/model"
)

// UserStore and TokenStore are the slices of the repositories the
// credential store needs.
type UserStore interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

type TokenStore interface {
	Create(token *model.AuthToken) error
	GetValid(token string, now time.Time) (*model.AuthToken, error)
	Delete(token string) error
}

// AuthService issues and validates opaque session tokens. Tokens are
// random values stored server-side; validity is existence plus expiry.
type AuthService struct {
	users    UserStore
	tokens   TokenStore
	tokenTTL time.Duration
	now      func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(users UserStore, tokens TokenStore, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates the user and immediately issues a token (auto-login).
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameTaken
	}

	existingByEmail, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login issues a fresh token without invalidating prior ones. Unknown
// username and wrong password return the same error so responses do not
// reveal which usernames exist.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Validate is a read-only check: the token must exist and be unexpired.
func (s *AuthService) Validate(token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}

	record, err := s.tokens.GetValid(token, s.now())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(record.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Logout deletes the token. Logging out an unknown token succeeds.
func (s *AuthService) Logout(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.tokens.Delete(token)
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	record := &model.AuthToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: s.now(),
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.tokens.Create(record); err != nil {
		return "", err
	}
	return token, nil
}

// generateToken returns 256 bits from the system CSPRNG, URL-safe base64
// encoded. The value carries no user data and no ordering.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
