package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"marketplace/internal/metrics"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid credentials"

// Claims are the JWT claims issued at login.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// LoginResult is the token plus the public snapshot of the authenticated user.
type LoginResult struct {
	Token string `json:"token"`
	models.UserSnapshot
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	validate  *validator.Validate
	metrics   metrics.Recorder
}

// NewAuthService creates a new AuthService. rec may be nil.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, rec metrics.Recorder) *AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		validate:  newValidator(),
		metrics:   rec,
	}
}

// dummyHash is compared against when the email is unknown so both failure paths cost one bcrypt check.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("marketplace-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("failed to prepare dummy hash: %v", err))
	}
	return hash
})

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (*LoginResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hashedPassword),
		Favorites: []string{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "Email '%s' already registered", in.Email)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials and returns a signed token with the user snapshot.
// Missing fields are a validation error; unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := models.LoginInput{Email: normalizeEmail(email), Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		s.metrics.RecordLoginFailure()
		return nil, newError(ErrUnauthorized, invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.metrics.RecordLoginFailure()
		return nil, newError(ErrUnauthorized, invalidCredentials)
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*LoginResult, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		Token:        tokenString,
		UserSnapshot: user.Snapshot(),
	}, nil
}

// Authenticate verifies a bearer token and returns its claims. It never touches the store.
func (s *AuthService) Authenticate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, newError(ErrUnauthorized, "Not authorized, no token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		slog.Debug("token validation failed", slog.Any("error", err))
		return nil, newError(ErrUnauthorized, "Not authorized, token failed")
	}
	if claims.UserID == "" || claims.ExpiresAt == 0 {
		return nil, newError(ErrUnauthorized, "Not authorized, token failed")
	}
	return claims, nil
}

// Me returns the public snapshot of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserSnapshot, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	snapshot := user.Snapshot()
	return &snapshot, nil
}
