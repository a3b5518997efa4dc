package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// TestMain silences structured logging during tests.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "test@example.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = "user-123"
	}).Return(nil).Once()

	result, err := authService.Register(ctx, models.RegisterInput{
		Name:     "Test User",
		Email:    " Test@Example.com ",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-123", result.ID)
	assert.Equal(t, "test@example.com", result.Email)
	assert.Equal(t, []string{}, result.Favorites)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("user with email test@example.com %w", repositories.ErrDuplicate)).Once()

	_, err := authService.Register(ctx, models.RegisterInput{Name: "Test", Email: "test@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "already registered")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)

	_, err := authService.Register(context.Background(), models.RegisterInput{Name: "A", Email: "not-an-email", Password: "123"})
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:        "user-123",
		Name:      "Alice Johnson",
		Email:     "alice@test.com",
		Password:  string(hashedPassword),
		Favorites: []string{"p1", "p3"},
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, "alice@test.com").Return(user, nil).Once()
	result, err := authService.Login(ctx, "Alice@test.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-123", result.ID)
	assert.Equal(t, "Alice Johnson", result.Name)
	assert.Equal(t, []string{"p1", "p3"}, result.Favorites)

	// Validate the token structure
	parsed := &services.Claims{}
	token, err := jwt.ParseWithClaims(result.Token, parsed, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "user-123", parsed.UserID)
	assert.Greater(t, parsed.ExpiresAt, time.Now().Unix())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: "user-123", Email: "alice@test.com", Password: string(hashedPassword)}

	// Wrong password
	mockRepo.On("GetByEmail", ctx, "alice@test.com").Return(user, nil).Once()
	_, wrongPassword := authService.Login(ctx, "alice@test.com", "wrongpassword")

	// Unknown email
	mockRepo.On("GetByEmail", ctx, "nobody@test.com").
		Return(nil, fmt.Errorf("user with email nobody@test.com %w", repositories.ErrNotFound)).Once()
	_, unknownEmail := authService.Login(ctx, "nobody@test.com", "password123")

	assert.ErrorIs(t, wrongPassword, services.ErrUnauthorized)
	assert.ErrorIs(t, unknownEmail, services.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "Invalid credentials", wrongPassword.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_RequiresBothFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)
	ctx := context.Background()

	_, err := authService.Login(ctx, "alice@test.com", "")
	require.ErrorIs(t, err, services.ErrValidation)
	var svcErr *services.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Fields, "password")

	_, err = authService.Login(ctx, "   ", "password123")
	require.ErrorIs(t, err, services.ErrValidation)
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Fields, "email")

	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)

	sign := func(secret string, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := sign(testJWTSecret, services.Claims{
		UserID:         "user-123",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})

	// Test valid token
	claims, err := authService.Authenticate(valid)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)

	cases := map[string]string{
		"missing":   "",
		"malformed": "invalid.token.string",
		"expired": sign(testJWTSecret, services.Claims{
			UserID:         "user-123",
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
		}),
		"foreign key": sign("another_secret", services.Claims{
			UserID:         "user-123",
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		}),
		"no expiry": sign(testJWTSecret, services.Claims{UserID: "user-123"}),
		"no subject": sign(testJWTSecret, services.Claims{
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := authService.Authenticate(token)
			assert.ErrorIs(t, err, services.ErrUnauthorized)
		})
	}

	// The gate never consults the store.
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAuthService_Authenticate_RejectsNoneAlgorithm(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, services.Claims{
		UserID:         "user-123",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = authService.Authenticate(unsigned)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_Me(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "user-123").Return(&models.User{ID: "user-123", Name: "Alice", Password: "hash"}, nil).Once()
	snapshot, err := authService.Me(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, "Alice", snapshot.Name)
	assert.Equal(t, []string{}, snapshot.Favorites)

	mockRepo.On("GetByID", ctx, "gone").Return(nil, fmt.Errorf("user with ID gone %w", repositories.ErrNotFound)).Once()
	_, err = authService.Me(ctx, "gone")
	assert.ErrorIs(t, err, services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
