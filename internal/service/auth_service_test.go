package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/models"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
)

type userRepoStub struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	taken        map[string]bool
	tokens       map[string]*models.RefreshToken
	revoked      []string
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[string]*models.User{},
		taken:        map[string]bool{},
		tokens:       map[string]*models.RefreshToken{},
	}
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range s.usersByID {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.taken[username], nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	s.usersByEmail[user.Email] = user
	s.usersByID[user.ID] = user
	s.taken[user.Username] = true
	return nil
}

func (s *userRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *userRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := s.tokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revoked = append(s.revoked, id)
	for _, rt := range s.tokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (s *userRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, rt := range s.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}

type availabilitySeederStub struct {
	created *models.Availability
}

func (s *availabilitySeederStub) Create(ctx context.Context, av *models.Availability) error {
	s.created = av
	return nil
}

func newAuthService(repo *userRepoStub, seeder *availabilitySeederStub) *AuthService {
	return NewAuthService(repo, seeder, validator.New(), nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "calendario",
	})
}

func TestRegisterCreatesUserAndSeedsAvailability(t *testing.T) {
	repo := newUserRepoStub()
	seeder := &availabilitySeederStub{}
	svc := newAuthService(repo, seeder)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "ada", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	require.NotNil(t, seeder.created)
	assert.Equal(t, 30, seeder.created.TimeGap)
	require.Len(t, seeder.created.Days, 7)
	open := map[models.Weekday]bool{}
	for _, day := range seeder.created.Days {
		open[day.Day] = day.IsAvailable
		assert.Equal(t, "09:00", day.StartTime)
		assert.Equal(t, "17:00", day.EndTime)
	}
	assert.False(t, open[models.Sunday])
	assert.True(t, open[models.Monday])
	assert.True(t, open[models.Friday])
	assert.False(t, open[models.Saturday])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub()
	repo.usersByEmail["ada@example.com"] = &models.User{ID: "user-1", Email: "ada@example.com"}
	svc := newAuthService(repo, &availabilitySeederStub{})

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterAvoidsTakenUsername(t *testing.T) {
	repo := newUserRepoStub()
	repo.taken["ada"] = true
	svc := newAuthService(repo, &availabilitySeederStub{})

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@other.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ada", resp.User.Username)
	assert.Contains(t, resp.User.Username, "ada")
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newUserRepoStub()
	repo.usersByEmail["ada@example.com"] = &models.User{ID: "user-1", Email: "ada@example.com", PasswordHash: string(hash)}
	svc := newAuthService(repo, &availabilitySeederStub{})

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginAndValidateToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newUserRepoStub()
	user := &models.User{ID: "user-1", Email: "ada@example.com", Username: "ada", PasswordHash: string(hash)}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user
	svc := newAuthService(repo, &availabilitySeederStub{})

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada", claims.Username)
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newUserRepoStub()
	user := &models.User{ID: "user-1", Email: "ada@example.com", Username: "ada"}
	repo.usersByID[user.ID] = user
	repo.tokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	svc := newAuthService(repo, &availabilitySeederStub{})

	resp, err := svc.RefreshToken(context.Background(), dto.RefreshRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revoked, "rt-1")
}

func TestRefreshTokenRejectsExpired(t *testing.T) {
	repo := newUserRepoStub()
	repo.tokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	svc := newAuthService(repo, &availabilitySeederStub{})

	_, err := svc.RefreshToken(context.Background(), dto.RefreshRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
