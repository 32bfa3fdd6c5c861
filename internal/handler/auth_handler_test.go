package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calendario/calendario-api/internal/models"
	"github.com/calendario/calendario-api/internal/service"
)

type noUsersStub struct{}

func (noUsersStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noUsersStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noUsersStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noUsersStub) UsernameExists(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (noUsersStub) Create(ctx context.Context, user *models.User) error { return nil }

func (noUsersStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return nil
}

func (noUsersStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return nil, sql.ErrNoRows
}

func (noUsersStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func (noUsersStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error { return nil }

type noSeederStub struct{}

func (noSeederStub) Create(ctx context.Context, av *models.Availability) error { return nil }

func newAuthHandlerForTest() *AuthHandler {
	svc := service.NewAuthService(noUsersStub{}, noSeederStub{}, nil, nil, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "calendario",
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerForTest()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`invalid`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginUnknownUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerForTest()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"email":"nobody@example.com","password":"correct-horse"}`)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLogoutRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerForTest()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader([]byte(`{"refreshToken":"x"}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Logout(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
