package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/models"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
)

type integrationRepository interface {
	Upsert(ctx context.Context, integration *models.Integration) error
	Exists(ctx context.Context, userID string, appType models.IntegrationAppType) (bool, error)
}

type oauthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// IntegrationService connects owner accounts to calendar providers.
type IntegrationService struct {
	repo     integrationRepository
	provider oauthProvider
	logger   *zap.Logger
}

// NewIntegrationService constructs the service.
func NewIntegrationService(repo integrationRepository, provider oauthProvider, logger *zap.Logger) *IntegrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrationService{repo: repo, provider: provider, logger: logger}
}

// Status reports whether the user has connected the provider.
func (s *IntegrationService) Status(ctx context.Context, userID string, appType models.IntegrationAppType) (*dto.IntegrationStatus, error) {
	if !appType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported app type %q", appType))
	}
	connected, err := s.repo.Exists(ctx, userID, appType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check integration")
	}
	return &dto.IntegrationStatus{AppType: string(appType), IsConnected: connected}, nil
}

// ConnectURL returns the provider consent URL. The user's identity travels in
// the OAuth state parameter and comes back on the callback.
func (s *IntegrationService) ConnectURL(ctx context.Context, userID string, appType models.IntegrationAppType) (*dto.ConnectURLResponse, error) {
	if !appType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported app type %q", appType))
	}
	state := base64.RawURLEncoding.EncodeToString([]byte(userID))
	return &dto.ConnectURLResponse{URL: s.provider.AuthCodeURL(state)}, nil
}

// HandleCallback completes the OAuth flow: the code is exchanged for tokens
// which are stored against the user carried in state.
func (s *IntegrationService) HandleCallback(ctx context.Context, code, state string) error {
	if code == "" || state == "" {
		return appErrors.Clone(appErrors.ErrBadRequest, "missing code or state")
	}

	rawUserID, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil || len(rawUserID) == 0 {
		return appErrors.Clone(appErrors.ErrBadRequest, "invalid state parameter")
	}
	userID := string(rawUserID)

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "failed to exchange authorization code")
	}

	integration := &models.Integration{
		UserID:      userID,
		AppType:     models.IntegrationGoogleMeet,
		AccessToken: token.AccessToken,
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		integration.RefreshToken = &refresh
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		integration.ExpiryDate = &expiry
	}

	if err := s.repo.Upsert(ctx, integration); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store integration")
	}

	s.logger.Info("calendar integration connected", zap.String("user_id", userID), zap.String("app_type", string(models.IntegrationGoogleMeet)))
	return nil
}
