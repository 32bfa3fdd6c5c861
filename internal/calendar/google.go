package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/calendario/calendario-api/internal/models"
	"github.com/calendario/calendario-api/pkg/config"
)

const (
	googleEventsAPI = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

	calendarScope = "https://www.googleapis.com/auth/calendar"
	userinfoScope = "https://www.googleapis.com/auth/userinfo.email"
)

// TokenPersistFunc is invoked whenever the underlying OAuth token is
// refreshed, so the new credentials can be stored.
type TokenPersistFunc func(accessToken string, expiry time.Time) error

// GoogleProvider handles the Google OAuth flow and builds per-user clients.
type GoogleProvider struct {
	oauth  *oauth2.Config
	logger *zap.Logger
}

// NewGoogleProvider builds the provider from application configuration.
func NewGoogleProvider(cfg config.GoogleConfig, logger *zap.Logger) *GoogleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{calendarScope, userinfoScope},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

// AuthCodeURL returns the consent URL for connecting a Google account.
// Offline access is required so a refresh token is issued.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token pair.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange google auth code: %w", err)
	}
	return token, nil
}

// ClientFor returns a calendar client acting as the integration's user.
// Expired access tokens are refreshed transparently and handed to persist.
func (p *GoogleProvider) ClientFor(integration *models.Integration, persist TokenPersistFunc) Client {
	token := &oauth2.Token{AccessToken: integration.AccessToken}
	if integration.RefreshToken != nil {
		token.RefreshToken = *integration.RefreshToken
	}
	if integration.ExpiryDate != nil {
		token.Expiry = *integration.ExpiryDate
	}
	return &googleClient{
		source:  p.oauth.TokenSource(context.Background(), token),
		last:    token.AccessToken,
		persist: persist,
		logger:  p.logger,
	}
}

type googleClient struct {
	source  oauth2.TokenSource
	last    string
	persist TokenPersistFunc
	logger  *zap.Logger
}

func (c *googleClient) accessToken(ctx context.Context) (string, error) {
	token, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("google token source: %w", err)
	}
	if token.AccessToken != c.last && c.persist != nil {
		if err := c.persist(token.AccessToken, token.Expiry); err != nil {
			c.logger.Warn("persist refreshed google token failed", zap.Error(err))
		}
		c.last = token.AccessToken
	}
	return token.AccessToken, nil
}

// CreateEvent creates a calendar entry with an attached Meet conference.
func (c *googleClient) CreateEvent(ctx context.Context, details EventDetails) (*CreatedEvent, error) {
	accessToken, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"summary":     details.Title,
		"description": details.Description,
		"start":       map[string]string{"dateTime": details.StartTime.Format(time.RFC3339)},
		"end":         map[string]string{"dateTime": details.EndTime.Format(time.RFC3339)},
		"attendees": []map[string]string{
			{"email": details.HostEmail},
			{"email": details.AttendeeEmail},
		},
		"conferenceData": map[string]interface{}{
			"createRequest": map[string]interface{}{
				"requestId":             uuid.NewString(),
				"conferenceSolutionKey": map[string]string{"type": "hangoutsMeet"},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal google event: %w", err)
	}

	endpoint := googleEventsAPI + "?conferenceDataVersion=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build google event request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("create google event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google events api status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		ID          string `json:"id"`
		HangoutLink string `json:"hangoutLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode google event response: %w", err)
	}

	c.logger.Debug("google calendar event created", zap.String("event_id", result.ID))
	return &CreatedEvent{EventID: result.ID, JoinURL: result.HangoutLink}, nil
}

// DeleteEvent removes a previously created entry. A 404 or 410 from the
// API means the entry is already gone and is treated as success.
func (c *googleClient) DeleteEvent(ctx context.Context, eventID string) error {
	accessToken, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	endpoint := googleEventsAPI + "/" + url.PathEscape(eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build google delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("delete google event: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound, http.StatusGone:
		return nil
	default:
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("google events api status %d: %s", resp.StatusCode, string(raw))
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
