package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"slotwise/core/config"
	"slotwise/core/errors"
	"slotwise/core/logger"
	"slotwise/core/utils"
	providerentity "slotwise/modules/provider/entity"
	providerrepo "slotwise/modules/provider/repository"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Owner ids are derived from the Google account email so reconnecting the
// same account always yields the same owner.
var ownerNamespace = uuid.MustParse("8f3c6f1a-5b21-4e5a-9c7d-2d8d1d1d7a40")

// ConnectCalendarInput carries the outcome of a client-side Google sign-in.
// The client runs the consent step itself and hands the server either the
// one-time authorization code or the tokens it already holds.
type ConnectCalendarInput struct {
	AuthCode     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ConnectResult is what a completed calendar connection hands back: a bearer
// token for the private API and the calendar id to use in availability and
// booking calls.
type ConnectResult struct {
	Token      string `json:"token"`
	CalendarID string `json:"calendar_id"`
	Email      string `json:"email"`
}

type AuthService interface {
	// ConnectCalendar stores Google Calendar credentials for the account
	// and issues an API token for its owner.
	ConnectCalendar(ctx context.Context, input ConnectCalendarInput) (*ConnectResult, *errors.AppError)
}

type authService struct {
	oauth       *oauth2.Config
	creds       providerrepo.CredentialRepository
	client      *http.Client
	userInfoURL string
}

func NewAuthService(cfg config.GoogleAPIConfig, creds providerrepo.CredentialRepository) AuthService {
	return &authService{
		creds:       creds,
		client:      http.DefaultClient,
		userInfoURL: userInfoURL,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/calendar.readonly",
				"https://www.googleapis.com/auth/calendar.events",
			},
		},
	}
}

func (s *authService) ConnectCalendar(ctx context.Context, input ConnectCalendarInput) (*ConnectResult, *errors.AppError) {
	token, appErr := s.resolveToken(ctx, input)
	if appErr != nil {
		return nil, appErr
	}
	if token.RefreshToken == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "a refresh token is required; request offline access during sign-in", nil)
	}

	email, err := s.fetchEmail(ctx, token.AccessToken)
	if err != nil {
		logger.Error("AuthService:ConnectCalendar:UserInfo:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "access token rejected by provider", err)
	}

	// The account email doubles as the Google Calendar id of the primary
	// calendar, so credentials are keyed by it.
	cred := &providerentity.CalendarCredential{
		CalendarID:     email,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: token.Expiry,
	}
	if err := s.creds.Upsert(ctx, cred); err != nil {
		logger.Error("AuthService:ConnectCalendar:SaveCredential:Error", "calendar_id", email, "error", err)
		return nil, errors.NewAppError(errors.ErrPersistenceFailed, "failed to store calendar credential", err)
	}

	ownerID := uuid.NewSHA1(ownerNamespace, []byte(email))
	apiToken, err := utils.GenerateToken(ownerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to issue token", err)
	}

	logger.Info("AuthService:ConnectCalendar:Connected", "calendar_id", email, "owner_id", ownerID)
	return &ConnectResult{Token: apiToken, CalendarID: email, Email: email}, nil
}

// resolveToken turns the client-supplied material into an oauth2 token,
// exchanging the authorization code when one is given.
func (s *authService) resolveToken(ctx context.Context, input ConnectCalendarInput) (*oauth2.Token, *errors.AppError) {
	if input.AuthCode != "" {
		token, err := s.oauth.Exchange(ctx, input.AuthCode)
		if err != nil {
			logger.Error("AuthService:ResolveToken:Exchange:Error", "error", err)
			return nil, errors.NewAppError(errors.ErrUnauthorized, "authorization code exchange failed", err)
		}
		return token, nil
	}

	if input.AccessToken == "" || input.RefreshToken == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "either auth_code or access_token with refresh_token is required", nil)
	}
	expiry := input.ExpiresAt
	if expiry.IsZero() {
		expiry = time.Now()
	}
	return &oauth2.Token{
		AccessToken:  input.AccessToken,
		RefreshToken: input.RefreshToken,
		Expiry:       expiry,
	}, nil
}

func (s *authService) fetchEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", fmt.Errorf("userinfo response missing email")
	}
	return info.Email, nil
}
