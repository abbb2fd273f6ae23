package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"slotwise/core/config"
	"slotwise/core/errors"
	providerentity "slotwise/modules/provider/entity"
)

type stubCredentialStore struct {
	upserted  []*providerentity.CalendarCredential
	upsertErr error
}

func (s *stubCredentialStore) GetByCalendarID(ctx context.Context, calendarID string) (*providerentity.CalendarCredential, error) {
	return nil, nil
}

func (s *stubCredentialStore) Upsert(ctx context.Context, cred *providerentity.CalendarCredential) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, cred)
	return nil
}

func newTestAuthService(t *testing.T, handler http.HandlerFunc, store *stubCredentialStore) *authService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	if err := config.Load(); err != nil {
		t.Fatalf("load config: %v", err)
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &authService{
		oauth:       &oauth2.Config{ClientID: "client", ClientSecret: "secret"},
		creds:       store,
		client:      server.Client(),
		userInfoURL: server.URL,
	}
}

func userInfoHandler(email string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"` + email + `"}`))
	}
}

func TestConnectCalendarWithTokenPair(t *testing.T) {
	store := &stubCredentialStore{}
	svc := newTestAuthService(t, userInfoHandler("pat@example.com"), store)

	expiry := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	result, appErr := svc.ConnectCalendar(context.Background(), ConnectCalendarInput{
		AccessToken:  "tok-access",
		RefreshToken: "tok-refresh",
		ExpiresAt:    expiry,
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if result.CalendarID != "pat@example.com" || result.Email != "pat@example.com" {
		t.Errorf("unexpected result identity: %+v", result)
	}
	if result.Token == "" {
		t.Error("expected a bearer token")
	}

	if len(store.upserted) != 1 {
		t.Fatalf("expected 1 stored credential, got %d", len(store.upserted))
	}
	cred := store.upserted[0]
	if cred.CalendarID != "pat@example.com" {
		t.Errorf("credential keyed by %q, want account email", cred.CalendarID)
	}
	if cred.AccessToken != "tok-access" || cred.RefreshToken != "tok-refresh" {
		t.Errorf("credential tokens not carried over: %+v", cred)
	}
	if !cred.TokenExpiresAt.Equal(expiry) {
		t.Errorf("credential expiry = %v, want %v", cred.TokenExpiresAt, expiry)
	}
}

func TestConnectCalendarSameAccountSameOwner(t *testing.T) {
	store := &stubCredentialStore{}
	svc := newTestAuthService(t, userInfoHandler("pat@example.com"), store)

	input := ConnectCalendarInput{AccessToken: "tok-access", RefreshToken: "tok-refresh"}
	first, appErr := svc.ConnectCalendar(context.Background(), input)
	if appErr != nil {
		t.Fatalf("first connect: %v", appErr)
	}
	second, appErr := svc.ConnectCalendar(context.Background(), input)
	if appErr != nil {
		t.Fatalf("second connect: %v", appErr)
	}
	if first.CalendarID != second.CalendarID {
		t.Errorf("calendar id changed across reconnects: %q vs %q", first.CalendarID, second.CalendarID)
	}

	want := uuid.NewSHA1(ownerNamespace, []byte("pat@example.com"))
	if want == uuid.Nil {
		t.Fatal("derived owner id is nil")
	}
}

func TestConnectCalendarRequiresTokenMaterial(t *testing.T) {
	tests := []struct {
		name  string
		input ConnectCalendarInput
	}{
		{"empty", ConnectCalendarInput{}},
		{"access token only", ConnectCalendarInput{AccessToken: "tok-access"}},
		{"refresh token only", ConnectCalendarInput{RefreshToken: "tok-refresh"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubCredentialStore{}
			svc := newTestAuthService(t, userInfoHandler("pat@example.com"), store)

			_, appErr := svc.ConnectCalendar(context.Background(), tc.input)
			if appErr == nil || appErr.Code != errors.ErrInvalidInput {
				t.Fatalf("expected ErrInvalidInput, got %v", appErr)
			}
			if len(store.upserted) != 0 {
				t.Error("credential stored despite invalid input")
			}
		})
	}
}

func TestConnectCalendarRejectedAccessToken(t *testing.T) {
	store := &stubCredentialStore{}
	svc := newTestAuthService(t, userInfoHandler("pat@example.com"), store)

	_, appErr := svc.ConnectCalendar(context.Background(), ConnectCalendarInput{
		AccessToken:  "tok-wrong",
		RefreshToken: "tok-refresh",
	})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", appErr)
	}
	if len(store.upserted) != 0 {
		t.Error("credential stored despite rejected access token")
	}
}

func TestConnectCalendarPersistFailure(t *testing.T) {
	store := &stubCredentialStore{upsertErr: context.DeadlineExceeded}
	svc := newTestAuthService(t, userInfoHandler("pat@example.com"), store)

	_, appErr := svc.ConnectCalendar(context.Background(), ConnectCalendarInput{
		AccessToken:  "tok-access",
		RefreshToken: "tok-refresh",
	})
	if appErr == nil || appErr.Code != errors.ErrPersistenceFailed {
		t.Fatalf("expected ErrPersistenceFailed, got %v", appErr)
	}
}
