package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotwise/core/errors"
	"slotwise/modules/provider/entity"
)

type stubCredentials struct {
	cred    *entity.CalendarCredential
	upserts int
}

func (s *stubCredentials) GetByCalendarID(ctx context.Context, calendarID string) (*entity.CalendarCredential, error) {
	return s.cred, nil
}

func (s *stubCredentials) Upsert(ctx context.Context, cred *entity.CalendarCredential) error {
	s.upserts++
	return nil
}

func validCredentials() *stubCredentials {
	return &stubCredentials{cred: &entity.CalendarCredential{
		CalendarID:     "primary",
		AccessToken:    "test-token",
		RefreshToken:   "test-refresh",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*googleProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &googleProvider{
		creds:   validCredentials(),
		client:  server.Client(),
		baseURL: server.URL,
	}, server
}

func TestListEventsParsesTimedAndAllDayEvents(t *testing.T) {
	t.Parallel()

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Query().Get("singleEvents") != "true" {
			t.Error("singleEvents not requested")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"id": "e1", "summary": "standup",
			 "start": {"dateTime": "2026-03-03T09:00:00Z"},
			 "end": {"dateTime": "2026-03-03T09:30:00Z"},
			 "attendees": [{"email": "ana@example.com", "displayName": "Ana"}]},
			{"id": "e2", "summary": "offsite",
			 "start": {"date": "2026-03-04"},
			 "end": {"date": "2026-03-05"}},
			{"id": "broken", "summary": "no times"}
		]}`))
	})

	events, err := provider.ListEvents(context.Background(), "primary",
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (unparseable one skipped)", len(events))
	}
	if events[0].ID != "e1" || len(events[0].Attendees) != 1 {
		t.Errorf("timed event parsed wrong: %+v", events[0])
	}
	wantAllDayStart := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !events[1].Start.Equal(wantAllDayStart) {
		t.Errorf("all-day start = %v, want %v", events[1].Start, wantAllDayStart)
	}
}

func TestListEventsStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   errors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrAuthExpired},
		{"forbidden", http.StatusForbidden, errors.ErrQuotaExceeded},
		{"rate limited", http.StatusTooManyRequests, errors.ErrQuotaExceeded},
		{"server error", http.StatusInternalServerError, errors.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := provider.ListEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
			ae, ok := err.(*errors.AppError)
			if !ok || ae.Code != tt.want {
				t.Errorf("got %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestCreateEventRequestsConferenceAndNotifications(t *testing.T) {
	t.Parallel()

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("conferenceDataVersion") != "1" {
			t.Error("conferenceDataVersion=1 missing")
		}
		if q.Get("sendUpdates") != "all" {
			t.Error("sendUpdates=all missing")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "created-1", "summary": "Design review",
			"htmlLink": "https://calendar.example/created-1",
			"start": {"dateTime": "2026-03-03T10:00:00Z"},
			"end": {"dateTime": "2026-03-03T11:00:00Z"}}`))
	})

	ev, err := provider.CreateEvent(context.Background(), "primary", entity.CreateEventInput{
		Start: time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 3, 11, 0, 0, 0, time.UTC),
		Title: "Design review",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "created-1" || ev.HTMLLink == "" {
		t.Errorf("created event parsed wrong: %+v", ev)
	}
}

func TestCreateEventUnparseableSuccessIsAmbiguous(t *testing.T) {
	t.Parallel()

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	})

	_, err := provider.CreateEvent(context.Background(), "primary", entity.CreateEventInput{
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
		Title: "x",
	})
	ae, ok := err.(*errors.AppError)
	if !ok || !ae.Ambiguous {
		t.Errorf("got %v, want ambiguous error", err)
	}
}

func TestDeleteEventGoneStatusMapsToNotFound(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		err := provider.DeleteEvent(context.Background(), "primary", "evt-1")
		ae, ok := err.(*errors.AppError)
		if !ok || ae.Code != errors.ErrNotFound {
			t.Errorf("status %d: got %v, want %s", status, err, errors.ErrNotFound)
		}
	}
}

func TestDeleteEventSuccess(t *testing.T) {
	t.Parallel()

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := provider.DeleteEvent(context.Background(), "primary", "evt-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFreeBusyParsesBusyBlocks(t *testing.T) {
	t.Parallel()

	provider, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"calendars": {"primary": {"busy": [
			{"start": "2026-03-03T09:00:00Z", "end": "2026-03-03T10:00:00Z"},
			{"start": "2026-03-03T14:00:00Z", "end": "2026-03-03T15:00:00Z"}
		]}}}`))
	})

	periods, err := provider.FreeBusy(context.Background(), "primary",
		time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("got %d busy periods, want 2", len(periods))
	}
	if !periods[0].Start.Equal(time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("first busy start = %v", periods[0].Start)
	}
}

func TestExpiredCredentialWithoutConnectionFails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)

	provider := &googleProvider{
		creds:   &stubCredentials{cred: nil},
		client:  server.Client(),
		baseURL: server.URL,
	}

	_, err := provider.ListEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	ae, ok := err.(*errors.AppError)
	if !ok || ae.Code != errors.ErrAuthExpired {
		t.Errorf("got %v, want %s", err, errors.ErrAuthExpired)
	}
}
