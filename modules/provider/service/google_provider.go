package service

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"slotwise/core/config"
	"slotwise/core/constants"
	"slotwise/core/errors"
	"slotwise/core/logger"
	"slotwise/core/utils"
	"slotwise/modules/provider/entity"
	"slotwise/modules/provider/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"

// googleProvider talks to the Google Calendar REST API with stored per-
// calendar OAuth credentials.
type googleProvider struct {
	creds   repository.CredentialRepository
	oauth   *oauth2.Config
	client  *http.Client
	baseURL string
}

func NewGoogleProvider(creds repository.CredentialRepository, cfg config.GoogleAPIConfig) Provider {
	return &googleProvider{
		creds: creds,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/calendar.readonly",
				"https://www.googleapis.com/auth/calendar.events",
			},
		},
		client:  &http.Client{Timeout: constants.ProviderTimeout},
		baseURL: googleCalendarAPIBase,
	}
}

// ensureValidToken returns a usable access token for the calendar, refreshing
// through the OAuth token endpoint when the stored one is about to expire.
func (p *googleProvider) ensureValidToken(ctx context.Context, calendarID string) (string, error) {
	cred, err := p.creds.GetByCalendarID(ctx, calendarID)
	if err != nil {
		return "", errors.NewAppError(errors.ErrProviderUnavailable, "failed to load calendar credentials", err)
	}
	if cred == nil {
		return "", errors.NewAppError(errors.ErrAuthExpired, "calendar is not connected", nil)
	}

	if time.Now().Before(cred.TokenExpiresAt.Add(-5 * time.Minute)) {
		return cred.AccessToken, nil
	}

	logger.Info("GoogleProvider:EnsureValidToken:Refreshing", "calendar_id", calendarID)

	src := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	token, err := src.Token()
	if err != nil {
		logger.Error("GoogleProvider:EnsureValidToken:RefreshError", "calendar_id", calendarID, "error", err)
		return "", errors.NewAppError(errors.ErrAuthExpired, "calendar credential needs re-authentication", err)
	}

	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	cred.TokenExpiresAt = token.Expiry

	if err := p.creds.Upsert(ctx, cred); err != nil {
		logger.Error("GoogleProvider:EnsureValidToken:SaveError", "calendar_id", calendarID, "error", err)
	}

	return token.AccessToken, nil
}

func (p *googleProvider) do(ctx context.Context, method, rawURL, accessToken string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return p.client.Do(req)
}

// mapStatus translates a Google API status code into the engine taxonomy.
func mapStatus(status int, body []byte) *errors.AppError {
	switch {
	case status == http.StatusUnauthorized:
		return errors.NewAppError(errors.ErrAuthExpired, "calendar credential rejected by provider", nil)
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return errors.NewAppError(errors.ErrQuotaExceeded, "calendar provider quota exceeded", nil)
	case status == http.StatusNotFound || status == http.StatusGone:
		return errors.NewAppError(errors.ErrNotFound, "event not found at provider", nil)
	default:
		return errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("calendar provider error: %s", string(body)), nil)
	}
}

// mapTransportErr classifies a failed round trip. A deadline hit during a
// write has an unknown outcome and must be surfaced as ambiguous.
func mapTransportErr(err error, write bool) *errors.AppError {
	if write && stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewAmbiguousProviderError("calendar provider write timed out", err)
	}
	return errors.NewAppError(errors.ErrProviderUnavailable, "calendar provider unreachable", err)
}

func (p *googleProvider) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]entity.CalendarEvent, error) {
	accessToken, err := p.ensureValidToken(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("timeMin", from.UTC().Format(time.RFC3339))
	q.Set("timeMax", to.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	listURL := fmt.Sprintf("%s/calendars/%s/events?%s", p.baseURL, url.PathEscape(calendarID), q.Encode())

	resp, err := p.do(ctx, http.MethodGet, listURL, accessToken, nil)
	if err != nil {
		return nil, mapTransportErr(err, false)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, mapStatus(resp.StatusCode, body)
	}

	var result struct {
		Items []googleEvent `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to parse provider response", err)
	}

	events := make([]entity.CalendarEvent, 0, len(result.Items))
	for _, item := range result.Items {
		ev, ok := item.toEntity()
		if !ok {
			logger.Warn("GoogleProvider:ListEvents:SkippingUnparseableEvent", "event_id", item.ID)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (p *googleProvider) CreateEvent(ctx context.Context, calendarID string, input entity.CreateEventInput) (*entity.CalendarEvent, error) {
	accessToken, err := p.ensureValidToken(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	tz := input.Timezone
	if tz == "" {
		tz = "UTC"
	}

	event := map[string]any{
		"summary":     input.Title,
		"description": input.Description,
		"start":       map[string]string{"dateTime": input.Start.UTC().Format(time.RFC3339), "timeZone": tz},
		"end":         map[string]string{"dateTime": input.End.UTC().Format(time.RFC3339), "timeZone": tz},
		"conferenceData": map[string]any{
			"createRequest": map[string]any{
				"requestId":             utils.GenerateRequestID("meet"),
				"conferenceSolutionKey": map[string]string{"type": "hangoutsMeet"},
			},
		},
		"reminders": map[string]any{"useDefault": true},
	}

	if len(input.Attendees) > 0 {
		attendees := make([]map[string]string, len(input.Attendees))
		for i, a := range input.Attendees {
			attendees[i] = map[string]string{"email": a.Email}
		}
		event["attendees"] = attendees
	}

	createURL := fmt.Sprintf("%s/calendars/%s/events?conferenceDataVersion=1&sendUpdates=all",
		p.baseURL, url.PathEscape(calendarID))

	resp, err := p.do(ctx, http.MethodPost, createURL, accessToken, event)
	if err != nil {
		return nil, mapTransportErr(err, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, mapStatus(resp.StatusCode, body)
	}

	var created googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		// The event likely exists at this point; report as ambiguous so the
		// caller reconciles instead of retrying blindly.
		return nil, errors.NewAmbiguousProviderError("failed to parse create response", err)
	}

	ev, ok := created.toEntity()
	if !ok {
		return nil, errors.NewAmbiguousProviderError("provider returned an unparseable event", nil)
	}

	logger.Info("GoogleProvider:CreateEvent:Success", "calendar_id", calendarID, "event_id", ev.ID)
	return &ev, nil
}

func (p *googleProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	accessToken, err := p.ensureValidToken(ctx, calendarID)
	if err != nil {
		return err
	}

	deleteURL := fmt.Sprintf("%s/calendars/%s/events/%s?sendUpdates=all",
		p.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID))

	resp, err := p.do(ctx, http.MethodDelete, deleteURL, accessToken, nil)
	if err != nil {
		return mapTransportErr(err, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return mapStatus(resp.StatusCode, body)
	}

	logger.Info("GoogleProvider:DeleteEvent:Success", "calendar_id", calendarID, "event_id", eventID)
	return nil
}

func (p *googleProvider) FreeBusy(ctx context.Context, calendarID string, from, to time.Time) ([]BusyPeriod, error) {
	accessToken, err := p.ensureValidToken(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"timeMin": from.UTC().Format(time.RFC3339),
		"timeMax": to.UTC().Format(time.RFC3339),
		"items":   []map[string]string{{"id": calendarID}},
	}

	resp, err := p.do(ctx, http.MethodPost, p.baseURL+"/freeBusy", accessToken, payload)
	if err != nil {
		return nil, mapTransportErr(err, false)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, mapStatus(resp.StatusCode, body)
	}

	var result struct {
		Calendars map[string]struct {
			Busy []struct {
				Start time.Time `json:"start"`
				End   time.Time `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to parse freeBusy response", err)
	}

	var periods []BusyPeriod
	if cal, ok := result.Calendars[calendarID]; ok {
		for _, b := range cal.Busy {
			periods = append(periods, BusyPeriod{Start: b.Start, End: b.End})
		}
	}
	return periods, nil
}

// googleEvent is the wire shape of an event resource.
type googleEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	HTMLLink    string `json:"htmlLink"`
	Start       struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
	Attendees []struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"attendees"`
}

func (g googleEvent) toEntity() (entity.CalendarEvent, bool) {
	start, okStart := parseEventTime(g.Start.DateTime, g.Start.Date)
	end, okEnd := parseEventTime(g.End.DateTime, g.End.Date)
	if !okStart || !okEnd || !start.Before(end) {
		return entity.CalendarEvent{}, false
	}

	ev := entity.CalendarEvent{
		ID:          g.ID,
		Start:       start,
		End:         end,
		Title:       g.Summary,
		Description: g.Description,
		Location:    g.Location,
		HTMLLink:    g.HTMLLink,
	}
	for _, a := range g.Attendees {
		ev.Attendees = append(ev.Attendees, entity.Attendee{Email: a.Email, Name: a.DisplayName})
	}
	return ev, true
}

// parseEventTime handles both timed events (dateTime) and all-day events
// (date only, treated as midnight-to-midnight UTC).
func parseEventTime(dateTime, date string) (time.Time, bool) {
	if dateTime != "" {
		t, err := time.Parse(time.RFC3339, dateTime)
		return t, err == nil
	}
	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		return t, err == nil
	}
	return time.Time{}, false
}
