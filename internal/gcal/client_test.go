package gcal_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/Tiliavir/timetrack/internal/config"
	"github.com/Tiliavir/timetrack/internal/gcal"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...option.ClientOption) *gcal.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]option.ClientOption{option.WithEndpoint(srv.URL + "/")}, opts...)
	if len(opts) == 1 {
		opts = append(opts, option.WithoutAuthentication())
	}
	client, err := gcal.NewClient(context.Background(), opts...)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestEvents_FollowsPagesAndMapsRecords(t *testing.T) {
	var requests []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/work@group/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "2500", q.Get("maxResults"))
		assert.Equal(t, "2021-01-01T00:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2021-01-03T00:00:00Z", q.Get("timeMax"))
		requests = append(requests, q.Get("pageToken"))

		switch q.Get("pageToken") {
		case "":
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{
					{
						"id":      "e1",
						"summary": "#project",
						"start":   map[string]string{"dateTime": "2021-01-01T09:00:00+01:00"},
						"end":     map[string]string{"dateTime": "2021-01-01T12:00:00+01:00"},
					},
				},
				"nextPageToken": "page-2",
			})
		case "page-2":
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{
					{
						"id":      "e2",
						"summary": "Holiday",
						"start":   map[string]string{"date": "2021-01-02"},
						"end":     map[string]string{"date": "2021-01-03"},
					},
					{
						"id":    "e3",
						"start": map[string]string{"dateTime": "2021-01-02T09:00:00+01:00"},
						"end":   map[string]string{"dateTime": "2021-01-02T10:00:00+01:00"},
					},
				},
			})
		default:
			t.Errorf("unexpected page token %q", q.Get("pageToken"))
		}
	})
	client := newTestClient(t, handler)

	records, err := client.Events(context.Background(), "work@group",
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []string{"", "page-2"}, requests)
	require.Len(t, records, 3)

	assert.Equal(t, "e1", records[0].ID)
	assert.Equal(t, "#project", records[0].SummaryText())
	assert.Equal(t, "2021-01-01T09:00:00+01:00", records[0].Start.DateTime)
	assert.True(t, records[0].End.Timed())

	assert.Equal(t, "2021-01-02", records[1].Start.Date)
	assert.False(t, records[1].Start.Timed())

	assert.Nil(t, records[2].Summary)
}

func TestEvents_APIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]any{"error": map[string]any{"code": 404, "message": "Not Found"}})
	})
	client := newTestClient(t, handler)

	_, err := client.Events(context.Background(), "missing", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCalendars(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/calendarList", r.URL.Path)
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{
				{"id": "me@example.com", "summary": "Me", "primary": true},
				{"id": "work@group", "summary": "Working hours"},
			},
		})
	})
	client := newTestClient(t, handler)

	items, err := client.Calendars(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []gcal.CalendarItem{
		{ID: "me@example.com", Summary: "Me", Primary: true},
		{ID: "work@group", Summary: "Working hours"},
	}, items)
}

func TestAuthenticate_UsesStoredToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	stored := &oauth2.Token{
		AccessToken: "stored-access",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tokenFile, data, 0o600))

	httpClient, err := gcal.Authenticate(context.Background(),
		config.Google{ClientID: "client"}, tokenFile, io.Discard)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stored-access", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{"items": []any{}})
	})
	client := newTestClient(t, handler, option.WithHTTPClient(httpClient))

	items, err := client.Calendars(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAuthenticate_RefreshesExpiredToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "stored-refresh", r.PostForm.Get("refresh_token"))
		writeJSON(t, w, map[string]any{
			"access_token": "fresh-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	expired := &oauth2.Token{
		AccessToken:  "old-access",
		RefreshToken: "stored-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}
	data, err := json.Marshal(expired)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tokenFile, data, 0o600))

	_, err = gcal.Authenticate(context.Background(),
		config.Google{ClientID: "client", TokenURL: tokenServer.URL}, tokenFile, io.Discard)
	require.NoError(t, err)

	saved, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	var tok oauth2.Token
	require.NoError(t, json.Unmarshal(saved, &tok))
	assert.Equal(t, "fresh-access", tok.AccessToken)
	assert.Equal(t, "stored-refresh", tok.RefreshToken)
}

func TestAuthenticate_RequiresClientID(t *testing.T) {
	_, err := gcal.Authenticate(context.Background(), config.Google{},
		filepath.Join(t.TempDir(), "token.json"), io.Discard)
	assert.ErrorIs(t, err, gcal.ErrUnauthenticated)
}
