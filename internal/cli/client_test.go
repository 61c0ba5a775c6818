package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"landlord/internal/api"
	"landlord/internal/config"
	"landlord/internal/game"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	hub := api.NewHub(logger)
	go hub.Run(ctx)
	sessions := api.NewSessions(api.SessionsConfig{MaxSlots: 4, Balance: game.DefaultBalance()}, api.NewMemoryStore(), hub, logger)
	srv := httptest.NewServer(api.New(config.APIConfig{}, logger, sessions, hub, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		sessions.Close()
		cancel()
	})
	return NewClient(srv.URL + "/")
}

func TestClientPlaysANight(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	st, err := c.CreateGame(ctx, "local", 7, "")
	require.NoError(t, err)
	require.Equal(t, game.PhaseClosed, st.Phase)

	buy, err := c.Buy(ctx, "local", "table_red", 10, "buy-1")
	require.NoError(t, err)
	require.Equal(t, 10, buy.Qty)

	again, err := c.Buy(ctx, "local", "table_red", 10, "buy-1")
	require.NoError(t, err)
	require.Equal(t, buy, again)

	open, err := c.OpenNight(ctx, "local", "")
	require.NoError(t, err)
	require.Equal(t, 1, open.Round)

	report, err := c.CloseNight(ctx, "local", game.CloseEarly, "")
	require.NoError(t, err)
	require.Equal(t, 1, report.Night)

	st, err = c.State(ctx, "local")
	require.NoError(t, err)
	require.Equal(t, game.PhaseClosed, st.Phase)
	require.Equal(t, 1, st.NightCount)
}

func TestClientAPIErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.State(ctx, "missing")
	require.Error(t, err)
	require.True(t, IsAPIError(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Contains(t, apiErr.Message, "not found")

	_, err = c.CreateGame(ctx, "local", 1, "")
	require.NoError(t, err)
	_, err = c.PlayRound(ctx, "local", "")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestClientNetworkErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base).State(context.Background(), "local")
	require.Error(t, err)
	require.False(t, IsAPIError(err))
}

func TestClientQueries(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, err := c.CreateGame(ctx, "q", 3, "")
	require.NoError(t, err)

	cost, err := c.PeekCost(ctx, "q", "house_white", 12)
	require.NoError(t, err)
	require.Positive(t, cost)

	_, err = c.OpenNight(ctx, "q", "")
	require.NoError(t, err)
	_, err = c.CloseNight(ctx, "q", game.CloseLastOrders, "")
	require.NoError(t, err)
	dues, err := c.Dues(ctx, "q")
	require.NoError(t, err)
	require.Positive(t, dues.TotalPence)

	district, err := c.District(ctx, "q")
	require.NoError(t, err)
	require.Len(t, district.VIPs, game.VIPRosterSize)
	require.Equal(t, "1989-01-17", district.Season.Date)

	ups, err := c.Upgrades(ctx, "q")
	require.NoError(t, err)
	require.Len(t, ups, len(game.Upgrades()))

	actions, err := c.Actions(ctx, "q")
	require.NoError(t, err)
	require.NotEmpty(t, actions)

	raw, err := c.Do(ctx, http.MethodPost, GamePath("q", "/price"), map[string]any{"multiplier": 1.2}, "price-1")
	require.NoError(t, err)
	require.InDelta(t, 1.2, raw["multiplier"], 0.0001)
}

func TestEventsURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/v1/games/pub/events"},
		{"https://pubs.example.net/", "wss://pubs.example.net/v1/games/pub/events"},
	}
	for _, tc := range tests {
		got, err := NewClient(tc.base).EventsURL("pub")
		if err != nil {
			t.Fatalf("EventsURL(%q): %v", tc.base, err)
		}
		if got != tc.want {
			t.Fatalf("EventsURL(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestProfileRoundTrip(t *testing.T) {
	t.Setenv("LANDLORD_HOME", t.TempDir())

	_, err := LoadProfile()
	require.ErrorIs(t, err, ErrNoProfile)

	require.NoError(t, SaveProfile(Profile{Slot: "crown", APIBaseURL: "http://x"}))
	p, err := LoadProfile()
	require.NoError(t, err)
	require.Equal(t, "crown", p.Slot)

	require.NoError(t, ClearProfile())
	_, err = LoadProfile()
	require.ErrorIs(t, err, ErrNoProfile)
}
