package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"landlord/internal/config"
	"landlord/internal/game"
)

type testEnv struct {
	srv      *Server
	store    *MemoryStore
	sessions *Sessions
	hub      *Hub
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, checks map[string]Checker) *testEnv {
	t.Helper()
	logger := quietLogger()
	store := NewMemoryStore()
	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	sessions := NewSessions(SessionsConfig{MaxSlots: 4, Balance: game.DefaultBalance()}, store, hub, logger)
	t.Cleanup(func() {
		sessions.Close()
		cancel()
	})
	srv := New(config.APIConfig{Addr: ":0"}, logger, sessions, hub, checks)
	return &testEnv{srv: srv, store: store, sessions: sessions, hub: hub}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) create(t *testing.T, slot string) {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/v1/games", map[string]any{"slot": slot, "seed": 42}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (env *testEnv) state(t *testing.T, slot string) game.State {
	t.Helper()
	rr := env.do(t, http.MethodGet, "/v1/games/"+slot, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var st game.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	return st
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Checker
		want   int
	}{
		{"no deps", nil, http.StatusOK},
		{"healthy", map[string]Checker{"postgres": CheckFunc(func(context.Context) error { return nil })}, http.StatusOK},
		{"down", map[string]Checker{"redis": CheckFunc(func(context.Context) error { return errors.New("refused") })}, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.checks)
			rr := env.do(t, http.MethodGet, "/healthz", nil, nil)
			if rr.Code != tc.want {
				t.Fatalf("status %d want %d: %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "the-crown")

	rr := env.do(t, http.MethodPost, "/v1/games", map[string]any{"slot": "the-crown"}, nil)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/games", map[string]any{"slot": "Bad Slot!"}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/games", map[string]any{"slot": "x", "pints": 3}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/v1/games", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"slot":"the-crown"`)

	st := env.state(t, "the-crown")
	require.Equal(t, game.PhaseClosed, st.Phase)
	require.Equal(t, game.DefaultBalance().StartingCashPence, st.CashPence)
}

func TestSlotLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, slot := range []string{"a", "b", "c", "d"} {
		env.create(t, slot)
	}
	rr := env.do(t, http.MethodPost, "/v1/games", map[string]any{"slot": "e"}, nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestUnknownSlot(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/v1/games/nowhere", nil, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(t, http.MethodPost, "/v1/games/nowhere/night/open", nil, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDomainErrorStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"zero quantity", http.MethodPost, "/v1/games/pub/stock", map[string]any{"item": "table_red", "qty": 0}, http.StatusUnprocessableEntity},
		{"unknown item", http.MethodPost, "/v1/games/pub/stock", map[string]any{"item": "mead", "qty": 1}, http.StatusNotFound},
		{"round while closed", http.MethodPost, "/v1/games/pub/night/round", nil, http.StatusConflict},
		{"repay nothing", http.MethodPost, "/v1/games/pub/debt/repay", map[string]any{"instrument": "shark"}, http.StatusUnprocessableEntity},
		{"bad close reason", http.MethodPost, "/v1/games/pub/night/close", map[string]any{"reason": "fire"}, http.StatusBadRequest},
		{"bad qty query", http.MethodGet, "/v1/games/pub/stock/cost?item=table_red&qty=lots", nil, http.StatusBadRequest},
		{"fire stranger", http.MethodDelete, "/v1/games/pub/staff/nobody", nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		rr := env.do(t, tc.method, tc.path, tc.body, nil)
		if rr.Code != tc.want {
			t.Fatalf("%s: status %d want %d: %s", tc.name, rr.Code, tc.want, rr.Body.String())
		}
		require.Contains(t, rr.Body.String(), `"error"`, tc.name)
	}
}

func TestBuyIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")
	cash := env.state(t, "pub").CashPence

	headers := map[string]string{"Idempotency-Key": "order-1"}
	body := map[string]any{"item": "table_red", "qty": 10}
	rr := env.do(t, http.MethodPost, "/v1/games/pub/stock", body, headers)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var first game.PurchaseResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Positive(t, first.CostPence)
	require.Equal(t, cash-first.CostPence, env.state(t, "pub").CashPence)

	rr = env.do(t, http.MethodPost, "/v1/games/pub/stock", body, headers)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "true", rr.Header().Get("Idempotent-Replayed"))
	var again game.PurchaseResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	require.Equal(t, first, again)
	require.Equal(t, cash-first.CostPence, env.state(t, "pub").CashPence)

	rr = env.do(t, http.MethodPost, "/v1/games/pub/stock", body, map[string]string{"Idempotency-Key": "order-2"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, rr.Header().Get("Idempotent-Replayed"))
}

func TestNightFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")

	rr := env.do(t, http.MethodPost, "/v1/games/pub/night/open", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = env.do(t, http.MethodPost, "/v1/games/pub/night/open", nil, nil)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/v1/games/pub/staff", map[string]any{"type": "trainee"}, nil)
	require.Equal(t, http.StatusConflict, rr.Code)

	for i := 1; i < game.DefaultBalance().ClosingRound; i++ {
		rr = env.do(t, http.MethodPost, "/v1/games/pub/night/round", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	rr = env.do(t, http.MethodPost, "/v1/games/pub/night/close", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var rep game.NightReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.False(t, rep.AlreadyClosed)
	require.Equal(t, game.CloseLastOrders, rep.Reason)

	st := env.state(t, "pub")
	require.Equal(t, game.PhaseClosed, st.Phase)
	require.Equal(t, 1, st.NightCount)
}

func TestBlockedActionReturnsResult(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")

	rr := env.do(t, http.MethodPost, "/v1/games/pub/night/open", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := map[string]any{"action": game.ActionWorkTheRoom}
	rr = env.do(t, http.MethodPost, "/v1/games/pub/actions", body, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/v1/games/pub/actions", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	var out struct {
		Error  string            `json:"error"`
		Result game.ActionResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Contains(t, out.Error, "already used this round")
	require.Equal(t, game.ActionBlocked, out.Result.Status)
	require.Equal(t, game.ActionWorkTheRoom, out.Result.Action)
	require.Equal(t, "already acted this round", out.Result.Reason)
}

func TestQueriesRespond(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")
	paths := []string{
		"/v1/catalog",
		"/v1/games/pub/metrics",
		"/v1/games/pub/save",
		"/v1/games/pub/reports",
		"/v1/games/pub/milestones",
		"/v1/games/pub/district",
		"/v1/games/pub/stock",
		"/v1/games/pub/stock/cost?item=table_red&qty=12",
		"/v1/games/pub/stock/forecast",
		"/v1/games/pub/debt",
		"/v1/games/pub/dues",
		"/v1/games/pub/staff",
		"/v1/games/pub/security",
		"/v1/games/pub/upgrades",
		"/v1/games/pub/activities",
		"/v1/games/pub/actions",
	}
	for _, p := range paths {
		rr := env.do(t, http.MethodGet, p, nil, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d: %s", p, rr.Code, rr.Body.String())
		}
		require.True(t, json.Valid(rr.Body.Bytes()), p)
	}
}

func TestDistrict(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")
	rr := env.do(t, http.MethodPost, "/v1/games/pub/night/open", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/v1/games/pub/district", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var v game.DistrictView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	require.Equal(t, "1989-01-16", v.Season.Date)
	require.Len(t, v.Rivals, 3)
	require.Len(t, v.VIPs, game.VIPRosterSize)
	require.Equal(t, game.StanceLayLow, v.Dominant)
}

func TestStaffCommands(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")

	rr := env.do(t, http.MethodPost, "/v1/games/pub/staff", map[string]any{"type": "experienced"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var hired game.Staff
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hired))
	require.NotEmpty(t, hired.ID)

	rr = env.do(t, http.MethodPost, "/v1/games/pub/staff/manager", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/v1/games/pub/staff/"+hired.ID, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/v1/games/pub/staff/fire-at", map[string]any{"pool": "managers", "index": 0}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	st := env.state(t, "pub")
	require.Empty(t, st.FrontOfHouse)
	require.Empty(t, st.Managers)
}

func TestSessionRestoresFromStore(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")
	rr := env.do(t, http.MethodPost, "/v1/games/pub/stock", map[string]any{"item": "house_white", "qty": 6}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	want := env.state(t, "pub")

	logger := quietLogger()
	fresh := NewSessions(SessionsConfig{MaxSlots: 4, Balance: game.DefaultBalance()}, env.store, nil, logger)
	t.Cleanup(fresh.Close)
	srv := New(config.APIConfig{}, logger, fresh, env.hub, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/games/pub", nil)
	out := httptest.NewRecorder()
	srv.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code, out.Body.String())
	var got game.State
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &got))
	require.Equal(t, want.CashPence, got.CashPence)
	require.Equal(t, want.Beverages, got.Beverages)
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, "pub")
	ts := httptest.NewServer(env.srv.Handler())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/games/pub/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msgs := make(chan Message, 64)
	go func() {
		defer close(msgs)
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			msgs <- msg
		}
	}()

	// Registration with the hub is asynchronous, so keep cycling the night
	// until an event arrives.
	kinds := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for !kinds[string(game.EventNightStatusChanged)] {
		resp, err := http.Post(ts.URL+"/v1/games/pub/night/open", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		resp, err = http.Post(ts.URL+"/v1/games/pub/night/close", "application/json", strings.NewReader(`{"reason":"early"}`))
		require.NoError(t, err)
		resp.Body.Close()

		wait := time.After(200 * time.Millisecond)
	drain:
		for {
			select {
			case msg, ok := <-msgs:
				require.True(t, ok, "stream closed")
				require.Equal(t, "pub", msg.Slot)
				kinds[msg.Type] = true
			case <-wait:
				break drain
			case <-deadline:
				t.Fatalf("no night status event, got %v", kinds)
			}
		}
	}

	rr := env.do(t, http.MethodGet, "/v1/games/none/events", nil, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
