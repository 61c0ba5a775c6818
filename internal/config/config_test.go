package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"landlord/internal/game"
)

func TestLoadAPIFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := LoadAPIFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Equal(t, 64, cfg.MaxSlots)
	require.Equal(t, 5*time.Second, cfg.SaveTimeout)
}

func TestPortOverridesAddr(t *testing.T) {
	t.Setenv("LANDLORD_API_ADDR", ":9000")
	t.Setenv("PORT", "7777")
	cfg, err := LoadAPIFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":7777", cfg.Addr)
}

func TestAPIValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  APIConfig
		ok   bool
	}{
		{"ok", APIConfig{Addr: ":1", MaxSlots: 1, SaveTimeout: time.Second}, true},
		{"no addr", APIConfig{MaxSlots: 1, SaveTimeout: time.Second}, false},
		{"no slots", APIConfig{Addr: ":1", SaveTimeout: time.Second}, false},
		{"no timeout", APIConfig{Addr: ":1", MaxSlots: 1}, false},
	}
	for _, tc := range tests {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}

func TestLoadWorkerFromEnv(t *testing.T) {
	t.Setenv("LANDLORD_SOAK_GAMES", "3")
	t.Setenv("LANDLORD_WORKER_RUN_ONCE", "true")
	cfg, err := LoadWorkerFromEnv()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Games)
	require.True(t, cfg.RunOnce)
	require.Equal(t, 10*time.Minute, cfg.TickEvery)

	t.Setenv("LANDLORD_SOAK_WEEKS", "0")
	_, err = LoadWorkerFromEnv()
	require.Error(t, err)
}

func TestLoadCLIFromEnvTrimsSlash(t *testing.T) {
	t.Setenv("LL_API_BASE_URL", "http://pub.local:8080/")
	require.Equal(t, "http://pub.local:8080", LoadCLIFromEnv().APIBaseURL)
}

func TestParseBalanceOverridesDefaults(t *testing.T) {
	bal, err := ParseBalance([]byte("starting_cash_pence: 50000\nclosing_round: 10\n"))
	require.NoError(t, err)
	def := game.DefaultBalance()
	require.Equal(t, int64(50_000), bal.StartingCashPence)
	require.Equal(t, 10, bal.ClosingRound)
	require.Equal(t, def.WeeklyRentPence, bal.WeeklyRentPence)
	require.Equal(t, def.BaseBarCapacity, bal.BaseBarCapacity)
}

func TestParseBalanceRejectsUnknownKeys(t *testing.T) {
	_, err := ParseBalance([]byte("free_beer: true\n"))
	require.Error(t, err)
}

func TestLoadBalanceFromFile(t *testing.T) {
	bal, err := LoadBalance("")
	require.NoError(t, err)
	require.Equal(t, game.DefaultBalance(), bal)

	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weekly_rent_pence: 30000\n"), 0o600))
	bal, err = LoadBalance(path)
	require.NoError(t, err)
	require.Equal(t, int64(30_000), bal.WeeklyRentPence)

	_, err = LoadBalance(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
