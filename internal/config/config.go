package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type APIConfig struct {
	Addr        string        `env:"LANDLORD_API_ADDR" envDefault:":8080"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	BalanceFile string        `env:"LANDLORD_BALANCE_FILE"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	MaxSlots    int           `env:"LANDLORD_MAX_SLOTS" envDefault:"64"`
	SaveTimeout time.Duration `env:"LANDLORD_SAVE_TIMEOUT" envDefault:"5s"`
}

type WorkerConfig struct {
	DatabaseURL string        `env:"DATABASE_URL"`
	BalanceFile string        `env:"LANDLORD_BALANCE_FILE"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	TickEvery   time.Duration `env:"LANDLORD_SOAK_EVERY" envDefault:"10m"`
	Games       int           `env:"LANDLORD_SOAK_GAMES" envDefault:"8"`
	Weeks       int           `env:"LANDLORD_SOAK_WEEKS" envDefault:"12"`
	Seed        uint64        `env:"LANDLORD_SOAK_SEED"`
	RunOnce     bool          `env:"LANDLORD_WORKER_RUN_ONCE" envDefault:"false"`
}

type CLIConfig struct {
	APIBaseURL string `env:"LL_API_BASE_URL" envDefault:"http://localhost:8080"`
	Slot       string `env:"LL_SLOT"`
}

// LoadAPIFromEnv reads the API config. PORT, when set, wins over
// LANDLORD_API_ADDR so hosted platforms can pick the port.
func LoadAPIFromEnv() (APIConfig, error) {
	cfg, err := env.ParseAs[APIConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	return cfg, cfg.Validate()
}

func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("LANDLORD_API_ADDR must not be empty")
	}
	if c.MaxSlots <= 0 {
		return fmt.Errorf("LANDLORD_MAX_SLOTS must be > 0")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("LANDLORD_SAVE_TIMEOUT must be > 0")
	}
	return nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg, err := env.ParseAs[WorkerConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	return cfg, cfg.Validate()
}

func (c WorkerConfig) Validate() error {
	if c.TickEvery <= 0 {
		return fmt.Errorf("LANDLORD_SOAK_EVERY must be > 0")
	}
	if c.Games <= 0 {
		return fmt.Errorf("LANDLORD_SOAK_GAMES must be > 0")
	}
	if c.Weeks <= 0 {
		return fmt.Errorf("LANDLORD_SOAK_WEEKS must be > 0")
	}
	return nil
}

func LoadCLIFromEnv() CLIConfig {
	cfg, err := env.ParseAs[CLIConfig]()
	if err != nil {
		cfg = CLIConfig{APIBaseURL: "http://localhost:8080"}
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg
}
