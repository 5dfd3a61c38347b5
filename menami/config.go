package menami

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/logger"
)

// LoadConfig reads the TOML file, then lets a .env file or the environment
// override secrets.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to read .env file", slog.Any("error", err))
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	DB      database.DBConfig `toml:"db"`
	Spaces  SpacesConfig      `toml:"spaces"`
	Economy EconomyConfig     `toml:"economy"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	AddSource bool       `toml:"add_source"`
}

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Endpoint string `toml:"endpoint"`
	CardRoot string `toml:"cardroot"`
}

func (s SpacesConfig) Enabled() bool {
	return s.Bucket != "" && s.Key != ""
}

type EconomyConfig struct {
	DropSize          int       `toml:"drop_size"`
	DropCooldownS     int       `toml:"drop_cooldown_s"`
	ClaimWindowS      int       `toml:"claim_window_s"`
	UserDropCooldownS int       `toml:"user_drop_cooldown_s"`
	GrabCooldownS     int       `toml:"grab_cooldown_s"`
	DailyCooldownS    int       `toml:"daily_cooldown_s"`
	DailyCoinsMin     int64     `toml:"daily_coins_min"`
	DailyCoinsMax     int64     `toml:"daily_coins_max"`
	DailyGemsMin      int64     `toml:"daily_gems_min"`
	DailyGemsMax      int64     `toml:"daily_gems_max"`
	RarityWeights     []float64 `toml:"rarity_weights"`
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (e EconomyConfig) DropCooldown() time.Duration     { return seconds(e.DropCooldownS) }
func (e EconomyConfig) ClaimWindow() time.Duration      { return seconds(e.ClaimWindowS) }
func (e EconomyConfig) UserDropCooldown() time.Duration { return seconds(e.UserDropCooldownS) }
func (e EconomyConfig) GrabCooldown() time.Duration     { return seconds(e.GrabCooldownS) }
func (e EconomyConfig) DailyCooldown() time.Duration    { return seconds(e.DailyCooldownS) }

func (c *Config) applyEnv() {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Bot.Token = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv("SPACES_SECRET"); v != "" {
		c.Spaces.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = logger.ParseLevel(v)
	}
}

func (c *Config) applyDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = database.DriverPostgres
	}
	e := &c.Economy
	if e.DropSize <= 0 {
		e.DropSize = config.DefaultDropSize
	}
	if e.DropCooldownS <= 0 {
		e.DropCooldownS = config.DefaultDropCooldownS
	}
	if e.ClaimWindowS <= 0 {
		e.ClaimWindowS = config.DefaultClaimWindowS
	}
	if e.UserDropCooldownS <= 0 {
		e.UserDropCooldownS = config.DefaultUserDropCooldownS
	}
	if e.GrabCooldownS <= 0 {
		e.GrabCooldownS = config.DefaultGrabCooldownS
	}
	if e.DailyCooldownS <= 0 {
		e.DailyCooldownS = config.DefaultDailyCooldownS
	}
	if e.DailyCoinsMin <= 0 && e.DailyCoinsMax <= 0 {
		e.DailyCoinsMin, e.DailyCoinsMax = config.DefaultDailyCoinsMin, config.DefaultDailyCoinsMax
	}
	if e.DailyGemsMin <= 0 && e.DailyGemsMax <= 0 {
		e.DailyGemsMin, e.DailyGemsMax = config.DefaultDailyGemsMin, config.DefaultDailyGemsMax
	}
	if e.RarityWeights == nil {
		e.RarityWeights = append([]float64(nil), config.DefaultRarityWeights...)
	}
}
