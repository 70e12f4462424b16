package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"rocket-food-delivery/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the backend's database handle, set by InitDB.
var DB *gorm.DB

// JWTSecret signs session tokens. Load replaces it with the configured value.
var JWTSecret = []byte("rocket_food_delivery_secret")

// TokenTTL is how long an issued session token stays valid.
var TokenTTL = 24 * time.Hour

// RequireToken makes the backend reject requests without a session token.
var RequireToken bool

// Config holds settings for both binaries. The backend reads the server keys,
// the app reads api_url, session_db and http_timeout.
type Config struct {
	Port         string        `mapstructure:"port"`
	Database     string        `mapstructure:"database"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	RequireToken bool          `mapstructure:"require_token"`
	GinMode      string        `mapstructure:"gin_mode"`
	APIURL       string        `mapstructure:"api_url"`
	SessionDB    string        `mapstructure:"session_db"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	LogLevel     string        `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"port":          "8080",
	"database":      "rocket_food.db",
	"jwt_secret":    string(JWTSecret),
	"token_ttl":     "24h",
	"require_token": false,
	"gin_mode":      "",
	"api_url":       "http://localhost:8080",
	"session_db":    "rocket_session.db",
	"http_timeout":  "10s",
	"log_level":     "info",
}

// Load resolves configuration from defaults, an optional .env file, the
// environment (ROCKET_ prefix, plus a few conventional names) and flags.
// Flags are matched to keys by replacing '-' with '_'.
func Load(flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	v.SetEnvPrefix("ROCKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "ROCKET_PORT", "PORT")
	_ = v.BindEnv("jwt_secret", "ROCKET_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("gin_mode", "ROCKET_GIN_MODE", "GIN_MODE")
	_ = v.BindEnv("api_url", "ROCKET_API_URL", "API_URL", "EXPO_PUBLIC_NGROK_URL")

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := defaults[key]; !known {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return Config{}, bindErr
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.JWTSecret == "" {
		return Config{}, errors.New("jwt_secret must not be empty")
	}
	if c.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL)
	}

	JWTSecret = []byte(c.JWTSecret)
	TokenTTL = c.TokenTTL
	RequireToken = c.RequireToken
	return c, nil
}

// NewLogger builds the text logger both binaries use. Unknown levels fall
// back to info.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Connect opens a sqlite database without migrating it.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	return db, nil
}

// Migrate creates or updates the backend schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Customer{},
		&models.Courier{},
		&models.Restaurant{},
		&models.Product{},
		&models.Order{},
		&models.ProductOrder{},
		&models.OrderStatusHistory{},
	)
}

// InitDB connects to dsn, migrates it and installs it as DB.
func InitDB(dsn string) error {
	db, err := Connect(dsn)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	DB = db
	slog.Info("database connected and migrated", "dsn", dsn)
	return nil
}
