package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreDriverFile   = "file"
	StoreDriverRedis  = "redis"
	StoreDriverMySQL  = "mysql"
	StoreDriverMemory = "memory"
)

// Settings is the process configuration, read from the environment (and .env when present).
type Settings struct {
	GoEnv              string   `env:"GO_ENV" envDefault:"development"`
	Port               string   `env:"PORT" envDefault:"8080"`
	CorsAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE" envDefault:"7"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"`
	DataFile    string `env:"DATA_FILE" envDefault:"./data/foodpos.json"`

	RedisAddress  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBName     string `env:"DB_NAME" envDefault:"foodpos"`

	SheetEndpoint       string        `env:"SHEET_ENDPOINT"`
	SalesPushInterval   time.Duration `env:"SALES_PUSH_INTERVAL" envDefault:"30s"`
	CatalogPullInterval time.Duration `env:"CATALOG_PULL_INTERVAL" envDefault:"60s"`
	ProbeInterval       time.Duration `env:"CONNECTIVITY_PROBE_INTERVAL" envDefault:"10s"`
	SyncHTTPTimeout     time.Duration `env:"SYNC_HTTP_TIMEOUT" envDefault:"30s"`

	DefaultAdminPin string        `env:"ADMIN_DEFAULT_PIN" envDefault:"1234"`
	APISecret       string        `env:"API_SECRET" envDefault:"FoodPOS-Secret"`
	TokenLifespan   time.Duration `env:"TOKEN_LIFESPAN" envDefault:"2h"`
}

// LoadSettings loads .env (if any) and parses the environment into Settings.
func LoadSettings() (Settings, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, err
	}
	s.StoreDriver = strings.ToLower(strings.TrimSpace(s.StoreDriver))
	s.SheetEndpoint = strings.TrimSpace(s.SheetEndpoint)
	return s, nil
}

func (s Settings) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.GoEnv), "production")
}
