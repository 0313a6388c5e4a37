package config

import (
	"errors"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string `env:"ENV" env-default:"local"`
	HTTPServer HTTPServerConfig
	Backend    BackendConfig
	AISearch   AISearchConfig
	Auth       AuthConfig
	Catalog    CatalogConfig
	Cache      CacheConfig
	TextSearch TextSearchConfig
	Search     SearchConfig
	Limits     LimitsConfig
}

type HTTPServerConfig struct {
	Address        string        `env:"HTTP_ADDRESS" env-default:"0.0.0.0:8080"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	AllowedOrigins []string      `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:","`
}

// BackendConfig конфигурация REST-бэкенда каталога (через gateway).
type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL" env-default:"http://localhost:8090/properties"`
	Token   string        `env:"BACKEND_TOKEN"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" env-default:"15s"`
}

// AISearchConfig конфигурация AI-поиска (/compare/search).
type AISearchConfig struct {
	Enabled bool          `env:"AI_SEARCH_ENABLE" env-default:"true"`
	BaseURL string        `env:"AI_SEARCH_BASE_URL" env-default:"http://localhost:8090/properties"`
	Timeout time.Duration `env:"AI_SEARCH_TIMEOUT" env-default:"60s"`
	// FetchConcurrency сколько недостающих записей догружается параллельно
	FetchConcurrency int64 `env:"AI_SEARCH_FETCH_CONCURRENCY" env-default:"8"`
}

// AuthConfig конфигурация проверки роли зрителя по JWT.
type AuthConfig struct {
	Secret      string `env:"AUTH_JWT_SECRET"`
	AdminRole   string `env:"AUTH_ADMIN_ROLE" env-default:"admin"`
	DisableAuth bool   `env:"DISABLE_AUTH" env-default:"false"`
}

// CatalogConfig источник загруженного каталога для лимитов и гидрации.
type CatalogConfig struct {
	// Source: backend или postgres
	Source      string `env:"CATALOG_SOURCE" env-default:"backend"`
	DatabaseURL string `env:"DATABASE_URL"`
	// RefreshSpec cron-выражение периодической перезагрузки каталога
	RefreshSpec string `env:"CATALOG_REFRESH_SPEC" env-default:"@every 5m"`
}

// CacheConfig кеш гидрации записей по ID.
type CacheConfig struct {
	// Driver: memory, redis или none
	Driver        string        `env:"CACHE_DRIVER" env-default:"memory"`
	RedisAddr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	TTL           time.Duration `env:"CACHE_TTL" env-default:"10m"`
}

// TextSearchConfig реализация текстового поиска.
type TextSearchConfig struct {
	// Driver: backend или meilisearch
	Driver    string `env:"TEXT_SEARCH_DRIVER" env-default:"backend"`
	MeiliHost string `env:"MEILI_HOST" env-default:"http://localhost:7700"`
	MeiliKey  string `env:"MEILI_API_KEY"`
	MeiliIdx  string `env:"MEILI_INDEX" env-default:"properties"`
	Limit     int64  `env:"TEXT_SEARCH_LIMIT" env-default:"100"`
}

// SearchConfig параметры диспетчеризации поиска.
type SearchConfig struct {
	// Debounce задержка текстового поиска после последнего ввода
	Debounce time.Duration `env:"SEARCH_DEBOUNCE" env-default:"400ms"`
	// SessionTTL время жизни неактивной поисковой сессии
	SessionTTL time.Duration `env:"SEARCH_SESSION_TTL" env-default:"30m"`
}

// LimitsConfig границы слайдеров по умолчанию и шаги округления.
type LimitsConfig struct {
	USDMax      float64 `env:"LIMITS_USD_MAX" env-default:"1000000"`
	USDStep     float64 `env:"LIMITS_USD_STEP" env-default:"5000"`
	ARSMax      float64 `env:"LIMITS_ARS_MAX" env-default:"1000000000"`
	ARSStep     float64 `env:"LIMITS_ARS_STEP" env-default:"500000"`
	AreaMax     float64 `env:"LIMITS_AREA_MAX" env-default:"1000"`
	AreaStep    float64 `env:"LIMITS_AREA_STEP" env-default:"10"`
	CoveredMax  float64 `env:"LIMITS_COVERED_MAX" env-default:"1000"`
	CoveredStep float64 `env:"LIMITS_COVERED_STEP" env-default:"10"`
}

func MustLoad() *Config {
	// .env нужен только для локального запуска
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("cannot read .env file: " + err.Error())
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}
	return &cfg
}
