package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Directory DirectoryConfig
	Exam      ExamConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// AuthConfig содержит настройки проверки токенов сервиса пользователей
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DirectoryConfig содержит настройки справочника сотрудников
type DirectoryConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

// ExamConfig содержит настройки экзаменационного движка
type ExamConfig struct {
	// DeliveryCacheTTLSec: время жизни кеша вопросов экзамена. 0 отключает кеш.
	DeliveryCacheTTLSec int `mapstructure:"delivery_cache_ttl_sec"`
	DefaultMaxAttempts  int `mapstructure:"default_max_attempts"`
}

// RateLimitConfig содержит лимиты на начало и сдачу экзамена
type RateLimitConfig struct {
	SubmitMaxRequests int `mapstructure:"submit_max_requests"`
	SubmitWindowSec   int `mapstructure:"submit_window_sec"`
}

// CORSConfig содержит разрешенные источники
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DirectoryTimeout возвращает таймаут HTTP-запроса к справочнику
func (c *DirectoryConfig) DirectoryTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheTTL возвращает время жизни кеша справочника
func (c *DirectoryConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// DeliveryCacheTTL возвращает время жизни кеша вопросов экзамена
func (c *ExamConfig) DeliveryCacheTTL() time.Duration {
	return time.Duration(c.DeliveryCacheTTLSec) * time.Second
}

// SubmitWindow возвращает окно rate limit
func (c *RateLimitConfig) SubmitWindow() time.Duration {
	return time.Duration(c.SubmitWindowSec) * time.Second
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("directory.timeout_sec", 5)
	vip.SetDefault("directory.cache_ttl_sec", 60)
	vip.SetDefault("exam.delivery_cache_ttl_sec", 300)
	vip.SetDefault("exam.default_max_attempts", 1)
	vip.SetDefault("rate_limit.submit_max_requests", 10)
	vip.SetDefault("rate_limit.submit_window_sec", 60)
	vip.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("auth.jwt_secret", "JWT_SECRET")

	vip.BindEnv("directory.base_url", "DIRECTORY_BASE_URL")
	vip.BindEnv("directory.timeout_sec", "DIRECTORY_TIMEOUT_SEC")
	vip.BindEnv("directory.cache_ttl_sec", "DIRECTORY_CACHE_TTL_SEC")

	vip.BindEnv("exam.delivery_cache_ttl_sec", "EXAM_DELIVERY_CACHE_TTL_SEC")
	vip.BindEnv("exam.default_max_attempts", "EXAM_DEFAULT_MAX_ATTEMPTS")

	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Файл конфигурации необязателен: все важное приходит из окружения
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s (mode %s)", cfg.Redis.Addr, cfg.Redis.Mode)
		log.Printf("Directory Base URL: %s", cfg.Directory.BaseURL)
		log.Printf("JWT Secret Set: %t", cfg.Auth.JWTSecret != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Directory.BaseURL == "" {
		return fmt.Errorf("employee directory base URL is required (check DIRECTORY_BASE_URL env var)")
	}
	if c.Exam.DefaultMaxAttempts < 1 {
		return fmt.Errorf("exam.default_max_attempts must be at least 1, got %d", c.Exam.DefaultMaxAttempts)
	}
	if c.Exam.DeliveryCacheTTLSec < 0 || c.Directory.CacheTTLSec < 0 {
		return fmt.Errorf("cache TTL values must not be negative")
	}
	return nil
}
