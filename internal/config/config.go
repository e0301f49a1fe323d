package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads the usual "30s" / "300ms"
// notation from YAML, which yaml.v3 does not do for the bare type.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Env   string      `yaml:"env"`
	HTTP  HTTPConfig  `yaml:"http"`
	Log   LogConfig   `yaml:"log"`
	Redis RedisConfig `yaml:"redis"`
	S3    S3Config    `yaml:"s3"`
	Auth  AuthConfig  `yaml:"auth"`
	Store StoreConfig `yaml:"store"`
	Cache CacheConfig `yaml:"cache"`
	Shop  ShopConfig  `yaml:"shop"`
}

type HTTPConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret    string   `yaml:"jwt_secret"`
	JWTAccessTTL Duration `yaml:"jwt_access_ttl"`
	RefreshTTL   Duration `yaml:"refresh_ttl"`
}

// StoreConfig addresses the external product/purchase store this service
// is a client of.
type StoreConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

type CacheConfig struct {
	TTL             Duration `yaml:"ttl"`
	SettleDelay     Duration `yaml:"settle_delay"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

type ShopConfig struct {
	AllowedUsers  []string `yaml:"allowed_users"`
	MaxImageBytes int64    `yaml:"max_image_bytes"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(5 * time.Second),
			WriteTimeout: Duration(10 * time.Second),
			IdleTimeout:  Duration(30 * time.Second),
		},
		Log: LogConfig{Level: "debug"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		S3: S3Config{
			Endpoint:  "localhost:9000",
			AccessKey: "minio",
			SecretKey: "minio123",
			Bucket:    "storefront-images",
			UseSSL:    false,
		},
		Auth: AuthConfig{
			JWTSecret:    "change-me",
			JWTAccessTTL: Duration(15 * time.Minute),
			RefreshTTL:   Duration(720 * time.Hour),
		},
		Store: StoreConfig{
			BaseURL: "http://localhost:9090",
			Timeout: Duration(10 * time.Second),
		},
		Cache: CacheConfig{
			TTL:             Duration(30 * time.Second),
			SettleDelay:     Duration(300 * time.Millisecond),
			RefreshInterval: Duration(time.Minute),
		},
		Shop: ShopConfig{
			AllowedUsers:  nil,
			MaxImageBytes: 512 * 1024,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.S3.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if err := overrideBool("S3_USE_SSL", &cfg.S3.UseSSL); err != nil {
		return err
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overrideDuration("JWT_ACCESS_TTL", &cfg.Auth.JWTAccessTTL); err != nil {
		return err
	}
	if err := overrideDuration("REFRESH_TTL", &cfg.Auth.RefreshTTL); err != nil {
		return err
	}

	if v := os.Getenv("STORE_BASE_URL"); v != "" {
		cfg.Store.BaseURL = v
	}
	if err := overrideDuration("STORE_TIMEOUT", &cfg.Store.Timeout); err != nil {
		return err
	}

	if err := overrideDuration("CACHE_TTL", &cfg.Cache.TTL); err != nil {
		return err
	}
	if err := overrideDuration("CACHE_SETTLE_DELAY", &cfg.Cache.SettleDelay); err != nil {
		return err
	}
	if err := overrideDuration("CACHE_REFRESH_INTERVAL", &cfg.Cache.RefreshInterval); err != nil {
		return err
	}

	if v := os.Getenv("SHOP_ALLOWED_USERS"); v != "" {
		cfg.Shop.AllowedUsers = splitCSV(v)
	}

	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	users := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			users = append(users, part)
		}
	}
	return users
}

func overrideDuration(key string, target *Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = Duration(d)
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
