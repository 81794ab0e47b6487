package main

import (
	"time"

	"knowledgebase/internal/data"
	"knowledgebase/internal/infra/storage"
	"knowledgebase/internal/server"
	"knowledgebase/pkg/auth"
	"knowledgebase/pkg/cache"
)

// Config is the application config. Kratos scans the loaded YAML through its
// JSON codec, so the fields carry json tags matching the snake_case file keys
// and durations travel as strings ("15s").
type Config struct {
	Server  ServerConf  `json:"server"`
	Data    DataConf    `json:"data"`
	Redis   RedisConf   `json:"redis"`
	Storage StorageConf `json:"storage"`
	Auth    AuthConf    `json:"auth"`
}

// ServerConf holds the HTTP server settings.
type ServerConf struct {
	Addr         string `json:"addr"`
	Mode         string `json:"mode"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
}

// DataConf holds the database settings.
type DataConf struct {
	Source   string `json:"source"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`

	MaxIdleConns    int    `json:"max_idle_conns"`
	MaxOpenConns    int    `json:"max_open_conns"`
	ConnMaxLifetime string `json:"conn_max_lifetime"`
}

// RedisConf holds the Redis settings.
type RedisConf struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

// StorageConf holds the MinIO settings.
type StorageConf struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Bucket          string `json:"bucket"`
	UseSSL          bool   `json:"use_ssl"`
	PublicBaseURL   string `json:"public_base_url"`
}

// AuthConf holds token signing settings.
type AuthConf struct {
	Secret       string `json:"secret"`
	AccessExpiry string `json:"access_expiry"`
}

// parseDuration reads a duration like "15s", falling back when the value is
// unset or malformed.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func provideServerConfig(c *Config) server.Config {
	return server.Config{
		Addr:         c.Server.Addr,
		Mode:         c.Server.Mode,
		ReadTimeout:  parseDuration(c.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: parseDuration(c.Server.WriteTimeout, 30*time.Second),
	}
}

func provideDataConfig(c *Config) *data.Config {
	return &data.Config{
		Source:          c.Data.Source,
		Host:            c.Data.Host,
		Port:            c.Data.Port,
		User:            c.Data.User,
		Password:        c.Data.Password,
		Database:        c.Data.Database,
		SSLMode:         c.Data.SSLMode,
		MaxIdleConns:    c.Data.MaxIdleConns,
		MaxOpenConns:    c.Data.MaxOpenConns,
		ConnMaxLifetime: parseDuration(c.Data.ConnMaxLifetime, time.Hour),
	}
}

func provideRedisConfig(c *Config) cache.RedisConfig {
	return cache.RedisConfig{
		Addr:      c.Redis.Addr,
		Password:  c.Redis.Password,
		DB:        c.Redis.DB,
		KeyPrefix: c.Redis.KeyPrefix,
	}
}

func provideStorageConfig(c *Config) storage.Config {
	return storage.Config{
		Endpoint:        c.Storage.Endpoint,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
		Bucket:          c.Storage.Bucket,
		UseSSL:          c.Storage.UseSSL,
		PublicBaseURL:   c.Storage.PublicBaseURL,
	}
}

func provideJWTManager(c *Config) *auth.JWTManager {
	return auth.NewJWTManager(c.Auth.Secret, parseDuration(c.Auth.AccessExpiry, 24*time.Hour))
}
