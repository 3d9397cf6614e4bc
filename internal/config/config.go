// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ストアバックエンドの種別。
const (
	// StoreMemory はプロセス内メモリのストア。デフォルト。
	StoreMemory = "memory"
	// StoreFile はJSONファイルに全書き換え永続化するストア。
	StoreFile = "file"
	// StorePostgres はPostgreSQLを使用するストア。
	StorePostgres = "postgres"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Auth
	JWTSecret   string
	TokenExpiry time.Duration

	// Store
	DatabaseURL string // 指定時はPostgreSQLストアを使用する
	TasksFile   string // 指定時はJSONファイルストアを使用する（DatabaseURL未指定の場合）

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitAuth    int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("required environment variables are not set: [JWT_SECRET]")
	}

	// Optional fields with defaults
	cfg.TokenExpiry = getEnvDuration("TOKEN_EXPIRY", 24*time.Hour)
	cfg.DatabaseURL = getEnvString("DATABASE_URL", "")
	cfg.TasksFile = getEnvString("TASKS_FILE", "")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// StoreBackend は設定から導出されるストアバックエンド種別を返す。
// DatabaseURLが最優先、次にTasksFile、いずれも未指定ならメモリストア。
func (c *Config) StoreBackend() string {
	if c.DatabaseURL != "" {
		return StorePostgres
	}
	if c.TasksFile != "" {
		return StoreFile
	}
	return StoreMemory
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
