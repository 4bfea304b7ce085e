// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// MongoDB設定
	MongoHost     string // MongoDBクラスタのホスト名（mongodb+srv用）
	MongoUser     string // MongoDB接続ユーザー
	MongoPassword string // MongoDB接続パスワード
	MongoDatabase string // users/sessionsコレクションを置くデータベース名
	MongoURI      string // 完全な接続URI（設定時はホスト等より優先）

	// セッション設定
	SessionSecret      string // セッションクッキー署名用の秘密鍵
	SessionStoreSecret string // セッションストア暗号化用の秘密鍵

	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 認証設定
	BcryptCost int // bcryptのコストファクター

	// 静的ファイル設定
	PublicDir string // 静的ファイルの配信ディレクトリ
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// MongoDB設定
		MongoHost:     getEnv("MONGODB_HOST", ""),
		MongoUser:     getEnv("MONGODB_USER", ""),
		MongoPassword: getEnv("MONGODB_PASSWORD", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "froggate"),
		MongoURI:      getEnv("MONGODB_URI", ""),

		// セッション設定
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionStoreSecret: getEnv("MONGODB_SESSION_SECRET", ""),

		// サーバー設定
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// 認証設定
		BcryptCost: getEnvAsInt("BCRYPT_COST", 16),

		// 静的ファイル設定
		PublicDir: getEnv("PUBLIC_DIR", "public"),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では接続・秘密鍵設定は任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.MongoURI == "" && c.MongoHost == "" {
			return fmt.Errorf("MONGODB_URI or MONGODB_HOST is required in release mode")
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DATABASE is required in release mode")
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.SessionStoreSecret == "" {
			return fmt.Errorf("MONGODB_SESSION_SECRET is required in release mode")
		}
	}

	return nil
}

// DatabaseURI はMongoDBの接続URIを返します。
// MONGODB_URI が設定されていればそれを使い、なければ mongodb+srv 形式で組み立てます。
func (c *Config) DatabaseURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}

	u := url.URL{
		Scheme: "mongodb+srv",
		Host:   c.MongoHost,
		Path:   "/",
	}
	if c.MongoUser != "" {
		u.User = url.UserPassword(c.MongoUser, c.MongoPassword)
	}
	return u.String()
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
