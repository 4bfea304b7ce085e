// Package main はセッション制のメンバーサイトを提供するWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/sha256"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/mongo/mongodriver"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourusername/froggate/internal/auth"
	"github.com/yourusername/froggate/internal/config"
	"github.com/yourusername/froggate/internal/directory"
	"github.com/yourusername/froggate/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDBへの接続（起動時の障害はそのまま致命エラーにする）
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURI()))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	db := client.Database(cfg.MongoDatabase)

	// ユーザーディレクトリの初期化とユニークインデックスの確保
	dir := directory.NewMongo(db)
	if err := dir.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure directory indexes: %v", err)
	}

	// セッションストアの設定（同じMongoDB配置内の sessions コレクションに永続化）
	store := mongodriver.NewStore(
		db.Collection("sessions"),
		auth.SessionMaxAgeSeconds(),
		true, // TTLインデックスを作成し、期限切れセッションをストア側で掃除する
		[]byte(cfg.SessionSecret),
		storeEncryptionKey(cfg.SessionStoreSecret),
	)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.SetHTMLTemplate(web.Templates())
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	authManager := auth.NewManager(cfg, dir)
	pages := web.NewHandlers(cfg.PublicDir)
	setupRoutes(router, authManager, pages)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes はページと認証まわりの配線を行います。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, pages *web.Handlers) {
	router.GET("/", pages.Home)
	router.GET("/signup", pages.SignupForm)
	router.GET("/login", pages.LoginForm)

	router.POST("/signUpPost", authManager.Signup)
	router.POST("/loginPost", authManager.Login)

	router.GET("/signUpFail", pages.SignupFail)
	router.GET("/loginFail", pages.LoginFail)

	// /loggedIn 表記のリンクが混在していた時期があるため両方とも受ける
	router.GET("/loggedin", authManager.RequireAuth(), pages.LoggedIn)
	router.GET("/loggedIn", authManager.RequireAuth(), pages.LoggedIn)
	router.GET("/members", authManager.RequireAuth(), pages.Members)

	router.POST("/logout", authManager.Logout)

	// 静的ファイルを当たってから404へ落とす
	router.NoRoute(pages.Fallback)
}

// storeEncryptionKey はストア暗号化秘密鍵からAES鍵を導出します。
// securecookieは16/24/32バイトの鍵しか受け付けないため、sha256で32バイトに揃えます。
func storeEncryptionKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
