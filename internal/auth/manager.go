// Package auth はサインアップ・ログイン・ログアウトとセッションゲートを提供します。
package auth

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/froggate/internal/config"
	"github.com/yourusername/froggate/internal/directory"
)

const (
	SessionCookieName       = "fg_session"
	sessionKeyAuthenticated = "authenticated"
	sessionKeyUsername      = "username"

	defaultBcryptCost = 16
)

// sessionTTL はログイン成功時に明示的に与える有効期限です。
// サインアップ直後のセッションはストア既定の期限に任せます。
var sessionTTL = 24 * time.Hour

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(sessionTTL.Seconds())
}

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager は認証処理と依存をまとめた構造体です。
type Manager struct {
	cfg       *config.Config
	directory directory.Store
	validate  *validator.Validate
	cost      int
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, store directory.Store) *Manager {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &Manager{
		cfg:       cfg,
		directory: store,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		cost:      cost,
	}
}

// signupForm は /signUpPost のフォームスキーマです。
// 空欄チェックはフィールド名を列挙する必要があるため validator より先に行います。
type signupForm struct {
	Username string `form:"username" validate:"required,alphanum"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=1"`
}

// loginForm は /loginPost のフォームスキーマです。
type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password"`
}

// Signup は POST /signUpPost のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		log.Printf("signup: form bind failed: %v", err)
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	// 空欄はディレクトリに触れる前に弾き、どのフィールドが欠けていたかを伝える
	var missing []string
	if form.Username == "" {
		missing = append(missing, "username")
	}
	if form.Email == "" {
		missing = append(missing, "email")
	}
	if form.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		message := "Missing " + strings.Join(missing, ", ") + " field(s), please try again!"
		c.Redirect(http.StatusFound, "/signUpFail?message="+encodeQueryMessage(message))
		return
	}

	if err := m.validate.Struct(form); err != nil {
		// validatorのエラーはフィールド名とタグのみで値は含まない
		log.Printf("signup: validation failed: %v", err)
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), m.cost)
	if err != nil {
		log.Printf("signup: password hashing failed: %v", err)
		respondServerError(c)
		return
	}

	user := directory.User{
		UserID:       uuid.NewString(),
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: string(hash),
	}
	if err := m.directory.Insert(c.Request.Context(), user); err != nil {
		if errors.Is(err, directory.ErrDuplicateUsername) {
			c.Redirect(http.StatusFound, "/signUpFail?message="+encodeQueryMessage("Username already taken, please try again!"))
			return
		}
		log.Printf("signup: directory insert failed: %v", err)
		respondServerError(c)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyAuthenticated, true)
	session.Set(sessionKeyUsername, form.Username)
	if err := session.Save(); err != nil {
		log.Printf("signup: session save failed: %v", err)
		respondServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/loggedin")
}

// Login は POST /loginPost のハンドラーです。
// ユーザー不在とパスワード不一致は区別せず、同じ失敗ページへ誘導します。
func (m *Manager) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		log.Printf("login: form bind failed: %v", err)
		c.Redirect(http.StatusFound, "/loginFail")
		return
	}

	if err := m.validate.Struct(form); err != nil {
		log.Printf("login: validation failed: %v", err)
		c.Redirect(http.StatusFound, "/loginFail")
		return
	}

	creds, err := m.directory.FindByUsername(c.Request.Context(), form.Username)
	if err != nil {
		log.Printf("login: directory lookup failed: %v", err)
		respondServerError(c)
		return
	}
	if len(creds) != 1 {
		c.Redirect(http.StatusFound, "/loginFail")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(creds[0].PasswordHash), []byte(form.Password)) != nil {
		c.Redirect(http.StatusFound, "/loginFail")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyAuthenticated, true)
	session.Set(sessionKeyUsername, creds[0].Username)
	// 24時間の有効期限はログイン成功時にのみ明示的に与える
	session.Options(sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   m.cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	if err := session.Save(); err != nil {
		log.Printf("login: session save failed: %v", err)
		respondServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/loggedin")
}

// Logout は POST /logout のハンドラーです。
// セッションをサーバー側から破棄してホームへ戻します。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("logout: session destroy failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// RequireAuth は保護ページ用のセッションゲートです。
// 認証フラグはリクエストごとにストアから読み直します。
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		authenticated, _ := session.Get(sessionKeyAuthenticated).(bool)
		if !authenticated {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		username, _ := session.Get(sessionKeyUsername).(string)
		c.Set(ContextUserKey, username)
		c.Next()
	}
}

// respondServerError は外部依存の障害を内部情報を出さずに返します。
func respondServerError(c *gin.Context) {
	c.String(http.StatusInternalServerError, "Something went wrong, please try again later.")
}

// encodeQueryMessage はリダイレクト用メッセージをクエリ値にエンコードします。
// 旧来のリンク形式と互換にするため、encodeURIComponentと同じ文字集合を使います
// （スペースは %20、! ( ) ' * ~ はそのまま）。
func encodeQueryMessage(message string) string {
	escaped := url.QueryEscape(message)
	replacer := strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
	return replacer.Replace(escaped)
}
