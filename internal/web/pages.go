// Package web はHTMLページの配信と静的ファイル・404フォールバックを提供します。
package web

import (
	"embed"
	"fmt"
	"html/template"
	"math/rand"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/froggate/internal/auth"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates は埋め込み済みのページテンプレート一式を返します。
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

// Handlers はページハンドラーをまとめた構造体です。
type Handlers struct {
	publicDir string
	pickImage func() int
}

// NewHandlers はページハンドラーを作成します。
// publicDir は404フォールバック前に探索する静的ファイルのディレクトリです。
func NewHandlers(publicDir string) *Handlers {
	return &Handlers{
		publicDir: publicDir,
		// メンバーページの画像は {1,2,3} から一様に選ぶ
		pickImage: func() int { return rand.Intn(3) + 1 },
	}
}

// Home は GET / のハンドラーです。
func (h *Handlers) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", nil)
}

// SignupForm は GET /signup のハンドラーです。
func (h *Handlers) SignupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.tmpl", nil)
}

// LoginForm は GET /login のハンドラーです。
func (h *Handlers) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", nil)
}

// SignupFail は GET /signUpFail のハンドラーです。
// message クエリの内容はテンプレート側でエスケープされます。
func (h *Handlers) SignupFail(c *gin.Context) {
	c.HTML(http.StatusOK, "signup_fail.tmpl", gin.H{
		"Message": c.Query("message"),
	})
}

// LoginFail は GET /loginFail のハンドラーです。
// 失敗理由は出さない固定文言のみを表示します。
func (h *Handlers) LoginFail(c *gin.Context) {
	c.HTML(http.StatusOK, "login_fail.tmpl", nil)
}

// LoggedIn は GET /loggedin のハンドラーです。セッションゲートの後段で使います。
func (h *Handlers) LoggedIn(c *gin.Context) {
	c.HTML(http.StatusOK, "loggedin.tmpl", gin.H{
		"Username": c.GetString(auth.ContextUserKey),
	})
}

// Members は GET /members のハンドラーです。セッションゲートの後段で使います。
func (h *Handlers) Members(c *gin.Context) {
	c.HTML(http.StatusOK, "members.tmpl", gin.H{
		"Username": c.GetString(auth.ContextUserKey),
		"Image":    fmt.Sprintf("/frog%d.png", h.pickImage()),
	})
}

// Fallback はどのルートにも一致しなかったリクエストを処理します。
// 静的ファイルが見つかればそれを配信し、なければ404を返します。
func (h *Handlers) Fallback(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		// 先頭スラッシュを付けてからCleanし、ディレクトリ外への脱出を防ぐ
		name := path.Clean("/" + c.Request.URL.Path)
		file := filepath.Join(h.publicDir, filepath.FromSlash(name))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
	}
	c.String(http.StatusNotFound, "Page not found - 404")
}
