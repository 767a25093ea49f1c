package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"magacin_backend/app"
	"magacin_backend/db"
	"magacin_backend/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 整条链路起起来：sqlite + miniredis + 真实的中间件和路由表。
func newTestApp(t *testing.T) *app.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	a := app.New(conn, rdb, app.Config{
		WebOrigin:   "http://localhost:5173",
		SessionTTL:  time.Hour,
		EmailDomain: "magacin.com",
	})
	RegisterRoutes(a.Router, a)
	return a
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, ck *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// login 返回会话 Cookie 和响应体。
func login(t *testing.T, r *gin.Engine, name, password, role string) (*http.Cookie, map[string]any) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"name": name, "password": password, "role": role,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ck *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == app.SessionCookie {
			ck = c
		}
	}
	require.NotNil(t, ck, "login must set the session cookie")

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return ck, out
}

func TestRestrictedRoleGetsForbiddenOnAdminLists(t *testing.T) {
	a := newTestApp(t)
	ck, _ := login(t, a.Router, "Ana", "lozinka1", "REZERVACIJA")

	// 策略闸门在服务端：entries/users 列表直接 403
	assert.Equal(t, http.StatusForbidden, doJSON(t, a.Router, http.MethodGet, "/api/entries", nil, ck).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, a.Router, http.MethodGet, "/api/users", nil, ck).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, a.Router, http.MethodPost, "/api/articles", gin.H{
		"code": "A1", "name": "Vijak", "location": "A-01",
	}, ck).Code)

	// 读 article、拉下拉列表照常放行
	assert.Equal(t, http.StatusOK, doJSON(t, a.Router, http.MethodGet, "/api/articles", nil, ck).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, a.Router, http.MethodGet, "/api/users/pickers?role=REZERVACIJA", nil, ck).Code)
}

func TestAdminPassesAdminGates(t *testing.T) {
	a := newTestApp(t)
	ck, _ := login(t, a.Router, "Marko", "lozinka1", "MAGACIN_ADMIN")

	assert.Equal(t, http.StatusOK, doJSON(t, a.Router, http.MethodGet, "/api/entries", nil, ck).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, a.Router, http.MethodGet, "/api/users", nil, ck).Code)
}

func TestNoSessionIsUnauthorized(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, a.Router, http.MethodGet, "/api/articles", nil, nil).Code)
}

func TestProfileLessSessionDegradesToReadOnly(t *testing.T) {
	a := newTestApp(t)
	ck, _ := login(t, a.Router, "Zoran", "lozinka1", "PREUZIMANJE")

	// 档案被直接删掉（会话还活着）：降级成只读，不是 401
	require.NoError(t, a.DB.Where("email = ?", "zoran@magacin.com").Delete(&models.User{}).Error)

	assert.Equal(t, http.StatusOK, doJSON(t, a.Router, http.MethodGet, "/api/articles", nil, ck).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, a.Router, http.MethodGet, "/api/entries", nil, ck).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, a.Router, http.MethodPost, "/api/reservations", gin.H{
		"articleId": uuid.NewString(), "quantity": 1,
		"userId": uuid.NewString(), "reservationCode": "REZ0001",
	}, ck).Code)

	w := doJSON(t, a.Router, http.MethodGet, "/auth/whoami", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Nil(t, out["user"])
	assert.Equal(t, "", out["role"])
}

func TestRestrictedStreamsForbidden(t *testing.T) {
	a := newTestApp(t)
	ck, _ := login(t, a.Router, "Ana", "lozinka1", "REZERVACIJA")

	assert.Equal(t, http.StatusForbidden,
		doJSON(t, a.Router, http.MethodGet, "/api/stream?collections=mag_users", nil, ck).Code)
	assert.Equal(t, http.StatusForbidden,
		doJSON(t, a.Router, http.MethodGet, "/api/stream?collections=mag_entries", nil, ck).Code)
	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, a.Router, http.MethodGet, "/api/stream?collections=nepoznato", nil, ck).Code)
}

func TestConfirmationCodeLengthRejectedBeforeIO(t *testing.T) {
	a := newTestApp(t)
	ck, _ := login(t, a.Router, "Ana", "lozinka1", "REZERVACIJA")

	for _, code := range []string{"REZ001", "REZ00001"} { // 6 位和 8 位都不行
		w := doJSON(t, a.Router, http.MethodPost, "/api/reservations", gin.H{
			"articleId": uuid.NewString(), "quantity": 1,
			"userId": uuid.NewString(), "reservationCode": code,
		}, ck)
		assert.Equal(t, http.StatusBadRequest, w.Code, "code %q", code)
	}
}

func TestRepeatLoginKeepsRole(t *testing.T) {
	a := newTestApp(t)
	_, first := login(t, a.Router, "Ana", "lozinka1", "REZERVACIJA")
	assert.Equal(t, "REZERVACIJA", first["role"])

	// 第二次登录换个 role 提交：已有档案的角色不动
	ck, second := login(t, a.Router, "Ana", "lozinka1", "PREUZIMANJE")
	assert.Equal(t, "REZERVACIJA", second["role"])

	w := doJSON(t, a.Router, http.MethodGet, "/auth/whoami", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "REZERVACIJA", out["role"])
}

func TestRepeatLoginWrongPassword(t *testing.T) {
	a := newTestApp(t)
	login(t, a.Router, "Ana", "lozinka1", "REZERVACIJA")

	w := doJSON(t, a.Router, http.MethodPost, "/auth/login", gin.H{
		"name": "Ana", "password": "pogresna", "role": "REZERVACIJA",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
