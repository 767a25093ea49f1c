// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"magacin_backend/app"
	"magacin_backend/db"
	"magacin_backend/feed"
	"magacin_backend/session"
	"magacin_backend/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Srv struct {
	Repo      *db.Repo
	Sess      *session.Store
	Feed      *feed.Publisher
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	repo.AutoAdjust = a.Config.StockAutoAdjust
	return &Srv{
		Repo:      repo,
		Sess:      a.Sessions(),
		Feed:      feed.NewPublisher(a.RDB),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// 统一设置会话 Cookie
func (s *Srv) setSessionCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	age := int(maxAge / time.Second)
	if maxAge < 0 {
		age = -1 // 立即过期（登出）
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   age,
	})
}

// 登录成功：建会话 + 登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, accountID, email, ip, ua string) error {
	_ = s.Repo.TouchAccountLogin(ctx, accountID, ip, ua) // 快照写失败不拦登录
	id := uuid.NewString()
	if err := s.Sess.Create(ctx, id, accountID, email); err != nil {
		return err
	}
	s.setSessionCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// publish 变更通知失败只记不在场；订阅方靠幂等刷新兜底
func (s *Srv) publish(ctx context.Context, collection string, action feed.Action, id string) {
	_ = s.Feed.Publish(ctx, collection, action, id)
}

// persistenceStatus 把网关错误映射成 HTTP 状态码；错误文本原样透传给前端。
func persistenceStatus(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, stock.ErrNegativeAvailable),
		errors.Is(err, stock.ErrNegativeQuantity),
		errors.Is(err, stock.ErrNegativeReserved):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
