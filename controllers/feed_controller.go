// controllers/feed_controller.go
package controllers

import (
	"io"
	"net/http"
	"strings"

	"magacin_backend/app"
	"magacin_backend/feed"
	"magacin_backend/models"
	"magacin_backend/policy"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// FeedController 把 redis 上的变更事件用 SSE 推给浏览器。
// 客户端收到事件后重拉对应列表 —— 至少一次投递，刷新必须幂等。
type FeedController struct {
	*Srv
	RDB *redis.Client
}

func NewFeedController(s *Srv, rdb *redis.Client) *FeedController {
	return &FeedController{Srv: s, RDB: rdb}
}

// 可订阅的集合；entries/users 要管理员权限
var streamable = map[string]bool{
	models.ArticleTable:     true,
	models.ReservationTable: true,
	models.PickupTable:      true,
	models.EntryTable:       true,
	models.UserTable:        true,
}

// 受限集合各看各的权限，跟对应列表接口一致
var streamGate = map[string]func(policy.Permissions) bool{
	models.EntryTable: func(p policy.Permissions) bool { return p.ViewEntries },
	models.UserTable:  func(p policy.Permissions) bool { return p.ManageUsers },
}

// GET /api/stream?collections=mag_articles,mag_reservations
func (fc *FeedController) Stream(c *gin.Context) {
	raw := c.DefaultQuery("collections",
		strings.Join([]string{models.ArticleTable, models.ReservationTable, models.PickupTable}, ","))

	perms := app.PermissionsOf(c)
	var collections []string
	for _, col := range strings.Split(raw, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if !streamable[col] {
			c.JSON(http.StatusBadRequest, app.H{"error": "unknown collection: " + col})
			return
		}
		if gate, ok := streamGate[col]; ok && !gate(perms) {
			c.JSON(http.StatusForbidden, app.H{"error": "forbidden collection: " + col})
			return
		}
		collections = append(collections, col)
	}
	if len(collections) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "no collections requested"})
		return
	}

	sub := feed.NewSubscriber(fc.RDB)
	defer sub.UnsubscribeAll()

	events := make(chan feed.Event, 32)
	for _, col := range collections {
		if err := sub.Subscribe(c.Request.Context(), col, func(ev feed.Event) {
			select {
			case events <- ev:
			default:
				// 客户端消费太慢就丢，反正它会整表重拉
			}
		}); err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case ev := <-events:
			c.SSEvent("change", ev)
			return true
		}
	})
}
