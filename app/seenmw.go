// app/seenmw.go
package app

import (
	"time"

	"magacin_backend/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// TouchLastSeen 给 account 打活跃时间戳，redis SetNX 节流，不阻塞请求。
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxAccountID)
		if !ok {
			c.Next()
			return
		}
		aid, _ := v.(string)
		if aid == "" {
			c.Next()
			return
		}

		key := "mag:lastseen:" + aid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchAccountSeen(c, aid) // 忽略错误
		}
		c.Next()
	}
}
