package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"magacin_backend/config"
	"magacin_backend/db"
	"magacin_backend/session"
	"magacin_backend/stock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config

	sessions *session.Store
}

// Config 从环境变量读取
type Config struct {
	RedisAddr  string
	RedisPwd   string
	WebOrigin  string
	SessionTTL time.Duration

	// 业务配置
	EmailDomain     string // 派生邮箱的固定域名
	LowThreshold    int    // available 低于这个值算 low
	StockAutoAdjust bool   // 预订/提货/进货联动库存计数

	// 首个管理员引导
	BootstrapName     string
	BootstrapPassword string
}

func (a *App) Sessions() *session.Store { return a.sessions }

// New 用现成的连接组装 App；测试里配 sqlite + miniredis 也走这条路。
func New(dbConn *gorm.DB, rdb *redis.Client, cfg Config) *App {
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg,
		sessions: session.NewStore(rdb, cfg.SessionTTL),
	}
}

func MustNew() *App {
	cfg := loadConfig()
	log := config.GetLogger()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	return New(dbConn, rdb, cfg)
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := config.Get

	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(get("SESSION_TTL_SECONDS", "86400") + "s"); err == nil {
		ttl = d
	}

	low := stock.DefaultLowThreshold
	if n, err := strconv.Atoi(get("STOCK_LOW_THRESHOLD", "")); err == nil && n > 0 {
		low = n
	}

	autoAdjust := strings.EqualFold(get("STOCK_AUTO_ADJUST", "false"), "true")

	return Config{
		RedisAddr:  get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:   get("REDIS_PASSWORD", ""),
		WebOrigin:  get("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL: ttl,

		EmailDomain:     get("EMAIL_DOMAIN", "magacin.com"),
		LowThreshold:    low,
		StockAutoAdjust: autoAdjust,

		BootstrapName:     get("BOOTSTRAP_ADMIN_NAME", ""),
		BootstrapPassword: get("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}
}
