package routes

import (
	"time"

	"magacin_backend/app"
	"magacin_backend/controllers"
	"magacin_backend/policy"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	articleCtl := controllers.NewArticleController(s)
	stockCtl := controllers.NewStockController(s)
	userCtl := controllers.NewUserController(s)
	exportCtl := controllers.NewExportController(s)
	feedCtl := controllers.NewFeedController(s, a.RDB)

	// 复用的中间件
	authMW := app.AuthRequired(s.Sess, s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 认证（公开 + 受保护）
	// ------------------------------
	r.POST("/auth/login", authCtl.Login)

	auth := r.Group("/auth", authMW, seenMW)
	{
		auth.POST("/logout", authCtl.Logout)
		auth.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// Articles：读所有角色，写管理员
	// ------------------------------
	articles := r.Group("/api/articles", authMW, seenMW)
	{
		articles.GET("", articleCtl.List)
		articles.GET("/:id", articleCtl.Get)
	}
	articlesAdmin := r.Group("/api/articles", authMW, adminMW)
	{
		articlesAdmin.POST("", articleCtl.Create)
		articlesAdmin.PUT("/:id", articleCtl.Update)
		articlesAdmin.DELETE("/:id", articleCtl.Delete)
		articlesAdmin.POST("/:id/adjust", articleCtl.Adjust)
	}

	// ------------------------------
	// 预订 / 提货：读所有角色，创建要对应权限，删除管理员
	// ------------------------------
	canReserve := app.RequirePermission(func(p policy.Permissions) bool { return p.CreateReservations })
	canPickup := app.RequirePermission(func(p policy.Permissions) bool { return p.CreatePickups })
	canDelete := app.RequirePermission(func(p policy.Permissions) bool { return p.DeleteRecords })

	reservations := r.Group("/api/reservations", authMW, seenMW)
	{
		reservations.GET("", stockCtl.ListReservations)
		reservations.POST("", canReserve, stockCtl.CreateReservation)
		reservations.DELETE("/:id", canDelete, stockCtl.DeleteReservation)
	}

	pickups := r.Group("/api/pickups", authMW, seenMW)
	{
		pickups.GET("", stockCtl.ListPickups)
		pickups.POST("", canPickup, stockCtl.CreatePickup)
		pickups.DELETE("/:id", canDelete, stockCtl.DeletePickup)
	}

	// ------------------------------
	// 进货：整组只对管理员开放（策略闸门，不是前端藏按钮）
	// ------------------------------
	entries := r.Group("/api/entries", authMW, adminMW)
	{
		entries.GET("", stockCtl.ListEntries)
		entries.POST("", stockCtl.CreateEntry)
		entries.DELETE("/:id", stockCtl.DeleteEntry)
	}

	// ------------------------------
	// 用户管理：列表/增删/改角色管理员；pickers 所有登录用户
	// ------------------------------
	users := r.Group("/api/users", authMW, seenMW)
	{
		users.GET("/pickers", userCtl.Pickers)
	}
	usersAdmin := r.Group("/api/users", authMW, adminMW)
	{
		usersAdmin.GET("", userCtl.List)
		usersAdmin.GET("/:id", userCtl.Get)
		usersAdmin.POST("", userCtl.Create)
		usersAdmin.PUT("/:id/role", userCtl.UpdateRole)
		usersAdmin.DELETE("/:id", userCtl.Delete)
	}

	// ------------------------------
	// 导出 / 导入
	// ------------------------------
	export := r.Group("/api/export", authMW, seenMW)
	{
		export.GET("/articles.xlsx", exportCtl.ExportExcel)
		export.GET("/articles.pdf", exportCtl.ExportPDF)
	}
	r.POST("/api/import/articles", authMW, adminMW, exportCtl.ImportExcel)

	// ------------------------------
	// 变更推送（SSE）
	// ------------------------------
	r.GET("/api/stream", authMW, feedCtl.Stream)
}
