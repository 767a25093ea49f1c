package main

import (
	"context"
	"os"

	"magacin_backend/app"
	"magacin_backend/config"
	"magacin_backend/db"
	"magacin_backend/routes"
)

func main() {
	config.LoadEnv()
	log := config.GetLogger()

	application := app.MustNew()
	defer application.Close()

	// 没有管理员时从环境变量种一个
	repo := db.NewRepo(application.DB)
	app.BootstrapFirstAdmin(context.Background(), application.Config, repo)

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Infof("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
