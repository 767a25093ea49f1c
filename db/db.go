package db

import (
	"fmt"
	"os"

	"magacin_backend/config"
	"magacin_backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	log := config.GetLogger()
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Info("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.User{},
		&models.Article{},
		&models.Reservation{},
		&models.Pickup{},
		&models.Entry{},
	); err != nil {
		return err
	}

	// 下面的索引/约束只在 Postgres 上建（测试用 sqlite 跑 AutoMigrate 即可）
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	// available 派生列的数据库兜底：应用层已拒绝负值，这里再上一道闩
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_available_nonneg;
	`, models.ArticleTable, models.ArticleTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_available_nonneg CHECK (available >= 0);
	`, models.ArticleTable, models.ArticleTable)).Error; err != nil {
		return err
	}

	// 列表默认按时间倒序，建好对应索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_created_at_desc
	  ON %s (created_at DESC);
	`, models.ArticleTable, models.ArticleTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_entry_date_desc
	  ON %s (entry_date DESC);
	`, models.EntryTable, models.EntryTable)).Error; err != nil {
		return err
	}

	return nil
}
