package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（不存在就忽略，跑容器时直接用环境变量）。
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		GetLogger().Info("no .env file, using process environment")
	}
}

func Get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
