package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig   `yaml:"databaseConfig"`
	RedisConfig    RedisConfig      `yaml:"redisConfig"`
	ServerAddr     string           `yaml:"serverAddr"`
	S3Config       S3Config         `yaml:"s3Config"`
	JWT            JWTConfig        `yaml:"jwt"`
	TTL            TTL              `yaml:"TTL"`
	Compaction     CompactionConfig `yaml:"compaction"`
}

// LoadConfig : читает yaml конфигурацию и накладывает поверх неё переменные окружения
// (из процесса или из файла .env, если он есть рядом)
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("не удалось прочитать .env: %v", err)
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyEnv() {
	overrides := map[string]*string{
		"JWT_SECRET":   &c.JWT.SecretKey,
		"DATABASE_DSN": &c.DatabaseConfig.DSN,
		"REDIS_ADDR":   &c.RedisConfig.Addr,
		"SERVER_ADDR":  &c.ServerAddr,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*target = value
		}
	}
}

func (c *AppConfig) validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("не задан jwt.secret_key (или JWT_SECRET)")
	}
	if c.Compaction.Interval == "" {
		c.Compaction.Interval = "1h"
	}
	if c.Compaction.BatchSize <= 0 {
		c.Compaction.BatchSize = 500
	}
	return nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    serverAddress,
		Handler: router,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
