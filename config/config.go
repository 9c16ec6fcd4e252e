package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port          string `yaml:"port"`
	DatabaseURL   string `yaml:"database_url"`
	AutoMigrate   bool   `yaml:"auto_migrate"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	JWTSecret     string `yaml:"jwt_secret"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // 'text' | 'json'

	AdminWallets []string `yaml:"admin_wallets"`

	// 每个钱包每秒请求数 / 突发上限
	RateLimitRPS   int `yaml:"rate_limit_rps"`
	RateLimitBurst int `yaml:"rate_limit_burst"`

	UsernameAPIURL     string        `yaml:"username_api_url"`
	ProfilePictureTTL  time.Duration `yaml:"profile_picture_ttl"`
	NotificationURL    string        `yaml:"notification_url"`
	NotificationAppID  string        `yaml:"notification_app_id"`
	NotificationPath   string        `yaml:"notification_path"`
	ExternalAPITimeout time.Duration `yaml:"external_api_timeout"`
}

func Load() *Config {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rps, _ := strconv.Atoi(getEnv("RATE_LIMIT_RPS", "10"))
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	pictureTTL, err := time.ParseDuration(getEnv("PROFILE_PICTURE_TTL", "1h"))
	if err != nil {
		pictureTTL = time.Hour
	}
	apiTimeout, err := time.ParseDuration(getEnv("EXTERNAL_API_TIMEOUT", "10s"))
	if err != nil {
		apiTimeout = 10 * time.Second
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AutoMigrate:        getEnv("AUTO_MIGRATE", "false") == "true",
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		AdminWallets:       splitList(os.Getenv("ADMIN_WALLETS")),
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		UsernameAPIURL:     getEnv("USERNAME_API_URL", "https://usernames.worldcoin.org/api/v1"),
		ProfilePictureTTL:  pictureTTL,
		NotificationURL:    getEnv("NOTIFICATION_URL", "https://developer.worldcoin.org/api/v2/minikit/send-notification"),
		NotificationAppID:  os.Getenv("APP_ID"),
		NotificationPath:   getEnv("NOTIFICATION_PATH", "/home"),
		ExternalAPITimeout: apiTimeout,
	}

	// 可选 YAML 配置文件，覆盖环境变量中的同名字段
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.Overlay(path); err != nil {
			log.WithError(err).Warnf("Failed to load config file %s", path)
		} else {
			log.Infof("[CONFIG] Loaded configuration from %s", path)
		}
	}

	return cfg
}

// Overlay 读取 YAML 文件并覆盖已设置的字段
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// IsAdmin 检查钱包是否在管理员列表中
func (c *Config) IsAdmin(wallet string) bool {
	for _, w := range c.AdminWallets {
		if strings.EqualFold(w, wallet) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
