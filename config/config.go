package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置结构体
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	Suggestion SuggestionConfig `yaml:"suggestion"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// DatabaseConfig 数据库配置
// Driver: mysql/postgres/sqlite，sqlite 时 Database 为文件路径或 :memory:
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // 数据库驱动类型
	Host     string `yaml:"host"`     // 数据库主机地址
	Port     int    `yaml:"port"`     // 数据库端口
	Username string `yaml:"username"` // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	Database string `yaml:"database"` // 数据库名称
	Charset  string `yaml:"charset"`  // 字符集
	MaxIdle  int    `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen"`  // 最大打开连接数
	LogLevel string `yaml:"logLevel"` // SQL日志级别 silent/error/warn/info
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // JWT密钥
	ExpireTime time.Duration `yaml:"expireTime"` // JWT过期时间
	Issuer     string        `yaml:"issuer"`     // JWT签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval"` // 发送ping的间隔
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读超时时间（未收到任何数据则断开）
}

// SuggestionConfig 好友推荐配置
type SuggestionConfig struct {
	Limit    int           `yaml:"limit"`    // 默认返回条数
	PoolCap  int           `yaml:"poolCap"`  // 候选池上限，0 表示不限制
	CacheTTL time.Duration `yaml:"cacheTTL"` // 推荐结果缓存时间，0 表示不缓存
}

// LoadConfig 加载配置（混合方式：YAML文件 + .env + 环境变量）
func LoadConfig() *Config {
	// 1. 加载 .env（不存在则忽略，直接使用系统环境变量）
	_ = godotenv.Load()

	// 2. 从YAML文件加载默认配置
	config := loadFromYAML(getEnv("CONFIG_PATH", "config/config.yaml"))

	// 3. 用环境变量覆盖配置（环境变量优先级更高）
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置
// 文件中缺失的字段保留默认值
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		// 如果文件不存在，返回默认配置
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		// 如果解析失败，返回默认配置
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
// 未设置或格式错误的变量保持原值
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	envString(&config.Server.Port, "SERVER_PORT")
	envPositiveDuration(&config.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	envPositiveDuration(&config.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	envPositiveDuration(&config.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")

	// 数据库配置
	db := &config.Database
	envString(&db.Driver, "DB_DRIVER")
	envString(&db.Host, "DB_HOST")
	envPositiveInt(&db.Port, "DB_PORT")
	envString(&db.Username, "DB_USERNAME")
	envString(&db.Password, "DB_PASSWORD")
	envString(&db.Database, "DB_DATABASE")
	envString(&db.Charset, "DB_CHARSET")
	envPositiveInt(&db.MaxIdle, "DB_MAX_IDLE")
	envPositiveInt(&db.MaxOpen, "DB_MAX_OPEN")
	envString(&db.LogLevel, "DB_LOG_LEVEL")

	// JWT配置
	envString(&config.JWT.Secret, "JWT_SECRET")
	envPositiveDuration(&config.JWT.ExpireTime, "JWT_EXPIRE_TIME")
	envString(&config.JWT.Issuer, "JWT_ISSUER")

	// 日志配置
	envString(&config.Log.Level, "LOG_LEVEL")
	envString(&config.Log.Filename, "LOG_FILENAME")
	envPositiveInt(&config.Log.MaxSize, "LOG_MAX_SIZE")
	envPositiveInt(&config.Log.MaxBackups, "LOG_MAX_BACKUPS")
	envPositiveInt(&config.Log.MaxAge, "LOG_MAX_AGE")
	envBool(&config.Log.Compress, "LOG_COMPRESS")

	// Redis配置（DB 允许为 0）
	envString(&config.Redis.Host, "REDIS_HOST")
	envPositiveInt(&config.Redis.Port, "REDIS_PORT")
	envString(&config.Redis.Password, "REDIS_PASSWORD")
	envNonNegativeInt(&config.Redis.DB, "REDIS_DB")

	// WebSocket配置
	envPositiveDuration(&config.WebSocket.PingInterval, "WS_PING_INTERVAL")
	envPositiveDuration(&config.WebSocket.ReadTimeout, "WS_READ_TIMEOUT")

	// 推荐配置（PoolCap 与 CacheTTL 可显式设为 0 以关闭）
	envPositiveInt(&config.Suggestion.Limit, "SUGGESTION_LIMIT")
	envNonNegativeInt(&config.Suggestion.PoolCap, "SUGGESTION_POOL_CAP")
	envNonNegativeDuration(&config.Suggestion.CacheTTL, "SUGGESTION_CACHE_TTL")
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "social_user",
			Password: "",
			Database: "campus_social",
			Charset:  "utf8mb4",
			MaxIdle:  10,
			MaxOpen:  100,
			LogLevel: "warn",
		},
		JWT: JWTConfig{
			Secret:     "your-secret-key",
			ExpireTime: 24 * time.Hour,
			Issuer:     "campus-social",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
		},
		Suggestion: SuggestionConfig{
			Limit:    10,
			PoolCap:  500,
			CacheTTL: time.Minute,
		},
	}
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func envInt(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil
}

func envPositiveInt(dst *int, key string) {
	if n, ok := envInt(key); ok && n > 0 {
		*dst = n
	}
}

func envNonNegativeInt(dst *int, key string) {
	if n, ok := envInt(key); ok && n >= 0 {
		*dst = n
	}
}

func envBool(dst *bool, key string) {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = b
	}
}

func envDuration(key string) (time.Duration, bool) {
	d, err := time.ParseDuration(os.Getenv(key))
	return d, err == nil
}

func envPositiveDuration(dst *time.Duration, key string) {
	if d, ok := envDuration(key); ok && d > 0 {
		*dst = d
	}
}

func envNonNegativeDuration(dst *time.Duration, key string) {
	if d, ok := envDuration(key); ok && d >= 0 {
		*dst = d
	}
}
