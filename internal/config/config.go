package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DBDriver    string
	DatabaseDSN string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	JWTExpiry   time.Duration
	SwaggerHost string

	UploadDir       string
	UploadURLPrefix string
	UploadMaxSize   int64

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	RateLimit float64
	RateBurst int

	LoginMaxAttempts int
	LoginLockout     time.Duration

	LogLevel  string
	LogFormat string

	SeedAdminEmail    string
	SeedAdminUsername string
	SeedAdminPassword string
}

var defaults = map[string]interface{}{
	"SERVER_PORT":         "8080",
	"DB_DRIVER":           "mysql",
	"DATABASE_DSN":        "user:password@tcp(localhost:3306)/newsportal?charset=utf8mb4&parseTime=True&loc=Local",
	"RESET_DB":            false,
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_DB":            0,
	"REDIS_PASSWORD":      "",
	"JWT_SECRET":          "change-me",
	"JWT_EXPIRY":          "24h",
	"SWAGGER_HOST":        "",
	"UPLOAD_DIR":          "./uploads",
	"UPLOAD_URL_PREFIX":   "/uploads",
	"UPLOAD_MAX_SIZE":     10 << 20,
	"S3_ENDPOINT":         "",
	"S3_REGION":           "us-east-1",
	"S3_ACCESS_KEY":       "",
	"S3_SECRET_KEY":       "",
	"S3_BUCKET":           "",
	"S3_PUBLIC_URL":       "",
	"RATE_LIMIT":          20.0,
	"RATE_BURST":          40,
	"LOGIN_MAX_ATTEMPTS":  5,
	"LOGIN_LOCKOUT":       "15m",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"SEED_ADMIN_EMAIL":    "admin@example.com",
	"SEED_ADMIN_USERNAME": "admin",
	"SEED_ADMIN_PASSWORD": "change-me",
}

// Load builds Config from a .env file (when present) and the environment,
// falling back to sensible defaults.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		ResetDB:     v.GetBool("RESET_DB"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisDB:   v.GetInt("REDIS_DB"),
		RedisPass: v.GetString("REDIS_PASSWORD"),

		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTExpiry:   v.GetDuration("JWT_EXPIRY"),
		SwaggerHost: v.GetString("SWAGGER_HOST"),

		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: strings.TrimRight(v.GetString("UPLOAD_URL_PREFIX"), "/"),
		UploadMaxSize:   v.GetInt64("UPLOAD_MAX_SIZE"),

		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3Region:    v.GetString("S3_REGION"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3PublicURL: v.GetString("S3_PUBLIC_URL"),

		RateLimit: v.GetFloat64("RATE_LIMIT"),
		RateBurst: v.GetInt("RATE_BURST"),

		LoginMaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginLockout:     v.GetDuration("LOGIN_LOCKOUT"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		SeedAdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminUsername: v.GetString("SEED_ADMIN_USERNAME"),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}
}

// UseS3 reports whether object storage credentials are configured.
func (c *Config) UseS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}
