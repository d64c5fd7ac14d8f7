package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Server struct {
	Port         int
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DB struct {
	DbHOST         string
	DbPORT         string
	DbUSER         string
	DbPASSWORD     string
	DbNAME         string
	DbSSLMODE      string
	MigrationsPath string
}

type JWT struct {
	SecretKey           string
	AccessTokenDuration time.Duration
	Issuer              string
}

type OTP struct {
	Length int
	TTL    time.Duration
	// EchoCode returns the issued code in the login response. Only for local setups without mail delivery.
	EchoCode bool
}

type Notifier struct {
	Provider     string // log | smtp | ses
	FromAddress  string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SESRegion    string
	SESAccessKey string
	SESSecretKey string
	SendTimeout  time.Duration
}

type MinIO struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketName    string
	UseSSL        bool
	Region        string
	PublicBaseURL string
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Log struct {
	Level string
	Dev   bool
}

type Config struct {
	Server        Server
	DB            DB
	JWT           JWT
	OTP           OTP
	Notifier      Notifier
	MinIO         MinIO
	Redis         Redis
	Log           Log
	MaxUploadSize int64
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseDuration falls back when the value is not a valid Go duration.
func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}

func LoadServer() Server {
	return Server{
		Port:         getEnvAsInt("SERVER_PORT", 8000),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		ReadTimeout:  parseDuration(getEnv("SERVER_READ_TIMEOUT", "15s"), 15*time.Second),
		WriteTimeout: parseDuration(getEnv("SERVER_WRITE_TIMEOUT", "15s"), 15*time.Second),
	}
}

func LoadDB() DB {
	return DB{
		DbHOST:         getEnv("DB_HOST", "localhost"),
		DbPORT:         getEnv("DB_PORT", "5432"),
		DbUSER:         getEnv("DB_USER", "postgres"),
		DbPASSWORD:     getEnv("DB_PASSWORD", "password"),
		DbNAME:         getEnv("DB_NAME", "agenthub"),
		DbSSLMODE:      getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
	}
}

func LoadJWT() JWT {
	return JWT{
		SecretKey:           getEnv("JWT_SECRET_KEY", ""),
		AccessTokenDuration: parseDuration(getEnv("ACCESS_TOKEN_DURATION", "30m"), 30*time.Minute),
		Issuer:              getEnv("JWT_ISSUER", "agenthub"),
	}
}

func LoadOTP() OTP {
	length := getEnvAsInt("OTP_LENGTH", 6)
	if length < 4 || length > 10 {
		length = 6
	}

	return OTP{
		Length:   length,
		TTL:      parseDuration(getEnv("OTP_TTL", "5m"), 5*time.Minute),
		EchoCode: getEnvBool("OTP_ECHO_CODE", false),
	}
}

func LoadNotifier() Notifier {
	return Notifier{
		Provider:     strings.ToLower(getEnv("NOTIFIER_PROVIDER", "log")),
		FromAddress:  getEnv("NOTIFIER_FROM", "noreply@agenthub.local"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SESRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SESSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SendTimeout:  parseDuration(getEnv("NOTIFIER_SEND_TIMEOUT", "5s"), 5*time.Second),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName:    getEnv("MINIO_BUCKET_NAME", "listing-images"),
		UseSSL:        getEnvBool("MINIO_USE_SSL", false),
		Region:        getEnv("MINIO_REGION", "us-east-1"),
		PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
	}
}

func LoadRedis() Redis {
	return Redis{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func LoadLog() Log {
	dev := getEnvBool("LOG_DEV", false)
	level := getEnv("LOG_LEVEL", "")
	if level == "" {
		if dev {
			level = "debug"
		} else {
			level = "info"
		}
	}
	return Log{Level: level, Dev: dev}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server:        LoadServer(),
		DB:            LoadDB(),
		JWT:           LoadJWT(),
		OTP:           LoadOTP(),
		Notifier:      LoadNotifier(),
		MinIO:         LoadMinIO(),
		Redis:         LoadRedis(),
		Log:           LoadLog(),
		MaxUploadSize: parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
	}
}
