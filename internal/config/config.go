package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at process start and passed to constructors.
// Nothing re-reads the environment after boot.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	NATSURL    string
	JobSubject string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	RedisAddr string
	RedisDB   int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	FrontendURL  string

	FFmpegBin    string
	WhisperBin   string
	WhisperModel string
	ModelDir     string

	SupportedLanguages []string

	FreeMinutesLimit    int
	StudentMinutesLimit int
	ProMinutesLimit     int

	WorkerConcurrency int
	JobMaxRetries     int
	JobRetryBackoff   time.Duration
	JobTimeout        time.Duration
	SummaryMaxRetries int
	PollInterval      time.Duration

	RetentionDays    int
	EnableCleanupJob bool

	MaxUploadBytes int64
	TempDir        string

	ListenAddr         string
	MetricsAddr        string
	RateLimitPerSecond int
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Falling back to OS environment variables.")
	}

	return Config{
		DBHost:     getEnv("DB_HOST", "db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "vidlecta"),
		DBPassword: getEnv("DB_PASSWORD", "vidlecta"),
		DBName:     getEnv("DB_NAME", "vidlecta"),

		NATSURL:    getEnv("NATS_URL", "nats://nats1:4222"),
		JobSubject: getEnv("NATS_JOB_SUBJECT", "jobs.transcribe"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "vidlecta-uploads"),
		MinioSecure:    getEnvBool("MINIO_SECURE", false),

		RedisAddr: getEnv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@vidlecta.com"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost"),

		FFmpegBin:    getEnv("FFMPEG_BIN", "ffmpeg"),
		WhisperBin:   getEnv("WHISPER_BIN", "whisper.cpp"),
		WhisperModel: getEnv("WHISPER_MODEL", "small"),
		ModelDir:     getEnv("WHISPER_MODEL_DIR", "/models"),

		SupportedLanguages: getEnvList("SUPPORTED_LANGUAGES", []string{"en", "ru"}),

		FreeMinutesLimit:    getEnvInt("FREE_MINUTES_LIMIT", 60),
		StudentMinutesLimit: getEnvInt("STUDENT_MINUTES_LIMIT", 300),
		ProMinutesLimit:     getEnvInt("PRO_MINUTES_LIMIT", 999999),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 2),
		JobMaxRetries:     getEnvInt("JOB_MAX_RETRIES", 3),
		JobRetryBackoff:   getEnvDuration("JOB_RETRY_BACKOFF", time.Minute),
		JobTimeout:        getEnvDuration("JOB_TIMEOUT", 30*time.Minute),
		SummaryMaxRetries: getEnvInt("SUMMARY_MAX_RETRIES", 2),
		PollInterval:      getEnvDuration("POLL_INTERVAL", 30*time.Second),

		RetentionDays:    getEnvInt("STORAGE_RETENTION_DAYS", 7),
		EnableCleanupJob: getEnvBool("ENABLE_CLEANUP_JOB", true),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 1024*1024*1024),
		TempDir:        getEnv("TEMP_DIR", os.TempDir()),

		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr:        getEnv("METRICS_ADDR", ":9090"),
		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 10),
	}
}

func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// LanguageSupported accepts the fixed language set plus "auto" for detection.
func (c Config) LanguageSupported(lang string) bool {
	if lang == "auto" {
		return true
	}
	for _, l := range c.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid %s value %q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value %q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Invalid %s value %q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s value %q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
