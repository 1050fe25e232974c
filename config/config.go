package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	PublicURL    string

	// SMTP / почтовый канал
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Cloudflare R2 — публикация сгенерированных документов
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// Шаблоны фирменных бланков и временная папка генерации
	TemplatesDir string
	OutputDir    string

	// Доменные настройки федерации
	ZoneEmailPattern   string // содержит токен {zone_id}
	FallbackZoneEmail  string
	NationalEmail      string // адрес национального комитета (CRC)
	NationalFolderCode string
	OverloadThreshold  int // назначений на арбитра до признания перегрузки
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	smtpPort, err := intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	overload, err := intEnv("OVERLOAD_THRESHOLD", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,
		PublicURL:    getEnvOrDefault("PUBLIC_URL", "http://localhost:8080"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnvOrDefault("SMTP_FROM", "noreply@federgolf.it"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),

		TemplatesDir: getEnvOrDefault("TEMPLATES_DIR", "storage/lettere_intestate"),
		OutputDir:    getEnvOrDefault("OUTPUT_DIR", os.TempDir()),

		ZoneEmailPattern:   getEnvOrDefault("ZONE_EMAIL_PATTERN", "szr{zone_id}@federgolf.it"),
		FallbackZoneEmail:  getEnvOrDefault("FALLBACK_ZONE_EMAIL", "arbitri@federgolf.it"),
		NationalEmail:      getEnvOrDefault("CRC_EMAIL", "crc@federgolf.it"),
		NationalFolderCode: getEnvOrDefault("NATIONAL_FOLDER_CODE", "CRC"),
		OverloadThreshold:  overload,
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
