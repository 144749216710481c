package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	BackendFilesystem = "filesystem"
	BackendPostgres   = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ArtifactBackend  string
	ArtifactRoot     string
	ArtifactCacheDir string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresTimeout  int

	WorkDir    string
	OutputFile string

	LogLevel       string
	PushgatewayURL string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	root := getEnv("ARTIFACT_ROOT", "./artifacts")

	return &Config{
		ArtifactBackend:  getEnv("ARTIFACT_BACKEND", BackendFilesystem),
		ArtifactRoot:     root,
		ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", filepath.Join(root, ".cache")),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "mlops"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "mlops"),
		PostgresDB:       getEnv("POSTGRES_DB", "artifacts"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeout:  getEnvInt("POSTGRES_CONNECT_TIMEOUT", 10),

		WorkDir:    getEnv("WORK_DIR", "."),
		OutputFile: getEnv("OUTPUT_FILE", "clean_sample.csv"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode +
		" connect_timeout=" + strconv.Itoa(c.PostgresTimeout)
}

// OutputPath is where the cleaned CSV is written before it is logged.
func (c *Config) OutputPath() string {
	return filepath.Join(c.WorkDir, c.OutputFile)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
