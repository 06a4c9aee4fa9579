package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LangDir        string
	Language       string
	PlayerName     string
	PlayerSex      string
	ScoreCutoff    float64
	Scorer         string
	WorkerCount    int
	ModelFile      string
	DatabaseURL    string
	SQLitePath     string
	DatasetBackend string
	Neo4jURI       string
	Neo4jUser      string
	Neo4jPassword  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		LangDir:        getEnv("LANG_DIR", "languages"),
		Language:       getEnv("LANGUAGE", "en"),
		PlayerName:     getEnv("PLAYER_NAME", ""),
		PlayerSex:      getEnv("PLAYER_SEX", ""),
		ScoreCutoff:    getEnvFloat("SCORE_CUTOFF", 80),
		Scorer:         getEnv("SCORER", "ratio"),
		WorkerCount:    getEnvInt("WORKER_COUNT", 8),
		ModelFile:      getEnv("MODEL_FILE", ""),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/lang_resolver?sslmode=disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "lang-resolver.db"),
		DatasetBackend: getEnv("DATASET_BACKEND", "sqlite"),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
	}
}

// LanguagePath is the directory holding the selected language's catalog files.
func (c *Config) LanguagePath() string {
	return filepath.Join(c.LangDir, c.Language)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid number, using default")
		return fallback
	}
	return f
}
