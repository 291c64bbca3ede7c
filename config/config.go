package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	IoUThreshold        float64
	MaxPolygonPoints    int
	MinTolerance        float64
	MaxTolerance        float64
	MaxSearchIterations int
	MinConfidence       float64

	TileSize     int
	OverlapRatio float64

	ResultsDB string

	TelegramToken  string
	TelegramChatID int64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		ResultsDB:     os.Getenv("RESULTS_DB"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.IoUThreshold, err = envFloat("IOU_THRESHOLD", 0.5); err != nil {
		return nil, err
	}
	if cfg.MaxPolygonPoints, err = envInt("MAX_POLYGON_POINTS", 60); err != nil {
		return nil, err
	}
	if cfg.MinTolerance, err = envFloat("MIN_TOLERANCE", 0.1); err != nil {
		return nil, err
	}
	if cfg.MaxTolerance, err = envFloat("MAX_TOLERANCE", 10); err != nil {
		return nil, err
	}
	if cfg.MaxSearchIterations, err = envInt("MAX_SEARCH_ITERATIONS", 10); err != nil {
		return nil, err
	}
	if cfg.MinConfidence, err = envFloat("MIN_CONFIDENCE", 0); err != nil {
		return nil, err
	}
	if cfg.TileSize, err = envInt("TILE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.OverlapRatio, err = envFloat("OVERLAP_RATIO", 0); err != nil {
		return nil, err
	}

	if cfg.IoUThreshold > 1 {
		return nil, fmt.Errorf("IOU_THRESHOLD %v exceeds 1", cfg.IoUThreshold)
	}
	if cfg.MinTolerance > cfg.MaxTolerance {
		return nil, fmt.Errorf("MIN_TOLERANCE %v exceeds MAX_TOLERANCE %v", cfg.MinTolerance, cfg.MaxTolerance)
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatID, err)
		}
	}

	return cfg, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
