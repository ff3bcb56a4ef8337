// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"docscan/internal/logger"
)

// Engine names accepted by OCR_ENGINE.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

type Config struct {
	// Server settings
	Host string
	Port int

	// Recognition engine settings
	Engine         string // tesseract or vision
	TesseractLang  string
	TessdataPrefix string

	// Upload limits
	MaxImageSize     int64
	SupportedFormats []string

	// ProcessingTimeout bounds one request end to end. Enforced at the
	// server layer, not inside the pipeline.
	ProcessingTimeout time.Duration

	// Logging settings
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:           getEnv("OCR_HOST", "0.0.0.0"),
		Engine:         getEnv("OCR_ENGINE", EngineTesseract),
		TesseractLang:  getEnv("TESSERACT_LANG", "eng"),
		TessdataPrefix: getEnv("TESSDATA_PREFIX", ""),
		SupportedFormats: []string{
			"image/jpeg", "image/png", "image/webp", "image/tiff",
		},
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	port, err := getEnvInt("OCR_PORT", 8000)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	maxSize, err := getEnvInt("MAX_IMAGE_SIZE", 10*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxImageSize = int64(maxSize)

	timeoutSecs, err := getEnvInt("PROCESSING_TIMEOUT", 300)
	if err != nil {
		return nil, err
	}
	cfg.ProcessingTimeout = time.Duration(timeoutSecs) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine != EngineTesseract && c.Engine != EngineVision {
		return fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", EngineTesseract, EngineVision, c.Engine)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("OCR_PORT out of range: %d", c.Port)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SupportsFormat reports whether a content type is accepted for upload.
func (c *Config) SupportsFormat(contentType string) bool {
	for _, f := range c.SupportedFormats {
		if f == contentType {
			return true
		}
	}
	return false
}

// GetLoggerConfig returns a logger configuration from the main config.
func (c *Config) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
