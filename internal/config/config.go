package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // terminal job status cache TTL
}

type WorkerConfig struct {
	Count             int           `yaml:"count"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	OutputWaitTimeout time.Duration `yaml:"output_wait_timeout"`
	ScratchDir        string        `yaml:"scratch_dir"`
}

// ToolsConfig points at the external conversion binaries. Paths default to
// bare names resolved via PATH.
type ToolsConfig struct {
	Soffice     string `yaml:"soffice"`
	OcrMyPDF    string `yaml:"ocrmypdf"`
	PDFToDocx   string `yaml:"pdf2docx"`
	PDFToText   string `yaml:"pdftotext"`
	FFmpeg      string `yaml:"ffmpeg"`
	OCRLanguage string `yaml:"ocr_language"`
}

type LimitsConfig struct {
	MaxUploadBytes    int64 `yaml:"max_upload_bytes"`
	RequestsPerMinute int   `yaml:"requests_per_minute"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Worker   WorkerConfig   `yaml:"worker"`
	Tools    ToolsConfig    `yaml:"tools"`
	Limits   LimitsConfig   `yaml:"limits"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.SessionSecret == "" {
		return nil, errors.New("server.session_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 10 * time.Minute
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = 500 * time.Millisecond
	}
	if cfg.Worker.OutputWaitTimeout <= 0 {
		cfg.Worker.OutputWaitTimeout = 30 * time.Second
	}
	if cfg.Worker.ScratchDir == "" {
		cfg.Worker.ScratchDir = os.TempDir()
	}
	if cfg.Tools.Soffice == "" {
		cfg.Tools.Soffice = "soffice"
	}
	if cfg.Tools.OcrMyPDF == "" {
		cfg.Tools.OcrMyPDF = "ocrmypdf"
	}
	if cfg.Tools.PDFToDocx == "" {
		cfg.Tools.PDFToDocx = "pdf2docx"
	}
	if cfg.Tools.PDFToText == "" {
		cfg.Tools.PDFToText = "pdftotext"
	}
	if cfg.Tools.FFmpeg == "" {
		cfg.Tools.FFmpeg = "ffmpeg"
	}
	if cfg.Tools.OCRLanguage == "" {
		cfg.Tools.OCRLanguage = "ara"
	}
	if cfg.Limits.MaxUploadBytes <= 0 {
		cfg.Limits.MaxUploadBytes = 256 << 20
	}
	if cfg.Limits.RequestsPerMinute <= 0 {
		cfg.Limits.RequestsPerMinute = 30
	}
}
