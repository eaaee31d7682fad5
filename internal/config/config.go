// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev        bool
	ConfigPath string // empty when no file was read
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	APIKey            string        `yaml:"api_key"` // empty disables the x-api-key check
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console|auto
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ScratchConfig struct {
	Root string `yaml:"root"`
}

type ResultsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type PipelineConfig struct {
	FFmpegPath       string        `yaml:"ffmpeg_path"`
	Width            int           `yaml:"width"`
	Height           int           `yaml:"height"`
	FPS              int           `yaml:"fps"`
	VideoCodec       string        `yaml:"video_codec"`
	Preset           string        `yaml:"preset"`
	BaseCRF          int           `yaml:"base_crf"`
	FinalCRF         int           `yaml:"final_crf"`
	AudioCodec       string        `yaml:"audio_codec"`
	AudioBitrate     string        `yaml:"audio_bitrate"`
	OutputLimitBytes int           `yaml:"output_limit_bytes"` // per stream capture cap
	TranscodeTimeout time.Duration `yaml:"transcode_timeout"`  // 0 = no timeout
}

type FetchConfig struct {
	Mode      string        `yaml:"mode"` // http | ffmpeg
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type WorkerConfig struct {
	Count      int           `yaml:"count"`
	QueueSize  int           `yaml:"queue_size"`
	SubmitWait time.Duration `yaml:"submit_wait"` // 0 = block until the job finishes
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty keeps job state in memory
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Scratch  ScratchConfig  `yaml:"scratch"`
	Results  ResultsConfig  `yaml:"results"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Worker   WorkerConfig   `yaml:"worker"`
	Redis    RedisConfig    `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

const DefaultConfigPath = "config.yaml"

const (
	FetchModeHTTP   = "http"
	FetchModeFFmpeg = "ffmpeg"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the YAML file at path, layers .env and environment
// overrides on top, applies defaults and validates the result. A missing
// file at the default path is not an error; an explicit path must exist.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.Runtime.ConfigPath = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("REELSTITCH_API_KEY"); ok {
		c.Server.APIKey = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("FFMPEG_PATH"); ok && v != "" {
		c.Pipeline.FFmpegPath = v
	}
	if v, ok := lookup("SCRATCH_DIR"); ok && v != "" {
		c.Scratch.Root = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		c.Redis.URL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "auto"
	}
	if c.Scratch.Root == "" {
		c.Scratch.Root = filepath.Join(os.TempDir(), "reelstitch")
	}
	if abs, err := filepath.Abs(c.Scratch.Root); err == nil {
		c.Scratch.Root = abs
	}
	c.Results.TTL = normalizeDuration(c.Results.TTL, 30*time.Minute)
	c.Results.SweepInterval = normalizeDuration(c.Results.SweepInterval, time.Minute)

	p := &c.Pipeline
	if p.FFmpegPath == "" {
		p.FFmpegPath = "ffmpeg"
	}
	if p.Width == 0 {
		p.Width = 1080
	}
	if p.Height == 0 {
		p.Height = 1920
	}
	if p.FPS == 0 {
		p.FPS = 30
	}
	if p.VideoCodec == "" {
		p.VideoCodec = "libx264"
	}
	if p.Preset == "" {
		p.Preset = "veryfast"
	}
	if p.BaseCRF == 0 {
		p.BaseCRF = 18
	}
	if p.FinalCRF == 0 {
		p.FinalCRF = 20
	}
	if p.AudioCodec == "" {
		p.AudioCodec = "aac"
	}
	if p.AudioBitrate == "" {
		p.AudioBitrate = "192k"
	}
	if p.OutputLimitBytes <= 0 {
		p.OutputLimitBytes = 64 << 10
	}

	if c.Fetch.Mode == "" {
		c.Fetch.Mode = FetchModeHTTP
	}
	c.Fetch.Mode = strings.ToLower(strings.TrimSpace(c.Fetch.Mode))
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "reelstitch/1.0"
	}

	if c.Worker.Count <= 0 {
		c.Worker.Count = runtime.NumCPU() / 2
		if c.Worker.Count < 1 {
			c.Worker.Count = 1
		}
	}
	if c.Worker.QueueSize <= 0 {
		c.Worker.QueueSize = 16
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Fetch.Mode {
	case FetchModeHTTP, FetchModeFFmpeg:
	default:
		return fmt.Errorf("fetch.mode must be %q or %q, got %q", FetchModeHTTP, FetchModeFFmpeg, c.Fetch.Mode)
	}
	if c.Pipeline.Width <= 0 || c.Pipeline.Height <= 0 || c.Pipeline.Width%2 != 0 || c.Pipeline.Height%2 != 0 {
		return fmt.Errorf("pipeline.width/height must be positive even numbers, got %dx%d", c.Pipeline.Width, c.Pipeline.Height)
	}
	if c.Pipeline.FPS <= 0 || c.Pipeline.FPS > 240 {
		return fmt.Errorf("pipeline.fps out of range: %d", c.Pipeline.FPS)
	}
	if c.Pipeline.TranscodeTimeout < 0 || c.Fetch.Timeout < 0 || c.Worker.SubmitWait < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func normalizeDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
