package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the service-shell settings. Fixed pipeline parameters live in
// constants.go; everything here is deployment-specific. Secrets are read from
// the environment only, never from the YAML file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type PipelineConfig struct {
	// WorkDir is the directory holding voiceovers/, images/ and the video output
	WorkDir string `yaml:"work_dir"`
}

type FeedsConfig struct {
	DefaultPreset string `yaml:"default_preset"`
	DefaultCount  int    `yaml:"default_count"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	RequestTopic string   `yaml:"request_topic"`
	ResultTopic  string   `yaml:"result_topic"`
	GroupID      string   `yaml:"group_id"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
	BloomKey string `yaml:"bloom_key"`
}

type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

type YouTubeConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	Privacy         string `yaml:"privacy"`
}

type ScheduleConfig struct {
	// Cron is a cron expression for automatic runs; empty disables them
	Cron string `yaml:"cron"`
	Feed string `yaml:"feed"`
}

// Secrets are resolved from the environment at load time.
type Secrets struct {
	OpenAIKey     string
	ElevenLabsKey string
	StabilityKey  string
	CohereKey     string
}

// Load reads the YAML config at path (missing file is fine, defaults apply)
// and layers environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadSecrets pulls API keys from the environment.
func LoadSecrets() Secrets {
	return Secrets{
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		ElevenLabsKey: os.Getenv("ELEVENLABS_API_KEY"),
		StabilityKey:  os.Getenv("STABILITY_API_KEY"),
		CohereKey:     os.Getenv("COHERE_API_KEY"),
	}
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Pipeline: PipelineConfig{WorkDir: "."},
		Feeds:    FeedsConfig{DefaultPreset: "tr", DefaultCount: 10},
		Kafka: KafkaConfig{
			RequestTopic: "shorts.run.requests",
			ResultTopic:  "shorts.run.results",
			GroupID:      "shorts-pipeline",
		},
		Redis:   RedisConfig{BloomKey: "topics:bloom"},
		YouTube: YouTubeConfig{Privacy: YouTubePrivacyStatus},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SHORTS_WORK_DIR"); v != "" {
		cfg.Pipeline.WorkDir = v
	}
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASS")
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("S3_PREFIX"); v != "" {
		cfg.S3.Prefix = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("YOUTUBE_CREDENTIALS_FILE"); v != "" {
		cfg.YouTube.CredentialsFile = v
		cfg.YouTube.Enabled = true
	}
}

// GetEnvOrDefault returns the environment value for key, or def when unset.
func GetEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
