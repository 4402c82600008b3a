// Package config loads the pipeline settings from YAML, a .env file and
// CLARITY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/clients"
	"github.com/maastricht-university/meeting-clarity/resilience"
)

// EnvPrefix prefixes every environment override, e.g.
// CLARITY_SERVICES_ASR_URL.
const EnvPrefix = "CLARITY"

type ASRService struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type Services struct {
	ASR ASRService `mapstructure:"asr"`
}

type Extractor struct {
	Primary            clients.LLMConfig        `mapstructure:"primary"`
	Fallbacks          []clients.LLMConfig      `mapstructure:"fallbacks"`
	MaxTranscriptChars int                      `mapstructure:"max_transcript_chars"`
	MaxTokens          int                      `mapstructure:"max_tokens"`
	Temperature        float64                  `mapstructure:"temperature"`
	Breaker            resilience.BreakerConfig `mapstructure:"breaker"`
}

type Scoring struct {
	WeightPolicy clarity.WeightPolicy `mapstructure:"weight_policy"`
	TopN         int                  `mapstructure:"top_n"`
	ExcerptLen   int                  `mapstructure:"excerpt_len"`
}

// Validator returns a report validator using the configured weight policy
// and excerpt length.
func (s Scoring) Validator() *clarity.Validator {
	return &clarity.Validator{Weights: s.WeightPolicy, ExcerptLen: s.ExcerptLen}
}

type Watch struct {
	Dir         string   `mapstructure:"dir"`
	Extensions  []string `mapstructure:"extensions"`
	Owner       string   `mapstructure:"owner"`
	Concurrency int      `mapstructure:"concurrency"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name"`
		Version   string `mapstructure:"version"`
		LogLvl    string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
		Node      int64  `mapstructure:"node"`
	} `mapstructure:"pipeline"`
	Services   Services  `mapstructure:"services"`
	Extractor  Extractor `mapstructure:"extractor"`
	Vocabulary struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"vocabulary"`
	Scoring Scoring `mapstructure:"scoring"`
	Store   struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"store"`
	Paths struct {
		Data    string `mapstructure:"data"`
		Outputs string `mapstructure:"outputs"`
	} `mapstructure:"paths"`
	Server struct {
		Addr          string `mapstructure:"addr"`
		MaxUploadMB   int64  `mapstructure:"max_upload_mb"`
		EnableMetrics bool   `mapstructure:"enable_metrics"`
	} `mapstructure:"server"`
	Telemetry struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"telemetry"`
	Watch Watch `mapstructure:"watch"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "meeting-clarity")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("pipeline.node", 1)
	v.SetDefault("services.asr.url", "http://localhost:8001")
	v.SetDefault("services.asr.timeout", 10*time.Minute)
	v.SetDefault("services.asr.retries", 3)
	v.SetDefault("extractor.primary.provider", "gemini")
	v.SetDefault("extractor.primary.model", "gemini-2.5-flash")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.base_url", "")
	v.SetDefault("extractor.max_transcript_chars", 0)
	v.SetDefault("extractor.max_tokens", 4096)
	v.SetDefault("extractor.temperature", 0.0)
	v.SetDefault("extractor.breaker.max_failures", 3)
	v.SetDefault("extractor.breaker.reset_timeout", time.Minute)
	v.SetDefault("vocabulary.path", filepath.Join("data", "jargon_master_list.csv"))
	v.SetDefault("scoring.weight_policy", string(clarity.WeightClamp))
	v.SetDefault("scoring.top_n", clarity.DefaultTopN)
	v.SetDefault("scoring.excerpt_len", clarity.DefaultExcerptLen)
	v.SetDefault("store.path", filepath.Join("data", "clarity.db"))
	v.SetDefault("paths.data", "data")
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.max_upload_mb", 512)
	v.SetDefault("server.enable_metrics", true)
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("watch.dir", "")
	v.SetDefault("watch.extensions", []string{".wav", ".mp3", ".m4a", ".mp4", ".mov", ".webm"})
	v.SetDefault("watch.owner", "watch")
	v.SetDefault("watch.concurrency", 2)
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or the first config found in the usual places when path
// is empty, after loading a .env file if present. Environment variables
// override file values.
func Load(path string) (*Root, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := newViper()
	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return decode(v)
}

// LoadFromReader parses YAML from r on top of the defaults.
func LoadFromReader(r io.Reader) (*Root, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return decode(v)
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func decode(v *viper.Viper) (*Root, error) {
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func Validate(cfg *Root) error {
	var errs []error
	if cfg.Services.ASR.URL == "" {
		errs = append(errs, errors.New("services.asr.url is required"))
	}
	if cfg.Services.ASR.Retries < 0 {
		errs = append(errs, fmt.Errorf("services.asr.retries %d must not be negative", cfg.Services.ASR.Retries))
	}
	errs = append(errs, checkProvider("extractor.primary", cfg.Extractor.Primary.Provider)...)
	for i, fb := range cfg.Extractor.Fallbacks {
		errs = append(errs, checkProvider(fmt.Sprintf("extractor.fallbacks[%d]", i), fb.Provider)...)
	}
	if cfg.Extractor.MaxTranscriptChars < 0 {
		errs = append(errs, errors.New("extractor.max_transcript_chars must not be negative"))
	}
	if !cfg.Scoring.WeightPolicy.IsValid() {
		errs = append(errs, fmt.Errorf("scoring.weight_policy %q is invalid; valid values: clamp, reject", cfg.Scoring.WeightPolicy))
	}
	if cfg.Scoring.TopN < 0 {
		errs = append(errs, fmt.Errorf("scoring.top_n %d must not be negative", cfg.Scoring.TopN))
	}
	if cfg.Vocabulary.Path == "" {
		errs = append(errs, errors.New("vocabulary.path is required"))
	}
	if cfg.Pipeline.Node < 0 || cfg.Pipeline.Node > 1023 {
		errs = append(errs, fmt.Errorf("pipeline.node %d must be within 0..1023", cfg.Pipeline.Node))
	}
	switch cfg.Pipeline.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("pipeline.log_format %q is invalid; valid values: text, json", cfg.Pipeline.LogFormat))
	}
	if cfg.Watch.Concurrency < 1 {
		errs = append(errs, errors.New("watch.concurrency must be at least 1"))
	}
	return errors.Join(errs...)
}

func checkProvider(key, name string) []error {
	switch {
	case name == "":
		return []error{fmt.Errorf("%s.provider is required", key)}
	case !clients.KnownProvider(name):
		return []error{fmt.Errorf("%s.provider %q is unknown; valid values: %s", key, name, strings.Join(clients.Providers, ", "))}
	}
	return nil
}
