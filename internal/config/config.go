package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config aggregates every tunable of the service. All detection and
// engagement constants live here rather than in code so they can be
// recalibrated without a rebuild.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Auth       AuthConfig       `koanf:"auth"`
	AI         AIConfig         `koanf:"ai"`
	Detection  DetectionConfig  `koanf:"detection"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Engagement EngagementConfig `koanf:"engagement"`
	Report     ReportConfig     `koanf:"report"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// AuthConfig carries the shared secret expected in x-api-key.
type AuthConfig struct {
	APIKey string `koanf:"api_key"`
}

// AIConfig describes the generative-text collaborator. The honeypot
// works without it; Tier 1 is simply skipped.
type AIConfig struct {
	APIKey         string   `koanf:"api_key"`
	AccessKey      string   `koanf:"access_key"`
	SecretKey      string   `koanf:"secret_key"`
	Model          string   `koanf:"model"`
	BaseURL        string   `koanf:"base_url"`
	Region         string   `koanf:"region"`
	Temperature    *float64 `koanf:"temperature"`
	TopP           *float64 `koanf:"top_p"`
	MaxTokens      *int     `koanf:"max_tokens"`
	TimeoutSeconds int      `koanf:"timeout_seconds"`
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the Ark chat model from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ai.api_key + ai.model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}
	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	return ark.NewChatModel(ctx, cfg)
}

// DetectionWeights are the convex ensemble weights. They are
// normalized to sum to 1 at load time.
type DetectionWeights struct {
	Keywords      float64 `koanf:"keywords"`
	Tactics       float64 `koanf:"tactics"`
	Composite     float64 `koanf:"composite"`
	Credentials   float64 `koanf:"credentials"`
	Impersonation float64 `koanf:"impersonation"`
}

// DetectionConfig tunes the classifier ensemble.
type DetectionConfig struct {
	Threshold float64          `koanf:"threshold"`
	Weights   DetectionWeights `koanf:"weights"`
}

// ExtractionConfig carries the finite lists the extractor consults.
type ExtractionConfig struct {
	ProviderSuffixes []string `koanf:"provider_suffixes"`
	ShortenerDomains []string `koanf:"shortener_domains"`
	LinkTLDs         []string `koanf:"link_tlds"`
	ContextWindow    int      `koanf:"context_window"`
}

// EngagementConfig tunes stage progression and finalization.
type EngagementConfig struct {
	// Scam-turn counts after which the persona hardens one stage.
	StageCautiousAfter    int `koanf:"stage_cautious_after"`
	StageQuestioningAfter int `koanf:"stage_questioning_after"`
	StageSkepticalAfter   int `koanf:"stage_skeptical_after"`
	StageDefensiveAfter   int `koanf:"stage_defensive_after"`
	MinScamTurns          int `koanf:"min_scam_turns"`
	MaxScamTurns          int `koanf:"max_scam_turns"`
	HistoryWindow         int `koanf:"history_window"`
}

// ReportConfig describes the external reporting sink and the local
// archive of finalized payloads.
type ReportConfig struct {
	CallbackURL    string `koanf:"callback_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
	ArchivePath    string `koanf:"archive_path"`
}

// Load reads configuration from an optional YAML file (HONEYNET_CONFIG
// or ./config.yaml) overlaid with HONEYNET_* environment variables.
// Double underscore separates nesting levels, e.g. HONEYNET_AI__API_KEY.
func Load() (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	path := strings.TrimSpace(os.Getenv("HONEYNET_CONFIG"))
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("HONEYNET_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "HONEYNET_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Detection.Weights = normalizeWeights(cfg.Detection.Weights)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"server.addr":  ":8080",
		"auth.api_key": "",

		"ai.base_url":        "https://ark.cn-beijing.volces.com/api/v3",
		"ai.region":          "cn-beijing",
		"ai.timeout_seconds": 12,

		"detection.threshold":             0.35,
		"detection.weights.keywords":      0.25,
		"detection.weights.tactics":       0.25,
		"detection.weights.composite":     0.20,
		"detection.weights.credentials":   0.15,
		"detection.weights.impersonation": 0.15,

		"extraction.provider_suffixes": []string{
			"paytm", "phonepe", "gpay", "upi", "okaxis", "ybl", "ibl", "axl",
		},
		"extraction.shortener_domains": []string{
			"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly",
		},
		"extraction.link_tlds": []string{
			"com", "net", "org", "in", "co.in", "info", "biz",
		},
		"extraction.context_window": 5,

		"engagement.stage_cautious_after":    2,
		"engagement.stage_questioning_after": 4,
		"engagement.stage_skeptical_after":   6,
		"engagement.stage_defensive_after":   8,
		"engagement.min_scam_turns":          6,
		"engagement.max_scam_turns":          10,
		"engagement.history_window":          5,

		"report.timeout_seconds": 10,
		"report.archive_path":    "data/reports.db",
	}
}

func normalizeWeights(w DetectionWeights) DetectionWeights {
	sum := w.Keywords + w.Tactics + w.Composite + w.Credentials + w.Impersonation
	if sum <= 0 || math.Abs(sum-1) < 1e-9 {
		return w
	}
	w.Keywords /= sum
	w.Tactics /= sum
	w.Composite /= sum
	w.Credentials /= sum
	w.Impersonation /= sum
	return w
}

func validate(cfg *Config) error {
	if cfg.Detection.Threshold <= 0 || cfg.Detection.Threshold >= 1 {
		return fmt.Errorf("detection.threshold must be in (0,1), got %v", cfg.Detection.Threshold)
	}
	if cfg.Engagement.MaxScamTurns < cfg.Engagement.MinScamTurns {
		return fmt.Errorf("engagement.max_scam_turns (%d) below min_scam_turns (%d)",
			cfg.Engagement.MaxScamTurns, cfg.Engagement.MinScamTurns)
	}
	if cfg.Extraction.ContextWindow < 0 {
		return fmt.Errorf("extraction.context_window must not be negative")
	}
	if !strings.Contains(cfg.Server.Addr, ":") {
		cfg.Server.Addr = ":" + cfg.Server.Addr
	}
	return nil
}
