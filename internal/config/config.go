package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates all service configuration.
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Transcribe TranscribeConfig
	Telephony  TelephonyConfig
	Call       CallConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	callCfg, err := loadCallConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		AI:         ai,
		Transcribe: loadTranscribeConfig(),
		Telephony:  loadTelephonyConfig(),
		Call:       callCfg,
	}, nil
}

// ServerConfig describes the HTTP server.
type ServerConfig struct {
	Addr string
	// PublicBaseURL is the externally reachable base of this service, used
	// to build the webhook URLs handed to the telephony provider.
	PublicBaseURL string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	return ServerConfig{
		Addr:          addr,
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("BASE_URL")), "/"),
	}, nil
}

// AIConfig describes the conversation model.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a chat model instance from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
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
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		// Spoken replies drift off-script at higher temperatures.
		defaultTemp := 0.6
		temperature = &defaultTemp
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens == nil {
		// Replies are read aloud; keep them short.
		defaultMax := 100
		maxTokens = &defaultMax
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// TranscribeConfig describes the speech-to-text provider.
type TranscribeConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// Enabled reports whether transcription credentials are present.
func (c TranscribeConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadTranscribeConfig() TranscribeConfig {
	return TranscribeConfig{
		APIKey:   strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
		BaseURL:  getEnvOrDefault("DEEPGRAM_BASE_URL", "https://api.deepgram.com"),
		Model:    getEnvOrDefault("DEEPGRAM_MODEL", "nova-2"),
		Language: getEnvOrDefault("DEEPGRAM_LANGUAGE", "en-US"),
	}
}

// TelephonyConfig describes the telephony provider account.
type TelephonyConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	BaseURL     string
}

// Enabled reports whether telephony credentials are present.
func (c TelephonyConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

func loadTelephonyConfig() TelephonyConfig {
	return TelephonyConfig{
		AccountSID:  strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:   strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		PhoneNumber: strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER")),
		BaseURL:     getEnvOrDefault("TWILIO_BASE_URL", "https://api.twilio.com/2010-04-01"),
	}
}

// CallConfig tunes the orchestrator's timing behavior.
type CallConfig struct {
	GenerationBudget time.Duration
	CleanupGrace     time.Duration
	FetchAttempts    int
	FetchBackoff     time.Duration
	FetchSettleDelay time.Duration
	// WebhookBudget caps how long the recording webhook may spend on fetch,
	// transcription and generation combined. The provider abandons webhooks
	// after about fifteen seconds.
	WebhookBudget time.Duration
	// RecordTimeout is the seconds of silence the provider waits for before
	// finalizing a recording, passed through to the TwiML Record verb.
	RecordTimeout int
}

func loadCallConfig() (CallConfig, error) {
	cfg := CallConfig{
		GenerationBudget: 5 * time.Second,
		CleanupGrace:     time.Hour,
		FetchAttempts:    3,
		FetchBackoff:     2 * time.Second,
		FetchSettleDelay: time.Second,
		WebhookBudget:    14 * time.Second,
		RecordTimeout:    10,
	}

	if budget, err := parseOptionalDurationEnv("CALL_GENERATION_BUDGET"); err != nil {
		return CallConfig{}, err
	} else if budget != nil {
		cfg.GenerationBudget = *budget
	}

	if grace, err := parseOptionalDurationEnv("CALL_CLEANUP_GRACE"); err != nil {
		return CallConfig{}, err
	} else if grace != nil {
		cfg.CleanupGrace = *grace
	}

	if attempts, err := parseOptionalIntEnv("CALL_FETCH_ATTEMPTS"); err != nil {
		return CallConfig{}, err
	} else if attempts != nil {
		cfg.FetchAttempts = *attempts
	}

	if backoff, err := parseOptionalDurationEnv("CALL_FETCH_BACKOFF"); err != nil {
		return CallConfig{}, err
	} else if backoff != nil {
		cfg.FetchBackoff = *backoff
	}

	if settle, err := parseOptionalDurationEnv("CALL_FETCH_SETTLE_DELAY"); err != nil {
		return CallConfig{}, err
	} else if settle != nil {
		cfg.FetchSettleDelay = *settle
	}

	if budget, err := parseOptionalDurationEnv("CALL_WEBHOOK_BUDGET"); err != nil {
		return CallConfig{}, err
	} else if budget != nil {
		cfg.WebhookBudget = *budget
	}

	if recordTimeout, err := parseOptionalIntEnv("CALL_RECORD_TIMEOUT"); err != nil {
		return CallConfig{}, err
	} else if recordTimeout != nil {
		cfg.RecordTimeout = *recordTimeout
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
