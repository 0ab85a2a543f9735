package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/moneymitra/server/internal/agent/graph"
	"github.com/moneymitra/server/internal/agent/model"
	"github.com/moneymitra/server/internal/agent/repo"
	"github.com/moneymitra/server/internal/agent/tools"
	"github.com/moneymitra/server/internal/api"
	"github.com/moneymitra/server/internal/core"
	"github.com/moneymitra/server/internal/finance"
	logx "github.com/moneymitra/server/pkg/logger"
	pkgredis "github.com/moneymitra/server/pkg/redis"
)

// AppConfig defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs). Provider API keys are not part of
// it; the finance client reads them on every call.
type AppConfig struct {
	Env      core.Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config
	HTTP  api.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Response     model.ResponseModelConfig
	Prompt       model.ResponsePromptConfig
	Conversation model.ConversationConfig

	Finance finance.Config
}

// LoadConfig loads envFile when present, fills AppConfig and initialises logging.
func LoadConfig(envFile string) (*AppConfig, error) {
	var dotenvErr error
	if envFile != "" {
		dotenvErr = godotenv.Load(envFile)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Env, Level: cfg.LogLevel})
	if dotenvErr != nil {
		if errors.Is(dotenvErr, fs.ErrNotExist) {
			logx.Debug().Str("file", envFile).Msg("No .env file; using process environment")
		} else {
			logx.Warn().Err(dotenvErr).Str("file", envFile).Msg("Could not load .env file")
		}
	}
	return &cfg, nil
}

// NewRegistry builds the tool registry over the live finance client.
func (c *AppConfig) NewRegistry() (*tools.Registry, error) {
	client := finance.NewClient(c.Finance, finance.EnvCredentials{})
	return tools.NewRegistry(client)
}

// NewConversationRepository returns the Redis store when REDIS_URL is set and an
// in-process store otherwise. The returned func releases the connection.
func (c *AppConfig) NewConversationRepository(ctx context.Context) (model.ConversationRepository, func(), error) {
	if !c.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set; conversations are kept in memory")
		return repo.NewMemoryConversationRepository(c.Conversation.TTL), func() {}, nil
	}

	rdb, err := c.Redis.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise Redis client: %w", err)
	}
	logx.Info().Msg("Connected to Redis")
	return repo.NewRedisConversationRepository(rdb, c.Conversation.TTL), func() { _ = rdb.Close() }, nil
}

// NewRunner wires the agent graph. It fails when GEMINI_API_KEY is unset.
func (c *AppConfig) NewRunner(ctx context.Context, registry *tools.Registry, conversations model.ConversationRepository) (graph.Runner, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return graph.BuildResponseGraph(ctx, graph.Config{
		APIKey:           c.APIKey,
		BaseURL:          c.BaseURL,
		ResponseModel:    c.Response,
		ResponsePrompt:   c.Prompt,
		Conversation:     c.Conversation,
		ConversationRepo: conversations,
		Registry:         registry,
	})
}
