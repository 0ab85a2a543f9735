package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/moneymitra/server/internal/agent/graph/conversations"
	"github.com/moneymitra/server/internal/agent/graph/nodes"
	"github.com/moneymitra/server/internal/agent/graph/observers"
	"github.com/moneymitra/server/internal/agent/model"
	"github.com/moneymitra/server/internal/agent/tools"
	errx "github.com/moneymitra/server/internal/core/error"
	logx "github.com/moneymitra/server/pkg/logger"
)

// FallbackReply is returned when the model ends a turn without any text.
const FallbackReply = "Sorry, I couldn't put together an answer this time. Please try asking again."

// Runner executes one user turn against the compiled graph.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.Reply, error)
	Reset(ctx context.Context, conversationID string) error
}

// Config holds everything needed to compose the full response graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the chat
// model and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	ResponseModel    model.ResponseModelConfig
	ResponsePrompt   model.ResponsePromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Registry         *tools.Registry
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModel            einomodel.ToolCallingChatModel
	ModelName            string
	MessagesManager      *conversations.MessagesManager
	Registry             *tools.Registry
	ResponsePromptConfig *model.ResponsePromptConfig
	ToolMaxCalls         int
	// Now feeds the date line of the system prompt; time.Now when nil.
	Now func() time.Time
}

// GraphBuilder handles the construction of the agent conversation graph
type GraphBuilder struct {
	config    *GraphConfig
	chatModel einomodel.ToolCallingChatModel
	graph     *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
	mm       *conversations.MessagesManager
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.Reply, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, errx.InvalidArgument("message is required")
	}
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	collector := observers.NewEventCollector()
	out, err := r.runnable.Invoke(ctx, model.QueryInput{
		ConversationID: conversationID,
		Query:          query,
	}, compose.WithCallbacks(observers.NewAllCallbacks(collector)))
	if err != nil {
		return nil, err
	}

	reply := &model.Reply{
		ConversationID: conversationID,
		ToolEvents:     collector.Events(),
	}
	if reply.ToolEvents == nil {
		reply.ToolEvents = []model.ToolEvent{}
	}
	if out != nil {
		reply.Content = strings.TrimSpace(out.Content)
		if total, ok := out.Extra["usage_cost_total_usd"].(float64); ok {
			reply.CostUSD = total
		}
	}
	if reply.Content == "" {
		logx.Warn().Str("conversation_id", conversationID).Msg("Model ended the turn without content")
		reply.Content = FallbackReply
	}
	return reply, nil
}

func (r *graphRunner) Reset(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return errx.InvalidArgument("conversation id is required")
	}
	return r.mm.Clear(ctx, conversationID)
}

// BuildResponseGraph creates the Gemini chat model and MessagesManager, builds
// the graph, and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	cm, err := nodes.NewResponseChatModel(ctx, nodes.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		RespConfig: &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(ctx, &GraphConfig{
		ChatModel:            cm,
		ModelName:            cfg.ResponseModel.Model,
		MessagesManager:      conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation),
		Registry:             cfg.Registry,
		ResponsePromptConfig: &cfg.ResponsePrompt,
		ToolMaxCalls:         cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Response graph built successfully")
	return runner, nil
}

// NewRunner compiles the graph around an already constructed chat model.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable, mm: config.MessagesManager}, nil
}

// BuildGraph constructs and returns the compiled agent graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil {
		return nil, fmt.Errorf("chat model is not initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Registry == nil {
		return nil, fmt.Errorf("tool registry is nil")
	}
	if config.ResponsePromptConfig == nil {
		return nil, fmt.Errorf("response prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools binds the registry's schemas to the chat model and adds the tools node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	registry := b.config.Registry

	bound, err := nodes.BindTools(b.config.ChatModel, registry.Infos())
	if err != nil {
		return fmt.Errorf("failed to bind tools to response model: %w", err)
	}
	b.chatModel = bound

	invokable := make([]tool.InvokableTool, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		t, _ := registry.Lookup(name)
		invokable = append(invokable, t)
	}
	safeTools, err := nodes.WithErrorResults(ctx, invokable)
	if err != nil {
		return fmt.Errorf("failed to wrap tools: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               safeTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			return registry.SanitizeArguments(name, arguments), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)

	return nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeContextAssembler,
		nodes.NewContextAssemblerNode(b.config.MessagesManager, b.config.ResponsePromptConfig, b.config.Now),
		compose.WithStatePreHandler(nodes.NewContextAssemblerPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
		b.chatModel,
		compose.WithStatePreHandler(nodes.NewResponseChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(b.config.MessagesManager, b.config.ModelName)),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeContextAssembler},
		{nodes.NodeContextAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeToolExecutor, nodes.NodeResponseChatModel},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeResponseChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Each tool round is two steps; leave room for the wrap-up turn.
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
