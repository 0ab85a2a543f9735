package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moneymitra/server/internal/api"
	logx "github.com/moneymitra/server/pkg/logger"
)

func newServeCommand(load func() (*AppConfig, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the HTTP API.

Routes:
  POST   /api/chat                 one chat turn
  DELETE /api/conversations/{id}   forget a conversation
  GET    /api/tools                list tools
  POST   /api/tools/{name}         run one tool with the body as arguments
  GET    /healthz

Without GEMINI_API_KEY the server still serves the tool routes; chat answers 503.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry, err := cfg.NewRegistry()
			if err != nil {
				return err
			}

			var chat api.ChatService
			if cfg.APIKey == "" {
				logx.Warn().Msg("GEMINI_API_KEY not set; chat is disabled")
			} else {
				conversations, closeRepo, err := cfg.NewConversationRepository(ctx)
				if err != nil {
					return err
				}
				defer closeRepo()

				runner, err := cfg.NewRunner(ctx, registry, conversations)
				if err != nil {
					return err
				}
				chat = runner
			}

			server := api.NewServer(cfg.HTTP, chat, registry)
			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logx.Info().Msg("Shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}
