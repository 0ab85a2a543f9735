package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/moneymitra/server/internal/agent/graph"
	"github.com/moneymitra/server/internal/agent/model"
)

func newChatCommand(load func() (*AppConfig, error)) *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long: `Start an interactive chat. Type /reset to forget the conversation and
/exit (or Ctrl-D) to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			registry, err := cfg.NewRegistry()
			if err != nil {
				return err
			}
			conversations, closeRepo, err := cfg.NewConversationRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			runner, err := cfg.NewRunner(ctx, registry, conversations)
			if err != nil {
				return err
			}

			if conversationID == "" {
				conversationID = uuid.NewString()
			}
			return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), runner, cfg.Prompt.AIName, conversationID)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "resume a conversation id instead of starting a new one")
	return cmd
}

// chatLoop reads one question per line until EOF or /exit.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, runner graph.Runner, aiName, conversationID string) error {
	if aiName == "" {
		aiName = "assistant"
	}
	fmt.Fprintf(out, "Conversation %s. Type /exit to quit.\n", conversationID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := runner.Reset(ctx, conversationID); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		reply, err := runner.Invoke(ctx, model.QueryInput{ConversationID: conversationID, Query: line})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		for _, ev := range reply.ToolEvents {
			if ev.Phase != model.PhaseResult {
				continue
			}
			fmt.Fprintf(out, "  [%s] %s\n", ev.Icon, toolLine(ev))
		}
		fmt.Fprintf(out, "%s: %s\n", aiName, reply.Content)
	}
}

func toolLine(ev model.ToolEvent) string {
	line := ev.Label
	if ev.Args != "" {
		line += " (" + ev.Args + ")"
	}
	if ev.Summary != "" {
		line += ": " + ev.Summary
	}
	return line
}
