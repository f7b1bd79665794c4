package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"mosaic-hq/conduit/pkg/cli"
	"mosaic-hq/conduit/pkg/gateway"
	"mosaic-hq/conduit/pkg/providers"
)

var chatFlags struct {
	provider    string
	class       string
	model       string
	system      string
	maxTokens   int
	temperature float64
	stream      bool
}

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send a chat request to a provider or failover chain",
	Long: `Send a chat-completion request. Target either one provider with
--provider and --model, or a configured failover chain with --class.

Examples:
  # One provider
  conduit chat --provider openrouter --model meta-llama/llama-3.1-8b-instruct "hello"

  # Failover chain by model class
  conduit chat --class fast "hello"

  # Streamed output
  conduit chat --provider venice --model llama-3.3-70b --stream "tell me a story"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatFlags.provider, "provider", "p", "", "provider to call")
	chatCmd.Flags().StringVar(&chatFlags.class, "class", "", "failover model class to call")
	chatCmd.Flags().StringVarP(&chatFlags.model, "model", "m", "", "model identifier (with --provider)")
	chatCmd.Flags().StringVar(&chatFlags.system, "system", "", "system prompt")
	chatCmd.Flags().IntVar(&chatFlags.maxTokens, "max-tokens", 0, "completion token limit")
	chatCmd.Flags().Float64Var(&chatFlags.temperature, "temperature", 0, "sampling temperature")
	chatCmd.Flags().BoolVar(&chatFlags.stream, "stream", false, "stream the completion")
	chatCmd.MarkFlagsMutuallyExclusive("provider", "class")
	chatCmd.MarkFlagsOneRequired("provider", "class")
}

func runChat(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	if err := setupLogging(store); err != nil {
		return err
	}

	if chatFlags.provider != "" && chatFlags.model == "" {
		return fmt.Errorf("--model is required with --provider")
	}
	if chatFlags.class != "" && chatFlags.stream {
		return fmt.Errorf("--stream targets one provider; use --provider")
	}

	req := &providers.ChatRequest{
		Model:       chatFlags.model,
		MaxTokens:   chatFlags.maxTokens,
		Temperature: chatFlags.temperature,
	}
	if chatFlags.system != "" {
		req.Messages = append(req.Messages, providers.Message{
			Role: providers.RoleSystem, Content: chatFlags.system,
		})
	}
	req.Messages = append(req.Messages, providers.Message{
		Role: providers.RoleUser, Content: strings.Join(args, " "),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := gateway.New(store)

	if chatFlags.class != "" {
		result, err := g.CallFailoverChat(ctx, chatFlags.class, req)
		if err != nil {
			return chatError(err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "served by %s (%s)\n", result.Provider, result.Model)
		}
		fmt.Println(result.Response.Text())
		return nil
	}

	if chatFlags.stream {
		ch, err := g.StreamChat(ctx, chatFlags.provider, req)
		if err != nil {
			return chatError(err)
		}
		for chunk := range ch {
			if chunk.Err != nil {
				fmt.Println()
				return chatError(chunk.Err)
			}
			fmt.Print(chunk.Delta)
		}
		fmt.Println()
		return nil
	}

	resp, err := g.CallChat(ctx, chatFlags.provider, req)
	if err != nil {
		return chatError(err)
	}
	fmt.Println(resp.Text())
	if verbose {
		fmt.Fprintf(os.Stderr, "tokens: %d prompt, %d completion\n",
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return nil
}

// chatError wraps the failure, attaching the cold-start hint when it applies.
func chatError(err error) error {
	var cold *providers.ColdStartError
	if errors.As(err, &cold) {
		return cli.NewCommandError("chat", fmt.Errorf("%w\nhint: %s", err, cold.Hint()))
	}
	return cli.NewCommandError("chat", err)
}
