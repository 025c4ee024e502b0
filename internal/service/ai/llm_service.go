// Package ai wraps the hosted chat model behind a small text
// generation surface. The honeypot treats it as optional: when no
// model is configured the responder falls back to its local pools.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/conversation"
)

// Service runs persona replies through the configured chat model.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	log       *zap.Logger
}

// NewService creates the model client and compiles the reply chain.
func NewService(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
		log:       log,
	}, nil
}

// GenerateReply invokes the chain with a bounded deadline so a slow
// upstream can never stall the message handler past its budget.
func (s *Service) GenerateReply(ctx context.Context, systemPrompt string, history []conversation.Message, query string) (string, error) {
	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input := map[string]any{
		"system":  systemPrompt,
		"history": s.buildHistoryMessages(history),
		"query":   query,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run reply chain: %w", err)
	}

	s.log.Debug("model reply generated", zap.Int("length", len(response.Content)))
	return response.Content, nil
}

func (s *Service) buildHistoryMessages(messages []conversation.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case conversation.SenderAdversary:
			history = append(history, schema.UserMessage(msg.Text))
		case conversation.SenderAgent:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return history
}
