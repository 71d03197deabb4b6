// Package agent runs the tool-calling tour assistant over an OpenAI-compatible chat API.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lithammer/shortuuid/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/tourdesk/plugin/ai"
	"github.com/hrygo/tourdesk/plugin/ai/agent/tools"
	"github.com/hrygo/tourdesk/plugin/ai/timeout"
	"github.com/hrygo/tourdesk/server/service/tour"
)

// TourAgentName identifies the agent in logs and errors.
const TourAgentName = "tour"

// ChatCompleter is the part of the OpenAI client the agent uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TourAgent answers visitors and drives the tour scheduler tool.
type TourAgent struct {
	client      ChatCompleter
	model       string
	maxTokens   int
	temperature float32
	config      tour.Config
	executor    *tools.Executor
	now         func() time.Time
	retryDelay  func(error) time.Duration
}

// Option configures a TourAgent.
type Option func(*TourAgent)

// WithClock overrides the clock used for the system prompt.
func WithClock(now func() time.Time) Option {
	return func(a *TourAgent) {
		a.now = now
	}
}

// WithRetryDelay overrides the wait before retrying a transient LLM failure.
func WithRetryDelay(delay func(error) time.Duration) Option {
	return func(a *TourAgent) {
		a.retryDelay = delay
	}
}

// NewTourAgent creates a TourAgent over the given scheduler.
func NewTourAgent(client ChatCompleter, llm ai.LLMConfig, scheduler tools.TourScheduler, config tour.Config, opts ...Option) *TourAgent {
	a := &TourAgent{
		client:      client,
		model:       llm.Model,
		maxTokens:   llm.MaxTokens,
		temperature: llm.Temperature,
		config:      config,
		executor:    tools.NewExecutor([]tools.Tool{tools.NewTourSchedulerTool(scheduler)}),
		now:         time.Now,
		retryDelay:  GetRetryDelay,
	}
	if a.model == "" {
		a.model = ai.DefaultModel
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent name.
func (a *TourAgent) Name() string {
	return TourAgentName
}

// ExecuteWithCallback runs one conversation turn, emitting text and tool events
// through callback. It does not emit error or done events; the caller owns the stream.
func (a *TourAgent) ExecuteWithCallback(ctx context.Context, messages []Message, callback EventCallback) error {
	ctx, cancel := context.WithTimeout(ctx, timeout.AgentTimeout)
	defer cancel()

	history := convertMessages(messages)
	if len(history) == 0 {
		return NewAgentError(TourAgentName, "prepare", ErrEmptyConversation)
	}
	conversation := append([]openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: BuildSystemPrompt(a.config, a.now()),
	}}, history...)

	toolDefs := a.toolDefinitions()
	for iteration := 0; iteration < timeout.MaxIterations; iteration++ {
		reply, err := a.complete(ctx, conversation, toolDefs)
		if err != nil {
			return NewAgentError(TourAgentName, "chat completion", err)
		}

		if content := strings.TrimSpace(reply.Content); content != "" {
			if err := emitText(callback, content); err != nil {
				return err
			}
		}
		if len(reply.ToolCalls) == 0 {
			return nil
		}

		conversation = append(conversation, reply)
		for _, call := range reply.ToolCalls {
			result, err := a.runTool(ctx, call, callback)
			if err != nil {
				return err
			}
			conversation = append(conversation, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
		slog.Debug("agent iteration completed",
			slog.String("agent", TourAgentName),
			slog.Int("iteration", iteration+1),
			slog.Int("tool_calls", len(reply.ToolCalls)))
	}
	return NewAgentError(TourAgentName, "tool loop", ErrMaxIterations)
}

// complete makes one chat completion call, retried once on a transient failure.
func (a *TourAgent) complete(ctx context.Context, conversation []openai.ChatCompletionMessage, toolDefs []openai.Tool) (openai.ChatCompletionMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    conversation,
		Tools:       toolDefs,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	}

	resp, err := a.completeOnce(ctx, req)
	if err != nil && ctx.Err() == nil && ShouldRetry(err) {
		delay := a.retryDelay(err)
		slog.Warn("retrying LLM request",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return openai.ChatCompletionMessage{}, ctx.Err()
		case <-time.After(delay):
		}
		resp, err = a.completeOnce(ctx, req)
	}
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrEmptyResponse
	}
	return resp.Choices[0].Message, nil
}

func (a *TourAgent) completeOnce(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout.LLMCallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		slog.Error("LLM request failed",
			slog.String("error", err.Error()),
			slog.String("class", ClassifyError(err).Class.String()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()))
	}
	return resp, err
}

func (a *TourAgent) runTool(ctx context.Context, call openai.ToolCall, callback EventCallback) (string, error) {
	callID := "call-" + shortuuid.New()
	name := call.Function.Name
	if err := callback(&Event{Type: EventTypeToolCallStart, ToolCallID: callID, ToolName: name}); err != nil {
		return "", err
	}
	if err := callback(&Event{Type: EventTypeToolCallArgs, ToolCallID: callID, ToolName: name, Args: argsJSON(call.Function.Arguments)}); err != nil {
		return "", err
	}

	res := a.executor.Execute(ctx, name, call.Function.Arguments)
	slog.Info("agent tool call",
		slog.String("tool", name),
		slog.Bool("success", res.Success),
		slog.Duration("duration", res.Duration),
		slog.String("result", clip(res.Output, timeout.MaxTruncateLength)))

	if err := callback(&Event{Type: EventTypeToolCallEnd, ToolCallID: callID, ToolName: name}); err != nil {
		return "", err
	}
	if err := callback(&Event{Type: EventTypeToolResult, ToolCallID: callID, ToolName: name, Result: res.Output}); err != nil {
		return "", err
	}
	return res.Output, nil
}

func (a *TourAgent) toolDefinitions() []openai.Tool {
	defs := make([]openai.Tool, 0, len(a.executor.Tools()))
	for _, t := range a.executor.Tools() {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.InputType(),
			},
		})
	}
	return defs
}

func emitText(callback EventCallback, content string) error {
	messageID := "msg-" + shortuuid.New()
	for _, e := range []*Event{
		{Type: EventTypeTextStart, MessageID: messageID},
		{Type: EventTypeTextDelta, MessageID: messageID, Content: content},
		{Type: EventTypeTextEnd, MessageID: messageID},
	} {
		if err := callback(e); err != nil {
			return err
		}
	}
	return nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		var role string
		switch strings.ToLower(m.Role) {
		case "user":
			role = openai.ChatMessageRoleUser
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		case "system":
			role = openai.ChatMessageRoleSystem
		default:
			continue
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func argsJSON(args string) json.RawMessage {
	if strings.TrimSpace(args) == "" || !json.Valid([]byte(args)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(args)
}

// clip shortens s to at most n runes for logging.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
