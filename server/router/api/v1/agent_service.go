package v1

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/tourdesk/plugin/ai/agent"
	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/internal/observability"
)

// MIMEApplicationNDJSON is the content type of the agent event stream.
const MIMEApplicationNDJSON = "application/x-ndjson"

// RunAgentInput is the body of POST /run. Both camelCase and snake_case ids are accepted.
type RunAgentInput struct {
	Messages      []agent.Message `json:"messages"`
	ThreadID      string          `json:"threadId"`
	ThreadIDSnake string          `json:"thread_id"`
	RunID         string          `json:"runId"`
	RunIDSnake    string          `json:"run_id"`
}

func (in *RunAgentInput) threadID() string {
	return firstNonEmpty(in.ThreadID, in.ThreadIDSnake, "default")
}

func (in *RunAgentInput) runID() string {
	return firstNonEmpty(in.RunID, in.RunIDSnake, "default")
}

// RunAgent streams one agent turn as newline-delimited JSON events.
// POST /run
func (s *APIV1Service) RunAgent(c echo.Context) error {
	if s.Agent == nil {
		return errorResponse(c, errors.LLMUnavailable("LLM is not configured; set OPENAI_API_KEY"))
	}

	var input RunAgentInput
	if err := c.Bind(&input); err != nil {
		return errorResponse(c, errors.InvalidArgument("invalid run request body"))
	}
	if len(input.Messages) == 0 {
		return errorResponse(c, errors.InvalidArgument("messages are required"))
	}

	if !s.runSemaphore.TryAcquire(1) {
		return errorResponse(c, errors.RateLimitExceeded("too many concurrent agent runs, please retry shortly"))
	}
	defer s.runSemaphore.Release(1)

	ctx, reqCtx := requestContext(c, observability.OpAgentRun)
	metrics := s.Tours.Metrics()
	metrics.RecordRequest(observability.OpAgentRun)
	defer func() {
		metrics.RecordDuration(observability.OpAgentRun, reqCtx.Duration())
	}()
	reqCtx.Info("agent run started",
		slog.String("thread_id", input.threadID()),
		slog.String("run_id", input.runID()),
		slog.Int("messages", len(input.Messages)))

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, MIMEApplicationNDJSON)
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(res)
	send := func(event *agent.Event) error {
		if err := encoder.Encode(event); err != nil {
			return err
		}
		res.Flush()
		metrics.RecordStreamEvent()
		return nil
	}

	if err := s.Agent.ExecuteWithCallback(ctx, input.Messages, send); err != nil {
		runErr := agentRunError(ctx, err)
		attr := slog.String(observability.LogFieldErrorCode, string(runErr.Code))
		if errors.IsCode(runErr, errors.ErrCodeContextCanceled) {
			// The client went away; there is nobody left to stream to.
			reqCtx.Warn("agent run canceled", attr)
			return nil
		}
		reqCtx.Error("agent run failed", err, attr)
		if sendErr := send(&agent.Event{Type: agent.EventTypeError, Error: runErr.Message}); sendErr != nil {
			return nil
		}
	}
	_ = send(&agent.Event{Type: agent.EventTypeDone})

	reqCtx.Info("agent run completed", slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return nil
}

// agentRunError maps a failed run onto an error code. The message of an
// execution failure is the agent's own error so the stream stays readable.
func agentRunError(ctx context.Context, err error) *errors.AppError {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.Timeout("agent run timed out")
	case stderrors.Is(err, context.Canceled) || stderrors.Is(ctx.Err(), context.Canceled):
		return errors.ContextCanceled(err)
	default:
		return errors.AgentExecutionFailed(err.Error(), err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
