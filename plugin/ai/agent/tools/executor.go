// Package tools provides the tools exposed to the tour agent and runs them with a time bound.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/hrygo/tourdesk/plugin/ai/timeout"
)

// Tool defines the interface for agent-callable tools.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string
	// Description returns the tool description for the LLM.
	Description() string
	// InputType returns the JSON schema of the tool arguments.
	InputType() map[string]interface{}
	// Run executes the tool with JSON arguments and returns a JSON result.
	Run(ctx context.Context, inputJSON string) (string, error)
}

// Result represents the output of a tool execution.
type Result struct {
	Output   string        `json:"output"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"-"`
}

// Executor runs tools exactly once under a timeout. Tools are never retried:
// a tour booking that timed out may still have been written.
type Executor struct {
	timeout time.Duration
	tools   map[string]Tool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the timeout for each execution.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// NewExecutor creates an Executor for the given tools.
func NewExecutor(tools []Tool, opts ...ExecutorOption) *Executor {
	e := &Executor{
		timeout: timeout.ToolExecutionTimeout,
		tools:   make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		e.tools[t.Name()] = t
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tools returns the registered tools.
func (e *Executor) Tools() []Tool {
	out := make([]Tool, 0, len(e.tools))
	for _, t := range e.tools {
		out = append(out, t)
	}
	return out
}

// Execute runs the named tool. Failures are folded into an error-status JSON
// output so the model can explain them; Success reports whether the tool ran cleanly.
func (e *Executor) Execute(ctx context.Context, name, input string) *Result {
	start := time.Now()
	tool, ok := e.tools[name]
	if !ok {
		return &Result{Output: errorOutput(fmt.Sprintf("Unknown tool: %s", name)), Duration: time.Since(start)}
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	output, err := runRecovered(execCtx, tool, input)
	duration := time.Since(start)
	if err != nil {
		slog.Warn("tool execution failed",
			slog.String("tool", name),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "The scheduling service timed out. Please try again shortly."
		}
		return &Result{Output: errorOutput(msg), Duration: duration}
	}

	slog.Debug("tool execution succeeded",
		slog.String("tool", name),
		slog.Duration("duration", duration))
	return &Result{Output: output, Success: true, Duration: duration}
}

// runRecovered turns a tool panic into an error so one bad call cannot take down the stream.
func runRecovered(ctx context.Context, tool Tool, input string) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked",
				slog.String("tool", tool.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("internal error in %s", tool.Name())
		}
	}()
	return tool.Run(ctx, input)
}

func errorOutput(message string) string {
	data, _ := json.Marshal(response{Status: statusError, Message: message})
	return string(data)
}
