// Package timeout defines centralized timeout constants for agent and calendar operations.
package timeout

import "time"

const (
	// AgentTimeout bounds one complete agent run, including all tool rounds.
	AgentTimeout = 2 * time.Minute

	// LLMCallTimeout bounds a single chat completion request.
	LLMCallTimeout = 60 * time.Second

	// ToolExecutionTimeout is the timeout for individual tool execution.
	ToolExecutionTimeout = 30 * time.Second

	// CalendarCallTimeout bounds one Google Calendar request, paging included.
	CalendarCallTimeout = 20 * time.Second

	// ShutdownTimeout is the grace period for in-flight HTTP requests on shutdown.
	ShutdownTimeout = 10 * time.Second

	// MaxIterations is the maximum number of tool-calling rounds per agent run.
	MaxIterations = 5

	// MaxConcurrentRuns caps agent runs executing at the same time.
	MaxConcurrentRuns = 8

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
