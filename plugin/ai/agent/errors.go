package agent

import "errors"

var (
	// ErrEmptyConversation indicates the run has no user or assistant turns.
	ErrEmptyConversation = errors.New("no messages to respond to")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("empty response from LLM")

	// ErrMaxIterations indicates the model kept calling tools past the iteration cap.
	ErrMaxIterations = errors.New("maximum tool iterations reached")
)
