package echo

import "fmt"

// InputError means the text itself cannot be analyzed: empty, or too few
// tokens for the configured minimum. Recoverable; callers surface it as a
// status message and decline the run.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "input: " + e.Reason
}

// ConfigError means the word bounds are unusable for this text. TokenCount
// carries the text's token count when known so the caller can clamp and retry.
type ConfigError struct {
	Reason     string
	TokenCount int
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// ValidationError rejects a bad whitelist entry before it reaches the
// tokenizer.
type ValidationError struct {
	Entry string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: whitelist entry %q is empty or whitespace-only", e.Entry)
}
