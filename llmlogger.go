package textback

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger appends a transcript of every model interaction to a file
type LLMLogger struct {
	file *os.File
	mu   sync.Mutex
}

// NewLLMLogger opens the transcript at path, creating its directory if needed
func NewLLMLogger(path string) (*LLMLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := &LLMLogger{file: file}
	logger.Logf("=== Session started: %s ===\n\n", time.Now().Format(time.RFC3339))
	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.write(format, args...)
}

func (ll *LLMLogger) write(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs a prompt sent to the model
func (ll *LLMLogger) LogLLMRequest(seed int64, prompt string) {
	ll.Logf("=== LLM REQUEST (seed %d) ===\n%s\n\n", seed, prompt)
}

// LogLLMResponse logs the alternative read from the model response
func (ll *LLMLogger) LogLLMResponse(seed int64, response string) {
	ll.Logf("=== LLM RESPONSE (seed %d) ===\n%q\n\n", seed, response)
}

// LogQuestionResult logs the outcome of one generation attempt
func (ll *LLMLogger) LogQuestionResult(seed string, variant Variant, action, reason string) {
	ll.Logf("Question %s/%s: %s - %s\n", seed, variant, action, reason)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.write("=== Session closed: %s ===\n", time.Now().Format(time.RFC3339))
	err := ll.file.Close()
	ll.file = nil
	return err
}
