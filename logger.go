package menuplanner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// GenerationLogger is the interface for planner audit logging.
type GenerationLogger interface {
	LogAttempt(attempt AttemptLog) error
}

// NewGenerationLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify specific logs produced with various models.
func NewGenerationLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// AttemptLog represents a single generation attempt within a plan request
type AttemptLog struct {
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt,omitempty"`
	RawOutput string    `json:"raw_output,omitempty"`
	Valid     bool      `json:"valid"`
	Reasons   []string  `json:"reasons,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileGenerationLogger logs to a file, accumulating attempts and flushing at the end
type FileGenerationLogger struct {
	attempts []AttemptLog
	writer   io.Writer
}

// NewFileGenerationLogger creates a new file-based generation logger
func NewFileGenerationLogger(writer io.Writer) *FileGenerationLogger {
	return &FileGenerationLogger{
		attempts: make([]AttemptLog, 0),
		writer:   writer,
	}
}

// LogAttempt logs an attempt to the buffer (does not flush immediately)
func (fgl *FileGenerationLogger) LogAttempt(attempt AttemptLog) error {
	fgl.attempts = append(fgl.attempts, attempt)
	return nil
}

// Flush flushes all accumulated attempts to the writer
func (fgl *FileGenerationLogger) Flush() error {
	if fgl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"generation_session": map[string]any{
			"timestamp": time.Now(),
			"attempts":  fgl.attempts,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal generation log: %w", err)
	}

	if _, err := fgl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write generation log: %w", err)
	}

	// Clear the buffer after successful write
	fgl.attempts = fgl.attempts[:0]
	return nil
}

// NoOpGenerationLogger is a logger that discards all log entries
type NoOpGenerationLogger struct{}

// NewNoOpGenerationLogger creates a new no-op generation logger
func NewNoOpGenerationLogger() *NoOpGenerationLogger {
	return &NoOpGenerationLogger{}
}

// LogAttempt discards the attempt log (no-op)
func (nop *NoOpGenerationLogger) LogAttempt(attempt AttemptLog) error {
	return nil
}

// StdoutGenerationLogger logs each attempt as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutGenerationLogger struct{}

// NewStdoutGenerationLogger creates a new stdout-based generation logger
func NewStdoutGenerationLogger() *StdoutGenerationLogger {
	return &StdoutGenerationLogger{}
}

// LogAttempt writes the attempt as a JSON line to os.Stdout
func (l *StdoutGenerationLogger) LogAttempt(attempt AttemptLog) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
