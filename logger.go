package configbot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// RequestLogger records the state transitions of each bot request.
type RequestLogger interface {
	LogStep(step StepLog) error
}

// NewRequestLogFilePath returns a timestamped JSON lines path tagged with the
// model name, so runs against different models are easy to tell apart.
func NewRequestLogFilePath(dir, model string) string {
	return fmt.Sprintf(
		"%s/%d.%s.jsonl",
		strings.TrimRight(dir, "/"),
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// StepLog is one state transition of a request.
type StepLog struct {
	RequestID string    `json:"request_id"`
	Step      string    `json:"step"`
	Timestamp time.Time `json:"timestamp"`
	App       string    `json:"app,omitempty"`
	LLMInput  string    `json:"llm_input,omitempty"`
	LLMOutput string    `json:"llm_output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type NoOpRequestLogger struct{}

func NewNoOpRequestLogger() *NoOpRequestLogger {
	return &NoOpRequestLogger{}
}

func (nop *NoOpRequestLogger) LogStep(step StepLog) error {
	return nil
}

// StreamRequestLogger writes each step to out as one JSON line as soon as
// it is logged. Nothing is kept once LogStep returns, so a long-running bot
// can share one logger across requests.
type StreamRequestLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStreamRequestLogger(out io.Writer) *StreamRequestLogger {
	return &StreamRequestLogger{out: out}
}

// NewStdoutRequestLogger logs steps to stdout (for Lambda/CloudWatch).
func NewStdoutRequestLogger() *StreamRequestLogger {
	return NewStreamRequestLogger(os.Stdout)
}

func (l *StreamRequestLogger) LogStep(step StepLog) error {
	data, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("failed to marshal request step: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(data); err != nil {
		return fmt.Errorf("failed to write request step: %w", err)
	}
	return nil
}
