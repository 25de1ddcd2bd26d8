package observability

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Logger writes structured JSON lines to stdout.
type Logger struct {
	base *log.Logger
}

// NewLogger creates a stdout JSON logger.
func NewLogger() *Logger {
	return &Logger{base: log.New(os.Stdout, "", 0)}
}

// Info logs at info level.
func (l *Logger) Info(message string, fields map[string]any) {
	l.write("info", message, fields)
}

// Error logs at error level.
func (l *Logger) Error(message string, fields map[string]any) {
	l.write("error", message, fields)
}

func (l *Logger) write(level, message string, fields map[string]any) {
	payload := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"message":   message,
	}
	for k, v := range fields {
		payload[k] = v
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		l.base.Println(`{"level":"error","message":"failed to encode log"}`)
		return
	}
	l.base.Println(string(encoded))
}

// MaskPhone masks a phone number for logging (e.g. "+84******56").
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	masked := make([]byte, len(phone))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[:2], phone[:2])
	copy(masked[len(masked)-2:], phone[len(phone)-2:])
	return string(masked)
}
