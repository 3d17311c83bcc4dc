package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// LogLevel is the severity of a persisted log record.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ValidLogLevel reports whether l is one of the accepted levels.
func ValidLogLevel(l LogLevel) bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// LogMetadata is arbitrary JSON context stored with a log record
type LogMetadata map[string]interface{}

// Value implements driver.Valuer for database serialization
func (m LogMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database deserialization
func (m *LogMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// LogEntry is one persisted structured log record
type LogEntry struct {
	ID        string      `db:"id" json:"id"`
	Source    string      `db:"source" json:"source"`
	RunID     *string     `db:"run_id" json:"run_id,omitempty"`
	Level     LogLevel    `db:"level" json:"level"`
	Message   string      `db:"message" json:"message"`
	Metadata  LogMetadata `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
