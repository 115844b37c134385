package cduclient

import (
	"net/http"
	"time"
)

// Config holds the client configuration
type Config struct {
	BaseURL    string        // cdusync server URL, e.g. http://localhost:8080
	APIKey     string        // API key for authentication
	Timeout    time.Duration // Request timeout (default: 60 seconds)
	HTTPClient *http.Client  // Optional; overrides Timeout when set
}

// Health is the public health report of a server.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
	Loading bool   `json:"loading"`
}

// Status summarizes the server's engine.
type Status struct {
	Mode              string `json:"mode"`
	Loading           bool   `json:"loading"`
	HasUnsavedChanges bool   `json:"hasUnsavedChanges"`
	PendingSyncs      int64  `json:"pendingSyncs"`
}

// ReloadResult reports where a reload took its data from.
type ReloadResult struct {
	Source   string `json:"source"` // remote | cache | initial
	Degraded bool   `json:"degraded"`
}

// ImportResult acknowledges an import.
type ImportResult struct {
	Imported bool  `json:"imported"`
	Bytes    int   `json:"bytes"`
	TookMs   int64 `json:"tookMs"`
}

// Notification is a user-visible message raised by the engine.
type Notification struct {
	Seq       int64     `json:"seq"`
	Level     string    `json:"level"`
	Op        string    `json:"op,omitempty"`
	OpID      string    `json:"opId,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// FieldError is a single invalid field reported by the server.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
