// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"
)

// StateStore is the durable key-value persistence layer the adaptive
// categorizer saves its state through. Keys are scoped by namespace so
// unrelated state can share one database.
type StateStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

// AnalysisSummary describes one classification run for the outbound
// reporting sink.
type AnalysisSummary struct {
	Timestamp        time.Time `json:"timestamp"`
	FileName         string    `json:"fileName"`
	Categories       []string  `json:"categories"`
	DateRangeStart   string    `json:"dateRangeStart"`
	DateRangeEnd     string    `json:"dateRangeEnd"`
	TransactionCount int       `json:"transactionCount"`
	DurationMillis   int64     `json:"durationMs"`
	Success          bool      `json:"success"`
}

// Reporter delivers analysis summaries to a remote sink. Implementations
// are best-effort collaborators: callers log failures and move on.
type Reporter interface {
	Send(ctx context.Context, summary AnalysisSummary) error
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
