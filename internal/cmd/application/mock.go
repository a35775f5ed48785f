package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zip2addr/zip2addr/cmd/application"
	"github.com/zip2addr/zip2addr/pkg/ingest"
	"github.com/zip2addr/zip2addr/pkg/store"
)

// Mock provides a mock implementation of application.Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
//	mock := &application.Mock{
//	    StoreFunc: func(ctx context.Context, path string) (store.ReadCloser, error) {
//	        return store.Open(ctx, testDB, true)
//	    },
//	}
//	cmd := search.NewCommand(mock)
type Mock struct {
	IngestConfigFunc func() ingest.Config
	StoreFunc        func(ctx context.Context, path string) (store.ReadCloser, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// IngestConfig returns the mock config or ingest.DefaultConfig(".").
func (m *Mock) IngestConfig() ingest.Config {
	if m.IngestConfigFunc != nil {
		return m.IngestConfigFunc()
	}
	return ingest.DefaultConfig(".")
}

// Store opens the store using the mock function, or store.Open read-only.
func (m *Mock) Store(ctx context.Context, path string) (store.ReadCloser, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, path)
	}
	if path == "" {
		path = m.IngestConfig().DBPath
	}
	return store.Open(ctx, path, true)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

var _ application.Application = (*Mock)(nil)
