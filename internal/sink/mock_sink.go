package sink

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
)

// MockSink is a mock implementation of Sink for testing.
type MockSink struct {
	mock.Mock
}

// Write is the mock implementation of Write.
func (m *MockSink) Write(ctx context.Context, tables []dataset.Table) error {
	args := m.Called(ctx, tables)
	return args.Error(0) //nolint:wrapcheck
}
