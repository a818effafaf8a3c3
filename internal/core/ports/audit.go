package ports

import (
	"context"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

// AuditRepository appends authentication events to durable storage.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts events for asynchronous persistence. Record must not block.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
