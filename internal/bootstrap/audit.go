package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records lifecycle events of the process (startup, shutdown).
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
