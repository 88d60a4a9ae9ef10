package services

import "context"

// recordAudit stores a successful mutation by actor. Audit failures never
// fail the mutation itself.
func recordAudit(ctx context.Context, audit *AuditService, actor Actor, action, resource string, metadata map[string]any) {
	if audit == nil {
		return
	}
	_ = audit.Log(ctx, AuditEntry{
		UserID:    actor.userIDPtr(),
		Action:    action,
		Resource:  resource,
		Result:    auditResultSuccess,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Metadata:  metadata,
	})
}
