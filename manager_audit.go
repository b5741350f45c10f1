package goDash

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MrEthical07/goDash/session"
)

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLogout             = "logout"
	auditEventCredentialRejected = "credential_rejected"
	auditEventStoreCorrupt       = "store_corrupt"
	auditEventStoreFailure       = "store_failure"
)

// AuditErrorCode is the stable, secret-free error label carried by
// [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrCredentialRejected AuditErrorCode = "credential_rejected"
	auditErrLoginFailed        AuditErrorCode = "login_failed"
	auditErrNetwork            AuditErrorCode = "network_failure"
	auditErrUnexpected         AuditErrorCode = "unexpected_response"
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrStoreUnavailable   AuditErrorCode = "store_unavailable"
	auditErrIdentityCorrupt    AuditErrorCode = "identity_corrupt"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity *session.Identity,
	reason string,
	err error,
) {
	if m == nil || m.audit == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Reason:    reason,
		Success:   success,
	}
	if identity != nil && identity.ID != 0 {
		event.UserID = strconv.FormatInt(identity.ID, 10)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCredentialRejected):
		return auditErrCredentialRejected
	case errors.Is(err, ErrLoginFailed):
		return auditErrLoginFailed
	case errors.Is(err, ErrNetworkFailure):
		return auditErrNetwork
	case errors.Is(err, ErrUnexpectedResponse):
		return auditErrUnexpected
	case errors.Is(err, ErrTokenRequired),
		errors.Is(err, ErrIdentityRequired):
		return auditErrInvalidInput
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, session.ErrBackendUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, session.ErrIdentityCorrupt):
		return auditErrIdentityCorrupt
	default:
		return auditErrInternal
	}
}
