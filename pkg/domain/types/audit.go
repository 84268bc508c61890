package types

import "fmt"

// AuditKind classifies credential lifecycle events recorded to the audit trail
type AuditKind string

const (
	AuditKindConnect          AuditKind = "connect"
	AuditKindDisconnect       AuditKind = "disconnect"
	AuditKindTokenRefresh     AuditKind = "token_refresh"
	AuditKindRefreshFailed    AuditKind = "refresh_failed"
	AuditKindIdentityMismatch AuditKind = "identity_mismatch"
	AuditKindLegacyFallback   AuditKind = "legacy_fallback"
)

// AllAuditKinds returns all valid audit kinds
func AllAuditKinds() []AuditKind {
	return []AuditKind{
		AuditKindConnect,
		AuditKindDisconnect,
		AuditKindTokenRefresh,
		AuditKindRefreshFailed,
		AuditKindIdentityMismatch,
		AuditKindLegacyFallback,
	}
}

// IsValid checks if the audit kind is valid
func (k AuditKind) IsValid() bool {
	switch k {
	case AuditKindConnect,
		AuditKindDisconnect,
		AuditKindTokenRefresh,
		AuditKindRefreshFailed,
		AuditKindIdentityMismatch,
		AuditKindLegacyFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation of the audit kind
func (k AuditKind) String() string {
	return string(k)
}

// ParseAuditKind parses a string into an AuditKind
func ParseAuditKind(s string) (AuditKind, error) {
	kind := AuditKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid audit kind: %s", s)
	}
	return kind, nil
}
