package service

import (
	"github.com/blogsphere/backend/internal/observability/metrics"
)

const (
	rejectSignature       = "signature"
	rejectExpired         = "expired"
	rejectNotStored       = "not_stored"
	rejectSubjectMismatch = "subject_mismatch"
	rejectUserGone        = "user_gone"
)

func incrementSessionsIssued() {
	metrics.SessionsIssued.Inc()
}

func incrementRefreshTokensUsed() {
	metrics.RefreshTokensUsed.Inc()
}

func incrementRefreshTokensRejected(reason string) {
	metrics.RefreshTokensRejected.WithLabelValues(reason).Inc()
}

func incrementRefreshTokensRevoked() {
	metrics.RefreshTokensRevoked.Inc()
}

func incrementLoginAttempts(result string) {
	metrics.LoginAttempts.WithLabelValues(result).Inc()
}

func incrementUsersRegistered() {
	metrics.UsersRegistered.Inc()
}
